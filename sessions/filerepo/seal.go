package filerepo

import (
	"bytes"
	"crypto/rand"
	"encoding/json"

	"github.com/jrsteele09/go-travels-client/internal/errors"
	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
)

const (
	sealVersion = 1
	saltLength  = 16
	nonceLength = 24
	keyLength   = 32

	// scrypt cost parameters recommended for interactive logins
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

type sealedFile struct {
	Version int    `json:"version"`
	Salt    []byte `json:"salt"`
	Nonce   []byte `json:"nonce"`
	Box     []byte `json:"box"`
}

func isSealed(data []byte) bool {
	if !bytes.Contains(data, []byte(`"box"`)) {
		return false
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return false
	}
	_, ok := probe["box"]
	return ok
}

func deriveKey(passphrase string, salt []byte) (*[keyLength]byte, error) {
	raw, err := scrypt.Key([]byte(passphrase), salt, scryptN, scryptR, scryptP, keyLength)
	if err != nil {
		return nil, err
	}
	var key [keyLength]byte
	copy(key[:], raw)
	return &key, nil
}

func seal(plain []byte, passphrase string) ([]byte, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, errors.Wrapf(err, "generate salt")
	}
	var nonce [nonceLength]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, errors.Wrapf(err, "generate nonce")
	}

	key, err := deriveKey(passphrase, salt)
	if err != nil {
		return nil, errors.Wrapf(err, "derive key")
	}

	return json.Marshal(sealedFile{
		Version: sealVersion,
		Salt:    salt,
		Nonce:   nonce[:],
		Box:     secretbox.Seal(nil, plain, &nonce, key),
	})
}

func unseal(data []byte, passphrase string) ([]byte, error) {
	var sf sealedFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return nil, errors.Wrapf(errors.ErrUnsealSession, "decode envelope: %v", err)
	}
	if sf.Version != sealVersion || len(sf.Nonce) != nonceLength || len(sf.Salt) == 0 {
		return nil, errors.Wrapf(errors.ErrUnsealSession, "unsupported envelope version %d", sf.Version)
	}

	key, err := deriveKey(passphrase, sf.Salt)
	if err != nil {
		return nil, errors.Wrapf(err, "derive key")
	}

	var nonce [nonceLength]byte
	copy(nonce[:], sf.Nonce)
	plain, ok := secretbox.Open(nil, sf.Box, &nonce, key)
	if !ok {
		return nil, errors.Wrapf(errors.ErrUnsealSession, "wrong passphrase or corrupted file")
	}
	return plain, nil
}
