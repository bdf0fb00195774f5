// Package filerepo persists the session as a small JSON document on disk.
//
// The document is a flat set of independently named slots:
//
//	{"accessToken": "...", "refreshToken": "...", "isAdmin": "true", "userId": "7"}
//
// A missing slot means the value is absent (logged out, non-admin). Writes go
// to a temporary file that is renamed over the old one, so a concurrent reader
// sees either the previous document or the new one. When a passphrase is
// configured the document is sealed with NaCl secretbox under a scrypt key.
package filerepo

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jrsteele09/go-travels-client/internal/errors"
	"github.com/jrsteele09/go-travels-client/sessions"
)

const (
	SlotAccessToken  = "accessToken"
	SlotRefreshToken = "refreshToken"
	SlotIsAdmin      = "isAdmin"
	SlotUserID       = "userId"
)

var _ sessions.Repo = (*Repo)(nil)

type Repo struct {
	path       string
	passphrase string
}

type Option func(*Repo)

// WithPassphrase seals the session file. An empty passphrase leaves it in clear.
func WithPassphrase(passphrase string) Option {
	return func(r *Repo) {
		r.passphrase = passphrase
	}
}

func New(path string, opts ...Option) *Repo {
	r := &Repo{path: path}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Path returns the location of the session file.
func (r *Repo) Path() string {
	return r.path
}

func (r *Repo) Load() (sessions.Session, error) {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return sessions.Session{}, nil
	}
	if err != nil {
		return sessions.Session{}, errors.Wrapf(err, "[filerepo Load] read %s", r.path)
	}

	if isSealed(data) {
		if r.passphrase == "" {
			return sessions.Session{}, errors.Wrapf(errors.ErrUnsealSession, "[filerepo Load] %s is sealed and no passphrase is set", r.path)
		}
		data, err = unseal(data, r.passphrase)
		if err != nil {
			return sessions.Session{}, errors.Wrapf(err, "[filerepo Load] %s", r.path)
		}
	}

	slots := map[string]string{}
	if err := json.Unmarshal(data, &slots); err != nil {
		return sessions.Session{}, errors.Wrapf(err, "[filerepo Load] decode %s", r.path)
	}
	return fromSlots(slots), nil
}

func (r *Repo) Save(session sessions.Session) error {
	data, err := json.Marshal(toSlots(session))
	if err != nil {
		return errors.Wrapf(err, "[filerepo Save] encode session")
	}

	if r.passphrase != "" {
		data, err = seal(data, r.passphrase)
		if err != nil {
			return errors.Wrapf(err, "[filerepo Save] seal session")
		}
	}

	return writeFileAtomic(r.path, data)
}

func (r *Repo) Clear() error {
	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "[filerepo Clear] remove %s", r.path)
	}
	return nil
}

func toSlots(session sessions.Session) map[string]string {
	slots := make(map[string]string, 4)
	if session.AccessToken != "" {
		slots[SlotAccessToken] = session.AccessToken
	}
	if session.RefreshToken != "" {
		slots[SlotRefreshToken] = session.RefreshToken
	}
	if session.IsAdmin {
		slots[SlotIsAdmin] = "true"
	}
	if session.UserID != "" {
		slots[SlotUserID] = session.UserID
	}
	return slots
}

func fromSlots(slots map[string]string) sessions.Session {
	isAdmin, _ := strconv.ParseBool(slots[SlotIsAdmin])
	return sessions.Session{
		AccessToken:  slots[SlotAccessToken],
		RefreshToken: slots[SlotRefreshToken],
		IsAdmin:      isAdmin,
		UserID:       slots[SlotUserID],
	}
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrapf(err, "[filerepo Save] create %s", dir)
	}

	tmp, err := os.CreateTemp(dir, ".session-*")
	if err != nil {
		return errors.Wrapf(err, "[filerepo Save] create temp file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "[filerepo Save] write temp file")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "[filerepo Save] sync temp file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "[filerepo Save] close temp file")
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return errors.Wrapf(err, "[filerepo Save] chmod temp file")
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.Wrapf(err, "[filerepo Save] rename into %s", path)
	}
	return nil
}
