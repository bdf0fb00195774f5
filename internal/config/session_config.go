package config

import (
	"os"
	"path/filepath"
)

const (
	sessionFileVar       = "TRAVELS_SESSION_FILE"
	sessionPassphraseVar = "TRAVELS_SESSION_PASSPHRASE"
)

type SessionConfig interface {
	GetSessionFile() string
	GetSessionPassphrase() string
}

type Session struct {
	file *FileConfig
}

var _ SessionConfig = Session{}

func (s Session) GetSessionFile() string {
	var fileValue string
	if s.file != nil {
		fileValue = s.file.Session.File
	}
	return lookup(sessionFileVar, fileValue, defaultSessionFile())
}

// GetSessionPassphrase returns "" when the session file should be stored unsealed
func (s Session) GetSessionPassphrase() string {
	var fileValue string
	if s.file != nil {
		fileValue = s.file.Session.Passphrase
	}
	return lookup(sessionPassphraseVar, fileValue, "")
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "travels", "session.json")
}
