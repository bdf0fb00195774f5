package main

import (
	"fmt"
	"os"

	"github.com/jrsteele09/go-travels-client/internal/errors"
	"golang.org/x/term"
)

// promptPassword reads a password from the terminal with echo disabled.
func promptPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.Wrapf(errors.ErrInvalidRequest, "[promptPassword] no terminal available, pass --password")
	}

	fmt.Fprint(os.Stderr, prompt)
	password, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", errors.Wrapf(err, "[promptPassword] read password")
	}
	return string(password), nil
}
