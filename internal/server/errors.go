package server

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyTLS is returned when attempting to upgrade an already-TLS connection.
	ErrAlreadyTLS = errors.New("connection already using TLS")
)

func errNoTLSConfig(address string) error {
	return fmt.Errorf("listener %s: TLS required for implicit-TLS mode but not configured", address)
}
