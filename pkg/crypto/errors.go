package crypto

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSeedLength is returned when a seed is not exactly SeedSize bytes.
	ErrInvalidSeedLength = errors.New("invalid seed length")

	// ErrInvalidKeyLength is returned when a public or private key has the wrong size.
	ErrInvalidKeyLength = errors.New("invalid key length")

	// ErrRandomSourceUnavailable is returned when the secure random source
	// could not supply a full seed. Generation never falls back to another source.
	ErrRandomSourceUnavailable = errors.New("secure random source unavailable")

	// ErrEmptyLabel is returned by DeriveKeyPair for an empty derivation label.
	ErrEmptyLabel = errors.New("derivation label is empty")
)

func seedLengthError(got int) error {
	return fmt.Errorf("%w: seed must be %d bytes, got %d", ErrInvalidSeedLength, SeedSize, got)
}

func keyLengthError(kind string, want, got int) error {
	return fmt.Errorf("%w: %s key must be %d bytes, got %d", ErrInvalidKeyLength, kind, want, got)
}
