package crypto

import (
	"crypto/sha512"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const derivationInfoPrefix = "edkey/v1/"

// DeriveSeed expands a parent seed into a child seed bound to label, using
// HKDF-SHA512 with info "edkey/v1/<label>" and no salt.
func DeriveSeed(seed []byte, label string) ([]byte, error) {
	if len(seed) != SeedSize {
		return nil, seedLengthError(len(seed))
	}
	if label == "" {
		return nil, ErrEmptyLabel
	}

	reader := hkdf.New(sha512.New, seed, nil, []byte(derivationInfoPrefix+label))
	child := make([]byte, SeedSize)
	if _, err := io.ReadFull(reader, child); err != nil {
		return nil, fmt.Errorf("hkdf expand: %w", err)
	}
	return child, nil
}

// DeriveKeyPair returns the key pair for DeriveSeed(seed, label). The same
// parent and label always give the same child; different labels give
// unrelated children.
func DeriveKeyPair(seed []byte, label string) (*KeyPair, error) {
	child, err := DeriveSeed(seed, label)
	if err != nil {
		return nil, err
	}
	defer clear(child)
	return KeyPairFromSeed(child)
}
