// Package crypto implements Ed25519 (RFC 8032) key generation, derivation,
// signing and verification on top of filippo.io/edwards25519.
//
// All values are raw bytes. Encoding keys as text is left to callers.
package crypto

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"io"
)

const (
	// SeedSize is the size of the secret seed a key pair is derived from.
	SeedSize = 32
	// PublicKeySize is the size of an encoded public key.
	PublicKeySize = 32
	// PrivateKeySize is the size of a private key: the seed followed by the public key.
	PrivateKeySize = 64
	// SignatureSize is the size of a signature, R followed by S.
	SignatureSize = 64
)

// PublicKey is a 32-byte Ed25519 public key.
type PublicKey []byte

// Equal reports whether pub and other hold the same bytes.
func (pub PublicKey) Equal(other []byte) bool {
	return bytes.Equal(pub, other)
}

// PrivateKey is a 64-byte Ed25519 private key (seed || public key).
type PrivateKey []byte

// Seed returns a copy of the seed half of the key.
// It panics if priv is not PrivateKeySize bytes.
func (priv PrivateKey) Seed() []byte {
	if len(priv) != PrivateKeySize {
		panic(fmt.Sprintf("crypto: bad private key length: %d", len(priv)))
	}
	seed := make([]byte, SeedSize)
	copy(seed, priv[:SeedSize])
	return seed
}

// Public derives the public key from the seed half, or returns nil when priv
// has the wrong length.
func (priv PrivateKey) Public() PublicKey {
	pub, err := PublicKeyFromPrivate(priv)
	if err != nil {
		return nil
	}
	return pub
}

// Wipe overwrites the key material with zeros.
func (priv PrivateKey) Wipe() {
	clear(priv)
}

// KeyPair represents a public/private key pair for signing and verification
type KeyPair struct {
	PublicKey  PublicKey
	PrivateKey PrivateKey
}

// GenerateKeyPair creates a new Ed25519 key pair from crypto/rand.
func GenerateKeyPair() (*KeyPair, error) {
	return GenerateKeyPairFrom(rand.Reader)
}

// GenerateKeyPairFrom creates a key pair from a seed read out of r.
// A nil reader means crypto/rand. A failed or short read is reported as
// ErrRandomSourceUnavailable.
func GenerateKeyPairFrom(r io.Reader) (*KeyPair, error) {
	if r == nil {
		r = rand.Reader
	}

	var seed [SeedSize]byte
	defer clear(seed[:])

	if _, err := io.ReadFull(r, seed[:]); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRandomSourceUnavailable, err)
	}
	return KeyPairFromSeed(seed[:])
}

// KeyPairFromSeed deterministically expands a 32-byte seed into a key pair.
func KeyPairFromSeed(seed []byte) (*KeyPair, error) {
	if len(seed) != SeedSize {
		return nil, seedLengthError(len(seed))
	}

	ek := expandSeed(seed)
	defer ek.wipe()

	priv := make(PrivateKey, PrivateKeySize)
	copy(priv, seed)
	copy(priv[SeedSize:], ek.public[:])

	pub := make(PublicKey, PublicKeySize)
	copy(pub, ek.public[:])

	return &KeyPair{
		PublicKey:  pub,
		PrivateKey: priv,
	}, nil
}

// PublicKeyFromPrivate returns the public key for a 64-byte private key.
// The key is recomputed from the seed half rather than copied from the
// trailing 32 bytes, so a private key with a corrupted public half still
// yields its real public key.
func PublicKeyFromPrivate(privateKey []byte) (PublicKey, error) {
	if len(privateKey) != PrivateKeySize {
		return nil, keyLengthError("private", PrivateKeySize, len(privateKey))
	}

	ek := expandSeed(privateKey[:SeedSize])
	defer ek.wipe()

	pub := make(PublicKey, PublicKeySize)
	copy(pub, ek.public[:])
	return pub, nil
}

// Sign creates a signature for the given message using the private key
func (kp *KeyPair) Sign(message []byte) ([]byte, error) {
	signer, err := NewSigner(kp.PrivateKey)
	if err != nil {
		return nil, err
	}
	defer signer.Wipe()
	return signer.Sign(message), nil
}

// Verify checks if the signature is valid for the given message
func (kp *KeyPair) Verify(message, signature []byte) bool {
	verifier, err := NewVerifier(kp.PublicKey)
	if err != nil {
		return false
	}
	return verifier.Verify(message, signature)
}

// Wipe zeroes the private half of the pair.
func (kp *KeyPair) Wipe() {
	kp.PrivateKey.Wipe()
}
