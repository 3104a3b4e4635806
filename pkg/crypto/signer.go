package crypto

import (
	"runtime"
	"sync/atomic"
)

// Signer signs messages with one private key. It keeps its own expanded
// copy of the key, so the slice passed to NewSigner may be wiped afterwards.
// A Signer is safe for concurrent use.
type Signer struct {
	key      *expandedKey
	verifier *Verifier
	wiped    atomic.Bool
}

// NewSigner binds a 64-byte private key. The public key is re-derived from
// the seed half; the trailing 32 bytes of privateKey are not trusted.
func NewSigner(privateKey []byte) (*Signer, error) {
	if len(privateKey) != PrivateKeySize {
		return nil, keyLengthError("private", PrivateKeySize, len(privateKey))
	}

	ek := expandSeed(privateKey[:SeedSize])
	verifier, err := NewVerifier(ek.public[:])
	if err != nil {
		ek.wipe()
		return nil, err
	}

	s := &Signer{
		key:      ek,
		verifier: verifier,
	}
	runtime.SetFinalizer(s, (*Signer).Wipe)
	return s, nil
}

// Sign returns the deterministic 64-byte signature of message.
// It panics if the Signer has been wiped.
func (s *Signer) Sign(message []byte) []byte {
	if s.wiped.Load() {
		panic("crypto: Sign called on a wiped Signer")
	}
	sig := s.key.sign(message)
	// the finalizer must not wipe the key while sign is still reading it
	runtime.KeepAlive(s)
	return sig
}

// Verify checks a signature against the signer's own public key.
func (s *Signer) Verify(message, signature []byte) bool {
	return s.verifier.Verify(message, signature)
}

// Public returns a copy of the signer's public key.
func (s *Signer) Public() PublicKey {
	return s.verifier.PublicKey()
}

// SuiteType returns "ed25519".
func (s *Signer) SuiteType() string {
	return SuiteType
}

// Wipe zeroes the secret scalar and nonce prefix. Sign panics afterwards;
// Verify and Public keep working. Wipe also runs automatically once the
// Signer is unreachable.
func (s *Signer) Wipe() {
	s.wiped.Store(true)
	if s.key != nil {
		s.key.wipe()
	}
}
