package crypto

import (
	"crypto/sha512"
	"crypto/subtle"

	"filippo.io/edwards25519"
)

// expandedKey is the RFC 8032 §5.1.5 expansion of a seed: the clamped secret
// scalar, the nonce prefix and the encoded public key.
type expandedKey struct {
	scalar *edwards25519.Scalar
	prefix [32]byte
	public [PublicKeySize]byte
}

// expandSeed expects len(seed) == SeedSize.
func expandSeed(seed []byte) *expandedKey {
	h := sha512.Sum512(seed)
	defer clear(h[:])

	s, err := edwards25519.NewScalar().SetBytesWithClamping(h[:32])
	if err != nil {
		panic("crypto: internal error: clamped scalar rejected")
	}

	ek := &expandedKey{scalar: s}
	copy(ek.prefix[:], h[32:])

	A := new(edwards25519.Point).ScalarBaseMult(s)
	copy(ek.public[:], A.Bytes())
	return ek
}

func (ek *expandedKey) wipe() {
	ek.scalar.Set(edwards25519.NewScalar())
	clear(ek.prefix[:])
}

// sign implements RFC 8032 §5.1.6.
func (ek *expandedKey) sign(message []byte) []byte {
	var digest [64]byte
	defer clear(digest[:])

	mh := sha512.New()
	mh.Write(ek.prefix[:])
	mh.Write(message)
	mh.Sum(digest[:0])

	r, err := edwards25519.NewScalar().SetUniformBytes(digest[:])
	if err != nil {
		panic("crypto: internal error: nonce digest rejected")
	}
	defer r.Set(edwards25519.NewScalar())

	R := new(edwards25519.Point).ScalarBaseMult(r)
	k := challenge(R.Bytes(), ek.public[:], message)
	S := edwards25519.NewScalar().MultiplyAdd(k, ek.scalar, r)

	sig := make([]byte, SignatureSize)
	copy(sig[:32], R.Bytes())
	copy(sig[32:], S.Bytes())
	return sig
}

// challenge computes k = SHA-512(R || A || M) mod ℓ.
func challenge(R, A, message []byte) *edwards25519.Scalar {
	var digest [64]byte

	kh := sha512.New()
	kh.Write(R)
	kh.Write(A)
	kh.Write(message)
	kh.Sum(digest[:0])

	k, err := edwards25519.NewScalar().SetUniformBytes(digest[:])
	if err != nil {
		panic("crypto: internal error: challenge digest rejected")
	}
	return k
}

// verifyRFC8032 implements the cofactorless check of RFC 8032 §5.1.7 with a
// canonical S. A is the decoded public key, nil when it did not decode.
func verifyRFC8032(A *edwards25519.Point, public, message, sig []byte) bool {
	if A == nil || len(sig) != SignatureSize || sig[63]&224 != 0 {
		return false
	}

	S, err := edwards25519.NewScalar().SetCanonicalBytes(sig[32:])
	if err != nil {
		return false
	}
	k := challenge(sig[:32], public, message)

	// R' = [S]B - [k]A
	minusA := new(edwards25519.Point).Negate(A)
	R := new(edwards25519.Point).VarTimeDoubleScalarBaseMult(k, minusA, S)

	return subtle.ConstantTimeCompare(sig[:32], R.Bytes()) == 1
}

// decodePoint returns nil for byte strings that are not a valid point encoding.
func decodePoint(public []byte) *edwards25519.Point {
	A, err := new(edwards25519.Point).SetBytes(public)
	if err != nil {
		return nil
	}
	return A
}
