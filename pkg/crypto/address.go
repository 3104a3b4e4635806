package crypto

import (
	"encoding/hex"

	"golang.org/x/crypto/sha3"
)

// AddressSize is the size of an address in bytes.
const AddressSize = 32

// Address is a SHA3-256 digest of a raw Ed25519 public key.
type Address [AddressSize]byte

// AddressFromPublicKey hashes a 32-byte public key into an Address.
func AddressFromPublicKey(publicKey []byte) (Address, error) {
	if len(publicKey) != PublicKeySize {
		return Address{}, keyLengthError("public", PublicKeySize, len(publicKey))
	}
	return Address(sha3.Sum256(publicKey)), nil
}

// Bytes returns a copy of the address bytes.
func (a Address) Bytes() []byte {
	out := make([]byte, AddressSize)
	copy(out, a[:])
	return out
}

// Hex returns the 0x-prefixed lowercase hex form.
func (a Address) Hex() string {
	return "0x" + hex.EncodeToString(a[:])
}

func (a Address) String() string {
	return a.Hex()
}
