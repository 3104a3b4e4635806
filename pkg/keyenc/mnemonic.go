package keyenc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/busybox42/edkey/pkg/crypto"
	"github.com/tyler-smith/go-bip39"
)

// ErrInvalidMnemonic is returned for word lists that are not a valid 24-word BIP-39 mnemonic.
var ErrInvalidMnemonic = errors.New("invalid mnemonic")

// SeedToMnemonic renders a 32-byte seed as 24 BIP-39 English words. The seed
// is used directly as the mnemonic entropy, so SeedFromMnemonic recovers it
// exactly.
func SeedToMnemonic(seed []byte) (string, error) {
	if len(seed) != crypto.SeedSize {
		return "", fmt.Errorf("%w: seed must be %d bytes, got %d", crypto.ErrInvalidSeedLength, crypto.SeedSize, len(seed))
	}
	return bip39.NewMnemonic(seed)
}

// SeedFromMnemonic returns the seed carried by a 24-word mnemonic. Words may
// be separated by any amount of whitespace.
func SeedFromMnemonic(mnemonic string) ([]byte, error) {
	mnemonic = strings.Join(strings.Fields(mnemonic), " ")
	if mnemonic == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidMnemonic)
	}

	entropy, err := bip39.EntropyFromMnemonic(mnemonic)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMnemonic, err)
	}
	if len(entropy) != crypto.SeedSize {
		return nil, fmt.Errorf("%w: carries %d bytes, need %d (24 words)", ErrInvalidMnemonic, len(entropy), crypto.SeedSize)
	}
	return entropy, nil
}
