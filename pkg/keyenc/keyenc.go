// Package keyenc converts raw key, seed and signature bytes to and from text.
package keyenc

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// Leading characters of a hex formatted string.
const HexPrefix = "0x"

var (
	// ErrUnknownFormat is returned for a Format or format name this package does not know.
	ErrUnknownFormat = errors.New("unknown encoding format")

	// ErrMalformed wraps decoder errors for text that is not valid in the chosen format.
	ErrMalformed = errors.New("malformed encoded value")
)

// Format selects a text encoding.
type Format int

const (
	// Hex is lowercase hex with a 0x prefix.
	Hex Format = iota
	// Base64 is standard padded base64.
	Base64
	// Base58 uses the bitcoin alphabet.
	Base58
)

func (f Format) String() string {
	switch f {
	case Hex:
		return "hex"
	case Base64:
		return "base64"
	case Base58:
		return "base58"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat maps a format name to a Format. The empty string means Hex.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "hex":
		return Hex, nil
	case "base64", "b64":
		return Base64, nil
	case "base58", "b58":
		return Base58, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// Encode renders b in the given format.
func Encode(f Format, b []byte) (string, error) {
	switch f {
	case Hex:
		return ToHex(b), nil
	case Base64:
		return base64.StdEncoding.EncodeToString(b), nil
	case Base58:
		return base58.Encode(b), nil
	default:
		return "", fmt.Errorf("%w: %v", ErrUnknownFormat, f)
	}
}

// Decode parses s in the given format. Surrounding whitespace is ignored.
func Decode(f Format, s string) ([]byte, error) {
	s = strings.TrimSpace(s)

	var (
		out []byte
		err error
	)
	switch f {
	case Hex:
		out, err = FromHex(s)
	case Base64:
		out, err = base64.StdEncoding.DecodeString(s)
	case Base58:
		if s == "" {
			return []byte{}, nil
		}
		out, err = base58.Decode(s)
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownFormat, f)
	}
	if err != nil {
		return nil, fmt.Errorf("%w (%s): %v", ErrMalformed, f, err)
	}
	return out, nil
}

// ToHex encodes b as a lowercase hex string with 0x prefix.
func ToHex(b []byte) string {
	enc := make([]byte, len(b)*2+len(HexPrefix))
	copy(enc, HexPrefix)
	hex.Encode(enc[len(HexPrefix):], b)
	return string(enc)
}

// FromHex returns the bytes represented by the hexadecimal string s.
// s may be prefixed with "0x" or "0X"; an odd number of digits is padded
// with a leading zero.
func FromHex(s string) ([]byte, error) {
	if hasHexPrefix(s) {
		s = s[len(HexPrefix):]
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	return hex.DecodeString(s)
}

func hasHexPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}
