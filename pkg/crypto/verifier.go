package crypto

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"strings"

	"filippo.io/edwards25519"
	"github.com/hdevalence/ed25519consensus"
)

// ErrUnknownRules is returned for a verification rule set this package does not implement.
var ErrUnknownRules = errors.New("unknown verification rules")

// Rules selects the validity criteria a Verifier applies.
type Rules int

const (
	// RulesRFC8032 is the cofactorless check with canonical S used by
	// crypto/ed25519 and most implementations.
	RulesRFC8032 Rules = iota
	// RulesZIP215 applies the ZIP-215 criteria (cofactored equation,
	// non-canonical point encodings accepted), giving the same answer on
	// every conforming implementation.
	RulesZIP215
)

func (r Rules) String() string {
	switch r {
	case RulesRFC8032:
		return "rfc8032"
	case RulesZIP215:
		return "zip215"
	default:
		return fmt.Sprintf("Rules(%d)", int(r))
	}
}

// ParseRules maps "rfc8032" or "zip215" (case-insensitive) to a rule set.
func ParseRules(name string) (Rules, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "rfc8032", "":
		return RulesRFC8032, nil
	case "zip215":
		return RulesZIP215, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownRules, name)
	}
}

// Verifier checks signatures against one public key. Safe for concurrent use.
type Verifier struct {
	public PublicKey
	point  *edwards25519.Point
	rules  Rules
}

// NewVerifier binds a 32-byte public key using RFC 8032 rules.
func NewVerifier(publicKey []byte) (*Verifier, error) {
	return NewVerifierWithRules(publicKey, RulesRFC8032)
}

// NewVerifierWithRules binds a 32-byte public key using the given rule set.
// A key of the right length that is not a valid curve point is accepted
// here; every signature checked against it is then reported invalid.
func NewVerifierWithRules(publicKey []byte, rules Rules) (*Verifier, error) {
	if len(publicKey) != PublicKeySize {
		return nil, keyLengthError("public", PublicKeySize, len(publicKey))
	}
	if rules != RulesRFC8032 && rules != RulesZIP215 {
		return nil, fmt.Errorf("%w: %v", ErrUnknownRules, rules)
	}

	pub := make(PublicKey, PublicKeySize)
	copy(pub, publicKey)

	return &Verifier{
		public: pub,
		point:  decodePoint(pub),
		rules:  rules,
	}, nil
}

// Verify reports whether signature is a valid signature of message by the
// bound key. A mismatch is a normal false result, not an error.
func (v *Verifier) Verify(message, signature []byte) bool {
	if len(signature) != SignatureSize {
		return false
	}

	switch v.rules {
	case RulesZIP215:
		return ed25519consensus.Verify(ed25519.PublicKey(v.public), message, signature)
	default:
		return verifyRFC8032(v.point, v.public, message, signature)
	}
}

// PublicKey returns a copy of the bound public key.
func (v *Verifier) PublicKey() PublicKey {
	return append(PublicKey(nil), v.public...)
}

// Rules returns the rule set the verifier applies.
func (v *Verifier) Rules() Rules {
	return v.rules
}

// SuiteType returns "ed25519".
func (v *Verifier) SuiteType() string {
	return SuiteType
}
