package crypto

// SuiteType identifies the signature scheme implemented by this package.
const SuiteType = "ed25519"

// CryptoSuite reports which signature scheme a signer or verifier implements.
type CryptoSuite interface {
	SuiteType() string
}

// MessageVerifier checks signatures against one bound public key.
type MessageVerifier interface {
	CryptoSuite
	Verify(message, signature []byte) bool
}

// MessageSigner signs with one bound private key. Anything that can sign
// can also verify its own signatures.
type MessageSigner interface {
	MessageVerifier
	Sign(message []byte) []byte
}

var (
	_ MessageSigner   = (*Signer)(nil)
	_ MessageVerifier = (*Verifier)(nil)
)
