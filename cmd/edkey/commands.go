package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/busybox42/edkey/pkg/crypto"
	"github.com/busybox42/edkey/pkg/keyenc"
)

var errUsage = errors.New("usage")

func usageErr(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{errUsage}, args...)...)
}

func (cli *edkeyCLI) dispatch(command string, args []string) error {
	switch command {
	case "generate":
		if len(args) != 1 {
			return usageErr("generate <name>")
		}
		return cli.generate(args[0])

	case "from-seed":
		if len(args) != 2 {
			return usageErr("from-seed <name> <seed>")
		}
		return cli.fromSeed(args[0], args[1])

	case "public":
		if len(args) != 1 {
			return usageErr("public <name>")
		}
		return cli.public(args[0])

	case "sign":
		if len(args) != 2 {
			return usageErr("sign <name> <message|->")
		}
		return cli.sign(args[0], args[1])

	case "verify":
		if len(args) != 3 {
			return usageErr("verify <key> <message|-> <signature>")
		}
		return cli.verify(args[0], args[1], args[2])

	case "derive":
		if len(args) != 3 {
			return usageErr("derive <name> <label> <child>")
		}
		return cli.derive(args[0], args[1], args[2])

	case "address":
		if len(args) != 1 {
			return usageErr("address <key>")
		}
		return cli.address(args[0])

	case "mnemonic":
		if len(args) != 1 {
			return usageErr("mnemonic <name>")
		}
		return cli.mnemonic(args[0])

	case "restore":
		if len(args) < 2 {
			return usageErr("restore <name> <word>...")
		}
		return cli.restore(args[0], strings.Join(args[1:], " "))

	default:
		return usageErr("unknown command %q", command)
	}
}

func (cli *edkeyCLI) generate(name string) error {
	kp, err := crypto.GenerateKeyPair()
	if err != nil {
		return err
	}
	return cli.store(name, kp)
}

func (cli *edkeyCLI) fromSeed(name, encodedSeed string) error {
	seed, err := keyenc.Decode(cli.format, encodedSeed)
	if err != nil {
		return err
	}
	defer clear(seed)

	kp, err := crypto.KeyPairFromSeed(seed)
	if err != nil {
		return err
	}
	return cli.store(name, kp)
}

func (cli *edkeyCLI) public(name string) error {
	pub, err := cli.keys.LoadPublicKey(name)
	if err != nil {
		return err
	}
	return cli.printEncoded(pub)
}

func (cli *edkeyCLI) sign(name, message string) error {
	msg, err := cli.message(message)
	if err != nil {
		return err
	}

	kp, err := cli.keys.LoadKeyPair(name)
	if err != nil {
		return err
	}
	signer, err := crypto.NewSigner(kp.PrivateKey)
	kp.Wipe()
	if err != nil {
		return err
	}
	defer signer.Wipe()

	log.WithField("name", name).Debugf("Signing %d byte message", len(msg))
	return cli.printEncoded(signer.Sign(msg))
}

func (cli *edkeyCLI) verify(key, message, encodedSig string) error {
	pub, err := cli.resolvePublicKey(key)
	if err != nil {
		return err
	}
	sig, err := keyenc.Decode(cli.format, encodedSig)
	if err != nil {
		return err
	}
	msg, err := cli.message(message)
	if err != nil {
		return err
	}

	verifier, err := crypto.NewVerifierWithRules(pub, cli.rules)
	if err != nil {
		return err
	}

	if !verifier.Verify(msg, sig) {
		fmt.Fprintln(cli.stdout, "invalid")
		return errInvalidSignature
	}
	fmt.Fprintln(cli.stdout, "valid")
	return nil
}

func (cli *edkeyCLI) derive(name, label, child string) error {
	parent, err := cli.keys.LoadKeyPair(name)
	if err != nil {
		return err
	}
	seed := parent.PrivateKey.Seed()
	parent.Wipe()
	defer clear(seed)

	kp, err := crypto.DeriveKeyPair(seed, label)
	if err != nil {
		return err
	}
	log.WithField("parent", name).WithField("label", label).Debug("Derived child key")
	return cli.store(child, kp)
}

func (cli *edkeyCLI) address(key string) error {
	pub, err := cli.resolvePublicKey(key)
	if err != nil {
		return err
	}
	addr, err := crypto.AddressFromPublicKey(pub)
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.stdout, addr.Hex())
	return nil
}

func (cli *edkeyCLI) mnemonic(name string) error {
	kp, err := cli.keys.LoadKeyPair(name)
	if err != nil {
		return err
	}
	seed := kp.PrivateKey.Seed()
	kp.Wipe()
	defer clear(seed)

	words, err := keyenc.SeedToMnemonic(seed)
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.stdout, words)
	return nil
}

func (cli *edkeyCLI) restore(name, words string) error {
	seed, err := keyenc.SeedFromMnemonic(words)
	if err != nil {
		return err
	}
	defer clear(seed)

	kp, err := crypto.KeyPairFromSeed(seed)
	if err != nil {
		return err
	}
	return cli.store(name, kp)
}

// store saves kp under name, prints its public key and wipes the private half.
func (cli *edkeyCLI) store(name string, kp *crypto.KeyPair) error {
	defer kp.Wipe()

	if err := cli.keys.SaveKeyPair(name, kp); err != nil {
		return err
	}
	log.WithField("name", name).Info("Stored key pair")
	return cli.printEncoded(kp.PublicKey)
}

// resolvePublicKey treats key as a stored key name first, then as an
// encoded public key.
func (cli *edkeyCLI) resolvePublicKey(key string) (crypto.PublicKey, error) {
	if cli.keys.Exists(key) {
		return cli.keys.LoadPublicKey(key)
	}
	pub, err := keyenc.Decode(cli.format, key)
	if err != nil {
		return nil, fmt.Errorf("%q is neither a stored key nor a %s public key: %w", key, cli.format, err)
	}
	return crypto.PublicKey(pub), nil
}

func (cli *edkeyCLI) message(arg string) ([]byte, error) {
	if arg != "-" {
		return []byte(arg), nil
	}
	msg, err := io.ReadAll(cli.stdin)
	if err != nil {
		return nil, fmt.Errorf("failed to read message from stdin: %w", err)
	}
	return msg, nil
}

func (cli *edkeyCLI) printEncoded(b []byte) error {
	s, err := keyenc.Encode(cli.format, b)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cli.stdout, s)
	return err
}
