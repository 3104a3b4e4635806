package store

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/busybox42/edkey/pkg/crypto"
	"github.com/sirupsen/logrus"
)

const (
	privateKeyExt = ".key"
	publicKeyExt  = ".pub"

	dirPerm  = 0o700
	filePerm = 0o600
)

var (
	// ErrKeyNotFound is returned when no key file exists for a name.
	ErrKeyNotFound = errors.New("key not found")

	// ErrKeyExists is returned by SaveKeyPair when the name is already taken.
	ErrKeyExists = errors.New("key already exists")

	// ErrInvalidName is returned for names that are empty or would leave the key directory.
	ErrInvalidName = errors.New("invalid key name")

	// ErrKeyMismatch is returned by SaveKeyPair for a pair whose public key
	// is not derived from its private key.
	ErrKeyMismatch = errors.New("public key does not match private key")
)

// KeyDir keeps raw key files in one directory: <name>.key holds the 64-byte
// private key, <name>.pub the 32-byte public key. Nothing but raw bytes is
// ever written.
type KeyDir struct {
	root string
	log  logrus.FieldLogger
}

// Open creates root (mode 0700) if needed. A nil logger discards output.
func Open(root string, log logrus.FieldLogger) (*KeyDir, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("key directory is required")
	}
	if err := os.MkdirAll(root, dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create key directory: %w", err)
	}
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = discard
	}
	return &KeyDir{
		root: root,
		log:  log.WithField("key_dir", root),
	}, nil
}

// Root returns the directory the keys live in.
func (d *KeyDir) Root() string {
	return d.root
}

// Exists reports whether a private key is stored under name.
func (d *KeyDir) Exists(name string) bool {
	path, err := d.path(name, privateKeyExt)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// SaveKeyPair writes both halves of kp. It refuses to replace an existing
// key and rejects pairs whose public key is not derived from the private key.
func (d *KeyDir) SaveKeyPair(name string, kp *crypto.KeyPair) error {
	derived, err := crypto.PublicKeyFromPrivate(kp.PrivateKey)
	if err != nil {
		return err
	}
	if !derived.Equal(kp.PublicKey) {
		return ErrKeyMismatch
	}

	privPath, err := d.path(name, privateKeyExt)
	if err != nil {
		return err
	}
	pubPath, err := d.path(name, publicKeyExt)
	if err != nil {
		return err
	}

	if err := writeNew(privPath, kp.PrivateKey); err != nil {
		return err
	}
	if err := os.WriteFile(pubPath, kp.PublicKey, filePerm); err != nil {
		if rmErr := os.Remove(privPath); rmErr != nil {
			d.log.WithField("name", name).Errorf("Failed to remove private key after failed save: %v", rmErr)
		}
		return fmt.Errorf("failed to write public key: %w", err)
	}

	d.log.WithField("name", name).Debug("Saved key pair")
	return nil
}

// LoadKeyPair reads <name>.key. The file may hold a 64-byte private key or a
// bare 32-byte seed; either way the public key is re-derived.
func (d *KeyDir) LoadKeyPair(name string) (*crypto.KeyPair, error) {
	path, err := d.path(name, privateKeyExt)
	if err != nil {
		return nil, err
	}

	raw, err := readKeyFile(path)
	if err != nil {
		return nil, err
	}
	defer clear(raw)

	switch len(raw) {
	case crypto.PrivateKeySize, crypto.SeedSize:
	default:
		return nil, fmt.Errorf("%s: %w: got %d bytes", path, crypto.ErrInvalidKeyLength, len(raw))
	}

	kp, err := crypto.KeyPairFromSeed(raw[:crypto.SeedSize])
	if err != nil {
		return nil, err
	}
	if len(raw) == crypto.PrivateKeySize && !bytes.Equal(raw[crypto.SeedSize:], kp.PublicKey) {
		d.log.WithField("name", name).Warn("Stored public half differs from derived key, using derived key")
	}
	return kp, nil
}

// LoadPublicKey returns the public key stored under name. When <name>.key
// exists the key is re-derived from it and a disagreeing <name>.pub is
// logged and ignored; otherwise <name>.pub is returned as stored.
func (d *KeyDir) LoadPublicKey(name string) (crypto.PublicKey, error) {
	path, err := d.path(name, publicKeyExt)
	if err != nil {
		return nil, err
	}

	stored, pubErr := readKeyFile(path)
	if pubErr != nil && !errors.Is(pubErr, ErrKeyNotFound) {
		return nil, pubErr
	}
	if pubErr == nil && len(stored) != crypto.PublicKeySize {
		return nil, fmt.Errorf("%s: %w: got %d bytes", path, crypto.ErrInvalidKeyLength, len(stored))
	}

	kp, err := d.LoadKeyPair(name)
	if errors.Is(err, ErrKeyNotFound) {
		if pubErr != nil {
			return nil, pubErr
		}
		return crypto.PublicKey(stored), nil
	}
	if err != nil {
		return nil, err
	}
	kp.Wipe()

	if pubErr == nil && !kp.PublicKey.Equal(stored) {
		d.log.WithField("name", name).Warn("Stored public key differs from private key, using derived key")
	}
	return kp.PublicKey, nil
}

func (d *KeyDir) path(name, ext string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(d.root, name+ext), nil
}

func readKeyFile(path string) ([]byte, error) {
	// #nosec G304 -- path is built from the key directory and a validated name.
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read key: %w", err)
	}
	return raw, nil
}

func writeNew(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, filePerm)
	if errors.Is(err, os.ErrExist) {
		return fmt.Errorf("%w: %s", ErrKeyExists, path)
	}
	if err != nil {
		return fmt.Errorf("failed to create key file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("failed to write key file: %w", err)
	}
	return f.Close()
}
