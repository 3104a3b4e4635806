package store

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/busybox42/edkey/pkg/crypto"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDir(t *testing.T) *KeyDir {
	t.Helper()

	dir, err := Open(filepath.Join(t.TempDir(), "keys"), nil)
	require.NoError(t, err)
	return dir
}

func TestOpenCreatesDirectory(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "keys")

	dir, err := Open(root, nil)
	require.NoError(t, err)
	assert.Equal(t, root, dir.Root())

	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	if runtime.GOOS != "windows" {
		assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())
	}
}

func TestOpenRequiresRoot(t *testing.T) {
	_, err := Open("  ", nil)
	assert.Error(t, err)
}

func TestSaveAndLoadKeyPair(t *testing.T) {
	dir := openTestDir(t)
	kp, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	require.False(t, dir.Exists("alice"))
	require.NoError(t, dir.SaveKeyPair("alice", kp))
	assert.True(t, dir.Exists("alice"))

	loaded, err := dir.LoadKeyPair("alice")
	require.NoError(t, err)
	assert.Equal(t, kp.PrivateKey, loaded.PrivateKey)
	assert.Equal(t, kp.PublicKey, loaded.PublicKey)

	pub, err := dir.LoadPublicKey("alice")
	require.NoError(t, err)
	assert.Equal(t, kp.PublicKey, pub)

	raw, err := os.ReadFile(filepath.Join(dir.Root(), "alice.key"))
	require.NoError(t, err)
	assert.Equal(t, []byte(kp.PrivateKey), raw)

	if runtime.GOOS != "windows" {
		info, err := os.Stat(filepath.Join(dir.Root(), "alice.key"))
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}
}

func TestSaveKeyPairRefusesOverwrite(t *testing.T) {
	dir := openTestDir(t)
	first, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	second, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	require.NoError(t, dir.SaveKeyPair("bob", first))
	err = dir.SaveKeyPair("bob", second)
	assert.ErrorIs(t, err, ErrKeyExists)

	loaded, err := dir.LoadKeyPair("bob")
	require.NoError(t, err)
	assert.Equal(t, first.PublicKey, loaded.PublicKey)
}

func TestSaveKeyPairRejectsMismatch(t *testing.T) {
	dir := openTestDir(t)
	kp, err := crypto.GenerateKeyPair()
	require.NoError(t, err)
	other, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	err = dir.SaveKeyPair("mixed", &crypto.KeyPair{PublicKey: other.PublicKey, PrivateKey: kp.PrivateKey})
	assert.ErrorIs(t, err, ErrKeyMismatch)
	assert.False(t, dir.Exists("mixed"))

	err = dir.SaveKeyPair("short", &crypto.KeyPair{PublicKey: kp.PublicKey, PrivateKey: kp.PrivateKey[:10]})
	assert.ErrorIs(t, err, crypto.ErrInvalidKeyLength)
}

func TestLoadKeyPairFromSeedFile(t *testing.T) {
	dir := openTestDir(t)
	seed := bytes.Repeat([]byte{0x33}, crypto.SeedSize)
	require.NoError(t, os.WriteFile(filepath.Join(dir.Root(), "seeded.key"), seed, 0o600))

	want, err := crypto.KeyPairFromSeed(seed)
	require.NoError(t, err)

	kp, err := dir.LoadKeyPair("seeded")
	require.NoError(t, err)
	assert.Equal(t, want.PrivateKey, kp.PrivateKey)

	// no .pub on disk, derived from the seed instead
	pub, err := dir.LoadPublicKey("seeded")
	require.NoError(t, err)
	assert.Equal(t, want.PublicKey, pub)
}

func TestLoadKeyPairWarnsOnCorruptPublicHalf(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	dir, err := Open(t.TempDir(), logger)
	require.NoError(t, err)

	kp, err := crypto.KeyPairFromSeed(bytes.Repeat([]byte{0x44}, crypto.SeedSize))
	require.NoError(t, err)
	corrupt := append([]byte(nil), kp.PrivateKey...)
	corrupt[crypto.PrivateKeySize-1] ^= 0xff
	require.NoError(t, os.WriteFile(filepath.Join(dir.Root(), "corrupt.key"), corrupt, 0o600))

	loaded, err := dir.LoadKeyPair("corrupt")
	require.NoError(t, err)
	assert.Equal(t, kp.PublicKey, loaded.PublicKey)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestLoadErrors(t *testing.T) {
	dir := openTestDir(t)

	_, err := dir.LoadKeyPair("missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)
	_, err = dir.LoadPublicKey("missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, os.WriteFile(filepath.Join(dir.Root(), "odd.key"), []byte{1, 2, 3}, 0o600))
	_, err = dir.LoadKeyPair("odd")
	assert.ErrorIs(t, err, crypto.ErrInvalidKeyLength)

	require.NoError(t, os.WriteFile(filepath.Join(dir.Root(), "odd.pub"), []byte{1, 2, 3}, 0o600))
	_, err = dir.LoadPublicKey("odd")
	assert.ErrorIs(t, err, crypto.ErrInvalidKeyLength)
}

func TestInvalidNames(t *testing.T) {
	dir := openTestDir(t)
	kp, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	for _, name := range []string{"", ".", "..", "../escape", `a\b`, "a/b"} {
		err := dir.SaveKeyPair(name, kp)
		assert.ErrorIs(t, err, ErrInvalidName, "name %q", name)
		assert.False(t, dir.Exists(name))
	}
}

func TestLoadPublicKeyIgnoresCorruptPubFile(t *testing.T) {
	logger, hook := test.NewNullLogger()
	dir, err := Open(t.TempDir(), logger)
	require.NoError(t, err)

	kp, err := crypto.KeyPairFromSeed(bytes.Repeat([]byte{0x51}, crypto.SeedSize))
	require.NoError(t, err)
	other, err := crypto.KeyPairFromSeed(bytes.Repeat([]byte{0x52}, crypto.SeedSize))
	require.NoError(t, err)

	require.NoError(t, dir.SaveKeyPair("a", kp))
	require.NoError(t, os.WriteFile(filepath.Join(dir.Root(), "a.pub"), other.PublicKey, 0o600))

	pub, err := dir.LoadPublicKey("a")
	require.NoError(t, err)
	assert.Equal(t, kp.PublicKey, pub)
	assert.NotEqual(t, other.PublicKey, pub)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
}

func TestLoadPublicKeyWithoutPrivateKey(t *testing.T) {
	dir := openTestDir(t)
	kp, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir.Root(), "peer.pub"), kp.PublicKey, 0o600))

	pub, err := dir.LoadPublicKey("peer")
	require.NoError(t, err)
	assert.Equal(t, kp.PublicKey, pub)
	assert.False(t, dir.Exists("peer"))
}

func TestSaveKeyPairCleansUpOnPublicWriteFailure(t *testing.T) {
	dir := openTestDir(t)
	kp, err := crypto.GenerateKeyPair()
	require.NoError(t, err)

	pubPath := filepath.Join(dir.Root(), "b.pub")
	require.NoError(t, os.Mkdir(pubPath, 0o700))

	err = dir.SaveKeyPair("b", kp)
	require.Error(t, err)
	assert.False(t, dir.Exists("b"))
	assert.NoFileExists(t, filepath.Join(dir.Root(), "b.key"))

	require.NoError(t, os.Remove(pubPath))
	require.NoError(t, dir.SaveKeyPair("b", kp))

	loaded, err := dir.LoadKeyPair("b")
	require.NoError(t, err)
	assert.Equal(t, kp.PublicKey, loaded.PublicKey)
}
