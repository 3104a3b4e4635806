package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/busybox42/edkey/internal/config"
	"github.com/busybox42/edkey/internal/store"
	"github.com/busybox42/edkey/pkg/crypto"
	"github.com/busybox42/edkey/pkg/keyenc"
	"github.com/sirupsen/logrus"
)

const (
	exitOK       = 0
	exitInvalid  = 1
	exitFailure  = 2
	usageMessage = `usage: edkey [flags] <command> [args]

commands:
  generate <name>                    create a key pair and store it
  from-seed <name> <seed>            store the key pair for an encoded 32-byte seed
  public <name>                      print a stored public key
  sign <name> <message|->            sign a message ("-" reads stdin)
  verify <key> <message|-> <sig>     check a signature; key is a stored name or an encoded public key
  derive <name> <label> <child>      store the child key derived from <name> for <label>
  address <key>                      print the SHA3-256 address of a public key
  mnemonic <name>                    print the 24 backup words of a stored seed
  restore <name> <word>...           store the key pair recovered from backup words

flags:
`
)

var log = logrus.New()

func initLogger(w io.Writer, level logrus.Level) {
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	log.SetOutput(w)
	log.SetLevel(level)
}

type edkeyCLI struct {
	keys   *store.KeyDir
	format keyenc.Format
	rules  crypto.Rules
	stdin  io.Reader
	stdout io.Writer
}

// errInvalidSignature is a verification result, not a failure of the tool.
var errInvalidSignature = errors.New("signature is not valid")

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("edkey", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usageMessage)
		fs.PrintDefaults()
	}

	configPath := fs.String("config", "", "YAML config file")
	keyDir := fs.String("keydir", "", "key directory (overrides config)")
	encoding := fs.String("encoding", "", "text encoding: hex, base64 or base58 (overrides config)")
	rules := fs.String("rules", "", "verification rules: rfc8032 or zip215 (overrides config)")
	verbose := fs.Bool("v", false, "debug logging")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitFailure
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "edkey: config: %v\n", err)
			return exitFailure
		}
		cfg = loaded
	}
	if *keyDir != "" {
		cfg.KeyDir = *keyDir
	}
	if *encoding != "" {
		cfg.Encoding = *encoding
	}
	if *rules != "" {
		cfg.VerifyRules = *rules
	}
	if *verbose {
		cfg.LogLevel = logrus.DebugLevel.String()
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(stderr, "edkey: %v\n", err)
		return exitFailure
	}

	level, _ := cfg.Level()
	initLogger(stderr, level)

	if fs.NArg() == 0 {
		fs.Usage()
		return exitFailure
	}

	cli, err := newEdkeyCLI(cfg, stdin, stdout)
	if err != nil {
		log.Errorf("Failed to initialize: %v", err)
		return exitFailure
	}

	err = cli.dispatch(fs.Arg(0), fs.Args()[1:])
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errInvalidSignature):
		return exitInvalid
	case errors.Is(err, errUsage):
		fmt.Fprintf(stderr, "edkey: %v\n", err)
		return exitFailure
	default:
		log.Errorf("%s failed: %v", fs.Arg(0), err)
		return exitFailure
	}
}

func newEdkeyCLI(cfg config.Config, stdin io.Reader, stdout io.Writer) (*edkeyCLI, error) {
	format, err := cfg.Format()
	if err != nil {
		return nil, err
	}
	rules, err := cfg.Rules()
	if err != nil {
		return nil, err
	}

	log.Debugf("Using key directory %s", cfg.KeyDir)
	keys, err := store.Open(cfg.KeyDir, log)
	if err != nil {
		return nil, err
	}

	return &edkeyCLI{
		keys:   keys,
		format: format,
		rules:  rules,
		stdin:  stdin,
		stdout: stdout,
	}, nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
