package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/term"
)

const (
	StoreBackendSQLite = "sqlite"
	StoreBackendBadger = "badger"
)

// Config contains all configuration parameters for the application.
// Note: the master password is never part of Config - it is prompted at runtime
// and handed to a session.Session owned by the caller.
type Config struct {
	Port          string        `envconfig:"PORT" default:"8080"`
	SolanaRPCURL  string        `envconfig:"SOLANA_RPC_URL" default:"https://api.mainnet-beta.solana.com"`
	StoreBackend  string        `envconfig:"STORE_BACKEND" default:"sqlite"`
	StorePath     string        `envconfig:"STORE_PATH" required:"true"`
	FeeOracleURL  string        `envconfig:"FEE_ORACLE_URL"`
	AdminFeeAddr  string        `envconfig:"ADMIN_FEE_ADDRESS" required:"true"`
	SingleFeeSOL  string        `envconfig:"SINGLE_WALLET_FEE_SOL" default:"0.001"`
	MultiFeeSOL   string        `envconfig:"MULTI_WALLET_FEE_SOL" default:"0.002"`
	PriorityFee   uint64        `envconfig:"PRIORITY_FEE_MICRO_LAMPORTS" default:"50000"`
	SendAttempts  uint          `envconfig:"SEND_MAX_ATTEMPTS" default:"3"`
	ConfirmWait   time.Duration `envconfig:"CONFIRM_TIMEOUT" default:"60s"`
	SessionTTL    time.Duration `envconfig:"SESSION_TIMEOUT" default:"15m"`
	LogLevel      string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat     string        `envconfig:"LOG_FORMAT" default:"text"`
}

// cfg is the global configuration instance
var cfg *Config

// Init loads configuration from environment variables.
func Init() error {
	c := &Config{}
	if err := envconfig.Process("", c); err != nil {
		return fmt.Errorf("failed to process config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c
	return nil
}

// Validate checks values envconfig cannot express.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StoreBackendSQLite, StoreBackendBadger:
	default:
		return fmt.Errorf("STORE_BACKEND must be %q or %q", StoreBackendSQLite, StoreBackendBadger)
	}
	if c.SendAttempts == 0 {
		return errors.New("SEND_MAX_ATTEMPTS must be at least 1")
	}
	return nil
}

// Get returns the global configuration instance.
// Panics if Init() was not called.
func Get() *Config {
	if cfg == nil {
		panic("config not initialized, call Init() first")
	}
	return cfg
}

// PromptForPassword prompts the user for the master password in the terminal.
// The password is read without echoing (hidden input).
// Caller must zero the returned slice after use.
func PromptForPassword(prompt string) ([]byte, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, errors.New("stdin is not a terminal: run the app interactively to enter password")
	}
	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("password cannot be empty")
	}
	return raw, nil
}
