package config

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"loyaltyledger/crypto"
)

type Config struct {
	RPCAddress   string       `toml:"RPCAddress"`
	DataDir      string       `toml:"DataDir"`
	ChainID      uint64       `toml:"ChainID"`
	Environment  string       `toml:"Environment"`
	Log          Log          `toml:"Log"`
	RPC          RPC          `toml:"RPC"`
	Telemetry    Telemetry    `toml:"Telemetry"`
	Pauses       Pauses       `toml:"Pauses"`
	PaymentAsset PaymentAsset `toml:"PaymentAsset"`
	Genesis      Genesis      `toml:"Genesis"`
}

// Load loads the configuration from the given path. A missing file is
// replaced by a default configuration with a freshly generated mint
// authority.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefault(path)
	}

	cfg := &Config{}
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("config file %s has unknown key %s", path, undecoded[0])
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.RPCAddress) == "" {
		c.RPCAddress = "127.0.0.1:8545"
	}
	if strings.TrimSpace(c.DataDir) == "" {
		c.DataDir = "./loyalty-data"
	}
	if strings.TrimSpace(c.Environment) == "" {
		c.Environment = "local"
	}
	if c.RPC.ReadHeaderTimeout <= 0 {
		c.RPC.ReadHeaderTimeout = 5
	}
	if c.RPC.ShutdownTimeout <= 0 {
		c.RPC.ShutdownTimeout = 10
	}
	if c.Genesis.Allocations == nil {
		c.Genesis.Allocations = []Allocation{}
	}
}

// JWTSecret resolves the RPC secret, preferring the environment variable when
// one is named and set.
func (c *Config) JWTSecret() string {
	if env := strings.TrimSpace(c.RPC.JWTSecretEnv); env != "" {
		if value := strings.TrimSpace(os.Getenv(env)); value != "" {
			return value
		}
	}
	return strings.TrimSpace(c.RPC.JWTSecret)
}

// createDefault creates and saves a default configuration file.
func createDefault(path string) (*Config, error) {
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}
	keyPath := filepath.Join(filepath.Dir(path), "mint-authority.key")
	if err := writeKey(keyPath, key); err != nil {
		return nil, err
	}

	cfg := &Config{
		RPCAddress:  "127.0.0.1:8545",
		DataDir:     "./loyalty-data",
		ChainID:     1,
		Environment: "local",
		RPC: RPC{
			RequestsPerMinute: 600,
			Burst:             60,
		},
		Telemetry: Telemetry{
			Endpoint:    "localhost:4318",
			Insecure:    true,
			SampleRatio: 1,
		},
		PaymentAsset: PaymentAsset{
			Decimals:             6,
			MintAuthority:        key.Address().String(),
			MintAuthorityKeyFile: keyPath,
		},
	}
	cfg.applyDefaults()

	if err := persist(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func writeKey(path string, key *crypto.PrivateKey) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(hex.EncodeToString(key.Bytes())+"\n"), 0o600)
}

func persist(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}
