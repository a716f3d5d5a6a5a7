package config

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"loyaltyledger/crypto"
)

func newAddress(t *testing.T) string {
	t.Helper()
	key, err := crypto.GeneratePrivateKey()
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return key.Address().String()
}

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadParsesSections(t *testing.T) {
	authority, customer := newAddress(t), newAddress(t)
	path := writeConfig(t, fmt.Sprintf(`RPCAddress = "0.0.0.0:9000"
DataDir = "./data"
ChainID = 42
Environment = "staging"

[Log]
File = "/var/log/loyaltyd.log"
MaxSizeMB = 50
Compress = true

[RPC]
JWTSecret = "inline"
JWTIssuer = "pos"
RequestsPerMinute = 120
Burst = 10

[Telemetry]
Endpoint = "otel:4318"
Traces = true
SampleRatio = 0.25
Headers = "x-tenant=shop"

[Pauses]
Loyalty = true

[PaymentAsset]
Decimals = 2
MintAuthority = "%s"

[[Genesis.Allocations]]
Owner = "%s"
Amount = 1000
`, authority, customer))

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ChainID != 42 || cfg.Environment != "staging" || cfg.RPCAddress != "0.0.0.0:9000" {
		t.Fatalf("unexpected top level: %+v", cfg)
	}
	if cfg.Log.File != "/var/log/loyaltyd.log" || cfg.Log.MaxSizeMB != 50 || !cfg.Log.Compress {
		t.Fatalf("unexpected log section: %+v", cfg.Log)
	}
	if cfg.RPC.RequestsPerMinute != 120 || cfg.RPC.Burst != 10 || cfg.RPC.ReadHeaderTimeout != 5 {
		t.Fatalf("unexpected rpc section: %+v", cfg.RPC)
	}
	if !cfg.Telemetry.Traces || cfg.Telemetry.SampleRatio != 0.25 {
		t.Fatalf("unexpected telemetry section: %+v", cfg.Telemetry)
	}
	if !cfg.Pauses.IsPaused("loyalty") || cfg.Pauses.IsPaused("ledger") {
		t.Fatalf("unexpected pauses: %+v", cfg.Pauses)
	}
	asset, mintAuthority, err := cfg.PaymentAsset.Addresses()
	if err != nil {
		t.Fatalf("payment asset: %v", err)
	}
	if !asset.IsZero() || mintAuthority.String() != authority {
		t.Fatalf("unexpected payment asset addresses: %s %s", asset, mintAuthority)
	}
	allocations, err := cfg.Genesis.Parse()
	if err != nil {
		t.Fatalf("genesis: %v", err)
	}
	if len(allocations) != 1 || allocations[0].Owner.String() != customer || allocations[0].Amount != 1000 {
		t.Fatalf("unexpected allocations: %+v", allocations)
	}
}

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load default: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	raw, err := os.ReadFile(cfg.PaymentAsset.MintAuthorityKeyFile)
	if err != nil {
		t.Fatalf("read key file: %v", err)
	}
	if len(strings.TrimSpace(string(raw))) != 64 {
		t.Fatalf("unexpected key file contents %q", raw)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.PaymentAsset.MintAuthority != cfg.PaymentAsset.MintAuthority {
		t.Fatalf("mint authority changed across reload")
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "ChainID = 1\nListenAddress = \":6001\"\n")
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "ListenAddress") {
		t.Fatalf("expected unknown key error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	authority := newAddress(t)
	owner := newAddress(t)
	valid := func() *Config {
		cfg := &Config{ChainID: 1, PaymentAsset: PaymentAsset{MintAuthority: authority}}
		cfg.applyDefaults()
		return cfg
	}
	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := map[string]func(*Config){
		"chain id":        func(c *Config) { c.ChainID = 0 },
		"mint authority":  func(c *Config) { c.PaymentAsset.MintAuthority = "" },
		"bad asset":       func(c *Config) { c.PaymentAsset.Address = "not-an-address" },
		"sample ratio":    func(c *Config) { c.Telemetry.SampleRatio = 2 },
		"negative rate":   func(c *Config) { c.RPC.RequestsPerMinute = -1 },
		"bad owner":       func(c *Config) { c.Genesis.Allocations = []Allocation{{Owner: "zz", Amount: 1}} },
		"duplicate owner": func(c *Config) { c.Genesis.Allocations = []Allocation{{Owner: owner, Amount: 1}, {Owner: owner, Amount: 2}} },
		"supply overflow": func(c *Config) {
			c.Genesis.Allocations = []Allocation{{Owner: owner, Amount: math.MaxUint64}, {Owner: authority, Amount: 1}}
		},
	}
	for name, mutate := range cases {
		cfg := valid()
		mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}

func TestJWTSecretPrefersEnvironment(t *testing.T) {
	cfg := &Config{RPC: RPC{JWTSecret: "inline", JWTSecretEnv: "LOYALTY_TEST_JWT"}}
	if got := cfg.JWTSecret(); got != "inline" {
		t.Fatalf("expected inline secret, got %q", got)
	}
	t.Setenv("LOYALTY_TEST_JWT", "from-env")
	if got := cfg.JWTSecret(); got != "from-env" {
		t.Fatalf("expected env secret, got %q", got)
	}
}
