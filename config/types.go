package config

// Log configures structured logging and optional file rotation.
type Log struct {
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// RPC configures the JSON-RPC server.
type RPC struct {
	// JWTSecret enables HS256 bearer authentication of write methods.
	JWTSecret string
	// JWTSecretEnv names an environment variable holding the secret.
	JWTSecretEnv      string
	JWTIssuer         string
	RequestsPerMinute float64
	Burst             int
	ReadHeaderTimeout int // seconds
	ShutdownTimeout   int // seconds
}

// Telemetry configures the OpenTelemetry exporters.
type Telemetry struct {
	Endpoint    string
	Insecure    bool
	Traces      bool
	Metrics     bool
	SampleRatio float64
	// Headers is a comma separated key=value list sent with every export.
	Headers string
}

type Pauses struct {
	Loyalty bool
}

// IsPaused reports whether the named module refuses operations.
func (p Pauses) IsPaused(module string) bool {
	switch module {
	case "loyalty":
		return p.Loyalty
	default:
		return false
	}
}

// PaymentAsset describes the asset customers pay merchants in.
type PaymentAsset struct {
	// Address defaults to the derived payment asset address when empty.
	Address       string
	Decimals      uint8
	MintAuthority string
	// MintAuthorityKeyFile holds the hex private key generated for a default
	// configuration.
	MintAuthorityKeyFile string `toml:",omitempty"`
}

// Allocation credits an identity at genesis.
type Allocation struct {
	Owner  string
	Amount uint64
}

// Genesis lists the initial balances of the payment asset.
type Genesis struct {
	Allocations []Allocation
}
