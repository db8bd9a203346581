package auth

import "time"

// Config holds all environment-provided authentication settings. The two
// secrets are required: the process must not come up without them, there is
// no safe default.
type Config struct {
	SigningKey string `env:"JWT_SECRET,required"` // SigningKey signs bearer tokens (HMAC-SHA256).
	Pepper     string `env:"PW_PEPPER,required"`  // Pepper is mixed into every password hash, distinct from per-hash salts.

	// TokenTTL bounds issued token lifetime. NonExpiringTokens reproduces the
	// legacy behavior of a fixed far-future expiry for deployments whose
	// clients cannot re-authenticate; leave it off unless required.
	TokenTTL          time.Duration `env:"AUTH_TOKEN_TTL" envDefault:"24h"`
	NonExpiringTokens bool          `env:"AUTH_NON_EXPIRING_TOKENS" envDefault:"false"`

	// MinLoginDelay is the floor every failed login is held to, equalizing
	// the "unknown user" and "wrong password" branches.
	MinLoginDelay time.Duration `env:"AUTH_MIN_LOGIN_DELAY" envDefault:"500ms"`

	// Argon2id cost parameters.
	ArgonMemoryKiB uint32 `env:"AUTH_ARGON_MEMORY_KIB" envDefault:"65536"`
	ArgonTime      uint32 `env:"AUTH_ARGON_TIME" envDefault:"1"`
	ArgonThreads   uint8  `env:"AUTH_ARGON_THREADS" envDefault:"4"`
}

// Secrets is the immutable secret material shared by the hasher, the token
// issuer, and the guard. It is constructed once at startup and passed by
// reference; it is never mutated afterwards, so concurrent reads need no
// synchronization.
type Secrets struct {
	signingKey []byte
	pepper     []byte
}

// NewSecrets builds the secret store from config. Empty secrets are refused;
// config loading should already have failed fast, this is the last line.
func NewSecrets(cfg Config) (*Secrets, error) {
	if cfg.SigningKey == "" {
		return nil, ErrMissingSigningKey
	}
	if cfg.Pepper == "" {
		return nil, ErrMissingPepper
	}
	return &Secrets{
		signingKey: []byte(cfg.SigningKey),
		pepper:     []byte(cfg.Pepper),
	}, nil
}
