package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	saltLength = 16
	keyLength  = 32
)

// Hasher derives and verifies peppered Argon2id password hashes in PHC
// encoding: $argon2id$v=19$m=<KiB>,t=<iters>,p=<threads>$<salt>$<digest>.
// The pepper is applied as an HMAC-SHA256 pre-hash, so a leaked database is
// uncrackable without the server-held secret.
type Hasher struct {
	pepper    []byte
	memoryKiB uint32
	time      uint32
	threads   uint8
}

// NewHasher creates a Hasher with the configured cost parameters. Zero cost
// values fall back to safe minimums so a misconfigured environment can never
// silently produce weak hashes.
func NewHasher(secrets *Secrets, cfg Config) *Hasher {
	h := &Hasher{
		pepper:    secrets.pepper,
		memoryKiB: cfg.ArgonMemoryKiB,
		time:      cfg.ArgonTime,
		threads:   cfg.ArgonThreads,
	}
	if h.memoryKiB < 8*1024 {
		h.memoryKiB = 64 * 1024
	}
	if h.time == 0 {
		h.time = 1
	}
	if h.threads == 0 {
		h.threads = 4
	}
	return h
}

// Hash returns a fresh PHC-encoded hash of the password. Each call draws a
// new random salt, so hashing the same password twice yields different
// encodings that both verify.
func (h *Hasher) Hash(password string) (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("auth: failed to generate salt: %w", err)
	}

	digest := h.derive(password, salt, h.memoryKiB, h.time, h.threads, keyLength)

	encoded := fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.memoryKiB, h.time, h.threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	)
	return encoded, nil
}

// Verify recomputes the digest from the encoded hash's own parameters and
// compares in constant time. A malformed hash and a true mismatch are
// indistinguishable to the caller: both return ErrInvalidCredential.
func (h *Hasher) Verify(password, encodedHash string) error {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return ErrInvalidCredential
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return ErrInvalidCredential
	}

	var memoryKiB, time uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memoryKiB, &time, &threads); err != nil {
		return ErrInvalidCredential
	}
	if memoryKiB == 0 || time == 0 || threads == 0 {
		return ErrInvalidCredential
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return ErrInvalidCredential
	}

	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(expected) == 0 {
		return ErrInvalidCredential
	}

	digest := h.derive(password, salt, memoryKiB, time, threads, uint32(len(expected)))

	if subtle.ConstantTimeCompare(digest, expected) != 1 {
		return ErrInvalidCredential
	}
	return nil
}

// derive applies the pepper via HMAC-SHA256 before the memory-hard Argon2id
// pass. x/crypto/argon2 has no secret-key input of its own, so the keyed
// pre-hash carries the pepper into the derivation.
func (h *Hasher) derive(password string, salt []byte, memoryKiB, time uint32, threads uint8, keyLen uint32) []byte {
	mac := hmac.New(sha256.New, h.pepper)
	mac.Write([]byte(password))
	peppered := mac.Sum(nil)

	return argon2.IDKey(peppered, salt, time, memoryKiB, threads, keyLen)
}
