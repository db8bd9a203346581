package auth_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sorjordet/sorjordet/internal/auth"
)

func testConfig() auth.Config {
	return auth.Config{
		SigningKey: "test-signing-key-0123456789abcdef",
		Pepper:     "test-pepper",
		// Minimal cost so the suite stays fast; NewHasher clamps to its
		// floor anyway.
		ArgonMemoryKiB: 8 * 1024,
		ArgonTime:      1,
		ArgonThreads:   1,
	}
}

func newHasher(t *testing.T, cfg auth.Config) *auth.Hasher {
	t.Helper()
	secrets, err := auth.NewSecrets(cfg)
	require.NoError(t, err)
	return auth.NewHasher(secrets, cfg)
}

func TestHasherRoundTrip(t *testing.T) {
	t.Parallel()

	hasher := newHasher(t, testConfig())

	hash, err := hasher.Hash("S3cure!Pass1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"))

	require.NoError(t, hasher.Verify("S3cure!Pass1", hash))
	assert.ErrorIs(t, hasher.Verify("WrongPass", hash), auth.ErrInvalidCredential)
}

func TestHasherSaltsNeverRepeat(t *testing.T) {
	t.Parallel()

	hasher := newHasher(t, testConfig())

	first, err := hasher.Hash("S3cure!Pass1")
	require.NoError(t, err)
	second, err := hasher.Hash("S3cure!Pass1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.NoError(t, hasher.Verify("S3cure!Pass1", first))
	assert.NoError(t, hasher.Verify("S3cure!Pass1", second))
}

func TestHasherMalformedHash(t *testing.T) {
	t.Parallel()

	hasher := newHasher(t, testConfig())

	// Every parse failure must be indistinguishable from a mismatch.
	for _, encoded := range []string{
		"",
		"not-a-hash",
		"$argon2i$v=19$m=8192,t=1,p=1$c2FsdA$ZGlnZXN0",
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdA$ZGlnZXN0",
		"$argon2id$v=19$m=0,t=0,p=0$c2FsdA$ZGlnZXN0",
		"$argon2id$v=19$m=8192,t=1,p=1$!!!$ZGlnZXN0",
		"$argon2id$v=19$m=8192,t=1,p=1$c2FsdA$!!!",
	} {
		assert.ErrorIs(t, hasher.Verify("S3cure!Pass1", encoded), auth.ErrInvalidCredential, "encoded=%q", encoded)
	}
}

func TestHasherPepperMatters(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	hasher := newHasher(t, cfg)

	hash, err := hasher.Hash("S3cure!Pass1")
	require.NoError(t, err)

	otherCfg := cfg
	otherCfg.Pepper = "a-different-pepper"
	other := newHasher(t, otherCfg)

	assert.ErrorIs(t, other.Verify("S3cure!Pass1", hash), auth.ErrInvalidCredential)
}

func TestNewSecretsRequiresBoth(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.SigningKey = ""
	_, err := auth.NewSecrets(cfg)
	assert.ErrorIs(t, err, auth.ErrMissingSigningKey)

	cfg = testConfig()
	cfg.Pepper = ""
	_, err = auth.NewSecrets(cfg)
	assert.ErrorIs(t, err, auth.ErrMissingPepper)
}
