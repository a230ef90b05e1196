package security

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const b64url = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestCodec(t *testing.T, now time.Time) *JWTCodec {
	t.Helper()
	c, err := NewJWTCodec("super-secret", "HS256")
	require.NoError(t, err)
	return c.WithClock(fixedClock(now))
}

func TestJWTCodec_IssueAndVerify(t *testing.T) {
	t.Parallel()

	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tok, err := newTestCodec(t, issued).Issue("u-1", "alice@example.com", 30*time.Minute)
	require.NoError(t, err)

	claims, err := newTestCodec(t, issued.Add(29*time.Minute)).Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.SubjectID)
	assert.Equal(t, "alice@example.com", claims.SubjectEmail)
	assert.True(t, claims.ExpiresAt.Equal(issued.Add(30*time.Minute)))
}

func TestJWTCodec_Expired(t *testing.T) {
	t.Parallel()

	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tok, err := newTestCodec(t, issued).Issue("u-1", "alice@example.com", time.Minute)
	require.NoError(t, err)

	for _, at := range []time.Time{issued.Add(time.Minute), issued.Add(time.Hour)} {
		_, err = newTestCodec(t, at).Verify(tok)
		assert.ErrorIs(t, err, ErrExpiredToken)
		assert.NotErrorIs(t, err, ErrInvalidToken)
	}
}

func TestJWTCodec_WrongSecret(t *testing.T) {
	t.Parallel()

	now := time.Now()
	tok, err := newTestCodec(t, now).Issue("u-1", "alice@example.com", time.Hour)
	require.NoError(t, err)

	other, err := NewJWTCodec("another-secret", "HS256")
	require.NoError(t, err)
	_, err = other.Verify(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTCodec_TamperingAnyByteFails(t *testing.T) {
	t.Parallel()

	now := time.Now()
	codec := newTestCodec(t, now)
	tok, err := codec.Issue("u-1", "alice@example.com", time.Hour)
	require.NoError(t, err)

	for i := 0; i < len(tok); i++ {
		b := []byte(tok)
		if b[i] == '.' {
			b[i] = 'A'
		} else {
			// Flip the high bit of the 6-bit group so the decoded bytes always change.
			idx := strings.IndexByte(b64url, b[i])
			require.GreaterOrEqual(t, idx, 0)
			b[i] = b64url[idx^32]
		}
		_, err := codec.Verify(string(b))
		assert.Error(t, err, "tampered byte %d must fail verification", i)
	}
}

func TestJWTCodec_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	now := time.Now()
	claims := jwt.MapClaims{"sub": "alice@example.com", "exp": now.Add(time.Hour).Unix()}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("super-secret"))
	require.NoError(t, err)
	_, err = newTestCodec(t, now).Verify(hs512)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = newTestCodec(t, now).Verify(none)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTCodec_RequiresSubjectAndExpiry(t *testing.T) {
	t.Parallel()

	now := time.Now()
	noSub, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "u-1",
		"exp":     now.Add(time.Hour).Unix(),
	}).SignedString([]byte("super-secret"))
	require.NoError(t, err)
	_, err = newTestCodec(t, now).Verify(noSub)
	assert.ErrorIs(t, err, ErrInvalidToken)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice@example.com",
	}).SignedString([]byte("super-secret"))
	require.NoError(t, err)
	_, err = newTestCodec(t, now).Verify(noExp)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTCodec_Malformed(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t, time.Now())
	for _, tok := range []string{"", "not-a-token", "a.b.c", "a.b"} {
		_, err := codec.Verify(tok)
		assert.ErrorIs(t, err, ErrInvalidToken, "token %q", tok)
	}
}

func TestNewJWTCodec_Validation(t *testing.T) {
	t.Parallel()

	_, err := NewJWTCodec("", "HS256")
	assert.Error(t, err)

	_, err = NewJWTCodec("secret", "RS256")
	assert.Error(t, err)

	_, err = NewJWTCodec("secret", "none")
	assert.Error(t, err)

	c, err := NewJWTCodec("secret", "")
	require.NoError(t, err)
	assert.Equal(t, DefaultAlgorithm, c.method.Alg())

	c, err = NewJWTCodec("secret", "HS384")
	require.NoError(t, err)
	assert.Equal(t, "HS384", c.method.Alg())
}
