package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignAndVerify(t *testing.T) {
	v := NewVerifier("test-secret")

	token, err := v.Sign("0xabc", 15*time.Minute)
	require.NoError(t, err)

	address, err := v.Verify(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "0xabc", address)
}

func TestVerifyRejects(t *testing.T) {
	v := NewVerifier("test-secret")
	other := NewVerifier("other-secret")

	foreign, err := other.Sign("0xabc", time.Minute)
	require.NoError(t, err)

	expired, err := v.Sign("0xabc", -time.Minute)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "0xabc"}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "0xabc",
		"exp": time.Now().Add(time.Minute).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":    "not-a-token",
		"foreign":    foreign,
		"expired":    expired,
		"no expiry":  noExpiry,
		"no subject": noSubject,
		"alg none":   none,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestMissingSecret(t *testing.T) {
	v := NewVerifier("")

	_, err := v.Sign("0xabc", time.Minute)
	assert.ErrorIs(t, err, ErrMissingKey)

	_, err = v.Verify(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrMissingKey)
}
