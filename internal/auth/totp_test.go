package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvision_FreshSecret(t *testing.T) {
	tm := NewTOTPManager("GreenGo")

	secret, otpauthURL, err := tm.Provision("user@example.com", "")
	require.NoError(t, err)

	assert.NotEmpty(t, secret)
	assert.True(t, strings.HasPrefix(otpauthURL, "otpauth://totp/"))
	assert.Contains(t, otpauthURL, "GreenGo")
	assert.Contains(t, otpauthURL, secret)
}

func TestProvision_ReusesExistingSecret(t *testing.T) {
	tm := NewTOTPManager("GreenGo")

	secret, _, err := tm.Provision("user@example.com", "")
	require.NoError(t, err)

	again, otpauthURL, err := tm.Provision("user@example.com", secret)
	require.NoError(t, err)

	assert.Equal(t, secret, again)
	assert.Contains(t, otpauthURL, secret)
}

func TestProvision_RejectsMalformedSecret(t *testing.T) {
	tm := NewTOTPManager("GreenGo")

	_, _, err := tm.Provision("user@example.com", "not base32 at all!!")
	assert.Error(t, err)
}

func TestValidateCode(t *testing.T) {
	tm := NewTOTPManager("GreenGo")

	secret, _, err := tm.Provision("user@example.com", "")
	require.NoError(t, err)

	code, err := totp.GenerateCode(secret, time.Now())
	require.NoError(t, err)

	assert.True(t, tm.ValidateCode(secret, code))
	assert.False(t, tm.ValidateCode(secret, "000000"))
	assert.False(t, tm.ValidateCode(secret, "not-a-code"))
}

func TestValidateCode_AcceptsAdjacentPeriod(t *testing.T) {
	tm := NewTOTPManager("GreenGo")

	secret, _, err := tm.Provision("user@example.com", "")
	require.NoError(t, err)

	previous, err := totp.GenerateCodeCustom(secret, time.Now().Add(-30*time.Second), totp.ValidateOpts{
		Period:    30,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	require.NoError(t, err)

	assert.True(t, tm.ValidateCode(secret, previous))
}

func TestValidateCode_RejectsCodeOutsideDriftWindow(t *testing.T) {
	tm := NewTOTPManager("GreenGo")

	secret, _, err := tm.Provision("user@example.com", "")
	require.NoError(t, err)

	stale, err := totp.GenerateCodeCustom(secret, time.Now().Add(-90*time.Second), totp.ValidateOpts{
		Period:    30,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	require.NoError(t, err)

	assert.False(t, tm.ValidateCode(secret, stale))
}

func TestQRCodeDataURL(t *testing.T) {
	tm := NewTOTPManager("GreenGo")

	_, otpauthURL, err := tm.Provision("user@example.com", "")
	require.NoError(t, err)

	dataURL, err := tm.QRCodeDataURL(otpauthURL)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(dataURL, "data:image/png;base64,"))
}
