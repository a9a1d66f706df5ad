package auth

import (
	"encoding/base32"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/skip2/go-qrcode"
)

// TOTPManager provisions authenticator-app secrets and validates the codes
// they produce. Secrets are standard base32 strings compatible with any
// RFC 6238 authenticator.
type TOTPManager struct {
	issuer string
}

func NewTOTPManager(issuer string) *TOTPManager {
	return &TOTPManager{issuer: issuer}
}

// Provision returns the shared secret and provisioning URL for an account.
// When existingSecret is non-empty the same secret is re-encoded into a fresh
// provisioning URL instead of generating a new one, so repeated enrollment
// requests before confirmation always describe the same secret.
func (tm *TOTPManager) Provision(accountName, existingSecret string) (secret, otpauthURL string, err error) {
	opts := totp.GenerateOpts{
		Issuer:      tm.issuer,
		AccountName: accountName,
		SecretSize:  32,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	}

	if existingSecret != "" {
		raw, decodeErr := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(existingSecret)
		if decodeErr != nil {
			return "", "", fmt.Errorf("decoding stored secret: %w", decodeErr)
		}
		opts.Secret = raw
	}

	key, err := totp.Generate(opts)
	if err != nil {
		return "", "", fmt.Errorf("generating totp key: %w", err)
	}

	return key.Secret(), key.URL(), nil
}

// QRCodeDataURL renders a provisioning URL as a PNG data URI suitable for
// embedding directly in an <img> tag.
func (tm *TOTPManager) QRCodeDataURL(otpauthURL string) (string, error) {
	png, err := qrcode.Encode(otpauthURL, qrcode.Medium, 256)
	if err != nil {
		return "", fmt.Errorf("encoding qr code: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}

// ValidateCode checks a six-digit code against a secret, accepting one period
// of clock drift in either direction.
func (tm *TOTPManager) ValidateCode(secret, code string) bool {
	valid, err := totp.ValidateCustom(code, secret, time.Now(), totp.ValidateOpts{
		Period:    30,
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && valid
}
