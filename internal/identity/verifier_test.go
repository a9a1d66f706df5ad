package identity

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/greengo-app/greengo-api/internal/models"
)

type fakeAssertionVerifier struct {
	VerifyFunc func(ctx context.Context, rawToken string) (string, error)
}

func (f *fakeAssertionVerifier) Verify(ctx context.Context, rawToken string) (string, error) {
	return f.VerifyFunc(ctx, rawToken)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseBearerToken(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		wantToken string
		wantErr   error
	}{
		{name: "valid", header: "Bearer abc123", wantToken: "abc123"},
		{name: "lowercase scheme", header: "bearer abc123", wantToken: "abc123"},
		{name: "empty header", header: "", wantErr: models.ErrMissingCredential},
		{name: "wrong scheme", header: "Basic abc123", wantErr: models.ErrMissingCredential},
		{name: "no token", header: "Bearer ", wantErr: models.ErrMissingCredential},
		{name: "token only", header: "abc123", wantErr: models.ErrMissingCredential},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := ParseBearerToken(tt.header)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.wantToken, token)
		})
	}
}

func TestVerifyBearer_Success(t *testing.T) {
	assertions := &fakeAssertionVerifier{
		VerifyFunc: func(ctx context.Context, rawToken string) (string, error) {
			assert.Equal(t, "provider-token", rawToken)
			return "subject-1", nil
		},
	}
	v := NewVerifier(assertions, discardLogger())

	subject, err := v.VerifyBearer(context.Background(), "Bearer provider-token")
	assert.NoError(t, err)
	assert.Equal(t, "subject-1", subject)
}

func TestVerifyBearer_MissingHeader(t *testing.T) {
	assertions := &fakeAssertionVerifier{
		VerifyFunc: func(ctx context.Context, rawToken string) (string, error) {
			t.Fatal("assertion verifier should not be called")
			return "", nil
		},
	}
	v := NewVerifier(assertions, discardLogger())

	_, err := v.VerifyBearer(context.Background(), "")
	assert.ErrorIs(t, err, models.ErrMissingCredential)
}

func TestVerifyBearer_ProviderRejection(t *testing.T) {
	assertions := &fakeAssertionVerifier{
		VerifyFunc: func(ctx context.Context, rawToken string) (string, error) {
			return "", errors.New("token signature mismatch")
		},
	}
	v := NewVerifier(assertions, discardLogger())

	_, err := v.VerifyBearer(context.Background(), "Bearer forged")
	assert.ErrorIs(t, err, models.ErrInvalidCredential)
	assert.NotContains(t, err.Error(), "signature")
}
