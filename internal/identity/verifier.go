package identity

import (
	"context"
	"log/slog"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/greengo-app/greengo-api/internal/models"
)

// AssertionVerifier checks an opaque identity assertion with the external
// identity provider and returns the stable subject identifier it asserts.
type AssertionVerifier interface {
	Verify(ctx context.Context, rawToken string) (subject string, err error)
}

// OIDCVerifier validates identity assertions against an OIDC provider's
// published signing keys.
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCVerifier performs provider discovery against the issuer and returns
// a verifier bound to its signing keys. Discovery requires network access to
// the issuer's well-known configuration endpoint.
func NewOIDCVerifier(ctx context.Context, issuer, audience string) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, err
	}

	cfg := &oidc.Config{ClientID: audience}
	if audience == "" {
		cfg.SkipClientIDCheck = true
	}

	return &OIDCVerifier{verifier: provider.Verifier(cfg)}, nil
}

func (v *OIDCVerifier) Verify(ctx context.Context, rawToken string) (string, error) {
	token, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		return "", err
	}
	return token.Subject, nil
}

// Verifier resolves inbound Authorization headers to identity-provider
// subjects. Provider-side failures are folded into a single generic error so
// callers never leak why an assertion was rejected.
type Verifier struct {
	assertions AssertionVerifier
	logger     *slog.Logger
}

func NewVerifier(assertions AssertionVerifier, logger *slog.Logger) *Verifier {
	return &Verifier{
		assertions: assertions,
		logger:     logger,
	}
}

// VerifyBearer extracts the bearer token from an Authorization header value
// and verifies it with the identity provider. A missing or malformed header
// returns ErrMissingCredential; any verification failure returns
// ErrInvalidCredential.
func (v *Verifier) VerifyBearer(ctx context.Context, authorization string) (string, error) {
	raw, err := ParseBearerToken(authorization)
	if err != nil {
		return "", err
	}

	subject, err := v.assertions.Verify(ctx, raw)
	if err != nil {
		v.logger.Warn("identity assertion rejected", "error", err)
		return "", models.ErrInvalidCredential
	}

	return subject, nil
}

// ParseBearerToken returns the token portion of a "Bearer <token>" header
// value, or ErrMissingCredential when the header is absent or malformed.
func ParseBearerToken(authorization string) (string, error) {
	if authorization == "" {
		return "", models.ErrMissingCredential
	}

	parts := strings.SplitN(authorization, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", models.ErrMissingCredential
	}

	return parts[1], nil
}
