package config

import (
	"os"
	"testing"
	"time"
)

func setRequiredEnv() {
	os.Setenv("JWT_SECRET", "test-secret-32-characters-long!")
	os.Setenv("DB_PASSWORD", "test")
	os.Setenv("IDENTITY_ISSUER", "https://securetoken.example.com/greengo")
}

func TestAuthConfig_Defaults(t *testing.T) {
	setRequiredEnv()
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	tests := []struct {
		name     string
		actual   time.Duration
		expected time.Duration
	}{
		{"SessionExpiry", cfg.Auth.SessionExpiry, 2 * time.Hour},
		{"ExtendedExpiry", cfg.Auth.ExtendedExpiry, 24 * time.Hour},
		{"ChallengeExpiry", cfg.Auth.ChallengeExpiry, 5 * time.Minute},
		{"ResetTokenExpiry", cfg.Auth.ResetTokenExpiry, 1 * time.Hour},
	}

	for _, tt := range tests {
		if tt.actual != tt.expected {
			t.Errorf("%s: got %v, want %v", tt.name, tt.actual, tt.expected)
		}
	}

	if cfg.Auth.TOTPIssuer != "GreenGo" {
		t.Errorf("TOTPIssuer: got %q, want %q", cfg.Auth.TOTPIssuer, "GreenGo")
	}
	if cfg.Auth.MaxCodeAttempts != 5 {
		t.Errorf("MaxCodeAttempts: got %d, want 5", cfg.Auth.MaxCodeAttempts)
	}
}

func TestAuthConfig_CustomValues(t *testing.T) {
	setRequiredEnv()
	os.Setenv("SESSION_EXPIRY", "30m")
	os.Setenv("CHALLENGE_EXPIRY", "2m")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Auth.SessionExpiry != 30*time.Minute {
		t.Errorf("SessionExpiry: got %v, want 30m", cfg.Auth.SessionExpiry)
	}
	if cfg.Auth.ChallengeExpiry != 2*time.Minute {
		t.Errorf("ChallengeExpiry: got %v, want 2m", cfg.Auth.ChallengeExpiry)
	}
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	os.Clearenv()
	os.Setenv("DB_PASSWORD", "test")
	os.Setenv("IDENTITY_ISSUER", "https://securetoken.example.com/greengo")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() without JWT_SECRET should fail")
	}
}

func TestLoad_MissingIdentityIssuer(t *testing.T) {
	os.Clearenv()
	os.Setenv("JWT_SECRET", "test-secret-32-characters-long!")
	os.Setenv("DB_PASSWORD", "test")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() without IDENTITY_ISSUER should fail")
	}
}

func TestLoad_WeakJWTSecret(t *testing.T) {
	os.Clearenv()
	os.Setenv("JWT_SECRET", "short")
	os.Setenv("DB_PASSWORD", "test")
	os.Setenv("IDENTITY_ISSUER", "https://securetoken.example.com/greengo")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() with a short JWT_SECRET should fail")
	}
}

func TestPricingConfig_Defaults(t *testing.T) {
	setRequiredEnv()
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Pricing.ItemsPerKg != 60 {
		t.Errorf("ItemsPerKg: got %d, want 60", cfg.Pricing.ItemsPerKg)
	}
	if cfg.Pricing.RatePerKg != 1.50 {
		t.Errorf("RatePerKg: got %v, want 1.50", cfg.Pricing.RatePerKg)
	}
}
