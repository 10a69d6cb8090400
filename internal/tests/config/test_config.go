package config

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/Mulandii/Clinic-cms/internal/config"
)

// RecordKeyID is the active record key in test configurations
const RecordKeyID = "test-k1"

// LoadTestConfig builds a validated configuration for in-process tests:
// database credentials, email code delivery and a fixed record key. No file
// or environment is read.
func LoadTestConfig(t testing.TB) *config.Config {
	t.Helper()

	cfg, err := config.FromFile(config.Defaults())
	if err != nil {
		t.Fatalf("default config: %v", err)
	}

	cfg.GinMode = "test"
	cfg.DSN = "sqlite://memory"
	cfg.JWTSecret = strings.Repeat("e2e-secret-", 4)
	cfg.SMTPUser = "clinic@clinic.test"
	cfg.SMTPPassword = "unused"
	cfg.SMTPFrom = cfg.SMTPUser
	cfg.RecordKeys = RecordKeyID + ":" + base64.StdEncoding.EncodeToString([]byte(strings.Repeat("r", 32)))
	cfg.RecordActiveKey = RecordKeyID
	cfg.RateLimitBurst = 100

	if err := cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return cfg
}
