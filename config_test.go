package stackless_test

import (
	"testing"

	"github.com/wkhere/stackless"
)

func TestDefaultConfigVerifies(t *testing.T) {
	cfg := stackless.DefaultConfig()
	if err := cfg.Verify(); err != nil {
		t.Errorf("DefaultConfig().Verify() = %v, want nil", err)
	}
}

func TestConfigVerifyRejectsUnknownCrashPolicy(t *testing.T) {
	cfg := stackless.DefaultConfig()
	cfg.CrashPolicy = "explode"
	if err := cfg.Verify(); err == nil {
		t.Error("Verify() = nil for an invalid crashpolicy, want an error")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := stackless.LoadConfig("/nonexistent/stackless-config.yaml"); err == nil {
		t.Error("LoadConfig of a missing file = nil error, want non-nil")
	}
}
