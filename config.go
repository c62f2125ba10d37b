package stackless

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"

	"github.com/wkhere/stackless/internal/task"
)

var validCrashPolicyOptions = []string{"dump", "panic", "dump-and-panic"}

// Config holds the runtime tunables every Hub carries (spec.md §9): the
// spill-growth quota, the fatal-error reporting policy, and the test-only
// fault-injection switch. A Config is copied by value into each Hub at
// creation time, mirroring compileopts.Options being passed by value
// through the compiler's pipeline.
type Config struct {
	// SpillQuota overrides task.FrameQuota, the synthetic extent size each
	// chain element is given. It is package-wide, not per Hub. Zero means
	// "use the package default."
	SpillQuota uint64

	// CrashPolicy controls what a fatal structural violation does: write a
	// crash dump file, panic the process, or both. Empty means
	// "dump-and-panic".
	CrashPolicy string

	// CrashDir is the directory crashdump.go writes dumps into. Empty
	// means the current working directory.
	CrashDir string

	// FailNextSpill is a test-only knob: when true, the very next spill
	// attempted in the process (the flag is package-wide in internal/task)
	// fails with task.ErrSpillAlloc, exercising
	// spec.md §4.B's "spill failure must abort the switch cleanly" edge
	// case without needing to actually exhaust memory.
	FailNextSpill bool
}

// DefaultConfig returns the Config every Hub is created with: Main,
// Current and New all create Hubs from it, and no call passes a different
// Config to a Hub.
func DefaultConfig() Config {
	return Config{CrashPolicy: "dump-and-panic"}
}

// Verify validates c, the same shape as compileopts.Options.Verify: empty
// fields are left to their default, set fields are checked against the
// enumerated valid values.
func (c *Config) Verify() error {
	if c.CrashPolicy != "" && !isInArray(validCrashPolicyOptions, c.CrashPolicy) {
		return fmt.Errorf("invalid crashpolicy option %q: valid values are %s",
			c.CrashPolicy, strings.Join(validCrashPolicyOptions, ", "))
	}
	return nil
}

func isInArray(arr []string, item string) bool {
	for _, i := range arr {
		if i == item {
			return true
		}
	}
	return false
}

// LoadConfig reads a YAML config file at path, starting from
// DefaultConfig so unset fields keep their defaults, and validates the
// result with Verify.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("stackless: reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("stackless: parsing config: %w", err)
	}
	if err := cfg.Verify(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// apply pushes cfg's runtime-affecting fields into package-level state
// that internal/task reads. It is called once, when a Hub adopts cfg.
func (c Config) apply() {
	if c.SpillQuota != 0 {
		task.FrameQuota = task.Addr(c.SpillQuota)
	}
	if c.FailNextSpill {
		task.FailNextSpill(true)
	}
}
