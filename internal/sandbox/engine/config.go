package engine

const (
	defaultTimeLimitMs    int64 = 5000
	defaultMemoryLimitMB  int64 = 256
	defaultMaxOutputBytes int64 = 1 << 20

	// watchdogGraceMs is added to the caller's time limit before the
	// wall-clock watchdog fires. The OS CPU limit (where available)
	// usually trips first; the watchdog is the backstop.
	watchdogGraceMs int64 = 1000
)

// Config controls the resource-limited executor. Values apply when the
// caller does not override them per run.
type Config struct {
	TimeLimitMs    int64 `yaml:"timeLimitMs"`
	MemoryLimitMB  int64 `yaml:"memoryLimitMB"`
	MaxOutputBytes int64 `yaml:"maxOutputBytes"`
}

func (c Config) withDefaults() Config {
	if c.TimeLimitMs <= 0 {
		c.TimeLimitMs = defaultTimeLimitMs
	}
	if c.MemoryLimitMB <= 0 {
		c.MemoryLimitMB = defaultMemoryLimitMB
	}
	if c.MaxOutputBytes <= 0 {
		c.MaxOutputBytes = defaultMaxOutputBytes
	}
	return c
}

// ResourceLimiter installs OS-level limits on a started child process.
// The linux implementation uses rlimits; elsewhere a no-op stands in and
// the wall-clock watchdog alone enforces the time budget. That asymmetry
// is deliberate: limits degrade to advisory off linux, they are never
// silently emulated.
type ResourceLimiter interface {
	Apply(pid int, timeLimitMs, memoryLimitMB int64) error
}
