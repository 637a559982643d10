package store

// Config holds configuration for the Store.
type Config struct {
	// LockStripes is the number of mutexes guarding slot read-modify-write.
	// Types hash onto stripes; two types sharing a stripe serialize writes.
	// Default: 16
	// Max: 256
	LockStripes int

	// CheckAvailability re-probes the substrate on every operation instead of
	// only at Init. Enable when storage can disappear mid-session (quota,
	// disabled storage, dropped connection).
	// Default: false
	CheckAvailability bool
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		LockStripes:       16,
		CheckAvailability: false,
	}
}

// validate ensures config values are within acceptable bounds.
func (c *Config) validate() {
	if c.LockStripes < 1 {
		c.LockStripes = 1
	}
	if c.LockStripes > 256 {
		c.LockStripes = 256
	}
}
