package sse

import "time"

// Config holds configuration for explorer render streams
type Config struct {
	// KeepAliveInterval is how often a comment is sent so proxies keep the connection open
	KeepAliveInterval time.Duration

	// FrameInterval is the sampling period while the view animates (about 30 fps)
	FrameInterval time.Duration

	// IdleInterval is the sampling period while nothing moves; changes made by other
	// requests show up within this delay
	IdleInterval time.Duration
}

// DefaultConfig returns the default stream configuration.
// 10 seconds of keep-alive is safe for most proxies.
func DefaultConfig() *Config {
	return &Config{
		KeepAliveInterval: 10 * time.Second,
		FrameInterval:     33 * time.Millisecond,
		IdleInterval:      250 * time.Millisecond,
	}
}
