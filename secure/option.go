package secure

import (
	"time"

	"github.com/bletools/blesec"
)

type config struct {
	log            blesec.Logger
	pairingTimeout time.Duration
}

// An Option configures a Secure instance at construction.
type Option func(*config)

// WithLogger overrides the package default logger.
func WithLogger(l blesec.Logger) Option {
	return func(c *config) {
		c.log = l
	}
}

// WithPairingTimeout arms a local deadline for STARTED sessions. Without
// it, timing is left entirely to the engine's protocol timers, and an
// abandoned session is indistinguishable from a slow one.
func WithPairingTimeout(d time.Duration) Option {
	return func(c *config) {
		c.pairingTimeout = d
	}
}
