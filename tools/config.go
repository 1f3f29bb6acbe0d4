package tools

import (
	"fmt"
	"strings"
	"time"

	"github.com/statkit/rsessiond/session"
)

// ReservedPrefix marks names the server keeps for its own bookkeeping inside
// the host session. Objects with this prefix are never surfaced to clients.
const ReservedPrefix = ".rsessiond"

// Default plot capture parameters, passed to the graphics device when the
// caller omits them.
const (
	DefaultPlotWidth  = 800
	DefaultPlotHeight = 600
	DefaultPlotFormat = "png"
)

// Config holds the configuration for a tool service.
type Config struct {
	// Session is the host session capability adapter.
	// Required.
	Session session.Session

	// CallTimeout bounds how long a single call waits for the session,
	// including time spent queued behind other calls. Zero means wait
	// forever. On expiry the call fails with ErrTimeout; the underlying
	// host execution is not stopped.
	CallTimeout time.Duration

	// Logger is an optional logger for observability.
	Logger Logger
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	var missing []string

	if c.Session == nil {
		missing = append(missing, "Session")
	}

	if len(missing) > 0 {
		return fmt.Errorf("tools: missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

func (c *Config) logf(format string, args ...any) {
	if c.Logger != nil {
		c.Logger.Logf(format, args...)
	}
}
