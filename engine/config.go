package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/jonwraymond/inspectrepl/protocol"
	"github.com/jonwraymond/inspectrepl/render"
	"github.com/jonwraymond/inspectrepl/signature"
	"github.com/jonwraymond/inspectrepl/speculate"
)

// DefaultReleaseEvery is the default number of completion requests per
// object group.
const DefaultReleaseEvery = 16

// Config holds the configuration for an Engine.
type Config struct {
	// Client talks to the target process.
	// Required.
	Client protocol.Client

	// Renderer renders values for display. If it also implements
	// render.Previewer it renders inline previews too.
	// Defaults to render.Text with PreviewWidth.
	Renderer render.Renderer

	// ContextID selects the execution context. Zero means the client's
	// default context.
	ContextID int

	// SpeculativeTimeout bounds each best-effort evaluation.
	// Defaults to speculate.DefaultTimeout.
	SpeculativeTimeout time.Duration

	// PreviewWidth bounds inline previews, in runes.
	// Defaults to render.DefaultWidth.
	PreviewWidth int

	// PublishLastValue exposes results to the target as _ and _error.
	PublishLastValue bool

	// ReleaseEvery is the number of completion requests that share one
	// object group. Once a group has served that many requests and the last
	// of them finishes, its remote handles are released in the target.
	// Defaults to DefaultReleaseEvery.
	ReleaseEvery int

	// Natives holds parameter lists for built-in functions.
	// Defaults to signature.Builtins().
	Natives signature.NativeTable

	// Logger is an optional logger for observability.
	Logger Logger
}

// Validate checks that all required fields are set and limits are sane.
// Returns ErrConfiguration if the configuration cannot be used.
func (c *Config) Validate() error {
	var missing []string
	if c.Client == nil {
		missing = append(missing, "Client")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing required fields: %s",
			ErrConfiguration, strings.Join(missing, ", "))
	}

	if c.SpeculativeTimeout < 0 {
		return fmt.Errorf("%w: SpeculativeTimeout must not be negative", ErrConfiguration)
	}
	if c.PreviewWidth < 0 {
		return fmt.Errorf("%w: PreviewWidth must not be negative", ErrConfiguration)
	}
	if c.ReleaseEvery < 0 {
		return fmt.Errorf("%w: ReleaseEvery must not be negative", ErrConfiguration)
	}
	return nil
}

// applyDefaults sets default values for optional fields.
func (c *Config) applyDefaults() {
	if c.SpeculativeTimeout == 0 {
		c.SpeculativeTimeout = speculate.DefaultTimeout
	}
	if c.PreviewWidth == 0 {
		c.PreviewWidth = render.DefaultWidth
	}
	if c.ReleaseEvery == 0 {
		c.ReleaseEvery = DefaultReleaseEvery
	}
	if c.Renderer == nil {
		c.Renderer = render.Text{Width: c.PreviewWidth}
	}
	if c.Natives == nil {
		c.Natives = signature.Builtins()
	}
	if c.Logger == nil {
		c.Logger = nopLogger{}
	}
}

// previewer returns the inline previewer for the configured renderer.
func (c *Config) previewer() render.Previewer {
	if p, ok := c.Renderer.(render.Previewer); ok {
		return p
	}
	return render.Text{Width: c.PreviewWidth}
}
