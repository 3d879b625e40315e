package browser

import (
	"time"

	"github.com/playwright-community/playwright-go"
)

// Credentials carries the login form inputs for a session. Never persisted
// beyond the session's lifetime.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	LoginURL string `json:"login_url" validate:"required,url"`
}

// String renders the credentials with the password redacted so they are
// safe to log.
func (c Credentials) String() string {
	return "Credentials{Username: " + c.Username + ", Password: [redacted], LoginURL: " + c.LoginURL + "}"
}

// Session represents one live browser session with its associated resources.
// Exclusively owned by the SessionManager; other components hold only the id
// and borrowed page handles.
type Session struct {
	// ID is the opaque token identifying this session
	ID string

	// Browser is the Playwright browser instance
	Browser playwright.Browser

	// Context is the browser context (isolated storage and cookies)
	Context playwright.BrowserContext

	// Authenticated reports whether the login flow succeeded on this context
	Authenticated bool

	// CreatedAt is the timestamp when the session was created
	CreatedAt time.Time
}

// Options configures session launch behavior.
type Options struct {
	// Headless controls whether browsers run without a visible window
	Headless bool

	// SlowMo delays every driver operation, for debugging
	SlowMo time.Duration

	// Devtools opens the browser devtools panel on launch
	Devtools bool

	// UserAgent is the pinned desktop user agent for every context
	UserAgent string

	// Viewport dimensions applied to every context and page
	ViewportWidth  int
	ViewportHeight int

	// PageLoadTimeout bounds page loads and the default page timeout
	PageLoadTimeout time.Duration

	// ElementWaitTimeout bounds per-candidate selector waits
	ElementWaitTimeout time.Duration

	// NavigationTimeout bounds navigations on pages from GetPage
	NavigationTimeout time.Duration

	// MaxSessions caps the number of concurrently live sessions
	MaxSessions int
}

// Default values applied when an Options field is zero.
const (
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
	DefaultMaxSessions    = 5
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	DefaultPageLoadTimeout    = 30 * time.Second
	DefaultElementWaitTimeout = 5 * time.Second
	DefaultNavigationTimeout  = 30 * time.Second
)

func (o Options) withDefaults() Options {
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.ViewportWidth == 0 {
		o.ViewportWidth = DefaultViewportWidth
	}
	if o.ViewportHeight == 0 {
		o.ViewportHeight = DefaultViewportHeight
	}
	if o.PageLoadTimeout == 0 {
		o.PageLoadTimeout = DefaultPageLoadTimeout
	}
	if o.ElementWaitTimeout == 0 {
		o.ElementWaitTimeout = DefaultElementWaitTimeout
	}
	if o.NavigationTimeout == 0 {
		o.NavigationTimeout = DefaultNavigationTimeout
	}
	if o.MaxSessions == 0 {
		o.MaxSessions = DefaultMaxSessions
	}
	return o
}

// SessionInfo contains metadata about a live session, for the diagnostic
// surface.
type SessionInfo struct {
	ID            string    `json:"id"`
	Authenticated bool      `json:"authenticated"`
	CreatedAt     time.Time `json:"created_at"`
}
