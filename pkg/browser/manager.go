package browser

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"

	"github.com/entrhq/scribe/pkg/logging"
)

// Launch arguments disabling the Chromium sandbox, required when running
// inside containers without user namespaces.
var launchArgs = []string{
	"--no-sandbox",
	"--disable-setuid-sandbox",
	"--disable-dev-shm-usage",
	"--disable-gpu",
}

// SessionManager owns every live browser session. It is the only component
// permitted to create, repair, or destroy browser and context handles;
// everything else holds session ids and borrowed pages.
type SessionManager struct {
	mu          sync.RWMutex
	sessions    map[string]*Session
	playwright  *playwright.Playwright
	opts        Options
	log         *logging.Logger
	initialized bool
}

// NewSessionManager creates a session manager. The automation engine is not
// started until the first session is created.
func NewSessionManager(opts Options) *SessionManager {
	log, _ := logging.NewLogger("browser")
	return &SessionManager{
		sessions: make(map[string]*Session),
		opts:     opts.withDefaults(),
		log:      log,
	}
}

// Initialize installs and starts the Playwright engine. Called lazily by
// CreateSession on first use; safe to call ahead of time.
func (m *SessionManager) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.initializeLocked()
}

func (m *SessionManager) initializeLocked() error {
	if m.initialized {
		return nil
	}

	// Discard driver output; it interleaves badly with our own logs
	runOpts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	if err := playwright.Install(runOpts); err != nil {
		return fmt.Errorf("%w: installing playwright: %v", ErrSessionCreation, err)
	}

	pw, err := playwright.Run(runOpts)
	if err != nil {
		return fmt.Errorf("%w: starting playwright: %v", ErrSessionCreation, err)
	}

	m.playwright = pw
	m.initialized = true
	m.log.Infof("automation engine started")
	return nil
}

// CreateSession launches a browser and context pair and returns the new
// session id. Creation is atomic: on any failure the partially constructed
// resources are closed and the caller has nothing to clean up.
func (m *SessionManager) CreateSession() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) >= m.opts.MaxSessions {
		return "", fmt.Errorf("%w: maximum number of sessions (%d) reached", ErrSessionCreation, m.opts.MaxSessions)
	}

	if err := m.initializeLocked(); err != nil {
		return "", err
	}

	browser, err := m.playwright.Chromium.Launch(m.launchOptions())
	if err != nil {
		return "", fmt.Errorf("%w: launching browser: %v", ErrSessionCreation, err)
	}

	context, err := browser.NewContext(m.contextOptions())
	if err != nil {
		browser.Close()
		return "", fmt.Errorf("%w: creating context: %v", ErrSessionCreation, err)
	}

	session := &Session{
		ID:        uuid.NewString(),
		Browser:   browser,
		Context:   context,
		CreatedAt: time.Now(),
	}
	m.sessions[session.ID] = session

	m.log.Infof("session %s created (headless=%v)", session.ID, m.opts.Headless)
	return session.ID, nil
}

func (m *SessionManager) launchOptions() playwright.BrowserTypeLaunchOptions {
	opts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(m.opts.Headless),
		Devtools: playwright.Bool(m.opts.Devtools),
		Args:     launchArgs,
	}
	if m.opts.SlowMo > 0 {
		opts.SlowMo = playwright.Float(float64(m.opts.SlowMo.Milliseconds()))
	}
	return opts
}

func (m *SessionManager) contextOptions() playwright.BrowserNewContextOptions {
	return playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  m.opts.ViewportWidth,
			Height: m.opts.ViewportHeight,
		},
		UserAgent:         playwright.String(m.opts.UserAgent),
		AcceptDownloads:   playwright.Bool(false),
		JavaScriptEnabled: playwright.Bool(true),
		IgnoreHttpsErrors: playwright.Bool(true),
	}
}

// Authenticate drives the login form on the session's context. On success
// the session is marked authenticated and the returned page is left open:
// the authenticated navigation state lives on it, so ownership of continued
// use transfers to the caller for the rest of the run. A recognized login
// rejection returns (false, page, nil) with the page still open so the
// caller can inspect it; flow errors return (false, nil, err).
func (m *SessionManager) Authenticate(sessionID string, creds Credentials) (bool, Page, error) {
	session, err := m.session(sessionID)
	if err != nil {
		return false, nil, err
	}

	m.log.Infof("session %s: authenticating against %s as %s", sessionID, creds.LoginURL, creds.Username)

	rawPage, err := session.Context.NewPage()
	if err != nil {
		return false, nil, fmt.Errorf("%w: opening login page: %v", ErrAuthentication, err)
	}
	page := WrapPage(rawPage)

	ok, err := authenticateOnPage(page, creds, authOptions{
		PageLoadTimeout:    m.opts.PageLoadTimeout,
		ElementWaitTimeout: m.opts.ElementWaitTimeout,
		Log:                m.log,
	})
	if err != nil {
		_ = page.Close()
		m.log.Errorf("session %s: authentication error: %v", sessionID, err)
		return false, nil, err
	}
	if !ok {
		m.log.Warnf("session %s: login rejected by target", sessionID)
		return false, page, nil
	}

	m.mu.Lock()
	session.Authenticated = true
	m.mu.Unlock()

	m.log.Infof("session %s: authenticated", sessionID)
	return true, page, nil
}

// GetPage validates the session's context with a throw-away page probe,
// recreating the context if the probe fails, and returns a freshly opened
// page with the standard timeouts and crash listeners attached.
func (m *SessionManager) GetPage(sessionID string) (Page, error) {
	session, err := m.session(sessionID)
	if err != nil {
		return nil, err
	}

	// Liveness probe: a corrupted context fails to open pages
	if probe, probeErr := session.Context.NewPage(); probeErr != nil {
		m.log.Warnf("session %s: context probe failed, recreating: %v", sessionID, probeErr)
		if err := m.recreateContext(sessionID); err != nil {
			return nil, err
		}
		session, err = m.session(sessionID)
		if err != nil {
			return nil, err
		}
	} else {
		_ = probe.Close()
	}

	rawPage, err := session.Context.NewPage()
	if err != nil {
		return nil, fmt.Errorf("%w: opening page: %v", ErrContextCorruption, err)
	}

	rawPage.SetDefaultTimeout(float64(m.opts.PageLoadTimeout.Milliseconds()))
	rawPage.SetDefaultNavigationTimeout(float64(m.opts.NavigationTimeout.Milliseconds()))

	// Page-level script errors and crashes are logged, never raised
	rawPage.OnPageError(func(err error) {
		m.log.Warnf("session %s: page error: %v", sessionID, err)
	})
	rawPage.OnCrash(func(playwright.Page) {
		m.log.Errorf("session %s: page crashed", sessionID)
	})

	return WrapPage(rawPage), nil
}

// recreateContext replaces the session's context with a fresh one of
// identical configuration and resets the authenticated flag; the caller
// must re-authenticate if it needs the login state afterward.
func (m *SessionManager) recreateContext(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[sessionID]
	if !exists {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	if session.Context != nil {
		if err := session.Context.Close(); err != nil {
			m.log.Warnf("session %s: closing corrupted context: %v", sessionID, err)
		}
	}

	context, err := session.Browser.NewContext(m.contextOptions())
	if err != nil {
		return fmt.Errorf("%w: recreating context: %v", ErrSessionCreation, err)
	}

	session.Context = context
	session.Authenticated = false
	m.log.Infof("session %s: context recreated", sessionID)
	return nil
}

// CloseSession closes the session's context and browser and removes it from
// the live set. Idempotent: closing an unknown id is a no-op.
func (m *SessionManager) CloseSession(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeSessionLocked(sessionID)
}

func (m *SessionManager) closeSessionLocked(sessionID string) {
	session, exists := m.sessions[sessionID]
	if !exists {
		return
	}

	if session.Context != nil {
		if err := session.Context.Close(); err != nil {
			m.log.Warnf("session %s: closing context: %v", sessionID, err)
		}
	}
	if session.Browser != nil {
		if err := session.Browser.Close(); err != nil {
			m.log.Warnf("session %s: closing browser: %v", sessionID, err)
		}
	}

	delete(m.sessions, sessionID)
	m.log.Infof("session %s closed", sessionID)
}

// SweepExpired closes every session older than maxIdle and returns the
// number closed. Intended to run on a periodic background tick.
func (m *SessionManager) SweepExpired(maxIdle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	var expired []string
	for id, session := range m.sessions {
		if now.Sub(session.CreatedAt) > maxIdle {
			expired = append(expired, id)
		}
	}

	for _, id := range expired {
		m.log.Infof("session %s expired after %s", id, maxIdle)
		m.closeSessionLocked(id)
	}
	return len(expired)
}

// Shutdown closes every live session and stops the automation engine.
func (m *SessionManager) Shutdown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id := range m.sessions {
		m.closeSessionLocked(id)
	}

	if m.initialized && m.playwright != nil {
		if err := m.playwright.Stop(); err != nil {
			return fmt.Errorf("failed to stop playwright: %w", err)
		}
		m.playwright = nil
		m.initialized = false
	}
	m.log.Infof("session manager shut down")
	return nil
}

// ActiveSessions returns the number of live sessions.
func (m *SessionManager) ActiveSessions() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// IsAuthenticated reports whether the session exists and its context has a
// successful login.
func (m *SessionManager) IsAuthenticated(sessionID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, exists := m.sessions[sessionID]
	return exists && session.Authenticated
}

// ListSessions returns metadata about every live session, for the
// diagnostic surface.
func (m *SessionManager) ListSessions() []SessionInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]SessionInfo, 0, len(m.sessions))
	for _, session := range m.sessions {
		infos = append(infos, SessionInfo{
			ID:            session.ID,
			Authenticated: session.Authenticated,
			CreatedAt:     session.CreatedAt,
		})
	}
	return infos
}

func (m *SessionManager) session(sessionID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, exists := m.sessions[sessionID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return session, nil
}

