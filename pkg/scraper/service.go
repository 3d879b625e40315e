// Package scraper orchestrates authenticated scrape requests end to end:
// request normalization, session establishment, per-URL extraction with
// mode dispatch, result aggregation, and guaranteed session teardown.
package scraper

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/entrhq/scribe/pkg/browser"
	"github.com/entrhq/scribe/pkg/config"
	"github.com/entrhq/scribe/pkg/logging"
)

// SessionProvider is the session lifecycle surface the orchestrator needs.
// Implemented by browser.SessionManager.
type SessionProvider interface {
	CreateSession() (string, error)
	Authenticate(sessionID string, creds browser.Credentials) (bool, browser.Page, error)
	CloseSession(sessionID string)
}

// Service runs scrape requests. URLs within one request are processed
// strictly sequentially over one shared authenticated page; independent
// requests may run concurrently, each owning its own session.
type Service struct {
	sessions SessionProvider
	cfg      config.ScraperConfig
	log      *logging.Logger
	validate *validator.Validate

	// sleep is swapped out in tests
	sleep func(time.Duration)
}

// NewService creates a scraping service on top of a session provider.
func NewService(sessions SessionProvider, cfg config.ScraperConfig) *Service {
	log, _ := logging.NewLogger("scraper")
	return &Service{
		sessions: sessions,
		cfg:      cfg,
		log:      log,
		validate: validator.New(),
		sleep:    time.Sleep,
	}
}

// ValidateRequest checks the request shape without executing anything, for
// the dry-run endpoint. A valid request also normalizes to at least one task.
func (s *Service) ValidateRequest(req Request) error {
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	_, err := s.NormalizeRequest(req)
	return err
}

// NormalizeRequest expands the request into an ordered URLTask list. The
// explicit task list is preferred as-is; the legacy (urls, shared mode)
// form expands into one task per URL. Idempotent over already-normalized
// input.
func (s *Service) NormalizeRequest(req Request) ([]URLTask, error) {
	if len(req.URLTasks) > 0 {
		return req.URLTasks, nil
	}

	if len(req.TargetURLs) > 0 && req.Mode != "" {
		tasks := make([]URLTask, 0, len(req.TargetURLs))
		for _, url := range req.TargetURLs {
			tasks = append(tasks, URLTask{URL: url, Mode: req.Mode})
		}
		return tasks, nil
	}

	return nil, fmt.Errorf("%w: url_configs or target_urls with mode required", ErrValidation)
}

// ExecuteScraping runs a request end to end and always returns one Result
// per task, in submission order, when it returns a Response. The session is
// closed exactly once on every path. Only request validation, session
// creation, and authentication fail the call itself; everything downstream
// fails into the result set.
func (s *Service) ExecuteScraping(req Request) (*Response, error) {
	start := time.Now()

	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	tasks, err := s.NormalizeRequest(req)
	if err != nil {
		return nil, err
	}

	sessionID, err := s.sessions.CreateSession()
	if err != nil {
		return nil, err
	}
	defer s.sessions.CloseSession(sessionID)

	s.log.Infof("session %s: scraping %d url(s) with %s", sessionID, len(tasks), req.Credentials)

	ok, page, err := s.sessions.Authenticate(sessionID, req.Credentials)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: login rejected by target", browser.ErrAuthentication)
	}

	// The same page is reused for every task: the target's login state
	// lives in that page's session storage. The page is borrowed from
	// the session and is never closed here.
	results := make([]Result, 0, len(tasks))
	for _, task := range tasks {
		s.log.Infof("session %s: processing %s (mode=%s)", sessionID, task.URL, task.Mode)
		result := s.scrapeSingleURL(page, task)
		if result.Status == StatusSuccess {
			s.log.Infof("session %s: %s done in %.2fs", sessionID, task.URL, result.ProcessingTime)
		} else {
			s.log.Errorf("session %s: %s failed: %s", sessionID, task.URL, result.ErrorMessage)
		}
		results = append(results, result)
	}

	structured, formatted := Aggregate(results)

	return &Response{
		SessionID:           sessionID,
		Results:             results,
		CombinedData:        CombineData(results),
		StructuredData:      structured,
		FormattedOutput:     formatted,
		TotalProcessingTime: time.Since(start).Seconds(),
	}, nil
}

// scrapeSingleURL runs one task and converts every failure into an error
// Result; it never propagates, so one bad URL cannot abort the loop or skip
// teardown.
func (s *Service) scrapeSingleURL(page browser.Page, task URLTask) Result {
	start := time.Now()

	data, err := s.runTask(page, task)
	elapsed := time.Since(start).Seconds()
	timestamp := time.Now().UTC().Format(time.RFC3339)

	if err != nil {
		return Result{
			URL:            task.URL,
			Status:         StatusError,
			Mode:           task.Mode,
			ErrorMessage:   fmt.Sprintf("scraping failed for %s: %v", task.URL, err),
			ProcessingTime: elapsed,
			Timestamp:      timestamp,
		}
	}

	return Result{
		URL:            task.URL,
		Status:         StatusSuccess,
		Mode:           task.Mode,
		Data:           data,
		ProcessingTime: elapsed,
		Timestamp:      timestamp,
	}
}

func (s *Service) runTask(page browser.Page, task URLTask) (string, error) {
	if err := s.navigate(page, task.URL); err != nil {
		return "", err
	}

	switch task.Mode {
	case ModeChatEntries:
		return s.extractChatEntries(page)
	case ModeTitleDateParticipant:
		return s.extractTitleDateParticipant(page)
	default:
		return "", fmt.Errorf("%w: unsupported mode %q", ErrValidation, task.Mode)
	}
}

// navigate loads url with a network-idle wait, retrying exactly once via
// reload on failure, then re-asserts the login flag (some targets reset
// session storage on navigation) and waits out client-side rendering.
func (s *Service) navigate(page browser.Page, url string) error {
	navErr := page.Goto(url, browser.GotoOptions{
		WaitUntil: "networkidle",
		Timeout:   s.cfg.NavigationTimeout,
	})
	if navErr != nil {
		s.log.Warnf("navigation to %s failed, reloading: %v", url, navErr)
		if reloadErr := page.Reload(browser.GotoOptions{
			WaitUntil: "domcontentloaded",
			Timeout:   s.cfg.NavigationTimeout,
		}); reloadErr != nil {
			return fmt.Errorf("%w: %v", ErrNavigation, navErr)
		}
		s.log.Infof("recovered after reload, now at %s", page.URL())
	}

	if err := browser.AssertLoginFlag(page); err != nil {
		s.log.Warnf("failed to re-assert login flag on %s: %v", url, err)
	}

	if err := page.WaitForLoadState("domcontentloaded", s.cfg.PageLoadTimeout); err != nil {
		return fmt.Errorf("%w: waiting for dom content: %v", ErrNavigation, err)
	}
	if err := page.WaitForLoadState("networkidle", s.cfg.PageLoadTimeout); err != nil {
		return fmt.Errorf("%w: waiting for network idle: %v", ErrNavigation, err)
	}

	// Settle delay absorbs client-side rendering races
	s.sleep(s.cfg.InitialWait)
	return nil
}
