package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/scribe/pkg/browser"
	"github.com/entrhq/scribe/pkg/config"
	"github.com/entrhq/scribe/pkg/scraper"
)

type fakeScraper struct {
	resp        *scraper.Response
	execErr     error
	validateErr error
	lastReq     scraper.Request
}

func (f *fakeScraper) ExecuteScraping(req scraper.Request) (*scraper.Response, error) {
	f.lastReq = req
	if f.execErr != nil {
		return nil, f.execErr
	}
	return f.resp, nil
}

func (f *fakeScraper) ValidateRequest(req scraper.Request) error {
	f.lastReq = req
	return f.validateErr
}

type fakeReporter struct {
	infos []browser.SessionInfo
}

func (f *fakeReporter) ActiveSessions() int                 { return len(f.infos) }
func (f *fakeReporter) ListSessions() []browser.SessionInfo { return f.infos }

func newTestRouter(s *fakeScraper, r *fakeReporter) http.Handler {
	return NewHandler(s, r, config.DefaultConfig()).SetupRoutes()
}

func requestBody(t *testing.T) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(scraper.Request{
		Credentials: browser.Credentials{
			Username: "alice",
			Password: "s3cret",
			LoginURL: "https://example.test/login",
		},
		URLTasks: []scraper.URLTask{
			{URL: "https://example.test/chat", Mode: scraper.ModeChatEntries},
		},
	})
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func TestExecuteScrapingSuccess(t *testing.T) {
	fake := &fakeScraper{resp: &scraper.Response{
		SessionID: "sess-1",
		Results: []scraper.Result{
			{URL: "https://example.test/chat", Status: scraper.StatusSuccess, Mode: scraper.ModeChatEntries},
		},
	}}
	router := newTestRouter(fake, &fakeReporter{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/scraping/execute", requestBody(t)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp scraper.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "sess-1", resp.SessionID)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "alice", fake.lastReq.Credentials.Username)
}

func TestExecuteScrapingMalformedBody(t *testing.T) {
	router := newTestRouter(&fakeScraper{}, &fakeReporter{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/scraping/execute", bytes.NewBufferString("{not json")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExecuteScrapingErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", fmt.Errorf("%w: no tasks", scraper.ErrValidation), http.StatusBadRequest},
		{"authentication", fmt.Errorf("%w: login rejected", browser.ErrAuthentication), http.StatusBadGateway},
		{"session creation", fmt.Errorf("%w: launch failed", browser.ErrSessionCreation), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&fakeScraper{execErr: tt.err}, &fakeReporter{})

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/scraping/execute", requestBody(t)))

			assert.Equal(t, tt.wantStatus, rec.Code)

			var payload map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
			assert.Contains(t, payload["error"], tt.err.Error())
		})
	}
}

func TestValidateEndpoint(t *testing.T) {
	router := newTestRouter(&fakeScraper{}, &fakeReporter{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/scraping/validate", requestBody(t)))

	require.Equal(t, http.StatusOK, rec.Code)
	var payload map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "valid", payload["status"])
}

func TestValidateEndpointRejectsBadRequest(t *testing.T) {
	fake := &fakeScraper{validateErr: fmt.Errorf("%w: no tasks", scraper.ErrValidation)}
	router := newTestRouter(fake, &fakeReporter{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/scraping/validate", requestBody(t)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthEndpoint(t *testing.T) {
	reporter := &fakeReporter{infos: []browser.SessionInfo{
		{ID: "s1", Authenticated: true, CreatedAt: time.Now()},
	}}
	router := newTestRouter(&fakeScraper{}, reporter)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/scraping/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, "ok", payload["status"])
	assert.Equal(t, "scribe", payload["service"])
	assert.Equal(t, float64(1), payload["active_sessions"])
}

func TestConfigEndpoint(t *testing.T) {
	router := newTestRouter(&fakeScraper{}, &fakeReporter{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/scraping/config", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, float64(config.DefaultConfig().Session.MaxSessions), payload["max_sessions"])
	assert.Contains(t, payload, "max_scroll_loops")
	assert.Contains(t, payload, "headless")
}

func TestCORSPreflights(t *testing.T) {
	router := newTestRouter(&fakeScraper{}, &fakeReporter{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("OPTIONS", "/api/scraping/execute", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestUnknownRoute(t *testing.T) {
	router := newTestRouter(&fakeScraper{}, &fakeReporter{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/scraping/unknown", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
