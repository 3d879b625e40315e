package scraper

import (
	"github.com/entrhq/scribe/pkg/browser"
)

// Mode selects the extraction strategy for a URL.
type Mode string

const (
	// ModeChatEntries scroll-collects a chat log into transcript lines.
	ModeChatEntries Mode = "chat_entries"

	// ModeTitleDateParticipant extracts the meeting metadata panel.
	ModeTitleDateParticipant Mode = "title_date_participant"
)

// Result statuses.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// URLTask pairs one target URL with its extraction mode. Task order is the
// processing order and is preserved in the result sequence.
type URLTask struct {
	URL  string `json:"url" validate:"required,url"`
	Mode Mode   `json:"mode" validate:"required,oneof=chat_entries title_date_participant"`
}

// Request is a scrape request as consumed from the route layer. The
// preferred form lists explicit URLTasks; the legacy form carries a flat
// URL list with one shared mode and is expanded during normalization.
type Request struct {
	Credentials browser.Credentials `json:"credentials" validate:"required"`
	URLTasks    []URLTask           `json:"url_configs" validate:"omitempty,dive"`

	// Legacy form, kept for backward compatibility
	TargetURLs []string `json:"target_urls" validate:"omitempty,dive,url"`
	Mode       Mode     `json:"mode" validate:"omitempty,oneof=chat_entries title_date_participant"`
}

// Result is the outcome for a single URL task. Immutable once produced.
type Result struct {
	URL            string  `json:"url"`
	Status         string  `json:"status"`
	Mode           Mode    `json:"mode"`
	Data           string  `json:"data,omitempty"`
	ErrorMessage   string  `json:"error_message,omitempty"`
	ProcessingTime float64 `json:"processing_time"`
	Timestamp      string  `json:"timestamp"`
}

// Structured holds the per-field view of a scrape, merged across results.
type Structured struct {
	Title       string `json:"title,omitempty"`
	Date        string `json:"date,omitempty"`
	Participant string `json:"participant,omitempty"`
	Transcript  string `json:"transcript,omitempty"`
}

// Response is the aggregate payload for one scrape request. Results appear
// in the exact order the tasks were submitted.
type Response struct {
	SessionID           string     `json:"session_id"`
	Results             []Result   `json:"results"`
	CombinedData        string     `json:"combined_data"`
	StructuredData      Structured `json:"structured_data"`
	FormattedOutput     string     `json:"formatted_output"`
	TotalProcessingTime float64    `json:"total_processing_time"`
}
