package scraper

import "strings"

// Formatted output tags, fixed by the downstream consumer.
const (
	tagTitle       = "タイトル"
	tagDate        = "日付"
	tagParticipant = "参加者"
	tagTranscript  = "トランスクリプト"
)

// CombineData concatenates every successful result's data under a per-URL
// marker line.
func CombineData(results []Result) string {
	var b strings.Builder
	for _, result := range results {
		if result.Status != StatusSuccess || result.Data == "" {
			continue
		}
		b.WriteString("\n=== " + result.URL + " ===\n" + result.Data + "\n")
	}
	return b.String()
}

// Aggregate folds the ordered result sequence into structured fields and
// the fixed-tag formatted block. Metadata results fill title/date/
// participant with first occurrence winning per field; chat results fill
// the transcript with the last occurrence winning (requesting more than one
// chat URL per scrape is allowed but rarely useful).
func Aggregate(results []Result) (Structured, string) {
	var structured Structured

	for _, result := range results {
		if result.Status != StatusSuccess || result.Data == "" {
			continue
		}

		switch result.Mode {
		case ModeTitleDateParticipant:
			for _, block := range strings.Split(strings.TrimSpace(result.Data), "\n\n") {
				block = strings.TrimSpace(block)
				switch {
				case strings.HasPrefix(block, "Title: "):
					if structured.Title == "" {
						structured.Title = strings.TrimSpace(strings.TrimPrefix(block, "Title: "))
					}
				case strings.HasPrefix(block, "date: "):
					if structured.Date == "" {
						structured.Date = strings.TrimSpace(strings.TrimPrefix(block, "date: "))
					}
				case strings.HasPrefix(block, "Participant: "):
					if structured.Participant == "" {
						structured.Participant = strings.TrimSpace(strings.TrimPrefix(block, "Participant: "))
					}
				}
			}
		case ModeChatEntries:
			structured.Transcript = strings.TrimSpace(result.Data)
		}
	}

	return structured, formatStructured(structured)
}

// formatStructured emits the present fields in fixed order, each wrapped in
// its tag pair; absent fields are omitted entirely.
func formatStructured(structured Structured) string {
	var parts []string
	if structured.Title != "" {
		parts = append(parts, "<"+tagTitle+">\n"+structured.Title+"\n</"+tagTitle+">")
	}
	if structured.Date != "" {
		parts = append(parts, "<"+tagDate+">\n"+structured.Date+"\n</"+tagDate+">")
	}
	if structured.Participant != "" {
		parts = append(parts, "<"+tagParticipant+">\n"+structured.Participant+"\n</"+tagParticipant+">")
	}
	if structured.Transcript != "" {
		parts = append(parts, "<"+tagTranscript+">\n"+structured.Transcript+"\n</"+tagTranscript+">")
	}
	return strings.Join(parts, "\n")
}
