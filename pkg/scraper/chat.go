package scraper

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"

	"github.com/entrhq/scribe/pkg/browser"
)

// Candidate selectors for chat extraction, ordered most-specific first.
var (
	scrollContainerSelectors = []string{
		`.scrollableContainer[data-is-scrollable="true"]`,
		`[data-is-scrollable="true"]`,
		`.scrollableContainer`,
		`[data-scrollable="true"]`,
		`.scrollable-container`, `.scroll-container`,
		`.chat-container`, `.chat-messages`, `.messages-container`,
		`.conversation`, `.chat-area`, `.message-list`,
		`.content`, `.main-content`, `.container`, `main`, `article`,
		`body`,
	}

	entrySelectors = []string{
		`[class*="baseEntry-"]`,
		`.baseEntry-wrapper`,
		`.chat-entry`, `.message-entry`, `.entry-item`,
		`[class*="entry"]`, `[class*="message"]`,
		`.ms-List-cell`,
	}

	speakerSelectors = []string{
		`[class*="itemDisplayName-"]`,
		`.itemDisplayName-wrapper`,
		`.speaker`, `.author`, `.user-name`,
	}

	timestampSelectors = []string{
		`[id^="Header-timestamp-"]`,
		`[class*="timestamp"]`,
		`.Header-timestamp-wrapper`,
		`.time`, `.date-time`,
	}

	messageSelectors = []string{
		`[id^="sub-entry-"]`,
		`.sub-entry-content`,
		`[class*="content"]`, `[class*="message"]`,
		`.message-text`, `.content-text`,
	}
)

// speakerUnknown is emitted when no speaker resolves for an entry.
const speakerUnknown = "（発言者不明）"

// speakerFromLabel pulls a speaker name from an aria-label of the form
// "<name> <timestamp...>".
var speakerFromLabel = regexp.MustCompile(`^(.+?)\s+\d`)

// scrollableCheckScript decides whether an element can scroll. Pages signal
// scrollability inconsistently, so any one of overflow style, overflowing
// content, or an explicit data attribute qualifies.
const scrollableCheckScript = `el => {
	try {
		const style = window.getComputedStyle(el);
		const overflow = style.overflow || style.overflowY;
		const hasScrollableContent = el.scrollHeight > el.clientHeight;
		const hasScrollableStyle = (overflow === 'auto' || overflow === 'scroll');
		const hasScrollableAttribute = el.hasAttribute('data-is-scrollable') ||
			el.hasAttribute('data-scrollable');
		return hasScrollableContent || hasScrollableStyle || hasScrollableAttribute;
	} catch (e) {
		return false;
	}
}`

// scrollStepScript advances the container by one fixed increment and
// reports whether it moved; false means the end was reached.
const scrollStepScript = `el => {
	try {
		const currentScroll = el.scrollTop;
		const maxScroll = el.scrollHeight - el.clientHeight;
		if (currentScroll >= maxScroll) {
			return false;
		}
		el.scrollTop = Math.min(currentScroll + 500, maxScroll);
		return true;
	} catch (e) {
		return false;
	}
}`

func isScrollable(el browser.Element) bool {
	result, err := el.Evaluate(scrollableCheckScript)
	if err != nil {
		return false
	}
	ok, _ := result.(bool)
	return ok
}

// extractChatEntries scroll-collects a chat log: resolve a scrollable
// container, then alternate collect and scroll passes until the container
// stops advancing or the iteration cap is hit. Entries are deduplicated
// across passes by a derived stable id and emitted in first-observed order.
func (s *Service) extractChatEntries(page browser.Page) (string, error) {
	container, containerSel := browser.Resolve(page, scrollContainerSelectors, isScrollable)
	if container == nil {
		return "", ErrContainerNotFound
	}
	s.log.Infof("using scrollable container %s", containerSel)

	seen := make(map[string]struct{})
	var batches []string

	for attempt := 0; attempt < s.cfg.MaxScrollLoops; attempt++ {
		if batch := s.collectEntries(page, seen); batch != "" {
			batches = append(batches, batch)
			s.log.Debugf("collected entries in pass %d", attempt+1)
		}

		advanced, err := container.Evaluate(scrollStepScript)
		if err != nil {
			s.log.Warnf("scroll step failed in pass %d: %v", attempt+1, err)
			break
		}
		if moved, _ := advanced.(bool); !moved {
			s.log.Debugf("reached end of scrollable content after %d pass(es)", attempt+1)
			break
		}

		s.sleep(s.cfg.ScrollDelay)
	}

	if len(batches) == 0 {
		return "", ErrNoEntriesCollected
	}
	return strings.Join(batches, "\n"), nil
}

// collectEntries formats the currently visible, not-yet-seen entries as
// "<speaker> (<timestamp>): <message>" lines.
func (s *Service) collectEntries(page browser.Page, seen map[string]struct{}) string {
	entries, entrySel := browser.ResolveAll(page, entrySelectors)
	if len(entries) == 0 {
		s.log.Warnf("no chat entries found with any selector")
		return ""
	}
	s.log.Debugf("found %d entries via %s", len(entries), entrySel)

	var b strings.Builder
	for _, entry := range entries {
		id := entryID(entry)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		message := resolveText(entry, messageSelectors)
		if message == "" {
			continue
		}

		b.WriteString(entrySpeaker(entry))
		if timestamp := resolveText(entry, timestampSelectors); timestamp != "" {
			b.WriteString(" (" + timestamp + ")")
		}
		b.WriteString(": " + message + "\n")
	}
	return b.String()
}

// entryID derives a stable identity for deduplication: the explicit
// data-attribute when the page supplies one, else a content hash.
func entryID(entry browser.Element) string {
	if id, err := entry.GetAttribute("data-entry-id"); err == nil && id != "" {
		return id
	}
	html, err := entry.InnerHTML()
	if err != nil {
		return ""
	}
	h := fnv.New64a()
	h.Write([]byte(html))
	return fmt.Sprintf("h:%x", h.Sum64())
}

// entrySpeaker resolves the speaker name: aria-label first, then the
// class-based fallback list, then the unknown-speaker placeholder.
func entrySpeaker(entry browser.Element) string {
	if label, err := entry.GetAttribute("aria-label"); err == nil && label != "" {
		if match := speakerFromLabel.FindStringSubmatch(label); match != nil {
			if name := strings.TrimSpace(match[1]); name != "" {
				return name
			}
		}
	}
	if name := resolveText(entry, speakerSelectors); name != "" {
		return name
	}
	return speakerUnknown
}

// resolveText resolves the first candidate with non-blank text content.
func resolveText(target browser.Target, candidates []string) string {
	element, _ := browser.Resolve(target, candidates, func(el browser.Element) bool {
		text, err := el.TextContent()
		return err == nil && strings.TrimSpace(text) != ""
	})
	if element == nil {
		return ""
	}
	text, _ := element.TextContent()
	return strings.TrimSpace(text)
}
