package scraper

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/entrhq/scribe/pkg/browser"
)

// fieldClasses are the metadata panel classes, in output order. The casing
// is the target's own.
var fieldClasses = []string{"Title", "date", "Participant"}

// observedClassLimit caps the diagnostic class listing on failure.
const observedClassLimit = 30

// extractTitleDateParticipant collects the metadata fields as
// "<Field>: <text>" blocks separated by blank lines. Each field resolves by
// exact class first, then by substring and case-variant fallbacks. A run
// that yields no field at all fails with the set of classes observed on the
// page, to aid selector tuning against markup drift.
func (s *Service) extractTitleDateParticipant(page browser.Page) (string, error) {
	var b strings.Builder

	for _, class := range fieldClasses {
		candidates := []string{
			"." + class,
			fmt.Sprintf(`[class*="%s"]`, class),
			fmt.Sprintf(`[class*="%s"]`, strings.ToLower(class)),
			fmt.Sprintf(`[class*="%s"]`, strings.ToUpper(class)),
		}

		elements, selector := browser.ResolveAll(page, candidates)
		if len(elements) == 0 {
			s.log.Warnf("no elements found for field %q", class)
			continue
		}
		s.log.Debugf("found %d element(s) for field %q via %s", len(elements), class, selector)

		for _, element := range elements {
			text, err := element.TextContent()
			if err != nil {
				s.log.Warnf("failed to read text for field %q: %v", class, err)
				continue
			}
			if text = strings.TrimSpace(text); text != "" {
				b.WriteString(class + ": " + text + "\n\n")
			}
		}
	}

	if b.Len() == 0 {
		observed := observedClasses(page, observedClassLimit)
		s.log.Errorf("no metadata fields matched; observed classes: %s", strings.Join(observed, " "))
		return "", fmt.Errorf("%w: observed classes: %s", ErrNoFieldsFound, strings.Join(observed, " "))
	}

	return b.String(), nil
}

// observedClasses parses the page HTML and returns up to limit distinct CSS
// class names, in document order.
func observedClasses(page browser.Page, limit int) []string {
	content, err := page.Content()
	if err != nil {
		return nil
	}

	root, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil
	}

	var classes []string
	seen := make(map[string]struct{})

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(classes) >= limit {
			return
		}
		if n.Type == html.ElementNode {
			for _, attr := range n.Attr {
				if attr.Key != "class" {
					continue
				}
				for _, class := range strings.Fields(attr.Val) {
					if _, dup := seen[class]; dup {
						continue
					}
					seen[class] = struct{}{}
					classes = append(classes, class)
					if len(classes) >= limit {
						return
					}
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(root)

	return classes
}
