package browser

import "time"

// Predicate decides whether a resolved element is valid for its role, e.g.
// "is this element actually scrollable". Predicates must not panic; a
// rejected element is skipped, not an error.
type Predicate func(Element) bool

// Resolve tries each candidate selector in order against target and returns
// the first element that both exists and satisfies validate, along with the
// selector that matched. A nil validate accepts any existing match. Returns
// (nil, "") when every candidate is exhausted; callers decide whether that
// is an error for their role.
//
// Target markup is not under this system's control, so every extraction
// point goes through an ordered candidate list instead of a single
// hard-coded selector.
func Resolve(target Target, candidates []string, validate Predicate) (Element, string) {
	for _, selector := range candidates {
		element, err := target.QuerySelector(selector)
		if err != nil || element == nil {
			continue
		}
		if validate != nil && !validate(element) {
			continue
		}
		return element, selector
	}
	return nil, ""
}

// ResolveAll tries each candidate selector in order and returns the matches
// of the first candidate that yields at least one element. Used where a role
// names a collection (e.g. "all visible chat entries") rather than a single
// element.
func ResolveAll(target Target, candidates []string) ([]Element, string) {
	for _, selector := range candidates {
		elements, err := target.QuerySelectorAll(selector)
		if err != nil {
			continue
		}
		if len(elements) > 0 {
			return elements, selector
		}
	}
	return nil, ""
}

// ResolveWait is Resolve with a bounded wait per candidate, for elements
// that may still be rendering (login form fields, submit controls). Each
// candidate gets up to timeout to appear before the next is tried.
func ResolveWait(page Page, candidates []string, timeout time.Duration, validate Predicate) (Element, string) {
	for _, selector := range candidates {
		element, err := page.WaitForSelector(selector, timeout)
		if err != nil || element == nil {
			continue
		}
		if validate != nil && !validate(element) {
			continue
		}
		return element, selector
	}
	return nil, ""
}
