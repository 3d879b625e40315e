package browser

import (
	"fmt"
	"strings"
	"time"

	"github.com/entrhq/scribe/pkg/logging"
)

// Candidate selector lists for the login form. Target markup varies across
// deployments, so each logical role carries its own ordered fallback list.
var (
	usernameSelectors = []string{
		`input[name="username"]`,
		`input[name="email"]`,
		`input[type="email"]`,
		`input[id*="user"]`,
		`input[id*="login"]`,
	}

	passwordSelectors = []string{
		`input[name="password"]`,
		`input[type="password"]`,
		`input[id*="pass"]`,
	}

	submitSelectors = []string{
		`input[type="submit"]`,
		`button[type="submit"]`,
		`button:has-text("ログイン")`,
		`button:has-text("Login")`,
		`button:has-text("サインイン")`,
		`input[value*="ログイン"]`,
	}

	// Known login-failure indicators. Absence of every indicator is
	// treated as success; the target offers no positive logged-in signal.
	errorIndicators = []string{
		`text="ログインに失敗"`,
		`text="パスワードが間違っています"`,
		`text="ユーザー名が見つかりません"`,
		`.error`,
		`.alert-error`,
	}
)

// loginFlagScript marks the page's session storage as logged in; the target
// site reads this flag to recognize subsequent navigations as authenticated.
const loginFlagScript = `sessionStorage.setItem('isLoggedIn', 'true')`

// AssertLoginFlag re-writes the login flag into the page's session storage.
// Some targets reset storage on navigation, so callers re-assert the flag
// after every page load on an authenticated session.
func AssertLoginFlag(page Page) error {
	_, err := page.Evaluate(loginFlagScript)
	return err
}

type authOptions struct {
	PageLoadTimeout    time.Duration
	ElementWaitTimeout time.Duration
	Log                *logging.Logger
}

// authenticateOnPage drives the login form on an already-open page. Returns
// (false, nil) when the target shows a recognized error indicator after
// submit, and an error for flow failures (navigation, missing form fields).
func authenticateOnPage(page Page, creds Credentials, opts authOptions) (bool, error) {
	log := opts.Log

	if err := page.Goto(creds.LoginURL, GotoOptions{Timeout: opts.PageLoadTimeout}); err != nil {
		return false, fmt.Errorf("%w: navigating to login page: %v", ErrAuthentication, err)
	}

	if title, err := page.Title(); err == nil {
		log.Debugf("login page title: %s", title)
	}

	_, usernameSel := ResolveWait(page, usernameSelectors, opts.ElementWaitTimeout, nil)
	if usernameSel == "" {
		return false, fmt.Errorf("%w: username field not found", ErrAuthentication)
	}
	if err := page.Fill(usernameSel, creds.Username); err != nil {
		return false, fmt.Errorf("%w: filling username via %s: %v", ErrAuthentication, usernameSel, err)
	}
	log.Debugf("username entered via %s", usernameSel)

	_, passwordSel := ResolveWait(page, passwordSelectors, opts.ElementWaitTimeout, nil)
	if passwordSel == "" {
		return false, fmt.Errorf("%w: password field not found", ErrAuthentication)
	}
	if err := page.Fill(passwordSel, creds.Password); err != nil {
		return false, fmt.Errorf("%w: filling password via %s: %v", ErrAuthentication, passwordSel, err)
	}
	log.Debugf("password entered via %s", passwordSel)

	// Submit, falling back to an Enter press when no control resolves
	submitted := false
	for _, selector := range submitSelectors {
		if err := page.Click(selector); err == nil {
			log.Debugf("submit clicked via %s", selector)
			submitted = true
			break
		}
	}
	if !submitted {
		log.Debugf("no submit control found, pressing Enter")
		if err := page.PressKey("Enter"); err != nil {
			return false, fmt.Errorf("%w: submitting form: %v", ErrAuthentication, err)
		}
	}

	if err := page.WaitForLoadState("networkidle", opts.PageLoadTimeout); err != nil {
		return false, fmt.Errorf("%w: waiting for post-login load: %v", ErrAuthentication, err)
	}

	if title, err := page.Title(); err == nil {
		log.Debugf("page title after login: %s", title)
	}

	// Best-effort scan, no waiting: an indicator that exists means the
	// login was rejected; scan errors are ignored
	for _, selector := range errorIndicators {
		element, err := page.QuerySelector(selector)
		if err != nil || element == nil {
			continue
		}
		text, _ := element.TextContent()
		log.Warnf("login error indicator %s matched: %s", selector, strings.TrimSpace(text))
		return false, nil
	}

	if _, err := page.Evaluate(loginFlagScript); err != nil {
		return false, fmt.Errorf("%w: setting login flag: %v", ErrAuthentication, err)
	}

	return true, nil
}
