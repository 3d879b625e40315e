// Package browser provides authenticated browser session management through
// Playwright.
//
// The package owns the full lifecycle of automation sessions: launching a
// browser and context pair, driving a login form, handing out pages, healing
// corrupted contexts, expiring idle sessions, and tearing everything down.
// Scraping code borrows pages from sessions and never owns browser resources
// itself.
//
// # Architecture
//
// The package is built around four core concepts:
//
// 1. Session: a browser instance plus an isolated context, keyed by an opaque id
// 2. SessionManager: the sole owner and mutator of all live sessions
// 3. Capability interfaces (Page, Element, Target): narrow views over the
// driver so callers and tests never touch Playwright types directly
// 4. Selector resolution: ordered candidate lists with validity predicates,
// for pages whose markup is not contractually known
//
// # Session Lifecycle
//
//  1. Create: CreateSession launches a browser+context and returns an id
//  2. Authenticate: Authenticate drives the login form and leaves the page
//     open; the authenticated state lives on that page
//  3. Use: callers navigate and extract on the borrowed page
//  4. Heal: GetPage probes the context and recreates it transparently when
//     it has become unusable, resetting the login state
//  5. Close: CloseSession releases everything; SweepExpired does the same
//     for sessions past their idle age; Shutdown stops the engine
//
// # Selector Resolution
//
// Target pages signal the same logical element inconsistently across
// deployments, so every element lookup goes through Resolve, ResolveAll, or
// ResolveWait with a role-specific candidate list. Exhausting a list yields
// nil rather than an error; the caller decides what "not found" means for
// its role.
package browser
