// Package guard decides which view a path resolves to for the current
// authentication state.
package guard

import "strings"

// View is a screen of the application
type View int

const (
	ViewNotes View = iota
	ViewAuth
	ViewVerify
	ViewAbout
	ViewFAQ
	ViewHowToStart
)

// Paths
const (
	PathNotes      = "/"
	PathAuth       = "/auth"
	PathVerify     = "/verify"
	PathAbout      = "/about"
	PathFAQ        = "/faq"
	PathHowToStart = "/how-to-start"
)

var names = map[View]string{
	ViewNotes:      "notes",
	ViewAuth:       "auth",
	ViewVerify:     "verify",
	ViewAbout:      "about",
	ViewFAQ:        "faq",
	ViewHowToStart: "how-to-start",
}

func (v View) String() string {
	if s, ok := names[v]; ok {
		return s
	}
	return "unknown"
}

// Path returns the canonical path of a view
func (v View) Path() string {
	switch v {
	case ViewAuth:
		return PathAuth
	case ViewVerify:
		return PathVerify
	case ViewAbout:
		return PathAbout
	case ViewFAQ:
		return PathFAQ
	case ViewHowToStart:
		return PathHowToStart
	default:
		return PathNotes
	}
}

// Decision is the outcome of resolving a path. Path is where the user ends up;
// Redirected is set when it differs from the requested one.
type Decision struct {
	View       View
	Path       string
	Redirected bool
}

// public views are reachable with or without a token
var public = map[string]View{
	PathVerify:     ViewVerify,
	PathAbout:      ViewAbout,
	PathFAQ:        ViewFAQ,
	PathHowToStart: ViewHowToStart,
}

// InfoViews lists the informational screens in menu order
var InfoViews = []View{ViewAbout, ViewFAQ, ViewHowToStart}

// Resolve maps path to a view. The notes view requires authentication, the
// auth view requires its absence, and unknown paths go to whichever of the two
// applies. It never yields a not-found view.
func Resolve(path string, authenticated bool) Decision {
	p := normalize(path)

	if v, ok := public[p]; ok {
		return Decision{View: v, Path: p, Redirected: p != path}
	}

	switch {
	case p == PathNotes && authenticated:
		return Decision{View: ViewNotes, Path: PathNotes, Redirected: path != PathNotes}
	case p == PathAuth && !authenticated:
		return Decision{View: ViewAuth, Path: PathAuth, Redirected: path != PathAuth}
	case authenticated:
		return Decision{View: ViewNotes, Path: PathNotes, Redirected: true}
	default:
		return Decision{View: ViewAuth, Path: PathAuth, Redirected: true}
	}
}

func normalize(path string) string {
	p := strings.ToLower(strings.TrimSpace(path))
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	if p == "" {
		return PathNotes
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 {
		p = strings.TrimRight(p, "/")
		if p == "" {
			p = "/"
		}
	}
	return p
}
