package web

import (
	"crypto/rand"
	"crypto/subtle"
	"net/http"
)

const (
	csrfCookieName = "csrf_token"
	csrfHeaderName = "X-CSRF-Token"
	csrfFormField  = "csrf_token"
)

// ensureCSRFCookie issues the double-submit token cookie if the browser does
// not hold one yet. csrf.js copies it into the X-CSRF-Token header of every
// HTMX request, so the cookie cannot be HttpOnly.
func ensureCSRFCookie(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(csrfCookieName); err == nil && cookie.Value != "" {
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     csrfCookieName,
		Value:    rand.Text(),
		Path:     "/",
		HttpOnly: false,
		SameSite: http.SameSiteStrictMode,
		Secure:   r.TLS != nil,
	})
}

// validCSRF reports whether the request echoes the cookie token in the
// header or, for plain form posts, in the csrf_token field.
func validCSRF(r *http.Request) bool {
	cookie, err := r.Cookie(csrfCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}

	token := r.Header.Get(csrfHeaderName)
	if token == "" {
		token = r.FormValue(csrfFormField)
	}
	if token == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(token), []byte(cookie.Value)) == 1
}
