package token

import (
	"net/http"
	"strings"
)

// Source identifies where a bearer token was found on a request.
type Source int

const (
	SourceNone Source = iota
	SourceHeader
	SourceCookie
	SourceQuery
)

func (s Source) String() string {
	switch s {
	case SourceHeader:
		return "authorization_header"
	case SourceCookie:
		return "cookie"
	case SourceQuery:
		return "query_parameter"
	}
	return "none"
}

// QueryParam is the query-string fallback parameter. It exists for clients
// that cannot set headers or cookies; callers log a usage warning when a
// token arrives this way, since query strings leak into server logs and
// browser history.
const QueryParam = "access_token"

// FromRequest extracts a bearer token from r in strict priority order:
// Authorization header, session cookie, query parameter. The returned
// Source tells the caller which transport supplied the token.
func FromRequest(r *http.Request, cookieName string) (string, Source) {
	if auth := r.Header.Get("Authorization"); auth != "" {
		scheme, tok, found := strings.Cut(auth, " ")
		if found && strings.EqualFold(scheme, "Bearer") && tok != "" {
			return tok, SourceHeader
		}
	}

	if cookieName != "" {
		if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
			return cookie.Value, SourceCookie
		}
	}

	if tok := r.URL.Query().Get(QueryParam); tok != "" {
		return tok, SourceQuery
	}

	return "", SourceNone
}
