// Package localization resolves the culture of each request from the
// configured set of supported cultures.
package localization

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/text/language"
)

// Request sources checked in order before Accept-Language.
const (
	QueryParam = "culture"
	CookieName = "culture"
)

type contextKey string

const cultureContextKey contextKey = "culture"

// Localizer matches requests against the supported cultures.
type Localizer struct {
	tags    []language.Tag
	names   []string
	matcher language.Matcher
}

// New creates a localizer. The first culture is the default.
func New(cultures []string) (*Localizer, error) {
	if len(cultures) == 0 {
		return nil, errors.New("at least one supported culture is required")
	}

	l := &Localizer{
		tags:  make([]language.Tag, 0, len(cultures)),
		names: make([]string, 0, len(cultures)),
	}

	for _, c := range cultures {
		tag, err := language.Parse(c)
		if err != nil {
			return nil, fmt.Errorf("parsing culture %q: %w", c, err)
		}

		l.tags = append(l.tags, tag)
		l.names = append(l.names, tag.String())
	}

	l.matcher = language.NewMatcher(l.tags)

	return l, nil
}

// Default returns the default culture.
func (l *Localizer) Default() string {
	return l.names[0]
}

// Cultures returns the supported culture names.
func (l *Localizer) Cultures() []string {
	out := make([]string, len(l.names))
	copy(out, l.names)

	return out
}

// Supported returns the canonical name of culture if it is supported.
func (l *Localizer) Supported(culture string) (string, bool) {
	tag, err := language.Parse(culture)
	if err != nil {
		return "", false
	}

	for i, t := range l.tags {
		if t == tag {
			return l.names[i], true
		}
	}

	return "", false
}

// Resolve picks the culture for a request: the culture query parameter, then
// the culture cookie, then Accept-Language, then the default.
func (l *Localizer) Resolve(r *http.Request) string {
	if c, ok := l.Supported(r.URL.Query().Get(QueryParam)); ok {
		return c
	}

	if cookie, err := r.Cookie(CookieName); err == nil {
		if c, ok := l.Supported(cookie.Value); ok {
			return c
		}
	}

	if header := r.Header.Get("Accept-Language"); header != "" {
		if c, ok := l.match(header); ok {
			return c
		}
	}

	return l.Default()
}

func (l *Localizer) match(header string) (string, bool) {
	prefs, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(prefs) == 0 {
		return "", false
	}

	_, idx, confidence := l.matcher.Match(prefs...)
	if confidence == language.No {
		return "", false
	}

	return l.names[idx], true
}

// Middleware stores the resolved culture in the request context and sets
// Content-Language. It never answers the request itself.
func (l *Localizer) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		culture := l.Resolve(r)

		w.Header().Set("Content-Language", culture)
		next.ServeHTTP(w, r.WithContext(ContextWithCulture(r.Context(), culture)))
	})
}

// ContextWithCulture stores culture in ctx.
func ContextWithCulture(ctx context.Context, culture string) context.Context {
	return context.WithValue(ctx, cultureContextKey, culture)
}

// CultureFromContext returns the culture resolved for the request, or "".
func CultureFromContext(ctx context.Context) string {
	culture, _ := ctx.Value(cultureContextKey).(string)

	return culture
}
