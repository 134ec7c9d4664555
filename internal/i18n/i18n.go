// Package i18n renders fault messages in the language a client asks for.
package i18n

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/satishbabariya/restdb/internal/core/fault"
)

// Supported lists the message languages, Russian first.
var Supported = []language.Tag{language.Russian, language.English}

// Localizer matches client languages and formats fault messages.
type Localizer struct {
	fallback language.Tag
	matcher  language.Matcher
	catalog  *catalog.Builder
}

// New creates a localizer whose fallback is defaultLang.
func New(defaultLang string) (*Localizer, error) {
	fallback := language.Russian
	if defaultLang != "" {
		tag, err := language.Parse(defaultLang)
		if err != nil {
			return nil, fmt.Errorf("invalid default language %q: %w", defaultLang, err)
		}
		fallback = tag
	}

	l := &Localizer{
		matcher: language.NewMatcher(Supported),
		catalog: catalog.NewBuilder(catalog.Fallback(language.English)),
	}
	l.fallback = l.supported(fallback)

	for kind, msg := range messages {
		if err := l.catalog.SetString(language.Russian, string(kind), msg.ru); err != nil {
			return nil, err
		}
		if err := l.catalog.SetString(language.English, string(kind), msg.en); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Default returns the language used when a request names none.
func (l *Localizer) Default() language.Tag {
	return l.fallback
}

// Match picks a supported language for a Content-Language or
// Accept-Language header value.
func (l *Localizer) Match(header string) language.Tag {
	if header == "" {
		return l.fallback
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return l.fallback
	}
	_, idx, conf := l.matcher.Match(tags...)
	if conf == language.No {
		return l.fallback
	}
	return Supported[idx]
}

func (l *Localizer) supported(tag language.Tag) language.Tag {
	_, idx, conf := l.matcher.Match(tag)
	if conf == language.No {
		return language.Russian
	}
	return Supported[idx]
}

// Message formats err in tag.
func (l *Localizer) Message(tag language.Tag, err *fault.Error) string {
	kind := err.Kind
	if _, ok := messages[kind]; !ok {
		kind = fault.Internal
	}
	p := message.NewPrinter(l.supported(tag), message.Catalog(l.catalog))
	return p.Sprintf(string(kind), err.Args...)
}
