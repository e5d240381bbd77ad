// Package labels localises tab and destination labels.
package labels

import (
	"fmt"
	"slices"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// Labels resolves message ids for one locale. Unknown ids come back as is.
type Labels struct {
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
	locale    language.Tag
}

// New seeds a bundle from tables (locale -> id -> text) and message files
// named like "labels.de.toml" or "labels.fr.yaml", then localises for locale
// with English as the fallback.
func New(locale string, tables map[string]map[string]string, files ...string) (*Labels, error) {
	tag := language.English
	if locale != "" {
		parsed, err := language.Parse(locale)
		if err != nil {
			return nil, fmt.Errorf("locale %q: %w", locale, err)
		}
		tag = parsed
	}
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	bundle.RegisterUnmarshalFunc("yaml", yaml.Unmarshal)
	bundle.RegisterUnmarshalFunc("yml", yaml.Unmarshal)

	locales := make([]string, 0, len(tables))
	for l := range tables {
		locales = append(locales, l)
	}
	slices.Sort(locales)
	for _, l := range locales {
		lt, err := language.Parse(l)
		if err != nil {
			return nil, fmt.Errorf("label table %q: %w", l, err)
		}
		ids := make([]string, 0, len(tables[l]))
		for id := range tables[l] {
			ids = append(ids, id)
		}
		slices.Sort(ids)
		msgs := make([]*i18n.Message, 0, len(ids))
		for _, id := range ids {
			msgs = append(msgs, &i18n.Message{ID: id, Other: tables[l][id]})
		}
		if err := bundle.AddMessages(lt, msgs...); err != nil {
			return nil, fmt.Errorf("label table %q: %w", l, err)
		}
	}
	for _, f := range files {
		if _, err := bundle.LoadMessageFile(f); err != nil {
			return nil, fmt.Errorf("load labels: %w", err)
		}
	}
	return &Labels{
		bundle:    bundle,
		localizer: i18n.NewLocalizer(bundle, tag.String(), language.English.String()),
		locale:    tag,
	}, nil
}

// Label returns the localised text for id, or id when nothing matches.
func (l *Labels) Label(id string) string {
	if l == nil || id == "" {
		return id
	}
	text, err := l.localizer.Localize(&i18n.LocalizeConfig{MessageID: id})
	if err != nil || text == "" {
		return id
	}
	return text
}

func (l *Labels) Locale() string {
	if l == nil {
		return language.English.String()
	}
	return l.locale.String()
}

// Locales lists the languages the bundle has messages for.
func (l *Labels) Locales() []string {
	tags := l.bundle.LanguageTags()
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = t.String()
	}
	slices.Sort(out)
	return out
}
