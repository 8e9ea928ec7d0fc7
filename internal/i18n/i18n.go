// Package i18n provides localized messages for API responses and tool texts.
package i18n

import (
	"fmt"
	"strings"

	"onec-gateway/internal/i18n/locales"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

var bundle *i18n.Bundle

// Init initializes the i18n bundle. The upstream service is primarily
// Russian-language, so Russian is the fallback.
func Init() error {
	bundle = i18n.NewBundle(language.Russian)

	for _, lang := range []string{"ru-RU", "en-US"} {
		if err := loadMessages(lang); err != nil {
			return fmt.Errorf("failed to load language %s: %w", lang, err)
		}
	}

	return nil
}

// loadMessages registers the in-code message map for a language.
func loadMessages(lang string) error {
	for id, msg := range getMessages(lang) {
		bundle.AddMessages(language.MustParse(lang), &i18n.Message{
			ID:    id,
			Other: msg,
		})
	}
	return nil
}

// GetLocalizer returns a localizer for the given Accept-Language header.
func GetLocalizer(acceptLang string) *i18n.Localizer {
	langs := parseAcceptLanguage(acceptLang)
	if len(langs) == 0 {
		langs = []string{"ru-RU"}
	}
	return i18n.NewLocalizer(bundle, langs...)
}

// parseAcceptLanguage takes the first language of an Accept-Language header.
func parseAcceptLanguage(acceptLang string) []string {
	if acceptLang == "" {
		return nil
	}

	parts := strings.Split(acceptLang, ",")
	if len(parts) == 0 {
		return nil
	}

	lang := strings.TrimSpace(parts[0])
	if idx := strings.Index(lang, ";"); idx > 0 {
		lang = lang[:idx]
	}

	return []string{normalizeLanguageCode(lang)}
}

// normalizeLanguageCode normalizes language codes to the supported set.
func normalizeLanguageCode(lang string) string {
	switch l := strings.ToLower(strings.TrimSpace(lang)); {
	case l == "ru" || l == "ru-ru" || strings.HasPrefix(l, "ru"):
		return "ru-RU"
	case l == "en" || l == "en-us" || strings.HasPrefix(l, "en"):
		return "en-US"
	default:
		return "ru-RU"
	}
}

// T translates a message, returning the message ID when no translation exists.
func T(localizer *i18n.Localizer, msgID string, data ...map[string]any) string {
	config := &i18n.LocalizeConfig{MessageID: msgID}
	if len(data) > 0 {
		config.TemplateData = data[0]
	}

	msg, err := localizer.Localize(config)
	if err != nil {
		return msgID
	}
	return msg
}

// getMessages returns the message map for a language.
func getMessages(lang string) map[string]string {
	switch lang {
	case "en-US":
		return locales.MessagesEnUS
	default:
		return locales.MessagesRuRU
	}
}
