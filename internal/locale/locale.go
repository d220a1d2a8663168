package locale

import (
	"net/http"
	"strings"
)

const (
	LanguageChinese = "zh"
	LanguageEnglish = "en"
)

func NormalizeLanguage(raw string) string {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "zh") || trimmed == "cn" {
		return LanguageChinese
	}
	if strings.HasPrefix(trimmed, "en") {
		return LanguageEnglish
	}
	return ""
}

// LanguageFromAcceptLanguage returns the first supported language in header order.
// Quality values are ignored; clients list their preferred language first.
func LanguageFromAcceptLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag, _, _ := strings.Cut(part, ";")
		if language := NormalizeLanguage(tag); language != "" {
			return language
		}
	}
	return ""
}

// FromRequest picks the response language: ?lang= first, then Accept-Language, then Chinese.
func FromRequest(r *http.Request) string {
	if language := NormalizeLanguage(r.URL.Query().Get("lang")); language != "" {
		return language
	}
	if language := LanguageFromAcceptLanguage(r.Header.Get("Accept-Language")); language != "" {
		return language
	}
	return LanguageChinese
}
