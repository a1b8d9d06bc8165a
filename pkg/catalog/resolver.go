package catalog

import (
	"strings"

	"golang.org/x/text/language"
)

// localePreference is the order in which localized names are tried.
// Chatbox's ModelScope integration prefers the Chinese display name.
var localePreference = []language.Tag{language.Chinese, language.English}

// ResolveName extracts a display name from a remote record. The priority
// chain is: chinese_name, locales in preference order, name, then the id
// with "@" removed and "/" replaced by "-". Whitespace-only values are
// treated as absent. Returns "" when the record is unnamed.
func ResolveName(record RemoteRecord) string {
	if name := strings.TrimSpace(record.ChineseName); name != "" {
		return name
	}

	for _, tag := range localePreference {
		locale, ok := record.Locales[tag.String()]
		if !ok {
			continue
		}
		if name := strings.TrimSpace(locale.Name); name != "" {
			return name
		}
	}

	if name := strings.TrimSpace(record.Name); name != "" {
		return name
	}

	if id := strings.TrimSpace(record.ID); id != "" {
		id = strings.ReplaceAll(id, "@", "")
		return strings.ReplaceAll(id, "/", "-")
	}

	return ""
}
