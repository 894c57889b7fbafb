package service

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var plainTextPolicy = bluemonday.StrictPolicy()

// plainText strips markup from user text and trims it. The strict policy
// escapes entities, which are decoded again so stored text stays plain.
func plainText(raw string) string {
	return strings.TrimSpace(html.UnescapeString(plainTextPolicy.Sanitize(raw)))
}

// aliasOrDefault trims an alias and substitutes the anonymous default.
func aliasOrDefault(alias string, defaultAlias string) string {
	alias = plainText(alias)
	if alias == "" {
		return defaultAlias
	}
	return alias
}
