package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var sanitizer = bluemonday.StrictPolicy()

// Angle brackets stay escaped so stripped markup can never be reassembled.
var textUnescaper = strings.NewReplacer("&amp;", "&", "&#34;", `"`, "&#39;", "'")

const maxEntityPasses = 4

// SanitizeText strips all markup from free text and trims it. Entity-encoded
// markup is decoded before the policy runs so it is stripped as well.
func SanitizeText(input string) string {
	for i := 0; i < maxEntityPasses; i++ {
		decoded := html.UnescapeString(input)
		if decoded == input {
			break
		}
		input = decoded
	}
	return strings.TrimSpace(textUnescaper.Replace(sanitizer.Sanitize(input)))
}
