package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// PlainText strips markup from user-supplied text and collapses whitespace.
func PlainText(content string) string {
	// Block tags become spaces so neighbouring words don't merge.
	content = strings.ReplaceAll(content, "</p>", " ")
	content = strings.ReplaceAll(content, "<br>", " ")
	content = strings.ReplaceAll(content, "</div>", " ")

	cleanText := html.UnescapeString(strict.Sanitize(content))
	return strings.Join(strings.Fields(cleanText), " ")
}
