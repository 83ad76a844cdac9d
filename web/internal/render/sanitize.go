package render

import (
	"html/template"

	"github.com/microcosm-cc/bluemonday"
)

// ugcPolicy strips all markup from user-generated content. Review comments
// and chef bios are plain text; anything that looks like HTML is an attack.
var ugcPolicy = bluemonday.StrictPolicy()

// SanitizeUGC sanitizes user-generated text for embedding in a page.
func SanitizeUGC(s string) template.HTML {
	return template.HTML(ugcPolicy.Sanitize(s))
}
