package render

import (
	"fmt"
	"html/template"
	"regexp"

	"cvstudio/internal/cv"
)

// iconClassPattern keeps icon class lists down to what Font Awesome needs.
var iconClassPattern = regexp.MustCompile(`^[a-z0-9 _-]+$`)

// ItemIcon renders an item's leading icon. A flag code takes precedence over
// an icon class; an unusable icon yields an empty placeholder so the layout
// keeps its alignment.
func ItemIcon(iconClass, flagCode string) template.HTML {
	if flagCode != "" {
		if url, ok := cv.FlagURL(flagCode); ok {
			return template.HTML(fmt.Sprintf(
				`<img class="item-icon flag-icon" src="%s" alt="%s">`,
				template.HTMLEscapeString(url),
				template.HTMLEscapeString(flagCode),
			))
		}
	}
	if iconClass == "" || !iconClassPattern.MatchString(iconClass) {
		return template.HTML(`<span class="item-icon item-icon-empty"></span>`)
	}
	return template.HTML(fmt.Sprintf(`<i class="item-icon %s"></i>`, template.HTMLEscapeString(iconClass)))
}
