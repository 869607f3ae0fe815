package render

import (
	"fmt"
	"html/template"
	"strings"
)

// GlyphDefault is the glyph used when no selection has been stored.
const GlyphDefault = "star"

// glyph holds the markup for one filled and one empty level step.
type glyph struct {
	Full  string
	Empty string
}

// glyphs maps selectable glyph identifiers to their markup. Font Awesome
// icons where a hollow variant exists, text fallbacks where it does not.
var glyphs = map[string]glyph{
	"star":   {Full: `<i class="fa-solid fa-star"></i>`, Empty: `<i class="fa-regular fa-star"></i>`},
	"heart":  {Full: `<i class="fa-solid fa-heart"></i>`, Empty: `<i class="fa-regular fa-heart"></i>`},
	"circle": {Full: `<span class="glyph-dot">&#9679;</span>`, Empty: `<span class="glyph-dot">&#9675;</span>`},
	"brain":  {Full: `<i class="fa-solid fa-brain"></i>`, Empty: `<i class="fa-solid fa-brain glyph-faded"></i>`},
	"bolt":   {Full: `<i class="fa-solid fa-bolt"></i>`, Empty: `<i class="fa-solid fa-bolt glyph-faded"></i>`},
	"drop":   {Full: `<i class="fa-solid fa-droplet"></i>`, Empty: `<i class="fa-solid fa-droplet glyph-faded"></i>`},
	"gauge":  {Full: `<i class="fa-solid fa-gauge-high"></i>`, Empty: `<i class="fa-solid fa-gauge-high glyph-faded"></i>`},
}

// GlyphKeys lists the selectable glyph identifiers.
func GlyphKeys() []string {
	return []string{"star", "heart", "circle", "brain", "bolt", "drop", "gauge"}
}

// ValidGlyph reports whether key names a known glyph.
func ValidGlyph(key string) bool {
	_, ok := glyphs[key]
	return ok
}

// LevelRow renders a row of total glyphs with the first filled ones in the
// full variant. An unknown glyph key falls back to the default, so stored
// garbage degrades instead of breaking the page.
func LevelRow(filled, total int, glyphKey string) template.HTML {
	g, ok := glyphs[glyphKey]
	if !ok {
		g = glyphs[GlyphDefault]
	}
	if filled < 0 {
		filled = 0
	}
	if filled > total {
		filled = total
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<span class="item-level" data-glyph="%s">`, template.HTMLEscapeString(glyphKey))
	for i := 0; i < total; i++ {
		if i < filled {
			b.WriteString(`<span class="item-level-full">` + g.Full + `</span>`)
		} else {
			b.WriteString(`<span class="item-level-empty">` + g.Empty + `</span>`)
		}
	}
	b.WriteString(`</span>`)
	return template.HTML(b.String())
}
