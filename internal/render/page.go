package render

import (
	"fmt"
	"html/template"
	"log/slog"
	"sort"
	"strings"

	"cvstudio/internal/cv"
)

// PageInput carries everything needed to materialize one language of the
// document as a self-contained HTML page.
type PageInput struct {
	Record cv.Record
	Lang   string

	SidebarView cv.View
	// SectionViews overrides the layout per sidebar section.
	SectionViews map[string]cv.View
	// MainFormat is the list/grid layout of the main-column sections;
	// SectionFormats overrides it per section.
	MainFormat     cv.MainFormat
	SectionFormats map[string]cv.MainFormat
	GlyphKey       string

	// Vars are the resolved CSS custom properties, derived colors included.
	Vars map[string]string
	Font Font

	// PhotoSrc is a URL or data URI for the portrait; empty hides it.
	PhotoSrc    string
	PhotoOffset [2]float64
	PhotoScale  float64

	HiddenSections  map[string]bool
	IncludeTimeline bool
}

type pageData struct {
	Lang       string
	Title      string
	FontLink   string
	StyleBlock template.CSS
	PhotoSrc   string
	PhotoStyle template.CSS
	Sidebar    []template.HTML
	Main       []template.HTML
}

const pageTpl = `<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<link rel="stylesheet" href="https://cdnjs.cloudflare.com/ajax/libs/font-awesome/6.5.2/css/all.min.css">
{{- if .FontLink}}
<link rel="stylesheet" href="{{.FontLink}}">
{{- end}}
<style>
{{.StyleBlock}}
</style>
</head>
<body>
<div class="cv-page">
  <aside class="cv-sidebar">
    {{- if .PhotoSrc}}
    <div class="foto-viewport">
      <img class="foto" src="{{.PhotoSrc}}" style="{{.PhotoStyle}}" alt="">
    </div>
    {{- end}}
    {{- range .Sidebar}}
    {{.}}
    {{- end}}
  </aside>
  <main class="cv-main">
    {{- range .Main}}
    {{.}}
    {{- end}}
  </main>
</div>
</body>
</html>`

var parsedPageTpl = template.Must(template.New("page").Parse(pageTpl))

// baseStyle is the fixed part of the page stylesheet; the custom properties
// layered on top of it come from the personalizer snapshot.
const baseStyle = `:root {
  --text-shadow-black: 0 1px 2px rgba(0, 0, 0, 0.65);
  --text-shadow-white: 0 1px 2px rgba(255, 255, 255, 0.65);
}
body {
  margin: 0;
  font-family: var(--font-family);
  font-size: var(--font-size, 14px);
  background: var(--page-background-color, #ffffff);
  color: var(--page-font-color, #1a1a1a);
}
.cv-page { display: flex; min-height: 100vh; }
.cv-sidebar {
  width: var(--sidebar-width, 32%);
  padding: var(--sidebar-padding, 1.5vw);
  background: var(--sidebar-background-color, #2c3e50);
  color: var(--sidebar-font-color, #ffffff);
  text-shadow: var(--sidebar-text-shadow, none);
}
.cv-main {
  flex: 1;
  padding: var(--main-padding, 2vw);
  background: var(--main-background-color, #ffffff);
  color: var(--main-font-color, #1a1a1a);
}
.section-title {
  background: var(--title-background-color, transparent);
  color: var(--title-font-color, inherit);
}
.foto-viewport {
  width: var(--foto-size, 190px);
  aspect-ratio: var(--foto-aspect, 1);
  border-radius: var(--foto-radius, 50%);
  overflow: hidden;
  margin: 0 auto 1rem;
}
.foto { transform-origin: center center; }
.section-items.grid-view {
  display: grid;
  grid-template-columns: repeat(auto-fill, minmax(var(--card-size, 120px), 1fr));
  gap: var(--card-gap, 0.5vw);
}
.section-items.compact-view { display: flex; flex-wrap: wrap; gap: var(--card-gap, 0.5vw); }
.section-items.grid-tabla {
  display: grid;
  grid-template-columns: repeat(auto-fill, minmax(220px, 1fr));
  gap: var(--card-gap, 0.5vw);
}
.item-level-empty, .glyph-faded { opacity: 0.3; }
@media print { .cv-page { break-inside: avoid; } }`

// Page assembles all visible sections of one record into a printable page.
// Sections that fail to render are logged and skipped; the rest of the page
// still comes out.
func (r *Renderer) Page(in PageInput) (string, error) {
	data := pageData{
		Lang:       in.Lang,
		Title:      r.clean(in.Record.Nombre),
		FontLink:   in.Font.Link,
		StyleBlock: template.CSS(baseStyle + "\n" + varsBlock(in.Vars, in.Font)),
		PhotoSrc:   in.PhotoSrc,
		PhotoStyle: photoStyle(in.PhotoOffset, in.PhotoScale),
	}

	appendSection := func(dst *[]template.HTML, html string) {
		if html != "" {
			*dst = append(*dst, template.HTML(html))
		}
	}

	for _, name := range []string{"nombre", "titulo"} {
		if in.HiddenSections[name] {
			continue
		}
		html, err := r.Section(name, in.Record, "", in.GlyphKey)
		if err != nil {
			r.logger.Error("render page section", slog.String("section", name), slog.String("error", err.Error()))
			continue
		}
		appendSection(&data.Sidebar, html)
	}

	for _, sec := range cv.SidebarSections {
		if in.HiddenSections[sec.Name] {
			continue
		}
		view := in.SidebarView
		if override, ok := in.SectionViews[sec.Name]; ok {
			view = override
		}
		if !cv.ValidView(view) {
			view = sec.DefaultView
		}
		html, err := r.Section(sec.Name, in.Record, view, in.GlyphKey)
		if err != nil {
			r.logger.Error("render page section", slog.String("section", sec.Name), slog.String("error", err.Error()))
			continue
		}
		appendSection(&data.Sidebar, html)
	}

	for _, name := range []string{"resumen", "objetivo"} {
		if in.HiddenSections[name] {
			continue
		}
		html, err := r.Section(name, in.Record, "", in.GlyphKey)
		if err != nil {
			r.logger.Error("render page section", slog.String("section", name), slog.String("error", err.Error()))
			continue
		}
		appendSection(&data.Main, html)
	}

	for _, sec := range cv.MainSections {
		if in.HiddenSections[sec.Name] {
			continue
		}
		format := in.MainFormat
		if override, ok := in.SectionFormats[sec.Name]; ok {
			format = override
		}
		if !cv.ValidMainFormat(format) {
			format = cv.FormatList
		}
		html, err := r.Section(sec.Name, in.Record, cv.View(format), in.GlyphKey)
		if err != nil {
			r.logger.Error("render page section", slog.String("section", sec.Name), slog.String("error", err.Error()))
			continue
		}
		appendSection(&data.Main, html)
	}

	if in.IncludeTimeline {
		html, err := r.Timeline(in.Record)
		if err != nil {
			r.logger.Error("render timeline", slog.String("error", err.Error()))
		} else {
			appendSection(&data.Main, html)
		}
	}

	var b strings.Builder
	if err := parsedPageTpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render page: %w", err)
	}
	return b.String(), nil
}

// varsBlock renders the custom properties in a stable order so page output
// is deterministic.
func varsBlock(vars map[string]string, font Font) string {
	names := make([]string, 0, len(vars)+1)
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(":root {\n")
	fontWritten := false
	for _, name := range names {
		if name == "--font-family" {
			// The stored value is a font name; the stack comes from the
			// font registry.
			b.WriteString(fmt.Sprintf("  --font-family: %s;\n", font.Stack))
			fontWritten = true
			continue
		}
		b.WriteString(fmt.Sprintf("  %s: %s;\n", name, vars[name]))
	}
	if !fontWritten {
		b.WriteString(fmt.Sprintf("  --font-family: %s;\n", font.Stack))
	}
	b.WriteString("}")
	return b.String()
}

func photoStyle(offset [2]float64, scale float64) template.CSS {
	if scale <= 0 {
		scale = 1
	}
	return template.CSS(fmt.Sprintf(
		"transform: translate(%.2fpx, %.2fpx) scale(%.4f);",
		offset[0], offset[1], scale,
	))
}
