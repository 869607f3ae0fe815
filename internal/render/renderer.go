package render

import (
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"cvstudio/internal/cv"
)

// ErrUnknownSection is returned when a section name matches no registered
// section. Callers log it and leave the page untouched.
var ErrUnknownSection = errors.New("unknown section")

// Renderer turns record sections into HTML fragments. It is safe for
// concurrent use; all state is immutable after New.
type Renderer struct {
	tpl    *template.Template
	policy *bluemonday.Policy
	logger *slog.Logger
}

// New parses the section templates and builds a renderer.
func New(logger *slog.Logger) (*Renderer, error) {
	tpl := template.New("sections")
	for _, src := range []string{sidebarSectionTpl, mainSectionTpl, textSectionTpl, timelineTpl} {
		if _, err := tpl.Parse(src); err != nil {
			return nil, fmt.Errorf("parse section templates: %w", err)
		}
	}
	return &Renderer{
		tpl:    tpl,
		policy: bluemonday.StrictPolicy(),
		logger: logger,
	}, nil
}

type sidebarItemData struct {
	Icon     template.HTML
	Name     string
	Value    template.HTML
	HasValue bool
	Tooltip  string
}

type sidebarSectionData struct {
	Name  string
	Label string
	View  cv.View
	Items []sidebarItemData
}

type mainItemData struct {
	Icon        template.HTML
	HasIcon     bool
	Title       string
	Date        string
	Description string
}

type mainSectionData struct {
	Name           string
	Label          string
	ContainerClass string
	ItemClass      string
	Items          []mainItemData
}

type textSectionData struct {
	Name  string
	Label string
	Text  string
}

// Section renders one named section of a record. For sidebar sections view
// selects the layout; for main-column sections it carries the list/grid
// format mode instead. glyphKey picks the level glyph. All of them degrade
// to defaults when the stored value is unusable. Unknown section names
// return ErrUnknownSection and no markup.
func (r *Renderer) Section(name string, rec cv.Record, view cv.View, glyphKey string) (string, error) {
	if sec, ok := cv.SidebarSectionByName(name); ok {
		return r.sidebarSection(sec, rec, view, glyphKey)
	}
	if sec, ok := cv.MainSectionByName(name); ok {
		return r.mainSection(sec, rec, cv.MainFormat(view))
	}
	if isTextSection(name) {
		return r.textSection(name, rec)
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownSection, name)
}

func (r *Renderer) sidebarSection(sec cv.SidebarSection, rec cv.Record, view cv.View, glyphKey string) (string, error) {
	if !cv.ValidView(view) {
		r.logger.Warn("invalid view, using section default",
			slog.String("section", sec.Name),
			slog.String("view", string(view)),
		)
		view = sec.DefaultView
	}
	if !ValidGlyph(glyphKey) {
		glyphKey = GlyphDefault
	}

	data := sidebarSectionData{
		Name:  sec.Name,
		Label: r.clean(rec.Label(sec.Name)),
		View:  view,
	}
	for _, item := range sec.Items(rec) {
		d := sidebarItemData{
			Icon:     ItemIcon(item.Icon, item.FlagCode),
			Name:     r.clean(item.Name),
			HasValue: item.HasValue,
		}
		switch item.Level {
		case cv.LevelNone:
			if item.HasValue {
				d.Value = template.HTML(template.HTMLEscapeString(r.clean(item.Value)))
				d.Tooltip = r.clean(item.Value)
			}
		default:
			d.Value = LevelRow(item.Filled, item.Total, glyphKey)
		}
		data.Items = append(data.Items, d)
	}

	var b strings.Builder
	if err := r.tpl.ExecuteTemplate(&b, "sidebar-section", data); err != nil {
		return "", fmt.Errorf("render section %s: %w", sec.Name, err)
	}
	return Linkify(b.String())
}

func (r *Renderer) mainSection(sec cv.MainSection, rec cv.Record, format cv.MainFormat) (string, error) {
	if !cv.ValidMainFormat(format) {
		format = cv.FormatList
	}
	data := mainSectionData{
		Name:           sec.Name,
		Label:          r.clean(rec.Label(sec.Name)),
		ContainerClass: "lista-tabla",
		ItemClass:      "list-view",
	}
	if format == cv.FormatGrid {
		data.ContainerClass = "grid-tabla"
		data.ItemClass = "grid-tabla"
	}
	for _, item := range sec.Items(rec) {
		data.Items = append(data.Items, mainItemData{
			Icon:        ItemIcon(item.Icon, ""),
			HasIcon:     item.HasIcon,
			Title:       r.clean(item.Title),
			Date:        r.clean(item.Date),
			Description: r.clean(item.Description),
		})
	}

	var b strings.Builder
	if err := r.tpl.ExecuteTemplate(&b, "main-section", data); err != nil {
		return "", fmt.Errorf("render section %s: %w", sec.Name, err)
	}
	return b.String(), nil
}

func (r *Renderer) textSection(name string, rec cv.Record) (string, error) {
	var text string
	switch name {
	case "nombre":
		text = rec.Nombre
	case "titulo":
		text = rec.Titulo
	case "resumen":
		text = rec.Resumen
	case "objetivo":
		text = rec.Objetivo
	}

	// An empty objetivo is simply not shown.
	if name == "objetivo" && text == "" {
		return "", nil
	}

	data := textSectionData{Name: name, Text: r.clean(text)}
	// nombre and titulo are headings themselves and take no label.
	if name == "resumen" || name == "objetivo" {
		data.Label = r.clean(rec.Label(name))
	}

	var b strings.Builder
	if err := r.tpl.ExecuteTemplate(&b, "text-section", data); err != nil {
		return "", fmt.Errorf("render section %s: %w", name, err)
	}
	return b.String(), nil
}

// clean strips any markup out of document-supplied text.
func (r *Renderer) clean(s string) string {
	return r.policy.Sanitize(s)
}

func isTextSection(name string) bool {
	for _, s := range cv.TextSections {
		if s == name {
			return true
		}
	}
	return false
}
