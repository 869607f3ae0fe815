package cv

import "fmt"

// View identifies how a sidebar section lays out its items.
type View string

const (
	ViewList    View = "list-view"
	ViewGrid    View = "grid-view"
	ViewCompact View = "compact-view"
)

// ValidView reports whether v is one of the supported sidebar layouts.
func ValidView(v View) bool {
	switch v {
	case ViewList, ViewGrid, ViewCompact:
		return true
	}
	return false
}

// MainFormat identifies how the main-column sections lay out their items.
type MainFormat string

const (
	FormatList MainFormat = "list"
	FormatGrid MainFormat = "grid"
)

// ValidMainFormat reports whether f is a supported main-column format.
func ValidMainFormat(f MainFormat) bool {
	return f == FormatList || f == FormatGrid
}

// LevelKind marks how an item's value slot should be rendered.
type LevelKind int

const (
	// LevelNone means the value slot holds plain text (or nothing).
	LevelNone LevelKind = iota
	// LevelSkill renders a numeric 0..5 level as a glyph row.
	LevelSkill
	// LevelLanguage renders a CEFR token as a glyph row out of six.
	LevelLanguage
)

// SidebarItem is the flattened view of one sidebar entry. Each typed item
// variant projects into it through its section's config, so the templates
// never reach into the concrete structs by name.
type SidebarItem struct {
	Icon     string
	FlagCode string
	Name     string
	Value    string
	HasValue bool
	Level    LevelKind
	Filled   int
	Total    int
}

// MainItem is the flattened view of one main-column entry.
type MainItem struct {
	Icon        string
	HasIcon     bool
	Title       string
	Description string
	Date        string
}

// SidebarSection binds a section name to its default layout and the
// projection from the typed record slice into view items.
type SidebarSection struct {
	Name        string
	DefaultView View
	Items       func(Record) []SidebarItem
}

// MainSection binds a main-column section to its projection.
type MainSection struct {
	Name  string
	Items func(Record) []MainItem
}

// TextSections are the simple one-value sections of the record.
var TextSections = []string{"nombre", "titulo", "resumen", "objetivo"}

// SidebarSections holds the four sidebar sections in page order.
var SidebarSections = []SidebarSection{
	{
		Name:        "contacto",
		DefaultView: ViewList,
		Items: func(rec Record) []SidebarItem {
			items := make([]SidebarItem, 0, len(rec.Contacto))
			for _, it := range rec.Contacto {
				items = append(items, SidebarItem{
					Icon:     it.Icono,
					Name:     it.Etiqueta,
					Value:    it.Valor,
					HasValue: true,
				})
			}
			return items
		},
	},
	{
		Name:        "habilidades",
		DefaultView: ViewGrid,
		Items: func(rec Record) []SidebarItem {
			items := make([]SidebarItem, 0, len(rec.Habilidades))
			for _, it := range rec.Habilidades {
				items = append(items, SidebarItem{
					Icon:     it.Icono,
					Name:     it.Nombre,
					HasValue: true,
					Level:    LevelSkill,
					Filled:   clampLevel(it.Nivel, SkillGlyphs),
					Total:    SkillGlyphs,
				})
			}
			return items
		},
	},
	{
		Name:        "idiomas",
		DefaultView: ViewGrid,
		Items: func(rec Record) []SidebarItem {
			items := make([]SidebarItem, 0, len(rec.Idiomas))
			for _, it := range rec.Idiomas {
				items = append(items, SidebarItem{
					Icon:     it.Icono,
					FlagCode: it.Codigo,
					Name:     it.Idioma,
					HasValue: true,
					Level:    LevelLanguage,
					Filled:   LevelScale[it.Nivel],
					Total:    LanguageGlyphs,
				})
			}
			return items
		},
	},
	{
		Name:        "hobbies",
		DefaultView: ViewGrid,
		Items: func(rec Record) []SidebarItem {
			items := make([]SidebarItem, 0, len(rec.Hobbies))
			for _, it := range rec.Hobbies {
				items = append(items, SidebarItem{
					Icon: it.Icono,
					Name: it.Nombre,
				})
			}
			return items
		},
	},
}

// MainSections holds the three main-column sections in page order.
var MainSections = []MainSection{
	{
		Name: "experiencia",
		Items: func(rec Record) []MainItem {
			items := make([]MainItem, 0, len(rec.Experiencia))
			for _, it := range rec.Experiencia {
				items = append(items, MainItem{
					Icon:        it.Icono,
					HasIcon:     it.Icono != "",
					Title:       fmt.Sprintf("%s en %s", it.Puesto, it.Empresa),
					Description: it.Descripcion,
					Date:        it.Fecha,
				})
			}
			return items
		},
	},
	{
		Name: "estudios",
		Items: func(rec Record) []MainItem {
			items := make([]MainItem, 0, len(rec.Estudios))
			for _, it := range rec.Estudios {
				items = append(items, MainItem{
					Icon:        it.Icono,
					HasIcon:     it.Icono != "",
					Title:       it.Titulo,
					Description: it.Detalles,
					Date:        it.Fecha,
				})
			}
			return items
		},
	},
	{
		Name: "logros",
		Items: func(rec Record) []MainItem {
			items := make([]MainItem, 0, len(rec.Logros))
			for _, it := range rec.Logros {
				items = append(items, MainItem{
					Title:       it.Titulo,
					Description: it.Descripcion,
					Date:        it.Fecha,
				})
			}
			return items
		},
	},
}

// SidebarSectionByName looks up a sidebar section config.
func SidebarSectionByName(name string) (SidebarSection, bool) {
	for _, s := range SidebarSections {
		if s.Name == name {
			return s, true
		}
	}
	return SidebarSection{}, false
}

// MainSectionByName looks up a main-column section config.
func MainSectionByName(name string) (MainSection, bool) {
	for _, s := range MainSections {
		if s.Name == name {
			return s, true
		}
	}
	return MainSection{}, false
}

// DefaultViewFor returns the default layout for a sidebar section. Sections that
// read as timelines keep the list layout, the rest start as a grid.
func DefaultViewFor(section string) View {
	switch section {
	case "contacto", "experiencia", "estudios", "logros":
		return ViewList
	}
	return ViewGrid
}

// Label resolves the display heading for a section in this record's language,
// falling back to the section name itself.
func (r Record) Label(section string) string {
	if label, ok := r.Secciones[section]; ok && label != "" {
		return label
	}
	return section
}

func clampLevel(n, max int) int {
	if n < 0 {
		return 0
	}
	if n > max {
		return max
	}
	return n
}
