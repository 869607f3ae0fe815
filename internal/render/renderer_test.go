package render

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"cvstudio/internal/cv"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New(slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func testRecord() cv.Record {
	return cv.Record{
		Nombre:  "Ana Torres",
		Titulo:  "Data Engineer",
		Resumen: "Ten years building pipelines.",
		Contacto: []cv.ContactItem{
			{Icono: "fa-solid fa-envelope", Etiqueta: "Email", Valor: "ana@example.com"},
			{Icono: "fa-solid fa-globe", Etiqueta: "Web", Valor: "https://ana.example.com"},
			{Icono: "fa-solid fa-phone", Etiqueta: "Phone", Valor: "+34 600 000 000"},
		},
		Habilidades: []cv.SkillItem{
			{Icono: "fa-solid fa-database", Nombre: "SQL", Nivel: 4},
		},
		Idiomas: []cv.LanguageItem{
			{Codigo: "de", Idioma: "Deutsch", Nivel: "B2"},
		},
		Hobbies: []cv.HobbyItem{
			{Icono: "fa-solid fa-chess", Nombre: "Chess"},
		},
		Experiencia: []cv.ExperienceItem{
			{Puesto: "Engineer", Empresa: "Acme", Descripcion: "ETL work", Fecha: "2019 - 2023"},
			{Puesto: "Analyst", Empresa: "Initech", Fecha: "2015 - 2019"},
		},
		Estudios: []cv.EducationItem{
			{Titulo: "CS Degree", Detalles: "Uni Madrid", Fecha: "2011 - 2015"},
		},
		Logros: []cv.AchievementItem{
			{Titulo: "Best Paper", Fecha: "2021"},
		},
		Secciones: map[string]string{"habilidades": "Skills"},
	}
}

func TestSectionUnknownName(t *testing.T) {
	r := newTestRenderer(t)
	out, err := r.Section("nope", testRecord(), cv.ViewList, GlyphDefault)
	if !errors.Is(err, ErrUnknownSection) {
		t.Fatalf("expected ErrUnknownSection, got %v", err)
	}
	if out != "" {
		t.Fatalf("expected no markup, got %q", out)
	}
}

func TestLanguageLevelGlyphCounts(t *testing.T) {
	r := newTestRenderer(t)
	out, err := r.Section("idiomas", testRecord(), cv.ViewList, "star")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	full := strings.Count(out, `item-level-full`)
	empty := strings.Count(out, `item-level-empty`)
	if full != 4 || empty != 2 {
		t.Fatalf("B2 should render 4 filled of 6 glyphs, got %d full %d empty", full, empty)
	}
	if !strings.Contains(out, `data-glyph="star"`) {
		t.Fatal("level row should carry the glyph key")
	}
}

func TestInvalidGlyphFallsBackToDefault(t *testing.T) {
	r := newTestRenderer(t)
	out, err := r.Section("habilidades", testRecord(), cv.ViewList, "unicorn")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, `data-glyph="star"`) {
		t.Fatalf("unknown glyph must degrade to the default, got: %s", out)
	}
}

func TestInvalidViewUsesSectionDefault(t *testing.T) {
	r := newTestRenderer(t)
	out, err := r.Section("contacto", testRecord(), cv.View("diagonal"), GlyphDefault)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "list-view") {
		t.Fatalf("contacto defaults to the list layout, got: %s", out)
	}
}

func TestSectionLabelOverride(t *testing.T) {
	r := newTestRenderer(t)
	out, err := r.Section("habilidades", testRecord(), cv.ViewGrid, GlyphDefault)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "Skills") {
		t.Fatalf("secciones label should override the section name, got: %s", out)
	}
}

func TestLinkifyContactValues(t *testing.T) {
	r := newTestRenderer(t)
	out, err := r.Section("contacto", testRecord(), cv.ViewList, GlyphDefault)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, `href="mailto:ana@example.com"`) {
		t.Fatalf("email value should become a mailto anchor, got: %s", out)
	}
	if !strings.Contains(out, `href="https://ana.example.com"`) {
		t.Fatal("URL value should become an anchor")
	}
	if !strings.Contains(out, `rel="noopener noreferrer"`) {
		t.Fatal("anchors open externally and need the rel attributes")
	}
	if !strings.Contains(out, "clickable-card") {
		t.Fatal("containers holding a link should be marked clickable")
	}
	if strings.Contains(out, `href="+34 600 000 000"`) {
		t.Fatal("plain phone numbers must not be linkified")
	}
}

func TestSanitizeStripsMarkup(t *testing.T) {
	r := newTestRenderer(t)
	rec := testRecord()
	rec.Habilidades[0].Nombre = `<script>alert(1)</script>SQL`
	out, err := r.Section("habilidades", rec, cv.ViewList, GlyphDefault)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(out, "<script>") {
		t.Fatal("document markup must be stripped")
	}
	if !strings.Contains(out, "SQL") {
		t.Fatal("the text content should survive sanitization")
	}
}

func TestEmptyObjetivoRendersNothing(t *testing.T) {
	r := newTestRenderer(t)
	out, err := r.Section("objetivo", testRecord(), cv.ViewList, GlyphDefault)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if out != "" {
		t.Fatalf("empty objetivo should produce no markup, got %q", out)
	}
}

func TestLanguageFlagTakesPrecedence(t *testing.T) {
	r := newTestRenderer(t)
	out, err := r.Section("idiomas", testRecord(), cv.ViewList, GlyphDefault)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out, "flagcdn.com/w40/de.png") {
		t.Fatalf("language with a country code should render a flag image, got: %s", out)
	}
}

func TestTimelineNewestFirst(t *testing.T) {
	r := newTestRenderer(t)
	out, err := r.Timeline(testRecord())
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	engineer := strings.Index(out, "Engineer")
	best := strings.Index(out, "Best Paper")
	analyst := strings.Index(out, "Analyst")
	degree := strings.Index(out, "CS Degree")
	if engineer < 0 || best < 0 || analyst < 0 || degree < 0 {
		t.Fatalf("timeline missing entries: %s", out)
	}
	// 2023 (range end) > 2021 > 2019 > 2015.
	if !(engineer < best && best < analyst && analyst < degree) {
		t.Fatalf("timeline not ordered newest first: %s", out)
	}
}

func TestLevelRowClampsFilled(t *testing.T) {
	out := string(LevelRow(9, 5, "circle"))
	if got := strings.Count(out, "item-level-empty"); got != 0 {
		t.Fatalf("overfilled row should have no empty glyphs, got %d", got)
	}
	out = string(LevelRow(-2, 5, "circle"))
	if got := strings.Count(out, "item-level-full"); got != 0 {
		t.Fatalf("negative fill should have no full glyphs, got %d", got)
	}
}

func TestMainSectionFormats(t *testing.T) {
	r := newTestRenderer(t)
	rec := testRecord()

	out, err := r.Section("experiencia", rec, "", GlyphDefault)
	if err != nil {
		t.Fatalf("section: %v", err)
	}
	if !strings.Contains(out, "main-items lista-tabla") {
		t.Fatalf("default format should be list: %s", out)
	}
	if !strings.Contains(out, `class="main-item list-view"`) {
		t.Fatalf("list items should carry the list class: %s", out)
	}

	out, err = r.Section("experiencia", rec, cv.View(cv.FormatGrid), GlyphDefault)
	if err != nil {
		t.Fatalf("section: %v", err)
	}
	if !strings.Contains(out, "main-items grid-tabla") {
		t.Fatalf("grid format should mark the container: %s", out)
	}
	if !strings.Contains(out, `class="main-item grid-tabla"`) {
		t.Fatalf("grid items should carry the grid class: %s", out)
	}
}
