package language

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"cvstudio/internal/cv"
	"cvstudio/internal/prefs"
	"cvstudio/internal/render"
)

func testDocument() *cv.Document {
	return &cv.Document{
		Codes: []string{"es", "en"},
		Records: map[string]cv.Record{
			"es": {
				Nombre:  "Ana Torres",
				Titulo:  "Ingeniera de Datos",
				Resumen: "Diez años construyendo pipelines.",
				Habilidades: []cv.SkillItem{
					{Icono: "fa-solid fa-database", Nombre: "SQL", Nivel: 4},
				},
				Secciones: map[string]string{"habilidades": "Habilidades"},
			},
			"en": {
				Nombre:  "Ana Torres",
				Titulo:  "Data Engineer",
				Resumen: "Ten years building pipelines.",
				Habilidades: []cv.SkillItem{
					{Icono: "fa-solid fa-database", Nombre: "SQL", Nivel: 4},
				},
				Secciones: map[string]string{"habilidades": "Skills"},
				Fuente:    "Roboto",
			},
		},
	}
}

func newTestController(t *testing.T, store prefs.Store) *Controller {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	renderer, err := render.New(logger)
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	c, err := NewController(context.Background(), testDocument(), renderer, store, logger)
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	return c
}

func TestNewControllerDefaultsToFirstLanguage(t *testing.T) {
	c := newTestController(t, prefs.NewMemoryStore())
	code, rec := c.Active()
	if code != "es" {
		t.Fatalf("expected es, got %s", code)
	}
	if rec.Titulo != "Ingeniera de Datos" {
		t.Fatalf("wrong record: %s", rec.Titulo)
	}
}

func TestNewControllerRestoresSavedLanguage(t *testing.T) {
	store := prefs.NewMemoryStoreFrom(map[string]string{prefs.KeyLanguage: "en"})
	c := newTestController(t, store)
	if code, _ := c.Active(); code != "en" {
		t.Fatalf("expected restored en, got %s", code)
	}
}

func TestNewControllerIgnoresStaleSavedLanguage(t *testing.T) {
	store := prefs.NewMemoryStoreFrom(map[string]string{prefs.KeyLanguage: "fr"})
	c := newTestController(t, store)
	if code, _ := c.Active(); code != "es" {
		t.Fatalf("stale selection must fall back to the first language, got %s", code)
	}
}

func TestSelectLanguagePersistsAndRenders(t *testing.T) {
	store := prefs.NewMemoryStore()
	c := newTestController(t, store)
	ctx := context.Background()

	content, err := c.SelectLanguage(ctx, "en")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if content.Lang != "en" {
		t.Fatalf("expected en content, got %s", content.Lang)
	}
	if !strings.Contains(content.Sections["habilidades"], "Skills") {
		t.Fatal("english labels should be rendered")
	}
	if content.Font.Name != "Roboto" {
		t.Fatalf("record font should be resolved, got %s", content.Font.Name)
	}
	if val, ok, _ := store.Get(ctx, prefs.KeyLanguage); !ok || val != "en" {
		t.Fatalf("selection must be persisted, got %q ok=%v", val, ok)
	}
}

func TestSelectSameLanguageReturnsCache(t *testing.T) {
	c := newTestController(t, prefs.NewMemoryStore())
	ctx := context.Background()

	first, err := c.SelectLanguage(ctx, "es")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	second, err := c.SelectLanguage(ctx, "es")
	if err != nil {
		t.Fatalf("reselect: %v", err)
	}
	if first != second {
		t.Fatal("selecting the active language must return the cached content")
	}
}

func TestSelectUnknownLanguage(t *testing.T) {
	c := newTestController(t, prefs.NewMemoryStore())
	if _, err := c.SelectLanguage(context.Background(), "fr"); !errors.Is(err, ErrUnknownLanguage) {
		t.Fatalf("expected ErrUnknownLanguage, got %v", err)
	}
	if code, _ := c.Active(); code != "es" {
		t.Fatalf("failed selection must not change the active language, got %s", code)
	}
}

func TestContentBypassesCache(t *testing.T) {
	store := prefs.NewMemoryStore()
	c := newTestController(t, store)
	ctx := context.Background()

	cached, err := c.SelectLanguage(ctx, "es")
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	// A glyph change affects section markup, so Content must re-render.
	if err := store.Set(ctx, prefs.KeyGlyph, "heart"); err != nil {
		t.Fatalf("set glyph: %v", err)
	}
	fresh, err := c.Content(ctx)
	if err != nil {
		t.Fatalf("content: %v", err)
	}
	if fresh == cached {
		t.Fatal("Content must not return the stale cache")
	}
	if !strings.Contains(fresh.Sections["habilidades"], `data-glyph="heart"`) {
		t.Fatal("re-render should pick up the new glyph")
	}
}

func TestLanguagesMarksActive(t *testing.T) {
	c := newTestController(t, prefs.NewMemoryStore())
	opts := c.Languages()
	if len(opts) != 2 {
		t.Fatalf("expected 2 options, got %d", len(opts))
	}
	if opts[0].Code != "es" || !opts[0].Selected {
		t.Fatalf("first option should be the selected es, got %+v", opts[0])
	}
	if opts[1].Code != "en" || opts[1].Selected {
		t.Fatalf("en should be unselected, got %+v", opts[1])
	}
	if opts[0].Name != "Español" {
		t.Fatalf("expected native name, got %s", opts[0].Name)
	}
	if !strings.Contains(opts[1].FlagURL, "flagcdn.com") {
		t.Fatalf("options should carry flag URLs, got %s", opts[1].FlagURL)
	}
}

func TestReplaceDocumentKeepsLanguage(t *testing.T) {
	c := newTestController(t, prefs.NewMemoryStore())
	ctx := context.Background()
	if _, err := c.SelectLanguage(ctx, "en"); err != nil {
		t.Fatalf("select: %v", err)
	}

	if err := c.ReplaceDocument(ctx, testDocument()); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if code, _ := c.Active(); code != "en" {
		t.Fatalf("replacement should keep the selection, got %s", code)
	}
}

func TestReplaceDocumentFallsBackWhenLanguageGone(t *testing.T) {
	c := newTestController(t, prefs.NewMemoryStore())
	ctx := context.Background()
	if _, err := c.SelectLanguage(ctx, "en"); err != nil {
		t.Fatalf("select: %v", err)
	}

	doc := testDocument()
	doc.Codes = []string{"es"}
	delete(doc.Records, "en")
	if err := c.ReplaceDocument(ctx, doc); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if code, _ := c.Active(); code != "es" {
		t.Fatalf("gone language should fall back to the first, got %s", code)
	}
}

func TestContentAppliesMainFormat(t *testing.T) {
	store := prefs.NewMemoryStoreFrom(map[string]string{
		prefs.KeyMainFormat:                "grid",
		prefs.SectionFormatKey("estudios"): "list",
	})
	c := newTestController(t, store)

	content, err := c.Content(context.Background())
	if err != nil {
		t.Fatalf("content: %v", err)
	}
	if !strings.Contains(content.Sections["experiencia"], "main-items grid-tabla") {
		t.Fatalf("global main format should apply: %s", content.Sections["experiencia"])
	}
	if !strings.Contains(content.Sections["estudios"], "main-items lista-tabla") {
		t.Fatalf("per-section format should win: %s", content.Sections["estudios"])
	}
}
