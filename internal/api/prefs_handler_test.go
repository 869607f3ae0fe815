package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"cvstudio/internal/prefs"
)

func newTestPrefsHandler(t *testing.T) (*PrefsHandler, prefs.Store) {
	t.Helper()
	store := prefs.NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	personalizer, err := prefs.NewPersonalizer(store, logger)
	if err != nil {
		t.Fatalf("NewPersonalizer: %v", err)
	}
	return NewPrefsHandler(personalizer, store), store
}

func TestApplySettingEndpoint(t *testing.T) {
	h, _ := newTestPrefsHandler(t)

	w, c := jsonRequest(t, http.MethodPut, "/v1/preferences/style/font-size-slider", `{"value": "14"}`)
	c.Params = gin.Params{{Key: "id", Value: "font-size-slider"}}
	h.ApplySetting(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var state prefs.StyleState
	if err := json.Unmarshal(w.Body.Bytes(), &state); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if state.Vars["--font-size"] != "14px" {
		t.Fatalf("expected suffixed var, got %v", state.Vars)
	}
}

func TestApplySettingUnknownID(t *testing.T) {
	h, _ := newTestPrefsHandler(t)

	w, c := jsonRequest(t, http.MethodPut, "/v1/preferences/style/nope", `{"value": "x"}`)
	c.Params = gin.Params{{Key: "id", Value: "nope"}}
	h.ApplySetting(c)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
}

func TestSetGlyphEndpoint(t *testing.T) {
	h, store := newTestPrefsHandler(t)

	w, c := jsonRequest(t, http.MethodPut, "/v1/preferences/glyph", `{"key": "heart"}`)
	h.SetGlyph(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	if val, ok, _ := store.Get(context.Background(), prefs.KeyGlyph); !ok || val != "heart" {
		t.Fatalf("glyph not stored, got %q ok=%v", val, ok)
	}
}

func TestSetGlyphRejectsUnknown(t *testing.T) {
	h, _ := newTestPrefsHandler(t)

	w, c := jsonRequest(t, http.MethodPut, "/v1/preferences/glyph", `{"key": "unicorn"}`)
	h.SetGlyph(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
}

func TestSetSectionViewEndpoint(t *testing.T) {
	h, store := newTestPrefsHandler(t)

	w, c := jsonRequest(t, http.MethodPut, "/v1/preferences/sections/habilidades/view", `{"view": "compact-view"}`)
	c.Params = gin.Params{{Key: "section", Value: "habilidades"}}
	h.SetSectionView(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	if val, ok, _ := store.Get(context.Background(), "habilidades-format"); !ok || val != "compact-view" {
		t.Fatalf("view not stored, got %q ok=%v", val, ok)
	}
}

func TestSetSectionViewMainSection(t *testing.T) {
	h, store := newTestPrefsHandler(t)

	w, c := jsonRequest(t, http.MethodPut, "/v1/preferences/sections/experiencia/view", `{"view": "grid"}`)
	c.Params = gin.Params{{Key: "section", Value: "experiencia"}}
	h.SetSectionView(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	if val, ok, _ := store.Get(context.Background(), "experiencia-format"); !ok || val != "grid" {
		t.Fatalf("format not stored, got %q ok=%v", val, ok)
	}
}

func TestSetSectionViewRejectsSidebarViewOnMainSection(t *testing.T) {
	h, store := newTestPrefsHandler(t)

	w, c := jsonRequest(t, http.MethodPut, "/v1/preferences/sections/logros/view", `{"view": "compact-view"}`)
	c.Params = gin.Params{{Key: "section", Value: "logros"}}
	h.SetSectionView(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
	if _, ok, _ := store.Get(context.Background(), "logros-format"); ok {
		t.Fatal("rejected format must not be stored")
	}
}

func TestSetMainFormatEndpoint(t *testing.T) {
	h, store := newTestPrefsHandler(t)

	w, c := jsonRequest(t, http.MethodPut, "/v1/preferences/main-format", `{"format": "grid"}`)
	h.SetMainFormat(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	ctx := context.Background()
	if val, ok, _ := store.Get(ctx, prefs.KeyMainFormat); !ok || val != "grid" {
		t.Fatalf("global format not stored, got %q ok=%v", val, ok)
	}
	for _, key := range []string{"experiencia-format", "estudios-format", "logros-format"} {
		if val, ok, _ := store.Get(ctx, key); !ok || val != "grid" {
			t.Fatalf("%s not stored, got %q ok=%v", key, val, ok)
		}
	}
}

func TestSetMainFormatRejectsUnknown(t *testing.T) {
	h, store := newTestPrefsHandler(t)

	w, c := jsonRequest(t, http.MethodPut, "/v1/preferences/main-format", `{"format": "tabla"}`)
	h.SetMainFormat(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
	keys, _ := store.Keys(context.Background())
	if len(keys) != 0 {
		t.Fatalf("rejected format must not write, got %v", keys)
	}
}

func TestSetLayoutPrefEndpoint(t *testing.T) {
	h, store := newTestPrefsHandler(t)

	w, c := jsonRequest(t, http.MethodPut, "/v1/preferences/layout/sidebarWidth", `{"value": "34%"}`)
	c.Params = gin.Params{{Key: "key", Value: "sidebarWidth"}}
	h.SetLayoutPref(c)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	if val, ok, _ := store.Get(context.Background(), prefs.KeySidebarWidth); !ok || val != "34%" {
		t.Fatalf("layout value not stored, got %q ok=%v", val, ok)
	}
}

func TestSetLayoutPrefUnknownKey(t *testing.T) {
	h, store := newTestPrefsHandler(t)

	w, c := jsonRequest(t, http.MethodPut, "/v1/preferences/layout/fotoScale", `{"value": "9"}`)
	c.Params = gin.Params{{Key: "key", Value: "fotoScale"}}
	h.SetLayoutPref(c)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
	if _, ok, _ := store.Get(context.Background(), prefs.KeyPhotoScale); ok {
		t.Fatal("the photo transform keys are not settable here")
	}
}

func TestSetSectionViewUnknownSection(t *testing.T) {
	h, _ := newTestPrefsHandler(t)

	w, c := jsonRequest(t, http.MethodPut, "/v1/preferences/sections/nope/view", `{"view": "list-view"}`)
	c.Params = gin.Params{{Key: "section", Value: "nope"}}
	h.SetSectionView(c)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
}

func TestImportPrefsRejectsUnknownKey(t *testing.T) {
	h, store := newTestPrefsHandler(t)

	w, c := jsonRequest(t, http.MethodPost, "/v1/preferences/import", `{"bogus": "1"}`)
	h.ImportPrefs(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body=%s", w.Code, w.Body.String())
	}
	keys, _ := store.Keys(context.Background())
	if len(keys) != 0 {
		t.Fatalf("rejected import must not write, got %v", keys)
	}
}

func TestExportImportEndpointsRoundTrip(t *testing.T) {
	h, _ := newTestPrefsHandler(t)

	w, c := jsonRequest(t, http.MethodPut, "/v1/preferences/style/main-background-color", `{"value": "#336699"}`)
	c.Params = gin.Params{{Key: "id", Value: "main-background-color"}}
	h.ApplySetting(c)
	if w.Code != http.StatusOK {
		t.Fatalf("apply: expected 200 got %d", w.Code)
	}

	w, c = jsonRequest(t, http.MethodGet, "/v1/preferences/export", "")
	h.ExportPrefs(c)
	if w.Code != http.StatusOK {
		t.Fatalf("export: expected 200 got %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); cd == "" {
		t.Fatal("export should be served as an attachment")
	}
	exported := w.Body.String()

	other, otherStore := newTestPrefsHandler(t)
	w, c = jsonRequest(t, http.MethodPost, "/v1/preferences/import", exported)
	other.ImportPrefs(c)
	if w.Code != http.StatusOK {
		t.Fatalf("import: expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	if val, ok, _ := otherStore.Get(context.Background(), "mainBackgroundColor"); !ok || val != "#336699" {
		t.Fatalf("imported value missing, got %q ok=%v", val, ok)
	}
}

func TestResetPrefsEndpoint(t *testing.T) {
	h, store := newTestPrefsHandler(t)
	ctx := context.Background()
	if err := store.Set(ctx, prefs.KeyPhotoScale, "1.5"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	w, c := jsonRequest(t, http.MethodPost, "/v1/preferences/reset", `{"scope": "photo"}`)
	h.ResetPrefs(c)
	c.Writer.WriteHeaderNow()

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", w.Code)
	}
	if _, ok, _ := store.Get(ctx, prefs.KeyPhotoScale); ok {
		t.Fatal("photo scope reset should clear the transform")
	}
}

func TestResetPrefsUnknownScope(t *testing.T) {
	h, _ := newTestPrefsHandler(t)

	w, c := jsonRequest(t, http.MethodPost, "/v1/preferences/reset", `{"scope": "galaxy"}`)
	h.ResetPrefs(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", w.Code)
	}
}
