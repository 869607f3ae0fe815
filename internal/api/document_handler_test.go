package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"cvstudio/internal/database"
	"cvstudio/internal/prefs"
	"cvstudio/internal/render"
)

const sampleDocumentJSON = `{
  "es": {
    "nombre": "Ana Torres",
    "titulo": "Ingeniera de Datos",
    "resumen": "Diez años construyendo pipelines.",
    "habilidades": [{"icono": "fa-solid fa-database", "nombre": "SQL", "nivel": 4}]
  },
  "en": {
    "nombre": "Ana Torres",
    "titulo": "Data Engineer",
    "resumen": "Ten years building pipelines."
  }
}`

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&database.Document{}, &database.Export{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestStudio(t *testing.T, db *gorm.DB) (*Studio, *render.Renderer, prefs.Store) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	renderer, err := render.New(logger)
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}
	store := prefs.NewMemoryStore()
	studio, err := NewStudio(context.Background(), db, renderer, store, logger)
	if err != nil {
		t.Fatalf("NewStudio: %v", err)
	}
	return studio, renderer, store
}

func jsonRequest(t *testing.T, method, target, body string) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return w, c
}

func TestUploadDocument(t *testing.T) {
	db := newTestDB(t)
	studio, _, _ := newTestStudio(t, db)
	h := NewDocumentHandler(db, studio)

	w, c := jsonRequest(t, http.MethodPost, "/v1/document?title=Mi+CV", sampleDocumentJSON)
	h.UploadDocument(c)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		ID        uint     `json:"id"`
		Title     string   `json:"title"`
		Languages []string `json:"languages"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Title != "Mi CV" {
		t.Fatalf("expected query title, got %q", resp.Title)
	}
	if len(resp.Languages) != 2 || resp.Languages[0] != "es" {
		t.Fatalf("expected [es en], got %v", resp.Languages)
	}

	if _, err := studio.Controller(); err != nil {
		t.Fatalf("upload should activate the document: %v", err)
	}
	if id, err := studio.DocumentID(); err != nil || id != resp.ID {
		t.Fatalf("active document id %d err=%v, want %d", id, err, resp.ID)
	}
}

func TestUploadDocumentDefaultsTitle(t *testing.T) {
	db := newTestDB(t)
	studio, _, _ := newTestStudio(t, db)
	h := NewDocumentHandler(db, studio)

	w, c := jsonRequest(t, http.MethodPost, "/v1/document", sampleDocumentJSON)
	h.UploadDocument(c)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Title != "Ana Torres" {
		t.Fatalf("title should default to the first record's name, got %q", resp.Title)
	}
}

func TestUploadDocumentRejectsInvalid(t *testing.T) {
	db := newTestDB(t)
	studio, _, _ := newTestStudio(t, db)
	h := NewDocumentHandler(db, studio)

	w, c := jsonRequest(t, http.MethodPost, "/v1/document", `{"es": {"nombre": "Ana"}}`)
	h.UploadDocument(c)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d body=%s", w.Code, w.Body.String())
	}

	var count int64
	if err := db.Model(&database.Document{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("invalid document must not be stored, found %d rows", count)
	}
}

func TestUploadDocumentReplacesActive(t *testing.T) {
	db := newTestDB(t)
	studio, _, _ := newTestStudio(t, db)
	h := NewDocumentHandler(db, studio)

	for i := 0; i < 2; i++ {
		w, c := jsonRequest(t, http.MethodPost, "/v1/document", sampleDocumentJSON)
		h.UploadDocument(c)
		if w.Code != http.StatusCreated {
			t.Fatalf("upload %d: expected 201 got %d", i, w.Code)
		}
	}

	var active int64
	if err := db.Model(&database.Document{}).Where("active = ?", true).Count(&active).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if active != 1 {
		t.Fatalf("exactly one document may be active, found %d", active)
	}
}

func TestGetDocumentWithoutUpload(t *testing.T) {
	db := newTestDB(t)
	studio, _, _ := newTestStudio(t, db)
	h := NewDocumentHandler(db, studio)

	w, c := jsonRequest(t, http.MethodGet, "/v1/document", "")
	h.GetDocument(c)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
}

func TestStudioRestoresActiveDocument(t *testing.T) {
	db := newTestDB(t)
	studio, _, _ := newTestStudio(t, db)
	h := NewDocumentHandler(db, studio)

	w, c := jsonRequest(t, http.MethodPost, "/v1/document", sampleDocumentJSON)
	h.UploadDocument(c)
	if w.Code != http.StatusCreated {
		t.Fatalf("upload: expected 201 got %d", w.Code)
	}

	// A fresh Studio over the same database picks the document back up.
	restored, _, _ := newTestStudio(t, db)
	ctrl, err := restored.Controller()
	if err != nil {
		t.Fatalf("restored studio has no controller: %v", err)
	}
	if code, _ := ctrl.Active(); code != "es" {
		t.Fatalf("expected es active, got %s", code)
	}
}
