package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"gorm.io/gorm"

	"cvstudio/internal/cv"
	"cvstudio/internal/database"
	"cvstudio/internal/language"
	"cvstudio/internal/prefs"
	"cvstudio/internal/render"
)

// ErrNoDocument is returned while no document has been uploaded yet.
var ErrNoDocument = errors.New("no active document")

// Studio owns the language controller for the active document. The
// controller only exists once a document is loaded; handlers go through
// Controller and treat ErrNoDocument as a 404.
type Studio struct {
	db       *gorm.DB
	renderer *render.Renderer
	store    prefs.Store
	logger   *slog.Logger

	mu         sync.RWMutex
	controller *language.Controller
	documentID uint
}

// NewStudio restores the active document from the database, if any.
func NewStudio(ctx context.Context, db *gorm.DB, renderer *render.Renderer, store prefs.Store, logger *slog.Logger) (*Studio, error) {
	s := &Studio{
		db:       db,
		renderer: renderer,
		store:    store,
		logger:   logger,
	}

	var doc database.Document
	err := db.WithContext(ctx).Where("active = ?", true).Order("id desc").First(&doc).Error
	switch {
	case err == nil:
		if err := s.activate(ctx, &doc); err != nil {
			return nil, fmt.Errorf("restore active document: %w", err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// fresh install, nothing to serve yet
	default:
		return nil, fmt.Errorf("query active document: %w", err)
	}

	return s, nil
}

// Controller returns the language controller for the active document.
func (s *Studio) Controller() (*language.Controller, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.controller == nil {
		return nil, ErrNoDocument
	}
	return s.controller, nil
}

// DocumentID returns the active document's ID.
func (s *Studio) DocumentID() (uint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.controller == nil {
		return 0, ErrNoDocument
	}
	return s.documentID, nil
}

// Activate parses a stored document and makes it the one the page serves.
func (s *Studio) Activate(ctx context.Context, doc *database.Document) error {
	return s.activate(ctx, doc)
}

func (s *Studio) activate(ctx context.Context, doc *database.Document) error {
	var parsed cv.Document
	if err := json.Unmarshal(doc.Content, &parsed); err != nil {
		return fmt.Errorf("decode document content: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.controller == nil {
		ctrl, err := language.NewController(ctx, &parsed, s.renderer, s.store, s.logger)
		if err != nil {
			return err
		}
		s.controller = ctrl
	} else if err := s.controller.ReplaceDocument(ctx, &parsed); err != nil {
		return err
	}
	s.documentID = doc.ID
	return nil
}
