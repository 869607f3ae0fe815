package language

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"cvstudio/internal/cv"
	"cvstudio/internal/prefs"
	"cvstudio/internal/render"
)

// ErrUnknownLanguage is returned when a selection names a language the
// document does not carry.
var ErrUnknownLanguage = errors.New("unknown language")

// Option describes one entry of the language switcher.
type Option struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	FlagURL  string `json:"flagUrl,omitempty"`
	Selected bool   `json:"selected"`
}

// Content is the fully rendered state of one language: every section's
// markup, the resolved labels and the page font.
type Content struct {
	Lang     string            `json:"lang"`
	Sections map[string]string `json:"sections"`
	Labels   map[string]string `json:"labels"`
	Font     render.Font       `json:"font"`
	Timeline string            `json:"timeline"`
}

// Controller owns the active language of a document. Switching re-renders
// every configured section; selecting the language that is already active
// does nothing. The mutex is not reentrant: rendering never calls back into
// selection.
type Controller struct {
	renderer *render.Renderer
	store    prefs.Store
	logger   *slog.Logger

	mu     sync.Mutex
	doc    *cv.Document
	active string
	cached *Content
}

// NewController restores the persisted selection, falling back to the
// document's first language when none is stored or the stored one is gone.
func NewController(ctx context.Context, doc *cv.Document, renderer *render.Renderer, store prefs.Store, logger *slog.Logger) (*Controller, error) {
	if doc == nil || len(doc.Codes) == 0 {
		return nil, errors.New("document has no languages")
	}

	c := &Controller{
		renderer: renderer,
		store:    store,
		logger:   logger,
		doc:      doc,
	}

	code := doc.DefaultCode()
	if saved, ok, err := store.Get(ctx, prefs.KeyLanguage); err != nil {
		logger.Warn("restore language selection", slog.String("error", err.Error()))
	} else if ok && doc.Has(saved) {
		code = saved
	}

	if _, err := c.SelectLanguage(ctx, code); err != nil {
		return nil, err
	}
	return c, nil
}

// ReplaceDocument swaps in a new document, keeping the current language when
// the new document still has it.
func (c *Controller) ReplaceDocument(ctx context.Context, doc *cv.Document) error {
	if doc == nil || len(doc.Codes) == 0 {
		return errors.New("document has no languages")
	}

	c.mu.Lock()
	code := c.active
	c.doc = doc
	c.cached = nil
	c.active = ""
	c.mu.Unlock()

	if !doc.Has(code) {
		code = doc.DefaultCode()
	}
	_, err := c.SelectLanguage(ctx, code)
	return err
}

// Languages lists the switcher options with the active one marked.
func (c *Controller) Languages() []Option {
	c.mu.Lock()
	defer c.mu.Unlock()

	opts := make([]Option, 0, len(c.doc.Codes))
	for _, code := range c.doc.Codes {
		opt := Option{
			Code:     code,
			Name:     cv.LanguageName(code),
			Selected: code == c.active,
		}
		if url, ok := cv.FlagURL(code); ok {
			opt.FlagURL = url
		}
		opts = append(opts, opt)
	}
	return opts
}

// Active returns the current language code and its record.
func (c *Controller) Active() (string, cv.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	rec := c.doc.Records[c.active]
	return c.active, rec
}

// SelectLanguage switches the active language, persists the choice and
// returns the re-rendered content. Selecting the already active language
// returns the cached content without re-rendering.
func (c *Controller) SelectLanguage(ctx context.Context, code string) (*Content, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if code == c.active && c.cached != nil {
		return c.cached, nil
	}
	if !c.doc.Has(code) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLanguage, code)
	}

	content, err := c.renderLocked(ctx, code)
	if err != nil {
		return nil, err
	}

	c.active = code
	c.cached = content
	if err := c.store.Set(ctx, prefs.KeyLanguage, code); err != nil {
		c.logger.Warn("persist language selection", slog.String("error", err.Error()))
	}
	return content, nil
}

// Content re-renders the active language, bypassing the cache. Used after a
// preference that affects section markup changes.
func (c *Controller) Content(ctx context.Context) (*Content, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	content, err := c.renderLocked(ctx, c.active)
	if err != nil {
		return nil, err
	}
	c.cached = content
	return content, nil
}

// renderLocked renders every configured section of a language. A section
// that fails is logged and omitted; the switch still completes. Callers hold
// c.mu.
func (c *Controller) renderLocked(ctx context.Context, code string) (*Content, error) {
	rec, ok := c.doc.Record(code)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLanguage, code)
	}

	glyphKey := c.pref(ctx, prefs.KeyGlyph, render.GlyphDefault)
	defaultView := cv.View(c.pref(ctx, prefs.KeySidebarView, string(cv.ViewGrid)))

	content := &Content{
		Lang:     code,
		Sections: make(map[string]string),
		Labels:   make(map[string]string),
	}

	for _, name := range cv.TextSections {
		c.renderSection(content, name, rec, "", glyphKey)
	}
	for _, sec := range cv.SidebarSections {
		view := cv.View(c.pref(ctx, prefs.SectionFormatKey(sec.Name), string(defaultView)))
		c.renderSection(content, sec.Name, rec, view, glyphKey)
		content.Labels[sec.Name] = rec.Label(sec.Name)
	}
	mainFormat := c.pref(ctx, prefs.KeyMainFormat, string(cv.FormatList))
	for _, sec := range cv.MainSections {
		format := c.pref(ctx, prefs.SectionFormatKey(sec.Name), mainFormat)
		c.renderSection(content, sec.Name, rec, cv.View(format), glyphKey)
		content.Labels[sec.Name] = rec.Label(sec.Name)
	}

	if timeline, err := c.renderer.Timeline(rec); err != nil {
		c.logger.Error("render timeline", slog.String("lang", code), slog.String("error", err.Error()))
	} else {
		content.Timeline = timeline
	}

	font := render.DefaultFont()
	if rec.Fuente != "" {
		if f, ok := render.LookupFont(rec.Fuente); ok {
			font = f
		} else {
			c.logger.Warn("unknown font in record", slog.String("lang", code), slog.String("font", rec.Fuente))
		}
	}
	content.Font = font

	return content, nil
}

func (c *Controller) renderSection(content *Content, name string, rec cv.Record, view cv.View, glyphKey string) {
	html, err := c.renderer.Section(name, rec, view, glyphKey)
	if err != nil {
		c.logger.Error("render section", slog.String("section", name), slog.String("error", err.Error()))
		return
	}
	if html != "" {
		content.Sections[name] = html
	}
}

func (c *Controller) pref(ctx context.Context, key, fallback string) string {
	val, ok, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("read preference", slog.String("key", key), slog.String("error", err.Error()))
		return fallback
	}
	if !ok || val == "" {
		return fallback
	}
	return val
}
