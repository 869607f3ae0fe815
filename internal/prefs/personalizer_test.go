package prefs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
)

func newTestPersonalizer(t *testing.T) (*Personalizer, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p, err := NewPersonalizer(store, logger)
	if err != nil {
		t.Fatalf("NewPersonalizer: %v", err)
	}
	return p, store
}

func TestRegistryIsValid(t *testing.T) {
	if err := validateRegistry(Registry); err != nil {
		t.Fatalf("registry: %v", err)
	}
}

func TestValidateRegistryRejectsDuplicates(t *testing.T) {
	dup := []Setting{
		{ID: "a", Key: "ka", CSSVar: "--a"},
		{ID: "a", Key: "kb", CSSVar: "--b"},
	}
	if err := validateRegistry(dup); err == nil {
		t.Fatal("expected duplicate id to be rejected")
	}
}

func TestApplyUnknownSetting(t *testing.T) {
	p, _ := newTestPersonalizer(t)
	if _, err := p.Apply(context.Background(), "no-such-setting", "x"); !errors.Is(err, ErrUnknownSetting) {
		t.Fatalf("expected ErrUnknownSetting, got %v", err)
	}
}

func TestApplySliderAppendsSuffix(t *testing.T) {
	p, _ := newTestPersonalizer(t)
	state, err := p.Apply(context.Background(), "font-size-slider", "14")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got := state.Vars["--font-size"]; got != "14px" {
		t.Fatalf("expected 14px, got %q", got)
	}
	if got := state.Controls["font-size-slider"]; got != "14" {
		t.Fatalf("raw control value should stay unsuffixed, got %q", got)
	}
}

func TestApplyDarkSidebarDerivesLightText(t *testing.T) {
	p, _ := newTestPersonalizer(t)
	state, err := p.Apply(context.Background(), "sidebar-background-color", "#102030")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got := state.Vars["--sidebar-font-color"]; got != "#efdfcf" {
		t.Fatalf("expected inverted font color #efdfcf, got %q", got)
	}
	if got := state.Vars["--sidebar-text-shadow"]; got != ShadowBlack {
		t.Fatalf("dark background should pick the black shadow preset, got %q", got)
	}
}

func TestApplyLightPageDerivesWhiteShadow(t *testing.T) {
	p, _ := newTestPersonalizer(t)
	state, err := p.Apply(context.Background(), "page-background-color", "#fafafa")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got := state.Vars["--page-text-shadow"]; got != ShadowWhite {
		t.Fatalf("light background should pick the white shadow preset, got %q", got)
	}
}

func TestSnapshotSkipsMalformedColor(t *testing.T) {
	p, store := newTestPersonalizer(t)
	ctx := context.Background()
	if err := store.Set(ctx, "sidebarBackgroundColor", "teal"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	state, err := p.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if _, ok := state.Vars["--sidebar-font-color"]; ok {
		t.Fatal("malformed color must not yield a derived font color")
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	p, _ := newTestPersonalizer(t)
	ctx := context.Background()
	if _, err := p.Apply(ctx, "main-background-color", "#336699"); err != nil {
		t.Fatalf("apply: %v", err)
	}
	data, err := p.Export(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}

	other, otherStore := newTestPersonalizer(t)
	if err := other.Import(ctx, data); err != nil {
		t.Fatalf("import: %v", err)
	}
	val, ok, err := otherStore.Get(ctx, "mainBackgroundColor")
	if err != nil || !ok {
		t.Fatalf("imported value missing: ok=%v err=%v", ok, err)
	}
	if val != "#336699" {
		t.Fatalf("expected #336699, got %q", val)
	}
}

func TestImportRejectsUnknownKeyAtomically(t *testing.T) {
	p, store := newTestPersonalizer(t)
	ctx := context.Background()
	payload := []byte(`{"mainBackgroundColor": "#111111", "bogusKey": "1"}`)
	if err := p.Import(ctx, payload); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("expected ErrUnknownKey, got %v", err)
	}
	if _, ok, _ := store.Get(ctx, "mainBackgroundColor"); ok {
		t.Fatal("nothing may be written when the payload carries an unknown key")
	}
}

func TestImportAcceptsSectionFormatKeys(t *testing.T) {
	p, store := newTestPersonalizer(t)
	ctx := context.Background()
	payload := []byte(`{"habilidades-format": "list-view", "experiencia-format": "grid", "idiomaSeleccionado": "en"}`)
	if err := p.Import(ctx, payload); err != nil {
		t.Fatalf("import: %v", err)
	}
	if val, ok, _ := store.Get(ctx, "habilidades-format"); !ok || val != "list-view" {
		t.Fatalf("section format key not imported, got %q ok=%v", val, ok)
	}
	if val, ok, _ := store.Get(ctx, "experiencia-format"); !ok || val != "grid" {
		t.Fatalf("main section format key not imported, got %q ok=%v", val, ok)
	}
}

func TestResetStyleKeepsLanguage(t *testing.T) {
	p, store := newTestPersonalizer(t)
	ctx := context.Background()
	seed := [][2]string{
		{KeyLanguage, "en"},
		{KeySidebarView, "grid-view"},
		{"mainBackgroundColor", "#111111"},
		{"habilidades-format", "compact-view"},
		{"experiencia-format", "grid"},
		{KeyMainFormat, "grid"},
		{KeyPhotoScale, "1.5"},
	}
	for _, kv := range seed {
		if err := store.Set(ctx, kv[0], kv[1]); err != nil {
			t.Fatalf("seed %s: %v", kv[0], err)
		}
	}

	if err := p.Reset(ctx, ScopeStyle); err != nil {
		t.Fatalf("reset: %v", err)
	}
	for _, cleared := range []string{KeySidebarView, "mainBackgroundColor", "habilidades-format", "experiencia-format", KeyMainFormat} {
		if _, ok, _ := store.Get(ctx, cleared); ok {
			t.Fatalf("%s should be cleared by the style reset", cleared)
		}
	}
	if val, ok, _ := store.Get(ctx, KeyLanguage); !ok || val != "en" {
		t.Fatal("language selection must survive a style reset")
	}
	if _, ok, _ := store.Get(ctx, KeyPhotoScale); !ok {
		t.Fatal("photo transform must survive a style reset")
	}
}

func TestResetPhotoClearsTransformKeys(t *testing.T) {
	p, store := newTestPersonalizer(t)
	ctx := context.Background()
	for _, k := range []string{KeyPhotoOffsetX, KeyPhotoOffsetY, KeyPhotoScale} {
		if err := store.Set(ctx, k, "1"); err != nil {
			t.Fatalf("seed %s: %v", k, err)
		}
	}
	if err := p.Reset(ctx, ScopePhoto); err != nil {
		t.Fatalf("reset: %v", err)
	}
	keys, err := store.Keys(ctx)
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(keys) != 0 {
		t.Fatalf("expected empty store, got %v", keys)
	}
}

func TestResetEverythingClearsAll(t *testing.T) {
	p, store := newTestPersonalizer(t)
	ctx := context.Background()
	if err := store.Set(ctx, KeyLanguage, "es"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := store.Set(ctx, "fontSize", "12"); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := p.Reset(ctx, ScopeEverything); err != nil {
		t.Fatalf("reset: %v", err)
	}
	keys, err := store.Keys(ctx)
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(keys) != 0 {
		t.Fatalf("expected empty store, got %v", keys)
	}
}
