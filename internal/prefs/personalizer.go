package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"cvstudio/internal/cv"
)

// ErrUnknownSetting is returned when Apply is called with an identifier the
// registry does not carry.
var ErrUnknownSetting = errors.New("unknown style setting")

// ErrUnknownKey is returned when an imported snapshot carries a key this
// application never writes.
var ErrUnknownKey = errors.New("unknown preference key")

// StyleState is the resolved style of the page: CSS custom properties (with
// derived contrast values recomputed) plus the raw control values by setting
// ID.
type StyleState struct {
	Vars     map[string]string `json:"vars"`
	Controls map[string]string `json:"controls"`
}

// Personalizer applies style settings, keeps them persistent and derives
// contrast colors from the two background settings that drive recoloring.
type Personalizer struct {
	store  Store
	logger *slog.Logger
}

// NewPersonalizer wires a Personalizer over a preference store. It fails if
// the style registry carries duplicate identifiers.
func NewPersonalizer(store Store, logger *slog.Logger) (*Personalizer, error) {
	if err := validateRegistry(Registry); err != nil {
		return nil, fmt.Errorf("style registry: %w", err)
	}
	return &Personalizer{store: store, logger: logger}, nil
}

// Apply persists a raw setting value and returns the style state that
// results, including any derived contrast variables.
func (p *Personalizer) Apply(ctx context.Context, settingID, value string) (StyleState, error) {
	setting, ok := SettingByID(settingID)
	if !ok {
		return StyleState{}, fmt.Errorf("%w: %s", ErrUnknownSetting, settingID)
	}

	if err := p.store.Set(ctx, setting.Key, value); err != nil {
		return StyleState{}, err
	}
	return p.Snapshot(ctx)
}

// Snapshot resolves the current style state from the store. Derived colors
// are recomputed every time rather than persisted, so a stale derivation can
// never survive a background change.
func (p *Personalizer) Snapshot(ctx context.Context) (StyleState, error) {
	stored, err := p.store.All(ctx)
	if err != nil {
		return StyleState{}, err
	}

	state := StyleState{
		Vars:     make(map[string]string),
		Controls: make(map[string]string),
	}
	for _, setting := range Registry {
		raw, ok := stored[setting.Key]
		if !ok {
			continue
		}
		state.Controls[setting.ID] = raw
		if setting.CSSVar != "" {
			state.Vars[setting.CSSVar] = raw + setting.Suffix
		}
	}

	DeriveContrast(state.Vars, stored, p.logger)
	return state, nil
}

// DeriveContrast fills in the contrast variables that follow from the
// sidebar and page backgrounds. Every renderer of the stored style runs it,
// so the exported PDF carries the same derived colors as the live page. A
// malformed stored color is logged and skipped.
func DeriveContrast(vars map[string]string, stored map[string]string, logger *slog.Logger) {
	rules := []struct {
		sourceKey string
		fontVar   string
		shadowVar string
	}{
		{sourceKey: "sidebarBackgroundColor", fontVar: "--sidebar-font-color", shadowVar: "--sidebar-text-shadow"},
		{sourceKey: "pageBackgroundColor", fontVar: "--page-font-color", shadowVar: "--page-text-shadow"},
	}

	for _, rule := range rules {
		bg, ok := stored[rule.sourceKey]
		if !ok {
			continue
		}
		inverted, err := InvertColor(bg)
		if err != nil {
			logger.Warn("skip contrast derivation", slog.String("key", rule.sourceKey), slog.String("error", err.Error()))
			continue
		}
		light, err := IsLightColor(bg)
		if err != nil {
			logger.Warn("skip contrast derivation", slog.String("key", rule.sourceKey), slog.String("error", err.Error()))
			continue
		}
		vars[rule.fontVar] = inverted
		if light {
			vars[rule.shadowVar] = ShadowWhite
		} else {
			vars[rule.shadowVar] = ShadowBlack
		}
	}
}

// Export returns the complete preference snapshot as JSON, covering style
// values, layout choices, the language selection and the photo transform.
func (p *Personalizer) Export(ctx context.Context) ([]byte, error) {
	stored, err := p.store.All(ctx)
	if err != nil {
		return nil, err
	}
	out, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode preferences: %w", err)
	}
	return out, nil
}

// Import replaces preferences from an exported snapshot. The whole payload is
// validated before anything is written; on any unknown key nothing changes.
func (p *Personalizer) Import(ctx context.Context, data []byte) error {
	var snapshot map[string]string
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return fmt.Errorf("decode preferences: %w", err)
	}

	known := knownKeys()
	for key := range snapshot {
		if _, ok := known[key]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownKey, key)
		}
	}

	for key, value := range snapshot {
		if err := p.store.Set(ctx, key, value); err != nil {
			return err
		}
	}
	return nil
}

// Reset clears the preferences a scope covers. ScopeEverything clears the
// store wholesale.
func (p *Personalizer) Reset(ctx context.Context, scope ResetScope) error {
	keys := scope.Keys()
	if keys == nil {
		stored, err := p.store.Keys(ctx)
		if err != nil {
			return err
		}
		keys = stored
	}
	return p.store.Delete(ctx, keys...)
}

func knownKeys() map[string]struct{} {
	known := map[string]struct{}{
		KeyLanguage:     {},
		KeySidebarView:  {},
		KeyMainFormat:   {},
		KeyTheme:        {},
		KeyGlyph:        {},
		KeyOpenSections: {},
		KeyHiddenWidget: {},
		KeySidebarWidth: {},
		KeyPrintNoBreak: {},
		KeyPhotoOffsetX: {},
		KeyPhotoOffsetY: {},
		KeyPhotoScale:   {},
	}
	for _, setting := range Registry {
		known[setting.Key] = struct{}{}
	}
	for _, section := range cv.SidebarSections {
		known[SectionFormatKey(section.Name)] = struct{}{}
	}
	for _, section := range cv.MainSections {
		known[SectionFormatKey(section.Name)] = struct{}{}
	}
	return known
}
