package prefs

import "fmt"

// Kind classifies a style setting's control.
type Kind string

const (
	KindColor  Kind = "color"
	KindSelect Kind = "select"
	KindSlider Kind = "slider"
)

// Setting declares one configurable style knob. ID is the public identifier
// used by the API, CSSVar the custom property written into the page, Key the
// storage key, and Suffix the unit appended to raw slider values.
type Setting struct {
	ID     string
	Kind   Kind
	CSSVar string
	Key    string
	Suffix string
}

// Registry lists every style setting. IDs, CSS variables and storage keys
// must each be unique; NewPersonalizer refuses a registry that is not.
var Registry = []Setting{
	{ID: "main-background-color", Kind: KindColor, CSSVar: "--main-background-color", Key: "mainBackgroundColor"},
	{ID: "sidebar-background-color", Kind: KindColor, CSSVar: "--sidebar-background-color", Key: "sidebarBackgroundColor"},
	{ID: "title-background-color", Kind: KindColor, CSSVar: "--title-background-color", Key: "titleBackgroundColor"},
	{ID: "page-background-color", Kind: KindColor, CSSVar: "--page-background-color", Key: "pageBackgroundColor"},
	{ID: "main-font-color", Kind: KindColor, CSSVar: "--main-font-color", Key: "mainFontColor"},
	{ID: "sidebar-font-color", Kind: KindColor, CSSVar: "--sidebar-font-color", Key: "sidebarFontColor"},
	{ID: "title-font-color", Kind: KindColor, CSSVar: "--title-font-color", Key: "titleFontColor"},
	{ID: "font-family-selector", Kind: KindSelect, CSSVar: "--font-family", Key: "fontFamily"},
	{ID: "font-size-slider", Kind: KindSlider, CSSVar: "--font-size", Key: "fontSize", Suffix: "px"},
	{ID: "main-padding-slider", Kind: KindSlider, CSSVar: "--main-padding", Key: "mainPadding", Suffix: "vw"},
	{ID: "sidebar-padding-slider", Kind: KindSlider, CSSVar: "--sidebar-padding", Key: "sidebarPadding", Suffix: "vw"},
	{ID: "card-size-slider", Kind: KindSlider, CSSVar: "--card-size", Key: "cardSize", Suffix: "px"},
	{ID: "card-gap-slider", Kind: KindSlider, CSSVar: "--card-gap", Key: "cardGap", Suffix: "vw"},
	{ID: "view-selector-sidebar", Kind: KindSelect, Key: "sidebarView"},
	{ID: "foto-size-slider", Kind: KindSlider, CSSVar: "--foto-size", Key: "fotoSize", Suffix: "%"},
	{ID: "foto-radius-slider", Kind: KindSlider, CSSVar: "--foto-radius", Key: "fotoRadius", Suffix: "%"},
	{ID: "foto-aspect-selector", Kind: KindSelect, CSSVar: "--foto-aspect", Key: "fotoAspect"},
}

// SettingByID looks up a setting by its public identifier.
func SettingByID(id string) (Setting, bool) {
	for _, s := range Registry {
		if s.ID == id {
			return s, true
		}
	}
	return Setting{}, false
}

// validateRegistry rejects duplicate IDs, CSS variables or storage keys.
func validateRegistry(settings []Setting) error {
	ids := make(map[string]struct{}, len(settings))
	vars := make(map[string]struct{}, len(settings))
	keys := make(map[string]struct{}, len(settings))
	for _, s := range settings {
		if _, dup := ids[s.ID]; dup {
			return fmt.Errorf("duplicate setting id %q", s.ID)
		}
		ids[s.ID] = struct{}{}
		if s.CSSVar != "" {
			if _, dup := vars[s.CSSVar]; dup {
				return fmt.Errorf("duplicate css var %q", s.CSSVar)
			}
			vars[s.CSSVar] = struct{}{}
		}
		if _, dup := keys[s.Key]; dup {
			return fmt.Errorf("duplicate storage key %q", s.Key)
		}
		keys[s.Key] = struct{}{}
	}
	return nil
}
