package prefs

import "cvstudio/internal/cv"

// Well-known preference keys outside the style registry.
const (
	KeyLanguage     = "idiomaSeleccionado"
	KeySidebarView  = "sidebarView"
	KeyMainFormat   = "maincardFormat"
	KeyTheme        = "selectedTheme"
	KeyGlyph        = "selectedItemType"
	KeyOpenSections = "openSections"
	KeyHiddenWidget = "hiddenSections"
	KeySidebarWidth = "sidebarWidth"
	KeyPrintNoBreak = "printNoBreak"

	KeyPhotoOffsetX = "fotoOffsetX"
	KeyPhotoOffsetY = "fotoOffsetY"
	KeyPhotoScale   = "fotoScale"
)

// SectionFormatKey returns the per-section layout override key.
func SectionFormatKey(section string) string {
	return section + "-format"
}

// LayoutKey reports whether key is one of the free-form layout preferences
// the API exposes individually, outside the style registry.
func LayoutKey(key string) bool {
	switch key {
	case KeyTheme, KeyOpenSections, KeyHiddenWidget, KeySidebarWidth, KeyPrintNoBreak:
		return true
	}
	return false
}

// ResetScope names a group of keys a reset may clear. Callers pick the scope
// explicitly; nothing is cleared by implication.
type ResetScope int

const (
	// ScopeStyle clears the style registry values plus derived layout state
	// (views, glyph choice, theme, sidebar width).
	ScopeStyle ResetScope = iota
	// ScopePhoto clears the portrait offsets and zoom.
	ScopePhoto
	// ScopeEverything clears all stored preferences including the language
	// selection.
	ScopeEverything
)

// Keys expands a scope into the concrete keys it covers. ScopeEverything
// returns nil, meaning "whatever the store currently holds".
func (s ResetScope) Keys() []string {
	switch s {
	case ScopeStyle:
		keys := []string{
			KeySidebarView,
			KeyMainFormat,
			KeyTheme,
			KeyGlyph,
			KeyOpenSections,
			KeyHiddenWidget,
			KeySidebarWidth,
			KeyPrintNoBreak,
		}
		for _, s := range cv.SidebarSections {
			keys = append(keys, SectionFormatKey(s.Name))
		}
		for _, s := range cv.MainSections {
			keys = append(keys, SectionFormatKey(s.Name))
		}
		for _, setting := range Registry {
			keys = append(keys, setting.Key)
		}
		return keys
	case ScopePhoto:
		return []string{KeyPhotoOffsetX, KeyPhotoOffsetY, KeyPhotoScale}
	}
	return nil
}
