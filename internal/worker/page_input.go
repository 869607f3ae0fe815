package worker

import (
	"log/slog"
	"strconv"
	"strings"

	"cvstudio/internal/cv"
	"cvstudio/internal/prefs"
	"cvstudio/internal/render"
)

// buildPageInput resolves a preference snapshot into the render input for
// one language. Unusable stored values fall back to defaults; the export
// must come out even when preferences have gone stale.
func buildPageInput(rec cv.Record, lang string, snapshot map[string]string, photoSrc string, logger *slog.Logger) render.PageInput {
	input := render.PageInput{
		Record:      rec,
		Lang:        lang,
		SidebarView: cv.ViewGrid,
		MainFormat:  cv.FormatList,
		GlyphKey:    render.GlyphDefault,
		PhotoSrc:    photoSrc,
		PhotoScale:  1,
		Vars:        map[string]string{},
	}

	if v, ok := snapshot[prefs.KeySidebarView]; ok && cv.ValidView(cv.View(v)) {
		input.SidebarView = cv.View(v)
	}
	if g, ok := snapshot[prefs.KeyGlyph]; ok && render.ValidGlyph(g) {
		input.GlyphKey = g
	}

	input.SectionViews = map[string]cv.View{}
	for _, sec := range cv.SidebarSections {
		if v, ok := snapshot[prefs.SectionFormatKey(sec.Name)]; ok && cv.ValidView(cv.View(v)) {
			input.SectionViews[sec.Name] = cv.View(v)
		}
	}

	if f, ok := snapshot[prefs.KeyMainFormat]; ok && cv.ValidMainFormat(cv.MainFormat(f)) {
		input.MainFormat = cv.MainFormat(f)
	}
	input.SectionFormats = map[string]cv.MainFormat{}
	for _, sec := range cv.MainSections {
		if f, ok := snapshot[prefs.SectionFormatKey(sec.Name)]; ok && cv.ValidMainFormat(cv.MainFormat(f)) {
			input.SectionFormats[sec.Name] = cv.MainFormat(f)
		}
	}

	for _, setting := range prefs.Registry {
		if setting.CSSVar == "" {
			continue
		}
		if raw, ok := snapshot[setting.Key]; ok {
			input.Vars[setting.CSSVar] = raw + setting.Suffix
		}
	}
	if width, ok := snapshot[prefs.KeySidebarWidth]; ok {
		input.Vars["--sidebar-width"] = width
	}
	prefs.DeriveContrast(input.Vars, snapshot, logger)

	font := render.DefaultFont()
	if name, ok := snapshot["fontFamily"]; ok {
		if f, found := render.LookupFont(name); found {
			font = f
		}
	} else if rec.Fuente != "" {
		if f, found := render.LookupFont(rec.Fuente); found {
			font = f
		}
	}
	input.Font = font

	if x, ok := parseFloatPref(snapshot, prefs.KeyPhotoOffsetX); ok {
		input.PhotoOffset[0] = x
	}
	if y, ok := parseFloatPref(snapshot, prefs.KeyPhotoOffsetY); ok {
		input.PhotoOffset[1] = y
	}
	if s, ok := parseFloatPref(snapshot, prefs.KeyPhotoScale); ok && s > 0 {
		input.PhotoScale = s
	}

	input.HiddenSections = map[string]bool{}
	if hidden, ok := snapshot[prefs.KeyHiddenWidget]; ok {
		for _, name := range strings.Split(hidden, ",") {
			if name = strings.TrimSpace(name); name != "" {
				input.HiddenSections[name] = true
			}
		}
	}

	// The timeline is a collapsible section; it only makes the export when
	// the page has it open.
	if open, ok := snapshot[prefs.KeyOpenSections]; ok {
		for _, name := range strings.Split(open, ",") {
			if strings.TrimSpace(name) == "timeline" {
				input.IncludeTimeline = true
				break
			}
		}
	}

	return input
}

func parseFloatPref(snapshot map[string]string, key string) (float64, bool) {
	raw, ok := snapshot[key]
	if !ok {
		return 0, false
	}
	val, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return val, true
}
