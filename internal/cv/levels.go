package cv

// Glyph row widths per section kind.
const (
	SkillGlyphs    = 5
	LanguageGlyphs = 6
)

// LevelScale maps CEFR tokens onto filled glyph counts. Unknown tokens map
// to zero, which renders an all-empty row rather than failing.
var LevelScale = map[string]int{
	"A1": 1,
	"A2": 2,
	"B1": 3,
	"B2": 4,
	"C1": 5,
	"C2": 6,
}
