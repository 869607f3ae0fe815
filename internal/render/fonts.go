package render

// Font describes a selectable page font. Link is empty for system fonts and
// carries the stylesheet URL for webfonts, which the exported page embeds.
type Font struct {
	Name  string
	Stack string
	Link  string
}

// Fonts lists the selectable page fonts.
var Fonts = []Font{
	{Name: "Arial", Stack: `Arial, Helvetica, sans-serif`},
	{Name: "Verdana", Stack: `Verdana, Geneva, sans-serif`},
	{Name: "Georgia", Stack: `Georgia, serif`},
	{Name: "Times New Roman", Stack: `"Times New Roman", Times, serif`},
	{Name: "Courier New", Stack: `"Courier New", Courier, monospace`},
	{Name: "Roboto", Stack: `"Roboto", sans-serif`, Link: "https://fonts.googleapis.com/css2?family=Roboto:wght@400;500;700&display=swap"},
	{Name: "Lato", Stack: `"Lato", sans-serif`, Link: "https://fonts.googleapis.com/css2?family=Lato:wght@400;700&display=swap"},
	{Name: "Montserrat", Stack: `"Montserrat", sans-serif`, Link: "https://fonts.googleapis.com/css2?family=Montserrat:wght@400;600;700&display=swap"},
	{Name: "Open Sans", Stack: `"Open Sans", sans-serif`, Link: "https://fonts.googleapis.com/css2?family=Open+Sans:wght@400;600;700&display=swap"},
	{Name: "Poppins", Stack: `"Poppins", sans-serif`, Link: "https://fonts.googleapis.com/css2?family=Poppins:wght@400;500;600&display=swap"},
}

// LookupFont resolves a font by name.
func LookupFont(name string) (Font, bool) {
	for _, f := range Fonts {
		if f.Name == name {
			return f, true
		}
	}
	return Font{}, false
}

// DefaultFont is the page font when a record names none.
func DefaultFont() Font {
	return Fonts[0]
}
