package cv

import "fmt"

// flagCountry maps UI language codes onto the country whose flag represents
// them in the language switcher.
var flagCountry = map[string]string{
	"es": "es",
	"en": "us",
	"de": "de",
	"fr": "fr",
	"it": "it",
	"pt": "pt",
	"zh": "cn",
	"ja": "jp",
	"ru": "ru",
}

// languageNames holds native display names for the switcher.
var languageNames = map[string]string{
	"es": "Español",
	"en": "English",
	"de": "Deutsch",
	"fr": "Français",
	"it": "Italiano",
	"pt": "Português",
	"zh": "中文",
	"ja": "日本語",
	"ru": "Русский",
}

// FlagURL returns the flagcdn image URL for a language or country code, and
// false when no flag is known for it.
func FlagURL(code string) (string, bool) {
	country, ok := flagCountry[code]
	if !ok {
		// Language items may carry a country code directly.
		if len(code) == 2 {
			country = code
		} else {
			return "", false
		}
	}
	return fmt.Sprintf("https://flagcdn.com/w40/%s.png", country), true
}

// LanguageName returns the native display name for a language code, falling
// back to the code itself.
func LanguageName(code string) string {
	if name, ok := languageNames[code]; ok {
		return name
	}
	return code
}
