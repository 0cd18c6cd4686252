package lyrics

import "slices"

const DefaultLanguage = "jp"

// Languages in the order the language picker cycles through them.
var Languages = []string{"jp", "es", "en"}

var languageNames = map[string]string{
	"jp": "日本語",
	"es": "Español",
	"en": "English",
}

func LanguageName(lang string) string {
	if name, ok := languageNames[lang]; ok {
		return name
	}
	return lang
}

func IsLanguage(lang string) bool {
	return slices.Contains(Languages, lang)
}

// NextLanguage cycles jp, es, en and back. Unknown codes restart the cycle.
func NextLanguage(lang string) string {
	idx := slices.Index(Languages, lang)
	return Languages[(idx+1)%len(Languages)]
}
