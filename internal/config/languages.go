package config

import "strings"

// Language pairs a recognition/translation language code with a display name.
type Language struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

// Base returns the language code the translation API expects: the region
// suffix is stripped ("en-US" -> "en") except for Chinese, where the
// variants are distinct translation targets.
func (l Language) Base() string {
	if i := strings.Index(l.Code, "-"); i > 0 {
		base := l.Code[:i]
		// Chinese variants are distinct translation targets.
		if base == "zh" {
			return l.Code
		}
		return base
	}
	return l.Code
}

// SourceLanguages are the languages offered for the spoken input.
var SourceLanguages = []Language{
	{"en-US", "English (US)"},
	{"en-GB", "English (UK)"},
	{"pt-BR", "Portuguese (Brazil)"},
	{"pt-PT", "Portuguese (Portugal)"},
	{"es-ES", "Spanish (Spain)"},
	{"es-MX", "Spanish (Latin America)"},
	{"fr-FR", "French"},
	{"de-DE", "German"},
	{"it-IT", "Italian"},
	{"ko-KR", "Korean"},
	{"zh-CN", "Chinese (Mandarin)"},
	{"ja-JP", "Japanese"},
}

// TargetLanguages are the languages offered for translation output.
var TargetLanguages = []Language{
	{"es-ES", "Spanish (Spain)"},
	{"es-MX", "Spanish (Latin America)"},
	{"pt-BR", "Portuguese (Brazil)"},
	{"pt-PT", "Portuguese (Portugal)"},
	{"fr-FR", "French"},
	{"de-DE", "German"},
	{"it-IT", "Italian"},
	{"en-US", "English (US)"},
	{"en-GB", "English (UK)"},
	{"ko-KR", "Korean"},
	{"zh-CN", "Chinese (Simplified)"},
	{"zh-TW", "Chinese (Traditional)"},
	{"ja-JP", "Japanese"},
	{"ar", "Arabic"},
	{"hi", "Hindi"},
	{"ru", "Russian"},
}

// DefaultBoostPhrases are the domain hints sent to the recognizer when the
// config file does not override them.
var DefaultBoostPhrases = []string{
	"expository sermon", "verse by verse", "Biblical exposition",
	"Reformed theology", "let us turn to", "open your Bibles",
	"the text says", "the passage teaches", "justification by faith",
	"grace", "salvation", "redemption", "Scripture", "Gospel",
}
