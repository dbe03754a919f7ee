package localization

import (
	"embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed translations/*.yaml
var translationsFS embed.FS

const defaultLanguage = "en"

var languages = []string{"en", "ru"}

type Service struct {
	translations map[string]map[string]interface{}
}

func NewService() (*Service, error) {
	s := &Service{
		translations: make(map[string]map[string]interface{}),
	}

	for _, lang := range languages {
		data, err := translationsFS.ReadFile(fmt.Sprintf("translations/%s.yaml", lang))
		if err != nil {
			return nil, fmt.Errorf("read %s translations: %w", lang, err)
		}

		var translations map[string]interface{}
		if err := yaml.Unmarshal(data, &translations); err != nil {
			return nil, fmt.Errorf("parse %s translations: %w", lang, err)
		}

		s.translations[lang] = translations
	}

	return s, nil
}

// Get looks up a dotted key ("cutoffs.errors.invalid_range") and fills
// {{placeholders}} from params. Unknown keys are returned as is.
func (s *Service) Get(lang, key string, params map[string]interface{}) string {
	langTranslations, ok := s.translations[lang]
	if !ok {
		langTranslations = s.translations[defaultLanguage]
	}

	var current interface{} = langTranslations
	for _, part := range strings.Split(key, ".") {
		m, ok := current.(map[string]interface{})
		if !ok {
			return key
		}
		current = m[part]
	}

	text, ok := current.(string)
	if !ok {
		return key
	}

	return replacePlaceholders(text, params)
}

func replacePlaceholders(text string, params map[string]interface{}) string {
	for key, value := range params {
		text = strings.ReplaceAll(text, "{{"+key+"}}", fmt.Sprint(value))
	}
	return text
}
