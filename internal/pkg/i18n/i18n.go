package i18n

import (
	"fmt"

	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// Translator renders operator-facing messages in the language negotiated
// from an Accept-Language header. English is the fallback.
type Translator struct {
	bundle *goi18n.Bundle
}

func NewTranslator() (*Translator, error) {
	bundle := goi18n.NewBundle(language.English)
	if err := bundle.AddMessages(language.English, english...); err != nil {
		return nil, fmt.Errorf("load en messages: %w", err)
	}
	if err := bundle.AddMessages(language.BrazilianPortuguese, portuguese...); err != nil {
		return nil, fmt.Errorf("load pt-BR messages: %w", err)
	}
	return &Translator{bundle: bundle}, nil
}

// Message localizes id. Unknown ids come back unchanged so a missing
// translation never hides the reason code.
func (t *Translator) Message(acceptLanguage, id string, data map[string]any) string {
	loc := goi18n.NewLocalizer(t.bundle, acceptLanguage)
	msg, err := loc.Localize(&goi18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
	})
	if err != nil {
		return id
	}
	return msg
}
