// Package translator localizes user-facing messages from embedded TOML bundles.
package translator

import (
	"embed"
	"io/fs"
	"path"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

const (
	LanguageEn = "en"
	LanguageFr = "fr"
)

//go:embed translations/*.toml
var translations embed.FS

type Translator struct {
	bundle *i18n.Bundle
	logger *zap.Logger
}

// New loads every embedded translation file. English is the fallback language.
func New(logger *zap.Logger) (*Translator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	files, err := fs.ReadDir(translations, "translations")
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		if _, err := bundle.LoadMessageFileFS(translations, path.Join("translations", f.Name())); err != nil {
			return nil, err
		}
	}
	return &Translator{bundle: bundle, logger: logger}, nil
}

// Localize returns the message for key in the best language matching
// acceptLanguage, or fallback when the key is unknown.
func (t *Translator) Localize(acceptLanguage, key, fallback string) string {
	if t == nil || key == "" {
		return fallback
	}
	l := i18n.NewLocalizer(t.bundle, acceptLanguage, LanguageEn)
	msg, err := l.Localize(&i18n.LocalizeConfig{MessageID: key})
	if err != nil {
		t.logger.Debug("translation not found", zap.String("lang", acceptLanguage), zap.String("message_id", key), zap.Error(err))
		return fallback
	}
	return msg
}
