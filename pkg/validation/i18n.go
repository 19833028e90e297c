package validation

import "strings"

// Translator resolves message keys for a locale. It matches the contract of
// go-i18n style translators so callers can plug an existing catalog in.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// TranslatorFunc adapts a function to Translator.
type TranslatorFunc func(locale, key string, args ...any) (string, error)

// Translate implements Translator.
func (fn TranslatorFunc) Translate(locale, key string, args ...any) (string, error) {
	return fn(locale, key, args...)
}

// Option configures message resolution.
type Option func(*config)

type config struct {
	translator Translator
	locale     string
}

// WithTranslator localizes rule messages through t. Failed or empty
// translations fall back to the rule's default message.
func WithTranslator(t Translator, locale string) Option {
	return func(c *config) {
		c.translator = t
		c.locale = locale
	}
}

func newConfig(opts []Option) config {
	var cfg config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

func (c config) message(rule Rule) string {
	fallback := rule.Message
	if strings.TrimSpace(fallback) == "" {
		fallback = rule.Key
	}
	if c.translator == nil || strings.TrimSpace(rule.Key) == "" {
		return fallback
	}
	result, err := c.translator.Translate(c.locale, rule.Key, rule.Args...)
	if err != nil || strings.TrimSpace(result) == "" {
		return fallback
	}
	return result
}
