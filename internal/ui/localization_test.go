package ui

import "testing"

func TestLocalizationFallbacks(t *testing.T) {
	l := NewLocalization()
	if got := l.GetCurrentLanguage(); got != "en" {
		t.Errorf("default language = %q, want en", got)
	}

	l.SetLanguage("xx")
	if got := l.GetCurrentLanguage(); got != "en" {
		t.Errorf("unknown language switched to %q", got)
	}

	l.SetLanguage("ru")
	if got := l.GetText(KeyLanguage); got != "Язык" {
		t.Errorf("ru language label = %q", got)
	}
	if got := l.GetText("no_such_key"); got != "no_such_key" {
		t.Errorf("missing key = %q, want key itself", got)
	}
}

func TestEveryLanguageHasEveryKey(t *testing.T) {
	l := NewLocalization()
	for lang := range l.GetAvailableLanguages() {
		texts, ok := l.texts[lang]
		if !ok {
			t.Errorf("no texts for %s", lang)
			continue
		}
		for key := range l.texts[DefaultLanguage] {
			if texts[key] == "" {
				t.Errorf("%s is missing %s", lang, key)
			}
		}
	}
}
