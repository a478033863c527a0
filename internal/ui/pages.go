package ui

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"sort"
)

var (
	//go:embed assets/player.html
	playerPage []byte

	//go:embed assets/manual.html.tmpl
	manualSource string

	manualTemplate = template.Must(template.New("manual").Parse(manualSource))
)

type languageOption struct {
	Code, Name string
	Current    bool
}

type manualData struct {
	Lang      string
	T         map[string]string
	Languages []languageOption
}

// PlayerPage returns the player HTML
func PlayerPage() []byte {
	return playerPage
}

// ManualPage renders the manual in lang, falling back to English
func ManualPage(lang string) ([]byte, error) {
	l := NewLocalization()
	l.SetLanguage(lang)

	var langs []languageOption
	for code, name := range l.GetAvailableLanguages() {
		langs = append(langs, languageOption{Code: code, Name: name, Current: code == l.GetCurrentLanguage()})
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i].Code < langs[j].Code })

	var buf bytes.Buffer
	err := manualTemplate.Execute(&buf, manualData{
		Lang:      l.GetCurrentLanguage(),
		T:         l.Texts(),
		Languages: langs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render manual: %w", err)
	}
	return buf.Bytes(), nil
}
