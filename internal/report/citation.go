package report

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/ytget/mucache/internal/model"
	"github.com/ytget/mucache/internal/platform"
)

// Citation styles, in the order they are rendered
const (
	StyleAPA       = "APA"
	StyleMLA       = "MLA"
	StyleChicago   = "Chicago"
	StyleHarvard   = "Harvard"
	StyleIEEE      = "IEEE"
	StyleVancouver = "Vancouver"
	StyleBibTeX    = "BibTeX"
)

// Citation defaults
const (
	UnknownCreator  = "Unknown Creator"
	UntitledVideo   = "Untitled Video"
	ArchivePlatform = "Internet Archive"
	UnknownPlatform = "Unknown Platform"
	dateLayout      = "2006-01-02"
	titleFileMax    = 50
)

var (
	unsafeTitleChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	bibKeyChars      = regexp.MustCompile(`[^a-zA-Z0-9]`)

	inputDateLayouts = []string{"2006-01-02", "2006/01/02", "01/02/2006", "02/01/2006", "2006"}
	isoDateLayouts   = []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02T15:04:05", "2006-01-02T15:04"}
)

// CitationData is the normalized input to every citation style. Fields can be
// overridden per request by key.
type CitationData struct {
	Title             string `json:"title" mapstructure:"title"`
	Creator           string `json:"creator" mapstructure:"creator"`
	OriginalDate      string `json:"original_date" mapstructure:"original_date"`
	ArchiveDate       string `json:"archive_date" mapstructure:"archive_date"`
	AccessDate        string `json:"access_date" mapstructure:"access_date"`
	ArchiveURL        string `json:"archive_url" mapstructure:"archive_url"`
	OriginalURL       string `json:"original_url" mapstructure:"original_url"`
	Runtime           string `json:"runtime" mapstructure:"runtime"`
	Description       string `json:"description" mapstructure:"description"`
	Language          string `json:"language" mapstructure:"language"`
	ArchiveIdentifier string `json:"archive_identifier" mapstructure:"archive_identifier"`
	SourceType        string `json:"source_type" mapstructure:"source_type"`
	Platform          string `json:"platform" mapstructure:"platform"`
	Collection        string `json:"collection" mapstructure:"collection"`
	Subject           string `json:"subject" mapstructure:"subject"`
	Uploader          string `json:"uploader" mapstructure:"uploader"`
	OriginalPlatform  string `json:"original_platform" mapstructure:"original_platform"`
}

// CitationResult is returned by Citations
type CitationResult struct {
	Success      bool              `json:"success"`
	Citations    map[string]string `json:"citations"`
	CitationData CitationData      `json:"citation_data"`
	FilePath     string            `json:"file_path"`
}

// CitationFile describes a generated citations document
type CitationFile struct {
	Filename string `json:"filename"`
	Created  string `json:"created"`
	FilePath string `json:"file_path"`
}

// Citations renders every citation style for a cached video and saves them to
// a text file under citations/
func (g *Generator) Citations(videoURL, filename string, custom map[string]string) (*CitationResult, error) {
	meta := g.loadMetadata(filename)

	data, err := g.citationData(videoURL, meta, custom)
	if err != nil {
		return nil, err
	}

	citations := map[string]string{
		StyleAPA:       apaCitation(data),
		StyleMLA:       mlaCitation(data),
		StyleChicago:   chicagoCitation(data),
		StyleHarvard:   harvardCitation(data),
		StyleIEEE:      ieeeCitation(data),
		StyleVancouver: vancouverCitation(data),
		StyleBibTeX:    bibtexCitation(data),
	}

	now := g.now()
	name := fmt.Sprintf("citations_%s_%s.txt", cleanTitle(data.Title), now.Format(fileStampLayout))
	if err := platform.WriteFileAtomic(g.citationsDir(), name, []byte(citationsDocument(citations, data, now))); err != nil {
		return nil, fmt.Errorf("failed to save citations: %w", err)
	}

	path := filepath.Join(g.citationsDir(), name)
	g.logger.Info("citations generated", "file", filename, "path", path)
	return &CitationResult{Success: true, Citations: citations, CitationData: data, FilePath: path}, nil
}

// ListCitations returns the generated citation files, newest first
func (g *Generator) ListCitations() ([]CitationFile, error) {
	matches, err := filepath.Glob(filepath.Join(g.citationsDir(), "citations_*.txt"))
	if err != nil {
		return nil, err
	}

	files := make([]CitationFile, 0, len(matches))
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		files = append(files, CitationFile{
			Filename: filepath.Base(path),
			Created:  info.ModTime().Format(time.RFC3339),
			FilePath: path,
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Created > files[j].Created })
	return files, nil
}

func (g *Generator) citationData(videoURL string, meta model.Metadata, custom map[string]string) (CitationData, error) {
	sourceType := "Archived Video"
	if p := meta.String(model.MetaOriginalPlatform); p != "" {
		sourceType = p + " Video (Archived)"
	}

	data := CitationData{
		Title:             valueOr(meta, model.MetaTitle, UntitledVideo),
		Creator:           valueOr(meta, model.MetaCreator, UnknownCreator),
		OriginalDate:      parseDate(meta.String(model.MetaDate)),
		ArchiveDate:       parseDate(meta.String(model.MetaUploadDate)),
		AccessDate:        g.now().Format(dateLayout),
		ArchiveURL:        videoURL,
		OriginalURL:       meta.String(model.MetaOriginalYouTubeURL),
		Runtime:           meta.String(model.MetaRuntime),
		Description:       meta.String(model.MetaDescription),
		Language:          meta.String(model.MetaLanguage),
		ArchiveIdentifier: meta.String(model.MetaIdentifier),
		SourceType:        sourceType,
		Platform:          ArchivePlatform,
		Collection:        meta.String(model.MetaCollection),
		Subject:           meta.String(model.MetaSubject),
		Uploader:          valueOr(meta, model.MetaUploader, ArchivePlatform),
		OriginalPlatform:  valueOr(meta, model.MetaOriginalPlatform, UnknownPlatform),
	}

	if len(custom) > 0 {
		if err := mapstructure.Decode(custom, &data); err != nil {
			return CitationData{}, fmt.Errorf("invalid custom citation info: %w", err)
		}
	}
	return data, nil
}

// parseDate normalizes common date forms to YYYY-MM-DD. Unrecognized input is
// returned unchanged.
func parseDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || s == "Unknown" {
		return ""
	}

	layouts := inputDateLayouts
	if strings.Contains(s, "T") {
		layouts = isoDateLayouts
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(dateLayout)
		}
	}
	return s
}

func cleanTitle(title string) string {
	clean := unsafeTitleChars.ReplaceAllString(title, "_")
	if r := []rune(clean); len(r) > titleFileMax {
		clean = string(r[:titleFileMax])
	}
	return clean
}

func hasOriginalPlatform(d CitationData) bool {
	return d.OriginalPlatform != "" && d.OriginalPlatform != UnknownPlatform
}

func year(d CitationData, fallback string) string {
	if len(d.OriginalDate) >= 4 {
		return d.OriginalDate[:4]
	}
	if d.OriginalDate != "" {
		return d.OriginalDate
	}
	return fallback
}

func apaCitation(d CitationData) string {
	date := d.OriginalDate
	if date == "" {
		date = "n.d."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s). %s", d.Creator, date, d.Title)
	if d.Runtime != "" {
		fmt.Fprintf(&b, " [Video file, %s]", d.Runtime)
	} else {
		b.WriteString(" [Video file]")
	}
	fmt.Fprintf(&b, ". %s", d.Platform)
	if d.OriginalURL != "" {
		fmt.Fprintf(&b, ". Originally published at %s", d.OriginalURL)
	}
	if d.ArchiveDate != "" {
		fmt.Fprintf(&b, ". Archived %s", d.ArchiveDate)
	}
	fmt.Fprintf(&b, ". Retrieved %s, from %s", d.AccessDate, d.ArchiveURL)
	return b.String()
}

func mlaCitation(d CitationData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s. \"%s.\"", d.Creator, d.Title)
	if hasOriginalPlatform(d) {
		fmt.Fprintf(&b, " %s,", d.OriginalPlatform)
	}
	if d.OriginalDate != "" {
		fmt.Fprintf(&b, " %s,", d.OriginalDate)
	}
	fmt.Fprintf(&b, " %s", d.Platform)
	if d.ArchiveDate != "" {
		fmt.Fprintf(&b, ", %s", d.ArchiveDate)
	}
	fmt.Fprintf(&b, ". Web. %s. <%s>", d.AccessDate, d.ArchiveURL)
	return b.String()
}

func chicagoCitation(d CitationData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s. \"%s.\"", d.Creator, d.Title)
	if hasOriginalPlatform(d) {
		fmt.Fprintf(&b, " %s video.", d.OriginalPlatform)
	} else {
		b.WriteString(" Video.")
	}
	if d.OriginalDate != "" {
		fmt.Fprintf(&b, " %s.", d.OriginalDate)
	}
	if d.ArchiveDate != "" {
		fmt.Fprintf(&b, " Archived %s.", d.ArchiveDate)
	}
	fmt.Fprintf(&b, " %s. Accessed %s. %s", d.Platform, d.AccessDate, d.ArchiveURL)
	return b.String()
}

func harvardCitation(d CitationData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s) '%s'", d.Creator, year(d, "n.d."), d.Title)
	if hasOriginalPlatform(d) {
		fmt.Fprintf(&b, ", %s video", d.OriginalPlatform)
	} else {
		b.WriteString(", video")
	}
	if d.ArchiveDate != "" {
		fmt.Fprintf(&b, ", archived %s", d.ArchiveDate)
	}
	fmt.Fprintf(&b, ", %s, accessed %s, <%s>", d.Platform, d.AccessDate, d.ArchiveURL)
	return b.String()
}

func ieeeCitation(d CitationData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s, \"%s,\"", d.Creator, d.Title)
	if hasOriginalPlatform(d) {
		fmt.Fprintf(&b, " %s,", d.OriginalPlatform)
	}
	if d.OriginalDate != "" {
		fmt.Fprintf(&b, " %s.", d.OriginalDate)
	}
	fmt.Fprintf(&b, " [Video]. Available: %s", d.ArchiveURL)
	if d.ArchiveDate != "" {
		fmt.Fprintf(&b, " [Archived: %s]", d.ArchiveDate)
	}
	fmt.Fprintf(&b, " [Accessed: %s]", d.AccessDate)
	return b.String()
}

func vancouverCitation(d CitationData) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s. %s [video]", d.Creator, d.Title)
	if hasOriginalPlatform(d) {
		fmt.Fprintf(&b, ". %s", d.OriginalPlatform)
	}
	if d.OriginalDate != "" {
		fmt.Fprintf(&b, "; %s", d.OriginalDate)
	}
	if d.ArchiveDate != "" {
		fmt.Fprintf(&b, " [archived %s]", d.ArchiveDate)
	}
	fmt.Fprintf(&b, ". Available from: %s [cited %s]", d.ArchiveURL, d.AccessDate)
	return b.String()
}

func bibtexCitation(d CitationData) string {
	key := bibKeyChars.ReplaceAllString(strings.ReplaceAll(d.Creator, " ", ""), "")
	if len(key) > 10 {
		key = key[:10]
	}
	key += year(d, "nd")

	var b strings.Builder
	fmt.Fprintf(&b, "@misc{%s,\n", key)
	fmt.Fprintf(&b, "  author = {%s},\n", d.Creator)
	fmt.Fprintf(&b, "  title = {%s},\n", d.Title)
	if d.OriginalDate != "" {
		fmt.Fprintf(&b, "  year = {%s},\n", year(d, ""))
	}
	if hasOriginalPlatform(d) {
		fmt.Fprintf(&b, "  note = {Video originally published on %s},\n", d.OriginalPlatform)
	}
	fmt.Fprintf(&b, "  howpublished = {\\url{%s}},\n", d.ArchiveURL)
	fmt.Fprintf(&b, "  organization = {%s},\n", d.Platform)
	if d.ArchiveDate != "" {
		fmt.Fprintf(&b, "  archivedate = {%s},\n", d.ArchiveDate)
	}
	fmt.Fprintf(&b, "  urldate = {%s}\n", d.AccessDate)
	b.WriteString("}")
	return b.String()
}

func orText(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func citationsDocument(c map[string]string, d CitationData, generated time.Time) string {
	var b strings.Builder
	b.WriteString("ACADEMIC CITATIONS\n==================\n\n")
	fmt.Fprintf(&b, "Video: %s\n", d.Title)
	fmt.Fprintf(&b, "Creator: %s\n", d.Creator)
	fmt.Fprintf(&b, "Original Date: %s\n", orText(d.OriginalDate, "Unknown"))
	fmt.Fprintf(&b, "Archive Date: %s\n", orText(d.ArchiveDate, "Unknown"))
	fmt.Fprintf(&b, "Access Date: %s\n", d.AccessDate)
	fmt.Fprintf(&b, "Source: %s\n\n", d.SourceType)

	b.WriteString("CITATION FORMATS\n================\n\n")
	for _, s := range []struct{ heading, style string }{
		{"APA (7th Edition)", StyleAPA},
		{"MLA (9th Edition)", StyleMLA},
		{"Chicago (17th Edition)", StyleChicago},
		{"Harvard", StyleHarvard},
		{"IEEE", StyleIEEE},
		{"Vancouver", StyleVancouver},
		{"BibTeX", StyleBibTeX},
	} {
		fmt.Fprintf(&b, "%s:\n%s\n\n", s.heading, c[s.style])
	}

	b.WriteString("ADDITIONAL METADATA\n===================\n")
	fmt.Fprintf(&b, "Archive URL: %s\n", d.ArchiveURL)
	fmt.Fprintf(&b, "Original URL: %s\n", orText(d.OriginalURL, "Not Available"))
	fmt.Fprintf(&b, "Archive Identifier: %s\n", d.ArchiveIdentifier)
	fmt.Fprintf(&b, "Runtime: %s\n", orText(d.Runtime, "Unknown"))
	fmt.Fprintf(&b, "Language: %s\n", orText(d.Language, "Unknown"))
	fmt.Fprintf(&b, "Collection: %s\n", orText(d.Collection, "None specified"))
	fmt.Fprintf(&b, "Subject Tags: %s\n\n", orText(d.Subject, "None specified"))

	b.WriteString("Generated by Mucache Player Citation Generator\n")
	fmt.Fprintf(&b, "Generation Date: %s\n", generated.Format("2006-01-02 15:04:05"))
	return b.String()
}
