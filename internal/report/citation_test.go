package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/mucache/internal/model"
	"github.com/ytget/mucache/internal/store"
)

var fixedNow = time.Date(2024, 3, 5, 14, 30, 15, 0, time.UTC)

func newTestGenerator(t *testing.T, probe DurationProbe) (*Generator, string) {
	t.Helper()
	dir := t.TempDir()
	g := NewGenerator(dir, probe, nil)
	g.now = func() time.Time { return fixedNow }
	return g, dir
}

func archivedMetadata() model.Metadata {
	return model.Metadata{
		model.MetaTitle:              "Moon Landing",
		model.MetaCreator:            []any{"NASA", "JPL"},
		model.MetaDate:               "1969-07-20",
		model.MetaUploadDate:         "2015-01-02T10:00:00",
		model.MetaOriginalPlatform:   "YouTube",
		model.MetaOriginalYouTubeURL: "https://www.youtube.com/watch?v=abcdefghijk",
		model.MetaRuntime:            "00:05:00",
		model.MetaIdentifier:         "moon-landing",
		model.MetaSubject:            []any{"space", "history"},
		model.MetaFileMD5:            "abc",
	}
}

func TestParseDate(t *testing.T) {
	cases := map[string]string{
		"":                     "",
		"Unknown":              "",
		"2020-05-06":           "2020-05-06",
		"2020/05/06":           "2020-05-06",
		"05/06/2020":           "2020-05-06",
		"25/12/2020":           "2020-12-25",
		"2020":                 "2020-01-01",
		"2020-05-06T07:08:09":  "2020-05-06",
		"2020-05-06T07:08:09Z": "2020-05-06",
		"sometime in spring":   "sometime in spring",
	}
	for in, want := range cases {
		assert.Equal(t, want, parseDate(in), "input %q", in)
	}
}

func TestCleanTitle(t *testing.T) {
	assert.Equal(t, "a_b_c_d", cleanTitle(`a:b/c?d`))
	assert.Len(t, []rune(cleanTitle(strings.Repeat("x", 80))), titleFileMax)
}

func TestCitationsDefaultsWithoutSidecar(t *testing.T) {
	g, dir := newTestGenerator(t, nil)

	res, err := g.Citations("https://archive.org/details/x", "missing.mp4", nil)
	require.NoError(t, err)
	require.True(t, res.Success)

	d := res.CitationData
	assert.Equal(t, UntitledVideo, d.Title)
	assert.Equal(t, UnknownCreator, d.Creator)
	assert.Equal(t, "Archived Video", d.SourceType)
	assert.Equal(t, ArchivePlatform, d.Uploader)
	assert.Equal(t, UnknownPlatform, d.OriginalPlatform)
	assert.Equal(t, "2024-03-05", d.AccessDate)

	assert.Equal(t,
		"Unknown Creator (n.d.). Untitled Video [Video file]. Internet Archive. Retrieved 2024-03-05, from https://archive.org/details/x",
		res.Citations[StyleAPA])
	assert.Equal(t,
		"Unknown Creator (n.d.) 'Untitled Video', video, Internet Archive, accessed 2024-03-05, <https://archive.org/details/x>",
		res.Citations[StyleHarvard])
	assert.True(t, strings.HasPrefix(res.Citations[StyleBibTeX], "@misc{UnknownCrend,\n"))

	assert.Equal(t, filepath.Join(dir, CitationsDirName, "citations_Untitled Video_20240305_143015.txt"), res.FilePath)
	body, err := os.ReadFile(res.FilePath)
	require.NoError(t, err)
	assert.Contains(t, string(body), "ACADEMIC CITATIONS")
	assert.Contains(t, string(body), "Original URL: Not Available")
}

func TestCitationsFromSidecar(t *testing.T) {
	g, dir := newTestGenerator(t, nil)
	require.NoError(t, store.WriteSidecar(dir, "moon.mp4", archivedMetadata()))

	res, err := g.Citations("https://archive.org/details/moon-landing", "moon.mp4", nil)
	require.NoError(t, err)

	d := res.CitationData
	assert.Equal(t, "Moon Landing", d.Title)
	assert.Equal(t, "NASA, JPL", d.Creator)
	assert.Equal(t, "1969-07-20", d.OriginalDate)
	assert.Equal(t, "2015-01-02", d.ArchiveDate)
	assert.Equal(t, "YouTube Video (Archived)", d.SourceType)
	assert.Equal(t, "space, history", d.Subject)

	assert.Equal(t,
		"NASA, JPL (1969-07-20). Moon Landing [Video file, 00:05:00]. Internet Archive. Originally published at https://www.youtube.com/watch?v=abcdefghijk. Archived 2015-01-02. Retrieved 2024-03-05, from https://archive.org/details/moon-landing",
		res.Citations[StyleAPA])
	assert.Equal(t,
		`NASA, JPL. "Moon Landing." YouTube, 1969-07-20, Internet Archive, 2015-01-02. Web. 2024-03-05. <https://archive.org/details/moon-landing>`,
		res.Citations[StyleMLA])
	assert.Equal(t,
		`NASA, JPL. "Moon Landing." YouTube video. 1969-07-20. Archived 2015-01-02. Internet Archive. Accessed 2024-03-05. https://archive.org/details/moon-landing`,
		res.Citations[StyleChicago])
	assert.Equal(t,
		`NASA, JPL, "Moon Landing," YouTube, 1969-07-20. [Video]. Available: https://archive.org/details/moon-landing [Archived: 2015-01-02] [Accessed: 2024-03-05]`,
		res.Citations[StyleIEEE])
	assert.Equal(t,
		"NASA, JPL. Moon Landing [video]. YouTube; 1969-07-20 [archived 2015-01-02]. Available from: https://archive.org/details/moon-landing [cited 2024-03-05]",
		res.Citations[StyleVancouver])

	bib := res.Citations[StyleBibTeX]
	assert.True(t, strings.HasPrefix(bib, "@misc{NASAJPL1969,\n"), bib)
	assert.Contains(t, bib, "  year = {1969},\n")
	assert.Contains(t, bib, "  note = {Video originally published on YouTube},\n")
	assert.Contains(t, bib, "  howpublished = {\\url{https://archive.org/details/moon-landing}},\n")
	assert.True(t, strings.HasSuffix(bib, "  urldate = {2024-03-05}\n}"))
}

func TestCitationsCustomOverrides(t *testing.T) {
	g, dir := newTestGenerator(t, nil)
	require.NoError(t, store.WriteSidecar(dir, "moon.mp4", archivedMetadata()))

	res, err := g.Citations("u", "moon.mp4", map[string]string{"title": "Override", "creator": "Someone"})
	require.NoError(t, err)
	assert.Equal(t, "Override", res.CitationData.Title)
	assert.Equal(t, "Someone", res.CitationData.Creator)
	assert.Contains(t, res.FilePath, "citations_Override_")
}

func TestListCitations(t *testing.T) {
	g, _ := newTestGenerator(t, nil)

	files, err := g.ListCitations()
	require.NoError(t, err)
	assert.Empty(t, files)

	_, err = g.Citations("u", "a.mp4", nil)
	require.NoError(t, err)

	files, err = g.ListCitations()
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "citations_Untitled Video_20240305_143015.txt", files[0].Filename)
}
