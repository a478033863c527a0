package download

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/mucache/internal/config"
)

func TestGenericFetcher_FirstSuccessfulFormatWins(t *testing.T) {
	dir := t.TempDir()
	ex := &fakeExtractor{
		name:    "My Video.mp4",
		title:   "My Video",
		failing: map[string]bool{"22": true},
	}
	g := NewGenericFetcher(dir, ex, staticQuality(config.QualityMedium), staticFFmpeg(false), nil)

	fetched, err := g.Fetch(context.Background(), "https://youtu.be/x")
	require.NoError(t, err)
	assert.Equal(t, "My Video.mp4", fetched.Filename)
	assert.Equal(t, "My Video", fetched.Title)
	assert.Equal(t, "18", fetched.Format)
	assert.Equal(t, []string{"22", "18"}, ex.Formats())
	assert.Equal(t, []string{"", ""}, ex.merges)
}

func TestGenericFetcher_MergeWhenFFmpegAvailable(t *testing.T) {
	dir := t.TempDir()
	ex := &fakeExtractor{name: "hq.mp4", title: "HQ"}
	g := NewGenericFetcher(dir, ex, staticQuality(config.QualityHigh), staticFFmpeg(true), nil)

	fetched, err := g.Fetch(context.Background(), "https://youtu.be/x")
	require.NoError(t, err)
	assert.Equal(t, FormatChain(config.QualityHigh, true)[0], fetched.Format)
	assert.Equal(t, []string{MergeOutputFormat}, ex.merges)
}

func TestGenericFetcher_ProbeFailureUsesUnknownTitle(t *testing.T) {
	dir := t.TempDir()
	ex := &fakeExtractor{name: "a.mp4", probeErr: errors.New("probe failed")}
	g := NewGenericFetcher(dir, ex, nil, nil, nil)

	fetched, err := g.Fetch(context.Background(), "https://youtu.be/x")
	require.NoError(t, err)
	assert.Equal(t, UnknownTitle, fetched.Title)
	assert.Equal(t, "18", fetched.Format)
}

func TestGenericFetcher_AllFormatsFail(t *testing.T) {
	dir := t.TempDir()
	failing := map[string]bool{}
	for _, f := range FormatChain(config.QualityReliable, false) {
		failing[f] = true
	}
	ex := &fakeExtractor{title: "t", failing: failing}
	g := NewGenericFetcher(dir, ex, staticQuality(config.QualityReliable), staticFFmpeg(false), nil)

	_, err := g.Fetch(context.Background(), "https://youtu.be/x")
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, StageFetch, fe.Stage)
	assert.Len(t, ex.Formats(), len(failing))
}

func TestGenericFetcher_ReportedPathWins(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "reported.mp4"), []byte("v"), 0644))
	ex := &fakeExtractor{name: "another.mp4", title: "t", reported: filepath.Join(dir, "reported.mp4")}
	g := NewGenericFetcher(dir, ex, nil, nil, nil)

	fetched, err := g.Fetch(context.Background(), "https://youtu.be/x")
	require.NoError(t, err)
	assert.Equal(t, "reported.mp4", fetched.Filename)
}

func TestGenericFetcher_DirectoryDiffIgnoresTemporaryFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "old.mp4"), []byte("v"), 0644))
	ex := &fakeExtractor{name: "b.mp4", title: "t", reported: filepath.Join(dir, "b.f137.mp4")}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.mp4.part"), []byte("v"), 0644))
	g := NewGenericFetcher(dir, ex, nil, nil, nil)

	fetched, err := g.Fetch(context.Background(), "https://youtu.be/x")
	require.NoError(t, err)
	assert.Equal(t, "b.mp4", fetched.Filename)
}

func TestGenericFetcher_RecentFileFallback(t *testing.T) {
	dir := t.TempDir()
	// The download overwrote an existing file, so no new name appears
	path := filepath.Join(dir, "overwritten.mp4")
	require.NoError(t, os.WriteFile(path, []byte("v"), 0644))
	old := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "overwritten.mp4"), old, old))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stale.mp4"), []byte("v"), 0644))
	require.NoError(t, os.Chtimes(filepath.Join(dir, "stale.mp4"), old, old))

	ex := &fakeExtractor{name: "overwritten.mp4", title: "t"}
	g := NewGenericFetcher(dir, ex, nil, nil, nil)

	fetched, err := g.Fetch(context.Background(), "https://youtu.be/x")
	require.NoError(t, err)
	assert.Equal(t, "overwritten.mp4", fetched.Filename)
}

func TestGenericFetcher_NothingLocated(t *testing.T) {
	dir := t.TempDir()
	ex := &fakeExtractor{title: "t"}
	g := NewGenericFetcher(dir, ex, nil, nil, nil)

	_, err := g.Fetch(context.Background(), "https://youtu.be/x")
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, StageLocate, fe.Stage)
}

func TestGenericFetcher_ForwardsProgress(t *testing.T) {
	dir := t.TempDir()
	ex := &fakeExtractor{name: "a.mp4", title: "t"}
	g := NewGenericFetcher(dir, ex, nil, nil, nil)

	var got []Progress
	ctx := WithProgress(context.Background(), func(p Progress) { got = append(got, p) })
	_, err := g.Fetch(ctx, "https://youtu.be/x")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, int64(50), got[0].Downloaded)
}

func TestGenericFetcher_CancelledContext(t *testing.T) {
	dir := t.TempDir()
	ex := &fakeExtractor{name: "a.mp4", title: "t"}
	g := NewGenericFetcher(dir, ex, nil, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := g.Fetch(ctx, "https://youtu.be/x")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, ex.Formats())
}
