package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ytget/mucache/internal/model"
)

func TestSidecar_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	meta := model.Metadata{
		model.MetaCreator:    "Jane Doe",
		model.MetaCollection: []string{"a", "b"},
		"custom":             "kept",
	}

	require.NoError(t, WriteSidecar(dir, "clip.mp4", meta))

	got, ok, err := ReadSidecar(dir, "clip.mp4")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Jane Doe", got.String(model.MetaCreator))
	assert.Equal(t, []string{"a", "b"}, got.Strings(model.MetaCollection))
	assert.Equal(t, "kept", got.String("custom"))
}

func TestSidecar_Missing(t *testing.T) {
	meta, ok, err := ReadSidecar(t.TempDir(), "nothing.mp4")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, meta)
}

func TestMoveSidecar(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteSidecar(dir, "old.mp4", model.Metadata{"title": "x"}))

	require.NoError(t, MoveSidecar(dir, "old.mp4", "new.mp4"))

	_, ok, _ := ReadSidecar(dir, "old.mp4")
	assert.False(t, ok)
	_, ok, _ = ReadSidecar(dir, "new.mp4")
	assert.True(t, ok)

	assert.NoError(t, MoveSidecar(dir, "absent.mp4", "other.mp4"))
}
