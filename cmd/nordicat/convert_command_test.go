package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quakeline/nordic-etl/internal/domain"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestEventPath(t *testing.T) {
	ev := domain.Event{ResourceID: "2000-02-01T12-42-20"}

	cases := []struct {
		layout string
		want   string
	}{
		{"flat", "2000-02-01T12-42-20.json"},
		{"yyyy", filepath.Join("2000", "2000-02-01T12-42-20.json")},
		{"yyyy-mm", filepath.Join("2000", "2000-02", "2000-02-01T12-42-20.json")},
		{"yyyy-mm-dd", filepath.Join("2000", "2000-02", "2000-02-01", "2000-02-01T12-42-20.json")},
	}
	for _, tc := range cases {
		t.Run(tc.layout, func(t *testing.T) {
			got, err := eventPath("out", tc.layout, ev)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join("out", tc.want), got)
		})
	}
}

func TestEventPath_RejectsUnknownLayout(t *testing.T) {
	ev := domain.Event{ResourceID: "2000-02-01T12-42-20"}
	_, err := eventPath("out", "monthly", ev)
	assert.Error(t, err)
}

func TestEventPath_RejectsNonTimestampID(t *testing.T) {
	ev := domain.Event{ResourceID: "smi:local/event/abc"}
	_, err := eventPath("out", "yyyy-mm", ev)
	assert.Error(t, err)
}

func TestCollectSFiles_SingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "01-1242-20L.S200002")
	writeFile(t, path, "x\n")

	paths, err := collectSFiles(path)
	require.NoError(t, err)
	assert.Equal(t, []string{path}, paths)
}

func TestCollectSFiles_DirectorySkipsNonBulletins(t *testing.T) {
	dir := t.TempDir()
	keep := filepath.Join(dir, "01-1242-20L.S200002")
	writeFile(t, keep, "x\n")
	writeFile(t, filepath.Join(dir, "hyp.out"), "x\n")
	writeFile(t, filepath.Join(dir, "01-1242-20L.S200002~"), "x\n")

	paths, err := collectSFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{keep}, paths)
}
