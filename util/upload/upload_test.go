package upload

import (
	"archive/zip"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeTestZip(t *testing.T, entries map[string]string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "chapter.zip")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := zip.NewWriter(f)
	for name, body := range entries {
		ew, err := w.Create(name)
		require.NoError(t, err)
		_, err = ew.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return path
}

func TestExtractChapterImages(t *testing.T) {
	zipPath := writeTestZip(t, map[string]string{
		"page01.jpg":        "jpg-bytes",
		"pages/page02.PNG":  "png-bytes",
		"notes.txt":         "skip me",
		"pages/credits.pdf": "skip me too",
	})
	chaptersDir := t.TempDir()

	urls, err := ExtractChapterImages(zipPath, chaptersDir, "Chapter 1")
	require.NoError(t, err)
	require.Len(t, urls, 2)

	for _, u := range urls {
		require.True(t, strings.HasPrefix(u, "Chapter_1_"), u)
		_, err := os.Stat(filepath.Join(chaptersDir, filepath.FromSlash(u)))
		require.NoError(t, err)
	}

	// nested archive paths are flattened to their base names
	bases := []string{filepath.Base(urls[0]), filepath.Base(urls[1])}
	require.Contains(t, bases, "page01.jpg")
	require.Contains(t, bases, "page02.PNG")
}

func TestExtractChapterImages_NoImages(t *testing.T) {
	zipPath := writeTestZip(t, map[string]string{"readme.md": "text"})

	urls, err := ExtractChapterImages(zipPath, t.TempDir(), "Ch")
	require.NoError(t, err)
	require.Empty(t, urls)
}

func TestExtractChapterImages_BadArchive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "not-a.zip")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o644))

	_, err := ExtractChapterImages(path, t.TempDir(), "Ch")
	require.Error(t, err)
}
