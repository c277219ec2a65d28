// Package upload handles multipart file storage: cover images saved as-is,
// chapter archives extracted into per-chapter image folders.
package upload

import (
	"archive/zip"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var imageExt = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif)$`)

// SaveFile stores fh under dir with a timestamp-prefixed name and returns
// the stored filename.
func SaveFile(fh *multipart.FileHeader, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	name := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), filepath.Base(fh.Filename))
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return name, nil
}

// ExtractChapterImages unpacks the image entries of a chapter zip into a
// fresh folder under chaptersDir and returns their paths relative to
// chaptersDir, in archive order. Non-image entries are skipped.
func ExtractChapterImages(zipPath, chaptersDir, chapterTitle string) ([]string, error) {
	r, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	safe := strings.ReplaceAll(strings.TrimSpace(chapterTitle), " ", "_")
	folder := fmt.Sprintf("%s_%d", safe, time.Now().UnixMilli())
	destDir := filepath.Join(chaptersDir, folder)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, err
	}

	var urls []string
	for _, f := range r.File {
		if f.FileInfo().IsDir() || !imageExt.MatchString(f.Name) {
			continue
		}
		// Flatten archive paths; a page keeps only its base name.
		name := filepath.Base(f.Name)
		if err := extractOne(f, filepath.Join(destDir, name)); err != nil {
			return nil, err
		}
		urls = append(urls, filepath.ToSlash(filepath.Join(folder, name)))
	}
	return urls, nil
}

func extractOne(f *zip.File, dest string) error {
	src, err := f.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}
