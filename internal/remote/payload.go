package remote

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/roboco-io/md2wechat/internal/pipeline"
)

// BuildPayload packs a processed submission into the archive the submission
// API expects: converted HTML and meta.json at the root, the original upload
// under uploads/. Files missing on disk are skipped rather than failing the
// whole payload.
func BuildPayload(res *pipeline.Result) ([]byte, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	outDir := res.OutDir()
	entries, err := os.ReadDir(outDir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read output dir: %w", err)
	}

	var htmlFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".html") {
			htmlFiles = append(htmlFiles, e.Name())
		}
	}
	sort.Strings(htmlFiles)

	for _, name := range htmlFiles {
		if err := addFile(zw, filepath.Join(outDir, name), name); err != nil {
			return nil, err
		}
	}

	if _, err := os.Stat(res.MetaPath()); err == nil {
		if err := addFile(zw, res.MetaPath(), "meta.json"); err != nil {
			return nil, err
		}
	}

	if res.InputPath != "" {
		if _, err := os.Stat(res.InputPath); err == nil {
			dest := "uploads/" + filepath.Base(res.InputPath)
			if err := addFile(zw, res.InputPath, dest); err != nil {
				return nil, err
			}
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize payload: %w", err)
	}
	return buf.Bytes(), nil
}

func addFile(zw *zip.Writer, path, name string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}
	w, err := zw.Create(name)
	if err != nil {
		return fmt.Errorf("failed to add %s to payload: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write %s to payload: %w", name, err)
	}
	return nil
}
