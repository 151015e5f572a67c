// Package pipeline turns a submission (a single Markdown file or a zip of
// Markdown files) into a folder of WeChat HTML plus a meta.json manifest.
package pipeline

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/google/uuid"

	"github.com/roboco-io/md2wechat/internal/wechat"
)

// Meta identifies the submitter.
type Meta struct {
	WeChat string `json:"wechat,omitempty"`
	Email  string `json:"email,omitempty"`
}

// fileMeta is the YAML front matter recognized at the top of a Markdown file.
// Anything else in the front matter is discarded along with the delimiters so
// it never reaches the transpiler as a horizontal rule.
type fileMeta struct {
	Title  string `yaml:"title"`
	Author string `yaml:"author"`
}

// ConvertedFile records one successful conversion. Paths are relative to the
// submission folder.
type ConvertedFile struct {
	Markdown string `json:"markdown"`
	HTML     string `json:"html"`
	Title    string `json:"title,omitempty"`
	Author   string `json:"author,omitempty"`
}

// FailedFile records one conversion failure.
type FailedFile struct {
	Markdown string `json:"markdown"`
	Error    string `json:"error"`
}

// Result describes a processed submission.
type Result struct {
	ID        string          `json:"id"`
	Timestamp string          `json:"timestamp"`
	Meta      Meta            `json:"meta"`
	Original  string          `json:"original"`
	Converted []ConvertedFile `json:"converted"`
	Failed    []FailedFile    `json:"failed,omitempty"`

	// Folder is the submission directory under the processor base dir,
	// also the suggested remote folder name.
	Folder string `json:"-"`
	// Dir is the absolute path of the submission directory.
	Dir string `json:"-"`
	// InputPath is the original input as given to Process.
	InputPath string `json:"-"`
}

// OutDir returns the directory holding the converted HTML files.
func (r *Result) OutDir() string {
	return filepath.Join(r.Dir, "out")
}

// MetaPath returns the path of the meta.json manifest.
func (r *Result) MetaPath() string {
	return filepath.Join(r.Dir, "meta.json")
}

// Processor runs submissions against a shared template store.
type Processor struct {
	store   *wechat.Store
	baseDir string
}

// NewProcessor creates a processor writing submission folders under baseDir.
func NewProcessor(store *wechat.Store, baseDir string) *Processor {
	return &Processor{store: store, baseDir: baseDir}
}

// Process handles one submission. Per-file conversion failures are collected
// in the result; only submission-level problems (unreadable input, bad zip)
// return an error.
func (p *Processor) Process(ctx context.Context, inputPath string, meta Meta) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := time.Now()
	res := &Result{
		ID:        uuid.NewString(),
		Timestamp: now.Format("20060102_150405"),
		Meta:      meta,
		Original:  filepath.Base(inputPath),
		InputPath: inputPath,
	}
	res.Folder = folderName(res.Timestamp, meta.Email)
	res.Dir = filepath.Join(p.baseDir, res.Folder)

	srcDir := filepath.Join(res.Dir, "src")
	if err := os.MkdirAll(srcDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create submission dir: %w", err)
	}
	if err := os.MkdirAll(res.OutDir(), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output dir: %w", err)
	}

	switch strings.ToLower(filepath.Ext(inputPath)) {
	case ".zip":
		if err := extractZip(inputPath, srcDir); err != nil {
			return nil, fmt.Errorf("failed to extract %s: %w", filepath.Base(inputPath), err)
		}
	case ".md":
		if err := copyFile(inputPath, filepath.Join(srcDir, filepath.Base(inputPath))); err != nil {
			return nil, fmt.Errorf("failed to copy input: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported input type: %s (expected .md or .zip)", filepath.Ext(inputPath))
	}

	mdFiles, err := findMarkdown(srcDir)
	if err != nil {
		return nil, err
	}
	if len(mdFiles) == 0 {
		return nil, fmt.Errorf("no markdown files found in %s", filepath.Base(inputPath))
	}

	for _, mdPath := range mdFiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rel, _ := filepath.Rel(res.Dir, mdPath)
		converted, err := p.convertOne(mdPath, res.OutDir())
		if err != nil {
			res.Failed = append(res.Failed, FailedFile{Markdown: rel, Error: err.Error()})
			continue
		}
		converted.Markdown = rel
		res.Converted = append(res.Converted, converted)
	}

	if err := writeMeta(res); err != nil {
		return nil, err
	}
	return res, nil
}

func (p *Processor) convertOne(mdPath, outDir string) (ConvertedFile, error) {
	data, err := os.ReadFile(mdPath)
	if err != nil {
		return ConvertedFile{}, fmt.Errorf("failed to read file: %w", err)
	}

	var fm fileMeta
	body, err := frontmatter.Parse(bytes.NewReader(data), &fm)
	if err != nil {
		return ConvertedFile{}, fmt.Errorf("failed to parse front matter: %w", err)
	}

	html := wechat.Render(string(body), p.store)

	stem := strings.TrimSuffix(filepath.Base(mdPath), filepath.Ext(mdPath))
	outPath := filepath.Join(outDir, stem+".html")
	if err := os.WriteFile(outPath, []byte(html), 0o644); err != nil {
		return ConvertedFile{}, fmt.Errorf("failed to write output: %w", err)
	}

	return ConvertedFile{
		HTML:   filepath.Join("out", stem+".html"),
		Title:  fm.Title,
		Author: fm.Author,
	}, nil
}

// folderName builds the submission folder name from the timestamp and the
// submitter email, with "@" flattened so the name stays path-safe.
func folderName(timestamp, email string) string {
	if email == "" {
		return timestamp
	}
	return timestamp + "_" + strings.ReplaceAll(email, "@", "_")
}

func writeMeta(res *Result) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode meta.json: %w", err)
	}
	if err := os.WriteFile(res.MetaPath(), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write meta.json: %w", err)
	}
	return nil
}

func findMarkdown(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".md") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan for markdown files: %w", err)
	}
	return files, nil
}

func extractZip(zipPath, destDir string) error {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return err
	}
	defer zr.Close()

	cleanDest := filepath.Clean(destDir)
	for _, f := range zr.File {
		target := filepath.Join(cleanDest, filepath.FromSlash(f.Name))
		if target != cleanDest && !strings.HasPrefix(target, cleanDest+string(os.PathSeparator)) {
			return fmt.Errorf("illegal path in archive: %s", f.Name)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := extractFile(f, target); err != nil {
			return fmt.Errorf("failed to extract %s: %w", f.Name, err)
		}
	}
	return nil
}

func extractFile(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	w, err := os.Create(target)
	if err != nil {
		return err
	}
	defer w.Close()

	_, err = io.Copy(w, rc)
	return err
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
