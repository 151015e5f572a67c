// Package wechat converts a Markdown document into the fixed HTML fragments
// accepted by the WeChat Official Account rich-text editor.
//
// The conversion is a single forward pass over the document's lines: a line
// classifier feeds a content-block state machine, which delegates list and
// table runs to their own builders and renders every recognized construct
// through a small set of named fragment templates.
package wechat

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Logical template names. Each one resolves to exactly one fragment file in
// the template directory.
const (
	TplRoot         = "root"          // content block wrapper
	TplText         = "text"          // plain text fragment
	TplH1           = "h1"            // numbered first-level heading
	TplH2           = "h2"            // second-level heading
	TplQuote        = "quote"         // merged blockquote
	TplImage        = "image"         // image placeholder
	TplHR           = "hr"            // divider, rendered outside any block
	TplBlank        = "blank"         // blank line fragment
	TplFollowTop    = "follow_top"    // banner opening the first block
	TplFollowBottom = "follow_bottom" // banner closing the last block
	TplEnd          = "end"           // final end marker
)

// templateFiles maps logical names to their fragment file names.
var templateFiles = map[string]string{
	TplRoot:         "root.html",
	TplText:         "text.html",
	TplH1:           "h1.html",
	TplH2:           "h2.html",
	TplQuote:        "quote.html",
	TplImage:        "image.html",
	TplHR:           "hr.html",
	TplBlank:        "blank.html",
	TplFollowTop:    "follow_top.html",
	TplFollowBottom: "follow_bottom.html",
	TplEnd:          "end.html",
}

//go:embed templates/*.html
var bundledTemplates embed.FS

// TemplateMissingError reports a required fragment template that could not be
// resolved when the store was built. Conversion must not start with a partial
// template set.
type TemplateMissingError struct {
	Name string // logical template name
	Path string // resolved file path
}

func (e *TemplateMissingError) Error() string {
	return fmt.Sprintf("missing template %q: %s", e.Name, e.Path)
}

// Store holds the full fragment template set for one template directory.
// A Store is immutable after loading and safe for concurrent use; callers
// converting many documents should build it once and share it.
type Store struct {
	dir  string
	tpls map[string]string
}

// LoadDir loads every required template from an on-disk directory. The first
// missing file aborts the load with a TemplateMissingError.
func LoadDir(dir string) (*Store, error) {
	return load(os.DirFS(dir), dir)
}

// DefaultStore returns the store backed by the bundled template set.
func DefaultStore() *Store {
	sub, err := fs.Sub(bundledTemplates, "templates")
	if err != nil {
		panic(err)
	}
	s, err := load(sub, "(bundled)")
	if err != nil {
		// The bundled set ships inside the binary; a miss is a build defect.
		panic(err)
	}
	return s
}

func load(fsys fs.FS, dir string) (*Store, error) {
	s := &Store{
		dir:  dir,
		tpls: make(map[string]string, len(templateFiles)),
	}
	for name, file := range templateFiles {
		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			return nil, &TemplateMissingError{Name: name, Path: filepath.Join(dir, file)}
		}
		s.tpls[name] = string(data)
	}
	return s, nil
}

// Get returns the template body for a logical name. The name set is fixed at
// compile time, so an unknown name is a programming error.
func (s *Store) Get(name string) string {
	t, ok := s.tpls[name]
	if !ok {
		panic(fmt.Sprintf("wechat: unknown template name %q", name))
	}
	return t
}

// Dir returns the directory the store was loaded from.
func (s *Store) Dir() string {
	return s.dir
}

// Names returns all logical template names in a stable order.
func Names() []string {
	return []string{
		TplRoot, TplText, TplH1, TplH2, TplQuote, TplImage,
		TplHR, TplBlank, TplFollowTop, TplFollowBottom, TplEnd,
	}
}

// FileName returns the fragment file name for a logical template name.
func FileName(name string) string {
	return templateFiles[name]
}
