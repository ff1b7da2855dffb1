// Package project handles the persisted Soar project document: the datamap
// graph embedded alongside the host's layout tree, stored as a single JSON
// file, plus scaffolding for fresh projects.
//
// The layout subtree belongs to the host UI and is carried through
// load/save verbatim as raw JSON; this package never interprets it.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"soarmap/internal/datamap"
	"soarmap/internal/editor"
)

const (
	// DocumentFile is the filename of the project document inside a project
	// directory.
	DocumentFile = "soarmap.json"
	// SourceDir is the subdirectory holding the project's .soar sources.
	SourceDir = "src"
)

// Document is the root of the persisted project file.
type Document struct {
	Name    string          `json:"name,omitempty"`
	Version string          `json:"version,omitempty"`
	Layout  json.RawMessage `json:"layout,omitempty"`
	Datamap *datamap.Graph  `json:"datamap"`
}

// Store defines the persistence interface for project documents.
// Abstracted so tools can be tested against an in-memory implementation.
type Store interface {
	Load(path string) (*Document, error)
	Save(path string, doc *Document) error
}

// FileStore implements Store using the local filesystem.
type FileStore struct{}

// NewFileStore creates a filesystem-backed project store.
func NewFileStore() *FileStore {
	return &FileStore{}
}

// DocumentPath returns the path of the project document for a directory. If
// path already names a .json file it is returned unchanged.
func DocumentPath(path string) string {
	if filepath.Ext(path) == ".json" {
		return path
	}
	return filepath.Join(path, DocumentFile)
}

// Load reads and decodes a project document.
func (fs *FileStore) Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("project document %q not found", path)
		}
		return nil, fmt.Errorf("reading project document: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing project document %q: %w", path, err)
	}
	if doc.Datamap == nil {
		return nil, fmt.Errorf("project document %q has no datamap", path)
	}
	if _, err := doc.Datamap.Root(doc.Datamap.BuildIndex()); err != nil {
		return nil, fmt.Errorf("project document %q: %w", path, err)
	}
	return &doc, nil
}

// Save writes the document atomically: marshal to a temp file in the target
// directory, then rename over the destination.
func (fs *FileStore) Save(path string, doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding project document: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating project directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".soarmap-*.json")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("writing project document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("closing project document: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replacing project document: %w", err)
	}
	return nil
}

// Project is a loaded project document bound to its path and store. It owns
// the single mutation gateway (Editor) for the embedded datamap.
type Project struct {
	Path string
	Doc  *Document

	store  Store
	editor *editor.Editor
}

// Open loads the project document at path (a directory or the .json file
// itself) using the given store.
func Open(store Store, path string) (*Project, error) {
	docPath := DocumentPath(path)
	doc, err := store.Load(docPath)
	if err != nil {
		return nil, err
	}
	p := &Project{Path: docPath, Doc: doc, store: store}
	p.editor = editor.New(doc.Datamap, p.Save)
	return p, nil
}

// Save persists the current document state.
func (p *Project) Save() error {
	return p.store.Save(p.Path, p.Doc)
}

// Editor returns the mutation gateway for the project's datamap. All edits
// must go through it; each successful operation persists the document and
// rebuilds the derived metadata.
func (p *Project) Editor() *editor.Editor {
	return p.editor
}

// Dir returns the project directory.
func (p *Project) Dir() string {
	return filepath.Dir(p.Path)
}
