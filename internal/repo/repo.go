// Package repo provides the repository handle for a discovery workspace:
// a root directory plus the lazily loaded document models for the files
// inside it.
//
// Every mutating operation follows the same shape: load documents into
// memory, mutate the models, then Commit. Commit stages each dirty
// document to a temporary file and renames only after every staged write
// succeeded, so an interruption leaves each target either untouched or
// fully replaced, never half-written.
package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/specledger/specledger/internal/docmodel"
	"github.com/specledger/specledger/internal/ids"
)

// Repo is the handle to one discovery workspace.
type Repo struct {
	// Dir is the absolute path of the discovery directory.
	Dir string

	docs  map[string]*docmodel.Document
	dirty map[string]bool
	lock  *os.File
}

// Open creates a handle for the discovery directory at dir.
func Open(dir string) (*Repo, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("discovery directory not found: %s", dir)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}
	return &Repo{
		Dir:   abs,
		docs:  make(map[string]*docmodel.Document),
		dirty: make(map[string]bool),
	}, nil
}

// Resolve finds the discovery directory to operate on.
//
// Priority: an explicit path; the current directory if it is itself named
// "discovery"; otherwise the nearest "discovery" child walking up from the
// current directory.
func Resolve(explicit string) (string, error) {
	if explicit != "" {
		abs, err := filepath.Abs(explicit)
		if err != nil {
			return "", err
		}
		info, err := os.Stat(abs)
		if err != nil || !info.IsDir() {
			return "", fmt.Errorf("directory not found: %s", explicit)
		}
		return abs, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if filepath.Base(cwd) == "discovery" {
		return cwd, nil
	}
	for dir := cwd; ; dir = filepath.Dir(dir) {
		candidate := filepath.Join(dir, "discovery")
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, nil
		}
		if dir == filepath.Dir(dir) {
			break
		}
	}
	return "", fmt.Errorf("discovery directory not found: run from within discovery/, pass --dir, or ensure a discovery/ directory exists in a parent")
}

// Path returns the absolute path for a workspace-relative document path.
func (r *Repo) Path(rel string) string {
	return filepath.Join(r.Dir, filepath.FromSlash(rel))
}

// Exists reports whether the document file is present on disk.
func (r *Repo) Exists(rel string) bool {
	_, err := os.Stat(r.Path(rel))
	return err == nil
}

// Load returns the document model for rel, reading it from disk on first
// access and caching it for the lifetime of the handle.
func (r *Repo) Load(rel string) (*docmodel.Document, error) {
	if doc, ok := r.docs[rel]; ok {
		return doc, nil
	}
	raw, err := os.ReadFile(r.Path(rel))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", rel)
		}
		return nil, NewIOError("read", rel, err)
	}
	doc := docmodel.Parse(rel, string(raw))
	r.docs[rel] = doc
	return doc, nil
}

// LoadOrCreate is Load, except a missing file yields a fresh in-memory
// document seeded with initial and flagged dirty, so the first commit
// materializes it.
func (r *Repo) LoadOrCreate(rel, initial string) (*docmodel.Document, error) {
	if doc, ok := r.docs[rel]; ok {
		return doc, nil
	}
	if r.Exists(rel) {
		return r.Load(rel)
	}
	doc := docmodel.Parse(rel, initial)
	r.docs[rel] = doc
	r.dirty[rel] = true
	return doc, nil
}

// MarkDirty flags a document for the next Commit.
func (r *Repo) MarkDirty(rel string) {
	r.dirty[rel] = true
}

// Dirty returns the workspace-relative paths flagged for commit, sorted.
func (r *Repo) Dirty() []string {
	out := make([]string, 0, len(r.dirty))
	for rel := range r.dirty {
		out = append(out, rel)
	}
	sort.Strings(out)
	return out
}

// Discard drops all in-memory state, abandoning uncommitted mutations.
func (r *Repo) Discard() {
	r.docs = make(map[string]*docmodel.Document)
	r.dirty = make(map[string]bool)
}

// NextID computes the next identifier for an entity type by scanning the
// current model of its defining document. Calling it twice without an
// intervening mutation returns the same value; callers reserve an ID by
// writing it into the model before allocating another.
//
// Question IDs additionally scan citations across the registry and the
// decision and research archives: a resolved question leaves the
// registry but keeps its number for good, held by its resolution
// comment and any archive entry that mentions it.
func (r *Repo) NextID(entity ids.Entity) (string, error) {
	spec, ok := ids.Lookup(entity)
	if !ok {
		return "", fmt.Errorf("invalid entity type: %s (valid: %v)", entity, ids.Entities())
	}
	max := 0
	if content, err := r.scanContent(spec.Doc); err != nil {
		return "", err
	} else if content != "" {
		max = ids.MaxDefined(content, entity)
	}
	if entity == ids.Question {
		for _, rel := range []string{ids.FileQuestions, ids.FileDecisions, ids.FileResearch} {
			content, err := r.scanContent(rel)
			if err != nil {
				return "", err
			}
			if m := ids.MaxCited(content, entity); m > max {
				max = m
			}
		}
	}
	return spec.Format(max + 1), nil
}

// scanContent returns a document's current text, or "" when the file
// does not exist and no model is staged for it.
func (r *Repo) scanContent(rel string) (string, error) {
	if _, cached := r.docs[rel]; !cached && !r.Exists(rel) {
		return "", nil
	}
	doc, err := r.Load(rel)
	if err != nil {
		return "", err
	}
	return doc.Serialize(), nil
}
