package repo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// IOError reports a failed read, stage, or rename during a commit. The
// guarantee on failure is that every target file still holds its
// pre-commit content.
type IOError struct {
	Code string
	Op   string
	Path string
	Err  error
}

// I/O error codes (E500-E509).
const (
	ErrCodeRead   = "E501"
	ErrCodeStage  = "E502"
	ErrCodeRename = "E503"
)

// Error implements the error interface.
func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", e.Code, e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *IOError) Unwrap() error { return e.Err }

// IsIOError reports whether err is (or wraps) an IOError.
func IsIOError(err error) bool {
	var ioErr *IOError
	return errors.As(err, &ioErr)
}

// NewIOError creates an IOError for a failed operation on a document.
func NewIOError(op, path string, err error) *IOError {
	code := ErrCodeStage
	switch op {
	case "read":
		code = ErrCodeRead
	case "rename":
		code = ErrCodeRename
	}
	return &IOError{Code: code, Op: op, Path: path, Err: err}
}

// stagedFile is one temp file waiting to be renamed over its target.
type stagedFile struct {
	tmp    string
	target string
}

// Commit writes every dirty document to disk atomically.
//
// All dirty documents are first serialized and written to temp files in
// their target directories; renames happen only after every staged write
// succeeded. A failure during staging removes the temps and returns an
// IOError with the workspace untouched. The token in temp names keeps
// concurrent leftover temps from colliding after a crash.
func (r *Repo) Commit() error {
	rels := r.Dirty()
	if len(rels) == 0 {
		return nil
	}

	token := uuid.NewString()[:8]
	var staged []stagedFile

	cleanup := func() {
		for _, s := range staged {
			os.Remove(s.tmp)
		}
	}

	for _, rel := range rels {
		doc, ok := r.docs[rel]
		if !ok {
			cleanup()
			return fmt.Errorf("dirty document never loaded: %s", rel)
		}

		target := r.Path(rel)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			cleanup()
			return NewIOError("stage", rel, err)
		}

		tmp := filepath.Join(filepath.Dir(target),
			fmt.Sprintf(".tmp.%s.%s", filepath.Base(target), token))
		if err := writeAndSync(tmp, doc.Serialize(), target); err != nil {
			cleanup()
			return NewIOError("stage", rel, err)
		}
		staged = append(staged, stagedFile{tmp: tmp, target: target})
	}

	for i, s := range staged {
		if err := os.Rename(s.tmp, s.target); err != nil {
			// Staged temps after this point are abandoned; targets renamed
			// before it already hold their new content.
			for _, rest := range staged[i:] {
				os.Remove(rest.tmp)
			}
			return NewIOError("rename", rels[i], err)
		}
	}

	r.dirty = make(map[string]bool)
	return nil
}

func writeAndSync(tmp, content, target string) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(target); err == nil {
		mode = info.Mode().Perm()
	}

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
