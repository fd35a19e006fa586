package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/specledger/specledger/internal/docmodel"
	"github.com/specledger/specledger/internal/lifecycle"
	"github.com/specledger/specledger/internal/repo"
)

// Generic error codes for failures without a structured type.
const (
	ErrCodeGeneric = "E100"
	ErrCodeUsage   = "E101"
)

// newFormatter builds the output formatter for a command invocation.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// openRepo resolves the discovery directory and opens a read-only handle.
func openRepo(opts *RootOptions) (*repo.Repo, error) {
	dir, err := repo.Resolve(opts.Dir)
	if err != nil {
		return nil, err
	}
	return repo.Open(dir)
}

// openLocked opens the repository with the single-writer lock held.
// The caller must Unlock after committing or discarding.
func openLocked(opts *RootOptions) (*repo.Repo, error) {
	r, err := openRepo(opts)
	if err != nil {
		return nil, err
	}
	if err := r.LockExclusive(); err != nil {
		return nil, err
	}
	return r, nil
}

// fail reports err through the formatter and converts it to an
// ExitError so main exits nonzero without double-printing.
func fail(f *OutputFormatter, err error) error {
	code := errCode(err)
	if outErr := f.Error(code, err.Error(), nil); outErr != nil {
		return outErr
	}
	return &ExitError{Code: ExitFailure, Message: err.Error(), Err: err}
}

// errCode extracts the structured code from an error, if it has one.
func errCode(err error) string {
	var structural *docmodel.StructuralError
	if errors.As(err, &structural) {
		return structural.Code
	}
	var reject *lifecycle.RejectError
	if errors.As(err, &reject) {
		return reject.Code
	}
	var invariant *lifecycle.InvariantError
	if errors.As(err, &invariant) {
		return invariant.Code
	}
	var ioErr *repo.IOError
	if errors.As(err, &ioErr) {
		return ioErr.Code
	}
	return ErrCodeGeneric
}

// stdinFields reads one pipe-delimited record from the command's stdin.
// field(i) returns "" past the end, matching how callers probe optional
// trailing fields.
func stdinFields(cmd *cobra.Command, minimum int, shape string) ([]string, error) {
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, err
	}
	parts := strings.Split(strings.TrimSpace(string(data)), "|")
	if len(parts) < minimum {
		return nil, NewExitError(ExitFailure,
			fmt.Sprintf("pipe-separated input requires at least: %s", shape))
	}
	return parts, nil
}

// field returns parts[i] or "" when the record is shorter.
func field(parts []string, i int) string {
	if i < len(parts) {
		return strings.TrimSpace(parts[i])
	}
	return ""
}
