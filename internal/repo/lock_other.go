//go:build !unix

package repo

import "os"

// Non-unix platforms get no advisory locking; the tool is single-writer
// by workflow convention there.
func flockExclusive(f *os.File) error { return nil }

func flockUnlock(f *os.File) error { return nil }
