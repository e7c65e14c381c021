// Package walker finds save files below a directory tree.
package walker

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/TFMV/savefmt/internal/hash"
	"github.com/karrick/godirwalk"
)

// WalkOptions contains options for the Walk function
type WalkOptions struct {
	// Extensions lists the accepted file extensions, including the dot.
	// An empty list accepts every regular file.
	Extensions []string
	// ExcludePatterns are matched against the slash-separated relative path
	ExcludePatterns []string
	// FollowSymlinks determines whether symbolic links should be followed
	FollowSymlinks bool
	// MaxDepth is the maximum directory depth to traverse (0 means no limit)
	MaxDepth int
	// ComputeHashes determines whether file digests should be computed
	ComputeHashes bool
	HashAlgorithm hash.Algorithm
	// SkipErrors records per-file errors on the entry instead of aborting
	SkipErrors bool
}

// DefaultWalkOptions returns the default options for Walk
func DefaultWalkOptions() WalkOptions {
	return WalkOptions{
		Extensions:    []string{".save"},
		MaxDepth:      16,
		ComputeHashes: true,
		HashAlgorithm: hash.BLAKE3,
		SkipErrors:    true,
	}
}

// FileEntry describes one file found by the walk
type FileEntry struct {
	// Path is relative to the walk root and slash-separated
	Path    string
	Size    int64
	ModTime time.Time
	Hash    string
	Error   error
}

// Name returns the file name without directory or extension
func (e FileEntry) Name() string {
	base := filepath.Base(filepath.FromSlash(e.Path))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// EntryCallback processes one entry. Returning an error aborts the walk.
type EntryCallback func(entry FileEntry) error

// WalkWithCallback walks the tree rooted at root in lexical order and calls
// callback for every accepted regular file
func WalkWithCallback(ctx context.Context, root string, options WalkOptions, callback EntryCallback) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", root)
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return err
	}

	// abort stops the walk even when SkipErrors is set
	var abort error
	fail := func(err error) error {
		abort = err
		return err
	}

	err = godirwalk.Walk(absRoot, &godirwalk.Options{
		FollowSymbolicLinks: options.FollowSymlinks,
		Callback: func(path string, de *godirwalk.Dirent) error {
			select {
			case <-ctx.Done():
				return fail(ctx.Err())
			default:
			}
			if path == absRoot {
				return nil
			}

			rel, err := filepath.Rel(absRoot, path)
			if err != nil {
				return fail(err)
			}
			rel = filepath.ToSlash(rel)

			isDir, err := de.IsDirOrSymlinkToDir()
			if err != nil {
				if options.SkipErrors {
					return nil
				}
				return fail(err)
			}
			if isDir && !options.FollowSymlinks && de.IsSymlink() {
				return nil
			}

			if excluded(rel, options.ExcludePatterns) {
				if isDir {
					return filepath.SkipDir
				}
				return nil
			}
			if isDir {
				if options.MaxDepth > 0 && strings.Count(rel, "/")+1 >= options.MaxDepth {
					return filepath.SkipDir
				}
				return nil
			}
			if !accepted(rel, options.Extensions) {
				return nil
			}

			entry, err := describe(path, rel, options)
			if err != nil {
				if !options.SkipErrors {
					return fail(err)
				}
				entry.Error = err
			}
			if err := callback(entry); err != nil {
				return fail(err)
			}
			return nil
		},
		ErrorCallback: func(path string, err error) godirwalk.ErrorAction {
			if abort == nil && options.SkipErrors {
				return godirwalk.SkipNode
			}
			return godirwalk.Halt
		},
	})
	if abort != nil {
		return abort
	}
	return err
}

// Walk returns every accepted file below root
func Walk(ctx context.Context, root string, options WalkOptions) ([]FileEntry, error) {
	var out []FileEntry
	err := WalkWithCallback(ctx, root, options, func(e FileEntry) error {
		out = append(out, e)
		return nil
	})
	return out, err
}

func describe(path, rel string, options WalkOptions) (FileEntry, error) {
	entry := FileEntry{Path: rel}
	info, err := os.Stat(path)
	if err != nil {
		return entry, err
	}
	entry.Size = info.Size()
	entry.ModTime = info.ModTime()

	if options.ComputeHashes {
		opts := hash.DefaultOptions()
		opts.Algorithm = options.HashAlgorithm
		res := hash.File(path, opts)
		if res.Error != nil {
			return entry, res.Error
		}
		entry.Hash = res.Hash
	}
	return entry, nil
}

func excluded(rel string, patterns []string) bool {
	base := rel[strings.LastIndex(rel, "/")+1:]
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, rel); ok {
			return true
		}
		if ok, _ := filepath.Match(p, base); ok {
			return true
		}
	}
	return false
}

func accepted(rel string, exts []string) bool {
	if len(exts) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(rel))
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}
