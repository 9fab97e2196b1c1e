package merge

import (
	"bytes"
	"context"
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/odvcencio/ugit/pkg/object"
)

// BlobStore reads and writes blob contents. *object.Store satisfies it.
type BlobStore interface {
	ReadBlob(h object.Hash) ([]byte, error)
	WriteBlob(data []byte) (object.Hash, error)
}

// FileStatus records how one path was resolved by Trees.
type FileStatus int

const (
	Unchanged FileStatus = iota // ours and theirs agree
	TookOurs                    // only ours changed
	TookTheirs                  // only theirs changed
	Merged                      // both changed, merged cleanly
	Conflicted                  // both changed, markers embedded
)

func (s FileStatus) String() string {
	switch s {
	case Unchanged:
		return "unchanged"
	case TookOurs:
		return "ours"
	case TookTheirs:
		return "theirs"
	case Merged:
		return "merged"
	case Conflicted:
		return "conflict"
	default:
		return fmt.Sprintf("FileStatus(%d)", int(s))
	}
}

// FileResult is the resolution of one path.
type FileResult struct {
	Path   string
	Status FileStatus
}

// Report summarizes a tree merge. Files is sorted by path.
type Report struct {
	Files     []FileResult
	Conflicts int
}

// ConflictedPaths returns the paths whose merged content carries conflict
// markers.
func (r *Report) ConflictedPaths() []string {
	var out []string
	for _, f := range r.Files {
		if f.Status == Conflicted {
			out = append(out, f.Path)
		}
	}
	return out
}

// Trees merges three flattened snapshots (path -> blob digest). Every path in
// the union of the three is resolved; a path missing from a snapshot counts
// as empty content on that side. The merged content of each path is stored
// as a blob and its digest returned in the result mapping.
func Trees(ctx context.Context, blobs BlobStore, tool Tool, base, ours, theirs map[string]object.Hash) (map[string]object.Hash, *Report, error) {
	paths := unionPaths(base, ours, theirs)
	result := make(map[string]object.Hash, len(paths))
	report := &Report{Files: make([]FileResult, 0, len(paths))}

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		content, status, err := mergePath(ctx, blobs, tool, base[p], ours[p], theirs[p])
		if err != nil {
			return nil, nil, fmt.Errorf("merge %s: %w", p, err)
		}
		h, err := blobs.WriteBlob(content)
		if err != nil {
			return nil, nil, fmt.Errorf("merge %s: %w", p, err)
		}
		result[p] = h
		report.Files = append(report.Files, FileResult{Path: p, Status: status})
		if status == Conflicted {
			report.Conflicts++
		}
		log.WithField("path", p).Debugf("merged: %s", status)
	}
	return result, report, nil
}

func mergePath(ctx context.Context, blobs BlobStore, tool Tool, baseH, oursH, theirsH object.Hash) ([]byte, FileStatus, error) {
	baseData, err := readOptional(blobs, baseH)
	if err != nil {
		return nil, 0, err
	}
	oursData, err := readOptional(blobs, oursH)
	if err != nil {
		return nil, 0, err
	}
	theirsData, err := readOptional(blobs, theirsH)
	if err != nil {
		return nil, 0, err
	}

	switch {
	case bytes.Equal(oursData, theirsData):
		return oursData, Unchanged, nil
	case bytes.Equal(baseData, oursData):
		return theirsData, TookTheirs, nil
	case bytes.Equal(baseData, theirsData):
		return oursData, TookOurs, nil
	}

	merged, conflicted, err := tool.Merge3(ctx, baseData, oursData, theirsData)
	if err != nil {
		return nil, 0, err
	}
	if conflicted {
		return merged, Conflicted, nil
	}
	return merged, Merged, nil
}

// readOptional reads a blob, treating the zero digest as empty content.
func readOptional(blobs BlobStore, h object.Hash) ([]byte, error) {
	if h.IsZero() {
		return nil, nil
	}
	return blobs.ReadBlob(h)
}

func unionPaths(snapshots ...map[string]object.Hash) []string {
	seen := make(map[string]struct{})
	for _, m := range snapshots {
		for p := range m {
			seen[p] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
