package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fxamacker/cbor/v2"
	log "github.com/sirupsen/logrus"

	"github.com/odvcencio/ugit/pkg/object"
	"github.com/odvcencio/ugit/pkg/repo"
)

// ErrInvalidBundle is returned when a bundle stream cannot be decoded or its
// header is not recognized.
var ErrInvalidBundle = errors.New("invalid bundle")

const bundleMagic = "ugit-bundle/1"

// A bundle is a zstd stream of CBOR items: one bundleHeader, then one
// bundleObject per object in the closure of the header's refs.
type bundleHeader struct {
	Magic string            `cbor:"magic"`
	Refs  map[string]string `cbor:"refs"` // full ref name -> hex digest
}

type bundleObject struct {
	Hash string `cbor:"hash"`
	Kind string `cbor:"kind"`
	Data []byte `cbor:"data"`
}

var (
	bundleEncMode, _ = cbor.EncOptions{
		Sort:        cbor.SortCanonical,
		IndefLength: cbor.IndefLengthForbidden,
	}.EncMode()

	bundleDecMode, _ = cbor.DecOptions{
		MaxArrayElements: 10000,
		MaxMapPairs:      100000,
		MaxNestedLevels:  16,
		IndefLength:      cbor.IndefLengthForbidden,
		DupMapKey:        cbor.DupMapKeyEnforcedAPF,
	}.DecMode()
)

// BundleStats describes a written bundle.
type BundleStats struct {
	Refs    map[string]object.Hash
	Objects int
}

// WriteBundle writes the named references of r and every object reachable
// from them to w. Names may be full (refs/heads/x) or short branch or tag
// names; with no names every branch is bundled.
func WriteBundle(ctx context.Context, w io.Writer, r *repo.Repo, refNames ...string) (*BundleStats, error) {
	refs, err := bundleRefs(r, refNames)
	if err != nil {
		return nil, fmt.Errorf("write bundle: %w", err)
	}
	stats := &BundleStats{Refs: refs}

	header := bundleHeader{Magic: bundleMagic, Refs: make(map[string]string, len(refs))}
	tips := make([]object.Hash, 0, len(refs))
	for name, h := range refs {
		header.Refs[name] = h.String()
		tips = append(tips, h)
	}
	sort.Slice(tips, func(i, j int) bool { return tips[i].String() < tips[j].String() })

	zw, err := newCompressor(w)
	if err != nil {
		return nil, fmt.Errorf("write bundle: %w", err)
	}
	enc := bundleEncMode.NewEncoder(zw)
	if err := enc.Encode(header); err != nil {
		zw.Close()
		return nil, fmt.Errorf("write bundle: header: %w", err)
	}

	for h, err := range r.ObjectsReachableFrom(tips...) {
		if err != nil {
			zw.Close()
			return nil, fmt.Errorf("write bundle: %w", err)
		}
		if err := ctx.Err(); err != nil {
			zw.Close()
			return nil, err
		}
		kind, data, err := r.Store.Get(h, "")
		if err != nil {
			zw.Close()
			return nil, fmt.Errorf("write bundle: %w", err)
		}
		if err := enc.Encode(bundleObject{Hash: h.String(), Kind: string(kind), Data: data}); err != nil {
			zw.Close()
			return nil, fmt.Errorf("write bundle: object %s: %w", h.Short(), err)
		}
		stats.Objects++
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("write bundle: %w", err)
	}
	log.WithFields(log.Fields{"refs": len(refs), "objects": stats.Objects}).Debug("bundle written")
	return stats, nil
}

// bundleRefs qualifies and resolves the references to bundle.
func bundleRefs(r *repo.Repo, names []string) (map[string]object.Hash, error) {
	if len(names) == 0 {
		branches, err := branchValues(r)
		if err != nil {
			return nil, err
		}
		for _, b := range branches {
			names = append(names, b.Name)
		}
		if len(names) == 0 {
			return nil, fmt.Errorf("no branches to bundle: %w", repo.ErrNoHead)
		}
	}

	out := make(map[string]object.Hash, len(names))
	for _, name := range names {
		full := qualifyRef(r, name)
		v, err := r.Refs.Resolve(full, true)
		if err != nil {
			return nil, err
		}
		if v.IsZero() {
			return nil, fmt.Errorf("%w: %s", repo.ErrUnknownRevision, name)
		}
		out[full] = v.Hash()
	}
	return out, nil
}

// qualifyRef expands a short branch or tag name to its full reference name.
// Branches win over tags, and unknown names are returned as is.
func qualifyRef(r *repo.Repo, name string) string {
	if strings.HasPrefix(name, "refs/") {
		return name
	}
	if r.IsBranch(name) {
		return repo.BranchPrefix + name
	}
	if v, err := r.Refs.Resolve(repo.TagPrefix+name, false); err == nil && !v.IsZero() {
		return repo.TagPrefix + name
	}
	return name
}

// ReadBundle imports a bundle into dst. Every object's digest is verified
// before it is stored. Branches are recorded as refs/remote/<branch>; tags
// are created when dst does not have them yet.
func ReadBundle(ctx context.Context, rd io.Reader, dst *repo.Repo) (*FetchResult, error) {
	zr, err := newDecompressor(rd)
	if err != nil {
		return nil, fmt.Errorf("read bundle: %w", err)
	}
	defer zr.Close()
	dec := bundleDecMode.NewDecoder(zr)

	var header bundleHeader
	if err := dec.Decode(&header); err != nil {
		return nil, fmt.Errorf("read bundle: %w: header: %v", ErrInvalidBundle, err)
	}
	if header.Magic != bundleMagic {
		return nil, fmt.Errorf("read bundle: %w: unknown format %q", ErrInvalidBundle, header.Magic)
	}
	refs := make(map[string]object.Hash, len(header.Refs))
	for name, hex := range header.Refs {
		h, err := object.ParseHash(hex)
		if err != nil {
			return nil, fmt.Errorf("read bundle: %w: ref %s: %v", ErrInvalidBundle, name, err)
		}
		refs[name] = h
	}

	res := &FetchResult{}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var rec bundleObject
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read bundle: %w: %v", ErrInvalidBundle, err)
		}
		wrote, err := storeBundleObject(dst.Store, rec)
		if err != nil {
			return nil, fmt.Errorf("read bundle: %w", err)
		}
		if wrote {
			res.Objects++
		}
	}

	names := make([]string, 0, len(refs))
	for name := range refs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		h := refs[name]
		if !dst.Store.Has(h) {
			return nil, fmt.Errorf("read bundle: %w: %s", object.ErrNotFound, name)
		}
		upd, changed, err := importRef(dst, name, h)
		if err != nil {
			return nil, fmt.Errorf("read bundle: %w", err)
		}
		if changed {
			res.Refs = append(res.Refs, upd)
		}
	}
	log.WithFields(log.Fields{"objects": res.Objects, "refs": len(res.Refs)}).Debug("bundle imported")
	return res, nil
}

func storeBundleObject(s *object.Store, rec bundleObject) (bool, error) {
	h, err := object.ParseHash(rec.Hash)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidBundle, err)
	}
	kind, err := object.ParseKind(rec.Kind)
	if err != nil {
		return false, fmt.Errorf("%w: object %s: %v", ErrInvalidBundle, h.Short(), err)
	}
	if got := object.HashObject(kind, rec.Data); got != h {
		return false, fmt.Errorf("object %s: %w: content hashes to %s", h, object.ErrCorruptObject, got)
	}
	if s.Has(h) {
		return false, nil
	}
	if _, err := s.Put(kind, rec.Data); err != nil {
		return false, err
	}
	return true, nil
}

// importRef records a bundled reference in dst.
func importRef(dst *repo.Repo, name string, h object.Hash) (RefUpdate, bool, error) {
	switch {
	case strings.HasPrefix(name, repo.BranchPrefix):
		tracking := repo.RemotePrefix + strings.TrimPrefix(name, repo.BranchPrefix)
		return setTrackingRef(dst, tracking, h, "bundle")
	case strings.HasPrefix(name, repo.TagPrefix):
		existing, err := dst.Refs.Resolve(name, false)
		if err != nil {
			return RefUpdate{}, false, err
		}
		if !existing.IsZero() {
			if existing.Hash() != h {
				log.WithField("tag", name).Warn("bundle tag differs from local tag, keeping local")
			}
			return RefUpdate{}, false, nil
		}
		if err := dst.Refs.UpdateWithReason(name, repo.Direct(h), false, "bundle"); err != nil {
			return RefUpdate{}, false, err
		}
		return RefUpdate{Name: name, New: h}, true, nil
	default:
		log.WithField("ref", name).Warn("skipping bundled reference outside refs/heads and refs/tags")
		return RefUpdate{}, false, nil
	}
}
