package diff3

import (
	"bytes"
	"slices"
	"strings"
)

// HunkType classifies a hunk in a three-way merge result.
type HunkType int

const (
	HunkClean    HunkType = iota // Hunk was merged cleanly.
	HunkConflict                 // Hunk has a conflict that requires manual resolution.
)

// Hunk represents a contiguous section of the merge output.
type Hunk struct {
	Type                       HunkType
	Base, Ours, Theirs, Merged []byte
}

// Result holds the outcome of a three-way merge.
type Result struct {
	Merged       []byte // Full merged content (with conflict markers if conflicts exist).
	HasConflicts bool   // True if any hunk is a conflict.
	Hunks        []Hunk // Individual hunks in document order.
}

// Labels name the sides in conflict markers. Base is only written when
// non-empty.
type Labels struct {
	Ours, Base, Theirs string
}

// DefaultLabels are the marker names used by Merge.
var DefaultLabels = Labels{Ours: "HEAD", Theirs: "MERGE_HEAD"}

// DiffLine is a single line in the output of LineDiff.
type DiffLine struct {
	Type    DiffType
	Content string
}

// LineDiff computes a line-level diff between byte slices a and b.
func LineDiff(a, b []byte) []DiffLine {
	ops := MyersDiff(splitLines(string(a)), splitLines(string(b)))

	result := make([]DiffLine, len(ops))
	for i, op := range ops {
		result[i] = DiffLine{Type: op.Type, Content: op.Line}
	}
	return result
}

// Merge performs a three-way merge of base, ours, and theirs using
// DefaultLabels for conflict markers.
func Merge(base, ours, theirs []byte) Result {
	return MergeLabeled(base, ours, theirs, DefaultLabels)
}

// MergeLabeled performs a three-way merge of base, ours, and theirs.
//
// Both sides are diffed against base and reduced to change regions. Base
// lines untouched by either side are copied through. Regions changed by
// only one side take that side. Overlapping or adjacent regions changed by
// both sides are clean when both produce the same lines and a conflict
// otherwise.
func MergeLabeled(base, ours, theirs []byte, labels Labels) Result {
	baseLines := splitLines(string(base))
	oursChanges := buildChanges(baseLines, splitLines(string(ours)))
	theirsChanges := buildChanges(baseLines, splitLines(string(theirs)))

	m := merger{base: baseLines, labels: labels}
	m.run(oursChanges, theirsChanges)
	return Result{
		Merged:       m.out.Bytes(),
		HasConflicts: m.conflicts,
		Hunks:        m.hunks,
	}
}

// splitLines splits s into lines. A trailing newline does not produce
// an extra empty element (matching standard text file conventions).
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// change replaces base[baseStart:baseEnd] with lines on one side.
type change struct {
	baseStart, baseEnd int
	lines              []string
}

// buildChanges reduces a two-way diff (base -> side) to its change regions.
// Consecutive regions are always separated by at least one equal line.
func buildChanges(base, side []string) []change {
	ops := MyersDiff(base, side)

	var changes []change
	baseIdx := 0
	for i := 0; i < len(ops); {
		if ops[i].Type == Equal {
			baseIdx++
			i++
			continue
		}
		c := change{baseStart: baseIdx}
		for i < len(ops) && ops[i].Type != Equal {
			if ops[i].Type == Delete {
				baseIdx++
			} else {
				c.lines = append(c.lines, ops[i].Line)
			}
			i++
		}
		c.baseEnd = baseIdx
		changes = append(changes, c)
	}
	return changes
}

type merger struct {
	base      []string
	labels    Labels
	out       bytes.Buffer
	hunks     []Hunk
	conflicts bool
}

func (m *merger) run(ours, theirs []change) {
	pos := 0
	oi, ti := 0, 0
	for oi < len(ours) || ti < len(theirs) {
		// The region starts at whichever pending change begins first.
		start := -1
		if oi < len(ours) {
			start = ours[oi].baseStart
		}
		if ti < len(theirs) && (start < 0 || theirs[ti].baseStart < start) {
			start = theirs[ti].baseStart
		}
		m.copyBase(pos, start)

		// Pull in changes from both sides until neither side has one that
		// starts inside or right at the end of the region.
		end := start
		o0, t0 := oi, ti
		for grew := true; grew; {
			grew = false
			for oi < len(ours) && ours[oi].baseStart <= end {
				end = max(end, ours[oi].baseEnd)
				oi++
				grew = true
			}
			for ti < len(theirs) && theirs[ti].baseStart <= end {
				end = max(end, theirs[ti].baseEnd)
				ti++
				grew = true
			}
		}

		m.resolve(start, end, ours[o0:oi], theirs[t0:ti])
		pos = end
	}
	m.copyBase(pos, len(m.base))
}

// copyBase emits base[from:to] as a clean, unchanged hunk.
func (m *merger) copyBase(from, to int) {
	if from >= to {
		return
	}
	lines := m.base[from:to]
	writeLines(&m.out, lines)
	m.hunks = append(m.hunks, Hunk{
		Type:   HunkClean,
		Base:   joinLines(lines),
		Merged: joinLines(lines),
	})
}

func (m *merger) resolve(start, end int, ours, theirs []change) {
	baseRegion := m.base[start:end]
	h := Hunk{Base: joinLines(baseRegion)}

	switch {
	case len(theirs) == 0:
		lines := m.apply(start, end, ours)
		h.Ours = joinLines(lines)
		h.Merged = h.Ours
		writeLines(&m.out, lines)
	case len(ours) == 0:
		lines := m.apply(start, end, theirs)
		h.Theirs = joinLines(lines)
		h.Merged = h.Theirs
		writeLines(&m.out, lines)
	default:
		oursLines := m.apply(start, end, ours)
		theirsLines := m.apply(start, end, theirs)
		h.Ours = joinLines(oursLines)
		h.Theirs = joinLines(theirsLines)
		if slices.Equal(oursLines, theirsLines) {
			h.Merged = h.Ours
			writeLines(&m.out, oursLines)
			break
		}
		h.Type = HunkConflict
		m.conflicts = true
		m.writeConflict(oursLines, baseRegion, theirsLines)
	}
	m.hunks = append(m.hunks, h)
}

// apply returns base[start:end] with one side's changes substituted in.
func (m *merger) apply(start, end int, changes []change) []string {
	var lines []string
	pos := start
	for _, c := range changes {
		lines = append(lines, m.base[pos:c.baseStart]...)
		lines = append(lines, c.lines...)
		pos = c.baseEnd
	}
	return append(lines, m.base[pos:end]...)
}

func (m *merger) writeConflict(ours, base, theirs []string) {
	m.out.WriteString(marker("<<<<<<<", m.labels.Ours))
	writeLines(&m.out, ours)
	if m.labels.Base != "" {
		m.out.WriteString(marker("|||||||", m.labels.Base))
		writeLines(&m.out, base)
	}
	m.out.WriteString("=======\n")
	writeLines(&m.out, theirs)
	m.out.WriteString(marker(">>>>>>>", m.labels.Theirs))
}

func marker(prefix, label string) string {
	if label == "" {
		return prefix + "\n"
	}
	return prefix + " " + label + "\n"
}

func writeLines(buf *bytes.Buffer, lines []string) {
	for _, l := range lines {
		buf.WriteString(l)
		buf.WriteByte('\n')
	}
}

func joinLines(lines []string) []byte {
	if len(lines) == 0 {
		return nil
	}
	var buf bytes.Buffer
	writeLines(&buf, lines)
	return buf.Bytes()
}
