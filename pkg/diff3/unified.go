package diff3

import (
	"bytes"
	"fmt"
)

// DefaultContext is the number of unchanged lines shown around each change
// in a unified diff.
const DefaultContext = 3

// Unified renders the line diff of a and b in unified format, with headers
// naming the two sides. Identical inputs produce no output.
func Unified(a, b []byte, labelA, labelB string, context int) []byte {
	ops := MyersDiff(splitLines(string(a)), splitLines(string(b)))

	var changed []int
	for i, op := range ops {
		if op.Type != Equal {
			changed = append(changed, i)
		}
	}
	if len(changed) == 0 {
		return nil
	}

	// aPos[i] and bPos[i] count the lines of each side before ops[i].
	aPos := make([]int, len(ops)+1)
	bPos := make([]int, len(ops)+1)
	for i, op := range ops {
		aPos[i+1], bPos[i+1] = aPos[i], bPos[i]
		if op.Type != Insert {
			aPos[i+1]++
		}
		if op.Type != Delete {
			bPos[i+1]++
		}
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "--- %s\n+++ %s\n", labelA, labelB)

	for i := 0; i < len(changed); {
		// Extend the hunk while the next change is close enough that the
		// context windows would touch.
		j := i
		for j+1 < len(changed) && changed[j+1]-changed[j] <= 2*context+1 {
			j++
		}
		start := max(0, changed[i]-context)
		end := min(len(ops), changed[j]+context+1)

		fmt.Fprintf(&buf, "@@ -%s +%s @@\n",
			hunkRange(aPos[start], aPos[end]-aPos[start]),
			hunkRange(bPos[start], bPos[end]-bPos[start]))
		for _, op := range ops[start:end] {
			switch op.Type {
			case Equal:
				buf.WriteByte(' ')
			case Delete:
				buf.WriteByte('-')
			case Insert:
				buf.WriteByte('+')
			}
			buf.WriteString(op.Line)
			buf.WriteByte('\n')
		}
		i = j + 1
	}
	return buf.Bytes()
}

// hunkRange formats a hunk range the way diff -u does: the start line is
// 1-based, an empty range points at the line before it, and a count of one
// is omitted.
func hunkRange(before, count int) string {
	switch count {
	case 0:
		return fmt.Sprintf("%d,0", before)
	case 1:
		return fmt.Sprintf("%d", before+1)
	default:
		return fmt.Sprintf("%d,%d", before+1, count)
	}
}
