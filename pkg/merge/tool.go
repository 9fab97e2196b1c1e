package merge

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/odvcencio/ugit/pkg/diff3"
)

// ErrMergePrimitiveFailure is returned when a diff or merge tool terminates
// abnormally. Conflicts are not failures.
var ErrMergePrimitiveFailure = errors.New("merge primitive failure")

// Conflict marker labels. The ours side is the current HEAD, the theirs side
// is the commit being merged in.
const (
	LabelOurs   = "HEAD"
	LabelBase   = "BASE"
	LabelTheirs = "MERGE_HEAD"
)

// Tool is a line-oriented text diff and three-way merge primitive.
type Tool interface {
	// Diff renders the changes from a to b as a unified diff. Identical
	// inputs produce an empty result.
	Diff(ctx context.Context, a, b []byte, labelA, labelB string) ([]byte, error)

	// Merge3 merges ours and theirs relative to base. Conflicting regions
	// are embedded in the output between conflict markers and reported
	// through conflicted; err is reserved for abnormal failures.
	Merge3(ctx context.Context, base, ours, theirs []byte) (merged []byte, conflicted bool, err error)
}

// NewTool returns the Tool selected by name: "builtin" (or empty) for the
// in-process implementation, "external" for the diff3/diff programs.
func NewTool(name, diff3Command, diffCommand string) (Tool, error) {
	switch name {
	case "", "builtin":
		return Builtin{}, nil
	case "external":
		return External{Diff3Command: diff3Command, DiffCommand: diffCommand}, nil
	default:
		return nil, fmt.Errorf("unknown merge tool %q", name)
	}
}

// ---------------------------------------------------------------------------
// Builtin
// ---------------------------------------------------------------------------

// Builtin is the in-process Tool backed by package diff3.
type Builtin struct{}

func (Builtin) Diff(ctx context.Context, a, b []byte, labelA, labelB string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return diff3.Unified(a, b, labelA, labelB, diff3.DefaultContext), nil
}

func (Builtin) Merge3(ctx context.Context, base, ours, theirs []byte) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	r := diff3.MergeLabeled(base, ours, theirs, diff3.Labels{Ours: LabelOurs, Theirs: LabelTheirs})
	return r.Merged, r.HasConflicts, nil
}

// ---------------------------------------------------------------------------
// External
// ---------------------------------------------------------------------------

// External is a Tool that runs the diff3 and diff programs. Inputs are
// written to a temporary directory that is removed afterwards.
type External struct {
	Diff3Command string // defaults to "diff3"
	DiffCommand  string // defaults to "diff"
}

func (e External) Diff(ctx context.Context, a, b []byte, labelA, labelB string) ([]byte, error) {
	dir, err := os.MkdirTemp("", "ugit-diff-")
	if err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}
	defer os.RemoveAll(dir)

	paths, err := writeInputs(dir, map[string][]byte{"a": a, "b": b})
	if err != nil {
		return nil, fmt.Errorf("diff: %w", err)
	}
	return runTool(ctx, commandOr(e.DiffCommand, "diff"),
		"--unified", "--label", labelA, "--label", labelB, paths["a"], paths["b"])
}

func (e External) Merge3(ctx context.Context, base, ours, theirs []byte) ([]byte, bool, error) {
	dir, err := os.MkdirTemp("", "ugit-merge-")
	if err != nil {
		return nil, false, fmt.Errorf("merge3: %w", err)
	}
	defer os.RemoveAll(dir)

	paths, err := writeInputs(dir, map[string][]byte{"base": base, "ours": ours, "theirs": theirs})
	if err != nil {
		return nil, false, fmt.Errorf("merge3: %w", err)
	}
	out, err := runTool(ctx, commandOr(e.Diff3Command, "diff3"),
		"-m", "-L", LabelOurs, "-L", LabelBase, "-L", LabelTheirs,
		paths["ours"], paths["base"], paths["theirs"])
	if err != nil {
		return nil, false, err
	}
	return out, bytes.Contains(out, []byte("<<<<<<< "+LabelOurs)), nil
}

func commandOr(cmd, fallback string) string {
	if strings.TrimSpace(cmd) == "" {
		return fallback
	}
	return cmd
}

func writeInputs(dir string, inputs map[string][]byte) (map[string]string, error) {
	paths := make(map[string]string, len(inputs))
	for name, data := range inputs {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, data, 0o600); err != nil {
			return nil, err
		}
		paths[name] = p
	}
	return paths, nil
}

// runTool runs a diff-family program. Exit status 0 (no differences) and 1
// (differences or conflicts) both carry a valid result on stdout.
func runTool(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.WithField("cmd", name).Debugf("running %s", strings.Join(args, " "))
	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
		return stdout.Bytes(), nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	msg := strings.TrimSpace(stderr.String())
	if msg == "" {
		msg = err.Error()
	}
	return nil, fmt.Errorf("%w: %s: %s", ErrMergePrimitiveFailure, name, msg)
}
