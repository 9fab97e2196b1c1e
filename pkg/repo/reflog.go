package repo

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/odvcencio/ugit/pkg/object"
)

// RefUpdateReflogError indicates the ref file update succeeded, but appending
// the corresponding reflog entry failed.
type RefUpdateReflogError struct {
	Ref     string
	OldHash object.Hash
	NewHash object.Hash
	Err     error
}

func (e *RefUpdateReflogError) Error() string {
	return fmt.Sprintf("update ref %q: reflog append failed (old=%s new=%s): %v",
		e.Ref, e.OldHash.Short(), e.NewHash.Short(), e.Err)
}

func (e *RefUpdateReflogError) Unwrap() error { return e.Err }

// ReflogEntry is one recorded movement of a reference.
type ReflogEntry struct {
	Ref     string
	OldHash object.Hash
	NewHash object.Hash
	Time    time.Time
	Reason  string
}

func (s *RefStore) reflogPath(ref string) string {
	return filepath.Join(s.dir, "logs", filepath.FromSlash(ref))
}

// appendReflog records "old new unix-seconds reason" under logs/<ref>.
func (s *RefStore) appendReflog(ref string, oldHash, newHash object.Hash, reason string) error {
	if strings.TrimSpace(reason) == "" {
		reason = "update"
	}
	reason = strings.ReplaceAll(reason, "\n", " ")

	logPath := s.reflogPath(ref)
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("reflog mkdir: %w", err)
	}
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("reflog open: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("%s %s %d %s\n", oldHash, newHash, time.Now().Unix(), reason)
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("reflog write: %w", err)
	}
	return nil
}

// Reflog returns the recorded movements of name, newest first. A symbolic
// name such as HEAD reads the log of the reference it points at. limit <= 0
// returns every entry.
func (s *RefStore) Reflog(name string, limit int) ([]ReflogEntry, error) {
	terminal, _, err := s.resolve(name, true)
	if err != nil {
		return nil, fmt.Errorf("read reflog: %w", err)
	}

	f, err := os.Open(s.reflogPath(terminal))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read reflog: %w", err)
	}
	defer f.Close()

	var entries []ReflogEntry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		parts := strings.SplitN(strings.TrimSpace(scanner.Text()), " ", 4)
		if len(parts) < 4 {
			continue
		}
		oldHash, err1 := object.ParseHash(parts[0])
		newHash, err2 := object.ParseHash(parts[1])
		ts, err3 := strconv.ParseInt(parts[2], 10, 64)
		if err1 != nil || err2 != nil || err3 != nil {
			continue
		}
		entries = append(entries, ReflogEntry{
			Ref:     terminal,
			OldHash: oldHash,
			NewHash: newHash,
			Time:    time.Unix(ts, 0),
			Reason:  parts[3],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read reflog: %w", err)
	}

	// Return newest first.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}
