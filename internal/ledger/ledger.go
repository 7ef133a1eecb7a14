// Package ledger keeps the durable append-only record of dispatch
// attempts. The set of entries with status sent is the source of truth
// for idempotence across runs.
package ledger

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

const (
	StatusSent  = "sent"
	StatusError = "error"

	timeLayout = "2006-01-02 15:04:05"
)

var columns = []string{"ts", "email", "subject", "status", "error"}

type pair struct {
	email   string
	subject string
}

// Ledger is an append-only sent log backed by a single file, written by
// a single process instance. Concurrent multi-process runs are out of
// contract.
type Ledger struct {
	path string
	file *os.File
	sent map[pair]struct{}

	// Now is swappable in tests.
	Now func() time.Time
}

// Open loads the durable store and reconstructs the dedupe set strictly
// from sent entries. Error entries stay eligible for retry and preview
// runs never contribute.
func Open(path string) (*Ledger, error) {
	l := &Ledger{
		path: path,
		sent: make(map[pair]struct{}),
		Now:  time.Now,
	}

	if err := l.loadSent(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating ledger directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening ledger %s: %w", path, err)
	}
	l.file = file

	return l, nil
}

func (l *Ledger) loadSent() error {
	file, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("opening ledger %s: %w", l.path, err)
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("reading ledger header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A torn trailing line from a crashed run is not a
			// reason to forget durable sends.
			continue
		}
		if field(row, idx, "status") != StatusSent {
			continue
		}
		l.sent[pair{
			email:   field(row, idx, "email"),
			subject: field(row, idx, "subject"),
		}] = struct{}{}
	}

	return nil
}

func field(row []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

// ShouldSkip reports whether the (email, subject) pair was already sent.
func (l *Ledger) ShouldSkip(email, subject string) bool {
	_, ok := l.sent[pair{email: email, subject: subject}]
	return ok
}

// SentCount returns the size of the dedupe set.
func (l *Ledger) SentCount() int {
	return len(l.sent)
}

// Record appends one outcome line and flushes it immediately, so a
// crash mid-run leaves all prior entries durable.
func (l *Ledger) Record(email, subject, status, detail string) error {
	stat, err := l.file.Stat()
	if err != nil {
		return fmt.Errorf("stat ledger: %w", err)
	}

	w := csv.NewWriter(l.file)
	if stat.Size() == 0 {
		if err := w.Write(columns); err != nil {
			return err
		}
	}

	if err := w.Write([]string{l.Now().Format(timeLayout), email, subject, status, detail}); err != nil {
		return err
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("appending ledger entry: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("syncing ledger: %w", err)
	}

	if status == StatusSent {
		l.sent[pair{email: email, subject: subject}] = struct{}{}
	}

	return nil
}

func (l *Ledger) Close() error {
	return l.file.Close()
}
