// Package dispatch orchestrates the per-recipient render, dedupe and
// delivery loop over the merge artifact.
package dispatch

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/akarpov/fare-mailer/internal/ledger"
	"github.com/akarpov/fare-mailer/internal/mailmerge"
	"github.com/akarpov/fare-mailer/internal/render"
)

// Message is one outgoing delivery.
type Message struct {
	To          string
	Subject     string
	Body        string
	Attachments []string
}

// Transport delivers a message via the external collaborator. The
// dispatcher has no opinion on the mechanism.
type Transport interface {
	Deliver(ctx context.Context, msg *Message) error
}

// Summary are the terminal counts of one run.
type Summary struct {
	Processed int
	Sent      int
	Skipped   int
}

// Dispatcher runs the delivery loop. In preview mode (Commit false) it
// never calls the transport and never writes sent entries, so preview
// runs cannot block a later real send.
type Dispatcher struct {
	Ledger         *ledger.Ledger
	Transport      Transport
	SubjectTpl     string
	BodyTpl        string
	AttachmentsDir string
	Commit         bool
	Logger         *zap.Logger
}

// Run processes records in artifact order; ledger entries are appended
// in that same order. One recipient's delivery failure never aborts the
// run.
func (d *Dispatcher) Run(ctx context.Context, records []mailmerge.Record) (Summary, error) {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var sum Summary
	for i := range records {
		rec := &records[i]

		email := strings.TrimSpace(rec.Email)
		if email == "" {
			continue
		}

		fields := rec.Fields()
		subject := render.Render(d.SubjectTpl, fields)
		body := render.Render(d.BodyTpl, fields)
		attachments := d.resolveAttachments(rec, logger)

		if d.Ledger.ShouldSkip(email, subject) {
			sum.Skipped++
			logger.Info("skipping duplicate",
				zap.String("email", email),
				zap.String("subject", subject),
			)
			continue
		}

		sum.Processed++

		if !d.Commit {
			logger.Info("preview",
				zap.String("email", email),
				zap.String("subject", subject),
				zap.Int("attachments", len(attachments)),
			)
			logger.Debug("preview body", zap.String("body", body))
			continue
		}

		msg := &Message{To: email, Subject: subject, Body: body, Attachments: attachments}
		if err := d.Transport.Deliver(ctx, msg); err != nil {
			if lerr := d.Ledger.Record(email, subject, ledger.StatusError, err.Error()); lerr != nil {
				return sum, lerr
			}
			logger.Error("delivery failed",
				zap.String("email", email),
				zap.String("subject", subject),
				zap.Error(err),
			)
			continue
		}

		if err := d.Ledger.Record(email, subject, ledger.StatusSent, ""); err != nil {
			return sum, err
		}
		sum.Sent++
		logger.Info("sent",
			zap.String("email", email),
			zap.String("subject", subject),
		)
	}

	return sum, nil
}

// resolveAttachments looks up the optional attachment by name in the
// configured directory. A missing file is a warning, never fatal.
func (d *Dispatcher) resolveAttachments(rec *mailmerge.Record, logger *zap.Logger) []string {
	name := strings.TrimSpace(rec.Attachment())
	if name == "" {
		return nil
	}

	path := filepath.Join(d.AttachmentsDir, name)
	if _, err := os.Stat(path); err != nil {
		logger.Warn("attachment not found, sending without it",
			zap.String("email", rec.Email),
			zap.String("path", path),
		)
		return nil
	}

	return []string{path}
}
