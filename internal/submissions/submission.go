// Package submissions keeps an anonymous log of what users asked for.
package submissions

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Submission is one generation request as logged. Free-text context is
// never part of it.
type Submission struct {
	Timestamp   time.Time
	RequestID   string
	Mode        string
	Domain      string
	Process     string
	Focus       string
	Industry    string
	Maturity    string
	Constraints []string
	CustomSteps []string
}

// Sink persists submissions.
type Sink interface {
	Name() string
	Write(ctx context.Context, sub Submission) error
	Close() error
}

// Sink kinds accepted by Open.
const (
	KindNone    = "none"
	KindCSV     = "csv"
	KindSQLite  = "sqlite"
	KindWebhook = "webhook"
)

// Open builds the sink named by kind. target is a file path for csv and
// sqlite and a URL for webhook.
func Open(kind, target string) (Sink, error) {
	switch strings.ToLower(kind) {
	case "", KindNone:
		return NopSink{}, nil
	case KindCSV:
		return NewCSVSink(target)
	case KindSQLite:
		return NewSQLiteSink(target)
	case KindWebhook:
		return NewWebhookSink(target, nil)
	default:
		return nil, fmt.Errorf("unknown submissions sink %q (none/csv/sqlite/webhook)", kind)
	}
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) Name() string                           { return KindNone }
func (NopSink) Write(context.Context, Submission) error { return nil }
func (NopSink) Close() error                           { return nil }

// row flattens a submission for tabular sinks.
func (s Submission) row() []string {
	return []string{
		s.Timestamp.UTC().Format(time.RFC3339),
		s.RequestID,
		s.Mode,
		s.Domain,
		s.Process,
		s.Focus,
		s.Industry,
		s.Maturity,
		strings.Join(s.Constraints, "; "),
		strings.Join(s.CustomSteps, " | "),
	}
}

var columns = []string{
	"timestamp", "request_id", "mode", "domain", "process", "focus",
	"industry", "maturity", "constraints", "custom_steps",
}
