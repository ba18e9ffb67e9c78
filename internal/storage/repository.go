package storage

import (
	"context"
	"time"
)

// DownloadRecord describes one completed issue download.
type DownloadRecord struct {
	RunID        string
	Publisher    string
	IssueYear    int
	IssueNumber  int
	Format       string
	Filename     string
	Path         string
	URL          string
	Bytes        int64
	SHA256       string
	DownloadedAt time.Time
}

// Repository is the download ledger.
type Repository interface {
	// RecordDownload stores or refreshes the record for (publisher, filename).
	RecordDownload(ctx context.Context, rec *DownloadRecord) error

	// ExistsByChecksum reports whether a payload with this hash was recorded
	// before.
	ExistsByChecksum(ctx context.Context, sha256 string) (bool, error)

	Close() error
}

// NopRepository is used when no ledger is configured.
type NopRepository struct{}

func (NopRepository) RecordDownload(context.Context, *DownloadRecord) error { return nil }

func (NopRepository) ExistsByChecksum(context.Context, string) (bool, error) { return false, nil }

func (NopRepository) Close() error { return nil }
