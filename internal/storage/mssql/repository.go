package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/microsoft/go-mssqldb"

	"issue-fetcher/internal/observability"
	"issue-fetcher/internal/storage"
)

const upsertDownloadQuery = `
	MERGE INTO TblIssueDownloads AS target
	USING (SELECT @Publisher AS Publisher, @Filename AS Filename) AS source
	ON target.[Publisher] = source.Publisher AND target.[Filename] = source.Filename
	WHEN MATCHED THEN
		UPDATE SET
			[RunID] = @RunID,
			[IssueYear] = @IssueYear,
			[IssueNumber] = @IssueNumber,
			[Format] = @Format,
			[Path] = @Path,
			[URL] = @URL,
			[Bytes] = @Bytes,
			[CheckSum] = @CheckSum,
			[DT] = @DT
	WHEN NOT MATCHED THEN
		INSERT ([RunID], [Publisher], [IssueYear], [IssueNumber], [Format], [Filename], [Path], [URL], [Bytes], [CheckSum], [DT])
		VALUES (@RunID, @Publisher, @IssueYear, @IssueNumber, @Format, @Filename, @Path, @URL, @Bytes, @CheckSum, @DT);
`

const existsByChecksumQuery = `SELECT COUNT(*) FROM TblIssueDownloads WHERE CheckSum = @CheckSum`

type Repository struct {
	db             *sql.DB
	commandTimeout time.Duration
	logger         *observability.Logger
}

func NewRepository(dsn string, commandTimeout time.Duration, logger *observability.Logger) (*Repository, error) {
	db, err := sql.Open("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Repository{
		db:             db,
		commandTimeout: commandTimeout,
		logger:         logger,
	}, nil
}

// RecordDownload upserts the record keyed by publisher and filename.
func (r *Repository) RecordDownload(ctx context.Context, rec *storage.DownloadRecord) error {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	stmt, err := r.db.PrepareContext(ctx, upsertDownloadQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			r.logger.Error("Failed to close statement", "error", err.Error())
		}
	}()

	_, err = stmt.ExecContext(ctx,
		sql.Named("RunID", rec.RunID),
		sql.Named("Publisher", rec.Publisher),
		sql.Named("IssueYear", rec.IssueYear),
		sql.Named("IssueNumber", rec.IssueNumber),
		sql.Named("Format", rec.Format),
		sql.Named("Filename", rec.Filename),
		sql.Named("Path", rec.Path),
		sql.Named("URL", rec.URL),
		sql.Named("Bytes", rec.Bytes),
		sql.Named("CheckSum", rec.SHA256),
		sql.Named("DT", rec.DownloadedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to execute upsert: %w", err)
	}

	return nil
}

// ExistsByChecksum reports whether any record carries this payload hash.
func (r *Repository) ExistsByChecksum(ctx context.Context, sha256 string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.commandTimeout)
	defer cancel()

	stmt, err := r.db.PrepareContext(ctx, existsByChecksumQuery)
	if err != nil {
		return false, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			r.logger.Error("Failed to close statement", "error", err.Error())
		}
	}()

	var count int
	if err := stmt.QueryRowContext(ctx, sql.Named("CheckSum", sha256)).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to query database: %w", err)
	}

	return count > 0, nil
}

// Close closes the database handle.
func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}
