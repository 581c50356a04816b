package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"kardex/internal/core/id"
	"kardex/internal/domain/accounting/journal"
	"kardex/pkg/logger"
)

// CompressionAlgo specifies the compression algorithm used for a snapshot.
type CompressionAlgo string

const (
	CompressionNone CompressionAlgo = "none"
	CompressionZstd CompressionAlgo = "zstd"
)

// AuditRecord is one row of the posting audit trail: a full snapshot of the
// entry as it was posted, for dispute resolution independent of the live
// journal tables.
type AuditRecord struct {
	ID                 id.ID           `db:"id"`
	EntryID            id.ID           `db:"entry_id"`
	Folio              string          `db:"folio"`
	SourceType         string          `db:"source_type"`
	Snapshot           json.RawMessage `db:"snapshot"`
	SnapshotCompressed []byte          `db:"snapshot_compressed"`
	CompressionAlgo    CompressionAlgo `db:"compression_algo"`
	CreatedAt          time.Time       `db:"created_at"`
}

// AuditService persists posted-entry snapshots, zstd-compressing large ones.
// It implements journal.AuditSink.
type AuditService struct {
	txManager         *TxManager
	encoder           *zstd.Encoder
	decoder           *zstd.Decoder
	compressThreshold int
}

var _ journal.AuditSink = (*AuditService)(nil)

// NewAuditService creates a new audit service.
func NewAuditService(txManager *TxManager) (*AuditService, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &AuditService{
		txManager:         txManager,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: 10 * 1024,
	}, nil
}

// RecordPosted stores a snapshot of a posted entry. Best-effort: failures are
// logged and never fail the posting, which already committed.
func (s *AuditService) RecordPosted(ctx context.Context, e *journal.Entry) {
	snapshot, err := json.Marshal(e)
	if err != nil {
		logger.Error(ctx, "audit snapshot marshal failed", "folio", e.Folio, "error", err)
		return
	}

	record := AuditRecord{
		ID:              id.New(),
		EntryID:         e.ID,
		Folio:           e.Folio,
		SourceType:      e.SourceType,
		Snapshot:        snapshot,
		CompressionAlgo: CompressionNone,
		CreatedAt:       time.Now().UTC(),
	}

	if len(snapshot) > s.compressThreshold {
		record.SnapshotCompressed = s.encoder.EncodeAll(snapshot, nil)
		record.Snapshot = nil
		record.CompressionAlgo = CompressionZstd
	}

	sql := `
		INSERT INTO sys_audit (
			id, entry_id, folio, source_type,
			snapshot, snapshot_compressed, compression_algo, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	querier := s.txManager.GetQuerier(ctx)
	_, err = querier.Exec(ctx, sql,
		record.ID, record.EntryID, record.Folio, record.SourceType,
		record.Snapshot, record.SnapshotCompressed, record.CompressionAlgo,
		record.CreatedAt,
	)
	if err != nil {
		logger.Error(ctx, "audit record insert failed", "folio", e.Folio, "error", err)
	}
}

// History retrieves audit snapshots for an entry, newest first.
func (s *AuditService) History(ctx context.Context, entryID id.ID, limit int) ([]AuditRecord, error) {
	sql := `
		SELECT id, entry_id, folio, source_type,
		       snapshot, snapshot_compressed, compression_algo, created_at
		FROM sys_audit
		WHERE entry_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := s.txManager.GetQuerier(ctx).Query(ctx, sql, entryID, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit history: %w", err)
	}
	defer rows.Close()

	var records []AuditRecord
	for rows.Next() {
		var r AuditRecord
		err := rows.Scan(
			&r.ID, &r.EntryID, &r.Folio, &r.SourceType,
			&r.Snapshot, &r.SnapshotCompressed, &r.CompressionAlgo, &r.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}

		if r.CompressionAlgo == CompressionZstd && len(r.SnapshotCompressed) > 0 {
			decompressed, err := s.decoder.DecodeAll(r.SnapshotCompressed, nil)
			if err != nil {
				return nil, fmt.Errorf("decompress snapshot: %w", err)
			}
			r.Snapshot = decompressed
			r.SnapshotCompressed = nil
		}

		records = append(records, r)
	}

	return records, rows.Err()
}
