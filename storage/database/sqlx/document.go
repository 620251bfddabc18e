package sqlxrepos

import (
	"context"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/dossiers/core/document"
	"github.com/trezcool/dossiers/core/student"
)

const pqForeignKeyViolation = "23503"

var documentColumns = []string{
	"student_id", "doc_type", "status", "file_name", "file_reference", "rejection_reason", "updated_at",
}

type documentRow struct {
	StudentID       string      `db:"student_id"`
	DocType         string      `db:"doc_type"`
	Status          string      `db:"status"`
	FileName        null.String `db:"file_name"`
	FileReference   null.String `db:"file_reference"`
	RejectionReason null.String `db:"rejection_reason"`
	UpdatedAt       time.Time   `db:"updated_at"`
}

func (r documentRow) toRecord() document.Record {
	return document.Record{
		StudentID:       r.StudentID,
		Type:            r.DocType,
		Status:          r.Status,
		FileName:        r.FileName.String,
		FileReference:   r.FileReference.String,
		RejectionReason: r.RejectionReason.String,
		UpdatedAt:       r.UpdatedAt.UTC(),
	}
}

type historyRow struct {
	DocType   string    `db:"doc_type"`
	Seq       int       `db:"seq"`
	CreatedAt time.Time `db:"created_at"`
	Actor     string    `db:"actor"`
	Action    string    `db:"action"`
}

type documentRepository struct {
	db *sqlx.DB
}

var _ document.Repository = (*documentRepository)(nil)

func NewDocumentRepository(db *sqlx.DB) document.Repository {
	return &documentRepository{db: db}
}

func (repo *documentRepository) GetDocuments(ctx context.Context, studentID string) ([]document.Record, error) {
	q, args, err := psql.Select(documentColumns...).
		From("student_documents").
		Where(squirrel.Eq{"student_id": studentID}).
		OrderBy("doc_type").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building select")
	}
	var rows []documentRow
	if err = repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting documents")
	}

	q, args, err = psql.Select("doc_type", "seq", "created_at", "actor", "action").
		From("student_document_history").
		Where(squirrel.Eq{"student_id": studentID}).
		OrderBy("doc_type", "seq").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building select")
	}
	var hRows []historyRow
	if err = repo.db.SelectContext(ctx, &hRows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting document history")
	}
	history := make(map[string][]document.HistoryEntry, len(rows))
	for _, h := range hRows {
		history[h.DocType] = append(history[h.DocType], document.HistoryEntry{
			Timestamp: h.CreatedAt.UTC(),
			Actor:     h.Actor,
			Action:    h.Action,
		})
	}

	recs := make([]document.Record, 0, len(rows))
	for _, row := range rows {
		rec := row.toRecord()
		rec.History = history[row.DocType]
		recs = append(recs, rec)
	}
	return recs, nil
}

// SaveDocument upserts the slot and inserts the history entries past the last stored seq, in one transaction.
func (repo *documentRepository) SaveDocument(ctx context.Context, rec document.Record) (err error) {
	t, err := document.ParseType(rec.Type)
	if err != nil {
		return err
	}
	rec.Type = string(t)

	tx, err := repo.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = errors.Wrap(tx.Commit(), "committing transaction")
	}()

	q, args, err := psql.Insert("student_documents").
		Columns(documentColumns...).
		Values(
			rec.StudentID, rec.Type, rec.Status,
			nullString(rec.FileName), nullString(rec.FileReference), nullString(rec.RejectionReason),
			rec.UpdatedAt,
		).
		Suffix("ON CONFLICT (student_id, doc_type) DO UPDATE SET " +
			"status = EXCLUDED.status, file_name = EXCLUDED.file_name, " +
			"file_reference = EXCLUDED.file_reference, rejection_reason = EXCLUDED.rejection_reason, " +
			"updated_at = EXCLUDED.updated_at").
		ToSql()
	if err != nil {
		return errors.Wrap(err, "building upsert")
	}
	if _, err = tx.ExecContext(ctx, q, args...); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == pqForeignKeyViolation {
			return student.ErrNotFound
		}
		return errors.Wrap(err, "upserting document")
	}

	var lastSeq int
	q, args, err = psql.Select("COALESCE(MAX(seq), 0)").
		From("student_document_history").
		Where(squirrel.Eq{"student_id": rec.StudentID, "doc_type": rec.Type}).
		ToSql()
	if err != nil {
		return errors.Wrap(err, "building select")
	}
	if err = tx.GetContext(ctx, &lastSeq, q, args...); err != nil {
		return errors.Wrap(err, "selecting last history seq")
	}
	if lastSeq >= len(rec.History) {
		return nil
	}

	ib := psql.Insert("student_document_history").
		Columns("student_id", "doc_type", "seq", "created_at", "actor", "action")
	for i := lastSeq; i < len(rec.History); i++ {
		entry := rec.History[i]
		ib = ib.Values(rec.StudentID, rec.Type, i+1, entry.Timestamp, entry.Actor, entry.Action)
	}
	if q, args, err = ib.ToSql(); err != nil {
		return errors.Wrap(err, "building insert")
	}
	if _, err = tx.ExecContext(ctx, q, args...); err != nil {
		return errors.Wrap(err, "inserting document history")
	}
	return nil
}

func (repo *documentRepository) QueryAllDocuments(ctx context.Context) ([]document.Record, error) {
	q, args, err := psql.Select(documentColumns...).From("student_documents").ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building select")
	}
	var rows []documentRow
	if err = repo.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "selecting documents")
	}

	recs := make([]document.Record, 0, len(rows))
	for _, row := range rows {
		recs = append(recs, row.toRecord())
	}
	return recs, nil
}

func nullString(s string) null.String {
	return null.NewString(s, s != "")
}
