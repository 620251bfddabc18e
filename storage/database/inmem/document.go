package inmemdb

import (
	"context"

	"github.com/trezcool/dossiers/core/document"
	"github.com/trezcool/dossiers/core/student"
)

type documentRepository struct {
	db *DB
}

var _ document.Repository = (*documentRepository)(nil)

func NewDocumentRepository(db *DB) document.Repository {
	return &documentRepository{db: db}
}

func (repo *documentRepository) GetDocuments(_ context.Context, studentID string) ([]document.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	slots := repo.db.documents[studentID]
	recs := make([]document.Record, 0, len(slots))
	for _, t := range document.AllTypes {
		if rec, ok := slots[t]; ok {
			recs = append(recs, copyRecord(*rec, true))
		}
	}
	return recs, nil
}

func (repo *documentRepository) SaveDocument(_ context.Context, rec document.Record) error {
	t, err := document.ParseType(rec.Type)
	if err != nil {
		return err
	}

	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.students[rec.StudentID]; !ok {
		return student.ErrNotFound
	}
	slots, ok := repo.db.documents[rec.StudentID]
	if !ok {
		slots = make(map[document.Type]*document.Record, len(document.AllTypes))
		repo.db.documents[rec.StudentID] = slots
	}

	// history is append-only: keep what is stored, add what is new
	var history []document.HistoryEntry
	if orig, ok := slots[t]; ok {
		history = orig.History
	}
	if len(rec.History) > len(history) {
		history = append(append([]document.HistoryEntry(nil), history...), rec.History[len(history):]...)
	}
	rec.Type = string(t)
	rec.History = history
	slots[t] = &rec
	return nil
}

func (repo *documentRepository) QueryAllDocuments(_ context.Context) ([]document.Record, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	var recs []document.Record
	for _, slots := range repo.db.documents {
		for _, rec := range slots {
			recs = append(recs, copyRecord(*rec, false))
		}
	}
	return recs, nil
}

func copyRecord(rec document.Record, withHistory bool) document.Record {
	if withHistory {
		rec.History = append([]document.HistoryEntry(nil), rec.History...)
	} else {
		rec.History = nil
	}
	return rec
}
