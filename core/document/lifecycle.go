package document

import (
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/dossiers/core"
)

type ManagerOption func(*Manager)

// WithClock sets the time source used to stamp transitions.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

// Manager applies transitions to the slots of one Set.
// It does no I/O and holds no lock: callers serialize operations on a slot.
type Manager struct {
	set *Set
	now func() time.Time
}

func NewManager(set *Set, opts ...ManagerOption) *Manager {
	m := &Manager{set: set, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Set() *Set { return m.set }

// Status never fails; slots without a record are missing.
func (m *Manager) Status(t Type) Status {
	return m.set.Status(t)
}

// Upload attaches a stored file to the slot, which goes back to pending whatever its previous state.
func (m *Manager) Upload(t Type, fd FileDescriptor, actor string) (Document, error) {
	if !t.IsValid() {
		return Document{}, errors.Wrapf(ErrInvalidDocumentType, "%q", t)
	}
	if core.IsBlank(fd.FileName) {
		return Document{}, ErrEmptyFile
	}

	doc := m.set.Document(t)
	action := statusChangeText(doc.Status, StatusPending) + " - Fichier: " + fd.FileName
	doc.Status = StatusPending
	doc.FileName = fd.FileName
	doc.FileReference = fd.FileReference
	doc.RejectionReason = ""
	return m.commit(doc, actor, action), nil
}

// Approve accepts a pending document.
func (m *Manager) Approve(t Type, actor string) (Document, error) {
	doc, err := m.pendingDocument(t, "approve")
	if err != nil {
		return Document{}, err
	}

	action := statusChangeText(doc.Status, StatusApproved)
	doc.Status = StatusApproved
	doc.RejectionReason = ""
	return m.commit(doc, actor, action), nil
}

// Reject refuses a pending document; reason is kept verbatim and must not be blank.
func (m *Manager) Reject(t Type, reason, actor string) (Document, error) {
	if t.IsValid() && core.IsBlank(reason) {
		return Document{}, ErrMissingReason
	}
	doc, err := m.pendingDocument(t, "reject")
	if err != nil {
		return Document{}, err
	}

	action := statusChangeText(doc.Status, StatusRejected) + " - Motif: " + reason
	doc.Status = StatusRejected
	doc.RejectionReason = reason
	return m.commit(doc, actor, action), nil
}

func (m *Manager) pendingDocument(t Type, op string) (Document, error) {
	if !t.IsValid() {
		return Document{}, errors.Wrapf(ErrInvalidDocumentType, "%q", t)
	}
	doc := m.set.Document(t)
	if doc.Status != StatusPending {
		return Document{}, errors.Wrapf(ErrInvalidTransition, "cannot %s a %s document", op, doc.Status)
	}
	return doc, nil
}

// commit stamps doc, appends its history entry and stores it in the set.
// Timestamps never go backwards within a slot, even if the clock does.
func (m *Manager) commit(doc Document, actor, action string) Document {
	now := m.now().UTC()
	if n := len(doc.History); n > 0 && now.Before(doc.History[n-1].Timestamp) {
		now = doc.History[n-1].Timestamp
	}
	if now.Before(doc.UpdatedAt) {
		now = doc.UpdatedAt
	}

	doc.UpdatedAt = now
	doc.History = appendHistory(doc.History, HistoryEntry{Timestamp: now, Actor: actor, Action: action})
	m.set.put(doc)
	return m.set.Document(doc.Type)
}

// appendHistory never writes into h's backing array, so documents handed out earlier keep their history.
func appendHistory(h []HistoryEntry, entry HistoryEntry) []HistoryEntry {
	out := make([]HistoryEntry, len(h), len(h)+1)
	copy(out, h)
	return append(out, entry)
}

func statusChangeText(from, to Status) string {
	return fmt.Sprintf("Statut changé de '%s' à '%s'", from.Label(), to.Label())
}
