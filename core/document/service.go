package document

import (
	"context"
	"io"
	"net/mail"
	"sort"

	"github.com/pkg/errors"

	"github.com/trezcool/dossiers/core"
	"github.com/trezcool/dossiers/core/student"
)

const rejectedTemplate = "document_rejected"

type (
	Repository interface {
		// GetDocuments returns the records of one student, history included.
		GetDocuments(ctx context.Context, studentID string) ([]Record, error)
		// SaveDocument upserts the slot and appends the history entries it does not hold yet.
		SaveDocument(ctx context.Context, rec Record) error
		// QueryAllDocuments returns every record, without history.
		QueryAllDocuments(ctx context.Context) ([]Record, error)
	}

	// Students is the part of student.Service the documents depend on.
	Students interface {
		Get(id string) (student.Student, error)
		Query(filter *student.QueryFilter, ordering ...core.DBOrdering) ([]student.Student, error)
	}

	// FileUpload is a file on its way to the document store.
	FileUpload struct {
		StudentID   string
		Type        Type
		FileName    string
		ContentType string
		Size        int64 // -1 when unknown
		Content     io.Reader
	}

	// FileStore is the external document store; it owns the bytes.
	FileStore interface {
		Store(ctx context.Context, up FileUpload) (FileDescriptor, error)
	}

	// Actor is the user performing a transition.
	Actor struct {
		ID    string
		Name  string
		Email string
	}

	Result struct {
		Document Document `json:"document"`
		Message  string   `json:"message"`
	}

	HistoryItem struct {
		Type  Type   `json:"type"`
		Label string `json:"label"`
		HistoryEntry
	}

	Stats struct {
		Students           int `json:"students"`
		Complete           int `json:"complete"`
		PartiallySubmitted int `json:"partially_submitted"`
		NoDocuments        int `json:"no_documents"`
		WithPending        int `json:"with_pending"`
		WithMissing        int `json:"with_missing"`
		WithRejected       int `json:"with_rejected"`
	}

	Service struct {
		repo        Repository
		students    Students
		files       FileStore
		activities  ActivityLogger
		mailSvc     core.EmailService
		logger      core.Logger
		managerOpts []ManagerOption
		guard       *slotGuard
	}
)

func NewService(
	repo Repository,
	students Students,
	files FileStore,
	activities ActivityLogger,
	mailSvc core.EmailService,
	logger core.Logger,
	opts ...ManagerOption,
) *Service {
	return &Service{
		repo:        repo,
		students:    students,
		files:       files,
		activities:  activities,
		mailSvc:     mailSvc,
		logger:      logger,
		managerOpts: opts,
		guard:       newSlotGuard(),
	}
}

// GetSet returns the document set of a student; slots without a record read as missing.
func (svc *Service) GetSet(ctx context.Context, studentID string) (*Set, error) {
	if _, err := svc.students.Get(studentID); err != nil {
		return nil, err
	}
	return svc.loadSet(ctx, studentID)
}

func (svc *Service) loadSet(ctx context.Context, studentID string) (*Set, error) {
	recs, err := svc.repo.GetDocuments(ctx, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "getting documents")
	}
	return NewSetFromRecords(studentID, recs)
}

// Upload stores the file then puts the slot back to pending review.
// Only one operation at a time may run on a slot: others fail with ErrSlotBusy until it returns.
func (svc *Service) Upload(ctx context.Context, up FileUpload, actor Actor) (Result, error) {
	if !up.Type.IsValid() {
		return Result{}, errors.Wrapf(ErrInvalidDocumentType, "%q", up.Type)
	}
	if up.Content == nil || up.Size == 0 {
		return Result{}, ErrEmptyFile
	}
	std, err := svc.students.Get(up.StudentID)
	if err != nil {
		return Result{}, err
	}

	release, err := svc.guard.acquire(std.ID, up.Type)
	if err != nil {
		return Result{}, err
	}
	defer release()

	fd, err := svc.files.Store(ctx, up)
	if err != nil {
		return Result{}, errors.Wrap(err, "storing file")
	}
	return svc.apply(ctx, std, up.Type, ActionUpload, "", actor, func(m *Manager) (Document, error) {
		return m.Upload(up.Type, fd, actor.Name)
	})
}

func (svc *Service) Approve(ctx context.Context, studentID string, t Type, actor Actor) (Result, error) {
	return svc.transition(ctx, studentID, t, ActionApprove, "", actor, func(m *Manager) (Document, error) {
		return m.Approve(t, actor.Name)
	})
}

// Reject also notifies the student's guardian, when their email is known.
func (svc *Service) Reject(ctx context.Context, studentID string, t Type, reason string, actor Actor) (Result, error) {
	return svc.transition(ctx, studentID, t, ActionReject, reason, actor, func(m *Manager) (Document, error) {
		return m.Reject(t, reason, actor.Name)
	})
}

func (svc *Service) transition(
	ctx context.Context,
	studentID string,
	t Type,
	action Action,
	reason string,
	actor Actor,
	apply func(*Manager) (Document, error),
) (Result, error) {
	if !t.IsValid() {
		return Result{}, errors.Wrapf(ErrInvalidDocumentType, "%q", t)
	}
	std, err := svc.students.Get(studentID)
	if err != nil {
		return Result{}, err
	}

	release, err := svc.guard.acquire(std.ID, t)
	if err != nil {
		return Result{}, err
	}
	defer release()

	return svc.apply(ctx, std, t, action, reason, actor, apply)
}

// apply runs one manager transition on a freshly loaded set and persists the touched slot.
func (svc *Service) apply(
	ctx context.Context,
	std student.Student,
	t Type,
	action Action,
	reason string,
	actor Actor,
	transition func(*Manager) (Document, error),
) (Result, error) {
	set, err := svc.loadSet(ctx, std.ID)
	if err != nil {
		return Result{}, err
	}
	doc, err := transition(NewManager(set, svc.managerOpts...))
	if err != nil {
		return Result{}, err
	}
	if err := svc.repo.SaveDocument(ctx, doc.Record(std.ID)); err != nil {
		return Result{}, errors.Wrap(err, "saving document")
	}

	svc.logActivity(ctx, Activity{
		Timestamp: doc.UpdatedAt,
		UserName:  actor.Name,
		Action:    ActivityLine(action, t, std.FullName(), reason),
		Category:  ActivityCategory,
		StudentID: std.ID,
	}, actor)
	if action == ActionReject {
		svc.notifyRejection(std, doc)
	}
	return Result{Document: doc, Message: Message(action, doc)}, nil
}

// logActivity reports audit failures without failing the transition.
func (svc *Service) logActivity(ctx context.Context, act Activity, actor Actor) {
	if err := svc.activities.LogActivity(ctx, act); err != nil {
		svc.logger.Error("logging document activity", errors.Wrap(err, act.Action), actor)
	}
}

func (svc *Service) notifyRejection(std student.Student, doc Document) {
	if std.GuardianEmail == "" {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: std.FullName(), Address: std.GuardianEmail}},
		Subject:      "Document rejeté : " + doc.Type.Label(),
		TemplateName: rejectedTemplate,
		TemplateData: map[string]string{
			"StudentID":     std.ID,
			"StudentName":   std.FullName(),
			"DocumentLabel": doc.Type.Label(),
			"Reason":        doc.RejectionReason,
		},
	})
}

// History merges the history of every slot, newest first.
func (svc *Service) History(ctx context.Context, studentID string) ([]HistoryItem, error) {
	set, err := svc.GetSet(ctx, studentID)
	if err != nil {
		return nil, err
	}

	type ranked struct {
		HistoryItem
		slot, seq int
	}
	var entries []ranked
	for slot, doc := range set.Documents() {
		for seq, entry := range doc.History {
			entries = append(entries, ranked{
				HistoryItem: HistoryItem{Type: doc.Type, Label: doc.Type.Label(), HistoryEntry: entry},
				slot:        slot,
				seq:         seq,
			})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.After(b.Timestamp)
		}
		if a.slot != b.slot {
			return a.slot < b.slot
		}
		return a.seq > b.seq
	})

	items := make([]HistoryItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, e.HistoryItem)
	}
	return items, nil
}

// Stats counts students per category, and those with at least one pending, missing or rejected document.
func (svc *Service) Stats(ctx context.Context) (Stats, error) {
	students, err := svc.students.Query(nil)
	if err != nil {
		return Stats{}, errors.Wrap(err, "querying students")
	}
	recs, err := svc.repo.QueryAllDocuments(ctx)
	if err != nil {
		return Stats{}, errors.Wrap(err, "querying documents")
	}
	byStudent := make(map[string][]Record, len(students))
	for _, rec := range recs {
		byStudent[rec.StudentID] = append(byStudent[rec.StudentID], rec)
	}

	stats := Stats{Students: len(students)}
	for _, std := range students {
		set, err := NewSetFromRecords(std.ID, byStudent[std.ID])
		if err != nil {
			return Stats{}, errors.Wrapf(err, "loading documents of %s", std.ID)
		}
		switch set.Category() {
		case CategoryComplete:
			stats.Complete++
		case CategoryPartiallySubmitted:
			stats.PartiallySubmitted++
		default:
			stats.NoDocuments++
		}

		var pending, missing, rejected bool
		for _, doc := range set.Documents() {
			switch doc.Status {
			case StatusPending:
				pending = true
			case StatusMissing:
				missing = true
			case StatusRejected:
				rejected = true
			}
		}
		if pending {
			stats.WithPending++
		}
		if missing {
			stats.WithMissing++
		}
		if rejected {
			stats.WithRejected++
		}
	}
	return stats, nil
}

