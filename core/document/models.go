package document

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// Type identifies one of the documents every student has to provide.
type Type string

const (
	BirthCertificate      Type = "birth_certificate"
	VaccinationRecord     Type = "vaccination_record"
	ParentalAuthorization Type = "parental_authorization"
	SchoolRecord          Type = "school_record"
)

// AllTypes lists the document types in display order.
var AllTypes = []Type{BirthCertificate, VaccinationRecord, ParentalAuthorization, SchoolRecord}

var (
	typeLabels = map[Type]string{
		BirthCertificate:      "Extrait de naissance",
		VaccinationRecord:     "Carnet de vaccination",
		ParentalAuthorization: "Autorisation parentale",
		SchoolRecord:          "Fiche scolaire",
	}
	typeNames = map[Type]string{
		BirthCertificate:      "BirthCertificate",
		VaccinationRecord:     "VaccinationRecord",
		ParentalAuthorization: "ParentalAuthorization",
		SchoolRecord:          "SchoolRecord",
	}
	typeAliases = buildTypeAliases()
)

func buildTypeAliases() map[string]Type {
	aliases := make(map[string]Type, len(AllTypes)*3)
	for _, t := range AllTypes {
		aliases[foldToken(string(t))] = t
		aliases[foldToken(typeNames[t])] = t
		aliases[foldToken(typeLabels[t])] = t
	}
	return aliases
}

// ParseType accepts the canonical key, the CamelCase name or the display label of a type, in any case.
func ParseType(raw string) (Type, error) {
	if t, ok := typeAliases[foldToken(raw)]; ok {
		return t, nil
	}
	return "", errors.Wrapf(ErrInvalidDocumentType, "%q", raw)
}

func (t Type) IsValid() bool {
	_, ok := typeLabels[t]
	return ok
}

// Label returns the display name of the type.
func (t Type) Label() string {
	if label, ok := typeLabels[t]; ok {
		return label
	}
	return string(t)
}

// FileDescriptor is what the document store hands back once a file is stored.
type FileDescriptor struct {
	FileName      string `json:"file_name"`
	FileReference string `json:"file_reference"`
}

type HistoryEntry struct {
	Timestamp time.Time `json:"timestamp"` // UTC
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
}

// Document is the state of one (student, type) slot.
type Document struct {
	Type            Type           `json:"type"`
	Label           string         `json:"label"`
	Status          Status         `json:"status"`
	StatusLabel     string         `json:"status_label"`
	FileName        string         `json:"file_name,omitempty"`
	FileReference   string         `json:"file_reference,omitempty"`
	RejectionReason string         `json:"rejection_reason,omitempty"`
	UpdatedAt       time.Time      `json:"updated_at"` // UTC; zero for a missing slot
	History         []HistoryEntry `json:"history"`    // oldest first; never edited in place
}

func missingDocument(t Type) Document {
	return Document{Type: t, Status: StatusMissing}.withLabels()
}

func (d Document) withLabels() Document {
	d.Label = d.Type.Label()
	d.StatusLabel = d.Status.Label()
	if d.History == nil {
		d.History = []HistoryEntry{}
	}
	return d
}

// Category groups students for dashboard statistics.
type Category string

const (
	CategoryComplete           Category = "complete"
	CategoryPartiallySubmitted Category = "partially_submitted"
	CategoryNoDocuments        Category = "no_documents"
)

// Categorize: complete when every type is approved, partially submitted when something is approved or pending.
func Categorize(completionCount int, hasAnyPending bool) Category {
	switch {
	case completionCount == len(AllTypes):
		return CategoryComplete
	case hasAnyPending || completionCount > 0:
		return CategoryPartiallySubmitted
	default:
		return CategoryNoDocuments
	}
}

// Set is the document aggregate of one student. Slots without a record read as missing.
type Set struct {
	StudentID string
	docs      map[Type]Document
}

func NewSet(studentID string) *Set {
	return &Set{StudentID: studentID, docs: make(map[Type]Document, len(AllTypes))}
}

// Document returns the slot of type t, materializing it as missing when it has no record.
func (s *Set) Document(t Type) Document {
	if doc, ok := s.docs[t]; ok {
		return doc
	}
	return missingDocument(t)
}

// Documents returns every slot, in AllTypes order.
func (s *Set) Documents() []Document {
	docs := make([]Document, 0, len(AllTypes))
	for _, t := range AllTypes {
		docs = append(docs, s.Document(t))
	}
	return docs
}

func (s *Set) Status(t Type) Status {
	return s.Document(t).Status
}

// CompletionCount is the number of approved slots, out of len(AllTypes).
func (s *Set) CompletionCount() int {
	var count int
	for _, doc := range s.docs {
		if doc.Status == StatusApproved {
			count++
		}
	}
	return count
}

func (s *Set) HasAnyPending() bool {
	for _, doc := range s.docs {
		if doc.Status == StatusPending {
			return true
		}
	}
	return false
}

func (s *Set) IsComplete() bool {
	return s.CompletionCount() == len(AllTypes)
}

func (s *Set) Category() Category {
	return Categorize(s.CompletionCount(), s.HasAnyPending())
}

func (s *Set) put(doc Document) {
	s.docs[doc.Type] = doc.withLabels()
}

func (s *Set) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		StudentID       string     `json:"student_id"`
		Documents       []Document `json:"documents"`
		CompletionCount int        `json:"completion_count"`
		RequiredCount   int        `json:"required_count"`
		HasAnyPending   bool       `json:"has_any_pending"`
		Category        Category   `json:"category"`
	}{
		StudentID:       s.StudentID,
		Documents:       s.Documents(),
		CompletionCount: s.CompletionCount(),
		RequiredCount:   len(AllTypes),
		HasAnyPending:   s.HasAnyPending(),
		Category:        s.Category(),
	})
}

// Record is the persisted shape of a slot. Type and Status hold whatever the store returned.
type Record struct {
	StudentID       string
	Type            string
	Status          string
	FileName        string
	FileReference   string
	RejectionReason string
	UpdatedAt       time.Time
	History         []HistoryEntry
}

// NewSetFromRecords rebuilds a Set from persisted records, normalizing every status.
// Records of an unknown type fail with ErrInvalidDocumentType.
func NewSetFromRecords(studentID string, recs []Record) (*Set, error) {
	set := NewSet(studentID)
	for _, rec := range recs {
		t, err := ParseType(rec.Type)
		if err != nil {
			return nil, err
		}
		doc := Document{
			Type:          t,
			Status:        Normalize(rec.Status, rec.FileName != "" || rec.FileReference != ""),
			FileName:      rec.FileName,
			FileReference: rec.FileReference,
			UpdatedAt:     rec.UpdatedAt,
			History:       rec.History,
		}
		if doc.Status == StatusRejected {
			doc.RejectionReason = rec.RejectionReason
		}
		set.put(doc)
	}
	return set, nil
}

// Records returns the persistence shape of every slot that holds a record.
func (s *Set) Records() []Record {
	recs := make([]Record, 0, len(s.docs))
	for _, t := range AllTypes {
		if doc, ok := s.docs[t]; ok {
			recs = append(recs, doc.Record(s.StudentID))
		}
	}
	return recs
}

func (d Document) Record(studentID string) Record {
	return Record{
		StudentID:       studentID,
		Type:            string(d.Type),
		Status:          string(d.Status),
		FileName:        d.FileName,
		FileReference:   d.FileReference,
		RejectionReason: d.RejectionReason,
		UpdatedAt:       d.UpdatedAt,
		History:         d.History,
	}
}
