package document

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		raw     string
		want    Type
		wantErr error
	}{
		{raw: "birth_certificate", want: BirthCertificate},
		{raw: "BirthCertificate", want: BirthCertificate},
		{raw: "extrait de naissance", want: BirthCertificate},
		{raw: "VACCINATION_RECORD", want: VaccinationRecord},
		{raw: "Carnet de vaccination", want: VaccinationRecord},
		{raw: "parentalAuthorization", want: ParentalAuthorization},
		{raw: " Fiche  scolaire ", want: SchoolRecord},
		{raw: "SchoolRecord", want: SchoolRecord},
		{raw: "", wantErr: ErrInvalidDocumentType},
		{raw: "passport", wantErr: ErrInvalidDocumentType},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseType(tt.raw)
			if errors.Cause(err) != tt.wantErr {
				t.Fatalf("ParseType() error = %v; wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseType() = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		name       string
		completion int
		anyPending bool
		want       Category
	}{
		{name: "nothing", want: CategoryNoDocuments},
		{name: "pending only", anyPending: true, want: CategoryPartiallySubmitted},
		{name: "one approved", completion: 1, want: CategoryPartiallySubmitted},
		{name: "three approved, one pending", completion: 3, anyPending: true, want: CategoryPartiallySubmitted},
		{name: "all approved", completion: len(AllTypes), want: CategoryComplete},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Categorize(tt.completion, tt.anyPending); got != tt.want {
				t.Errorf("Categorize() = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestSet_empty(t *testing.T) {
	set := NewSet("std-1")

	assert.Equal(t, 0, set.CompletionCount())
	assert.False(t, set.HasAnyPending())
	assert.False(t, set.IsComplete())
	assert.Equal(t, CategoryNoDocuments, set.Category())
	assert.Empty(t, set.Records())

	docs := set.Documents()
	if assert.Len(t, docs, len(AllTypes)) {
		for i, doc := range docs {
			assert.Equal(t, AllTypes[i], doc.Type)
			assert.Equal(t, StatusMissing, doc.Status)
			assert.Equal(t, "Manquant", doc.StatusLabel)
			assert.Equal(t, AllTypes[i].Label(), doc.Label)
			assert.NotNil(t, doc.History)
		}
	}
}

func TestNewSetFromRecords(t *testing.T) {
	now := time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC)
	recs := []Record{
		{Type: "BirthCertificate", Status: "Validé", FileName: "acte.pdf", UpdatedAt: now},
		{Type: "vaccination_record", Status: "En attente de validation", FileName: "carnet.png", RejectionReason: "stale"},
		{Type: "Autorisation parentale", Status: "Rejeté", FileReference: "ref-1", RejectionReason: "illisible"},
		{Type: "school_record", Status: ""},
	}

	set, err := NewSetFromRecords("std-1", recs)
	if err != nil {
		t.Fatalf("NewSetFromRecords() failed: %v", err)
	}

	assert.Equal(t, StatusApproved, set.Status(BirthCertificate))
	assert.Equal(t, StatusPending, set.Status(VaccinationRecord))
	assert.Empty(t, set.Document(VaccinationRecord).RejectionReason, "reason only survives on rejected slots")
	assert.Equal(t, StatusRejected, set.Status(ParentalAuthorization))
	assert.Equal(t, "illisible", set.Document(ParentalAuthorization).RejectionReason)
	assert.Equal(t, StatusMissing, set.Status(SchoolRecord))
	assert.Equal(t, 1, set.CompletionCount())
	assert.True(t, set.HasAnyPending())
	assert.Equal(t, CategoryPartiallySubmitted, set.Category())

	_, err = NewSetFromRecords("std-1", []Record{{Type: "passport", Status: "approved"}})
	if errors.Cause(err) != ErrInvalidDocumentType {
		t.Errorf("NewSetFromRecords() error = %v; wantErr %v", err, ErrInvalidDocumentType)
	}
}

func TestSet_roundTrip(t *testing.T) {
	set, err := NewSetFromRecords("std-1", []Record{
		{Type: "birth_certificate", Status: "APPROVED", FileName: "a.pdf"},
		{Type: "VaccinationRecord", Status: "En attente", FileName: "b.pdf"},
		{Type: "parental_authorization", Status: "refusé", FileName: "c.pdf", RejectionReason: "flou"},
		{Type: "school_record", Status: "???", FileName: "d.pdf"},
	})
	if err != nil {
		t.Fatalf("NewSetFromRecords() failed: %v", err)
	}

	reloaded, err := NewSetFromRecords(set.StudentID, set.Records())
	if err != nil {
		t.Fatalf("NewSetFromRecords() failed: %v", err)
	}
	for _, typ := range AllTypes {
		assert.Equal(t, set.Document(typ), reloaded.Document(typ), typ)
	}
}

func TestSet_MarshalJSON(t *testing.T) {
	set := NewSet("std-1")
	set.put(Document{Type: SchoolRecord, Status: StatusPending, FileName: "fiche.pdf"})

	data, err := json.Marshal(set)
	if err != nil {
		t.Fatalf("json.Marshal() failed: %v", err)
	}

	var got struct {
		StudentID       string     `json:"student_id"`
		Documents       []Document `json:"documents"`
		CompletionCount int        `json:"completion_count"`
		RequiredCount   int        `json:"required_count"`
		HasAnyPending   bool       `json:"has_any_pending"`
		Category        Category   `json:"category"`
	}
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v", err)
	}
	assert.Equal(t, "std-1", got.StudentID)
	assert.Len(t, got.Documents, len(AllTypes))
	assert.Equal(t, "En attente", got.Documents[3].StatusLabel)
	assert.Equal(t, "fiche.pdf", got.Documents[3].FileName)
	assert.Equal(t, 0, got.CompletionCount)
	assert.Equal(t, 4, got.RequiredCount)
	assert.True(t, got.HasAnyPending)
	assert.Equal(t, CategoryPartiallySubmitted, got.Category)
}
