package document

import "testing"

func TestActivityLine(t *testing.T) {
	tests := []struct {
		name    string
		action  Action
		typ     Type
		student string
		reason  string
		want    string
	}{
		{
			name: "upload", action: ActionUpload, typ: BirthCertificate, student: "Awa Diallo",
			want: "Document chargé: Extrait de naissance - Élève: Awa Diallo",
		},
		{
			name: "approve without student", action: ActionApprove, typ: VaccinationRecord, student: "  ",
			want: "Document validé: Carnet de vaccination",
		},
		{
			name: "reject", action: ActionReject, typ: ParentalAuthorization, student: "Awa Diallo", reason: "non signée",
			want: "Document rejeté: Autorisation parentale - Élève: Awa Diallo - Motif: non signée",
		},
		{
			name: "reason ignored on approval", action: ActionApprove, typ: SchoolRecord, reason: "lol",
			want: "Document validé: Fiche scolaire",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ActivityLine(tt.action, tt.typ, tt.student, tt.reason); got != tt.want {
				t.Errorf("ActivityLine() = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestMessage(t *testing.T) {
	doc := Document{Type: SchoolRecord, FileName: "fiche.pdf"}
	tests := []struct {
		action Action
		want   string
	}{
		{ActionUpload, "Document chargé : fiche.pdf"},
		{ActionApprove, "Document 'Fiche scolaire' validé."},
		{ActionReject, "Document 'Fiche scolaire' rejeté."},
	}
	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			if got := Message(tt.action, doc); got != tt.want {
				t.Errorf("Message() = %q; want %q", got, tt.want)
			}
		})
	}
}
