package document

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw     string
		hasFile bool
		want    Status
	}{
		// approved
		{raw: "Validé", want: StatusApproved},
		{raw: "approved", want: StatusApproved},
		{raw: "APPROVED", want: StatusApproved},
		{raw: "Document validé", want: StatusApproved},
		{raw: "  valide ", want: StatusApproved},
		{raw: "Approve", hasFile: true, want: StatusApproved},
		// pending
		{raw: "En attente", want: StatusPending},
		{raw: "pending", want: StatusPending},
		{raw: "En attente de validation", want: StatusPending},
		{raw: "EN   ATTENTE", want: StatusPending},
		// rejected
		{raw: "Rejeté", want: StatusRejected},
		{raw: "rejected", want: StatusRejected},
		{raw: "REJETE", hasFile: true, want: StatusRejected},
		{raw: "Refusé", want: StatusRejected},
		{raw: "Invalidated", hasFile: true, want: StatusRejected},
		{raw: "Non validé", hasFile: true, want: StatusRejected},
		{raw: "unapproved", want: StatusRejected},
		// fallbacks
		{raw: "", want: StatusMissing},
		{raw: "", hasFile: true, want: StatusPending},
		{raw: "missing", want: StatusMissing},
		{raw: "Manquant", want: StatusMissing},
		{raw: "Manquant", hasFile: true, want: StatusPending},
		{raw: "¯\\_(ツ)_/¯", want: StatusMissing},
		{raw: "garbage", hasFile: true, want: StatusPending},
	}
	for _, tt := range tests {
		name := tt.raw
		if tt.hasFile {
			name += " (with file)"
		}
		t.Run(name, func(t *testing.T) {
			if got := Normalize(tt.raw, tt.hasFile); got != tt.want {
				t.Errorf("Normalize(%q, %v) = %v; want %v", tt.raw, tt.hasFile, got, tt.want)
			}
		})
	}
}

func TestNormalize_labels(t *testing.T) {
	// every canonical value and its label read back as themselves
	for _, s := range []Status{StatusPending, StatusApproved, StatusRejected} {
		if got := Normalize(string(s), true); got != s {
			t.Errorf("Normalize(%q) = %v; want %v", s, got, s)
		}
		if got := Normalize(s.Label(), true); got != s {
			t.Errorf("Normalize(%q) = %v; want %v", s.Label(), got, s)
		}
	}
	if got := Normalize(StatusMissing.Label(), false); got != StatusMissing {
		t.Errorf("Normalize(%q) = %v; want %v", StatusMissing.Label(), got, StatusMissing)
	}
}

func TestStatus_Label(t *testing.T) {
	tests := []struct {
		status Status
		want   string
	}{
		{StatusMissing, "Manquant"},
		{StatusPending, "En attente"},
		{StatusApproved, "Validé"},
		{StatusRejected, "Rejeté"},
		{Status("lol"), "lol"},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.Label(); got != tt.want {
				t.Errorf("Label() = %v; want %v", got, tt.want)
			}
		})
	}
}
