package document

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Status is the canonical state of a document slot.
type Status string

const (
	StatusMissing  Status = "missing"
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

var statusLabels = map[Status]string{
	StatusMissing:  "Manquant",
	StatusPending:  "En attente",
	StatusApproved: "Validé",
	StatusRejected: "Rejeté",
}

// Label returns the display name of the status.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

type normalizeRule struct {
	markers []string
	status  Status
}

// normalizeRules are matched in order against the folded token; the first rule with a marker contained in it wins.
// Pending comes first so that "En attente de validation" is not read as approved,
// and negated approvals ("invalidé", "unapproved") come before the approval markers.
var normalizeRules = []normalizeRule{
	{markers: []string{"attente", "pending"}, status: StatusPending},
	{markers: []string{"invalid", "non valid", "non-valid", "unapprov", "disapprov", "not approv"}, status: StatusRejected},
	{markers: []string{"valid", "approv"}, status: StatusApproved},
	{markers: []string{"rejet", "reject", "refus"}, status: StatusRejected},
}

// Normalize maps a raw status label, from any backend version or locale, onto a canonical Status.
// It never fails: unknown tokens become Pending when a file is attached and Missing otherwise.
func Normalize(raw string, hasFile bool) Status {
	token := foldToken(raw)
	for _, rule := range normalizeRules {
		for _, marker := range rule.markers {
			if strings.Contains(token, marker) {
				return rule.status
			}
		}
	}
	if hasFile {
		return StatusPending
	}
	return StatusMissing
}

// foldToken lowers s, strips its diacritics and collapses its whitespace.
func foldToken(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}
	return strings.Join(strings.Fields(cases.Fold().String(s)), " ")
}
