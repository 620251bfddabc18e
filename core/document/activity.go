package document

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ActivityCategory is the audit category of every document activity.
const ActivityCategory = "documents"

// Action is a transition kind.
type Action string

const (
	ActionUpload  Action = "upload"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

var actionVerbs = map[Action]string{
	ActionUpload:  "chargé",
	ActionApprove: "validé",
	ActionReject:  "rejeté",
}

func (a Action) verb() string {
	if v, ok := actionVerbs[a]; ok {
		return v
	}
	return string(a)
}

// Activity is the audit line sent for every transition.
type Activity struct {
	Timestamp time.Time `json:"timestamp"`
	UserName  string    `json:"user_name"`
	Action    string    `json:"action"`
	Category  string    `json:"category"`
	Details   string    `json:"details,omitempty"`
	StudentID string    `json:"student_id"`
}

// ActivityLogger is the audit collaborator.
type ActivityLogger interface {
	LogActivity(ctx context.Context, act Activity) error
}

// ActivityLine renders the audit text of a transition, e.g.
// "Document rejeté: Extrait de naissance - Élève: Awa Diallo - Motif: illisible".
// Audit views display it as is.
func ActivityLine(action Action, t Type, studentName, reason string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Document %s: %s", action.verb(), t.Label())
	if name := strings.TrimSpace(studentName); name != "" {
		b.WriteString(" - Élève: " + name)
	}
	if action == ActionReject && reason != "" {
		b.WriteString(" - Motif: " + reason)
	}
	return b.String()
}

// Message is the short confirmation shown to the user after a transition.
func Message(action Action, doc Document) string {
	if action == ActionUpload {
		return "Document chargé : " + doc.FileName
	}
	return fmt.Sprintf("Document '%s' %s.", doc.Type.Label(), action.verb())
}
