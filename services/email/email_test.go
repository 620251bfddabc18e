package emailsvc

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/mail"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/dossiers/core"
)

type testLogger struct {
	mu     sync.Mutex
	errors []string
}

func (l *testLogger) Debug(string, ...interface{}) {}
func (l *testLogger) Info(string, ...interface{})  {}
func (l *testLogger) Warn(string, ...interface{})  {}
func (l *testLogger) Fatal(string, ...interface{}) {}
func (l *testLogger) Error(msg string, _ ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

func rejectionMessage() *core.EmailMessage {
	return &core.EmailMessage{
		To:           []mail.Address{{Name: "Awa Diallo", Address: "parent@test.cd"}},
		Subject:      "Document rejeté : Fiche scolaire",
		TemplateName: "document_rejected",
		TemplateData: map[string]string{
			"StudentID":     "std-1",
			"StudentName":   "Awa Diallo",
			"DocumentLabel": "Fiche scolaire",
			"Reason":        "incomplète",
		},
	}
}

func TestConsoleService(t *testing.T) {
	conf := core.NewTestConfig()
	logger := new(testLogger)
	core.ParseEmailTemplates(logger, true)

	var out bytes.Buffer
	svc := NewConsoleService(conf, logger, &out)
	svc.sync = true

	msg := rejectionMessage()
	require.NoError(t, msg.Attach(strings.NewReader("%PDF-1.4\n"), "fiche.pdf"))
	svc.SendMessages(
		msg,
		&core.EmailMessage{Subject: "no recipient", BodyStr: "lost"},
		&core.EmailMessage{To: msg.To, TemplateName: "unknown"},
	)

	assert.Len(t, svc.SentMessages(), 1)
	assert.Len(t, logger.errors, 1, "unknown template is reported")

	written := out.String()
	assert.Contains(t, written, "From: \"Dossiers\" <noreply@localhost>\r\n")
	assert.Contains(t, written, "Subject: [Dossiers] Document rejeté : Fiche scolaire\r\n")
	assert.Contains(t, written, "To: \"Awa Diallo\" <parent@test.cd>\r\n")
	assert.Contains(t, written, "multipart/mixed")
	assert.Contains(t, written, "Motif : incomplète")
	assert.Contains(t, written, "filename=fiche.pdf")
	assert.NotContains(t, written, "lost")
}

func TestConsoleServiceMock(t *testing.T) {
	conf := core.NewTestConfig()
	logger := new(testLogger)
	core.ParseEmailTemplates(logger, true)
	svc := NewConsoleServiceMock(conf, logger)

	svc.SendMessages(rejectionMessage(), rejectionMessage())
	sent := svc.SentMessages()
	if assert.Len(t, sent, 2) {
		assert.Contains(t, sent[0].TextContent, "Le document « Fiche scolaire » de Awa Diallo a été rejeté.")
		assert.Contains(t, sent[0].HTMLContent, "<strong>Awa Diallo</strong>")
	}
}

func TestSendgridService(t *testing.T) {
	type sgAddress struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	type sgBody struct {
		From             sgAddress `json:"from"`
		Personalizations []struct {
			To      []sgAddress `json:"to"`
			Subject string      `json:"subject"`
		} `json:"personalizations"`
		Content []struct {
			Type  string `json:"type"`
			Value string `json:"value"`
		} `json:"content"`
	}

	var (
		mu     sync.Mutex
		bodies []sgBody
		auth   string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != sendgridEndpoint {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		data, _ := io.ReadAll(r.Body)
		var body sgBody
		if err := json.Unmarshal(data, &body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		mu.Lock()
		defer mu.Unlock()
		auth = r.Header.Get("Authorization")
		bodies = append(bodies, body)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	conf := core.NewTestConfig()
	conf.SendgridApiKey = "sg-key"
	logger := new(testLogger)
	core.ParseEmailTemplates(logger, true)

	svc := NewSendgridService(conf, logger)
	svc.host = srv.URL
	svc.SendMessages(rejectionMessage())
	svc.Wait()

	assert.Empty(t, logger.errors)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "Bearer sg-key", auth)
	if assert.Len(t, bodies, 1) {
		body := bodies[0]
		assert.Equal(t, sgAddress{Name: "Dossiers", Email: "noreply@localhost"}, body.From)
		if assert.Len(t, body.Personalizations, 1) {
			assert.Equal(t, "[Dossiers] Document rejeté : Fiche scolaire", body.Personalizations[0].Subject)
			assert.Equal(t, []sgAddress{{Name: "Awa Diallo", Email: "parent@test.cd"}}, body.Personalizations[0].To)
		}
		if assert.Len(t, body.Content, 2) {
			assert.Equal(t, "text/plain", body.Content[0].Type)
			assert.Contains(t, body.Content[0].Value, "Motif : incomplète")
			assert.Equal(t, "text/html", body.Content[1].Type)
		}
	}
}

func TestSendgridService_error(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	conf := core.NewTestConfig()
	logger := new(testLogger)
	core.ParseEmailTemplates(logger, true)

	svc := NewSendgridService(conf, logger)
	svc.host = srv.URL
	svc.SendMessages(rejectionMessage())
	svc.Wait()

	logger.mu.Lock()
	defer logger.mu.Unlock()
	assert.Equal(t, []string{"sending email"}, logger.errors)
}
