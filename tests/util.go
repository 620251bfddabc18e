package testutil

import (
	"context"
	"database/sql"
	"io"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/trezcool/dossiers/core"
	"github.com/trezcool/dossiers/core/document"
	"github.com/trezcool/dossiers/core/student"
	emailsvc "github.com/trezcool/dossiers/services/email"
	"github.com/trezcool/dossiers/services/filestore"
	logsvc "github.com/trezcool/dossiers/services/logger"
	"github.com/trezcool/dossiers/storage/database"
	inmemdb "github.com/trezcool/dossiers/storage/database/inmem"
)

var (
	// PDFContent is sniffed as application/pdf.
	PDFContent = []byte("%PDF-1.4\n1 0 obj << /Type /Catalog >> endobj\ntrailer << /Root 1 0 R >>\n%%EOF\n")
	// PNGContent is sniffed as image/png.
	PNGContent = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	// TextContent is refused by the file stores.
	TextContent = []byte("just some text, not a document")
)

// NewLogger returns a logger writing nowhere, with Rollbar disabled.
func NewLogger(conf *core.Config) core.Logger {
	return logsvc.NewRollbarLogger(log.New(io.Discard, "TEST : ", log.LstdFlags), conf)
}

// PrepareDB opens the test Postgres database, migrates it and empties it.
// Tests are skipped unless TEST_DATABASE_HOST is set.
func PrepareDB(t *testing.T) *sql.DB {
	if os.Getenv("TEST_DATABASE_HOST") == "" {
		t.Skip("TEST_DATABASE_HOST is not set")
	}
	t.Setenv("ENV", "TEST")
	conf := core.NewConfig()

	if err := database.CreateIfNotExist(conf); err != nil {
		t.Fatalf("database.CreateIfNotExist() failed: %v", err)
	}
	db, err := database.Open(conf)
	if err != nil {
		t.Fatalf("database.Open() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(context.Background(), db, "up"); err != nil {
		t.Fatalf("database.Migrate() failed: %v", err)
	}
	if _, err = db.Exec("TRUNCATE students CASCADE"); err != nil {
		t.Fatalf("truncating tables failed: %v", err)
	}
	return db
}

func CreateStudent(
	t *testing.T,
	repo student.Repository,
	firstName, lastName, guardianEmail string,
	createdAt ...time.Time,
) student.Student {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	std, err := repo.CreateStudent(student.Student{
		ID:            uuid.NewString(),
		FirstName:     firstName,
		LastName:      lastName,
		GuardianEmail: guardianEmail,
		CreatedAt:     tstamp,
		UpdatedAt:     tstamp,
	})
	if err != nil {
		t.Fatalf("CreateStudent() failed: %v", err)
	}
	return std
}

// Clock returns a time source starting at start and moving step further at each call.
func Clock(start time.Time, step time.Duration) func() time.Time {
	var mu sync.Mutex
	now := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := now
		now = now.Add(step)
		return t
	}
}

// ActivityRecorder keeps the activities it receives; it fails with Err when set.
type ActivityRecorder struct {
	mu         sync.Mutex
	Err        error
	activities []document.Activity
}

func (r *ActivityRecorder) LogActivity(_ context.Context, act document.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.activities = append(r.activities, act)
	return nil
}

func (r *ActivityRecorder) Activities() []document.Activity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]document.Activity(nil), r.activities...)
}

// Services wires the document services on the in-memory DB and filesystem.
type Services struct {
	Conf        *core.Config
	Logger      core.Logger
	DB          *inmemdb.DB
	StudentRepo student.Repository
	Fs          afero.Fs
	Mail        *emailsvc.ConsoleService
	Activities  *ActivityRecorder
	Students    *student.Service
	Documents   *document.Service
}

// NewServices is NewServicesWithStore with the local store on a memory filesystem.
func NewServices(opts ...document.ManagerOption) *Services {
	return NewServicesWithStore(nil, opts...)
}

// NewServicesWithStore uses files as document store, or a local store on a memory filesystem when nil.
func NewServicesWithStore(files document.FileStore, opts ...document.ManagerOption) *Services {
	conf := core.NewTestConfig()
	logger := NewLogger(conf)
	core.ParseEmailTemplates(logger, true)

	db := inmemdb.Open()
	fs := afero.NewMemMapFs()
	if files == nil {
		files = filestore.NewLocalStore(fs, conf.Storage)
	}

	svcs := &Services{
		Conf:        conf,
		Logger:      logger,
		DB:          db,
		StudentRepo: inmemdb.NewStudentRepository(db),
		Fs:          fs,
		Mail:        emailsvc.NewConsoleServiceMock(conf, logger),
		Activities:  new(ActivityRecorder),
	}
	svcs.Students = student.NewService(svcs.StudentRepo)
	svcs.Documents = document.NewService(
		inmemdb.NewDocumentRepository(db),
		svcs.Students,
		files,
		svcs.Activities,
		svcs.Mail,
		logger,
		opts...,
	)
	return svcs
}
