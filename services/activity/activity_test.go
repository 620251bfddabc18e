package activitysvc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/dossiers/core"
	"github.com/trezcool/dossiers/core/document"
)

type infoLogger struct {
	core.Logger
	mu    sync.Mutex
	infos []string
}

func (l *infoLogger) Info(msg string, _ ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, msg)
}

var testActivity = document.Activity{
	Timestamp: time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC),
	UserName:  "Directrice",
	Action:    "Document validé: Fiche scolaire - Élève: Awa Diallo",
	Category:  document.ActivityCategory,
	StudentID: "std-1",
}

func TestLoggerService(t *testing.T) {
	logger := new(infoLogger)
	svc := NewLoggerService(logger)

	require.NoError(t, svc.LogActivity(context.Background(), testActivity))
	assert.Equal(t, []string{"activity [documents] Directrice: Document validé: Fiche scolaire - Élève: Awa Diallo"}, logger.infos)
}

func TestRemoteService(t *testing.T) {
	var (
		calls    int32
		failures int32
		mu       sync.Mutex
		got      document.Activity
		auth     string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if r.Method != http.MethodPost || r.URL.Path != activitiesPath {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if atomic.AddInt32(&failures, -1) >= 0 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		mu.Lock()
		defer mu.Unlock()
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	svc := NewRemoteService(core.ActivityConfig{RemoteURL: srv.URL, RemoteToken: "tkn", Timeout: time.Second})
	ctx := context.Background()

	t.Run("posts", func(t *testing.T) {
		require.NoError(t, svc.LogActivity(ctx, testActivity))
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, "Bearer tkn", auth)
		assert.Equal(t, testActivity, got)
	})

	t.Run("retries server errors", func(t *testing.T) {
		atomic.StoreInt32(&calls, 0)
		atomic.StoreInt32(&failures, 2)
		require.NoError(t, svc.LogActivity(ctx, testActivity))
		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	})

	t.Run("gives up", func(t *testing.T) {
		atomic.StoreInt32(&calls, 0)
		atomic.StoreInt32(&failures, 10)
		assert.Error(t, svc.LogActivity(ctx, testActivity))
		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	})
}

func TestRetryCondition(t *testing.T) {
	tests := []struct {
		name string
		code int
		err  error
		want bool
	}{
		{name: "network error", err: context.DeadlineExceeded, want: true},
		{name: "ok", code: http.StatusCreated},
		{name: "bad request", code: http.StatusBadRequest},
		{name: "too many requests", code: http.StatusTooManyRequests, want: true},
		{name: "server error", code: http.StatusBadGateway, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var resp *resty.Response
			if tt.code != 0 {
				resp = &resty.Response{RawResponse: &http.Response{StatusCode: tt.code}}
			}
			if got := retryCondition(resp, tt.err); got != tt.want {
				t.Errorf("retryCondition() = %v; want %v", got, tt.want)
			}
		})
	}
}
