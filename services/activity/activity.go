package activitysvc

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/trezcool/dossiers/core"
	"github.com/trezcool/dossiers/core/document"
)

const activitiesPath = "/activities"

// LoggerService writes activity lines to the application logger.
type LoggerService struct {
	logger core.Logger
}

var _ document.ActivityLogger = (*LoggerService)(nil)

func NewLoggerService(logger core.Logger) *LoggerService {
	return &LoggerService{logger: logger}
}

func (svc *LoggerService) LogActivity(_ context.Context, act document.Activity) error {
	svc.logger.Info(fmt.Sprintf("activity [%s] %s: %s", act.Category, act.UserName, act.Action))
	return nil
}

// RemoteService posts activities to the audit API.
type RemoteService struct {
	client *resty.Client
}

var _ document.ActivityLogger = (*RemoteService)(nil)

func NewRemoteService(conf core.ActivityConfig) *RemoteService {
	client := resty.New().
		SetBaseURL(conf.RemoteURL).
		SetTimeout(conf.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetRetryCount(2).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(time.Second).
		SetAllowNonIdempotentRetry(true) // activities are POSTed
	client.AddRetryCondition(retryCondition)
	if conf.RemoteToken != "" {
		client.SetAuthToken(conf.RemoteToken)
	}
	return &RemoteService{client: client}
}

func (svc *RemoteService) LogActivity(ctx context.Context, act document.Activity) error {
	resp, err := svc.client.R().SetContext(ctx).SetBody(act).Post(activitiesPath)
	if err != nil {
		return errors.Wrap(err, "posting activity")
	}
	if resp.IsError() {
		return errors.Errorf("posting activity: status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// retryCondition retries network errors and server side failures.
func retryCondition(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if r == nil {
		return false
	}
	code := r.StatusCode()
	return code >= http.StatusInternalServerError || code == http.StatusTooManyRequests
}
