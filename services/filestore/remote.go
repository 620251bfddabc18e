package filestore

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/trezcool/dossiers/core"
	"github.com/trezcool/dossiers/core/document"
)

const uploadPath = "/documents/upload"

// RemoteStore sends files to the documents API, which owns the bytes.
type RemoteStore struct {
	client  *resty.Client
	maxSize int64
}

type uploadResponse struct {
	ID       string `json:"id"`
	FileName string `json:"fileName"`
	FilePath string `json:"filePath"`
}

func NewRemoteStore(conf core.StorageConfig, timeout time.Duration) *RemoteStore {
	client := resty.New().
		SetBaseURL(conf.RemoteURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	if conf.RemoteToken != "" {
		client.SetAuthToken(conf.RemoteToken)
	}
	return &RemoteStore{client: client, maxSize: conf.MaxUploadSize}
}

func (s *RemoteStore) Store(ctx context.Context, up document.FileUpload) (document.FileDescriptor, error) {
	name := cleanFileName(up.FileName)
	if name == "" {
		return document.FileDescriptor{}, document.ErrEmptyFile
	}
	if s.maxSize > 0 && up.Size > s.maxSize {
		return document.FileDescriptor{}, document.ErrFileTooLarge
	}

	mime, content, err := sniff(up.Content)
	if err != nil {
		return document.FileDescriptor{}, err
	}
	if !isAllowed(mime) {
		return document.FileDescriptor{}, errors.Wrap(document.ErrUnsupportedFile, mime)
	}

	var res uploadResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetMultipartField("file", name, mime, content).
		SetFormData(map[string]string{
			"studentId": up.StudentID,
			"type":      string(up.Type),
			"title":     up.Type.Label(),
		}).
		SetResult(&res).
		Post(uploadPath)
	if err != nil {
		return document.FileDescriptor{}, errors.Wrap(err, "uploading file")
	}
	if resp.IsError() {
		return document.FileDescriptor{}, errors.Errorf("uploading file: status %d: %s", resp.StatusCode(), resp.String())
	}

	ref := res.ID
	if ref == "" {
		ref = res.FilePath
	}
	if ref == "" {
		return document.FileDescriptor{}, errors.New("uploading file: no reference in response")
	}
	if res.FileName != "" {
		name = res.FileName
	}
	return document.FileDescriptor{FileName: name, FileReference: ref}, nil
}
