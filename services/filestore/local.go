package filestore

import (
	"context"
	"io"
	"path"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/trezcool/dossiers/core"
	"github.com/trezcool/dossiers/core/document"
)

// LocalStore writes files under a root directory of an afero filesystem.
// References look like <student id>/<type>/<uuid><ext>.
type LocalStore struct {
	fs      afero.Fs
	root    string
	maxSize int64
}

func NewLocalStore(fs afero.Fs, conf core.StorageConfig) *LocalStore {
	return &LocalStore{fs: fs, root: conf.LocalRoot, maxSize: conf.MaxUploadSize}
}

func (s *LocalStore) Store(ctx context.Context, up document.FileUpload) (document.FileDescriptor, error) {
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

	ref := path.Join(up.StudentID, string(up.Type), uuid.NewString()+extension(mime))
	fp := filepath.Join(s.root, filepath.FromSlash(ref))
	if err = s.fs.MkdirAll(filepath.Dir(fp), 0o755); err != nil {
		return document.FileDescriptor{}, errors.Wrap(err, "creating directory")
	}
	if err = s.write(ctx, fp, content); err != nil {
		_ = s.fs.Remove(fp)
		return document.FileDescriptor{}, err
	}
	return document.FileDescriptor{FileName: name, FileReference: ref}, nil
}

func (s *LocalStore) write(ctx context.Context, fp string, content io.Reader) error {
	f, err := s.fs.Create(fp)
	if err != nil {
		return errors.Wrap(err, "creating file")
	}
	defer func() { _ = f.Close() }()

	src := io.Reader(ctxReader{ctx: ctx, r: content})
	if s.maxSize > 0 {
		src = io.LimitReader(src, s.maxSize+1)
	}
	n, err := io.Copy(f, src)
	if err != nil {
		return errors.Wrap(err, "writing file")
	}
	if s.maxSize > 0 && n > s.maxSize {
		return document.ErrFileTooLarge
	}
	return f.Sync()
}

// ctxReader stops reading once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr ctxReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}
