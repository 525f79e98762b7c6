package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/cenkalti/backoff/v4"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"phishtrack/config"
)

// FileRepo stores uploaded result files in Google Drive under the
// configured base folder.
type FileRepo interface {
	Upload(ctx context.Context, fileName string, data io.Reader) (string, error)
	Download(ctx context.Context, fileID string) ([]byte, error)
	Close(ctx context.Context) error
}

type fileRepo struct {
	baseFolderID string
	adminEmail   string

	srv *drive.Service
}

func NewFileRepo(ctx context.Context, cfg config.GoogleDrive) (FileRepo, error) {
	b, err := json.Marshal(cfg.GoogleServiceAccount)
	if err != nil {
		return nil, err
	}

	srv, err := drive.NewService(ctx, option.WithCredentialsJSON(b))
	if err != nil {
		return nil, err
	}

	return &fileRepo{
		adminEmail:   cfg.AdminEmail,
		baseFolderID: cfg.BaseFolderID,
		srv:          srv,
	}, nil
}

func (r *fileRepo) Upload(_ context.Context, fileName string, data io.Reader) (string, error) {
	f := &drive.File{
		Name:    fileName,
		Parents: []string{r.baseFolderID},
	}

	file, err := r.srv.Files.Create(f).Media(data).Do()
	if err != nil {
		return "", err
	}

	if err := r.addBasePermissions(file.Id); err != nil {
		return "", err
	}

	return file.Id, nil
}

// Download fetches the raw file content, retrying transient failures
// with exponential backoff.
func (r *fileRepo) Download(ctx context.Context, fileID string) ([]byte, error) {
	var b []byte

	op := func() error {
		resp, err := r.srv.Files.Get(fileID).Download()
		if err != nil {
			return err
		}
		defer func() {
			_ = resp.Body.Close()
		}()

		buf := new(bytes.Buffer)
		if _, err := io.Copy(buf, resp.Body); err != nil {
			return err
		}
		b = buf.Bytes()

		return nil
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		return nil, err
	}

	return b, nil
}

func (r *fileRepo) addBasePermissions(fileID string) error {
	if r.adminEmail == "" {
		return nil
	}

	_, err := r.srv.Permissions.Create(fileID, &drive.Permission{
		Type:         "user",
		Role:         "writer",
		EmailAddress: r.adminEmail,
	}).Do()

	return err
}

func (r *fileRepo) Close(_ context.Context) error {
	return nil
}
