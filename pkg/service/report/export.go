package report

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"

	"github.com/fusa-lab/talos/pkg/domain/model"
)

// Exporter writes a rendered report somewhere and returns the location it
// was written to.
type Exporter interface {
	Export(ctx context.Context, name string, data []byte) (string, error)
	Close() error
}

// NewExporter builds an exporter for the destination: a gs://bucket[/prefix]
// URL selects Cloud Storage, anything else is treated as a local directory.
func NewExporter(ctx context.Context, dest string) (Exporter, error) {
	if strings.HasPrefix(dest, "gs://") {
		return NewGCSExporter(ctx, dest)
	}
	return NewDirExporter(dest)
}

// DirExporter writes reports into a local directory, creating it on first
// use.
type DirExporter struct {
	dir string
}

// NewDirExporter creates an exporter rooted at dir.
func NewDirExporter(dir string) (*DirExporter, error) {
	if dir == "" {
		return nil, goerr.New("output directory is required")
	}
	return &DirExporter{dir: dir}, nil
}

// Export writes the report file and returns its path.
func (x *DirExporter) Export(_ context.Context, name string, data []byte) (string, error) {
	if err := os.MkdirAll(x.dir, 0750); err != nil {
		return "", goerr.Wrap(err, "failed to create output directory", goerr.V("dir", x.dir))
	}
	path := filepath.Join(x.dir, name)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", goerr.Wrap(err, "failed to write report", goerr.V("path", path))
	}
	return path, nil
}

// Close is a no-op for local export.
func (x *DirExporter) Close() error { return nil }

// GCSExporter writes reports as objects in a Cloud Storage bucket.
type GCSExporter struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewGCSExporter creates an exporter for a gs://bucket[/prefix] URL. The
// client uses application default credentials.
func NewGCSExporter(ctx context.Context, url string) (*GCSExporter, error) {
	rest, ok := strings.CutPrefix(url, "gs://")
	if !ok || rest == "" {
		return nil, goerr.New("invalid Cloud Storage URL", goerr.V("url", url))
	}
	bucket, prefix, _ := strings.Cut(rest, "/")
	if bucket == "" {
		return nil, goerr.New("bucket name is required", goerr.V("url", url))
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Cloud Storage client")
	}
	return &GCSExporter{client: client, bucket: bucket, prefix: prefix}, nil
}

// Export uploads the report and returns its gs:// location.
func (x *GCSExporter) Export(ctx context.Context, name string, data []byte) (string, error) {
	object := name
	if x.prefix != "" {
		object = strings.TrimSuffix(x.prefix, "/") + "/" + name
	}

	w := x.client.Bucket(x.bucket).Object(object).NewWriter(ctx)
	w.ContentType = "text/markdown"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", goerr.Wrap(err, "failed to upload report", goerr.V("object", object))
	}
	if err := w.Close(); err != nil {
		return "", goerr.Wrap(err, "failed to finalize upload", goerr.V("object", object))
	}

	return "gs://" + x.bucket + "/" + object, nil
}

// Close releases the storage client.
func (x *GCSExporter) Close() error {
	return x.client.Close()
}

// Filename derives the report file name from the session's item, keeping
// letters and digits and folding separators to underscores.
func Filename(sess *model.Session) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(sess.ItemName) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == ' ', r == '-', r == '_':
			sb.WriteRune('_')
		}
	}
	slug := strings.Trim(sb.String(), "_")
	if slug == "" {
		slug = string(sess.ID)
	}
	return slug + "_hara.md"
}
