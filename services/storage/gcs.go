package storagesvc

import (
	"context"
	"encoding/json"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/pkg/errors"
	"google.golang.org/api/option"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/monitoring"
)

type serviceAccount struct {
	ClientEmail string `json:"client_email"`
	PrivateKey  string `json:"private_key"`
}

// Bucket stores files in a google cloud storage bucket.
type Bucket struct {
	client     *storage.Client
	bucket     string
	accessID   string
	privateKey []byte
	expiration time.Duration
	now        func() time.Time
}

var _ monitoring.FileStorage = (*Bucket)(nil)

func NewBucket(ctx context.Context, conf *core.Config) (*Bucket, error) {
	data, err := ioutil.ReadFile(conf.Storage.CredentialsFile)
	if err != nil {
		return nil, errors.Wrap(err, "reading storage credentials")
	}
	var sa serviceAccount
	if err := json.Unmarshal(data, &sa); err != nil {
		return nil, errors.Wrap(err, "decoding storage credentials")
	}

	client, err := storage.NewClient(ctx, option.WithCredentialsJSON(data))
	if err != nil {
		return nil, errors.Wrap(err, "creating storage client")
	}
	return &Bucket{
		client:     client,
		bucket:     conf.Storage.Bucket,
		accessID:   sa.ClientEmail,
		privateKey: []byte(sa.PrivateKey),
		expiration: conf.Storage.SignedURLExpiration,
		now:        time.Now,
	}, nil
}

func (b *Bucket) Upload(ctx context.Context, name, contentType string, data io.Reader) error {
	w := b.client.Bucket(b.bucket).Object(name).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, data); err != nil {
		_ = w.Close()
		return errors.Wrapf(err, "uploading %s", name)
	}
	return errors.Wrapf(w.Close(), "uploading %s", name)
}

// SignedURL returns a temporary GET url of the object.
func (b *Bucket) SignedURL(name string) (string, error) {
	u, err := storage.SignedURL(b.bucket, name, &storage.SignedURLOptions{
		GoogleAccessID: b.accessID,
		PrivateKey:     b.privateKey,
		Method:         http.MethodGet,
		Expires:        b.now().Add(b.expiration),
		Scheme:         storage.SigningSchemeV4,
	})
	return u, errors.Wrapf(err, "signing %s", name)
}

func (b *Bucket) Close() error {
	return b.client.Close()
}

// DownloadsPath is the API path local files are served under.
const DownloadsPath = "/downloads"

// Open returns the configured bucket, or a Disk under <workdir>/downloads when no bucket is set.
// The returned close func releases the bucket client.
func Open(ctx context.Context, conf *core.Config) (monitoring.FileStorage, func() error, error) {
	if conf.Storage.Bucket == "" {
		d, err := NewDisk(filepath.Join(conf.WorkDir, "downloads"), conf.APIURL+DownloadsPath)
		return d, func() error { return nil }, err
	}
	b, err := NewBucket(ctx, conf)
	if err != nil {
		return nil, nil, err
	}
	return b, b.Close, nil
}

// Disk stores files in a local directory. It is used when no bucket is configured.
// Its urls point at baseURL, where the API serves Dir.
type Disk struct {
	dir     string
	baseURL string
}

var _ monitoring.FileStorage = (*Disk)(nil)

func NewDisk(dir, baseURL string) (*Disk, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrap(err, "resolving storage dir")
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, errors.Wrap(err, "creating storage dir")
	}
	return &Disk{dir: abs, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (d *Disk) Dir() string {
	return d.dir
}

func (d *Disk) path(name string) string {
	return filepath.Join(d.dir, filepath.FromSlash(filepath.Clean("/"+name)))
}

func (d *Disk) Upload(_ context.Context, name, _ string, data io.Reader) error {
	p := d.path(name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return errors.Wrapf(err, "uploading %s", name)
	}
	f, err := os.Create(p)
	if err != nil {
		return errors.Wrapf(err, "uploading %s", name)
	}
	if _, err := io.Copy(f, data); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, "uploading %s", name)
	}
	return errors.Wrapf(f.Close(), "uploading %s", name)
}

func (d *Disk) SignedURL(name string) (string, error) {
	p := d.path(name)
	if _, err := os.Stat(p); err != nil {
		return "", errors.Wrapf(err, "signing %s", name)
	}
	return d.baseURL + (&url.URL{Path: path.Clean("/" + name)}).EscapedPath(), nil
}
