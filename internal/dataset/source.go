package dataset

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/cenkalti/backoff/v4"
	"github.com/jlaffaye/ftp"

	"github.com/lox/nycair/internal/httputil"
)

// Source yields the raw rows of a dataset.
type Source interface {
	Rows(ctx context.Context) ([]Row, error)
	Scheme() string
	String() string
}

// Options tune how remote sources are fetched.
type Options struct {
	Timeout    time.Duration
	HTTPClient *http.Client
}

// OpenSource picks a Source for uri. Plain paths are local files; http(s),
// ftp, gs and sqlite URLs select the matching remote or database source.
func OpenSource(uri string, opts Options) (Source, error) {
	if uri == "" {
		return nil, fmt.Errorf("empty dataset location")
	}
	u, err := url.Parse(uri)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// Not a URL, or a Windows drive letter.
		return &FileSource{Path: uri}, nil
	}

	switch strings.ToLower(u.Scheme) {
	case "file":
		return &FileSource{Path: u.Host + u.Path}, nil
	case "http", "https":
		client := opts.HTTPClient
		if client == nil {
			client = httputil.NewClient(opts.Timeout)
		}
		return &HTTPSource{URL: uri, Client: client}, nil
	case "ftp":
		host := u.Host
		if u.Port() == "" {
			host += ":21"
		}
		src := &FTPSource{Addr: host, Path: u.Path, Timeout: opts.Timeout}
		if u.User != nil {
			src.User = u.User.Username()
			src.Password, _ = u.User.Password()
		}
		return src, nil
	case "gs":
		object := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || object == "" {
			return nil, fmt.Errorf("gs location %q needs a bucket and an object", uri)
		}
		return &GCSSource{Bucket: u.Host, Object: object}, nil
	case "sqlite":
		table := u.Query().Get("table")
		if table == "" {
			table = DefaultTable
		}
		return &SQLiteSource{Path: u.Host + u.Path, Table: table}, nil
	default:
		return nil, fmt.Errorf("unsupported dataset scheme %q", u.Scheme)
	}
}

// readStream decodes CSV rows from r, gunzipping when name ends in .gz.
func readStream(r io.Reader, name string) ([]Row, error) {
	if strings.HasSuffix(strings.ToLower(name), ".gz") {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gunzip %s: %w", name, err)
		}
		defer gz.Close()
		r = gz
	}
	return ReadRows(r)
}

// FileSource reads a CSV file from the local filesystem.
type FileSource struct {
	Path string
}

func (s *FileSource) Rows(ctx context.Context) ([]Row, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return readStream(f, s.Path)
}

func (s *FileSource) Scheme() string { return "file" }
func (s *FileSource) String() string { return s.Path }

// HTTPSource fetches a CSV document over HTTP, retrying throttling and
// gateway errors with exponential backoff.
type HTTPSource struct {
	URL    string
	Client *http.Client

	RetryInterval time.Duration // initial backoff; zero uses the library default
	MaxElapsed    time.Duration // zero means one minute
}

func (s *HTTPSource) Rows(ctx context.Context) ([]Row, error) {
	var body []byte
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("build request: %w", err))
		}
		resp, err := s.Client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return fmt.Errorf("fetch %s: %w", s.URL, err)
		}
		defer resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			io.Copy(io.Discard, resp.Body)
			return fmt.Errorf("fetch %s: status %d", s.URL, resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return backoff.Permanent(fmt.Errorf("fetch %s: status %d: %s", s.URL, resp.StatusCode, strings.TrimSpace(string(b))))
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	if s.RetryInterval > 0 {
		bo.InitialInterval = s.RetryInterval
	}
	bo.MaxElapsedTime = s.MaxElapsed
	if bo.MaxElapsedTime == 0 {
		bo.MaxElapsedTime = time.Minute
	}
	if err := backoff.Retry(operation, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}

	name := s.URL
	if u, err := url.Parse(s.URL); err == nil {
		name = u.Path
	}
	return readStream(bytes.NewReader(body), name)
}

func (s *HTTPSource) Scheme() string { return "http" }
func (s *HTTPSource) String() string { return s.URL }

// FTPSource retrieves a CSV file from an FTP server.
type FTPSource struct {
	Addr     string // host:port
	Path     string
	User     string // anonymous when empty
	Password string
	Timeout  time.Duration
}

func (s *FTPSource) Rows(ctx context.Context) ([]Row, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = httputil.DefaultTimeout
	}
	conn, err := ftp.Dial(s.Addr, ftp.DialWithTimeout(timeout), ftp.DialWithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("ftp dial: %w", err)
	}
	defer conn.Quit()

	user, pass := s.User, s.Password
	if user == "" {
		user, pass = "anonymous", "anonymous"
	}
	if err := conn.Login(user, pass); err != nil {
		return nil, fmt.Errorf("ftp login: %w", err)
	}

	resp, err := conn.Retr(s.Path)
	if err != nil {
		return nil, fmt.Errorf("ftp retr: %w", err)
	}
	body, err := io.ReadAll(resp)
	resp.Close()
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return readStream(bytes.NewReader(body), s.Path)
}

func (s *FTPSource) Scheme() string { return "ftp" }
func (s *FTPSource) String() string { return "ftp://" + s.Addr + s.Path }

// GCSSource reads a CSV object from Google Cloud Storage using
// application default credentials.
type GCSSource struct {
	Bucket string
	Object string
}

func (s *GCSSource) Rows(ctx context.Context) ([]Row, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}
	defer client.Close()

	r, err := client.Bucket(s.Bucket).Object(s.Object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("open gs://%s/%s: %w", s.Bucket, s.Object, err)
	}
	defer r.Close()
	return readStream(r, s.Object)
}

func (s *GCSSource) Scheme() string { return "gs" }
func (s *GCSSource) String() string { return "gs://" + s.Bucket + "/" + s.Object }
