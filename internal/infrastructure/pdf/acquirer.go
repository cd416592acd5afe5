package pdf

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"JudgmentScanner/internal/domain"
	"JudgmentScanner/internal/ports"
)

// errMalformedURL marks a PDF link that is not an absolute http(s) URL.
var errMalformedURL = errors.New("malformed pdf url")

// Acquirer downloads transcripts into the storage folder, one file per title.
type Acquirer struct {
	client  *http.Client
	baseURL string
	folder  string
	logger  *slog.Logger

	dirMu sync.Mutex
}

var _ ports.Acquirer = (*Acquirer)(nil)

// NewAcquirer builds a downloader; relative links are retried against baseURL.
func NewAcquirer(client *http.Client, baseURL, folder string, log *slog.Logger) *Acquirer {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Acquirer{
		client:  client,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		folder:  folder,
		logger:  log,
	}
}

// LocalPath is the deterministic file location for a sanitized title.
func (a *Acquirer) LocalPath(title string) string {
	return filepath.Join(a.folder, title+".pdf")
}

// Acquire writes the record's PDF to LocalPath. The link is tried as given and,
// on a malformed URL or a timeout, once more prefixed with the base URL.
// Any remaining failure rejects the record.
func (a *Acquirer) Acquire(ctx context.Context, rec domain.CaseRecord) (domain.CaseRecord, error) {
	if err := a.ensureFolder(); err != nil {
		return domain.CaseRecord{}, domain.Reject(rec.Title, domain.StageAcquire, "storage folder", err)
	}

	rec.LocalPath = a.LocalPath(rec.Title)

	err := a.download(ctx, rec.PDFURL, rec.LocalPath)
	if err != nil && retryable(err) {
		retryURL := a.baseURL + "/" + strings.TrimPrefix(rec.PDFURL, "/")
		if a.logger != nil {
			a.logger.Debug("retry pdf download", "title", rec.Title, "url", retryURL, "error", err)
		}
		err = a.download(ctx, retryURL, rec.LocalPath)
	}
	if err != nil {
		return domain.CaseRecord{}, domain.Reject(rec.Title, domain.StageAcquire, "download pdf", err)
	}

	return rec, nil
}

func (a *Acquirer) ensureFolder() error {
	a.dirMu.Lock()
	defer a.dirMu.Unlock()

	if err := os.MkdirAll(a.folder, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", a.folder, err)
	}
	return nil
}

func (a *Acquirer) download(ctx context.Context, rawURL, dest string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil || !parsed.IsAbs() || parsed.Host == "" {
		return fmt.Errorf("%w: %q", errMalformedURL, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("request pdf: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pdf %s returned %s", rawURL, resp.Status)
	}

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		_ = f.Close()
		_ = os.Remove(dest)
		return fmt.Errorf("write %s: %w", dest, err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(dest)
		return fmt.Errorf("close %s: %w", dest, err)
	}

	return nil
}

func retryable(err error) bool {
	if errors.Is(err, errMalformedURL) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
