package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/agentx-labs/extkit/internal/branding"
)

const githubPrefix = "https://github.com"

// Transport downloads ref archives from a remote repository.
type Transport struct {
	httpClient *http.Client
	progress   io.Writer
}

// Option configures a Transport.
type Option func(*Transport)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(t *Transport) {
		t.httpClient = c
	}
}

// WithProgress sets where download percentage lines are written.
func WithProgress(w io.Writer) Option {
	return func(t *Transport) {
		t.progress = w
	}
}

// New creates a Transport with the given options.
func New(opts ...Option) *Transport {
	t := &Transport{
		httpClient: http.DefaultClient,
		progress:   io.Discard,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// ArchiveURL returns the zip download URL of ref in repository. Only
// GitHub repositories are supported; a trailing ".git" is tolerated.
func ArchiveURL(repository, ref string) (string, error) {
	if !strings.HasPrefix(repository, githubPrefix) {
		return "", fmt.Errorf("unsupported repository %q: only %s repositories can be fetched", repository, githubPrefix)
	}
	if ref == "" {
		return "", errors.New("empty ref")
	}
	repo := strings.TrimSuffix(repository, ".git")
	if !strings.HasSuffix(repo, "/") {
		repo += "/"
	}
	return repo + "archive/" + ref + ".zip", nil
}

// WrapperName returns the top-level directory GitHub puts in the archive of
// ref: "<project>-<ref>" with every slash in ref replaced by a dash.
func WrapperName(project, ref string) string {
	return project + "-" + strings.ReplaceAll(ref, "/", "-")
}

// Fetch downloads the archive of ref from repository to destPath. The body
// is streamed to a sibling ".part" file that is renamed into place only
// after the whole response was read; on any failure nothing is left at
// destPath.
func (t *Transport) Fetch(ctx context.Context, repository, ref, destPath string) error {
	url, err := ArchiveURL(repository, ref)
	if err != nil {
		return &TransportError{URL: repository, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return &TransportError{URL: url, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("User-Agent", branding.CLIName())

	// Support optional GitHub token for private repositories and rate limits.
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		req.Header.Set("Authorization", "token "+token)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &TransportError{URL: url, StatusCode: resp.StatusCode}
	}

	partPath := destPath + ".part"
	if err := t.download(resp, partPath); err != nil {
		_ = os.Remove(partPath)
		return &TransportError{URL: url, Err: err}
	}
	if err := os.Rename(partPath, destPath); err != nil {
		_ = os.Remove(partPath)
		return &TransportError{URL: url, Err: fmt.Errorf("finalizing download: %w", err)}
	}
	return nil
}

func (t *Transport) download(resp *http.Response, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating download file: %w", err)
	}

	total := resp.ContentLength
	var downloaded int64
	lastPercent := -1

	buf := make([]byte, 32*1024)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := f.Write(buf[:n]); writeErr != nil {
				f.Close()
				return fmt.Errorf("writing download: %w", writeErr)
			}
			downloaded += int64(n)
			if total > 0 {
				percent := int(downloaded * 100 / total)
				if percent != lastPercent {
					fmt.Fprintf(t.progress, "\rDownloading... %d%%", percent)
					lastPercent = percent
				}
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			f.Close()
			return fmt.Errorf("reading download stream: %w", readErr)
		}
	}
	if total > 0 {
		fmt.Fprintln(t.progress)
		if downloaded != total {
			f.Close()
			return fmt.Errorf("short download: got %d of %d bytes", downloaded, total)
		}
	}

	return f.Close()
}
