package pkg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pulumi/pulumi/sdk/v3/go/common/util/contract"
	"github.com/pulumi/pulumi/sdk/v3/go/common/util/logging"
)

const (
	// DefaultDocumentPath is where a CBOM is looked up inside a repository.
	DefaultDocumentPath = "cbom.json"
	// DefaultRef is the git ref used when none is given.
	DefaultRef = "main"

	maxDocumentSize = 256 << 20
)

// ErrDocumentNotFound is returned when a source resolves but holds no document.
var ErrDocumentNotFound = errors.New("document not found")

// stdin is replaced in tests.
var stdin io.Reader = os.Stdin

// DocumentOptions locates a document inside repository sources.
type DocumentOptions struct {
	// Path of the document relative to the repository root. Used for directories and
	// github:// and gitlab:// sources.
	Path string
	// Ref is the branch, tag or commit for github:// and gitlab:// sources.
	Ref string
}

func (o DocumentOptions) withDefaults() DocumentOptions {
	if o.Path == "" {
		o.Path = DefaultDocumentPath
	}
	if o.Ref == "" {
		o.Ref = DefaultRef
	}
	return o
}

// DownloadDocument reads the raw bytes of a CBOM document. A source is one of:
//
//   - "-" for stdin,
//   - a local path, optionally prefixed with "file:"; a directory is treated as a repository root,
//   - an http:// or https:// URL,
//   - github://<host>/<org>/<repo> or gitlab://<host>/<owner>/<repo>.
func DownloadDocument(ctx context.Context, source string, opts DocumentOptions) ([]byte, error) {
	opts = opts.withDefaults()

	if source == "-" {
		logging.V(5).Infof("reading document from stdin")
		return readDocument(stdin)
	}

	u, err := url.Parse(source)
	if err != nil || u.Scheme == "" || u.Scheme == "file" || len(u.Scheme) == 1 {
		// Single letter schemes are Windows drive letters.
		return loadLocalDocument(strings.TrimPrefix(source, "file:"), opts)
	}

	var gitSource GitSource
	switch u.Scheme {
	case "http", "https":
		logging.V(5).Infof("downloading document from %s", source)
		req, err := buildHTTPRequest(ctx, source, "")
		if err != nil {
			return nil, err
		}
		return fetch(req.URL.String(), func() (io.ReadCloser, int64, error) {
			return getHTTPResponse(req)
		})
	case "github":
		gitSource, err = newGithubSource(u)
	case "gitlab":
		gitSource, err = newGitlabSource(u)
	default:
		return nil, fmt.Errorf("unknown document source scheme: %s", u.Scheme)
	}
	if err != nil {
		return nil, err
	}

	logging.V(5).Infof("downloading %s@%s:%s", source, opts.Ref, opts.Path)
	location := fmt.Sprintf("%s@%s:%s", source, opts.Ref, opts.Path)
	return fetch(location, func() (io.ReadCloser, int64, error) {
		return gitSource.Download(ctx, opts.Ref, opts.Path, getHTTPResponse)
	})
}

func fetch(location string, download func() (io.ReadCloser, int64, error)) ([]byte, error) {
	resp, _, err := download()
	if err != nil {
		var downErr *downloadError
		if errors.As(err, &downErr) && downErr.code == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s: %w", ErrDocumentNotFound, location, err)
		}
		return nil, err
	}
	defer contract.IgnoreClose(resp)

	return readDocument(resp)
}

// LoadLocalDocument reads a document from disk. If path is a directory, the document is
// looked up at opts.Path inside it.
func LoadLocalDocument(path string, opts DocumentOptions) ([]byte, error) {
	return loadLocalDocument(path, opts.withDefaults())
}

func loadLocalDocument(path string, opts DocumentOptions) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", ErrDocumentNotFound, err)
		}
		return nil, err
	}

	if info.IsDir() {
		resolved, err := resolveSafeRepoFilePath(path, opts.Path)
		if err != nil {
			return nil, err
		}
		logging.V(5).Infof("reading document %s from repository %s", opts.Path, path)
		path = resolved
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %w", ErrDocumentNotFound, err)
		}
		return nil, err
	}
	defer contract.IgnoreClose(f)

	return readDocument(f)
}

func readDocument(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, maxDocumentSize+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxDocumentSize {
		return nil, fmt.Errorf("document exceeds the maximum size of %d bytes", maxDocumentSize)
	}
	return body, nil
}

// resolveSafeRepoFilePath joins root and rel, refusing any result that leaves root, including
// through symlinks.
func resolveSafeRepoFilePath(root, rel string) (string, error) {
	if filepath.IsAbs(rel) || strings.HasPrefix(rel, "/") {
		return "", fmt.Errorf("invalid document path %q: absolute path not allowed", rel)
	}

	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", err
	}

	joined := filepath.Join(realRoot, filepath.FromSlash(rel))
	if !within(realRoot, joined) {
		return "", fmt.Errorf("invalid document path %q: traversal outside repository root", rel)
	}

	resolved, err := filepath.EvalSymlinks(joined)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrDocumentNotFound, joined)
		}
		return "", err
	}
	if !within(realRoot, resolved) {
		return "", fmt.Errorf("invalid document path %q: traversal outside repository root", rel)
	}
	return resolved, nil
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
