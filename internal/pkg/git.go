package pkg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/pulumi/pulumi/sdk/v3/go/common/util/contract"
	"github.com/pulumi/pulumi/sdk/v3/go/common/util/logging"

	"github.com/pulumi/cbom-tools/version"
)

type httpGetter func(*http.Request) (io.ReadCloser, int64, error)

// GitSource deals with downloading individual files from a specific git repository over HTTPS.
type GitSource interface {
	// Download fetches an io.ReadCloser for the file at path and also returns the size of the
	// response (if known).
	Download(ctx context.Context, ref, path string, get httpGetter) (io.ReadCloser, int64, error)
}

// gitlabSource downloads repository files through the GitLab files API.
type gitlabSource struct {
	host    string
	owner   string
	project string

	token string
}

// Creates a new GitLab source from a gitlab://<host>/<owner>/<project> url.
// Uses the GITLAB_TOKEN environment variable for authentication if it's set.
func newGitlabSource(u *url.URL) (*gitlabSource, error) {
	contract.Requiref(u.Scheme == "gitlab", "url", `scheme must be "gitlab", was %q`, u.Scheme)

	owner, project, err := splitRepositoryPath(u)
	if err != nil {
		return nil, err
	}

	return &gitlabSource{
		host:    u.Host,
		owner:   owner,
		project: project,

		token: os.Getenv("GITLAB_TOKEN"),
	}, nil
}

func (source *gitlabSource) Download(
	ctx context.Context, ref, path string, get httpGetter,
) (io.ReadCloser, int64, error) {
	project := url.QueryEscape(fmt.Sprintf("%s/%s", source.owner, source.project))

	// Gitlab Files API: https://docs.gitlab.com/ee/api/repository_files.html
	fileURL := fmt.Sprintf(
		"https://%s/api/v4/projects/%s/repository/files/%s/raw?ref=%s",
		source.host, project, url.QueryEscape(path), url.QueryEscape(ref))
	logging.V(9).Infof("GitLab document url: %s", fileURL)

	var authorization string
	if source.token != "" {
		authorization = fmt.Sprintf("Bearer %s", source.token)
	}
	req, err := buildHTTPRequest(ctx, fileURL, authorization)
	if err != nil {
		return nil, -1, err
	}
	req.Header.Set("Accept", "application/octet-stream")
	return get(req)
}

// githubSource downloads repository files through the GitHub contents API.
type githubSource struct {
	host         string
	organization string
	repository   string

	token string
}

// Creates a new GitHub source from a github://<host>/<organization>/<repository> url.
// Uses the GITHUB_TOKEN environment variable for authentication if it's set.
func newGithubSource(u *url.URL) (*githubSource, error) {
	contract.Requiref(u.Scheme == "github", "url", `scheme must be "github", was %q`, u.Scheme)

	organization, repository, err := splitRepositoryPath(u)
	if err != nil {
		return nil, err
	}

	return &githubSource{
		host:         u.Host,
		organization: organization,
		repository:   repository,

		token: os.Getenv("GITHUB_TOKEN"),
	}, nil
}

func (source *githubSource) Download(
	ctx context.Context, ref, path string, get httpGetter,
) (io.ReadCloser, int64, error) {
	fileURL := fmt.Sprintf(
		"https://%s/repos/%s/%s/contents/%s?ref=%s",
		source.host, source.organization, source.repository, encodePathSegments(path), url.QueryEscape(ref))
	logging.V(9).Infof("GitHub document url: %s", fileURL)

	var authorization string
	if source.token != "" {
		authorization = fmt.Sprintf("token %s", source.token)
	}
	req, err := buildHTTPRequest(ctx, fileURL, authorization)
	if err != nil {
		return nil, -1, err
	}
	req.Header.Set("Accept", "application/vnd.github.v3.raw")

	resp, length, err := get(req)
	if err == nil {
		return resp, length, nil
	}
	return nil, -1, source.wrapRateLimit(req, err)
}

// wrapRateLimit gives 403 rate limit errors a more helpful message.
func (source *githubSource) wrapRateLimit(req *http.Request, err error) error {
	var downErr *downloadError
	if !errors.As(err, &downErr) || downErr.code != http.StatusForbidden {
		return err
	}

	// This is a rate limiting error only if x-ratelimit-remaining is 0.
	if downErr.header.Get("x-ratelimit-remaining") != "0" {
		return err
	}

	tryAgain := "."
	if reset, err := strconv.ParseInt(downErr.header.Get("x-ratelimit-reset"), 10, 64); err == nil {
		delay := time.Until(time.Unix(reset, 0).UTC())
		tryAgain = fmt.Sprintf(", try again in %s.", delay.Round(time.Second))
	}

	addAuth := ""
	if source.token == "" {
		addAuth = " You can set GITHUB_TOKEN to make an authenticated request with a higher rate limit."
	}

	logging.Errorf("GitHub rate limit exceeded for %s%s%s", req.URL, tryAgain, addAuth)
	return fmt.Errorf("rate limit exceeded: %w", err)
}

func splitRepositoryPath(u *url.URL) (string, string, error) {
	if u.Host == "" {
		return "", "", fmt.Errorf("%s:// url must have a host part, was: %s", u.Scheme, u)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf(
			"%s:// url must have the format <host>/<owner>/<repository>, was: %s", u.Scheme, u)
	}
	return parts[0], parts[1], nil
}

// encodePathSegments escapes each segment of a repository path, keeping the separators.
func encodePathSegments(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

func buildHTTPRequest(ctx context.Context, endpoint string, authorization string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	userAgent := fmt.Sprintf("cbom-tools/%s (%s; %s)", version.Version, runtime.GOOS, runtime.GOARCH)
	req.Header.Set("User-Agent", userAgent)

	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}

	return req, nil
}

func getHTTPResponse(req *http.Request) (io.ReadCloser, int64, error) {
	logging.V(9).Infof("full document download url: %s", req.URL)
	// This logs at level 11 because it could include authentication headers, we reserve log level 11 for
	// detailed api logs that may include credentials.
	logging.V(11).Infof("document request headers: %v", req.Header)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, -1, err
	}

	logging.V(11).Infof("document response headers: %v", resp.Header)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		contract.IgnoreClose(resp.Body)
		return nil, -1, newDownloadError(resp.StatusCode, req.URL, resp.Header)
	}

	return resp.Body, resp.ContentLength, nil
}

// downloadError is an error that happened during the HTTP download of a document.
type downloadError struct {
	msg    string
	code   int
	header http.Header
}

func (e *downloadError) Error() string {
	return e.msg
}

// Create a new downloadError. GitHub answers 404 for private repositories, so that case
// suggests GITHUB_TOKEN.
func newDownloadError(statusCode int, u *url.URL, header http.Header) error {
	msg := fmt.Sprintf("%d HTTP error fetching document from %s", statusCode, u)
	if u.Host == "api.github.com" && statusCode == http.StatusNotFound {
		msg += ". If this is a private GitHub repository, try " +
			"providing a token via the GITHUB_TOKEN environment variable. " +
			"See: https://github.com/settings/tokens"
	}
	return &downloadError{
		code:   statusCode,
		msg:    msg,
		header: header,
	}
}
