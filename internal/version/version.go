// Package version describes the running build and checks GitHub for a newer
// tollgate release.
package version

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"

	tgerr "github.com/mrz1836/tollgate/pkg/errors"
)

// Release check defaults.
const (
	DefaultBaseURL = "https://api.github.com"
	DefaultOwner   = "mrz1836"
	DefaultRepo    = "tollgate"
	DefaultTimeout = 10 * time.Second

	maxErrorBodySize    = 1024
	maxResponseBodySize = 64 * 1024
)

// repoNamePattern matches GitHub owner and repository names.
var repoNamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// Build identifies the running binary.
type Build struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// String renders the build as "v1.2.3 (commit: abc1234, built: 2024-01-15)".
func (b Build) String() string {
	v, c, d := b.Version, b.Commit, b.Date
	if v == "" {
		v = "dev"
	}
	if c == "" {
		c = "unknown"
	}
	if d == "" {
		d = "unknown"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", v, c, d)
}

// Release is a published GitHub release.
type Release struct {
	Tag         string    `json:"tag_name"`
	Name        string    `json:"name"`
	Prerelease  bool      `json:"prerelease"`
	PublishedAt time.Time `json:"published_at"`
	URL         string    `json:"html_url"`
}

// Status is the result of a release check.
type Status struct {
	Current string `json:"current"`
	Latest  string `json:"latest"`
	Newer   bool   `json:"newer"`
	URL     string `json:"url,omitempty"`
}

// Checker queries the latest release of one repository.
type Checker struct {
	baseURL   string
	owner     string
	repo      string
	client    *http.Client
	userAgent string
}

// Option configures a Checker.
type Option func(*Checker)

// WithBaseURL points the checker at another GitHub API host.
func WithBaseURL(u string) Option {
	return func(c *Checker) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Checker) { c.client = client }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Checker) { c.userAgent = ua }
}

// NewChecker creates a checker for owner/repo.
func NewChecker(owner, repo string, opts ...Option) (*Checker, error) {
	if !repoNamePattern.MatchString(owner) || !repoNamePattern.MatchString(repo) {
		return nil, tgerr.WithDetails(tgerr.ErrInvalidInput, map[string]string{
			"owner": owner,
			"repo":  repo,
		})
	}

	c := &Checker{
		baseURL:   DefaultBaseURL,
		owner:     owner,
		repo:      repo,
		client:    &http.Client{Timeout: DefaultTimeout},
		userAgent: fmt.Sprintf("tollgate (%s/%s)", runtime.GOOS, runtime.GOARCH),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Latest fetches the latest published release.
func (c *Checker) Latest(ctx context.Context) (*Release, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.baseURL, c.owner, c.repo)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.client.Do(req) //nolint:gosec // URL is built from the configured GitHub API base
	if err != nil {
		return nil, tgerr.WithCause(tgerr.ErrNetworkError, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
		return nil, tgerr.WithDetails(tgerr.ErrNetworkError, map[string]string{
			"status": strconv.Itoa(resp.StatusCode),
			"body":   strings.TrimSpace(string(body)),
		})
	}

	var release Release
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBodySize)).Decode(&release); err != nil {
		return nil, fmt.Errorf("decoding release: %w", err)
	}
	return &release, nil
}

// Check compares current with the latest release.
func (c *Checker) Check(ctx context.Context, current string) (Status, error) {
	release, err := c.Latest(ctx)
	if err != nil {
		return Status{}, err
	}
	return Status{
		Current: current,
		Latest:  release.Tag,
		Newer:   Compare(release.Tag, current) > 0,
		URL:     release.URL,
	}, nil
}

// Compare orders two version strings: 1 if a is newer, -1 if b is newer,
// 0 if they are equal. Development builds ("dev", empty, or a commit hash)
// are older than every release and equal to each other.
func Compare(a, b string) int {
	pa, aRelease := parse(a)
	pb, bRelease := parse(b)

	switch {
	case !aRelease && !bRelease:
		return 0
	case !aRelease:
		return -1
	case !bRelease:
		return 1
	}

	for i := range pa {
		if pa[i] != pb[i] {
			if pa[i] > pb[i] {
				return 1
			}
			return -1
		}
	}
	return 0
}

// Normalize strips the "v" prefix, surrounding whitespace and any
// pre-release or build suffix.
func Normalize(v string) string {
	v = strings.TrimLeft(strings.TrimSpace(v), "v")
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		v = v[:i]
	}
	return v
}

// parse returns the major, minor and patch numbers of v, and false when v is
// a development build.
func parse(v string) ([3]int, bool) {
	var parts [3]int
	v = strings.TrimSpace(v)
	if v == "" || v == "dev" || isCommitHash(v) {
		return parts, false
	}

	for i, field := range strings.SplitN(Normalize(v), ".", 3) {
		n, err := strconv.Atoi(field)
		if err != nil {
			break
		}
		parts[i] = n
	}
	return parts, true
}

// commitHashPattern matches 7-40 hex characters, optionally marked dirty.
var commitHashPattern = regexp.MustCompile(`^[0-9a-fA-F]{7,40}(-dirty)?$`)

// isCommitHash reports whether v looks like a git commit hash. At least one
// hex letter is required so that all-digit versions are not mistaken for one.
func isCommitHash(v string) bool {
	return commitHashPattern.MatchString(v) && strings.ContainsAny(strings.ToLower(strings.TrimSuffix(v, "-dirty")), "abcdef")
}
