package remote

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// DefaultHost is the hosting provider recognized when no host is configured.
const DefaultHost = "github.com"

var (
	// ErrUnsupportedFormat is returned for remote URLs that match neither
	// the SSH nor the HTTP(S) syntax for the configured host.
	ErrUnsupportedFormat = errors.New("unsupported remote URL format")
	// ErrInvalidRemote is returned when a remote URL has a recognized
	// syntax but does not name exactly one owner/repo pair.
	ErrInvalidRemote = errors.New("invalid repository remote")
)

// FormatError records the remote URL that failed to parse.
type FormatError struct {
	URL    string
	Reason string
	Err    error // ErrUnsupportedFormat or ErrInvalidRemote
}

func (e *FormatError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Reason == "" {
		return fmt.Sprintf("%v: %s", e.Err, e.URL)
	}
	return fmt.Sprintf("%v: %s (%s)", e.Err, e.URL, e.Reason)
}

func (e *FormatError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Identity names a repository on the hosting provider.
type Identity struct {
	Owner string
	Repo  string
}

func (id Identity) String() string {
	return id.Owner + "/" + id.Repo
}

// Parser extracts identities from remote URLs for a single host. The zero
// value parses DefaultHost remotes.
type Parser struct {
	Host string
}

// Parse extracts the identity from a DefaultHost remote URL.
func Parse(remoteURL string) (Identity, error) {
	return Parser{}.Parse(remoteURL)
}

// Parse accepts git@<host>:<owner>/<repo>[.git] and
// http(s)://<host>/<owner>/<repo>[.git]. Host comparison ignores case;
// owner and repo are returned verbatim.
func (p Parser) Parse(remoteURL string) (Identity, error) {
	host := p.host()

	if rest, ok := cutSSHPrefix(remoteURL, host); ok {
		return parseSSHPath(remoteURL, rest)
	}
	if u, ok := httpURL(remoteURL, host); ok {
		return parseHTTPPath(remoteURL, u)
	}
	return Identity{}, &FormatError{URL: remoteURL, Err: ErrUnsupportedFormat}
}

func (p Parser) host() string {
	if h := strings.TrimSpace(p.Host); h != "" {
		return h
	}
	return DefaultHost
}

func cutSSHPrefix(raw, host string) (string, bool) {
	const user = "git@"
	if !strings.HasPrefix(raw, user) {
		return "", false
	}
	hostPart, rest, ok := strings.Cut(raw[len(user):], ":")
	if !ok || !strings.EqualFold(hostPart, host) {
		return "", false
	}
	return rest, true
}

func parseSSHPath(raw, repoPath string) (Identity, error) {
	parts := strings.Split(strings.TrimSuffix(repoPath, ".git"), "/")
	if len(parts) != 2 {
		return Identity{}, &FormatError{URL: raw, Reason: "repository path must be owner/repo", Err: ErrInvalidRemote}
	}
	return newIdentity(raw, parts[0], parts[1])
}

func httpURL(raw, host string) (*url.URL, bool) {
	lower := strings.ToLower(raw)
	if !strings.HasPrefix(lower, "https://") && !strings.HasPrefix(lower, "http://") {
		return nil, false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, false
	}
	got := u.Hostname()
	if strings.Contains(host, ":") {
		got = u.Host
	}
	if !strings.EqualFold(got, host) {
		return nil, false
	}
	return u, true
}

// parseHTTPPath splits the escaped path so an encoded slash cannot act as
// a separator.
func parseHTTPPath(raw string, u *url.URL) (Identity, error) {
	parts := strings.Split(strings.TrimPrefix(u.EscapedPath(), "/"), "/")
	if len(parts) < 2 {
		return Identity{}, &FormatError{URL: raw, Reason: "URL path must include owner and repo", Err: ErrInvalidRemote}
	}
	owner, err := unescapeSegment(raw, parts[0])
	if err != nil {
		return Identity{}, err
	}
	repo, err := unescapeSegment(raw, parts[1])
	if err != nil {
		return Identity{}, err
	}
	return newIdentity(raw, owner, strings.TrimSuffix(repo, ".git"))
}

func unescapeSegment(raw, seg string) (string, error) {
	v, err := url.PathUnescape(seg)
	if err != nil {
		return "", &FormatError{URL: raw, Reason: "bad escape in URL path", Err: ErrInvalidRemote}
	}
	if strings.ContainsAny(v, `/\`) {
		return "", &FormatError{URL: raw, Reason: "owner and repo must not contain path separators", Err: ErrInvalidRemote}
	}
	return v, nil
}

func newIdentity(raw, owner, repo string) (Identity, error) {
	if owner == "" || repo == "" {
		return Identity{}, &FormatError{URL: raw, Reason: "owner and repo must be non-empty", Err: ErrInvalidRemote}
	}
	return Identity{Owner: owner, Repo: repo}, nil
}

// NormalizeHost reduces a configured host ("github.example.com",
// "https://github.example.com/") to a bare host name.
func NormalizeHost(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return DefaultHost, nil
	}
	if !strings.Contains(candidate, "://") {
		candidate = "https://" + candidate
	}
	u, err := url.Parse(candidate)
	if err != nil {
		return "", fmt.Errorf("parse host %q: %w", raw, err)
	}
	if strings.TrimSpace(u.Host) == "" {
		return "", fmt.Errorf("host %q must not be empty", raw)
	}
	if strings.Trim(u.Path, "/") != "" {
		return "", fmt.Errorf("host %q must not include a path", raw)
	}
	return u.Host, nil
}
