// Package permalink composes web URLs that pin a file to a commit.
package permalink

import (
	"net/url"
	"strings"

	"github.com/odvcencio/gitlink/pkg/remote"
)

// Builder composes URLs of the form
//
//	https://<host>/<owner>/<repo>/blob/<ref>/<path>
//
// The zero value targets remote.DefaultHost and performs no escaping.
type Builder struct {
	Host string
	// Escape percent-encodes each path segment. Off by default so the
	// output is byte-for-byte the normalized path.
	Escape bool
}

// Build composes a DefaultHost URL for path at ref.
func Build(id remote.Identity, ref, path string) string {
	return Builder{}.Build(id, ref, path)
}

// Generate parses remoteURL and composes a DefaultHost URL for path at ref.
func Generate(remoteURL, ref, path string) (string, error) {
	return Builder{}.Generate(remoteURL, ref, path)
}

// Build never fails; callers supply segments that need no encoding unless
// Escape is set.
func (b Builder) Build(id remote.Identity, ref, path string) string {
	p := Normalize(path)
	if b.Escape {
		p = escapeSegments(p)
	}

	var sb strings.Builder
	sb.WriteString("https://")
	sb.WriteString(b.host())
	sb.WriteByte('/')
	sb.WriteString(id.Owner)
	sb.WriteByte('/')
	sb.WriteString(id.Repo)
	sb.WriteString("/blob/")
	sb.WriteString(ref)
	sb.WriteByte('/')
	sb.WriteString(p)
	return sb.String()
}

// Generate fails only when remoteURL cannot be parsed for b's host.
func (b Builder) Generate(remoteURL, ref, path string) (string, error) {
	id, err := b.Parser().Parse(remoteURL)
	if err != nil {
		return "", err
	}
	return b.Build(id, ref, path), nil
}

// Parser returns the remote parser matching b's host.
func (b Builder) Parser() remote.Parser {
	return remote.Parser{Host: b.host()}
}

func (b Builder) host() string {
	if h := strings.TrimSpace(b.Host); h != "" {
		return h
	}
	return remote.DefaultHost
}

// Normalize converts path to the URL form: backslashes become forward
// slashes and leading slashes are removed. Normalizing an already
// normalized path is a no-op.
func Normalize(path string) string {
	if strings.HasPrefix(path, "/") {
		path = path[1:]
	}
	path = strings.ReplaceAll(path, `\`, "/")
	return strings.TrimLeft(path, "/")
}

func escapeSegments(p string) string {
	segs := strings.Split(p, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}
