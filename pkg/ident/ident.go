// Package ident derives deterministic file identifiers from git metadata.
// An identifier changes exactly when the file's owner, repository, path,
// content hash or last touching commit changes.
package ident

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"hash"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/odvcencio/gitlink/pkg/object"
	"github.com/odvcencio/gitlink/pkg/permalink"
)

// SourceLocal marks metadata read from a local repository.
const SourceLocal = "local-git"

// ShortLen is the number of digest characters kept in Identifier.Short.
const ShortLen = 12

// Algorithm names a digest function.
type Algorithm string

const (
	SHA256  Algorithm = "sha256"
	SHA1    Algorithm = "sha1"
	BLAKE2b Algorithm = "blake2b"
)

// Encoding names a digest text encoding.
type Encoding string

const (
	Hex    Encoding = "hex"
	Base64 Encoding = "base64"
)

var (
	ErrUnknownAlgorithm = errors.New("unknown identifier algorithm")
	ErrUnknownEncoding  = errors.New("unknown identifier encoding")
	ErrIncomplete       = errors.New("incomplete metadata")
)

// Metadata describes one file as seen by the repository.
type Metadata struct {
	Source       string      `json:"source"`
	Owner        string      `json:"owner"`
	Repo         string      `json:"repo"`
	Branch       string      `json:"branch"`
	CommitHash   object.Hash `json:"commitHash"`
	FileHash     object.Hash `json:"fileHash"`
	FilePath     string      `json:"filePath"`
	LastModified string      `json:"lastModified"`
	RepoPath     string      `json:"repoPath,omitempty"`
}

// Identifier is a digest over the identity-bearing metadata fields.
type Identifier struct {
	Value     string    `json:"identifier"` // "<algorithm>:<digest>"
	Short     string    `json:"short"`
	Algorithm Algorithm `json:"algorithm"`
}

func (id Identifier) String() string {
	return id.Value
}

// Options selects the digest. Zero values mean SHA256 and Hex.
type Options struct {
	Algorithm Algorithm
	Encoding  Encoding
}

// ParseAlgorithm validates a user supplied algorithm name.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(strings.ToLower(strings.TrimSpace(s))); a {
	case "":
		return SHA256, nil
	case SHA256, SHA1, BLAKE2b:
		return a, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
}

// ParseEncoding validates a user supplied encoding name.
func ParseEncoding(s string) (Encoding, error) {
	switch e := Encoding(strings.ToLower(strings.TrimSpace(s))); e {
	case "":
		return Hex, nil
	case Hex, Base64:
		return e, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEncoding, s)
}

// Normalize lowercases and validates both hashes and converts the file path
// to slash form without leading "./" or slashes.
func Normalize(meta Metadata) (Metadata, error) {
	commit, err := object.ParseHash(string(meta.CommitHash))
	if err != nil {
		return Metadata{}, fmt.Errorf("normalize commit hash: %w", err)
	}
	file, err := object.ParseHash(string(meta.FileHash))
	if err != nil {
		return Metadata{}, fmt.Errorf("normalize file hash: %w", err)
	}
	meta.CommitHash = commit
	meta.FileHash = file
	meta.FilePath = normalizePath(meta.FilePath)
	if meta.Owner == "" || meta.Repo == "" || meta.FilePath == "" {
		return Metadata{}, fmt.Errorf("%w: owner, repo and file path are required", ErrIncomplete)
	}
	return meta, nil
}

func normalizePath(p string) string {
	p = permalink.Normalize(p)
	p = strings.TrimPrefix(p, "./")
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	return strings.TrimRight(p, "/")
}

// canonical fixes the field order of the digest input.
type canonical struct {
	CommitHash object.Hash `json:"commitHash"`
	FileHash   object.Hash `json:"fileHash"`
	FilePath   string      `json:"filePath"`
	Owner      string      `json:"owner"`
	Repo       string      `json:"repo"`
}

// Generate normalizes meta and digests its identity-bearing fields.
func Generate(meta Metadata, opts Options) (Identifier, error) {
	alg, err := ParseAlgorithm(string(opts.Algorithm))
	if err != nil {
		return Identifier{}, err
	}
	enc, err := ParseEncoding(string(opts.Encoding))
	if err != nil {
		return Identifier{}, err
	}
	meta, err = Normalize(meta)
	if err != nil {
		return Identifier{}, err
	}

	payload, err := json.Marshal(canonical{
		CommitHash: meta.CommitHash,
		FileHash:   meta.FileHash,
		FilePath:   meta.FilePath,
		Owner:      meta.Owner,
		Repo:       meta.Repo,
	})
	if err != nil {
		return Identifier{}, fmt.Errorf("identifier: marshal: %w", err)
	}

	h, err := newHash(alg)
	if err != nil {
		return Identifier{}, err
	}
	h.Write(payload)
	sum := h.Sum(nil)

	var digest string
	if enc == Base64 {
		digest = base64.RawURLEncoding.EncodeToString(sum)
	} else {
		digest = hex.EncodeToString(sum)
	}
	short := digest
	if len(short) > ShortLen {
		short = short[:ShortLen]
	}
	return Identifier{
		Value:     string(alg) + ":" + digest,
		Short:     short,
		Algorithm: alg,
	}, nil
}

func newHash(alg Algorithm) (hash.Hash, error) {
	switch alg {
	case SHA1:
		return sha1.New(), nil
	case BLAKE2b:
		return blake2b.New256(nil)
	default:
		return sha256.New(), nil
	}
}
