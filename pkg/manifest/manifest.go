// Package manifest stores file identifiers between runs and reports which
// files changed since the last stored state.
package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/odvcencio/gitlink/pkg/batch"
)

// CompressedExt marks manifest files stored zstd-compressed.
const CompressedExt = ".zst"

// Manifest maps a file path to its identifier.
type Manifest map[string]string

// FromResults builds a manifest from the successful results.
func FromResults(results batch.Results) Manifest {
	m := make(Manifest, len(results))
	for _, r := range results {
		if r.OK() && r.FilePath != "" && r.Identifier != "" {
			m[r.FilePath] = r.Identifier
		}
	}
	return m
}

// Read decodes a JSON manifest.
func Read(r io.Reader) (Manifest, error) {
	var m Manifest
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	if m == nil {
		m = Manifest{}
	}
	return m, nil
}

// Write encodes m as indented JSON. Keys are written in sorted order.
func Write(w io.Writer, m Manifest) error {
	if m == nil {
		m = Manifest{}
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("write manifest: marshal: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// Load reads the manifest at path, decompressing it when the name ends in
// CompressedExt.
func Load(path string) (Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load manifest: %w", err)
	}
	defer f.Close()

	if !compressed(path) {
		return Read(f)
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("load manifest: zstd: %w", err)
	}
	defer dec.Close()
	return Read(dec)
}

// Save writes m to path through a temporary file in the same directory,
// compressing when the name ends in CompressedExt.
func Save(path string, m Manifest) error {
	var buf bytes.Buffer
	if err := Write(&buf, m); err != nil {
		return err
	}
	data := buf.Bytes()
	if compressed(path) {
		enc, err := zstd.NewWriter(nil)
		if err != nil {
			return fmt.Errorf("save manifest: zstd: %w", err)
		}
		data = enc.EncodeAll(data, nil)
		enc.Close()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".manifest-tmp-*")
	if err != nil {
		return fmt.Errorf("save manifest: tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("save manifest: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("save manifest: close: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("save manifest: rename: %w", err)
	}
	return nil
}

func compressed(path string) bool {
	return strings.HasSuffix(path, CompressedExt)
}
