package catalog

import (
	"bytes"
	"compress/gzip"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"

	"github.com/hidingwill/ableton-bridge/internal/bridgeerr"
)

// formatVersion is the on-disk catalog file's format revision header.
const formatVersion = 1

// document is the persisted shape: a version header, the flat list, and
// the by-name index, all in one gzip-compressed JSON file.
type document struct {
	Version int               `json:"version"`
	SavedAt time.Time         `json:"saved_at"`
	Items   []Item            `json:"items"`
	ByName  map[string]string `json:"by_name"`
}

// Store persists the catalog document to a single gzip-compressed JSON
// file under dir, written atomically via temp-file-plus-rename, with a
// blake3 digest written ahead of the body so a truncated or corrupt file is detected
// before gunzip is even attempted.
type Store struct {
	path string
}

// NewStore constructs a Store backed by <dir>/catalog.json.gz.
func NewStore(dir string) *Store {
	return &Store{path: filepath.Join(dir, "catalog.json.gz")}
}

// Save atomically writes items (plus the derived by-name index) to disk.
func (s *Store) Save(items []Item) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return bridgeerr.Wrap(bridgeerr.Internal, "creating catalog directory", err)
	}

	byName := make(map[string]string)
	for _, item := range items {
		key := normalizeName(item.Name)
		if _, exists := byName[key]; !exists {
			byName[key] = item.URI
		}
	}
	doc := document{Version: formatVersion, SavedAt: time.Now(), Items: items, ByName: byName}

	var body []byte
	var err error
	body, err = json.Marshal(doc)
	if err != nil {
		return bridgeerr.Wrap(bridgeerr.Internal, "encoding catalog document", err)
	}

	gzipped, err := gzipBytes(body)
	if err != nil {
		return bridgeerr.Wrap(bridgeerr.Internal, "compressing catalog document", err)
	}
	digest := digestOf(gzipped)

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "catalog-*.tmp")
	if err != nil {
		return bridgeerr.Wrap(bridgeerr.Internal, "creating catalog temp file", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once the rename below succeeds

	if _, err := tmp.Write(digest); err != nil {
		tmp.Close()
		return bridgeerr.Wrap(bridgeerr.Internal, "writing catalog digest header", err)
	}
	if _, err := tmp.Write(gzipped); err != nil {
		tmp.Close()
		return bridgeerr.Wrap(bridgeerr.Internal, "writing catalog body", err)
	}
	if err := tmp.Close(); err != nil {
		return bridgeerr.Wrap(bridgeerr.Internal, "closing catalog temp file", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return bridgeerr.Wrap(bridgeerr.Internal, "committing catalog file", err)
	}
	return nil
}

// Load reads the persisted document if it exists and is younger than
// maxAge, verifying the blake3 digest before attempting to gunzip.
// Returns (nil, nil) if the file is absent or older than maxAge; callers
// treat this as Cold, not an error. A file that fails the digest check or
// cannot be decoded returns an error.
func (s *Store) Load(maxAge time.Duration) (*document, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, bridgeerr.Wrap(bridgeerr.Internal, "stating catalog file", err)
	}
	if time.Since(info.ModTime()) > maxAge {
		return nil, nil
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, bridgeerr.Wrap(bridgeerr.Internal, "reading catalog file", err)
	}
	const digestSize = 32
	if len(raw) < digestSize {
		return nil, fmt.Errorf("catalog file too small to contain a digest header")
	}
	wantDigest, body := raw[:digestSize], raw[digestSize:]
	gotDigest := digestOf(body)
	if hex.EncodeToString(gotDigest) != hex.EncodeToString(wantDigest) {
		return nil, fmt.Errorf("catalog file digest mismatch, likely truncated or corrupt")
	}

	unzipped, err := gunzipBytes(body)
	if err != nil {
		return nil, bridgeerr.Wrap(bridgeerr.Internal, "decompressing catalog file", err)
	}
	var doc document
	if err := json.Unmarshal(unzipped, &doc); err != nil {
		return nil, bridgeerr.Wrap(bridgeerr.Internal, "decoding catalog document", err)
	}
	return &doc, nil
}

func gzipBytes(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(body); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func gunzipBytes(body []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// digestOf returns the 32-byte BLAKE3 digest of body.
func digestOf(body []byte) []byte {
	hasher := blake3.New()
	hasher.Write(body)
	return hasher.Sum(nil)
}
