// Package snapshot stores captured pages so they can be rendered offline.
//
// A snapshot on disk is either plain markup in any charset the x/net
// sniffer recognises, or a framed JSON record: the line "PCSNAP/1"
// followed by the JSON encoding of Snapshot.
package snapshot

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/html/charset"
)

// Frame opens every framed snapshot.
const Frame = "PCSNAP/1\n"

var (
	// ErrEmpty is returned for input with no markup in it.
	ErrEmpty = errors.New("snapshot: empty")
	// ErrMalformed is returned when a framed snapshot does not decode.
	ErrMalformed = errors.New("snapshot: malformed frame")
)

// Snapshot is one captured page.
type Snapshot struct {
	ID         string    `json:"id"`
	URL        string    `json:"url,omitempty"`
	Title      string    `json:"title,omitempty"`
	CapturedAt time.Time `json:"captured_at"`
	HTML       string    `json:"html"`
	CSS        string    `json:"css,omitempty"`
}

// New returns a snapshot with a fresh id, stamped now.
func New(url, markup, css string) Snapshot {
	return Snapshot{
		ID:         uuid.NewString(),
		URL:        url,
		CapturedAt: time.Now().UTC(),
		HTML:       markup,
		CSS:        css,
	}
}

// Encode returns the framed form of s.
func Encode(s Snapshot) ([]byte, error) {
	body, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("snapshot: encode: %w", err)
	}
	return append([]byte(Frame), body...), nil
}

// Decode reads either form. Unframed input is converted to UTF-8 after
// sniffing its BOM, its <meta charset> declaration or valid UTF-8 content,
// and otherwise treated as windows-1252.
func Decode(raw []byte) (Snapshot, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return Snapshot{}, ErrEmpty
	}
	if body, ok := bytes.CutPrefix(raw, []byte(Frame)); ok {
		var s Snapshot
		if err := json.Unmarshal(body, &s); err != nil {
			return Snapshot{}, fmt.Errorf("%w: %w", ErrMalformed, err)
		}
		if s.HTML == "" {
			return Snapshot{}, ErrEmpty
		}
		return s, nil
	}

	r, err := charset.NewReader(bytes.NewReader(raw), "")
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot: charset: %w", err)
	}
	markup, err := io.ReadAll(r)
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot: charset: %w", err)
	}
	return Snapshot{HTML: string(markup)}, nil
}

// Store keeps the most recent snapshot in a single file.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) Path() string { return s.path }

// Save writes snap through a temporary file so readers never see a partial
// frame.
func (s *Store) Save(snap Snapshot) error {
	data, err := Encode(snap)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("snapshot: save: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".snapshot-*")
	if err != nil {
		return fmt.Errorf("snapshot: save: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("snapshot: save: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("snapshot: save: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("snapshot: save: %w", err)
	}
	return nil
}

// Bytes returns the stored file as is.
func (s *Store) Bytes() ([]byte, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: read: %w", err)
	}
	return data, nil
}

// Load reads and decodes the stored snapshot.
func (s *Store) Load() (Snapshot, error) {
	data, err := s.Bytes()
	if err != nil {
		return Snapshot{}, err
	}
	return Decode(data)
}
