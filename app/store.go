package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"example/aoe4-reviewer/app/models"
)

var ErrInvalidMatchName = errors.New("invalid match name")

// MatchStore keeps one JSON file per saved match in a flat directory.
type MatchStore struct {
	dir string
}

func NewMatchStore(dir string) *MatchStore {
	return &MatchStore{dir: dir}
}

func (s *MatchStore) Dir() string { return s.dir }

// EncodeMatch renders a persisted match exactly as Save writes it.
func EncodeMatch(m *models.Match) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(m); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// Save writes {dir}/{name}.json, creating dir and overwriting any file of
// the same name. It returns the written path.
func (s *MatchStore) Save(m *models.Match, name string) (string, error) {
	if err := checkName(name); err != nil {
		return "", err
	}
	data, err := EncodeMatch(m)
	if err != nil {
		return "", fmt.Errorf("encode match: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	path := filepath.Join(s.dir, name+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// List returns the saved filenames sorted by name. A missing directory is
// an empty list.
func (s *MatchStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.dir, err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

// Load reads one file previously returned by List.
func (s *MatchStore) Load(filename string) (*models.Match, error) {
	if err := checkName(filename); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, filename))
	if err != nil {
		return nil, fmt.Errorf("read saved match: %w", err)
	}
	return DecodeMatch(data)
}

// DecodeMatch parses a persisted or raw API match record.
func DecodeMatch(data []byte) (*models.Match, error) {
	var m models.Match
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, &MalformedMatchError{Err: err}
	}
	return &m, nil
}

// MalformedMatchError is returned for records that are not valid match JSON.
type MalformedMatchError struct {
	Err error
}

func (e *MalformedMatchError) Error() string { return "malformed match file: " + e.Err.Error() }
func (e *MalformedMatchError) Unwrap() error { return e.Err }

func checkName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return fmt.Errorf("%w: %q", ErrInvalidMatchName, name)
	}
	return nil
}
