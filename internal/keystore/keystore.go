// Package keystore persists named keyboard layouts on the host, so a
// configuration can be composed once and pushed to any number of
// devices later.
package keystore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/getyourway/scanpad-go/internal/protocol"
	"github.com/getyourway/scanpad-go/internal/qr"
)

// ErrNotFound marks a layout name with no stored document.
var ErrNotFound = errors.New("layout not found")

// Layout is one stored keyboard configuration.
type Layout struct {
	Name    string        `json:"name"`
	SavedAt time.Time     `json:"saved_at"`
	Keys    qr.FullConfig `json:"keys"`
}

// Info is the listing summary for one layout.
type Info struct {
	Name    string
	Keys    int
	SavedAt time.Time
}

// Store is a directory of layout documents, one JSON file per layout.
type Store struct {
	baseDir string
}

// DefaultPath returns the store location (~/.scanpad/layouts).
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".scanpad", "layouts"), nil
}

// Open opens or creates a store at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create layout store: %w", err)
	}
	return &Store{baseDir: path}, nil
}

// OpenDefault opens the store at the default path.
func OpenDefault() (*Store, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return Open(path)
}

// validName rejects names that would escape the store directory or
// make unpredictable filenames.
func validName(name string) error {
	if name == "" || len(name) > 64 {
		return fmt.Errorf("layout name %q: %w", name, protocol.ErrInvalidParameter)
	}
	if strings.ContainsAny(name, `/\`) || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("layout name %q: %w", name, protocol.ErrInvalidParameter)
	}
	return nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.baseDir, name+".json")
}

// Save writes cfg under name, replacing any previous document.
func (s *Store) Save(name string, cfg qr.FullConfig) error {
	if err := validName(name); err != nil {
		return err
	}
	if len(cfg) == 0 {
		return fmt.Errorf("empty layout: %w", protocol.ErrInvalidParameter)
	}
	doc := Layout{Name: name, SavedAt: time.Now().UTC(), Keys: cfg}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}
	tmp := s.path(name) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write layout: %w", err)
	}
	if err := os.Rename(tmp, s.path(name)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("finalize layout: %w", err)
	}
	return nil
}

// Load reads the layout stored under name.
func (s *Store) Load(name string) (qr.FullConfig, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%q: %w", name, ErrNotFound)
		}
		return nil, fmt.Errorf("read layout: %w", err)
	}
	var doc Layout
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse layout %q: %w", name, err)
	}
	return doc.Keys, nil
}

// List returns summaries of all stored layouts, sorted by name.
func (s *Store) List() ([]Info, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, err
	}
	var infos []Info
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, name))
		if err != nil {
			continue
		}
		var doc Layout
		if err := json.Unmarshal(data, &doc); err != nil {
			continue
		}
		infos = append(infos, Info{Name: doc.Name, Keys: len(doc.Keys), SavedAt: doc.SavedAt})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// Delete removes a stored layout.
func (s *Store) Delete(name string) error {
	if err := validName(name); err != nil {
		return err
	}
	err := os.Remove(s.path(name))
	if os.IsNotExist(err) {
		return fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	return err
}
