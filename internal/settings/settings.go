// Package settings holds the user-extensible selector lists and persists
// them as a flat YAML object.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/starford/basetag/internal/apperr"
	"github.com/starford/basetag/internal/dom"
	"github.com/starford/basetag/internal/storage"
)

// Settings extends the built-in selectors of the tag passes.
type Settings struct {
	// CustomTagSelectors match additional property tag elements.
	CustomTagSelectors []string `yaml:"customTagSelectors" json:"customTagSelectors"`
	// CustomTagContainerSelectors match additional property containers to
	// watch for changes.
	CustomTagContainerSelectors []string `yaml:"customTagContainerSelectors" json:"customTagContainerSelectors"`
}

// Default returns settings with both lists empty.
func Default() Settings {
	return Settings{
		CustomTagSelectors:          []string{},
		CustomTagContainerSelectors: []string{},
	}
}

// Validate checks that every selector compiles. Failures wrap
// apperr.ErrInvalidSelector.
func (s *Settings) Validate() error {
	err := validation.ValidateStruct(s,
		validation.Field(&s.CustomTagSelectors, validation.Each(validation.Required, validation.By(selector))),
		validation.Field(&s.CustomTagContainerSelectors, validation.Each(validation.Required, validation.By(selector))),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrInvalidSelector, err)
	}
	return nil
}

func selector(value interface{}) error {
	s, _ := value.(string)
	if _, err := dom.Compile(s); err != nil {
		return errors.New("not a CSS selector")
	}
	return nil
}

// Clone returns a deep copy.
func (s Settings) Clone() Settings {
	return Settings{
		CustomTagSelectors:          append([]string{}, s.CustomTagSelectors...),
		CustomTagContainerSelectors: append([]string{}, s.CustomTagContainerSelectors...),
	}
}

func (s *Settings) fillDefaults() {
	if s.CustomTagSelectors == nil {
		s.CustomTagSelectors = []string{}
	}
	if s.CustomTagContainerSelectors == nil {
		s.CustomTagContainerSelectors = []string{}
	}
}

// ParseList splits a comma-separated selector list. Blank entries are
// dropped, so an empty input yields an empty list.
func ParseList(value string) []string {
	out := []string{}
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Store guards the settings shared by the controller and its passes and
// writes every change back to disk.
type Store struct {
	path string

	mu       sync.RWMutex
	settings Settings
}

// Open loads the settings file at path, merged over the defaults. A missing
// file yields the defaults.
func Open(path string) (*Store, error) {
	s := &Store{path: path, settings: Default()}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("settings: read %s: %w", path, err)
	}
	loaded := Default()
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("settings: parse %s: %w", path, err)
	}
	loaded.fillDefaults()
	s.settings = loaded
	return s, nil
}

// NewMemory returns a store that is never persisted.
func NewMemory(initial Settings) *Store {
	initial.fillDefaults()
	return &Store{settings: initial.Clone()}
}

// Path returns the settings file location, empty for memory stores.
func (s *Store) Path() string { return s.path }

// Get returns a copy of the current settings.
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.Clone()
}

// Update applies fn to a copy of the settings, validates the result and
// saves it. On error the stored settings are unchanged.
func (s *Store) Update(fn func(*Settings)) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.settings.Clone()
	fn(&next)
	next.fillDefaults()
	if err := next.Validate(); err != nil {
		return s.settings.Clone(), err
	}
	if err := s.save(next); err != nil {
		return s.settings.Clone(), err
	}
	s.settings = next
	return next.Clone(), nil
}

// Save writes the current settings to disk.
func (s *Store) Save() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.save(s.settings)
}

func (s *Store) save(v Settings) error {
	if s.path == "" {
		return nil
	}
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("settings: encode: %w", err)
	}
	if err := storage.WriteFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("settings: save %s: %w", s.path, err)
	}
	return nil
}
