// Package profile persists the local player's progress as a YAML file.
package profile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/tomz197/nosecatch/internal/skin"
)

// Profile is the on-disk player record.
type Profile struct {
	Coins        int      `yaml:"coins"`
	Inventory    []string `yaml:"inventory"`
	Equipped     string   `yaml:"equipped"`
	LastUsername string   `yaml:"last_username,omitempty"`
	TutorialSeen bool     `yaml:"tutorial_seen"`
}

// New returns the profile of a first-time player.
func New() Profile {
	return Profile{Inventory: []string{skin.DefaultID}, Equipped: skin.DefaultID}
}

// Store loads and saves a profile file. Methods are safe for concurrent use.
type Store struct {
	mu   sync.Mutex
	path string
	p    Profile
}

// Open reads the profile at path. A missing file yields a fresh profile.
func Open(path string) (*Store, error) {
	s := &Store{path: path, p: New()}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}
	if err := yaml.Unmarshal(data, &s.p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal profile YAML: %w", err)
	}
	if !slices.Contains(s.p.Inventory, skin.DefaultID) {
		s.p.Inventory = append([]string{skin.DefaultID}, s.p.Inventory...)
	}
	if s.p.Equipped == "" {
		s.p.Equipped = skin.DefaultID
	}
	if s.p.Coins < 0 {
		s.p.Coins = 0
	}
	return s, nil
}

// Get returns a copy of the profile.
func (s *Store) Get() Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.p
	p.Inventory = slices.Clone(s.p.Inventory)
	return p
}

// Update applies fn to the profile and writes the result to disk.
func (s *Store) Update(fn func(p *Profile)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.p
	next.Inventory = slices.Clone(s.p.Inventory)
	fn(&next)
	if err := s.write(next); err != nil {
		return err
	}
	s.p = next
	return nil
}

// AddCoins credits the final score of a session.
func (s *Store) AddCoins(score int) error {
	if score <= 0 {
		return nil
	}
	return s.Update(func(p *Profile) { p.Coins += score })
}

// Wardrobe builds a skin wardrobe from the inventory.
func (s *Store) Wardrobe(r *skin.Registry) *skin.Wardrobe {
	p := s.Get()
	return skin.NewWardrobe(r, p.Inventory, p.Equipped)
}

func (s *Store) write(p Profile) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create profile dir: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace profile: %w", err)
	}
	return nil
}
