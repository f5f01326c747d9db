package gen

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/kindredlab/kintree/pkg/errors"
)

// MemStore is an in-memory Store for CLI runs and tests.
// Insertion order is preserved so traversal output stays deterministic.
// MemStore is not safe for concurrent mutation.
type MemStore struct {
	people map[string]*Person
	order  []string
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{people: make(map[string]*Person)}
}

// Add inserts a person record. A missing ID is filled with a generated UUID.
// The (possibly generated) id is returned. Adding a duplicate id is an error.
func (s *MemStore) Add(p Person) (string, error) {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if _, exists := s.people[p.ID]; exists {
		return "", errors.New(errors.ErrCodeInvalidStore, "duplicate person id %q", p.ID)
	}
	stored := p
	s.people[stored.ID] = &stored
	s.order = append(s.order, stored.ID)
	return stored.ID, nil
}

// Len returns the number of people in the store.
func (s *MemStore) Len() int { return len(s.people) }

// IDs returns all person ids in insertion order.
func (s *MemStore) IDs() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

// PersonByID returns the person record, or nil if the id is unknown.
func (s *MemStore) PersonByID(ctx context.Context, id string) (*Person, error) {
	p, ok := s.people[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

// ParentsOf returns the parent ids of the person, in insertion order.
func (s *MemStore) ParentsOf(ctx context.Context, id string) ([]string, error) {
	return s.links(id, func(p *Person) []string { return p.Parents })
}

// ChildrenOf returns the child ids of the person, in insertion order.
func (s *MemStore) ChildrenOf(ctx context.Context, id string) ([]string, error) {
	return s.links(id, func(p *Person) []string { return p.Children })
}

// SpousesOf returns the spouse ids of the person, in insertion order.
func (s *MemStore) SpousesOf(ctx context.Context, id string) ([]string, error) {
	return s.links(id, func(p *Person) []string { return p.Spouses })
}

func (s *MemStore) links(id string, pick func(*Person) []string) ([]string, error) {
	p, ok := s.people[id]
	if !ok {
		return nil, nil
	}
	src := pick(p)
	out := make([]string, len(src))
	copy(out, src)
	return out, nil
}

// Ensure MemStore implements Store.
var _ Store = (*MemStore)(nil)

// ReadPeopleFile loads a JSON array of person records into a MemStore.
// Cross-links are validated: a parent/spouse/child id that references no
// record in the file is an error, since the builder would silently drop it.
func ReadPeopleFile(path string) (*MemStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "people file %s", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ReadPeople(data)
}

// ReadPeople decodes a JSON array of person records into a MemStore.
func ReadPeople(data []byte) (*MemStore, error) {
	var people []Person
	if err := json.Unmarshal(data, &people); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidStore, err, "decode people")
	}

	store := NewMemStore()
	for _, p := range people {
		if _, err := store.Add(p); err != nil {
			return nil, err
		}
	}

	for _, id := range store.order {
		p := store.people[id]
		for _, link := range [][]string{p.Parents, p.Spouses, p.Children} {
			for _, ref := range link {
				if _, ok := store.people[ref]; !ok {
					return nil, errors.New(errors.ErrCodeInvalidStore,
						"person %q references unknown id %q", id, ref)
				}
			}
		}
	}

	return store, nil
}

// WritePeopleFile writes all records of a MemStore as a JSON array.
// Records are written in insertion order with 0644 permissions.
func WritePeopleFile(s *MemStore, path string) error {
	people := make([]Person, 0, len(s.order))
	for _, id := range s.order {
		people = append(people, *s.people[id])
	}
	data, err := json.MarshalIndent(people, "", "  ")
	if err != nil {
		return fmt.Errorf("encode people: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
