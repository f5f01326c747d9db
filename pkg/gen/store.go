// Package gen defines the relationship store the layout engine reads from.
//
// The engine never owns genealogical records. It consumes them through the
// read-only [Store] interface, which any backend can implement. This package
// ships three implementations:
//   - [MemStore]: in-memory store for CLI use and tests
//   - [MongoStore]: MongoDB-backed store for the serve facade
//   - JSON file loading via [ReadPeopleFile], which fills a MemStore
//
// # Records
//
// A [Person] is a flat record: identity, display name, optional birth and
// death years (0 means unknown), a sex classification used only for
// renderer-side color mapping, and id links to parents, spouses, and
// children. Link order is preserved by every backend because the layout
// engine derives deterministic output from it.
package gen

import "context"

// Sex is the classification a renderer maps to color.
// The engine attaches no other meaning to it.
type Sex string

// Sex classifications.
const (
	SexUnknown Sex = ""
	SexFemale  Sex = "F"
	SexMale    Sex = "M"
)

// Person is a single genealogical record as stored by a backend.
// Years of 0 mean unknown. Link slices are ordered and may be empty.
type Person struct {
	ID        string   `json:"id" bson:"_id"`
	Name      string   `json:"name,omitempty" bson:"name,omitempty"`
	BirthYear int      `json:"birth_year,omitempty" bson:"birth_year,omitempty"`
	DeathYear int      `json:"death_year,omitempty" bson:"death_year,omitempty"`
	Sex       Sex      `json:"sex,omitempty" bson:"sex,omitempty"`
	Parents   []string `json:"parents,omitempty" bson:"parents,omitempty"`
	Spouses   []string `json:"spouses,omitempty" bson:"spouses,omitempty"`
	Children  []string `json:"children,omitempty" bson:"children,omitempty"`
}

// DisplayLabel returns the name if set, otherwise the ID.
func (p *Person) DisplayLabel() string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}

// Store is the read-only interface the graph builder traverses.
//
// All methods return nil (not an error) for an unknown person id except
// PersonByID, which reports existence. Implementations must return link
// slices in a stable order: the builder's output is deterministic only if
// the store's is.
type Store interface {
	// PersonByID returns the person record, or nil if the id is unknown.
	PersonByID(ctx context.Context, id string) (*Person, error)

	// ParentsOf returns the parent ids of the person, in stable order.
	ParentsOf(ctx context.Context, id string) ([]string, error)

	// ChildrenOf returns the child ids of the person, in stable order.
	ChildrenOf(ctx context.Context, id string) ([]string, error)

	// SpousesOf returns the spouse ids of the person, in stable order.
	SpousesOf(ctx context.Context, id string) ([]string, error)
}
