package repositories

import (
	"context"

	"github.com/crediagil/crediagil_backend/internal/core/domain"
)

// ListPersonsFilter narrows person listings. Zero values mean no filtering.
type ListPersonsFilter struct {
	Status          domain.PersonStatus
	GroupID         string
	Unassigned      bool // only persons without a group
	IncludeArchived bool
	Limit           int
	Offset          int
}

// PersonReader defines read operations for person data
type PersonReader interface {
	// FindPersonByID retrieves a specific person by their ID.
	FindPersonByID(ctx context.Context, personID string) (*domain.Person, error)

	// FindPersonByNationalID retrieves a person by national identity number.
	// Archived persons are excluded.
	FindPersonByNationalID(ctx context.Context, nationalID string) (*domain.Person, error)

	// FindPersonsByIDs retrieves multiple persons, keyed by ID. Missing IDs
	// are simply absent from the result.
	FindPersonsByIDs(ctx context.Context, personIDs []string) (map[string]domain.Person, error)

	// FindPersonsByGroupID retrieves the members of a group.
	FindPersonsByGroupID(ctx context.Context, groupID string, includeArchived bool) ([]domain.Person, error)

	// FindPersons retrieves a filtered, paginated list of persons.
	FindPersons(ctx context.Context, filter ListPersonsFilter) ([]domain.Person, error)
}

// PersonWriter defines write operations for person data
type PersonWriter interface {
	// SavePerson persists a new person.
	SavePerson(ctx context.Context, person domain.Person) error

	// UpdatePerson updates an existing person's details, checks and group
	// assignment.
	UpdatePerson(ctx context.Context, person domain.Person) error
}

// PersonRepositoryFacade combines all person-related repository interfaces
type PersonRepositoryFacade interface {
	PersonReader
	PersonWriter
}
