package services

import (
	"context"

	"github.com/crediagil/crediagil_backend/internal/core/domain"
	portsrepo "github.com/crediagil/crediagil_backend/internal/core/ports/repositories"
	"github.com/crediagil/crediagil_backend/internal/dto"
)

// PersonReaderSvc defines read operations for person data
type PersonReaderSvc interface {
	// GetPersonByID retrieves a person. The returned status carries the
	// MOROSO overlay when the person has an overdue installment.
	GetPersonByID(ctx context.Context, personID string) (*domain.Person, error)

	// ListPersons retrieves a filtered, paginated list of persons with the
	// MOROSO overlay applied.
	ListPersons(ctx context.Context, filter portsrepo.ListPersonsFilter) ([]domain.Person, error)
}

// PersonWriterSvc defines write operations for person data
type PersonWriterSvc interface {
	// CreatePerson registers a new person worth vetting for credit.
	CreatePerson(ctx context.Context, req dto.CreatePersonRequest, creatorUserID string) (*domain.Person, error)

	// UpdatePerson applies a partial update, recomputes the person status
	// from the checks, and refreshes the statuses of any affected groups.
	UpdatePerson(ctx context.Context, personID string, req dto.UpdatePersonRequest, updaterUserID string) (*domain.Person, error)

	// ArchivePerson detaches the person from their group and excludes them
	// from future status derivations. The group they held is remembered.
	ArchivePerson(ctx context.Context, personID string, updaterUserID string) error

	// RestorePerson reverses an archival, reattaching the remembered group
	// when it still exists.
	RestorePerson(ctx context.Context, personID string, updaterUserID string) (*domain.Person, error)
}

// PersonSvcFacade combines all person-related service interfaces
type PersonSvcFacade interface {
	PersonReaderSvc
	PersonWriterSvc
}
