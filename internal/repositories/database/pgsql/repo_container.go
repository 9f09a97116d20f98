package pgsql

import (
	portsrepo "github.com/crediagil/crediagil_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		PersonRepo:      newPgxPersonRepository(dbPool),
		GroupRepo:       newPgxGroupRepository(dbPool),
		LoanRepo:        newPgxLoanRepository(dbPool),
		AccountRepo:     newPgxAccountRepository(dbPool),
		ShareholderRepo: newPgxShareholderRepository(dbPool),
		UserRepo:        newPgxUserRepository(dbPool),
	}
}
