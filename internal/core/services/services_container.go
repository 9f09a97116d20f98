package services

import (
	portsrepo "github.com/crediagil/crediagil_backend/internal/core/ports/repositories"
	portssvc "github.com/crediagil/crediagil_backend/internal/core/ports/services"
)

// NewServiceContainer wires every service with its repositories. The loan
// service is built first because the account service settles loans when a
// payment completes a schedule.
func NewServiceContainer(repos *portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	loanSvc := NewLoanService(repos.LoanRepo, repos.GroupRepo, repos.PersonRepo, repos.AccountRepo, repos.ShareholderRepo)

	return &portssvc.ServiceContainer{
		Person:      NewPersonService(repos.PersonRepo, repos.GroupRepo, repos.AccountRepo),
		Group:       NewGroupService(repos.GroupRepo, repos.PersonRepo, repos.LoanRepo, repos.AccountRepo),
		Loan:        loanSvc,
		Account:     NewAccountService(repos.AccountRepo, repos.PersonRepo, repos.GroupRepo, repos.LoanRepo, loanSvc),
		Shareholder: NewShareholderService(repos.ShareholderRepo, repos.LoanRepo, repos.AccountRepo),
		User:        NewUserService(repos.UserRepo),
	}
}
