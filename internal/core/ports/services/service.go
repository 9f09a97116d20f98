package services

// ServiceContainer holds all service facades needed by the handlers.
type ServiceContainer struct {
	Person      PersonSvcFacade
	Group       GroupSvcFacade
	Loan        LoanSvcFacade
	Account     AccountSvcFacade
	Shareholder ShareholderSvcFacade
	User        UserSvcFacade
}
