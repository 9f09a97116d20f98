package models

// Group maps to the groups table. Membership is derived from persons.group_id
// rather than stored on the group row.
type Group struct {
	GroupID string `db:"group_id"`
	Name    string `db:"name"`
	Status  string `db:"status"`
	AuditFields
}
