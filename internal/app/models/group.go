package models

// Group is a student cohort.
type Group struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	CohortYear int    `json:"cohortYear"`
}
