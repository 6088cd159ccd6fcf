package models

// Student is an examinee. Hospital is optional and loaded on demand.
type Student struct {
	ID           int64     `json:"id"`
	EnrollmentID string    `json:"enrollmentId"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	Email        string    `json:"email,omitempty"`
	HospitalID   *int64    `json:"hospitalId,omitempty"`
	Hospital     *Hospital `json:"hospital,omitempty"`
}
