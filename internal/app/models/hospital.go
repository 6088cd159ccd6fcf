package models

// Hospital is a clinical site students are attached to.
type Hospital struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	City    string `json:"city"`
	Address string `json:"address,omitempty"`
}
