package models

// Question belongs to a station. MinValue/MaxValue bound NUMERIC answers;
// ReferenceAnswer is the model answer shown for TEXT and NUMERIC questions.
type Question struct {
	ID              int64        `json:"id"`
	StationID       int64        `json:"stationId"`
	Text            string       `json:"text"`
	Type            QuestionType `json:"type"`
	IsRequired      bool         `json:"isRequired"`
	OrderIndex      int          `json:"orderIndex"`
	Points          float64      `json:"points"`
	MinValue        *float64     `json:"minValue,omitempty"`
	MaxValue        *float64     `json:"maxValue,omitempty"`
	ReferenceAnswer *string      `json:"referenceAnswer,omitempty"`
	Options         []*Option    `json:"options,omitempty"`
}

// Option is one selectable answer of a choice question.
type Option struct {
	ID         int64  `json:"id"`
	QuestionID int64  `json:"questionId"`
	Text       string `json:"text"`
	IsCorrect  bool   `json:"isCorrect"`
	OrderIndex int    `json:"orderIndex"`
}
