package models

import "time"

type Text struct {
	ID              string    `json:"id"`
	Text            string    `json:"text"`
	Date            time.Time `json:"date"`
	Language        string    `json:"language"`
	DifficultyLevel string    `json:"difficultyLevel"`
}

// TextUpdate carries the editable text fields; nil means unchanged.
type TextUpdate struct {
	Text            *string
	Date            *time.Time
	Language        *string
	DifficultyLevel *string
}

// TextFilter narrows random text selection. Empty fields match everything.
type TextFilter struct {
	Language        string
	DifficultyLevel string
}
