package models

import "time"

// TypingTest is one completed typing test. It is never updated after insert.
type TypingTest struct {
	ID              string    `json:"id"`
	UserID          string    `json:"-"`
	User            any       `json:"user"`
	WPM             float64   `json:"wpm"`
	CPM             float64   `json:"cpm"`
	Accuracy        float64   `json:"accuracy"`
	Mistakes        int       `json:"mistakes"`
	TextLanguage    string    `json:"textLanguage"`
	DifficultyLevel string    `json:"difficultyLevel"`
	DurationSec     *float64  `json:"durationSec,omitempty"`
	TextID          *string   `json:"textId,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Owner is set to the bare user id unless a populated UserRef is attached.
func (t *TypingTest) Owner(ref *UserRef) {
	if ref != nil {
		t.User = *ref
		return
	}
	t.User = t.UserID
}

type Summary struct {
	AvgWPM      float64 `json:"avgWpm"`
	AvgAccuracy float64 `json:"avgAccuracy"`
	TotalTests  int     `json:"totalTests"`
}

// CPMPoint is one entry of the per-language speed history.
type CPMPoint struct {
	CPM          float64   `json:"cpm"`
	Mistakes     int       `json:"mistakes"`
	CreatedAt    time.Time `json:"createdAt"`
	TextLanguage string    `json:"textLanguage"`
}
