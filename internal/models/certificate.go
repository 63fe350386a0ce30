package models

import "time"

// MinCertificateAccuracy is the inclusive accuracy threshold for issuing a certificate.
const MinCertificateAccuracy = 90.0

type Certificate struct {
	ID              string    `json:"id"`
	UserID          string    `json:"userId"`
	UserName        string    `json:"userName"`
	CPM             float64   `json:"cpm"`
	Accuracy        float64   `json:"accuracy"`
	Mistakes        int       `json:"mistakes"`
	Language        string    `json:"language"`
	DifficultyLevel string    `json:"difficultyLevel"`
	Time            *float64  `json:"time,omitempty"`
	ValidationID    string    `json:"validationId"`
	IssuedAt        time.Time `json:"issuedAt"`
}

// Qualifies reports whether a result beats prevBest strictly and meets the accuracy threshold.
func Qualifies(cpm, accuracy, prevBest float64) bool {
	return cpm > prevBest && accuracy >= MinCertificateAccuracy
}
