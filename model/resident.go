package model

import "time"

type Resident struct {
	ID             string    `json:"id"`
	AadhaarLast4   string    `json:"aadhaar_last4,omitempty"`
	Name           string    `json:"name" binding:"required"`
	Age            int       `json:"age"`
	Gender         string    `json:"gender"`
	Mandal         string    `json:"mandal" binding:"required"`
	Secretariat    string    `json:"secretariat" binding:"required"`
	Village        string    `json:"village,omitempty"`
	Phone          string    `json:"phone,omitempty"`
	HealthFlags    []string  `json:"health_flags,omitempty"`
	LastSurveyedAt time.Time `json:"last_surveyed_at,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type ResidentSearchCriteria struct {
	Name        string `json:"name,omitempty"`
	Mandal      string `json:"mandal,omitempty"`
	Secretariat string `json:"secretariat,omitempty"`
	Gender      string `json:"gender,omitempty"`
	MinAge      int    `json:"min_age,omitempty"`
	MaxAge      int    `json:"max_age,omitempty"`
	Limit       int    `json:"limit,omitempty"`
	Offset      int    `json:"offset,omitempty"`
}
