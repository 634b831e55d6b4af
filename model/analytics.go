package model

import "time"

type MandalCount struct {
	Mandal string `json:"mandal"`
	Count  int    `json:"count"`
}

type SecretariatCount struct {
	Mandal      string `json:"mandal"`
	Secretariat string `json:"secretariat"`
	Count       int    `json:"count"`
}

type AnalyticsOverview struct {
	TotalResidents    int           `json:"total_residents"`
	ByMandal          []MandalCount `json:"by_mandal"`
	HealthFlagTallies map[string]int `json:"health_flag_tallies"`
	ComputedAt        time.Time     `json:"computed_at"`
}

type MandalAnalytics struct {
	Mandal        string             `json:"mandal"`
	Total         int                `json:"total"`
	BySecretariat []SecretariatCount `json:"by_secretariat"`
	ComputedAt    time.Time          `json:"computed_at"`
}
