package domain

import "time"

type PlanningRequest struct {
	Date             time.Time
	StartTime        string
	EndTime          string
	PreferredUserIDs []int64
	Location         string
}

type PlanningSuggestion struct {
	UserID                    int64  `json:"userID"`
	FullName                  string `json:"fullName"`
	AvailableFrom             string `json:"availableFrom"`
	AvailableUntil            string `json:"availableUntil"`
	Location                  string `json:"location"`
	AssignedTasksThatDayCount int    `json:"assignedTasksThatDayCount"`
}
