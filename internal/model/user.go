package model

import "time"

type User struct {
	ID                string    `json:"id"`
	Username          string    `json:"username"`
	Name              string    `json:"name"`
	CreatedAt         time.Time `json:"createdAt"`
	CurrentStreak     int       `json:"currentStreak"`
	BestStreak        int       `json:"bestStreak"`
	LastActiveDate    string    `json:"lastActiveDate"`
	TotalStudyMinutes int       `json:"totalStudyMinutes"`
	TasksCompleted    int       `json:"tasksCompleted"`
}

type LeaderboardEntry struct {
	Rank              int    `json:"rank"`
	UserID            string `json:"userId"`
	Username          string `json:"username"`
	Name              string `json:"name"`
	TotalStudyMinutes int    `json:"totalStudyMinutes"`
	TasksCompleted    int    `json:"tasksCompleted"`
	CurrentStreak     int    `json:"currentStreak"`
	BestStreak        int    `json:"bestStreak"`
}
