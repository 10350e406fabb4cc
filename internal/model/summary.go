package model

import "time"

type DailySummary struct {
	ID                string    `json:"id"`
	UserID            string    `json:"userId"`
	Date              string    `json:"date"`
	MathsProblems     int       `json:"mathsProblems"`
	PhysicsProblems   int       `json:"physicsProblems"`
	ChemistryProblems int       `json:"chemistryProblems"`
	TopicsCovered     string    `json:"topicsCovered"`
	Notes             string    `json:"notes"`
	SelfRating        int       `json:"selfRating"`
	TotalStudyHours   float64   `json:"totalStudyHours"`
	TasksCompleted    int       `json:"tasksCompleted"`
	SuccessRate       int       `json:"successRate"`
	UpdatedAt         time.Time `json:"updatedAt"`
}
