package dto

import "time"

type OpenInput struct {
	TestID string
}

type RepetitionInput struct {
	Count int
}

type StopInput struct {
	AthleteID string
	Notes     string
}

type AttemptOutput struct {
	AttemptID       string
	TestID          string
	TestName        string
	Category        string
	Phase           string
	Unit            string
	RepetitionBased bool
	Elapsed         time.Duration
	Reps            int
	StartedAt       time.Time
	LastResultID    string
}

type ResultOutput struct {
	ID           string
	TestName     string
	Category     string
	Score        float64
	Unit         string
	Date         string
	Percentile   int
	Elapsed      time.Duration
	Reps         int
	AthleteID    string
	Notes        string
	PersonalBest bool
}

type StopOutput struct {
	Attempt  AttemptOutput
	Result   ResultOutput
	NotePath string
}
