package dto

import "time"

type ListTestsInput struct {
	Category string
}

type TestOutput struct {
	ID         string
	Name       string
	Category   string
	Difficulty string
	Duration   time.Duration
}

type TestDetailOutput struct {
	ID           string
	Name         string
	Description  string
	Category     string
	Instructions []string
	Duration     time.Duration
	Difficulty   string
}

type InitCatalogInput struct {
	Force bool
}

type InitCatalogOutput struct {
	Path  string
	Count int
}
