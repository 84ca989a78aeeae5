package dto

type TestResult struct {
	ID           string
	TestName     string
	Category     string
	Score        float64
	Unit         string
	Date         string
	Percentile   int
	AthleteID    string
	Notes        string
	PersonalBest bool
	VideoURL     string
}

type LoadOutput struct {
	Count    int
	Fallback bool
	Applied  bool
}

type ListRecentInput struct {
	Limit int
}

type PersonalBestsInput struct {
	AthleteID string
}

type PersonalBestInput struct {
	AthleteID string
	TestName  string
}

type PersonalBestOutput struct {
	Result TestResult
	Found  bool
}

type ByCategoryInput struct {
	Category string
	Limit    int
}

type TopInput struct {
	TestName string
	Limit    int
}
