package model

// ProblemStats are per-problem counters for one test
type ProblemStats struct {
	ProblemID    int   `json:"problemId"`
	Attempts     int   `json:"attempts"`
	Solved       bool  `json:"solved"`
	FirstServed  int64 `json:"-"` // unix seconds, 0 if never served
	SolvedAt     int64 `json:"-"` // unix seconds, 0 if unsolved
	TimeSpentSec int64 `json:"timeSpentSec"`
}

// TestStats is the raw counter set kept for one test
type TestStats struct {
	TotalAttempts int
	Accepted      int
	Languages     map[Language]int
	Problems      map[int]*ProblemStats
}

// TestAnalytics is the dashboard summary of one test
type TestAnalytics struct {
	TestID           string         `json:"testId"`
	Active           bool           `json:"active"`
	TotalProblems    int            `json:"totalProblems"`
	SolvedProblems   int            `json:"solvedProblems"`
	TotalAttempts    int            `json:"totalAttempts"`
	SuccessRate      int            `json:"successRate"` // percent of attempted problems solved
	FavoriteLanguage Language       `json:"favoriteLanguage,omitempty"`
	TotalTimeSec     int64          `json:"totalTimeSec"`
	AverageTimeSec   int64          `json:"averageTimeSec"`
	Problems         []ProblemStats `json:"problems"`
}
