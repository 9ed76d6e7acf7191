package model

import "strings"

// Language is a supported submission language
type Language string

const (
	LanguageCPP        Language = "cpp"
	LanguagePython     Language = "python"
	LanguageJava       Language = "java"
	LanguageJavaScript Language = "javascript"
)

// ParseLanguage normalizes s and reports whether it names a supported language
func ParseLanguage(s string) (Language, bool) {
	lang := Language(strings.ToLower(strings.TrimSpace(s)))
	switch lang {
	case LanguageCPP, LanguagePython, LanguageJava, LanguageJavaScript:
		return lang, true
	}
	return "", false
}

// VerdictStatus is the outcome class of an evaluation
type VerdictStatus string

const (
	VerdictAccepted    VerdictStatus = "Accepted"
	VerdictWrongAnswer VerdictStatus = "WrongAnswer"
	VerdictError       VerdictStatus = "Error"
)

// SubmitRequest is the body of POST /test/{id}/submission
type SubmitRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

// Verdict is the result of grading one submission.
// Error verdicts never carry test case counts.
type Verdict struct {
	Status          VerdictStatus `json:"status"`
	Message         string        `json:"message"`
	TestCasesPassed *int          `json:"testCasesPassed,omitempty"`
	TotalTestCases  *int          `json:"totalTestCases,omitempty"`
	ExecutionTime   string        `json:"executionTime,omitempty"` // e.g. "42ms"
}

// ErrorVerdict builds an Error verdict with msg
func ErrorVerdict(msg string) *Verdict {
	return &Verdict{Status: VerdictError, Message: msg}
}

// Accepted reports whether v is an Accepted verdict
func (v *Verdict) Accepted() bool {
	return v != nil && v.Status == VerdictAccepted
}

// WithCounts sets the passed/total test case counts
func (v *Verdict) WithCounts(passed, total int) *Verdict {
	v.TestCasesPassed = &passed
	v.TotalTestCases = &total
	return v
}

// SubmissionResult is the response to a submission
type SubmissionResult struct {
	Verdict
	ProblemID int  `json:"problemId,omitempty"`
	Advanced  bool `json:"advanced"` // session moved to the next problem
}
