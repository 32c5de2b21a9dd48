package model

import (
	"fmt"
	"strings"
	"time"
)

// ScoreRecord is the structured evaluation result for one graded subject
// (a student or a submitted file). ScorePercent is nil when no numeric
// score could be recovered; nil is never coerced to zero.
type ScoreRecord struct {
	Name         string           `json:"name"`
	ScorePercent *float64         `json:"score_percent"`
	Reasoning    string           `json:"reasoning"`
	Details      []QuestionDetail `json:"details,omitempty"`
}

// DisplayName returns the record's name, falling back to a positional
// placeholder ("Subject N", 1-based) when the name is blank.
func (r ScoreRecord) DisplayName(pos int) string {
	if name := strings.TrimSpace(r.Name); name != "" {
		return name
	}
	return fmt.Sprintf("Subject %d", pos+1)
}

// Scored reports whether the record carries a numeric score.
func (r ScoreRecord) Scored() bool {
	return r.ScorePercent != nil
}

// QuestionDetail is one per-question evaluation within a ScoreRecord.
// Only IsCorrect == true counts as correct; absent fields render as "-".
type QuestionDetail struct {
	Question      string `json:"question"`
	StudentAnswer string `json:"student_answer"`
	CorrectAnswer string `json:"correct_answer"`
	IsCorrect     bool   `json:"is_correct"`
	Feedback      string `json:"feedback,omitempty"`
}

// Section is one contiguous run of raw grading text attributed to a single
// subject, before structured extraction. Filename is empty when no header
// marker was found for it.
type Section struct {
	Filename string
	Text     string
}

// EvaluationResult mirrors the JSON schema the grading backend returns when
// it produces structured output directly, bypassing text extraction.
type EvaluationResult struct {
	Summary string        `json:"summary"`
	Scores  []ScoreRecord `json:"scores"`
}

// ReportRecord is the archived metadata for one completed export.
type ReportRecord struct {
	ID           int64
	Title        string
	Format       string
	Filename     string
	SubjectCount int
	AverageScore *float64
	CreatedAt    time.Time
}

// Score returns a pointer to v, for building ScoreRecords in place.
func Score(v float64) *float64 {
	return &v
}
