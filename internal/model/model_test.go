package model

import (
	"encoding/json"
	"testing"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		rec  ScoreRecord
		pos  int
		want string
	}{
		{"named", ScoreRecord{Name: "Alice"}, 0, "Alice"},
		{"blank name", ScoreRecord{Name: "   "}, 0, "Subject 1"},
		{"empty name positional", ScoreRecord{}, 4, "Subject 5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.DisplayName(tt.pos); got != tt.want {
				t.Errorf("DisplayName(%d) = %q, want %q", tt.pos, got, tt.want)
			}
		})
	}
}

func TestScoreRecordJSONSchema(t *testing.T) {
	// The wire shape must match what the grading backend emits, including
	// null for an unscored record.
	data := []byte(`{
		"summary": "one graded",
		"scores": [
			{"name": "Alice", "score_percent": 87.5, "reasoning": "ok",
			 "details": [{"question": "q", "student_answer": "a", "correct_answer": "a", "is_correct": true, "feedback": "fine"}]},
			{"name": "Bob", "score_percent": null, "reasoning": "unreadable"}
		]
	}`)

	var result EvaluationResult
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(result.Scores) != 2 {
		t.Fatalf("expected 2 scores, got %d", len(result.Scores))
	}

	alice := result.Scores[0]
	if !alice.Scored() || *alice.ScorePercent != 87.5 {
		t.Errorf("alice score = %v", alice.ScorePercent)
	}
	if len(alice.Details) != 1 || !alice.Details[0].IsCorrect {
		t.Errorf("alice details = %+v", alice.Details)
	}

	if result.Scores[1].Scored() {
		t.Error("null score_percent must stay unscored, not become zero")
	}
}
