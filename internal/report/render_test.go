package report

import (
	"strings"
	"testing"

	"github.com/ovoronin/gradereport/internal/model"
)

func sampleRecord() model.ScoreRecord {
	return model.ScoreRecord{
		Name:         "Alice",
		ScorePercent: model.Score(85.5),
		Reasoning:    "Mostly correct answers",
		Details: []model.QuestionDetail{
			{Question: "What is 2+2?", StudentAnswer: "4", CorrectAnswer: "4", IsCorrect: true, Feedback: "Well done"},
			{Question: "Capital of France?", StudentAnswer: "Lyon", CorrectAnswer: "Paris"},
		},
	}
}

func TestResolveTitle(t *testing.T) {
	tests := []struct {
		name                        string
		lastUsed, current, fallback string
		want                        string
	}{
		{"last used wins", "Final Exam", "Quiz", "Report", "Final Exam"},
		{"current when last used blank", "   ", "Quiz", "Report", "Quiz"},
		{"fallback when both blank", "", "  ", "Report", "Report"},
		{"trims surrounding whitespace", "  Midterm  ", "", "Report", "Midterm"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveTitle(tt.lastUsed, tt.current, tt.fallback); got != tt.want {
				t.Errorf("ResolveTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderRecordTextFields(t *testing.T) {
	labels := DefaultLabels()
	out := RenderRecordText(sampleRecord(), 0, labels)

	wantLines := []string{
		"Student name: Alice",
		"Score: 85.50",
		"Reason: Mostly correct answers",
		"Need to improve: Mostly correct answers",
		"Per-question evaluation",
		"Q1: What is 2+2?",
		"Student answer: 4",
		"Correct answer: 4",
		"Result: Correct",
		"Feedback: Well done",
		"Q2: Capital of France?",
		"Student answer: Lyon",
		"Correct answer: Paris",
		"Result: Incorrect",
	}
	lines := nonEmptyLines(out)
	if len(lines) != len(wantLines) {
		t.Fatalf("got %d lines, want %d:\n%s", len(lines), len(wantLines), out)
	}
	for i, want := range wantLines {
		if lines[i] != want {
			t.Errorf("line %d = %q, want %q", i, lines[i], want)
		}
	}
}

func TestNeedToImprove(t *testing.T) {
	labels := DefaultLabels()
	tests := []struct {
		name string
		rec  model.ScoreRecord
		want string
	}{
		{"perfect score", model.ScoreRecord{Name: "A", ScorePercent: model.Score(100), Reasoning: "Flawless"}, "Need to improve: None"},
		{"high but not perfect", model.ScoreRecord{Name: "B", ScorePercent: model.Score(99.99), Reasoning: "Nearly there"}, "Need to improve: Nearly there"},
		{"unscored keeps reasoning", model.ScoreRecord{Name: "C", Reasoning: "No score found"}, "Need to improve: No score found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := RenderRecordText(tt.rec, 0, labels)
			if !strings.Contains(out, tt.want+"\n") {
				t.Errorf("output missing %q:\n%s", tt.want, out)
			}
		})
	}
}

func TestRenderUnscoredAndPlaceholders(t *testing.T) {
	labels := DefaultLabels()
	rec := model.ScoreRecord{
		Details: []model.QuestionDetail{{}},
	}
	out := RenderRecordText(rec, 2, labels)

	for _, want := range []string{
		"Student name: Subject 3",
		"Score: -",
		"Q1: -",
		"Student answer: -",
		"Correct answer: -",
		"Result: Incorrect",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Feedback:") {
		t.Error("empty detail feedback should not emit a feedback line")
	}
}

// Rendering the same record as text and as HTML must yield identical field
// values in identical order; only the wrapper syntax may differ.
func TestTextHTMLRoundTrip(t *testing.T) {
	labels := DefaultLabels()
	records := []model.ScoreRecord{
		sampleRecord(),
		{Name: "Bob", Reasoning: "Unscored submission"},
	}

	for _, rec := range records {
		text := RenderRecordText(rec, 0, labels)
		html := RenderRecordHTML(rec, 0, labels)

		textFields := nonEmptyLines(text)
		htmlFields := htmlFieldLines(html)

		if len(textFields) != len(htmlFields) {
			t.Fatalf("field count mismatch for %s: text %d, html %d", rec.Name, len(textFields), len(htmlFields))
		}
		for i := range textFields {
			if textFields[i] != htmlFields[i] {
				t.Errorf("field %d mismatch: text %q, html %q", i, textFields[i], htmlFields[i])
			}
		}
	}
}

func TestRenderHTMLEscaping(t *testing.T) {
	labels := DefaultLabels()
	rec := model.ScoreRecord{Name: "<Bob & Co>", Reasoning: "1 < 2"}
	out := RenderRecordHTML(rec, 0, labels)

	if strings.Contains(out, "<Bob") {
		t.Error("name not escaped")
	}
	for _, want := range []string{"&lt;Bob &amp; Co&gt;", "1 &lt; 2"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderHTMLRawFallback(t *testing.T) {
	labels := DefaultLabels()
	out := RenderHTML(nil, "line one\nline <two>", "Results", labels)

	if !strings.Contains(out, "line one<br>\nline &lt;two&gt;") {
		t.Errorf("raw fallback not escaped with line breaks:\n%s", out)
	}
	if !strings.Contains(out, "<title>Results</title>") {
		t.Error("document title missing")
	}
}

func TestRenderSectionSplitsEvaluations(t *testing.T) {
	labels := DefaultLabels()
	sec := model.Section{
		Filename: "quiz1.pptx",
		Text:     "File: quiz1.pptx\nTotal Slides: 10\n\nCONTENT EVALUATION\nContent Quality Score: 80/100\n\nVISUAL DESIGN EVALUATION\nStructure Score: 60/100",
	}

	out := RenderSectionHTML(sec, labels)
	ci := strings.Index(out, "<h3>Content Evaluation</h3>")
	di := strings.Index(out, "<h3>Visual Design Evaluation</h3>")
	if ci < 0 || di < 0 {
		t.Fatalf("missing sub-block headings:\n%s", out)
	}
	if ci > di {
		t.Error("content block should precede design block")
	}
	if !strings.Contains(out[di:], "Structure Score: 60/100") {
		t.Error("design block should carry the design scores")
	}
}

func TestRenderSectionWithoutBothMarkers(t *testing.T) {
	labels := DefaultLabels()
	sec := model.Section{Filename: "a.pptx", Text: "CONTENT EVALUATION\nContent Quality Score: 70/100"}

	out := RenderSectionHTML(sec, labels)
	if strings.Contains(out, "<h3>") {
		t.Errorf("section with a single marker must stay one undivided block:\n%s", out)
	}
}

func nonEmptyLines(s string) []string {
	var lines []string
	for _, l := range strings.Split(s, "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// htmlFieldLines recovers "label: value" lines from a record's HTML block
// so field order can be compared against the plain-text form.
func htmlFieldLines(html string) []string {
	var lines []string
	for _, l := range strings.Split(html, "\n") {
		l = strings.TrimSpace(l)
		switch {
		case strings.HasPrefix(l, "<p><strong>"):
			l = strings.TrimPrefix(l, "<p><strong>")
			l = strings.TrimSuffix(l, "</p>")
			l = strings.Replace(l, ":</strong>", ":", 1)
			lines = append(lines, unescapeHTML(l))
		case strings.HasPrefix(l, "<h3>"):
			l = strings.TrimPrefix(l, "<h3>")
			l = strings.TrimSuffix(l, "</h3>")
			lines = append(lines, unescapeHTML(l))
		}
	}
	return lines
}

func unescapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&amp;", "&")
	return s
}
