package report

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ovoronin/gradereport/internal/model"
)

// The three score markers the content evaluator emits. Each is optional;
// the extracted score is the mean of whichever subset matched.
var scorePatterns = []*regexp.Regexp{
	regexp.MustCompile(`Content Quality Score:\s*(\d+)\s*/\s*100`),
	regexp.MustCompile(`Structure Score:\s*(\d+)\s*/\s*100`),
	regexp.MustCompile(`Alignment Score:\s*(\d+)\s*/\s*100`),
}

// scoreLineRe matches lines that open any "<Label> Score:" field, which
// terminate a running feedback capture.
var scoreLineRe = regexp.MustCompile(`^[A-Za-z][A-Za-z ]*Score:`)

// fallbackReasoning is used when score evidence exists but no feedback line
// was found, so downstream consumers never see an empty reasoning.
const fallbackReasoning = "Evaluation completed"

// Extract derives score records from sections. Sections yielding neither a
// score nor feedback are skipped: they are producer output deemed
// non-evaluative, not an error.
func Extract(sections []model.Section) []model.ScoreRecord {
	var records []model.ScoreRecord
	for _, sec := range sections {
		if rec, ok := ExtractRecord(sec); ok {
			records = append(records, rec)
		}
	}
	return records
}

// ExtractRecord recovers a best-effort score record from one section.
// The boolean is false when the section carries no evaluation evidence.
func ExtractRecord(sec model.Section) (model.ScoreRecord, bool) {
	score := extractScore(sec.Text)
	feedback := extractFeedback(sec.Text)
	if score == nil && feedback == "" {
		return model.ScoreRecord{}, false
	}

	name := strings.TrimSpace(sec.Filename)
	if name == "" {
		name = firstFilename(sec.Text)
	}
	if name == "" {
		name = "Unknown"
	}

	reasoning := feedback
	if reasoning == "" {
		reasoning = fallbackReasoning
	}

	return model.ScoreRecord{
		Name:         name,
		ScorePercent: score,
		Reasoning:    reasoning,
	}, true
}

// extractScore averages whichever of the three score markers are present.
// None present, or none parseable, yields nil — never zero.
func extractScore(text string) *float64 {
	var sum float64
	var n int
	for _, re := range scorePatterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		sum += float64(v)
		n++
	}
	if n == 0 {
		return nil
	}
	return model.Score(sum / float64(n))
}

// extractFeedback collects every "Feedback:" line together with its
// continuation lines, joined into one reasoning string.
func extractFeedback(text string) string {
	lines := strings.Split(text, "\n")
	var parts []string
	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if !strings.HasPrefix(line, "Feedback:") {
			continue
		}
		entry := strings.TrimSpace(strings.TrimPrefix(line, "Feedback:"))
		for i+1 < len(lines) {
			next := strings.TrimSpace(lines[i+1])
			if next == "" || startsMarker(next) {
				break
			}
			if entry != "" {
				entry += " "
			}
			entry += next
			i++
		}
		if entry != "" {
			parts = append(parts, entry)
		}
	}
	return strings.Join(parts, "; ")
}

// startsMarker reports whether a line opens a new field that ends a
// feedback continuation.
func startsMarker(line string) bool {
	return strings.HasPrefix(line, "File:") ||
		strings.HasPrefix(line, "Feedback:") ||
		scoreLineRe.MatchString(line)
}
