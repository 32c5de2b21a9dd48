package report

import (
	"fmt"
	"strings"

	"github.com/ovoronin/gradereport/internal/model"
)

// Labels holds every user-visible string the renderers and the workbook
// builder emit. DefaultLabels returns the English set; the CLI may install
// a localized set without touching rendering logic.
type Labels struct {
	StudentName   string
	Score         string
	Reason        string
	NeedImprove   string
	None          string
	PerQuestion   string
	StudentAnswer string
	CorrectAnswer string
	Result        string
	Correct       string
	Incorrect     string
	Feedback      string

	ContentSection string
	DesignSection  string

	SummaryBanner string
	AverageScore  string
	HighestBanner string
	LowestBanner  string
	FullBanner    string
	SubjectName   string
	ScorePercent  string
	Reasoning     string
	NotAvailable  string
}

// DefaultLabels returns the English label set.
func DefaultLabels() Labels {
	return Labels{
		StudentName:   "Student name",
		Score:         "Score",
		Reason:        "Reason",
		NeedImprove:   "Need to improve",
		None:          "None",
		PerQuestion:   "Per-question evaluation",
		StudentAnswer: "Student answer",
		CorrectAnswer: "Correct answer",
		Result:        "Result",
		Correct:       "Correct",
		Incorrect:     "Incorrect",
		Feedback:      "Feedback",

		ContentSection: "Content Evaluation",
		DesignSection:  "Visual Design Evaluation",

		SummaryBanner: "Evaluation Summary",
		AverageScore:  "Average Score",
		HighestBanner: "Highest Performers",
		LowestBanner:  "Lowest Performers",
		FullBanner:    "Complete List",
		SubjectName:   "Subject Name",
		ScorePercent:  "Score (%)",
		Reasoning:     "Reasoning",
		NotAvailable:  "N/A",
	}
}

// ResolveTitle picks the export title: the last-used title wins over the
// current one, which wins over the fallback. Blank values fall through.
func ResolveTitle(lastUsed, current, fallback string) string {
	if t := strings.TrimSpace(lastUsed); t != "" {
		return t
	}
	if t := strings.TrimSpace(current); t != "" {
		return t
	}
	return fallback
}

// fieldLine is one label/value pair of the shared formatting contract. The
// plain-text and HTML renderers consume the same field lists, so the two
// exports can only ever differ in wrapper syntax.
type fieldLine struct {
	label, value string
}

// recordFields builds the ordered header block for one record. pos is the
// record's 0-based position, used for the placeholder name.
func recordFields(rec model.ScoreRecord, pos int, labels Labels) []fieldLine {
	score := "-"
	improve := rec.Reasoning
	if rec.ScorePercent != nil {
		score = fmt.Sprintf("%.2f", *rec.ScorePercent)
		if *rec.ScorePercent >= 100 {
			improve = labels.None
		}
	}
	return []fieldLine{
		{labels.StudentName, rec.DisplayName(pos)},
		{labels.Score, score},
		{labels.Reason, rec.Reasoning},
		{labels.NeedImprove, improve},
	}
}

// detailFields builds the per-question record block. idx is 0-based; the
// rendered question label is 1-based.
func detailFields(d model.QuestionDetail, idx int, labels Labels) []fieldLine {
	result := labels.Incorrect
	if d.IsCorrect {
		result = labels.Correct
	}
	fields := []fieldLine{
		{fmt.Sprintf("Q%d", idx+1), orDash(d.Question)},
		{labels.StudentAnswer, orDash(d.StudentAnswer)},
		{labels.CorrectAnswer, orDash(d.CorrectAnswer)},
		{labels.Result, result},
	}
	if strings.TrimSpace(d.Feedback) != "" {
		fields = append(fields, fieldLine{labels.Feedback, d.Feedback})
	}
	return fields
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// RenderRecordText renders one record as plain text.
func RenderRecordText(rec model.ScoreRecord, pos int, labels Labels) string {
	var sb strings.Builder
	for _, f := range recordFields(rec, pos, labels) {
		sb.WriteString(f.label + ": " + f.value + "\n")
	}
	if len(rec.Details) > 0 {
		sb.WriteString("\n" + labels.PerQuestion + "\n")
		for i, d := range rec.Details {
			for _, f := range detailFields(d, i, labels) {
				sb.WriteString(f.label + ": " + f.value + "\n")
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// RenderText renders the whole collection as plain text, falling back to
// the raw text when no structured records are available.
func RenderText(records []model.ScoreRecord, rawText, title string, labels Labels) string {
	var sb strings.Builder
	sb.WriteString(title + "\n\n")
	if len(records) == 0 {
		sb.WriteString(rawText + "\n")
		return sb.String()
	}
	for i, rec := range records {
		sb.WriteString(RenderRecordText(rec, i, labels))
		sb.WriteString("\n")
	}
	return sb.String()
}

// escapeHTML escapes the characters that would change markup meaning before
// user-supplied text is embedded in HTML output.
func escapeHTML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// RenderRecordHTML renders one record as an HTML block with the same fields
// in the same order as the plain-text form.
func RenderRecordHTML(rec model.ScoreRecord, pos int, labels Labels) string {
	var sb strings.Builder
	sb.WriteString("<div class=\"record\">\n")
	for _, f := range recordFields(rec, pos, labels) {
		fmt.Fprintf(&sb, "<p><strong>%s:</strong> %s</p>\n", escapeHTML(f.label), escapeHTML(f.value))
	}
	if len(rec.Details) > 0 {
		fmt.Fprintf(&sb, "<h3>%s</h3>\n", escapeHTML(labels.PerQuestion))
		for i, d := range rec.Details {
			sb.WriteString("<div class=\"question\">\n")
			for _, f := range detailFields(d, i, labels) {
				fmt.Fprintf(&sb, "<p><strong>%s:</strong> %s</p>\n", escapeHTML(f.label), escapeHTML(f.value))
			}
			sb.WriteString("</div>\n")
		}
	}
	sb.WriteString("</div>\n")
	return sb.String()
}

// RenderHTML renders the whole collection as a self-contained HTML document
// usable both for print-to-PDF and, byte for byte, as the .doc payload.
// With no records the raw text is escaped and rendered with explicit line
// breaks.
func RenderHTML(records []model.ScoreRecord, rawText, title string, labels Labels) string {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&sb, "<title>%s</title>\n", escapeHTML(title))
	sb.WriteString("</head>\n<body>\n")
	fmt.Fprintf(&sb, "<h1>%s</h1>\n", escapeHTML(title))

	if len(records) == 0 {
		sb.WriteString("<p>" + strings.ReplaceAll(escapeHTML(rawText), "\n", "<br>\n") + "</p>\n")
	} else {
		for i, rec := range records {
			sb.WriteString(RenderRecordHTML(rec, i, labels))
		}
	}

	sb.WriteString("</body>\n</html>\n")
	return sb.String()
}

// sectionPart is one labeled sub-block of a raw evaluation section.
type sectionPart struct {
	heading, text string
}

// splitSectionParts splits a raw section into content and design sub-blocks
// when both evaluation markers are present, cutting at the first design
// marker. Otherwise the section stays one undivided block.
func splitSectionParts(sec model.Section, labels Labels) []sectionPart {
	ci := strings.Index(sec.Text, contentMarker)
	di := strings.Index(sec.Text, designMarker)
	if ci < 0 || di < 0 {
		return []sectionPart{{"", sec.Text}}
	}
	return []sectionPart{
		{labels.ContentSection, strings.TrimSpace(sec.Text[:di])},
		{labels.DesignSection, strings.TrimSpace(sec.Text[di:])},
	}
}

// RenderSectionHTML renders one raw evaluation section, splitting it into
// separately headed content and design blocks when both markers appear.
func RenderSectionHTML(sec model.Section, labels Labels) string {
	var sb strings.Builder
	sb.WriteString("<div class=\"section\">\n")
	if name := strings.TrimSpace(sec.Filename); name != "" {
		fmt.Fprintf(&sb, "<h2>%s</h2>\n", escapeHTML(name))
	}
	for _, part := range splitSectionParts(sec, labels) {
		if part.heading != "" {
			fmt.Fprintf(&sb, "<h3>%s</h3>\n", escapeHTML(part.heading))
		}
		sb.WriteString("<p>" + strings.ReplaceAll(escapeHTML(part.text), "\n", "<br>\n") + "</p>\n")
	}
	sb.WriteString("</div>\n")
	return sb.String()
}

// RenderSectionText renders one raw evaluation section as plain text with
// the same content/design split as the HTML form.
func RenderSectionText(sec model.Section, labels Labels) string {
	var sb strings.Builder
	if name := strings.TrimSpace(sec.Filename); name != "" {
		sb.WriteString(name + "\n\n")
	}
	for _, part := range splitSectionParts(sec, labels) {
		if part.heading != "" {
			sb.WriteString(part.heading + "\n")
		}
		sb.WriteString(part.text + "\n\n")
	}
	return sb.String()
}
