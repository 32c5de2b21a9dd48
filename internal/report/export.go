package report

import (
	"regexp"
	"strings"
	"time"

	"github.com/ovoronin/gradereport/internal/model"
)

// Export is a fully formed byte payload ready to hand to whatever sink the
// caller owns (file, HTTP response, download). The core never writes it
// anywhere itself.
type Export struct {
	Filename string
	MIMEType string
	Data     []byte
}

// Media types for the supported export forms. The doc payload is the HTML
// payload under a word-processor media type; content is byte-identical.
const (
	MIMEText = "text/plain; charset=utf-8"
	MIMEHTML = "text/html; charset=utf-8"
	MIMEDoc  = "application/msword"
	MIMEXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var (
	disallowedRe = regexp.MustCompile(`[^0-9A-Za-z_\- ]+`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// SanitizeName makes a string safe for use in a filename: characters other
// than alphanumerics, dash, underscore, and space are stripped, then
// whitespace runs collapse to single underscores.
func SanitizeName(s string) string {
	s = disallowedRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(strings.TrimSpace(s), "_")
	if s == "" {
		return "output"
	}
	return s
}

// exportFilename builds the timestamped export name
// <title>[_<subject>]_<DD-MM-YYYY>_<HH-MM>.<ext>.
func exportFilename(title, subject, ext string, at time.Time) string {
	name := SanitizeName(title)
	if strings.TrimSpace(subject) != "" {
		name += "_" + SanitizeName(subject)
	}
	return name + "_" + at.Format("02-01-2006_15-04") + "." + ext
}

// documentFilename builds the untimestamped single-document name.
func documentFilename(title, ext string) string {
	return SanitizeName(title) + "." + ext
}

// nothingToExport reports whether an export call has no usable data and
// should be a silent no-op.
func nothingToExport(records []model.ScoreRecord, rawText string) bool {
	return len(records) == 0 && strings.TrimSpace(rawText) == ""
}

// TextExport builds the plain-text payload. ok is false when there is
// nothing to export.
func TextExport(records []model.ScoreRecord, rawText, title, lastTitle string, labels Labels, at time.Time) (Export, bool) {
	if nothingToExport(records, rawText) {
		return Export{}, false
	}
	resolved := ResolveTitle(lastTitle, title, "Report")
	return Export{
		Filename: exportFilename(resolved, "", "txt", at),
		MIMEType: MIMEText,
		Data:     []byte(RenderText(records, rawText, resolved, labels)),
	}, true
}

// RecordTextExport builds a plain-text payload for a single subject; the
// filename carries the sanitized subject name after the title.
func RecordTextExport(rec model.ScoreRecord, pos int, title, lastTitle string, labels Labels, at time.Time) Export {
	resolved := ResolveTitle(lastTitle, title, "Report")
	return Export{
		Filename: exportFilename(resolved, rec.DisplayName(pos), "txt", at),
		MIMEType: MIMEText,
		Data:     []byte(RenderRecordText(rec, pos, labels)),
	}
}

// HTMLExport builds the print-ready markup payload.
func HTMLExport(records []model.ScoreRecord, rawText, title, lastTitle string, labels Labels) (Export, bool) {
	if nothingToExport(records, rawText) {
		return Export{}, false
	}
	resolved := ResolveTitle(lastTitle, title, "Report")
	return Export{
		Filename: documentFilename(resolved, "html"),
		MIMEType: MIMEHTML,
		Data:     []byte(RenderHTML(records, rawText, resolved, labels)),
	}, true
}

// DocExport builds the word-processor payload. The bytes are exactly the
// HTML export's; only the wrapper media type and extension differ.
func DocExport(records []model.ScoreRecord, rawText, title, lastTitle string, labels Labels) (Export, bool) {
	html, ok := HTMLExport(records, rawText, title, lastTitle, labels)
	if !ok {
		return Export{}, false
	}
	resolved := ResolveTitle(lastTitle, title, "Report")
	return Export{
		Filename: documentFilename(resolved, "doc"),
		MIMEType: MIMEDoc,
		Data:     html.Data,
	}, true
}
