// Package report turns raw grading text into structured score records and
// renders them as plain-text, HTML/doc, and spreadsheet exports.
package report

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/ovoronin/gradereport/internal/model"
)

// Markers emitted by the grading backend between evaluation passes. They are
// the only lexical structure the producer guarantees, and even these may be
// missing from plain free-text grading output.
const (
	contentMarker = "CONTENT EVALUATION"
	designMarker  = "VISUAL DESIGN EVALUATION"

	totalSlidesMarker = "Total Slides:"
)

var (
	blockSepRe   = regexp.MustCompile(`\n{2,}`)
	fileHeaderRe = regexp.MustCompile(`(?m)^File:[ \t]*(.+)$`)
)

// Split segments one concatenated blob of grading output into ordered
// per-file sections. There is no reliable delimiter between files, so blocks
// separated by blank-line runs are classified as either a new-file header or
// a continuation of the section currently accumulating. Non-empty input
// never produces an empty result: when no header is ever detected the whole
// input becomes the sole section.
func Split(raw string) []model.Section {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	text := strings.ReplaceAll(raw, "\r\n", "\n")
	blocks := blockSepRe.Split(text, -1)

	var (
		sections  []model.Section
		curName   string
		curBlocks []string
		opened    bool
	)
	flush := func() {
		if len(curBlocks) == 0 {
			return
		}
		sections = append(sections, model.Section{
			Filename: curName,
			Text:     strings.Join(curBlocks, "\n\n"),
		})
		curBlocks = nil
	}

	for _, block := range blocks {
		if strings.TrimSpace(block) == "" {
			continue
		}
		name, isHeader := classifyBlock(block)
		if isHeader && (!opened || name != curName) {
			flush()
			curName = name
			opened = true
		} else if !opened && hasEvalMarker(block) {
			// Evaluation output with no filename context yet; kept as
			// continuation so nothing is dropped, but worth surfacing.
			slog.Debug("evaluation marker before any file header", "block_prefix", prefix(block, 60))
		}
		curBlocks = append(curBlocks, block)
	}
	flush()
	return sections
}

// classifyBlock decides whether a block opens a new file section. A header
// needs a leading "File:" line, a "Total Slides:" marker after it, and both
// must occur before any evaluation marker present in the block. Anything
// ambiguous is a continuation, never a spurious new section.
func classifyBlock(block string) (filename string, isHeader bool) {
	loc := fileHeaderRe.FindStringSubmatchIndex(block)
	if loc == nil {
		return "", false
	}
	filename = strings.TrimSpace(block[loc[2]:loc[3]])
	if filename == "" {
		return "", false
	}

	totalIdx := strings.Index(block, totalSlidesMarker)
	if totalIdx < 0 || totalIdx < loc[0] {
		return "", false
	}

	if evalIdx := firstEvalMarker(block); evalIdx >= 0 && (loc[0] > evalIdx || totalIdx > evalIdx) {
		return "", false
	}
	return filename, true
}

// firstEvalMarker returns the index of the earliest evaluation marker in
// text, or -1 when neither appears.
func firstEvalMarker(text string) int {
	ci := strings.Index(text, contentMarker)
	di := strings.Index(text, designMarker)
	switch {
	case ci < 0:
		return di
	case di < 0:
		return ci
	case ci < di:
		return ci
	default:
		return di
	}
}

func hasEvalMarker(text string) bool {
	return firstEvalMarker(text) >= 0
}

// firstFilename returns the first "File:" capture anywhere in text, or "".
func firstFilename(text string) string {
	if m := fileHeaderRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

func prefix(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
