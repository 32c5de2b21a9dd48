package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ovoronin/gradereport/internal/model"
)

// scoreTieTolerance groups near-equal scores as tied extremes: every record
// within this absolute distance of the maximum (or minimum) belongs to the
// highest (or lowest) group.
const scoreTieTolerance = 0.01

// Stats is the computed summary block for a record collection. Only scored
// records participate in Average, Highest, and Lowest; Ranked holds every
// record, scored first in descending order, unscored after.
type Stats struct {
	Average *float64
	Highest []model.ScoreRecord
	Lowest  []model.ScoreRecord
	Ranked  []model.ScoreRecord
}

// ComputeStats derives the summary statistics for a record collection.
func ComputeStats(records []model.ScoreRecord) Stats {
	ranked := make([]model.ScoreRecord, len(records))
	copy(ranked, records)
	sort.SliceStable(ranked, func(i, j int) bool {
		ri, rj := ranked[i], ranked[j]
		switch {
		case ri.Scored() && !rj.Scored():
			return true
		case !ri.Scored():
			return false
		default:
			return *ri.ScorePercent > *rj.ScorePercent
		}
	})

	stats := Stats{Ranked: ranked}

	var sum, max, min float64
	var n int
	for _, rec := range ranked {
		if !rec.Scored() {
			continue
		}
		v := *rec.ScorePercent
		if n == 0 {
			max, min = v, v
		} else {
			if v > max {
				max = v
			}
			if v < min {
				min = v
			}
		}
		sum += v
		n++
	}
	if n == 0 {
		return stats
	}

	stats.Average = model.Score(sum / float64(n))
	for _, rec := range ranked {
		if !rec.Scored() {
			continue
		}
		v := *rec.ScorePercent
		if max-v <= scoreTieTolerance {
			stats.Highest = append(stats.Highest, rec)
		}
		if v-min <= scoreTieTolerance {
			stats.Lowest = append(stats.Lowest, rec)
		}
	}
	return stats
}

// FeedbackSummary concatenates each detail's feedback, prefixed with its
// 1-based question label, or "-" when no detail carries feedback.
func FeedbackSummary(rec model.ScoreRecord) string {
	var parts []string
	for i, d := range rec.Details {
		if strings.TrimSpace(d.Feedback) == "" {
			continue
		}
		parts = append(parts, fmt.Sprintf("Q%d: %s", i+1, d.Feedback))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, " | ")
}

// Fixed workbook colors. The layout contract is documented by position and
// color, independent of the styling library in use.
const (
	colorSummaryBanner = "1F4E78"
	colorAverageRow    = "D9E1F2"
	colorHighBanner    = "70AD47"
	colorHighRow       = "E2EFDA"
	colorLowBanner     = "C55A11"
	colorLowRow        = "FCE4D6"
	colorFullBanner    = "4472C4"
	colorZebraEven     = "F2F2F2"
	colorZebraOdd      = "FFFFFF"
	colorFeedbackCell  = "E7E6F7"
	colorFeedbackHead  = "7C6BC8"
	colorHeaderRow     = "366092"
	colorWhite         = "FFFFFF"
)

const sheetName = "Evaluation Report"

// wbStyles holds the resolved style IDs for one workbook.
type wbStyles struct {
	summaryBanner int
	averageRow    int
	highBanner    int
	highRow       int
	lowBanner     int
	lowRow        int
	fullBanner    int
	headerRow     int
	feedbackHead  int
	zebraEven     int
	zebraOdd      int
	feedbackCell  int
}

func bannerStyle(f *excelize.File, fill string) (int, error) {
	return f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{fill}, Pattern: 1},
		Font: &excelize.Font{Bold: true, Color: colorWhite},
	})
}

func rowStyle(f *excelize.File, fill string) (int, error) {
	return f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{fill}, Pattern: 1},
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
	})
}

func newWbStyles(f *excelize.File) (*wbStyles, error) {
	var s wbStyles
	var err error
	if s.summaryBanner, err = bannerStyle(f, colorSummaryBanner); err != nil {
		return nil, err
	}
	if s.averageRow, err = rowStyle(f, colorAverageRow); err != nil {
		return nil, err
	}
	if s.highBanner, err = bannerStyle(f, colorHighBanner); err != nil {
		return nil, err
	}
	if s.highRow, err = rowStyle(f, colorHighRow); err != nil {
		return nil, err
	}
	if s.lowBanner, err = bannerStyle(f, colorLowBanner); err != nil {
		return nil, err
	}
	if s.lowRow, err = rowStyle(f, colorLowRow); err != nil {
		return nil, err
	}
	if s.fullBanner, err = bannerStyle(f, colorFullBanner); err != nil {
		return nil, err
	}
	if s.headerRow, err = bannerStyle(f, colorHeaderRow); err != nil {
		return nil, err
	}
	if s.feedbackHead, err = bannerStyle(f, colorFeedbackHead); err != nil {
		return nil, err
	}
	if s.zebraEven, err = rowStyle(f, colorZebraEven); err != nil {
		return nil, err
	}
	if s.zebraOdd, err = rowStyle(f, colorZebraOdd); err != nil {
		return nil, err
	}
	if s.feedbackCell, err = rowStyle(f, colorFeedbackCell); err != nil {
		return nil, err
	}
	return &s, nil
}

// BuildWorkbook renders the full record collection into a styled single
// sheet workbook: summary banner, average row, tie-aware highest and lowest
// groups, and the complete ranked listing with zebra banding.
func BuildWorkbook(records []model.ScoreRecord, labels Labels) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	widths := []struct {
		col   string
		width float64
	}{{"A", 40}, {"B", 15}, {"C", 60}, {"D", 70}}
	for _, w := range widths {
		if err := f.SetColWidth(sheetName, w.col, w.col, w.width); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	styles, err := newWbStyles(f)
	if err != nil {
		return nil, fmt.Errorf("create styles: %w", err)
	}

	stats := ComputeStats(records)

	row := 1
	if err := writeBanner(f, row, labels.SummaryBanner, styles.summaryBanner); err != nil {
		return nil, err
	}
	row++

	avg := labels.NotAvailable
	if stats.Average != nil {
		avg = fmt.Sprintf("%.2f", *stats.Average)
	}
	if err := writeStyledRow(f, row, []string{labels.AverageScore, avg, "", ""}, styles.averageRow); err != nil {
		return nil, err
	}
	row += 2 // average row plus a blank separator

	if err := writeBanner(f, row, labels.HighestBanner, styles.highBanner); err != nil {
		return nil, err
	}
	row++
	for i, rec := range stats.Highest {
		if err := writeRecordRow(f, row, rec, i, styles.highRow, styles.highRow); err != nil {
			return nil, err
		}
		row++
	}
	row++ // blank separator

	if err := writeBanner(f, row, labels.LowestBanner, styles.lowBanner); err != nil {
		return nil, err
	}
	row++
	for i, rec := range stats.Lowest {
		if err := writeRecordRow(f, row, rec, i, styles.lowRow, styles.lowRow); err != nil {
			return nil, err
		}
		row++
	}
	row++ // blank separator

	if err := writeBanner(f, row, labels.FullBanner, styles.fullBanner); err != nil {
		return nil, err
	}
	row++

	headers := []string{labels.SubjectName, labels.ScorePercent, labels.Reasoning, labels.Feedback}
	if err := writeStyledRow(f, row, headers, styles.headerRow); err != nil {
		return nil, err
	}
	if err := setCellStyleAt(f, 4, row, styles.feedbackHead); err != nil {
		return nil, err
	}
	row++

	for i, rec := range stats.Ranked {
		rowFill := styles.zebraOdd
		if i%2 == 1 {
			rowFill = styles.zebraEven
		}
		if err := writeRecordRow(f, row, rec, i, rowFill, styles.feedbackCell); err != nil {
			return nil, err
		}
		row++
	}

	return f, nil
}

func writeBanner(f *excelize.File, row int, text string, style int) error {
	start, _ := excelize.CoordinatesToCellName(1, row)
	end, _ := excelize.CoordinatesToCellName(4, row)
	if err := f.SetCellValue(sheetName, start, text); err != nil {
		return fmt.Errorf("write banner: %w", err)
	}
	if err := f.MergeCell(sheetName, start, end); err != nil {
		return fmt.Errorf("merge banner: %w", err)
	}
	return f.SetCellStyle(sheetName, start, end, style)
}

func writeStyledRow(f *excelize.File, row int, values []string, style int) error {
	for col, v := range values {
		cell, _ := excelize.CoordinatesToCellName(col+1, row)
		if err := f.SetCellValue(sheetName, cell, v); err != nil {
			return fmt.Errorf("write cell %s: %w", cell, err)
		}
	}
	start, _ := excelize.CoordinatesToCellName(1, row)
	end, _ := excelize.CoordinatesToCellName(len(values), row)
	return f.SetCellStyle(sheetName, start, end, style)
}

// writeRecordRow writes the four record columns; the feedback cell carries
// its own style so the column stays visually distinct in the full listing.
func writeRecordRow(f *excelize.File, row int, rec model.ScoreRecord, pos int, style, feedbackStyle int) error {
	score := "-"
	if rec.Scored() {
		score = fmt.Sprintf("%.2f", *rec.ScorePercent)
	}
	values := []string{rec.DisplayName(pos), score, rec.Reasoning, FeedbackSummary(rec)}
	if err := writeStyledRow(f, row, values, style); err != nil {
		return err
	}
	return setCellStyleAt(f, 4, row, feedbackStyle)
}

func setCellStyleAt(f *excelize.File, col, row, style int) error {
	cell, _ := excelize.CoordinatesToCellName(col, row)
	return f.SetCellStyle(sheetName, cell, cell, style)
}

// XLSXExport builds the spreadsheet payload. ok is false when the record
// collection is empty.
func XLSXExport(records []model.ScoreRecord, title, lastTitle string, labels Labels, at time.Time) (Export, bool, error) {
	if len(records) == 0 {
		return Export{}, false, nil
	}
	resolved := ResolveTitle(lastTitle, title, "Report")

	f, err := BuildWorkbook(records, labels)
	if err != nil {
		return Export{}, false, fmt.Errorf("build workbook: %w", err)
	}
	defer f.Close()

	buf, err := f.WriteToBuffer()
	if err != nil {
		return Export{}, false, fmt.Errorf("serialize workbook: %w", err)
	}

	return Export{
		Filename: exportFilename(resolved, "", "xlsx", at),
		MIMEType: MIMEXLSX,
		Data:     buf.Bytes(),
	}, true, nil
}
