// Package i18n loads the translation bundle for user-visible report labels
// and CLI messages.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/ovoronin/gradereport/internal/report"
)

//go:embed locales/*.json
var localeFS embed.FS

var localizer *i18n.Localizer

// Init loads the embedded locale files and selects the given language.
func Init(lang string) error {
	tag, err := language.Parse(lang)
	if err != nil {
		return fmt.Errorf("parse language %q: %w", lang, err)
	}

	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return fmt.Errorf("read locales dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		data, err := localeFS.ReadFile("locales/" + e.Name())
		if err != nil {
			return fmt.Errorf("read locale file %s: %w", e.Name(), err)
		}
		bundle.MustParseMessageFileBytes(data, e.Name())
		slog.Debug("loaded locale file", "file", e.Name())
	}

	localizer = i18n.NewLocalizer(bundle, lang, "en")
	return nil
}

// T translates a message by ID, returning the ID itself when no
// translation exists so output stays usable.
func T(msgID string) string {
	if localizer == nil {
		return msgID
	}
	s, err := localizer.Localize(&i18n.LocalizeConfig{MessageID: msgID})
	if err != nil {
		slog.Warn("missing translation", "id", msgID, "error", err)
		return msgID
	}
	return s
}

// Labels builds the renderer label set from the active locale. Before Init
// (or for the default language) this matches report.DefaultLabels.
func Labels() report.Labels {
	if localizer == nil {
		return report.DefaultLabels()
	}
	return report.Labels{
		StudentName:   T("report.student_name"),
		Score:         T("report.score"),
		Reason:        T("report.reason"),
		NeedImprove:   T("report.need_improve"),
		None:          T("report.none"),
		PerQuestion:   T("report.per_question"),
		StudentAnswer: T("report.student_answer"),
		CorrectAnswer: T("report.correct_answer"),
		Result:        T("report.result"),
		Correct:       T("report.correct"),
		Incorrect:     T("report.incorrect"),
		Feedback:      T("report.feedback"),

		ContentSection: T("report.content_section"),
		DesignSection:  T("report.design_section"),

		SummaryBanner: T("sheet.summary_banner"),
		AverageScore:  T("sheet.average_score"),
		HighestBanner: T("sheet.highest_banner"),
		LowestBanner:  T("sheet.lowest_banner"),
		FullBanner:    T("sheet.full_banner"),
		SubjectName:   T("sheet.subject_name"),
		ScorePercent:  T("sheet.score_percent"),
		Reasoning:     T("sheet.reasoning"),
		NotAvailable:  T("sheet.not_available"),
	}
}
