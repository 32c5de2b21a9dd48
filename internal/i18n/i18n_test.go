package i18n

import (
	"testing"

	"github.com/ovoronin/gradereport/internal/report"
)

func TestInitUnknownLanguage(t *testing.T) {
	if err := Init("not-a-language!"); err == nil {
		t.Error("expected error for invalid language tag")
	}
}

func TestEnglishLabelsMatchDefaults(t *testing.T) {
	if err := Init("en"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if got, want := Labels(), report.DefaultLabels(); got != want {
		t.Errorf("English labels diverge from renderer defaults:\ngot  %+v\nwant %+v", got, want)
	}
}

func TestRussianLabels(t *testing.T) {
	if err := Init("ru"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	labels := Labels()
	if labels.StudentName != "Имя студента" {
		t.Errorf("StudentName = %q", labels.StudentName)
	}
	if labels.NotAvailable != "Н/Д" {
		t.Errorf("NotAvailable = %q", labels.NotAvailable)
	}
}

func TestMissingTranslationFallsBackToID(t *testing.T) {
	if err := Init("en"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if got := T("no.such.message"); got != "no.such.message" {
		t.Errorf("T() = %q, want the message ID back", got)
	}
}
