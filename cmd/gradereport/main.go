package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	appI18n "github.com/ovoronin/gradereport/internal/i18n"
	"github.com/ovoronin/gradereport/internal/model"
	"github.com/ovoronin/gradereport/internal/report"
	"github.com/ovoronin/gradereport/internal/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "gradereport",
		Short: "Turn raw grading output into structured, exportable reports",
	}

	export := exportCmd()
	root.AddCommand(export, sectionsCmd(), historyCmd())

	// Make "export" the default when no subcommand is given.
	root.RunE = export.RunE
	root.Flags().AddFlagSet(export.Flags())

	return root
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Render grading output as txt, doc, html, and xlsx exports",
		RunE:  runExport,
	}
	f := cmd.Flags()
	f.StringP("input", "i", "", "Raw grading text file (- for stdin)")
	f.StringP("records", "r", "", "Structured evaluation JSON file (bypasses text extraction)")
	f.StringP("title", "t", "", "Report title")
	f.String("last-title", "", "Last used title (wins over --title when set)")
	f.StringSliceP("formats", "f", []string{"txt", "xlsx"}, "Export formats (txt, doc, html, xlsx)")
	f.StringP("out", "o", ".", "Output directory")
	f.String("db", "gradereport.db", "SQLite archive path")
	f.Bool("per-subject", false, "Also write one text file per subject")
	f.Bool("no-archive", false, "Skip archiving the export")
	f.StringP("lang", "l", "en", "Report language (en, ru)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func sectionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sections",
		Short: "Split raw grading text and print the extracted records as JSON",
		RunE:  runSections,
	}
	f := cmd.Flags()
	f.StringP("input", "i", "-", "Raw grading text file (- for stdin)")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List archived exports",
		RunE:  runHistory,
	}
	f := cmd.Flags()
	f.String("db", "gradereport.db", "SQLite archive path")
	f.StringP("lang", "l", "en", "Message language (en, ru)")
	f.String("log-level", "info", "Log level (debug, info, warn, error)")
	f.String("log-format", "text", "Log format (text, json)")
	return cmd
}

func setupLogging(cmd *cobra.Command) {
	v := viperForCmd(cmd)

	var logLevel slog.Level
	switch strings.ToLower(v.GetString("log-level")) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: logLevel}
	var logHandler slog.Handler
	switch strings.ToLower(v.GetString("log-format")) {
	case "json":
		logHandler = slog.NewJSONHandler(os.Stderr, handlerOpts)
	default:
		logHandler = slog.NewTextHandler(os.Stderr, handlerOpts)
	}
	slog.SetDefault(slog.New(logHandler))
}

// viperForCmd binds a command's flags and environment to a fresh viper instance.
func viperForCmd(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	_ = v.BindPFlags(cmd.Flags())

	v.SetEnvPrefix("GRADEREPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("gradereport")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/gradereport")
	v.AddConfigPath("/etc/gradereport")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("error reading config file", "error", err)
		}
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	return v
}

// readInput reads a text file, or stdin when path is "-". An empty path
// yields empty text.
func readInput(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// loadRecords reads a structured evaluation JSON file. Both the full
// {"summary": ..., "scores": [...]} shape and a bare record array are
// accepted.
func loadRecords(path string) ([]model.ScoreRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var result model.EvaluationResult
	if err := json.Unmarshal(data, &result); err == nil && result.Scores != nil {
		return result.Scores, nil
	}

	var records []model.ScoreRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return records, nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	if err := appI18n.Init(v.GetString("lang")); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}
	labels := appI18n.Labels()

	var (
		records []model.ScoreRecord
		rawText string
		err     error
	)
	if recordsPath := v.GetString("records"); recordsPath != "" {
		records, err = loadRecords(recordsPath)
		if err != nil {
			return fmt.Errorf("load records: %w", err)
		}
		slog.Info("loaded structured records", "count", len(records))
	} else {
		rawText, err = readInput(v.GetString("input"))
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		sections := report.Split(rawText)
		records = report.Extract(sections)
		slog.Info("extracted records from raw text", "sections", len(sections), "records", len(records))
	}

	if len(records) == 0 && strings.TrimSpace(rawText) == "" {
		slog.Info(appI18n.T("cli.nothing_to_export"))
		return nil
	}

	title := v.GetString("title")
	lastTitle := v.GetString("last-title")
	outDir := v.GetString("out")
	now := time.Now()

	var exports []report.Export
	for _, format := range v.GetStringSlice("formats") {
		var (
			exp report.Export
			ok  bool
		)
		switch strings.ToLower(strings.TrimSpace(format)) {
		case "txt":
			exp, ok = report.TextExport(records, rawText, title, lastTitle, labels, now)
		case "html":
			exp, ok = report.HTMLExport(records, rawText, title, lastTitle, labels)
		case "doc":
			exp, ok = report.DocExport(records, rawText, title, lastTitle, labels)
		case "xlsx":
			exp, ok, err = report.XLSXExport(records, title, lastTitle, labels, now)
			if err != nil {
				return fmt.Errorf("build xlsx: %w", err)
			}
			if !ok {
				slog.Warn("skipping xlsx export: no structured records")
			}
		default:
			return fmt.Errorf("unknown format %q", format)
		}
		if !ok {
			continue
		}
		exports = append(exports, exp)
	}

	if v.GetBool("per-subject") {
		for i, rec := range records {
			exports = append(exports, report.RecordTextExport(rec, i, title, lastTitle, labels, now))
		}
	}

	for _, exp := range exports {
		path := filepath.Join(outDir, exp.Filename)
		if err := os.WriteFile(path, exp.Data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		slog.Info(appI18n.T("cli.exported"), "path", path, "bytes", len(exp.Data), "type", exp.MIMEType)
	}

	if v.GetBool("no-archive") || len(exports) == 0 {
		return nil
	}
	return archiveExports(v.GetString("db"), title, lastTitle, records, exports, now)
}

func archiveExports(dbPath, title, lastTitle string, records []model.ScoreRecord, exports []report.Export, at time.Time) error {
	db, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer db.Close()

	resolved := report.ResolveTitle(lastTitle, title, "Report")
	average := report.ComputeStats(records).Average

	for _, exp := range exports {
		ext := strings.TrimPrefix(filepath.Ext(exp.Filename), ".")
		id, err := db.SaveReport(model.ReportRecord{
			Title:        resolved,
			Format:       ext,
			Filename:     exp.Filename,
			AverageScore: average,
			CreatedAt:    at,
		}, records)
		if err != nil {
			return fmt.Errorf("archive %s: %w", exp.Filename, err)
		}
		slog.Debug("archived export", "id", id, "filename", exp.Filename)
	}
	return nil
}

func runSections(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	rawText, err := readInput(v.GetString("input"))
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	sections := report.Split(rawText)
	result := model.EvaluationResult{Scores: report.Extract(sections)}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}

	outPath := v.GetString("output")
	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	_, _ = fmt.Fprintln(w)

	return nil
}

func runHistory(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	if err := appI18n.Init(v.GetString("lang")); err != nil {
		return fmt.Errorf("init i18n: %w", err)
	}

	db, err := store.New(v.GetString("db"))
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer db.Close()

	reports, err := db.ListReports()
	if err != nil {
		return fmt.Errorf("list reports: %w", err)
	}
	if len(reports) == 0 {
		fmt.Println(appI18n.T("cli.no_reports"))
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tTITLE\tFORMAT\tSUBJECTS\tAVERAGE\tFILENAME")
	for _, rep := range reports {
		avg := "-"
		if rep.AverageScore != nil {
			avg = fmt.Sprintf("%.2f", *rep.AverageScore)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\t%s\n",
			rep.ID, rep.CreatedAt.Format("2006-01-02 15:04"), rep.Title,
			rep.Format, rep.SubjectCount, avg, rep.Filename)
	}
	return w.Flush()
}
