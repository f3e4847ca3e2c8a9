package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"civic-issues-api/internal/config"
	"civic-issues-api/internal/models"
	"civic-issues-api/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// CSV columns, in order. created_at is optional.
const (
	colTitle = iota
	colDescription
	colStatus
	colPriority
	colDepartment
	colLatitude
	colLongitude
	colUserID
	colImageURL
	colCreatedAt

	minColumns = colImageURL + 1
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var file, configPath string

	cmd := &cobra.Command{
		Use:          "importer",
		Short:        "Bulk-import civic issues from a CSV file into postgres",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd.Context(), cmd.OutOrStdout(), file, configPath)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Path to the CSV file to import")
	cmd.Flags().StringVar(&configPath, "config", "configs", "Directory holding app.env")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runImport(ctx context.Context, out io.Writer, file, configPath string) error {
	fmt.Fprintf(out, "Starting import from file: %s\n", file)

	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	issues, err := parseCSV(f, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("parsing CSV: %w", err)
	}
	fmt.Fprintf(out, "Parsed %d records\n", len(issues))

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	conn, err := pgx.Connect(ctx, cfg.DBSource)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer conn.Close(ctx)

	if err := repository.EnsureSchema(ctx, conn); err != nil {
		return err
	}

	before, err := countIssues(ctx, conn)
	if err != nil {
		return err
	}

	if err := insertIssues(ctx, conn, issues, newProgressBar(out, len(issues))); err != nil {
		return fmt.Errorf("inserting records: %w", err)
	}

	after, err := countIssues(ctx, conn)
	if err != nil {
		return err
	}
	if after-before != len(issues) {
		return fmt.Errorf("record count mismatch: expected %d new rows, got %d", len(issues), after-before)
	}

	fmt.Fprintf(out, "Successfully imported %d records\n", len(issues))
	return nil
}

func parseCSV(r io.Reader, now time.Time) ([]models.Issue, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // Allow variable number of fields

	// Skip header
	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	var issues []models.Issue
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}

		issue, err := parseRecord(record, now)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		issues = append(issues, issue)
	}

	return issues, nil
}

func parseRecord(record []string, now time.Time) (models.Issue, error) {
	if len(record) < minColumns {
		return models.Issue{}, fmt.Errorf("invalid record length: %d, expected at least %d columns", len(record), minColumns)
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(record[colLatitude]), 64)
	if err != nil {
		return models.Issue{}, fmt.Errorf("invalid latitude: %s", record[colLatitude])
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(record[colLongitude]), 64)
	if err != nil {
		return models.Issue{}, fmt.Errorf("invalid longitude: %s", record[colLongitude])
	}
	if !models.ValidCoordinates(lat, lon) {
		return models.Issue{}, fmt.Errorf("invalid coordinates: %s, %s", record[colLatitude], record[colLongitude])
	}

	status := models.IssueStatus(strings.TrimSpace(record[colStatus]))
	if status == "" {
		status = models.StatusReported
	}
	if !status.Valid() {
		return models.Issue{}, fmt.Errorf("unknown status: %s", status)
	}

	issue := models.Issue{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(record[colTitle]),
		Description: record[colDescription],
		Status:      status,
		Latitude:    lat,
		Longitude:   lon,
		UserID:      strings.TrimSpace(record[colUserID]),
		CreatedAt:   now,
	}
	if issue.Title == "" || issue.UserID == "" {
		return models.Issue{}, errors.New("title and user_id are required")
	}

	if v := strings.TrimSpace(record[colPriority]); v != "" {
		p := models.IssuePriority(v)
		if !p.Valid() {
			return models.Issue{}, fmt.Errorf("unknown priority: %s", v)
		}
		issue.Priority = &p
	}
	if v := strings.TrimSpace(record[colDepartment]); v != "" {
		d := models.Department(v)
		if !d.Valid() {
			return models.Issue{}, fmt.Errorf("unknown department: %s", v)
		}
		issue.Department = &d
	}
	if v := strings.TrimSpace(record[colImageURL]); v != "" {
		issue.ImageURL = &v
	}
	if len(record) > colCreatedAt {
		if v := strings.TrimSpace(record[colCreatedAt]); v != "" {
			created, err := time.Parse(time.RFC3339, v)
			if err != nil {
				return models.Issue{}, fmt.Errorf("invalid created_at: %s", v)
			}
			issue.CreatedAt = created.UTC()
		}
	}
	if issue.Status == models.StatusResolved {
		resolved := issue.CreatedAt
		issue.ResolvedAt = &resolved
		issue.UpdatedAt = &resolved
	}

	return issue, nil
}

func insertIssues(ctx context.Context, conn *pgx.Conn, issues []models.Issue, bar *progressbar.ProgressBar) error {
	// Use CopyFrom for bulk insert
	_, err := conn.CopyFrom(
		ctx,
		pgx.Identifier{"issues"},
		repository.IssueColumnNames(),
		pgx.CopyFromSlice(len(issues), func(i int) ([]any, error) {
			_ = bar.Add(1)
			return repository.IssueValues(&issues[i]), nil
		}),
	)
	_ = bar.Finish()
	return err
}

func countIssues(ctx context.Context, conn *pgx.Conn) (int, error) {
	var count int
	if err := conn.QueryRow(ctx, "SELECT COUNT(*) FROM issues").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

func newProgressBar(out io.Writer, total int) *progressbar.ProgressBar {
	if f, ok := out.(*os.File); ok && isatty.IsTerminal(f.Fd()) {
		return progressbar.NewOptions(total,
			progressbar.OptionSetWriter(out),
			progressbar.OptionSetDescription("importing issues"),
			progressbar.OptionShowCount(),
		)
	}
	return progressbar.DefaultSilent(int64(total))
}
