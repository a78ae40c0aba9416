package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"crickalytics/internal/app"
	"crickalytics/internal/config"
	apierrors "crickalytics/internal/errors"
	"crickalytics/internal/exporter"
	"crickalytics/internal/infrastructure"
	"crickalytics/internal/validation"
	api "crickalytics/pkg/contracts/api/v1"
)

// multiFlag collects a flag given several times. Values are never split on
// commas since venue names contain them.
type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, "; ") }

func (m *multiFlag) Set(v string) error {
	if v = strings.TrimSpace(v); v != "" {
		*m = append(*m, v)
	}
	return nil
}

// options are the parsed command line flags.
type options struct {
	configPath string
	dataDir    string
	format     string
	output     string
	listViews  bool
	request    api.ViewRequest
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "odiexport: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("odiexport", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		opts          options
		teams, venues multiFlag
		years         string
		matchID       int64
	)
	fs.StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	fs.StringVar(&opts.dataDir, "data", "", "directory holding the cleaned CSV files (overrides data.dir)")
	fs.StringVar(&opts.request.View, "view", "", "view to export: "+strings.Join(api.Views, " | "))
	fs.StringVar(&opts.format, "format", "", "csv | xlsx (defaults to the output extension, then csv)")
	fs.StringVar(&opts.output, "out", "", "output file (defaults to <view>.<format>)")
	fs.BoolVar(&opts.listViews, "list", false, "print the available views and exit")
	fs.StringVar(&opts.request.Bowler, "bowler", "", "bowler name")
	fs.StringVar(&opts.request.Batsman, "batsman", "", "batsman name")
	fs.StringVar(&opts.request.Team, "team", "", "team name")
	fs.StringVar(&opts.request.Team1, "team1", "", "first team of a head-to-head")
	fs.StringVar(&opts.request.Team2, "team2", "", "second team of a head-to-head")
	fs.Var(&teams, "teams", "team to compare or filter on (repeatable)")
	fs.Var(&venues, "venue", "venue to filter on (repeatable)")
	fs.StringVar(&years, "years", "", "comma separated years to filter on")
	fs.Int64Var(&matchID, "match", 0, "match id")
	fs.IntVar(&opts.request.TopN, "top", 0, "number of rows for top-N views")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	opts.request.Teams = teams
	opts.request.Venues = venues
	opts.request.MatchID = matchID

	for _, part := range strings.Split(years, ",") {
		if part = strings.TrimSpace(part); part == "" {
			continue
		}
		y, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid year %q", part)
		}
		opts.request.Years = append(opts.request.Years, y)
	}

	if opts.format == "" {
		opts.format = string(exporter.FormatCSV)
		if ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(opts.output)), "."); ext != "" {
			opts.format = ext
		}
	}
	format, err := exporter.ParseFormat(opts.format)
	if err != nil {
		return nil, fmt.Errorf("%w (want %s)", err, strings.Join(exporter.Formats, " or "))
	}
	opts.format = string(format)
	if opts.output == "" && opts.request.View != "" {
		opts.output = format.Filename(opts.request.View)
	}
	return &opts, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	if opts.listViews {
		for _, v := range api.Views {
			fmt.Fprintln(stdout, v)
		}
		return nil
	}
	if opts.request.View == "" {
		return errors.New("-view is required (use -list to see the views)")
	}
	if !api.IsView(opts.request.View) {
		return fmt.Errorf("unknown view %q (use -list to see the views)", opts.request.View)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return apierrors.NewConfigError("failed to load config", err)
	}
	if opts.dataDir != "" {
		cfg.Data.Dir = opts.dataDir
	}

	// Logs go to stderr so stdout stays a clean summary. One trace id ties the
	// lines of a run together.
	ctx = infrastructure.EnsureTraceID(ctx)
	logger, err := infrastructure.NewLogger(cfg.Logging, stderr)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	files := validation.NewFileValidator(logger)
	if err := files.ValidateExportPath(opts.output, opts.format); err != nil {
		return err
	}

	container, err := app.NewServiceContainer(cfg, nil, nil, logger)
	if err != nil {
		return err
	}

	file, err := container.Dashboard.Export(ctx, api.ExportRequest{ViewRequest: opts.request, Format: opts.format})
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return err
	}
	if err := os.WriteFile(opts.output, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", opts.output, err)
	}

	logger.InfoContext(ctx, "export written",
		slog.String("view", opts.request.View),
		slog.String("format", opts.format),
		slog.String("path", opts.output),
		slog.Int("bytes", buf.Len()))

	fmt.Fprintf(stdout, "wrote %d rows of %s to %s\n", file.Result.Table.Len(), opts.request.View, opts.output)
	for _, w := range file.Result.Warnings {
		fmt.Fprintf(stdout, "warning: %s\n", w)
	}
	return nil
}
