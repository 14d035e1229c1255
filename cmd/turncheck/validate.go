package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/mb0/glob"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/go-go-golems/turncheck/pkg/history"
	"github.com/go-go-golems/turncheck/pkg/report"
	"github.com/go-go-golems/turncheck/pkg/settings"
	"github.com/go-go-golems/turncheck/pkg/tokens"
	"github.com/go-go-golems/turncheck/pkg/turns/serde"
	"github.com/go-go-golems/turncheck/pkg/validation"
	"github.com/go-go-golems/turncheck/pkg/watch"
)

const defaultPattern = "*.json*"

type validateOptions struct {
	Files          []string
	ConfigPath     string
	Format         string
	TemplatePath   string
	OutputPath     string
	Dir            string
	Pattern        string
	Style          string
	HistoryPath    string
	Watch          bool
	CreateExamples bool
	Force          bool
	MaxReplyTokens int
	Model          string
	Concurrency    int
}

// fileResult is the outcome of validating one input file.
type fileResult struct {
	File        string
	InputFormat serde.Format
	Result      *validation.Result
	StartedAt   time.Time
}

type fileReport struct {
	File   string          `json:"file"`
	Report json.RawMessage `json:"report"`
}

func newValidateCommand() *cobra.Command {
	opts := &validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate [files...]",
		Short: "Validate conversation datasets",
		Long: `Validates JSON array or JSONL conversation datasets.

Every problem found is reported; the command exits with status 1 when any
dataset has errors. Warnings never change the exit status.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Files = args
			opts.Format = viper.GetString("validate.format")
			opts.Style = viper.GetString("validate.style")
			opts.HistoryPath = viper.GetString("validate.history")

			if opts.CreateExamples {
				dir := opts.Dir
				if dir == "" {
					dir = "."
				}
				return runCreateExamples(cmd.OutOrStdout(), &createExamplesOptions{
					Dir:   dir,
					Force: opts.Force,
				})
			}

			if !opts.Watch {
				return runValidate(cmd.Context(), opts, cmd.OutOrStdout())
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Validation settings YAML file.")
	cmd.Flags().StringP("format", "f", string(report.FormatConsole), "Report format: console, markdown, json or template.")
	cmd.Flags().StringVar(&opts.TemplatePath, "template", "", "Go template file used with --format template.")
	cmd.Flags().StringVarP(&opts.OutputPath, "output", "o", "", "Write the report to a file instead of stdout.")
	cmd.Flags().StringVar(&opts.Dir, "dir", "", "Validate every file below this directory matching --pattern.")
	cmd.Flags().StringVar(&opts.Pattern, "pattern", defaultPattern, "Glob pattern used with --dir.")
	cmd.Flags().String("style", "auto", "Markdown style on a terminal: auto, dark, light, notty or none.")
	cmd.Flags().String("history", "", "Record runs in this SQLite database.")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Validate again whenever an input or the settings file changes.")
	cmd.Flags().BoolVar(&opts.CreateExamples, "create-examples", false, "Write example datasets and settings instead of validating.")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Overwrite existing files with --create-examples.")
	cmd.Flags().IntVar(&opts.MaxReplyTokens, "max-reply-tokens", 0, "Warn about replies with more tokens than this.")
	cmd.Flags().StringVar(&opts.Model, "model", "", "Model whose tokenizer counts reply tokens (default: the settings encoding).")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 4, "Number of files validated in parallel.")

	for _, name := range []string{"format", "style", "history"} {
		cobra.CheckErr(viper.BindPFlag("validate."+name, cmd.Flags().Lookup(name)))
	}

	return cmd
}

func runValidate(ctx context.Context, opts *validateOptions, w io.Writer) error {
	format, err := report.ParseFormat(opts.Format)
	if err != nil {
		return err
	}

	files, err := resolveInputs(opts)
	if err != nil {
		return err
	}

	s, err := loadSettings(opts)
	if err != nil {
		return err
	}
	v, err := newValidator(s, opts.Model)
	if err != nil {
		return err
	}

	results, err := validateFiles(ctx, v, files, opts.Concurrency)
	if err != nil {
		return err
	}

	if opts.HistoryPath != "" {
		if err := recordHistory(ctx, opts.HistoryPath, s, results); err != nil {
			return err
		}
	}

	out, err := renderResults(results, format, opts.TemplatePath)
	if err != nil {
		return err
	}
	if err := writeReport(w, out, format, opts); err != nil {
		return err
	}

	failed := false
	for _, r := range results {
		if err := r.Result.Err(); err != nil {
			log.Debug().Str("file", r.File).Err(err).Msg("Dataset failed validation")
			failed = true
		}
	}
	if failed {
		return errValidationFailed
	}
	return nil
}

// resolveInputs combines the positional files with the files found below --dir.
// The result is sorted and free of duplicates.
func resolveInputs(opts *validateOptions) ([]string, error) {
	seen := map[string]bool{}
	files := []string{}
	add := func(path string) {
		path = filepath.Clean(path)
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}

	for _, f := range opts.Files {
		add(f)
	}

	if opts.Dir != "" {
		pattern := opts.Pattern
		if pattern == "" {
			pattern = defaultPattern
		}
		err := filepath.WalkDir(opts.Dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			name := d.Name()
			if strings.Contains(pattern, "/") {
				rel, err := filepath.Rel(opts.Dir, path)
				if err != nil {
					return err
				}
				name = filepath.ToSlash(rel)
			}
			ok, err := glob.Match(pattern, name)
			if err != nil {
				return errors.Wrapf(err, "invalid pattern %q", pattern)
			}
			if ok {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "could not scan %s", opts.Dir)
		}
		sort.Strings(files)
	}

	if len(files) == 0 {
		return nil, errors.New("no input files (pass files or use --dir)")
	}
	return files, nil
}

func loadSettings(opts *validateOptions) (*settings.ValidationSettings, error) {
	s := settings.Default()
	if opts.ConfigPath != "" {
		var err error
		s, err = settings.Load(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
		log.Debug().Str("config", opts.ConfigPath).Msg("Loaded validation settings")
	}
	if opts.MaxReplyTokens > 0 {
		s = s.With(settings.WithMaxReplyTokens(opts.MaxReplyTokens, s.TokenEncoding))
	}
	return s, nil
}

func newValidator(s *settings.ValidationSettings, model string) (*validation.Validator, error) {
	if s.MaxReplyTokens <= 0 {
		return validation.NewValidator(s), nil
	}
	counter, err := tokens.NewCounter(model, s.TokenEncoding)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("tokenizer", counter.Name()).Int("max_reply_tokens", s.MaxReplyTokens).Msg("Counting reply tokens")
	return validation.NewValidator(s, validation.WithTokenCounter(counter)), nil
}

// validateFiles validates every file on its own goroutine, bounded by
// concurrency. Results keep the order of files.
func validateFiles(ctx context.Context, v *validation.Validator, files []string, concurrency int) ([]fileResult, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	results := make([]fileResult, len(files))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(concurrency)
	for i, file := range files {
		i, file := i, file
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = validateFile(v, file)
			log.Debug().
				Str("file", file).
				Bool("valid", results[i].Result.IsValid).
				Int("errors", len(results[i].Result.Errors)).
				Msg("Validated dataset")
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func validateFile(v *validation.Validator, file string) fileResult {
	r := fileResult{File: file, StartedAt: time.Now()}
	doc, err := serde.LoadFile(file)
	if err != nil {
		// ValidateFile turns the read failure into a structural error
		r.Result = v.ValidateFile(file)
		return r
	}
	r.InputFormat = doc.Format
	r.Result = v.ValidateDocument(doc)
	return r
}

func recordHistory(ctx context.Context, path string, s *settings.ValidationSettings, results []fileResult) error {
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer func() {
		_ = store.Close()
	}()

	encoded, err := s.Marshal()
	if err != nil {
		return err
	}
	hash := history.HashSettings(encoded)

	for _, r := range results {
		run := history.NewRun(r.File, r.Result, r.StartedAt)
		run.Format = string(r.InputFormat)
		run.SettingsHash = hash
		if err := store.Record(ctx, run); err != nil {
			return err
		}
	}
	log.Debug().Str("db", path).Int("runs", len(results)).Msg("Recorded validation runs")
	return nil
}

func renderResults(results []fileResult, format report.Format, templatePath string) (string, error) {
	render := func(result *validation.Result) (string, error) {
		return report.Render(result, format)
	}
	if format == report.FormatTemplate {
		if templatePath == "" {
			return "", errors.New("--format template needs --template")
		}
		b, err := os.ReadFile(templatePath)
		if err != nil {
			return "", errors.Wrapf(err, "could not read template %s", templatePath)
		}
		render = func(result *validation.Result) (string, error) {
			return report.RenderTemplate(result, string(b))
		}
	}

	if len(results) == 1 {
		return render(results[0].Result)
	}

	if format == report.FormatJSON {
		reports := make([]fileReport, 0, len(results))
		for _, r := range results {
			out, err := render(r.Result)
			if err != nil {
				return "", err
			}
			reports = append(reports, fileReport{File: r.File, Report: json.RawMessage(out)})
		}
		b, err := json.MarshalIndent(reports, "", "  ")
		if err != nil {
			return "", errors.Wrap(err, "could not encode reports")
		}
		return string(b) + "\n", nil
	}

	var sb strings.Builder
	for i, r := range results {
		if i > 0 {
			sb.WriteString("\n")
		}
		switch format {
		case report.FormatMarkdown:
			fmt.Fprintf(&sb, "<!-- %s -->\n\n", r.File)
		default:
			fmt.Fprintf(&sb, "📄 %s\n\n", r.File)
		}
		out, err := render(r.Result)
		if err != nil {
			return "", err
		}
		sb.WriteString(out)
	}
	return sb.String(), nil
}

func writeReport(w io.Writer, out string, format report.Format, opts *validateOptions) error {
	if opts.OutputPath != "" {
		if err := os.WriteFile(opts.OutputPath, []byte(out), 0o644); err != nil {
			return errors.Wrapf(err, "could not write report to %s", opts.OutputPath)
		}
		log.Info().Str("output", opts.OutputPath).Msg("Report written")
		return nil
	}

	if format == report.FormatMarkdown && w == io.Writer(os.Stdout) && isatty.IsTerminal(os.Stdout.Fd()) {
		styled, err := report.Style(out, opts.Style)
		if err != nil {
			return err
		}
		out = styled
	}
	_, err := io.WriteString(w, out)
	return err
}

// runWatch validates once and then again on every change of an input or the
// settings file, until ctx is done. Validation failures are reported but do not
// stop watching.
func runWatch(ctx context.Context, opts *validateOptions, w io.Writer) error {
	files, err := resolveInputs(opts)
	if err != nil {
		return err
	}
	watched := append([]string{}, files...)
	if opts.ConfigPath != "" {
		watched = append(watched, opts.ConfigPath)
	}

	// the watched set is fixed at start, new files below --dir are not picked up
	pinned := *opts
	pinned.Files = files
	pinned.Dir = ""

	run := func() {
		if err := runValidate(ctx, &pinned, w); err != nil && !errors.Is(err, errValidationFailed) {
			log.Error().Err(err).Msg("Validation run failed")
		}
	}

	watcher, err := watch.New(watched, watch.DefaultDebounce)
	if err != nil {
		return err
	}
	run()
	log.Info().Int("files", len(watched)).Msg("Watching for changes")

	return watcher.Run(ctx, func(path string) {
		log.Info().Str("path", path).Msg("Change detected, validating again")
		run()
	})
}
