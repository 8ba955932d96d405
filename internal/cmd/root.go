package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joern1811/chatstats/internal/adapter/parser"
	"github.com/joern1811/chatstats/internal/adapter/renderer"
	"github.com/joern1811/chatstats/internal/adapter/source"
	"github.com/joern1811/chatstats/internal/adapter/store"
	"github.com/joern1811/chatstats/internal/app"
	"github.com/joern1811/chatstats/internal/config"
	"github.com/joern1811/chatstats/internal/domain"
	"github.com/joern1811/chatstats/internal/log"
	"github.com/joern1811/chatstats/internal/version"
)

var (
	fromStr string
	toStr   string
	output  string
	format  string
)

var rootCmd = &cobra.Command{
	Use:   "chatstats <transcript>",
	Short: "Monthly messaging statistics for a two-person WhatsApp chat",
	Long: `chatstats reads a WhatsApp chat export (.txt, .zip or s3://bucket/key)
and reports, per month, how many days the recipient sent the first message
of the day and how many of the sender's days got a same-day reply.`,
	Args: cobra.ExactArgs(1),
	RunE: runRoot,
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.Flags().StringVar(&fromStr, "from", "", `Start time filter (format: "DD.MM.YYYY" or "DD.MM.YYYY HH:MM")`)
	rootCmd.Flags().StringVar(&toStr, "to", "", `End time filter (format: "DD.MM.YYYY" or "DD.MM.YYYY HH:MM")`)
	rootCmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	rootCmd.Flags().StringVarP(&format, "format", "f", "text", fmt.Sprintf("Output format: one of %s", strings.Join(renderer.Formats, ", ")))

	pf := rootCmd.PersistentFlags()
	pf.String("sender", "", "Display name of the sender (overrides participants.sender)")
	pf.String("recipient", "", "Display name of the recipient (overrides participants.recipient)")
	pf.String("store", "", "SQLite file to persist runs in (overrides store.path)")
	pf.String("log-level", "", "Log level: debug, info, warn, error (overrides log.level)")

	cobra.CheckErr(viper.BindPFlag("participants.sender", pf.Lookup("sender")))
	cobra.CheckErr(viper.BindPFlag("participants.recipient", pf.Lookup("recipient")))
	cobra.CheckErr(viper.BindPFlag("store.path", pf.Lookup("store")))
	cobra.CheckErr(viper.BindPFlag("log.level", pf.Lookup("log-level")))
}

func configDir() string {
	dir, err := config.Dir(version.ApplicationName)
	cobra.CheckErr(err)
	return dir
}

func initConfig() {
	config.Setup(viper.GetViper(), configDir())
}

func loadConfig(cmd *cobra.Command) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, log.New(cfg.Log, cmd.ErrOrStderr()), nil
}

func newParser(p domain.Participants, logger zerolog.Logger) domain.TranscriptParser {
	return parser.NewWhatsAppParser(p, logger)
}

// openSinks opens the SQLite store when a path is configured. The returned
// func closes whatever was opened.
func openSinks(cfg *config.Config, logger zerolog.Logger) ([]domain.ReportSink, func(), error) {
	if cfg.Store.Path == "" {
		return nil, func() {}, nil
	}
	db, err := store.OpenDB(cfg.Store.Path, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("opening store: %w", err)
	}
	return []domain.ReportSink{db}, func() { _ = db.Close() }, nil
}

func newSource(ctx context.Context, cfg *config.Config, ref string) (domain.TranscriptSource, error) {
	r := &source.Router{Local: source.FileSource{}}
	if strings.HasPrefix(ref, "s3://") {
		s3Src, err := source.NewS3Source(ctx, cfg.S3)
		if err != nil {
			return nil, err
		}
		r.S3 = s3Src
	}
	return r, nil
}

func runRoot(cmd *cobra.Command, args []string) error {
	ref := args[0]

	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w (set it with --sender/--recipient or chatstats init)", err)
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return fmt.Errorf("parsing --from: %w", err)
	}

	to, err := parseTime(toStr)
	if err != nil {
		return fmt.Errorf("parsing --to: %w", err)
	}

	// If --to is date-only, set to end of day
	if to != nil && !strings.Contains(toStr, " ") {
		endOfDay := to.Add(23*time.Hour + 59*time.Minute + 59*time.Second)
		to = &endOfDay
	}

	rend, err := renderer.New(format)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	src, err := newSource(ctx, cfg, ref)
	if err != nil {
		return err
	}

	sinks, closeSinks, err := openSinks(cfg, logger)
	if err != nil {
		return err
	}
	defer closeSinks()

	svc := app.NewAnalysisService(src, newParser, logger, sinks...)

	w := cmd.OutOrStdout()
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("creating output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	return svc.Process(ctx, app.Request{
		Ref:          ref,
		Participants: cfg.ParticipantNames(),
		From:         from,
		To:           to,
	}, rend, w)
}

func parseTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}

	formats := []string{
		"02.01.2006 15:04",
		"02.01.2006",
	}

	for _, f := range formats {
		t, err := time.Parse(f, s)
		if err == nil {
			return &t, nil
		}
	}

	return nil, fmt.Errorf("unknown time format: %q (expected DD.MM.YYYY or DD.MM.YYYY HH:MM)", s)
}
