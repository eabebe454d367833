package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"langfile/internal/applier"
	"langfile/internal/config"
	"langfile/internal/extractor"
	"langfile/internal/memory"
	"langfile/internal/merger"
	"langfile/internal/metrics"
	"langfile/internal/policy"
	"langfile/internal/storage"
	"langfile/internal/table"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Execute runs the CLI application.
func Execute() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// runtime holds what every command shares for one invocation.
type runtime struct {
	cfg      *config.Config
	policy   *policy.Policy
	storage  *storage.Storage
	recorder *metrics.Recorder
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	rt := &runtime{}

	rootCmd := &cobra.Command{
		Use:   "langfile",
		Short: "Extract, merge and apply translatable text in game data files",
		Long: `Exports the translatable fields of JSON game data (quest books and similar)
to CSV tables keyed by hashed file and field paths, merges tables from several
translators, and writes translated text back into a mirror of the original files.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return rt.init(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return rt.finish()
		},
	}

	rootCmd.PersistentFlags().String("policy", "", "Policy file (.yaml, .yml, .json or .toml) listing translatable keys")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().String("metrics-file", "", "Write run metrics in Prometheus text format to this file")

	rootCmd.AddCommand(extractCmd(rt))
	rootCmd.AddCommand(applyCmd(rt))
	rootCmd.AddCommand(mergeCmd(rt))
	rootCmd.AddCommand(memoryCmd(rt))

	return rootCmd
}

func (rt *runtime) init(cmd *cobra.Command) error {
	rt.cfg = config.Load()

	if v, _ := cmd.Flags().GetString("policy"); v != "" {
		rt.cfg.PolicyPath = v
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		rt.cfg.LogLevel = v
	}
	if v, _ := cmd.Flags().GetString("metrics-file"); v != "" {
		rt.cfg.MetricsFile = v
	}

	level, err := zerolog.ParseLevel(rt.cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = log.With().Str("run", uuid.NewString()).Logger()

	p, err := rt.cfg.Policy()
	if err != nil {
		return err
	}
	rt.policy = p
	rt.storage = storage.New()
	rt.recorder = metrics.New()

	log.Debug().
		Str("policy", rt.cfg.PolicyPath).
		Int("keys", len(p.Keys)).
		Msg("Configuration loaded")
	return nil
}

func (rt *runtime) finish() error {
	if rt.cfg == nil || rt.cfg.MetricsFile == "" {
		return nil
	}
	if err := rt.recorder.WriteTextfile(rt.cfg.MetricsFile); err != nil {
		return err
	}
	log.Debug().Str("path", rt.cfg.MetricsFile).Msg("Metrics written")
	return nil
}

func extractCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "extract <inputDocOrDir> <outputTablePath>",
		Short: "Export translatable fields to a CSV table",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupContext()
			defer cancel()

			e := extractor.New(rt.policy, rt.storage, rt.recorder)
			return e.ExtractFile(ctx, args[0], args[1])
		},
	}
}

func applyCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "apply <inputDocOrDir> <inputTablePath> <outputDocOrDir>",
		Short: "Write translated text from a CSV table into a copy of the input",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupContext()
			defer cancel()

			a := applier.New(rt.policy, rt.storage, rt.recorder)
			if err := a.Apply(ctx, args[0], args[1], args[2]); err != nil {
				return err
			}

			log.Info().
				Str("output", args[2]).
				Float64("missing", counterValue(rt.recorder.MissingTranslationsTotal)).
				Msg("Translation complete")
			return nil
		},
	}
}

func mergeCmd(rt *runtime) *cobra.Command {
	return &cobra.Command{
		Use:   "merge <outputTablePath> <referenceDocOrDir> <primaryTablePath> [additionalTablePath...]",
		Short: "Combine several CSV tables into one",
		Long: `Joins the text of every additional table into the matching rows of the
primary table. The reference documents are walked to recover field paths from
their hashed addresses, which selects the join separator of each row.`,
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupContext()
			defer cancel()

			m := merger.New(rt.policy, rt.storage, rt.recorder)
			return m.MergeFile(ctx, args[0], args[1], args[2], args[3:]...)
		},
	}
}

func memoryCmd(rt *runtime) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "Push tables to or pull them from a translation memory",
	}
	cmd.PersistentFlags().String("dsn", "", "Translation memory: postgres://... URL, sqlite://path or a .db file")

	cmd.AddCommand(&cobra.Command{
		Use:   "push <tablePath>",
		Short: "Store the rows of a CSV table in the translation memory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupContext()
			defer cancel()

			rows, err := table.Read(args[0])
			if err != nil {
				return err
			}

			store, err := rt.openMemory(ctx, cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.Put(ctx, rows)
			if err != nil {
				return err
			}
			log.Info().Str("path", args[0]).Int("rows", n).Msg("Rows stored in translation memory")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "pull <tablePath>",
		Short: "Write every translation memory row to a CSV table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := setupContext()
			defer cancel()

			store, err := rt.openMemory(ctx, cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			rows, err := store.All(ctx)
			if err != nil {
				return err
			}
			if err := table.Write(ctx, args[0], rows); err != nil {
				return err
			}
			log.Info().Str("path", args[0]).Int("rows", len(rows)).Msg("CSV file written")
			return nil
		},
	})

	return cmd
}

func (rt *runtime) openMemory(ctx context.Context, cmd *cobra.Command) (memory.Store, error) {
	dsn, _ := cmd.Flags().GetString("dsn")
	if dsn == "" {
		dsn = rt.cfg.MemoryDSN
	}
	return memory.Open(ctx, dsn)
}

// setupContext creates a cancellable context with signal handling.
func setupContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case <-sigCh:
			log.Warn().Msg("Received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}
