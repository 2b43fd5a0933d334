// Package main provides the intron-filter command-line tool.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/inodb/intron-filter/internal/extract"
	"github.com/inodb/intron-filter/internal/overlap"
	"github.com/inodb/intron-filter/internal/pipeline"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
	ExitUsage   = 2
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const (
	configName = ".intron-filter"
	envPrefix  = "INTRON_FILTER"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := newRootCmd()
	root.SetArgs(args)

	if err := root.ExecuteContext(ctx); err != nil {
		var uerr *usageError
		if errors.As(err, &uerr) {
			return ExitUsage
		}
		return ExitError
	}
	return ExitSuccess
}

// usageError marks errors caused by a malformed invocation.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// exactArgs is cobra.ExactArgs returning a usageError.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return &usageError{err: err}
		}
		return nil
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	var root *cobra.Command
	root = &cobra.Command{
		Use:   "intron-filter [flags] <rna_gff_with_introns.gff3> <junctions.bed> <output_prefix>",
		Short: "Keep transcripts whose introns are supported by splice junctions",
		Long: `Filter a GFF3 annotation to transcripts with at least one intron that
overlaps a validated splice junction.

The annotation must already contain intron features (e.g. from
"gt gff3 -addintrons"). Three files are written:

  <prefix>.bed              all introns as BED (chrom, start, end, transcript)
  <prefix>_supported.bed    introns overlapping at least one junction
  <prefix>_filtered.gff3    records of supported transcripts, comments kept`,
		Example: `  intron-filter rna.gff3 junctions.bed out/sample
  intron-filter --engine bedtools rna.gff3 junctions.bed out/sample
  intron-filter --engine duckdb --duckdb-path out/sample.duckdb rna.gff3 junctions.bed out/sample`,
		Version: fmt.Sprintf("%s (%s) built %s", version, commit, date),
		Args:    exactArgs(3),
		PersistentPreRunE: func(_ *cobra.Command, args []string) error {
			if err := bindFlags(root); err != nil {
				return err
			}
			return initConfig(cfgFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Arguments are valid; failures from here on are not usage errors.
			cmd.SilenceUsage = true
			return runFilter(cmd.Context(), cmd.OutOrStdout(), args[0], args[1], args[2])
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ~/.intron-filter.yaml)")
	root.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	flags := root.Flags()
	flags.String("engine", overlap.EngineNative, "Overlap engine: native, bedtools, duckdb")
	flags.String("bedtools", "bedtools", "bedtools executable for --engine bedtools")
	flags.String("duckdb-path", "", "DuckDB database file for --engine duckdb (default: in-memory)")
	flags.String("feature-type", extract.DefaultFeatureType, "GFF3 feature type of introns")

	root.AddCommand(newConfigCmd())

	return root
}

// bindFlags binds the root command's flags to viper keys of the same name.
// --config only locates the file and is not bound.
func bindFlags(root *cobra.Command) error {
	if err := viper.BindPFlags(root.LocalNonPersistentFlags()); err != nil {
		return fmt.Errorf("bind flags: %w", err)
	}
	if err := viper.BindPFlag("verbose", root.PersistentFlags().Lookup("verbose")); err != nil {
		return fmt.Errorf("bind verbose flag: %w", err)
	}
	return nil
}

// initConfig reads the config file and environment.
// A missing default config file is not an error.
func initConfig(cfgFile string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(configName)
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// newLogger builds a console logger on stderr.
func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableCaller = true
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	return cfg.Build()
}

func runFilter(ctx context.Context, out io.Writer, annotationPath, junctionPath, prefix string) error {
	logger, err := newLogger(viper.GetBool("verbose"))
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	engine, err := overlap.New(viper.GetString("engine"), overlap.Options{
		BedtoolsPath: viper.GetString("bedtools"),
		DuckDBPath:   viper.GetString("duckdb-path"),
	})
	if err != nil {
		return err
	}

	p := pipeline.New(engine)
	p.SetLogger(logger)
	p.SetFeatureType(viper.GetString("feature-type"))

	res, err := p.Run(ctx, annotationPath, junctionPath, prefix)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\nDone!\n")
	fmt.Fprintf(out, "Output GFF: %s\n", filepath.Clean(res.Filtered))
	return nil
}
