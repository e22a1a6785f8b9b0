// Command ontorepair loads facts into a SQLite knowledge base and runs the
// reasoning and repair engine over it. Results are written to stdout as JSON.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cognicore/ontorepair/pkg/ontorepair"
	"github.com/cognicore/ontorepair/pkg/ontorepair/config"
	"github.com/cognicore/ontorepair/pkg/ontorepair/store/sqlite"
)

type app struct {
	dbPath     string
	configPath string
	verbose    bool

	logger *zap.Logger
	cfg    config.Options
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "ontorepair",
		Short:         "Reason over and repair an OWL/RDFS knowledge base",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.dbPath, "db", "ontorepair.db", "SQLite knowledge base")
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "Engine options (YAML)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(a.loadCmd(), a.classifyCmd(), a.reasonCmd(), a.repairCmd())
	return root
}

func (a *app) setup() error {
	zc := zap.NewProductionConfig()
	if a.verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := zc.Build()
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	a.logger = logger

	a.cfg = config.Default()
	if a.configPath != "" {
		if a.cfg, err = config.Load(a.configPath); err != nil {
			return fmt.Errorf("load config %s: %w", a.configPath, err)
		}
	}
	return nil
}

func (a *app) engine() *ontorepair.Engine {
	return ontorepair.New(ontorepair.Options{Logger: a.logger, Config: &a.cfg})
}

func (a *app) open(ctx context.Context) (sqlite.Store, error) {
	s, err := sqlite.Open(ctx, a.dbPath)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", a.dbPath, err)
	}
	return s, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
