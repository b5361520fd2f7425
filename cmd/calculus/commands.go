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

	"github.com/njchilds90/gocalculus/analysis"
	"github.com/njchilds90/gocalculus/internal/config"
	"github.com/njchilds90/gocalculus/internal/logging"
	"github.com/njchilds90/gocalculus/internal/server"
	"github.com/njchilds90/gocalculus/symbolic"
)

// app carries the persistent flags and what PersistentPreRunE builds from
// them.
type app struct {
	cfgFile  string
	verbose  bool
	variable string
	plotPath string
	asJSON   bool

	cfg    *config.Config
	log    *zap.Logger
	engine *analysis.Engine
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "calculus",
		Short: "Analyze single-variable expressions",
		Long: `calculus computes limits, derivatives, continuity and extrema of
single-variable expressions and renders the results as text, JSON or plots.

Expressions use the usual infix syntax: + - * / ^, parentheses, pi, E, I
and the functions sin, cos, tan, exp, ln, log, sqrt, abs, floor, sign, ...`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd.Name() == "serve")
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (.yaml, .yml or .toml)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	pf.StringVar(&a.variable, "var", "x", "independent variable")
	pf.StringVar(&a.plotPath, "plot", "", "write the figure to this file (.png, .svg or .html)")
	pf.BoolVar(&a.asJSON, "json", false, "print the report as JSON")

	root.AddCommand(
		a.limitCmd(),
		a.derivativeCmd(),
		a.continuityCmd(),
		a.localCmd(),
		a.globalCmd(),
		a.serveCmd(),
	)
	return root
}

func (a *app) setup(serving bool) error {
	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	level := cfg.Log.Level
	switch {
	case a.verbose:
		level = "debug"
	case !serving:
		// Keep one-shot output readable.
		level = "warn"
	}
	log, err := logging.New(level, cfg.Log.Environment)
	if err != nil {
		return err
	}
	a.cfg, a.log = cfg, log
	a.engine = analysis.NewEngine(cfg.EngineOptions(), log)
	log.Debug("configuration loaded", zap.String("source", cfg.Source))
	return nil
}

func (a *app) limitCmd() *cobra.Command {
	var (
		at  float64
		dir string
	)
	cmd := &cobra.Command{
		Use:   "limit EXPR",
		Short: "Limit of EXPR as the variable approaches a point",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := symbolic.ParseDirection(dir)
			if err != nil {
				return err
			}
			return a.run(cmd, args[0], analysis.LimitRequest{Point: at, Direction: d})
		},
	}
	cmd.Flags().Float64Var(&at, "at", 0, "point to approach")
	cmd.Flags().StringVar(&dir, "dir", "both", "direction: both, left or right")
	return cmd
}

func (a *app) derivativeCmd() *cobra.Command {
	var order int
	cmd := &cobra.Command{
		Use:     "derivative EXPR",
		Aliases: []string{"diff"},
		Short:   "Derivatives of EXPR up to the given order",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, args[0], analysis.DerivativeRequest{Order: order})
		},
	}
	cmd.Flags().IntVarP(&order, "order", "n", 1, "highest derivative order")
	return cmd
}

func (a *app) continuityCmd() *cobra.Command {
	var at float64
	cmd := &cobra.Command{
		Use:   "continuity EXPR",
		Short: "Check whether EXPR is continuous at a point",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, args[0], analysis.ContinuityRequest{Point: at})
		},
	}
	cmd.Flags().Float64Var(&at, "at", 0, "point to check")
	return cmd
}

func (a *app) localCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "local EXPR",
		Short: "Critical points of EXPR and their classification",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, args[0], analysis.LocalExtremaRequest{})
		},
	}
}

func (a *app) globalCmd() *cobra.Command {
	var lo, hi float64
	cmd := &cobra.Command{
		Use:   "global EXPR",
		Short: "Global minimum and maximum of EXPR on [a, b]",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			iv, err := analysis.NewInterval(lo, hi)
			if err != nil {
				return err
			}
			return a.run(cmd, args[0], analysis.GlobalExtremaRequest{Interval: iv})
		},
	}
	cmd.Flags().Float64Var(&lo, "a", 0, "left end of the interval")
	cmd.Flags().Float64Var(&hi, "b", 1, "right end of the interval")
	return cmd
}

func (a *app) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg.Server
			if addr != "" {
				cfg.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.New(a.engine, cfg, a.log, nil).Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")
	return cmd
}

func (a *app) run(cmd *cobra.Command, expr string, req analysis.Analysis) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	rep, err := a.engine.Analyze(ctx, analysis.Request{
		Expression: expr,
		Variable:   a.variable,
		Analysis:   req,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if a.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rep); err != nil {
			return err
		}
	} else {
		printReport(out, rep)
	}

	if a.plotPath != "" {
		if len(rep.Series) == 0 {
			return fmt.Errorf("nothing to plot for %s", rep.Expression)
		}
		if err := rep.Figure().WriteFile(a.plotPath); err != nil {
			return fmt.Errorf("write plot: %w", err)
		}
		a.log.Info("plot written", zap.String("path", a.plotPath))
	}
	return nil
}

func printReport(w io.Writer, rep *analysis.Report) {
	fmt.Fprintln(w, rep.Title)
	for _, e := range rep.Entries {
		fmt.Fprintf(w, "  %-16s %s\n", e.Label+":", e.Text)
	}
	for _, warning := range rep.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warning)
	}
}
