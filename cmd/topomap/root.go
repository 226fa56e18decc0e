package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/beetlebugorg/topomap/internal/config"
	"github.com/beetlebugorg/topomap/internal/logger"
	"github.com/beetlebugorg/topomap/internal/metrics"
	"github.com/beetlebugorg/topomap/pkg/topomap"
)

var (
	cfgFile string
	cfg     *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "topomap",
	Short: "Inspect and query packed topology maps",
	Long: `topomap loads a compressed topology map container, builds the feature
graph of each layer and answers questions about it.

Examples:
  # List layers with their arc and polygon counts
  topomap inspect japan.mpk

  # Features of the prefecture layer around Tokyo as GeoJSON
  topomap query japan.mpk --layer PrefectureForecastArea --bbox "139,35,140.5,36"

  # What would be drawn for an 800x600 view at zoom 6.2
  topomap plan japan.mpk --center "139.7,35.7" --zoom 6.2`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.topomap.yaml or $HOME/.topomap.yaml)")

	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")
	rootCmd.PersistentFlags().Int("workers", 0, "layers built concurrently (default: number of CPUs)")
	rootCmd.PersistentFlags().StringSlice("layers", nil, "layers to build, by name or key (default: essential layers)")
	rootCmd.PersistentFlags().Bool("all-layers", false, "build every layer in the container")
	rootCmd.PersistentFlags().String("axis-order", "latlng", "coordinate order stored in the container (latlng, lnglat)")
	rootCmd.PersistentFlags().String("metrics-addr", "", "serve Prometheus metrics on this address while running")

	bindFlags(rootCmd.PersistentFlags(), map[string]string{
		"logging.level":     "log-level",
		"logging.format":    "log-format",
		"build.workers":     "workers",
		"build.layers":      "layers",
		"build.all_layers":  "all-layers",
		"engine.axis_order": "axis-order",
		"metrics.address":   "metrics-addr",
	})
}

// bindFlags binds each configuration key to the named flag.
func bindFlags(flags *pflag.FlagSet, keys map[string]string) {
	for key, name := range keys {
		if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName(".topomap")
	}

	config.BindEnv(viper.GetViper(), ".env")

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Failed to read config file %s: %v\n", cfgFile, err)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	c, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg = c

	log, err := logger.Setup(c.Logging.Level, c.Logging.Format)
	if err != nil {
		return err
	}
	logger.Set(log)

	if c.Metrics.Address != "" {
		serveMetrics(cmd.Context(), c.Metrics.Address, log)
	}
	return nil
}

func teardown(cmd *cobra.Command, args []string) error {
	logger.Sync()
	return nil
}

func serveMetrics(ctx context.Context, addr string, log *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		log.Info("metrics listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server failed", zap.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdown)
	}()
}

// loadAtlas decodes the container at path and builds the configured layers.
func loadAtlas(ctx context.Context, path string) (*topomap.Atlas, error) {
	maps, err := topomap.NewLoader().LoadWithOptions(path, cfg.LoadOptions())
	if err != nil {
		return nil, err
	}
	return buildAtlas(ctx, maps)
}

func buildAtlas(ctx context.Context, maps map[topomap.LayerID]*topomap.TopologyMap) (*topomap.Atlas, error) {
	log := logger.Get()

	opts, err := cfg.BuildOptions(log)
	if err != nil {
		return nil, err
	}
	opts.Progress = func(built, total int) {
		log.Debug("build progress", zap.Int("built", built), zap.Int("total", total))
	}

	return topomap.BuildAtlas(ctx, maps, opts)
}

// layerFlag resolves the --layer flag, falling back to the configured
// primary layer.
func layerFlag(cmd *cobra.Command) (topomap.LayerID, error) {
	name, _ := cmd.Flags().GetString("layer")
	if name == "" {
		return cfg.PrimaryLayer()
	}
	return topomap.ParseLayerID(name)
}
