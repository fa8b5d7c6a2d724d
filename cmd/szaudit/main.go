package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/crimson-sun/szaudit/internal/logging"
	"github.com/crimson-sun/szaudit/internal/metrics"
	"github.com/crimson-sun/szaudit/pkg/szaudit"
)

var rootCmd = &cobra.Command{
	Use:   "szaudit",
	Short: "Collects safezone audit records into a log index",
	Long: "szaudit pulls audit records from the safezone monitoring API per configured " +
		"input and emits them as normalized events, resuming from a persisted checkpoint " +
		"on every run",
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := viper.BindPFlags(cmd.Flags()); err != nil {
			return fmt.Errorf("binding flags: %w", err)
		}
		viper.SetEnvPrefix("SZAUDIT")
		viper.AutomaticEnv()
		return nil
	},
	RunE: run,
}

func init() {
	rootCmd.Flags().StringP("config", "c", "szaudit.yaml", "path to the configuration file")
	rootCmd.Flags().Bool("once", false, "run one collection cycle and exit")
	rootCmd.Flags().String("log-level", "", "override the configured log level")
}

func run(cmd *cobra.Command, args []string) error {
	c, err := szaudit.FromConfigFile(viper.GetString("config"))
	if err != nil {
		return err
	}
	defer c.Close()

	settings := c.Settings()
	level := settings.LogLevel
	if override := viper.GetString("log-level"); override != "" {
		level = override
	}
	logging.Init(settings.LogJSON, logging.ParseLevel(level))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if settings.MetricsAddr != "" {
		go func() {
			logrus.Infof("serving metrics on addr[%s]", settings.MetricsAddr)
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler())
			if err := http.ListenAndServe(settings.MetricsAddr, mux); err != nil {
				logrus.Errorf("metrics listener failed: %s", err)
			}
		}()
	}

	if viper.GetBool("once") {
		failed := 0
		for _, res := range c.RunOnce(ctx) {
			if res.Err != nil {
				failed++
			}
		}
		if failed > 0 {
			return errors.New("one or more inputs failed, see logs")
		}
		return nil
	}

	logrus.Infof("starting collection loop")
	if err := c.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logrus.Infof("shutting down")
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Errorf("%s", err)
		os.Exit(1)
	}
}
