// Command pdsim runs an interactive USB PD port partner simulation. A small
// built-in port manager sits on one end; the simulated partner's role is
// driven by mode words read from standard input:
//
//	snk    attach a sink partner
//	src    attach a source partner
//	none   detach
//	reset  detach and report a controller reset
//
// EOF or "quit" ends the session.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/oxplot/go-pdsim/tcsim"
)

var (
	flagLogLevel string
	flagConfig   string
)

var rootCmd = &cobra.Command{
	Use:           "pdsim",
	Short:         "Interactive USB PD port partner simulator",
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

func init() {
	rootCmd.Flags().StringVar(&flagLogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "path to timing configuration file")
}

// fileConfig is the on-disk timing configuration. Durations use Go syntax,
// e.g. "5ms".
type fileConfig struct {
	VbusRampDelay string `yaml:"vbus_ramp_delay"`
	ResponseDelay string `yaml:"response_delay"`
}

func loadConfig(path string) (tcsim.Config, error) {
	var cfg tcsim.Config
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	var fc fileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if fc.VbusRampDelay != "" {
		if cfg.VbusRampDelay, err = time.ParseDuration(fc.VbusRampDelay); err != nil {
			return cfg, fmt.Errorf("vbus_ramp_delay: %w", err)
		}
	}
	if fc.ResponseDelay != "" {
		if cfg.ResponseDelay, err = time.ParseDuration(fc.ResponseDelay); err != nil {
			return cfg, fmt.Errorf("response_delay: %w", err)
		}
	}
	return cfg, nil
}

func run(cmd *cobra.Command, args []string) error {
	level, err := logrus.ParseLevel(flagLogLevel)
	if err != nil {
		return err
	}
	logrus.SetLevel(level)

	cfg, err := loadConfig(flagConfig)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	dm := &demoManager{}
	sim := tcsim.New(dm, cfg)
	dm.pc = sim
	if err := sim.Init(); err != nil {
		return err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		sim.Run(ctx)
	}()

	logrus.Infof("ready, enter mode (none, reset, snk, src) or quit")
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case line, ok := <-lines:
			if !ok || line == "quit" {
				break loop
			}
			if line == "" {
				continue
			}
			if err := sim.SetModeString(line); err != nil {
				logrus.Errorf("%v", err)
			}
		}
	}

	cancel()
	<-done
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
