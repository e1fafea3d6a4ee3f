// Package cmd assembles and runs the lock coordinator from the
// command line.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/AliceO2Group/detlockd/internal/broadcast"
	"github.com/AliceO2Group/detlockd/internal/config"
	"github.com/AliceO2Group/detlockd/internal/core"
	"github.com/AliceO2Group/detlockd/internal/lockservice"
	"github.com/AliceO2Group/detlockd/internal/routing"
	"github.com/AliceO2Group/detlockd/internal/server"
)

var rootCmd = &cobra.Command{
	Use:   "detlockd",
	Short: "Detector lock coordinator for the control console",
	Long: `Detlockd arbitrates which connected operator may drive
state-changing control commands against each detector. It keeps one
exclusive lock per detector, broadcasts every state change to all
connected consoles and gates mutating environment requests on lock
ownership.`,
	RunE:          run,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is ./detlockd.yaml)")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("detlockd")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("/etc/detlockd")
		viper.AddConfigPath(".")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("DETLOCKD")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists (ignore error if not found).
	_ = viper.ReadInConfig()
}

func run(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	log := zerolog.New(os.Stdout).With().Timestamp().Logger().Level(level)

	hub := broadcast.NewHub(log)
	publishers := broadcast.Fanout{hub}
	if cfg.RedisAddr != "" {
		redisPub, err := broadcast.NewRedisPublisher(log, cfg.RedisAddr, cfg.RedisChannel)
		if err != nil {
			return err
		}
		defer redisPub.Close()
		publishers = append(publishers, redisPub)
	}

	locks := lockservice.NewRegistry(log, publishers)
	coreClient := core.NewClient(log, cfg.ControlURL, cfg.ControlTimeout)

	detectors := cfg.Detectors
	if len(detectors) == 0 {
		if cfg.ControlURL == "" {
			return fmt.Errorf("no detector inventory: set inventory.detectors or control.url")
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		detectors, err = coreClient.ListDetectors(ctx)
		cancel()
		if err != nil {
			return fmt.Errorf("listing detectors: %w", err)
		}
	}
	locks.Seed(detectors)

	router := routing.SetupRouting(routing.Deps{
		Log:    log,
		Locks:  locks,
		Hub:    hub,
		Lookup: coreClient,
		Core:   coreClient,
	}, mux.NewRouter())

	return server.Start(log, server.Config{IP: cfg.ListenIP, Port: cfg.ListenPort}, router)
}
