package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Veraticus/depressurize/internal/common"
	"github.com/Veraticus/depressurize/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var version = "dev"

// app carries the state shared by every subcommand of one root command.
type app struct {
	v        *viper.Viper
	settings *config.Settings
	cfgFile  string
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}
	config.SetDefaults(a.v)

	rootCmd := &cobra.Command{
		Use:   "depcat",
		Short: "🎮 Game library categorization engine",
		Long: `depcat organizes a game library into categories using configurable AutoCat rules
driven by store metadata: genres, tags, release years, review scores, play times,
languages, curator recommendations and more.`,
		PersistentPreRunE: a.initConfig,
		SilenceUsage:      true,
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: $HOME/.config/depcat/config.yaml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console, json)")
	flags.String("profile", "", "profile file (default: $HOME/.config/depcat/profile.xml)")
	flags.String("database", "", "metadata database (default: $HOME/.local/share/depcat/metadata.db)")

	_ = a.v.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("logging.format", flags.Lookup("log-format"))
	_ = a.v.BindPFlag("profile.path", flags.Lookup("profile"))
	_ = a.v.BindPFlag("database.path", flags.Lookup("database"))

	rootCmd.AddCommand(a.profileCmd())
	rootCmd.AddCommand(a.autocatCmd())
	rootCmd.AddCommand(a.categoriesCmd())
	rootCmd.AddCommand(a.gamesCmd())
	rootCmd.AddCommand(a.filtersCmd())
	rootCmd.AddCommand(a.metadataCmd())
	rootCmd.AddCommand(a.doctorCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func main() {
	// Set up signal handling
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received interrupt signal, shutting down gracefully...")
		cancel()
	}()

	err := newRootCmd().ExecuteContext(ctx)
	cancel() // Always cleanup

	if err != nil {
		var userErr *common.UserError
		if errors.As(err, &userErr) {
			fmt.Fprintln(os.Stderr, userErr.UserMessage)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func (a *app) initConfig(_ *cobra.Command, _ []string) error {
	if err := config.LoadEnv(); err != nil {
		return err
	}

	// Set up config file
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		a.v.AddConfigPath(config.ConfigDir())
		a.v.AddConfigPath(".")
		a.v.SetConfigName("config")
		a.v.SetConfigType("yaml")
	}

	config.BindEnv(a.v)

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, we'll use defaults
	}

	settings, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.settings = settings

	if err := setupLogging(settings); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	return nil
}

func setupLogging(s *config.Settings) error {
	level, err := common.ParseLevel(s.Logging.Level)
	if err != nil {
		return err
	}
	common.SetupLogger(level, s.Logging.Format)
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "depcat %s\n", version)
		},
	}
}
