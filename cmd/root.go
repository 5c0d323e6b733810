// Package cmd implements the command-line interface for PolisWatch.
// It provides the root command and subcommands for watching police events.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joho/godotenv"
	cmdareas "github.com/jonesrussell/poliswatch/cmd/areas"
	cmdevents "github.com/jonesrussell/poliswatch/cmd/events"
	"github.com/jonesrussell/poliswatch/cmd/watch"
	"github.com/jonesrussell/poliswatch/internal/config"
	"github.com/jonesrussell/poliswatch/internal/constants"
)

var (
	// cfgFile holds the path to the configuration file.
	cfgFile string

	// Debug enables debug mode for all commands
	Debug bool

	// rootCmd represents the root command for the PolisWatch CLI.
	rootCmd = &cobra.Command{
		Use:   "poliswatch",
		Short: "Watch the Swedish police events feed",
		Long: `PolisWatch polls the polisen.se events feed, keeps the most recent
events per watched area, and serves them over HTTP.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

// Execute runs the root command
func Execute() error {
	// Load .env file early so environment variables are available
	_ = godotenv.Load()

	// Parse flags early to get debug flag before creating logger
	_ = rootCmd.ParseFlags(os.Args[1:])

	// Initialize configuration
	if err := initConfig(); err != nil {
		return fmt.Errorf("failed to initialize configuration: %w", err)
	}

	// Execute the root command with a fresh context
	return rootCmd.ExecuteContext(context.Background())
}

// init initializes the root command and its subcommands.
func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"config file (default is ./config.yaml or ./config/config.yaml)",
	)
	rootCmd.PersistentFlags().BoolVar(&Debug, "debug", false, "enable debug mode")

	// Add version command
	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("poliswatch version %s\n", constants.DefaultAppVersion)
		},
	})

	// Add subcommands
	rootCmd.AddCommand(watch.Command())
	rootCmd.AddCommand(cmdevents.Command())
	rootCmd.AddCommand(cmdareas.Command())
}

// initConfig reads in config file and ENV variables if set.
func initConfig() error {
	// Set config file
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	// Load .env file first, before setting defaults and reading config
	// This ensures environment variables from .env are available when Viper reads them
	// Note: This may be called twice (once in Execute(), once here), but godotenv.Load()
	// is idempotent and won't overwrite existing environment variables
	if err := godotenv.Load(); err != nil {
		// .env file not found, that's ok - we'll use environment variables
		fmt.Fprintf(os.Stderr, "Warning: .env file not found: %v\n", err)
	}

	// Enable automatic environment variable reading BEFORE setting defaults
	// This ensures environment variables take precedence over defaults
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults (only used if environment variables or config file don't provide values)
	config.SetDefaults(viper.GetViper())

	// Read config file
	// Note: Config file is optional - if not found, we'll use defaults and environment variables
	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, that's ok - we'll use defaults
		// This is expected behavior: config can come from file, environment variables, or defaults
		fmt.Fprintf(os.Stderr, "Warning: Config file not found: %v (using defaults and environment variables)\n", err)
	}

	// Bind command-line flags to Viper
	if err := bindCommandLineFlags(); err != nil {
		return err
	}

	// Map environment variables to config keys
	if err := bindAppEnvVars(); err != nil {
		return err
	}

	// Set development logging settings
	setupDevelopmentLogging()

	return nil
}

// bindCommandLineFlags binds command-line flags to Viper.
func bindCommandLineFlags() error {
	if err := viper.BindPFlag("app.debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		return fmt.Errorf("failed to bind debug flag: %w", err)
	}
	if err := viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config")); err != nil {
		return fmt.Errorf("failed to bind config flag: %w", err)
	}
	return nil
}

// bindAppEnvVars binds application and logger environment variables to config keys.
func bindAppEnvVars() error {
	if err := viper.BindEnv("app.environment", "APP_ENV"); err != nil {
		return fmt.Errorf("failed to bind APP_ENV: %w", err)
	}
	if err := viper.BindEnv("app.debug", "APP_DEBUG"); err != nil {
		return fmt.Errorf("failed to bind APP_DEBUG: %w", err)
	}
	if err := viper.BindEnv("logger.level", "LOG_LEVEL"); err != nil {
		return fmt.Errorf("failed to bind LOG_LEVEL: %w", err)
	}
	if err := viper.BindEnv("logger.encoding", "LOG_FORMAT"); err != nil {
		return fmt.Errorf("failed to bind LOG_FORMAT: %w", err)
	}
	// Bind the watched area list
	// Note: WATCH_AREAS is also handled by AutomaticEnv via the replacer,
	// but we explicitly bind POLISWATCH_AREAS as a prefixed alias
	if err := viper.BindEnv("watch.areas", "POLISWATCH_AREAS", "WATCH_AREAS"); err != nil {
		return fmt.Errorf("failed to bind watch areas: %w", err)
	}
	return nil
}

// setupDevelopmentLogging configures development logging settings based on environment and debug flag.
func setupDevelopmentLogging() {
	// Check both the flag variable and Viper to ensure we catch the debug flag
	// Note: Debug variable is set by ParseFlags(), and we bind it to Viper above
	debugFlag := Debug || viper.GetBool("app.debug")
	isDev := viper.GetString("app.environment") == constants.EnvDevelopment

	// Only set debug level if explicitly requested via flag or APP_DEBUG
	// Do NOT automatically set debug level just because environment is "development"
	if debugFlag {
		viper.Set("logger.level", "debug")
	}

	// Set development mode features (formatting, colors, etc.) if in development environment
	// But do NOT change log level unless explicitly requested
	if isDev {
		viper.Set("logger.development", true)
		viper.Set("logger.enable_color", true)
		viper.Set("logger.encoding", "console")
	}

	// Synchronize global Debug variable with Viper's value
	Debug = debugFlag
}
