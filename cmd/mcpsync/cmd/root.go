// Package cmd implements the mcpsync command line interface.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/chatbox-community/mcpsync/internal/config"
	"github.com/chatbox-community/mcpsync/pkg/logging"
)

var (
	flagToken  string
	flagPath   string
	flagAPIURL string
	verbose    bool
	quiet      bool

	// Version information set by main.
	Version = "dev"
	// Commit is the git commit hash.
	Commit = "unknown"
	// Date is the build date.
	Date = "unknown"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "mcpsync",
	Short: "Sync ModelScope MCP servers into Chatbox",
	Long: `mcpsync keeps a Chatbox configuration in step with the ModelScope
MCP service directory.

The sync is idempotent and append/update-only: entries you added by hand
are preserved, servers renamed upstream are renamed locally, and newly
published servers are appended. The previous config is copied to a .bak
sibling before every write.

An API token is required, either via --token or the MODELSCOPE_API_KEY
environment variable (a .env file in the working directory is honored).`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and runs it.
// Any error exits the process with a non-zero status.
func Execute(version, commit, date string) {
	Version = version
	Commit = commit
	Date = date

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&flagToken, "token", "t", "", "ModelScope API token (or set MODELSCOPE_API_KEY)")
	rootCmd.PersistentFlags().StringVarP(&flagPath, "path", "p", "", "Chatbox config file path (or set CHATBOX_CONFIG; default is the platform config dir)")
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "ModelScope MCP API URL")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log warnings and errors")

	if err := viper.BindPFlag("token", rootCmd.PersistentFlags().Lookup("token")); err != nil {
		panic(fmt.Sprintf("Failed to bind token flag: %v", err))
	}
	if err := viper.BindPFlag("path", rootCmd.PersistentFlags().Lookup("path")); err != nil {
		panic(fmt.Sprintf("Failed to bind path flag: %v", err))
	}
	if err := viper.BindPFlag("api-url", rootCmd.PersistentFlags().Lookup("api-url")); err != nil {
		panic(fmt.Sprintf("Failed to bind api-url flag: %v", err))
	}
}

// initConfig loads .env files and binds environment variables.
func initConfig() {
	loadEnvFiles()

	viper.AutomaticEnv()

	// Flag wins, environment variable fills in.
	if err := viper.BindEnv("token", config.APIKeyEnvVar); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to bind %s: %v\n", config.APIKeyEnvVar, err)
	}
	if err := viper.BindEnv("path", config.RegistryPathEnvVar); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to bind %s: %v\n", config.RegistryPathEnvVar, err)
	}

	configureLogging()
}

// configureLogging sets up the logging system based on flags and environment.
func configureLogging() {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	if quiet {
		level = zerolog.WarnLevel
	}
	if envLevel := os.Getenv("LOG_LEVEL"); envLevel != "" {
		if parsed, err := zerolog.ParseLevel(envLevel); err == nil {
			level = parsed
		}
	}

	logging.Configure(&logging.Config{
		Level:   level.String(),
		Format:  os.Getenv("LOG_FORMAT"),
		NoColor: os.Getenv("NO_COLOR") != "",
	})
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env.
func loadEnvFiles() {
	for _, envFile := range []string{".env", ".env.local"} {
		if err := godotenv.Load(envFile); err == nil && verbose {
			fmt.Fprintf(os.Stderr, "Loaded %s\n", envFile)
		}
	}
}
