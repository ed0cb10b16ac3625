package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/leoyyy3/mericoComment/internal/contract"
	"github.com/leoyyy3/mericoComment/schema"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources
// (file, env, flags). Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

var rootCmd = &cobra.Command{
	Use:                "mericoreport",
	Short:              "Aggregate code-quality listings into reports.",
	Long:               `Mericoreport polls the Merico quality APIs for flagged and duplicate functions, reduces the listings into histograms and renders console, CSV, HTML and parquet reports.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in the config file and ENV variables if set.
func initConfig() {
	// Local .env files hold secrets during development.
	_ = godotenv.Load()

	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("mericoreport") // Name of config file (without extension)
		viper.SetConfigType("json")
		viper.AddConfigPath(".")     // Look in the current directory
		viper.AddConfigPath("$HOME") // Look in the home directory
	}

	// Set environment variable prefix
	viper.SetEnvPrefix("MERICOREPORT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// Secrets override the file through well-known variables.
	_ = viper.BindEnv("merico.token", "MERICO_TOKEN")
	_ = viper.BindEnv("merico.api_url", "MERICO_API_URL")
	_ = viper.BindEnv("merico.duplicate_url", "MERICO_DUPLICATE_URL")
	_ = viper.BindEnv("llm.api_key", "GEMINI_API_KEY")
	_ = viper.BindEnv("tapd.base_url", "TAPD_BASE_URL")

	// Set defaults in Viper
	viper.SetDefault("request.timeout", contract.DefaultTimeoutSeconds)
	viper.SetDefault("request.retry_times", contract.DefaultRetryTimes)
	viper.SetDefault("request.retry_delay", contract.DefaultRetryDelaySecs)
	viper.SetDefault("request.batch_delay", contract.DefaultBatchDelaySecs)
	viper.SetDefault("request.page_size", contract.DefaultPageSize)
	viper.SetDefault("output.format", string(schema.TextOut))
	viper.SetDefault("output.top_n", contract.DefaultTopN)
	viper.SetDefault("output.color", true)
	viper.SetDefault("output.pretty_print", true)
	viper.SetDefault("schedule.hour", contract.DefaultScheduleHour)
	viper.SetDefault("schedule.minute", contract.DefaultScheduleMinute)
}

// sharedSetup unmarshals config and runs validation.
func sharedSetup(_ *cobra.Command, _ []string) error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Run all validation and complex parsing. This populates the
	// global 'cfg' from 'input'.
	return contract.ProcessAndValidate(cfg, input)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
