// Package config loads CLI configuration and builds the service from it.
package config

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bi-tools/appcopy/pkg/collect"
	"github.com/bi-tools/appcopy/pkg/engine"
	"github.com/bi-tools/appcopy/pkg/engine/qix"
	"github.com/bi-tools/appcopy/pkg/service"
)

var (
	cfgFile string
	Verbose bool
)

func InitConfig() {
	// A local .env is convenient for per-project engine endpoints.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		configDir := filepath.Join(home, ".config", "appcopy")
		viper.AddConfigPath(configDir)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("APPCOPY")

	viper.SetDefault("engine_url", "ws://localhost:9076/app/engineData")
	viper.SetDefault("extensions_url", "")
	viper.SetDefault("open_settle_ms", 120)
	viper.SetDefault("index_path", ":memory:")
	viper.SetDefault("load_with_objects", true)
	viper.SetDefault("validate_expressions", false)
	viper.SetDefault("check_bookmark_fields", true)

	_ = viper.ReadInConfig()
}

// NewLogger builds the CLI logger. Diagnostics go to stderr so command
// output stays pipeable.
func NewLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if Verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}
	return logger
}

// InitService wires the configuration into a lazily dialing service.
func InitService() (*service.Service, error) {
	logger := NewLogger()

	engineURL := viper.GetString("engine_url")
	cfg := &service.Config{
		EngineURL:     engineURL,
		ExtensionsURL: viper.GetString("extensions_url"),
		SettleDelay:   time.Duration(viper.GetInt("open_settle_ms")) * time.Millisecond,
		IndexPath:     viper.GetString("index_path"),
		Collect: collect.Options{
			LoadWithObjects:     viper.GetBool("load_with_objects"),
			ValidateExpressions: viper.GetBool("validate_expressions"),
			CheckBookmarkFields: viper.GetBool("check_bookmark_fields"),
		},
	}

	dial := func(ctx context.Context) (engine.Global, error) {
		session, err := qix.Dial(ctx, engineURL, logger)
		if err != nil {
			return nil, err
		}
		return qix.NewGlobal(session), nil
	}

	return service.New(cfg, dial, logger), nil
}

func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/appcopy/config.yaml)")
	cmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "v", false, "enable debug logging")
}
