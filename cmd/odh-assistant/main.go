package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vitebski/odh-assistant/internal/config"
	"github.com/vitebski/odh-assistant/internal/utils"
)

// globalOptions are shared by every command
type globalOptions struct {
	host       string
	user       string
	password   string
	database   string
	port       string
	source     string
	configFile string
	envFile    string
	logLevel   string
}

func main() {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "odh-assistant",
		Short: "Build transformation queries by picking tables, fields and relationships",
		Long: `ODH Transformation Assistant

Select tables and fields, relate them by join or union, and get the
query text of a new transformation. Runs as an HTTP API (serve) or
generates queries from YAML drafts (generate).`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.host, "host", "H", "", "MySQL host (default: localhost)")
	rootCmd.PersistentFlags().StringVarP(&opts.user, "user", "u", "", "MySQL user (default: root)")
	rootCmd.PersistentFlags().StringVarP(&opts.password, "password", "p", "", "MySQL password")
	rootCmd.PersistentFlags().StringVarP(&opts.database, "database", "d", "", "MySQL database name")
	rootCmd.PersistentFlags().StringVarP(&opts.port, "port", "P", "", "MySQL port (default: 3306)")
	rootCmd.PersistentFlags().StringVarP(&opts.source, "source", "s", "", "Table source: mysql or sample")
	rootCmd.PersistentFlags().StringVarP(&opts.configFile, "config", "c", "", "Path to a YAML config file")
	rootCmd.PersistentFlags().StringVarP(&opts.envFile, "env-file", "e", ".env", "Path to .env file")
	rootCmd.PersistentFlags().StringVarP(&opts.logLevel, "log-level", "l", "", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newGenerateCmd(opts),
		newCatalogCmd(opts),
		newServeCmd(opts),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// setup configures logging and loads the configuration. Flags override the
// environment and the config file.
func (o *globalOptions) setup() (*config.Config, *logrus.Logger) {
	logger := utils.SetupLogging(o.logLevel)
	utils.LoadEnvironmentVariables(o.envFile, logger)

	flagEnv := map[string]string{
		"ODH_DB_HOST":     o.host,
		"ODH_DB_USER":     o.user,
		"ODH_DB_PASSWORD": o.password,
		"ODH_DB_DATABASE": o.database,
		"ODH_DB_PORT":     o.port,
		"ODH_SOURCE":      o.source,
	}
	for key, value := range flagEnv {
		if value != "" {
			os.Setenv(key, value)
		}
	}

	var (
		cfg *config.Config
		err error
	)
	if o.configFile != "" {
		cfg, err = config.LoadFile(o.configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		logger.Errorf("Invalid configuration: %v", err)
		os.Exit(1)
	}

	// Flags also win over the config file
	overrides := map[*string]string{
		&cfg.Database.Host:     o.host,
		&cfg.Database.User:     o.user,
		&cfg.Database.Password: o.password,
		&cfg.Database.Database: o.database,
		&cfg.Database.Port:     o.port,
		&cfg.Source:            o.source,
	}
	for field, value := range overrides {
		if value != "" {
			*field = value
		}
	}

	logger.Debugf("Using %s table source", cfg.Source)
	return cfg, logger
}
