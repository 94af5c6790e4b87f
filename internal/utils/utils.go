package utils

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/vitebski/odh-assistant/internal/selection"
	"github.com/vitebski/odh-assistant/pkg/models"
)

// SetupLogging configures the logging system
func SetupLogging(logLevel string) *logrus.Logger {
	// Create a new logger
	logger := logrus.New()

	// Get log level from environment variable or parameter
	levelStr := logLevel
	if levelStr == "" {
		levelStr = os.Getenv("ODH_LOG_LEVEL")
		if levelStr == "" {
			levelStr = "info"
		}
	}

	// Parse log level
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}

	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	// Logs go to stderr so that generated queries on stdout can be piped
	logger.SetOutput(os.Stderr)

	logger.Debugf("Logging configured with level: %s", level)
	return logger
}

// LoadEnvironmentVariables loads environment variables from .env file and
// reports whether the database settings are complete
func LoadEnvironmentVariables(envFile string, logger *logrus.Logger) bool {
	// Check if a sample .env file exists but not the actual .env file
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		sampleEnvFile := envFile + ".sample"
		if _, err := os.Stat(sampleEnvFile); err == nil {
			logger.Infof("No %s file found, but %s exists. Consider copying %s to %s and updating it.",
				envFile, sampleEnvFile, sampleEnvFile, envFile)
		}
	}

	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			logger.Warningf("Error loading %s file: %v", envFile, err)
		} else {
			logger.Infof("Loaded environment variables from %s", envFile)
		}
	} else {
		logger.Debugf("No %s file found, using existing environment variables", envFile)
	}

	requiredVars := []string{"ODH_DB_HOST", "ODH_DB_USER", "ODH_DB_DATABASE"}
	var missingVars []string
	for _, v := range requiredVars {
		if os.Getenv(v) == "" {
			missingVars = append(missingVars, v)
		}
	}
	if len(missingVars) > 0 {
		logger.Debugf("Missing database environment variables: %s", strings.Join(missingVars, ", "))
		return false
	}

	// Log all ODH_* environment variables (for debugging)
	if logger.Level == logrus.DebugLevel {
		for _, env := range os.Environ() {
			if strings.HasPrefix(env, "ODH_") {
				parts := strings.SplitN(env, "=", 2)
				if len(parts) == 2 {
					if parts[0] == "ODH_DB_PASSWORD" {
						logger.Debugf("%s=********", parts[0])
					} else {
						logger.Debugf("%s=%s", parts[0], parts[1])
					}
				}
			}
		}
	}

	return true
}

// GetEnvInt gets an integer value from environment variable
func GetEnvInt(varName string, defaultValue int) int {
	value := os.Getenv(varName)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

// ValidateConnectionParams validates database connection parameters
func ValidateConnectionParams(host, user, password, database, port string, logger *logrus.Logger) bool {
	if host == "" {
		logger.Error("Database host is required")
		return false
	}

	if user == "" {
		logger.Error("Database user is required")
		return false
	}

	if password == "" { // Empty password is allowed
		logger.Warning("Database password is empty")
	}

	if database == "" {
		logger.Error("Database name is required")
		return false
	}

	if _, err := strconv.Atoi(port); err != nil {
		logger.Errorf("Invalid port number: %s", port)
		return false
	}

	return true
}

// PrintDiagnostics writes a report on how the selected tables fit together
func PrintDiagnostics(w io.Writer, report selection.Report) {
	fmt.Fprintln(w, "\n"+strings.Repeat("=", 50))
	fmt.Fprintln(w, "SELECTION DIAGNOSTICS")
	fmt.Fprintln(w, strings.Repeat("=", 50))

	if report.Master == "" {
		fmt.Fprintln(w, "Master table: none")
	} else {
		fmt.Fprintf(w, "Master table: %s\n", report.Master)
	}
	if len(report.Unions) > 0 {
		fmt.Fprintf(w, "Union tables: %s\n", strings.Join(report.Unions, ", "))
	}

	printList(w, "Ignored tables without relationship", report.ExtraRoots)
	printList(w, "Joins to tables that are not selected", report.Dangling)
	printList(w, "Tables not reachable from the master", report.Unreachable)
	if report.Cyclic {
		fmt.Fprintln(w, "Joins form a cycle")
	}
	if report.OK() {
		fmt.Fprintln(w, "✅ Every selected table takes part in the query")
	}

	fmt.Fprintln(w, strings.Repeat("=", 50))
}

func printList(w io.Writer, title string, tables []string) {
	if len(tables) == 0 {
		return
	}
	fmt.Fprintf(w, "⚠️  %s:\n", title)
	for _, table := range tables {
		fmt.Fprintf(w, "  - %s\n", table)
	}
}

// PrintTables writes a table listing, marking private tables
func PrintTables(w io.Writer, tables []models.Table) {
	if len(tables) == 0 {
		fmt.Fprintln(w, "No tables found")
		return
	}
	for i, t := range tables {
		marker := ""
		if t.IsPrivate {
			marker = " (private)"
		}
		fmt.Fprintf(w, "%3d. %s%s\n", i+1, t.UniqueName, marker)
	}
}
