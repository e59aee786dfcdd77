package utils

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/vitebski/project-snapshot/pkg/models"
)

// EnvPrefixes are the variable prefixes read as connection fallbacks
var EnvPrefixes = []string{"MYSQL_", "POSTGRES_", "SQLITE_"}

// SetupLogging configures the logging system. Logs go to stderr so stdout
// carries only the report.
func SetupLogging(logLevel string) *logrus.Logger {
	// Create a new logger
	logger := logrus.New()

	// Get log level from environment variable or parameter
	levelStr := logLevel
	if levelStr == "" {
		levelStr = os.Getenv("SNAPSHOT_LOG_LEVEL")
		if levelStr == "" {
			levelStr = "info"
		}
	}

	// Parse log level
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}

	// Configure logger
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	logger.SetOutput(os.Stderr)

	logger.Debugf("Logging configured with level: %s", level)
	return logger
}

// LoadEnvironmentVariables loads environment variables from .env file.
// Variables already set in the process environment win.
func LoadEnvironmentVariables(envFile string, logger *logrus.Logger) bool {
	// Check if a sample .env file exists but not the actual .env file
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		sampleEnvFile := envFile + ".sample"
		if _, err := os.Stat(sampleEnvFile); err == nil {
			logger.Infof("No %s file found, but %s exists. Consider copying %s to %s and updating it.",
				envFile, sampleEnvFile, sampleEnvFile, envFile)
		}
		logger.Debugf("No %s file found, using existing environment variables", envFile)
		return false
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warningf("Error loading %s file: %v", envFile, err)
		return false
	}
	logger.Infof("Loaded environment variables from %s", envFile)

	// Log the connection variables (for debugging)
	if logger.IsLevelEnabled(logrus.DebugLevel) {
		for _, env := range os.Environ() {
			parts := strings.SplitN(env, "=", 2)
			if len(parts) != 2 || !hasAnyPrefix(parts[0], EnvPrefixes) {
				continue
			}
			// Mask password
			if strings.HasSuffix(parts[0], "_PASSWORD") {
				logger.Debugf("%s=********", parts[0])
			} else {
				logger.Debugf("%s=%s", parts[0], parts[1])
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

// NetworkParamsFromEnv reads <prefix>HOST, USER, PASSWORD, DATABASE and PORT
func NetworkParamsFromEnv(prefix string) models.NetworkParams {
	return models.NetworkParams{
		Host:     os.Getenv(prefix + "HOST"),
		User:     os.Getenv(prefix + "USER"),
		Password: os.Getenv(prefix + "PASSWORD"),
		Database: os.Getenv(prefix + "DATABASE"),
		Port:     os.Getenv(prefix + "PORT"),
	}
}

// FillNetworkParams copies every fallback field into the empty fields of params
func FillNetworkParams(params *models.NetworkParams, fallback models.NetworkParams) {
	fill := func(dst *string, value string) {
		if *dst == "" {
			*dst = value
		}
	}
	fill(&params.Host, fallback.Host)
	fill(&params.User, fallback.User)
	fill(&params.Password, fallback.Password)
	fill(&params.Database, fallback.Database)
	fill(&params.Port, fallback.Port)
}

// ValidateConnectionParams validates networked database connection
// parameters. The password may only be empty when requirePassword is false.
func ValidateConnectionParams(params models.NetworkParams, requirePassword bool, logger *logrus.Logger) bool {
	if params.Host == "" {
		logger.Error("Database host is required")
		return false
	}

	if params.User == "" {
		logger.Error("Database user is required")
		return false
	}

	if params.Password == "" {
		if requirePassword {
			logger.Error("Database password is required")
			return false
		}
		logger.Warning("Database password is empty")
	}

	if params.Database == "" {
		logger.Error("Database name is required")
		return false
	}

	if params.Port != "" {
		if _, err := strconv.Atoi(params.Port); err != nil {
			logger.Errorf("Invalid port number: %s", params.Port)
			return false
		}
	}

	return true
}

// PrintSummary prints a summary of the generated report
func PrintSummary(w io.Writer, report *models.Report, destination string) {
	fmt.Fprintln(w, "\n"+strings.Repeat("=", 50))
	fmt.Fprintln(w, "PROJECT SNAPSHOT SUMMARY")
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintf(w, "Files parsed: %d\n", report.Files)
	fmt.Fprintf(w, "Unreadable files: %d\n", report.UnreadableFiles)

	switch {
	case report.Database == models.NoBackend:
		fmt.Fprintln(w, "Database: none selected")
	case report.DatabaseErr != nil:
		fmt.Fprintf(w, "Database: %s (error: %v)\n", report.Database, report.DatabaseErr)
	default:
		fmt.Fprintf(w, "Database: %s, %d table(s)\n", report.Database, report.Tables)
	}

	fmt.Fprintf(w, "Report size: %d bytes\n", len(report.Text))
	if destination != "" {
		fmt.Fprintf(w, "Written to: %s\n", destination)
	}
	fmt.Fprintln(w, strings.Repeat("=", 50))
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}
