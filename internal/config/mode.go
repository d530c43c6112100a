package config

import "os"

// RunMode selects which per-environment config files overlay the defaults
type RunMode string

const (
	RunModeDevelopment RunMode = "development"
	RunModeTesting     RunMode = "testing"
	RunModeProduction  RunMode = "production"
)

// EnvRunMode is the environment variable that selects the run mode
const EnvRunMode = "RUN_MODE"

// ParseRunMode converts a string to RunMode, defaulting to RunModeDevelopment
func ParseRunMode(s string) RunMode {
	switch s {
	case "testing":
		return RunModeTesting
	case "production":
		return RunModeProduction
	default:
		return RunModeDevelopment
	}
}

// RunModeFromEnv reads the run mode from $RUN_MODE
func RunModeFromEnv() RunMode {
	return ParseRunMode(os.Getenv(EnvRunMode))
}

// LogLevel gates how chatty the process is
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// Level returns numeric level for comparison (higher = quieter)
func (l LogLevel) Level() int {
	switch l {
	case LogDebug:
		return 0
	case LogWarn:
		return 2
	case LogError:
		return 3
	default:
		return 1
	}
}

// Enabled returns true if messages at level msg should be logged
func (l LogLevel) Enabled(msg LogLevel) bool {
	return msg.Level() >= l.Level()
}
