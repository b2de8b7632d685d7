package config

import "time"

// Application constants
const (
	AppName   = "GnE"
	EnvPrefix = "GNE"

	// ConfigFileName is looked up beside the executable, then in the
	// working directory. GNE_CONFIG names a file explicitly.
	ConfigFileName = "gne.yaml"
	ConfigEnvVar   = "GNE_CONFIG"

	DefaultDictionaryFile = "wgnd_2_0_name-gender-code.csv"
	DefaultLogsDir        = "logs"
	DefaultLogFile        = "logs/gne.log"
)

// Processing defaults
const (
	DefaultProgressEvery      = 10
	DefaultMaxConcurrentFiles = 2
	DefaultDelimiter          = ","
)

// Server defaults
const (
	DefaultPort            = 8080
	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxBatchItems   = 1000
	DefaultRateBurst       = 20
)
