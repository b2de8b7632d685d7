// Package config loads the GnE configuration.
//
// Values are layered, later sources winning:
//
//	1. Default()
//	2. A YAML file: $GNE_CONFIG, or gne.yaml beside the executable or in
//	   the working directory
//	3. GNE_* environment variables, e.g. GNE_LOGGING_LEVEL=debug or
//	   GNE_PROCESSING_MAX_CONCURRENT_FILES=4
//
// The merged result is validated with struct tags. Relative paths
// (dictionary, log file, metrics textfile) resolve against the directory
// of the executable, so the tools behave the same from any working
// directory.
//
// Example gne.yaml:
//
//	logging:
//	  level: debug
//	  output: both
//	dictionary:
//	  path: /data/wgnd_2_0_name-gender-code.csv
//	processing:
//	  progress_every: 100
//	  timeout: 10m
//	telemetry:
//	  enable_tracing: true
//	  trace_exporter: stdout
//	server:
//	  port: 9090
package config
