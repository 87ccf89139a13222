// Package config loads hostproc configuration.
//
// Configuration comes from a YAML file, an optional .env file and
// HOSTPROC_-prefixed environment variables, in increasing precedence.
// Environment keys map to config paths by splitting on underscores, so
// HOSTPROC_PROCESS_TIMEOUT_MS sets process.timeout_ms and
// HOSTPROC_LOGGING_LEVEL sets logging.level.
//
//	cfg, err := config.Load(config.WithConfigFile("hostproc.yml"))
//
// Load applies defaults and validates the result, so a returned Config is
// ready to use.
package config
