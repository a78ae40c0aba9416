// Package config loads the service configuration.
//
// Values come from three layers, later layers winning:
//
//	1. Default()
//	2. a YAML file (config.yaml or configs/config.yaml)
//	3. ODI_* environment variables
//
// Environment variables follow the struct nesting, for example:
//
//	ODI_SERVER_PORT=9090
//	ODI_DATA_DIR=/srv/odi
//	ODI_DATA_CACHE_KEY_MODE=content
//	ODI_PHASES_MIDDLE_END=35
//	ODI_LOGGING_LEVEL=debug
package config
