// Package config provides centralized configuration management for divcli.
// It loads configuration from multiple sources, validates it, and resolves
// the file system locations the commands read from and write to.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority), optionally seeded from .env
//	2. A YAML file named by DIVCLI_CONFIG or found as divcli.yaml
//	3. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern DIVCLI_<SECTION>_<FIELD>:
//
//	DIVCLI_LOGGING_LEVEL=debug
//	DIVCLI_SCREENING_MIN_YIELD=4.5
//	DIVCLI_MARKET_DATA_API_KEY=...
//	DIVCLI_SERVER_PORT=8080
//
// Baseline instruments are a list and can only be set in the YAML file.
//
// # Usage
//
//	cfg, err := config.Load()
//	if err != nil {
//	    return err
//	}
//	paths, err := cfg.ResolvedPaths()
package config
