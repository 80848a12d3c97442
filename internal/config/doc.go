// Package config provides configuration structures and utilities for the
// factbase pipeline. It defines the main options for discovery, fetching,
// storage, exports, and the read API, plus the optional YAML override file.
package config
