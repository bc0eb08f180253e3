// Package config loads application configuration from built-in defaults,
// an optional YAML config file, and STOCKBOARD_-prefixed environment
// variables, in increasing order of precedence.
package config
