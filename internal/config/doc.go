// Package config loads BeatLink settings from a TOML file, a .env file and
// the process environment, and builds the scan service from them.
//
// Environment variables take precedence over the file. Credentials that are
// missing do not stop the process from starting; scans that need them fail
// with a configuration error instead.
package config
