// Package config loads server, database, auth, DMO, realtime, search and job
// settings from an optional config.yaml and DMO_* environment variables.
package config
