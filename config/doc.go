// Package config handles loading and parsing of configuration from YAML files
// and environment variables. It defines the balancers list that drives the
// composite balancer, the per-backend connection parameters, and logging
// settings, and validates everything before any backend is constructed.
package config
