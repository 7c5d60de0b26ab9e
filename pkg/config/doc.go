// Package config loads and validates Classgate configuration from
// environment variables, with optional .env file support for local
// development.
//
// All variables use the CLASSGATE_ prefix. See LoadConfig for defaults.
package config
