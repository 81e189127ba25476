// Package config loads service configuration with viper.
//
// Values come from a YAML file (cmd/<service>/config.yml, config/config.yml
// or ./config.yml), a .env file loaded with godotenv, and the process
// environment, later sources overriding earlier ones:
//
//	var cfg bootstrap.Config
//	if err := config.LoadConfig("apiserver", &cfg); err != nil { ... }
//
// ENVIRONMENT selects the profile; "production" is the only value with
// special meaning.
package config
