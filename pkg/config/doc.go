// Package config loads typed configuration structs from environment
// variables, with optional .env file support for local development.
//
// Each component of the application declares its own Config struct with
// `env` tags and loads it at startup:
//
//	type Config struct {
//		SigningKey string `env:"JWT_SECRET,required"`
//	}
//
//	var cfg Config
//	config.MustLoad(&cfg)
//
// Required variables that are missing abort the load, which callers are
// expected to treat as fatal before serving any traffic.
package config
