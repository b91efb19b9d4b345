// Package config loads runtime configuration for the travel journal CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see ApplyDefaults).
//  2. Optional config file (JSON, YAML or TOML) selected with --config.
//  3. Environment variables prefixed TRAVELBUDDY_, with dots replaced by
//     underscores: TRAVELBUDDY_API_BASE_URL sets api.base_url.
//  4. Command-line flags bound to keys by the CLI.
//
// # Keys
//
//	database.path                 SQLite file ("travelbuddy.db")
//	media.dir                     staging root for captured images ("media")
//	api.base_url                  backend REST root
//	api.timeout                   per-request timeout ("15s")
//	api.token                     bearer token adopted at startup
//	user.email                    account used by one-shot commands
//	storage.bucket                object-store bucket
//	storage.region                object-store region
//	storage.endpoint              S3-compatible endpoint; empty means AWS
//	storage.access_key            static credentials; empty means the gateway uploads
//	storage.secret_key
//	storage.public_base_url       URL prefix of uploaded objects
//	sync.online_check_interval    connectivity probe period ("5s")
//	log.level                     debug, info, warn or error
//	log.file                      rotate logs into this file instead of stderr
package config
