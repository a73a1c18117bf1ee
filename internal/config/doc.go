// Package config loads, validates, and normalizes tween configuration.
//
// Configuration is a TOML document resolved from an explicit --config path,
// ~/.config/tween/config.toml, or a project-local tween.toml, in that order.
// Defaults apply for every omitted field, paths are tilde-expanded and made
// absolute, and validation fails with actionable messages before any
// component sees the config. Components receive the Config value explicitly;
// nothing in the pipeline reads configuration ambiently.
package config
