// SPDX-License-Identifier: MPL-2.0

// Package config handles queryforge configuration using Viper.
//
// Options are layered, lowest precedence first: built-in defaults, the user
// config file (CUE, validated against the embedded #Config schema), a
// queryforge.toml sidecar next to the query document, and QUERYFORGE_*
// environment variables. Command-line flags are applied by the caller on
// top of the loaded Config.
package config
