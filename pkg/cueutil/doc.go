// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates structured input against embedded CUE schemas.
//
// Both directive comments and configuration files go through the same
// three steps:
//
//  1. Compile the embedded schema
//  2. Compile the input and unify it with a schema definition
//  3. Validate and decode into a Go value
//
// JSON is a subset of CUE, so callers that produce data in another syntax
// (directive literals, TOML) marshal it to JSON and hand the bytes over.
//
//	res, err := cueutil.ParseAndDecode[Options](schema, data, "#Config",
//	    cueutil.WithFilename("config.cue"), cueutil.WithConcrete(false))
package cueutil
