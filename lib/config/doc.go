// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads configuration for the diagnostics tools.
//
// Values come from three layers, later layers winning:
//
//  1. [Default];
//  2. one configuration file, named by the --config flag or the
//     DIAGNOSTICS_CONFIG environment variable. Files ending in .json or
//     .jsonc are read as JSON with comments and trailing commas
//     (tidwall/jsonc); anything else is YAML. The file's development or
//     production section overrides its base values when
//     [Config].Environment matches;
//  3. DIAGNOSTICS_* environment variables, one per field (see
//     [EnvironmentVariables]).
//
// There is no file discovery: without --config or DIAGNOSTICS_CONFIG the
// defaults and environment variables are all there is.
//
// ${HOME} and ${VAR:-default} patterns are expanded in the export
// directory. [Config.Validate] clamps numeric settings into their
// supported ranges and rejects unknown enum values; [Load] calls it.
package config
