// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the diagnostics
// binary.
//
// The central type is [Command], a named subcommand with optional
// nested [Command.Subcommands], a [pflag.FlagSet] factory, and a Run
// function. The tree is assembled in cmd/diagnostics/commands and
// dispatched via [Command.Execute], which handles flag parsing,
// subcommand routing, and help output with examples.
//
// Unknown subcommands and flags get a "did you mean" suggestion when a
// known name is within Levenshtein distance 3.
//
// Parameter structs declare flags with struct tags and are bound with
// [FlagsFromParams]; embedding [JSONOutput] adds --json. Errors are
// categorized with [ToolError] (validation, not_found, internal,
// transient); [ExitError] ends the process with a code and no message.
package cli
