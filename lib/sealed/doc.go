// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sealed encrypts exported reports with age so they can travel
// through untrusted channels (a ticket attachment, a chat upload) and
// be read only by the people a report is meant for.
//
// Reports are encrypted to one or more x25519 recipients (age1...
// public keys) in the binary age format; the exporter writes the
// result with a .age suffix and any standard age tool can decrypt it.
// Private keys and decrypted plaintext are held in [secret.Buffer]
// values, locked against swap where the platform allows and zeroed on
// Close.
//
//   - [GenerateKeypair] -- new recipient keypair (diagnostics keygen)
//   - [Encrypt] -- encrypt to a list of age public keys
//   - [Decrypt] -- decrypt with a private key (diagnostics show)
//   - [ParseRecipients] -- validate configured public keys
package sealed
