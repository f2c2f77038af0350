// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// A Conversation is an ordered list of Messages plus derived state: the
// extracted event title, the pending flag (true while a request is
// outstanding), and the last error description. Messages are immutable
// once finalized; the single in-progress assistant message is the one
// mutable exception, updated in place as stream chunks arrive.
//
// The package also holds the registry of Gemini models the planner API
// accepts, including per-model input token limits.
package model
