// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

// =============================================================================
// BUBBLE TEA MESSAGES
// =============================================================================

// StateUpdatedMsg signals that the controller mutated the conversation
// (user append, stream chunk, recovery, clear) and the view should
// refresh from a new snapshot.
type StateUpdatedMsg struct{}

// SubmitFinishedMsg reports the outcome of a Submit or Resend command.
// Err carries only validation errors; transport failures surface inside
// the conversation as error entries.
type SubmitFinishedMsg struct {
	Err error
}

// ExportFinishedMsg reports the outcome of exporting the current plan.
type ExportFinishedMsg struct {
	Path string
	Err  error
}
