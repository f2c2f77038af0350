// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea chat view for eventplan.
//
// The view renders the conversation owned by the controller and never
// mutates it directly: keystrokes become controller calls running in
// Bubble Tea commands, and the controller's update callback is bridged
// back into the event loop as StateUpdatedMsg so the viewport refreshes
// from a fresh snapshot. The streamed plan therefore appears token by
// token while the input stays responsive.
//
// Key bindings: enter submits, ctrl+r resends the trailing error,
// ctrl+l clears after confirmation, tab cycles the planner model,
// ctrl+s exports the current plan, esc/ctrl+c quits.
package chat
