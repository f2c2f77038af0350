// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package controller coordinates the conversation lifecycle for eventplan.
//
// The Controller owns the conversation state and drives the submission
// pipeline: it appends the user's prompt, streams the planner's reply
// chunk by chunk into a placeholder message, extracts the event title
// from the partial content as it arrives, and persists the result. When
// a stream fails mid-flight the partial reply is rolled back and
// replaced with an error message the user can resend from.
//
// All exported methods are safe for concurrent use. Submission runs in
// the calling goroutine; callers that need a responsive UI run Submit
// from their own goroutine and observe progress through the update
// callback and Snapshot.
package controller
