// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export converts finished event plans to shareable file
// formats.
//
// Supported formats:
//   - Markdown (.md) - the plan as generated, with a title heading
//   - HTML (.html)   - standalone page with embedded CSS
//   - JSON (.json)   - structured document for tooling
//
// The format is chosen from the target file extension, so
// `eventplan ask -o plan.html` and `/save plan.json` just work.
package export
