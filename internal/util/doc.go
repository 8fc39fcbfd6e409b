// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the cli and ui packages:
// crash-safe file writes and terminal display-width string handling.
//
//	err := util.AtomicWriteFile(path, data, 0600)
//	label := util.TruncateWidth(modelName, 40)
package util
