// Package tasks orchestrates playlist runs with real-time progress reporting.
//
// # Core Operations
//
// [Engine] exposes the operations behind each command:
//
//  1. [Engine.SearchCategories] : search-categories
//     - Acquires the playlist (local file or download)
//     - Collects group-title values matching any keyword
//     - Overwrites the settings file with the sorted result
//
//  2. [Engine.Parse] : parse
//     - Loads the settings file before touching the network
//     - Writes the header and every entry in a saved category to the output file
//
//  3. [Engine.Categories] and [Engine.SaveSelection] : pick
//     - Lists categories (optionally narrowed by keywords) with the current settings preselected
//     - Saves whatever the user chose
//
// # Progress Reporting
//
// All operations accept an optional channel of [ProgressUpdate] values. Sends never block:
// when the channel is full the update is dropped.
//
// # Run History
//
// The optional [Recorder] (repositories.RunRepository) stores one [models.Run] per operation.
// Recording failures are logged and never fail the operation.
package tasks
