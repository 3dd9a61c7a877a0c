// Package ui implements the terminal front ends for long-running commands.
//
// Two components are provided:
//  1. [Picker] : a bubbletea model for choosing which categories to keep
//  2. [ProgressBar] : a line-oriented download progress renderer
//
// The [Picker] implements bubbletea/Elm's standard Init/Update/View pattern. Categories are shown
// in a [list.Model] with filtering disabled so the cursor index always addresses the underlying item.
//
// Keyboard navigation uses vim-style bindings (j/k, space, a, enter, q) with contextual help displayed via charmbracelet/bubbles/help.
//
// [ProgressBar] consumes [tasks.ProgressUpdate] values and redraws a single line with a carriage return,
// throttled with [rate.Sometimes] so large downloads do not flood the terminal.
package ui
