// Package playlist scans IPTV M3U playlists, extracts group-title categories and filters entries by category.
//
// # Line pairing
//
// An entry is a metadata line beginning with [MetadataMarker] followed immediately by its data line (the stream locator).
// [PairScanner] walks the input with a two-state machine:
//
//   - idle: a metadata line accepted by the match function is held and the scanner moves to awaiting-data.
//     Rejected metadata lines and all other lines are dropped.
//   - awaiting-data: the next line is the data line unless it is itself a metadata line.
//     A metadata line here drops the held line and is evaluated again from idle.
//
// A held metadata line at end of input is dropped silently, so a truncated entry never produces output.
// Lines are returned verbatim, terminator included.
//
// # group-title
//
// [GroupTitle] is a dedicated parser for the one attribute this package cares about.
// Values are delimited by double quotes and cannot contain escaped quotes; an unterminated or empty value counts as absent.
//
// # Operations
//
//   - [Extract] : collect the distinct categories containing any keyword (case-insensitive substring)
//   - [Filter] : write [Header] followed by every entry whose category is in an allowed set (exact match)
package playlist
