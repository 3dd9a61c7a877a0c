// Package models defines the persisted entities of iptvx and the interfaces used to store them.
//
// The only persistent entity is [Run]: one invocation of search-categories, parse or pick,
// with the source it read, the files it wrote and its outcome.
//
// All persistent entities implement the [Model] interface providing IDs, timestamps and validation.
// The [Repository] interface defines standard CRUD operations for database access.
package models
