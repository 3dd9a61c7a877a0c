package ui

import (
	"github.com/charmbracelet/bubbles/list"
)

var _ list.Item = categoryItem{}

// categoryItem wraps a category name to implement [list.Item].
type categoryItem struct {
	name     string
	selected bool
}

func (i categoryItem) FilterValue() string { return i.name }
func (i categoryItem) Title() string {
	if i.selected {
		return "[x] " + i.name
	}
	return "[ ] " + i.name
}
func (i categoryItem) Description() string { return "" }
