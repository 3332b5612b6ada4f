package ui

import (
	"github.com/charmbracelet/bubbles/list"
)

var (
	_ list.Item = targetItem{}
)

// targetItem wraps a table name to implement [list.Item].
type targetItem struct {
	name   string
	active bool // Target of the current or last job
}

func (i targetItem) FilterValue() string { return i.name }
func (i targetItem) Title() string       { return i.name }
func (i targetItem) Description() string {
	if i.active {
		return "last job"
	}
	return "press enter to start"
}

func targetItems(targets []string, active string) []list.Item {
	items := make([]list.Item, len(targets))
	for i, name := range targets {
		items[i] = targetItem{name: name, active: name == active}
	}
	return items
}
