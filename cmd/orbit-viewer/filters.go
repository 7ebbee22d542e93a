package main

import (
	"fmt"

	"github.com/rivo/tview"

	"github.com/unklstewy/orbit-globe/pkg/camera"
	"github.com/unklstewy/orbit-globe/pkg/catalog"
)

// FilterPanel lists the categories; selecting one toggles its highlight.
type FilterPanel struct {
	list       *tview.List
	filters    []catalog.Filter
	controller *camera.Controller

	// onChange is called after every toggle with the new selection.
	onChange func(camera.Selection)
}

// NewFilterPanel builds the list for filters.
func NewFilterPanel(filters []catalog.Filter, controller *camera.Controller) *FilterPanel {
	fp := &FilterPanel{
		list:       tview.NewList().ShowSecondaryText(false),
		filters:    filters,
		controller: controller,
	}
	fp.list.SetBorder(true).SetTitle(" Categories ")

	for i := range filters {
		idx := i
		fp.list.AddItem("", "", 0, func() { fp.Toggle(idx) })
	}
	fp.Refresh()
	return fp
}

// View returns the tview component.
func (fp *FilterPanel) View() tview.Primitive { return fp.list }

// Toggle flips the highlight of the i-th category.
func (fp *FilterPanel) Toggle(i int) {
	if i < 0 || i >= len(fp.filters) {
		return
	}
	sel := fp.controller.Toggle(fp.filters[i].Set)
	fp.Refresh()
	if fp.onChange != nil {
		fp.onChange(sel)
	}
}

// Refresh rewrites every item's marker from the controller's selection.
func (fp *FilterPanel) Refresh() {
	sel := fp.controller.Snapshot().Selection
	for i, f := range fp.filters {
		fp.list.SetItemText(i, ItemText(f, sel), "")
	}
}

// ItemText is the list line for one category.
func ItemText(f catalog.Filter, sel camera.Selection) string {
	marker := "○"
	switch {
	case sel.Contains(f.Set):
		marker = "[green]●[-]"
	case sel.Mode() == camera.ShowAll:
		marker = "[gray]·[-]"
	}
	return fmt.Sprintf("%s %s [gray](%d)[-]", marker, tview.Escape(f.Name), f.Count)
}
