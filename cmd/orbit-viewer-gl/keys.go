package main

import (
	"fmt"
	"strings"

	"github.com/unklstewy/orbit-globe/pkg/camera"
	"github.com/unklstewy/orbit-globe/pkg/catalog"
)

// Zoom step per key press or scroll notch.
const ScrollStep = 0.1

// Action is what a key press asks the window loop to do besides updating the
// camera.
type Action int

const (
	ActionNone Action = iota
	ActionQuit
	ActionSave
)

// HandleKey applies a key to the controller. Digits 1-9 toggle the category
// at that position in filters.
func HandleKey(ctrl *camera.Controller, filters []catalog.Filter, key rune) Action {
	switch key {
	case 'q':
		return ActionQuit
	case 'w':
		return ActionSave
	case 'a':
		ctrl.ShowAll()
	case 'n':
		ctrl.HideAll()
	case 'r':
		ctrl.Reset()
	case '+', '=':
		ctrl.Scroll(ScrollStep)
	case '-':
		ctrl.Scroll(-ScrollStep)
	default:
		if key >= '1' && key <= '9' {
			if i := int(key - '1'); i < len(filters) {
				ctrl.Toggle(filters[i].Set)
			}
		}
	}
	return ActionNone
}

// Title summarizes the view for the window title bar.
func Title(state camera.State, filters []catalog.Filter, fps float64) string {
	var shown string
	switch state.Selection.Mode() {
	case camera.ShowAll:
		shown = "all"
	case camera.ShowNone:
		shown = "none"
	default:
		var names []string
		for _, f := range filters {
			if state.Selection.Contains(f.Set) {
				names = append(names, f.Name)
			}
		}
		shown = strings.Join(names, ", ")
	}
	return fmt.Sprintf("Orbit Globe | %.0f km | %s | %.0f fps", state.Distance, shown, fps)
}
