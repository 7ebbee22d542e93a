package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/unklstewy/orbit-globe/pkg/camera"
	"github.com/unklstewy/orbit-globe/pkg/catalog"
)

func testFilters() []catalog.Filter {
	return []catalog.Filter{
		{Set: "gps-ops", Label: catalog.LabelFor("gps-ops"), Count: 31},
		{Set: "stations", Label: catalog.LabelFor("stations"), Count: 12},
	}
}

func TestHandleKeySelection(t *testing.T) {
	ctrl := camera.NewController(camera.DefaultState(), camera.Limits{})
	filters := testFilters()

	assert.Equal(t, ActionNone, HandleKey(ctrl, filters, '2'))
	sel := ctrl.Snapshot().Selection
	assert.Equal(t, camera.ShowSubset, sel.Mode())
	assert.Equal(t, []string{"stations"}, sel.Sets())

	HandleKey(ctrl, filters, '9')
	assert.Equal(t, []string{"stations"}, ctrl.Snapshot().Selection.Sets())

	HandleKey(ctrl, filters, 'n')
	assert.Equal(t, camera.ShowNone, ctrl.Snapshot().Selection.Mode())
	HandleKey(ctrl, filters, 'a')
	assert.Equal(t, camera.ShowAll, ctrl.Snapshot().Selection.Mode())
}

func TestHandleKeyCamera(t *testing.T) {
	ctrl := camera.NewController(camera.DefaultState(), camera.Limits{})

	HandleKey(ctrl, nil, '+')
	closer := ctrl.Snapshot().Distance
	assert.Less(t, closer, float64(camera.DefaultDistance))

	HandleKey(ctrl, nil, '-')
	HandleKey(ctrl, nil, '-')
	assert.Greater(t, ctrl.Snapshot().Distance, closer)

	HandleKey(ctrl, nil, 'r')
	assert.Equal(t, camera.DefaultState().Distance, ctrl.Snapshot().Distance)

	assert.Equal(t, ActionQuit, HandleKey(ctrl, nil, 'q'))
	assert.Equal(t, ActionSave, HandleKey(ctrl, nil, 'w'))
}

func TestTitle(t *testing.T) {
	filters := testFilters()
	state := camera.DefaultState()

	assert.Equal(t, "Orbit Globe | 15000 km | all | 60 fps", Title(state, filters, 60))

	state.Selection = camera.Subset("gps-ops", "stations")
	assert.Contains(t, Title(state, filters, 30), "GPS, Space Stations")

	state.Selection = camera.None()
	assert.Contains(t, Title(state, filters, 30), "| none |")
}
