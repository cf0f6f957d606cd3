package ui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/bytescribe/fuzz/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestProgressBarClampsFraction(t *testing.T) {
	bar := NewProgressBar(10)
	assert.NotPanics(t, func() {
		bar.Render(-1)
		bar.Render(2)
	})
}

func TestDashboardAddLogTrims(t *testing.T) {
	d := NewDashboard(100, nil)
	for i := 0; i < 20; i++ {
		d.AddLog("INFO", "line")
	}
	assert.LessOrEqual(t, len(d.logs), d.maxLogs)
}

func TestDashboardUpdateSnapshotLogsCrash(t *testing.T) {
	d := NewDashboard(100, nil)
	model, _ := d.Update(snapshotMsg(types.ProgressSnapshot{CrashCount: 2}))
	got := model.(*Dashboard)
	assert.Equal(t, 2, got.snapshot.CrashCount)
	assert.NotEmpty(t, got.logs)
}

func TestDashboardQuitOnQ(t *testing.T) {
	d := NewDashboard(100, nil)
	_, cmd := d.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.NotNil(t, cmd)
	assert.Equal(t, StatusStopped, d.status)
}
