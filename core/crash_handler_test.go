package core

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubExit(t *testing.T) chan int {
	codes := make(chan int, 1)
	old := exit
	exit = func(code int) { codes <- code }
	t.Cleanup(func() {
		exit = old
		RegisterScreen(nil)
	})
	return codes
}

func TestHandleCrashIgnoresNil(t *testing.T) {
	codes := stubExit(t)
	HandleCrash(nil)
	assert.Empty(t, codes)
}

func TestHandleCrashFinalizesScreen(t *testing.T) {
	codes := stubExit(t)

	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	RegisterScreen(screen)

	HandleCrash("boom")

	assert.Equal(t, 1, <-codes)
	crashMu.Lock()
	defer crashMu.Unlock()
	assert.Nil(t, crashScreen, "screen must be released after a crash")
}

func TestGoRecoversPanic(t *testing.T) {
	codes := stubExit(t)

	Go(func() { panic("worker failed") })

	assert.Equal(t, 1, <-codes)
}
