package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventBusDeliversByType(t *testing.T) {
	bus := NewEventBus()
	var snagged []rune
	var unlocked int

	Subscribe(bus, func(ev KeySnagged) { snagged = append(snagged, ev.Letter) })
	Subscribe(bus, func(ev KeySnagged) { snagged = append(snagged, ev.Letter-32) })
	Subscribe(bus, func(DoorUnlocked) { unlocked++ })

	Publish(bus, KeySnagged{Key: 1, Letter: 'a'})
	Publish(bus, GoalReached{Goal: 2})
	Publish(bus, EntityFell{Entity: 3, Height: -2})

	assert.Equal(t, []rune{'a', 'A'}, snagged, "handlers run in subscription order")
	assert.Zero(t, unlocked)
}

func TestPublishOnNilBus(t *testing.T) {
	assert.NotPanics(t, func() { Publish[GoalReached](nil, GoalReached{}) })
}
