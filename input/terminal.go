package input

import (
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"
)

// TerminalOptions configures a TerminalSource
type TerminalOptions struct {
	// Terminals report no key releases; a held key is released once no repeat
	// arrives within this window
	HoldWindow time.Duration

	// Pointer motion in cells is multiplied by this to get look units
	PointerScale float32

	// Look units per arrow key press
	TurnStep float32

	// Enable mouse motion reporting
	GrabMouse bool

	// Rune bindings; nil uses DefaultBindings
	Bindings map[rune]Key
}

// DefaultTerminalOptions are tuned for common terminal key repeat rates
func DefaultTerminalOptions() TerminalOptions {
	return TerminalOptions{
		HoldWindow:   450 * time.Millisecond,
		PointerScale: 8,
		TurnStep:     60,
		GrabMouse:    true,
	}
}

// DefaultBindings maps WASD and escape-like keys to actions
func DefaultBindings() map[rune]Key {
	return map[rune]Key{
		'w': KeyForward, 'W': KeyForward,
		's': KeyBack, 'S': KeyBack,
		'a': KeyStrafeLeft, 'A': KeyStrafeLeft,
		'd': KeyStrafeRight, 'D': KeyStrafeRight,
		'q': KeyEscape,
	}
}

// TerminalSource reads tcell events and converts them to game events
type TerminalSource struct {
	screen tcell.Screen
	opts   TerminalOptions
	queue  *Queue
	now    func() time.Time

	mu        sync.Mutex
	held      map[Key]time.Time // Last press or repeat
	mouse     [2]int
	haveMouse bool
}

// NewTerminalSource wraps screen; call Run to start reading
func NewTerminalSource(screen tcell.Screen, opts TerminalOptions) *TerminalSource {
	if opts.Bindings == nil {
		opts.Bindings = DefaultBindings()
	}
	if opts.GrabMouse {
		screen.EnableMouse(tcell.MouseMotionEvents)
	} else {
		screen.DisableMouse()
	}
	return &TerminalSource{
		screen: screen,
		opts:   opts,
		queue:  NewQueue(),
		now:    time.Now,
		held:   make(map[Key]time.Time),
	}
}

// Run polls the screen until it is finalized
func (s *TerminalSource) Run() {
	for {
		ev := s.screen.PollEvent()
		if ev == nil {
			zap.L().Debug("terminal event loop finished")
			return
		}
		s.Handle(ev)
	}
}

// Handle converts one tcell event
func (s *TerminalSource) Handle(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		s.handleKey(ev)
	case *tcell.EventMouse:
		s.handleMouse(ev)
	case *tcell.EventResize:
		w, h := ev.Size()
		s.queue.Push(Event{Kind: KindResize, Width: w, Height: h})
	}
}

func (s *TerminalSource) handleKey(ev *tcell.EventKey) {
	switch ev.Key() {
	case tcell.KeyCtrlC:
		s.queue.Push(Close())
		return
	case tcell.KeyEscape:
		s.press(KeyEscape)
		return
	case tcell.KeyUp:
		s.press(KeyForward)
		return
	case tcell.KeyDown:
		s.press(KeyBack)
		return
	case tcell.KeyLeft:
		s.queue.Push(Motion(-s.opts.TurnStep, 0))
		return
	case tcell.KeyRight:
		s.queue.Push(Motion(s.opts.TurnStep, 0))
		return
	case tcell.KeyPgUp:
		s.queue.Push(Motion(0, -s.opts.TurnStep))
		return
	case tcell.KeyPgDn:
		s.queue.Push(Motion(0, s.opts.TurnStep))
		return
	case tcell.KeyRune:
		if k, ok := s.opts.Bindings[ev.Rune()]; ok {
			s.press(k)
		}
	}
}

func (s *TerminalSource) handleMouse(ev *tcell.EventMouse) {
	x, y := ev.Position()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.haveMouse {
		dx := float32(x-s.mouse[0]) * s.opts.PointerScale
		dy := float32(y-s.mouse[1]) * s.opts.PointerScale
		if dx != 0 || dy != 0 {
			s.queue.Push(Motion(dx, dy))
		}
	}
	s.mouse = [2]int{x, y}
	s.haveMouse = true
}

// press emits a press for a key not already held and refreshes its hold timer
func (s *TerminalSource) press(k Key) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, held := s.held[k]; !held {
		s.queue.Push(Press(k))
	}
	s.held[k] = s.now()
}

// Drain releases keys whose hold window expired, then hands over queued events
func (s *TerminalSource) Drain(dst []Event) []Event {
	s.mu.Lock()
	now := s.now()
	for k, last := range s.held {
		if now.Sub(last) > s.opts.HoldWindow {
			delete(s.held, k)
			s.queue.Push(Release(k))
		}
	}
	s.mu.Unlock()

	return s.queue.Drain(dst)
}
