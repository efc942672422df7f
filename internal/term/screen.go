package term

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	xterm "golang.org/x/term"
)

// Size is a terminal's dimensions in character cells.
type Size struct {
	Width  int
	Height int
}

// Screen is the cell-addressable terminal I/O primitive the screen-library
// renderer backends (4.4, 4.5) build their own diff algorithms on top of:
// raw-mode toggling, resize notification, cursor control, and raw writes.
// Unlike a full owned-back-buffer screen library, the frame mirror stays
// with the renderer (per the data model's "owned exclusively by the
// renderer task"); Screen only owns the terminal device itself.
type Screen struct {
	w  io.Writer
	fd int

	mu     sync.Mutex
	width  int
	height int

	origState *xterm.State
	inRawMode bool

	resizeChan chan Size
	sigChan    chan os.Signal

	keys chan byte
}

// NewScreen opens a screen over os.Stdout/os.Stdin.
func NewScreen() *Screen {
	fd := int(os.Stdout.Fd())
	w, h, err := getSize(fd)
	if err != nil {
		w, h = 80, 24
	}
	return &Screen{
		w:          os.Stdout,
		fd:         fd,
		width:      w,
		height:     h,
		resizeChan: make(chan Size, 1),
		sigChan:    make(chan os.Signal, 1),
		keys:       make(chan byte, 16),
	}
}

// NewScreenSize builds a Screen over an arbitrary writer with a fixed size,
// bypassing terminal device detection. Useful for driving the screen-library
// renderers against an in-memory buffer, e.g. in tests.
func NewScreenSize(w io.Writer, width, height int) *Screen {
	return &Screen{
		w:          w,
		fd:         -1,
		width:      width,
		height:     height,
		resizeChan: make(chan Size, 1),
		sigChan:    make(chan os.Signal, 1),
		keys:       make(chan byte, 16),
	}
}

func getSize(fd int) (int, int, error) {
	return xterm.GetSize(fd)
}

// Size returns the last known terminal dimensions.
func (s *Screen) Size() Size {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Size{Width: s.width, Height: s.height}
}

// ResizeChan delivers new sizes when SIGWINCH fires.
func (s *Screen) ResizeChan() <-chan Size {
	return s.resizeChan
}

// EnterRawMode puts the terminal into raw, non-canonical mode, hides the
// cursor, and starts the background resize/key readers.
func (s *Screen) EnterRawMode() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inRawMode {
		return nil
	}

	state, err := xterm.MakeRaw(s.fd)
	if err != nil {
		return fmt.Errorf("entering raw mode: %w", err)
	}
	s.origState = state
	s.inRawMode = true

	signal.Notify(s.sigChan, syscall.SIGWINCH)
	go s.handleSignals()
	go s.readKeys()

	io.WriteString(s.w, "\x1b[?25l")
	return nil
}

// ExitRawMode restores the terminal's original mode and shows the cursor.
func (s *Screen) ExitRawMode() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.inRawMode {
		return nil
	}

	io.WriteString(s.w, "\x1b[?25h")
	signal.Stop(s.sigChan)

	if s.origState != nil {
		if err := xterm.Restore(s.fd, s.origState); err != nil {
			return fmt.Errorf("restoring terminal state: %w", err)
		}
	}
	s.inRawMode = false
	return nil
}

func (s *Screen) handleSignals() {
	for range s.sigChan {
		w, h, err := getSize(s.fd)
		if err != nil {
			continue
		}
		s.mu.Lock()
		changed := w != s.width || h != s.height
		s.width, s.height = w, h
		s.mu.Unlock()
		if changed {
			select {
			case s.resizeChan <- Size{Width: w, Height: h}:
			default:
			}
		}
	}
}

// readKeys feeds raw stdin bytes into a buffered channel so ReadKey can
// poll non-blockingly. xterm.MakeRaw's VMIN=1/VTIME=0 means each Read
// blocks on its own goroutine until a byte arrives, rather than busy-polling.
func (s *Screen) readKeys() {
	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return
		}
		if n > 0 {
			select {
			case s.keys <- buf[0]:
			default:
			}
		}
	}
}

// ReadKey performs a non-blocking keyboard read, returning (0, false) if
// nothing is pending.
func (s *Screen) ReadKey() (byte, bool) {
	select {
	case b := <-s.keys:
		return b, true
	default:
		return 0, false
	}
}

// MoveCursor positions the cursor at 0-indexed (x, y).
func (s *Screen) MoveCursor(x, y int) {
	fmt.Fprintf(s.w, "\x1b[%d;%dH", y+1, x+1)
}

// Write emits raw bytes to the terminal.
func (s *Screen) Write(p []byte) (int, error) {
	return s.w.Write(p)
}

// WriteString emits a raw string to the terminal.
func (s *Screen) WriteString(str string) {
	io.WriteString(s.w, str)
}

// ClearScreen clears the terminal and homes the cursor.
func (s *Screen) ClearScreen() {
	io.WriteString(s.w, "\x1b[2J\x1b[H")
}
