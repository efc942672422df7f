package term

import "os"

// Size queries the current terminal dimensions directly from stdout,
// independent of any Screen instance — used by renderer backends that
// don't hold the terminal in raw mode.
func Size() (width, height int, err error) {
	return getSize(int(os.Stdout.Fd()))
}
