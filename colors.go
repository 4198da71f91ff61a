package udpchat

// ANSI fragments for the client's inbound rendering.
const (
	// Reset resets the color
	Reset = "\033[0m"

	// Bold makes the following text bold
	Bold = "\033[1m"

	Cyan    = "36"
	Green   = "32"
	Yellow  = "33"
	Blue    = "34"
	Magenta = "35"
)

// ColorString returns a message in the given color
func ColorString(color string, msg string) string {
	return Bold + "\033[" + color + "m" + msg + Reset
}
