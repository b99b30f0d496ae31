package terminal

import (
	"strings"
	"unicode/utf8"

	"env-generator/internal/commands"
	"env-generator/internal/logger"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	BarHeight = 40
	// When windowed, move bar up by this many pixels so it stays visible (avoids being cut off by taskbar/window bounds).
	WindowedBarOffset = 56
	prompt            = "> "
	fontSize          = 20
	padding           = 8
	// Number of log lines drawn above the input bar when terminal is open.
	maxLinesOnScreen = 14
	lineHeight       = fontSize + 4
	hintFontSize     = 16
)

var (
	// Reused every frame when drawing the terminal bar to avoid per-frame color allocations.
	termBarColor   = rl.NewColor(40, 40, 40, 255)
	termLineColor  = rl.NewColor(80, 80, 80, 255)
	termLogBgColor = rl.NewColor(24, 24, 24, 240)
	termErrorColor = rl.NewColor(230, 90, 90, 255)
	termHintColor  = rl.NewColor(150, 150, 150, 255)
)

// Terminal is the command bar at the bottom of the screen. It is shown/hidden with ESC.
// When open, it handles typing and drawing; when closed, nothing is drawn and the camera
// moves freely. Submitted lines run through the session's commands; the "cmd " prefix
// is optional. Up/Down walk back through earlier lines, Tab completes command and flag
// names, and the usage of the command being typed is shown at the right of the bar.
type Terminal struct {
	log      *logger.Logger
	session  *commands.Session
	inputBuf string
	open     bool
	past     []string
	pastIdx  int
}

// New returns a new Terminal that runs lines through session. It starts closed (hidden); press ESC to open.
func New(session *commands.Session) *Terminal {
	return &Terminal{log: session.Log, session: session}
}

// IsOpen returns true when the terminal is visible and capturing input (camera cannot move).
func (t *Terminal) IsOpen() bool {
	return t.open
}

// Update handles ESC (toggle open/closed), and when open: typing, backspace, enter. Call once per frame.
func (t *Terminal) Update() {
	if rl.IsKeyPressed(rl.KeyEscape) {
		t.open = !t.open
		if t.open {
			rl.EnableCursor()
		} else {
			rl.DisableCursor()
		}
	}
	if !t.open {
		return
	}
	// Paste: Ctrl+V (Windows/Linux) or Cmd+V (macOS)
	if rl.IsKeyPressed(rl.KeyV) && (rl.IsKeyDown(rl.KeyLeftControl) || rl.IsKeyDown(rl.KeyRightControl) || rl.IsKeyDown(rl.KeyLeftSuper) || rl.IsKeyDown(rl.KeyRightSuper)) {
		if pasted := rl.GetClipboardText(); pasted != "" {
			t.inputBuf += pasted
		}
	} else {
		for {
			c := rl.GetCharPressed()
			if c == 0 {
				break
			}
			t.inputBuf += string(rune(c))
		}
	}
	if rl.IsKeyPressed(rl.KeyBackspace) && len(t.inputBuf) > 0 {
		_, size := utf8.DecodeLastRuneInString(t.inputBuf)
		t.inputBuf = t.inputBuf[:len(t.inputBuf)-size]
	}
	if rl.IsKeyPressed(rl.KeyTab) {
		t.inputBuf = t.session.Registry.Complete(t.inputBuf)
	}
	if rl.IsKeyPressed(rl.KeyUp) && t.pastIdx > 0 {
		t.pastIdx--
		t.inputBuf = t.past[t.pastIdx]
	}
	if rl.IsKeyPressed(rl.KeyDown) && t.pastIdx < len(t.past) {
		t.pastIdx++
		t.inputBuf = ""
		if t.pastIdx < len(t.past) {
			t.inputBuf = t.past[t.pastIdx]
		}
	}
	if (rl.IsKeyPressed(rl.KeyEnter) || rl.IsKeyPressed(rl.KeyKpEnter)) && t.inputBuf != "" {
		line := t.inputBuf
		t.inputBuf = ""
		t.past = append(t.past, line)
		t.pastIdx = len(t.past)
		if strings.HasPrefix(line, "cmd ") {
			line = line[len("cmd "):]
		}
		// Session.Run logs the line and any error.
		_ = t.session.Run(line)
	}
}

// Draw draws the terminal bar at the bottom when open, and the recent log lines above it.
// Uses GetScreenWidth/GetScreenHeight so the bar matches the 2D overlay coordinate system (correct in fullscreen).
func (t *Terminal) Draw() {
	if !t.open {
		return
	}
	screenW := int(rl.GetScreenWidth())
	screenH := int(rl.GetScreenHeight())
	barY := screenH - BarHeight
	if !rl.IsWindowFullscreen() {
		barY -= WindowedBarOffset
	}

	// Log area above the bar: last maxLinesOnScreen lines
	logHeight := maxLinesOnScreen * lineHeight
	logY := barY - logHeight
	if logY < 0 {
		logHeight = barY
		logY = 0
	}
	if logHeight > 0 {
		rl.DrawRectangle(0, int32(logY), int32(screenW), int32(logHeight), termLogBgColor)
	}
	for i, line := range t.log.Tail(maxLinesOnScreen) {
		y := logY + i*lineHeight + padding
		if len(line) > 200 {
			line = line[:197] + "..."
		}
		c := rl.LightGray
		if strings.Contains(line, "] error: ") {
			c = termErrorColor
		}
		rl.DrawText(line, int32(padding), int32(y), int32(fontSize), c)
	}

	// Input bar
	rl.DrawRectangle(0, int32(barY), int32(screenW), int32(BarHeight), termBarColor)
	rl.DrawRectangle(0, int32(barY), int32(screenW), 1, termLineColor)

	text := prompt + t.inputBuf + "|"
	rl.DrawText(text, int32(padding), int32(barY+padding), int32(fontSize), rl.White)
	if hint := t.session.Registry.Hint(t.inputBuf); hint != "" {
		w := rl.MeasureText(hint, hintFontSize)
		rl.DrawText(hint, int32(screenW)-w-padding, int32(barY+padding+2), hintFontSize, termHintColor)
	}
}
