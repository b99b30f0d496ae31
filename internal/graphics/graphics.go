package graphics

import rl "github.com/gen2brain/raylib-go/raylib"

// Window configures the viewer window.
type Window struct {
	Title      string
	Width      int32 // 0 = monitor width when Fullscreen, else 1280
	Height     int32 // 0 = monitor height when Fullscreen, else 720
	Fullscreen bool
	// Background returns the clear colour for each frame; nil clears to black.
	Background func() rl.Color
}

// Run starts the window and main loop. Each frame it calls update (e.g. input), then clears
// the screen and calls draw. ESC toggles the terminal; close via the window button.
func Run(w Window, update, draw func()) {
	flags := uint32(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	if w.Fullscreen {
		flags |= rl.FlagFullscreenMode
	}
	rl.SetConfigFlags(flags)
	width, height := w.Width, w.Height
	if width == 0 {
		width = 1280
	}
	if height == 0 {
		height = 720
	}
	rl.InitWindow(width, height, w.Title)
	defer rl.CloseWindow()
	if w.Fullscreen && (w.Width == 0 || w.Height == 0) {
		m := rl.GetCurrentMonitor()
		rl.SetWindowSize(rl.GetMonitorWidth(m), rl.GetMonitorHeight(m))
	}

	rl.SetExitKey(rl.KeyNull) // ESC is used to toggle terminal, not to quit
	rl.SetTargetFPS(60)

	for !rl.WindowShouldClose() {
		update()

		bg := rl.Black
		if w.Background != nil {
			bg = w.Background()
		}
		rl.BeginDrawing()
		rl.ClearBackground(bg)
		draw()
		rl.EndDrawing()
	}
}
