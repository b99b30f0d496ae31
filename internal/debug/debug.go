package debug

import (
	"fmt"
	"runtime"

	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	fontSize   = 20
	padding    = 12
	lineHeight = fontSize + 4
	// updateInterval: only refresh text every N frames to reduce allocations.
	updateInterval = 30
)

var overlayColor = rl.NewColor(120, 230, 120, 255)

// Stats is what the overlay shows about the scene each refresh.
type Stats struct {
	Objects int
	Groups  int
	Hour    float32
}

// Overlay draws runtime and scene counters in the top-right corner. All lines are off
// by default.
type Overlay struct {
	ShowFPS      bool
	ShowMemAlloc bool
	ShowStats    bool

	frameCount uint32
	lines      []string
	memStats   runtime.MemStats
}

// New returns an overlay with every line hidden.
func New() *Overlay {
	return &Overlay{}
}

// Draw renders the enabled lines. stats is only called when the text is refreshed,
// every updateInterval frames.
func (o *Overlay) Draw(stats func() Stats) {
	if !o.ShowFPS && !o.ShowMemAlloc && !o.ShowStats {
		return
	}
	o.frameCount++
	if o.frameCount%updateInterval == 0 || o.lines == nil {
		o.refresh(stats)
	}
	screenW := int32(rl.GetScreenWidth())
	y := int32(padding)
	for _, text := range o.lines {
		w := rl.MeasureText(text, fontSize)
		rl.DrawText(text, screenW-w-padding, y, fontSize, overlayColor)
		y += lineHeight
	}
}

func (o *Overlay) refresh(stats func() Stats) {
	o.lines = o.lines[:0]
	if o.ShowFPS {
		o.lines = append(o.lines, fmt.Sprintf("FPS: %d", rl.GetFPS()))
	}
	if o.ShowMemAlloc {
		runtime.ReadMemStats(&o.memStats)
		o.lines = append(o.lines, fmt.Sprintf("Mem: %.2f MiB", float64(o.memStats.Alloc)/(1024*1024)))
	}
	if o.ShowStats && stats != nil {
		s := stats()
		o.lines = append(o.lines,
			fmt.Sprintf("Objects: %d in %d groups", s.Objects, s.Groups),
			fmt.Sprintf("Sun: %05.2f h", s.Hour))
	}
}
