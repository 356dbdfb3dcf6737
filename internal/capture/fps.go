package capture

import "time"

// FPSMeter measures the preview frame rate over whole-second windows.
//
// Frames are counted until at least one full second has passed; the rate
// is then the frame count divided by the elapsed whole seconds, truncated to
// an integer, and the window restarts. Between updates Tick keeps returning
// the last rate, which is 0 until the first window closes.
type FPSMeter struct {
	now    func() time.Time
	start  time.Time
	frames int
	fps    float64
}

// NewFPSMeter starts a meter. A nil clock means time.Now.
func NewFPSMeter(now func() time.Time) *FPSMeter {
	if now == nil {
		now = time.Now
	}
	return &FPSMeter{now: now, start: now()}
}

// Tick records one displayed frame and returns the current rate.
func (m *FPSMeter) Tick() float64 {
	m.frames++
	t := m.now()
	if elapsed := int(t.Sub(m.start) / time.Second); elapsed >= 1 {
		m.fps = float64(m.frames / elapsed)
		m.frames = 0
		m.start = t
	}
	return m.fps
}

// FPS returns the last measured rate without counting a frame.
func (m *FPSMeter) FPS() float64 {
	return m.fps
}
