package core

const AVG_COUNT uint8 = 30

// FrameStats tracks frames per second over one second windows and a moving
// average of frame times.
type FrameStats struct {
	frameAVGCounter    uint8
	msTimes            [AVG_COUNT]float64
	msAvg              float64
	frames             int32
	accumulatedFrameMS float64
	fps                float64
	windows            uint64
}

func NewFrameStats() *FrameStats {
	return &FrameStats{}
}

// Update records a frame that took frameElapsedTime seconds. It returns true
// when a one second window closed and FPS was refreshed.
func (s *FrameStats) Update(frameElapsedTime float64) bool {
	frameMS := frameElapsedTime * 1000.0
	s.msTimes[s.frameAVGCounter] = frameMS
	if s.frameAVGCounter == AVG_COUNT-1 {
		s.msAvg = 0
		for i := uint8(0); i < AVG_COUNT; i++ {
			s.msAvg += s.msTimes[i]
		}
		s.msAvg /= float64(AVG_COUNT)
	}
	s.frameAVGCounter++
	s.frameAVGCounter %= AVG_COUNT

	// Count this frame before closing the window so it belongs to it.
	s.frames++

	s.accumulatedFrameMS += frameMS
	if s.accumulatedFrameMS >= 1000 {
		s.fps = float64(s.frames)
		s.accumulatedFrameMS -= 1000
		s.frames = 0
		s.windows++
		return true
	}
	return false
}

func (s *FrameStats) FPS() float64 {
	return s.fps
}

// FrameTime is the average frame time in milliseconds over the last AVG_COUNT frames.
func (s *FrameStats) FrameTime() float64 {
	return s.msAvg
}

func (s *FrameStats) Windows() uint64 {
	return s.windows
}
