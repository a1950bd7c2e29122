package wayback

import (
	"math/rand"
	"time"
)

// RandomSleeper paces outbound archive requests with a uniformly random pause
// inside [minMillis, maxMillis].
type RandomSleeper struct {
	minMillis int
	maxMillis int
	rng       *rand.Rand
}

// NewRandomSleeper creates a sleeper over the given millisecond bounds.
// Degenerate bounds collapse to a fixed pause.
func NewRandomSleeper(minMillis, maxMillis int) *RandomSleeper {
	if minMillis < 0 {
		minMillis = 0
	}
	if maxMillis < minMillis {
		maxMillis = minMillis
	}
	return &RandomSleeper{
		minMillis: minMillis,
		maxMillis: maxMillis,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *RandomSleeper) Sleep() {
	pause := s.minMillis
	if spread := s.maxMillis - s.minMillis; spread > 0 {
		pause += s.rng.Intn(spread + 1)
	}
	if pause > 0 {
		time.Sleep(time.Duration(pause) * time.Millisecond)
	}
}
