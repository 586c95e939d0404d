package clock

import "time"

// StraightSwing is the swing amount that plays every beat the same length
const StraightSwing = 50

// Beat returns the length of one unswung beat at bpm.
func Beat(bpm int) time.Duration {
	if bpm <= 0 {
		return 0
	}
	return time.Minute / time.Duration(bpm)
}

// SwingDelays splits a pair of beats into its long (even) and short (odd)
// halves. long+short is always exactly two straight beats.
func SwingDelays(bpm, swing int) (long, short time.Duration) {
	straight := Beat(bpm)
	if swing <= StraightSwing {
		return straight, straight
	}
	if swing > 100 {
		swing = 100
	}
	pair := 2 * straight
	long = pair * time.Duration(swing) / 100
	return long, pair - long
}

// Interval returns the delay until the tick after beat.
func Interval(bpm, swing, beat int) time.Duration {
	long, short := SwingDelays(bpm, swing)
	if beat%2 == 0 {
		return long
	}
	return short
}
