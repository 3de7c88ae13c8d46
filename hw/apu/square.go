package apu

import "github.com/jshorfjr/veloce/hw/snapshot"

// duty cycle sequences for the square channels.
var squareDuty = [4][8]uint8{
	{0, 1, 0, 0, 0, 0, 0, 0},
	{0, 1, 1, 0, 0, 0, 0, 0},
	{0, 1, 1, 1, 1, 0, 0, 0},
	{1, 0, 0, 1, 1, 1, 1, 1},
}

// squareChannel is one of the two pulse channels. Channel 1 and channel 2
// differ only in the sweep negate formula (one's vs two's complement).
type squareChannel struct {
	isChannel1 bool

	enabled bool
	duty    uint8
	dutyPos uint8
	env     envelope

	sweepEnabled bool
	sweepPeriod  uint8
	sweepNegate  bool
	sweepShift   uint8
	sweepDivider uint8
	sweepReload  bool

	timerPeriod uint16
	timer       uint16
	lengthCount uint8
}

// writeReg services the four channel registers ($4000-$4003 / $4004-$4007).
func (sc *squareChannel) writeReg(reg uint16, val uint8) {
	switch reg {
	case 0: // duty / envelope
		sc.duty = val >> 6 & 0x03
		sc.env.load(val)
	case 1: // sweep
		sc.sweepEnabled = val&0x80 != 0
		sc.sweepPeriod = val >> 4 & 0x07
		sc.sweepNegate = val&0x08 != 0
		sc.sweepShift = val & 0x07
		sc.sweepReload = true
	case 2: // timer low
		sc.timerPeriod = sc.timerPeriod&0x0700 | uint16(val)
	case 3: // length / timer high
		sc.timerPeriod = sc.timerPeriod&0x00FF | uint16(val&0x07)<<8
		if sc.enabled {
			sc.lengthCount = lengthTable[val>>3]
		}
		sc.dutyPos = 0
		sc.env.restart()
	}
}

// tickTimer advances the 8-step sequencer. Called every second CPU cycle.
func (sc *squareChannel) tickTimer() {
	if sc.timer == 0 {
		sc.timer = sc.timerPeriod
		sc.dutyPos = (sc.dutyPos + 1) & 0x07
	} else {
		sc.timer--
	}
}

func (sc *squareChannel) tickLength() {
	if !sc.env.loop && sc.lengthCount > 0 {
		sc.lengthCount--
	}
}

// tickSweep clocks the sweep unit (half-frame). Pulse 1 uses one's
// complement negation, pulse 2 two's complement.
func (sc *squareChannel) tickSweep() {
	if sc.sweepDivider == 0 && sc.sweepEnabled {
		change := sc.timerPeriod >> sc.sweepShift
		if sc.sweepNegate {
			sc.timerPeriod -= change
			if sc.isChannel1 {
				sc.timerPeriod--
			}
		} else {
			sc.timerPeriod += change
		}
	}

	if sc.sweepDivider == 0 || sc.sweepReload {
		sc.sweepDivider = sc.sweepPeriod
		sc.sweepReload = false
	} else {
		sc.sweepDivider--
	}
}

func (sc *squareChannel) setEnabled(enabled bool) {
	sc.enabled = enabled
	if !enabled {
		sc.lengthCount = 0
	}
}

// output is the current DAC input in [0, 15]. Periods outside [8, $7FF]
// silence the channel.
func (sc *squareChannel) output() uint8 {
	if sc.lengthCount == 0 || sc.timerPeriod < 8 || sc.timerPeriod > 0x7FF {
		return 0
	}
	if squareDuty[sc.duty][sc.dutyPos] == 0 {
		return 0
	}
	return sc.env.output()
}

func (sc *squareChannel) saveState(w *snapshot.Writer) {
	w.Bool(sc.enabled)
	w.U8(sc.duty)
	w.U8(sc.dutyPos)
	w.Bool(sc.env.start)
	w.U8(sc.env.divider)
	w.U8(sc.env.counter)
	w.U8(sc.env.volume)
	w.Bool(sc.env.constVol)
	w.Bool(sc.env.loop)
	w.Bool(sc.sweepEnabled)
	w.U8(sc.sweepPeriod)
	w.Bool(sc.sweepNegate)
	w.U8(sc.sweepShift)
	w.U8(sc.sweepDivider)
	w.Bool(sc.sweepReload)
	w.U16(sc.timerPeriod)
	w.U16(sc.timer)
	w.U8(sc.lengthCount)
}

func (sc *squareChannel) loadState(r *snapshot.Reader) {
	sc.enabled = r.Bool()
	sc.duty = r.U8()
	sc.dutyPos = r.U8()
	sc.env.start = r.Bool()
	sc.env.divider = r.U8()
	sc.env.counter = r.U8()
	sc.env.volume = r.U8()
	sc.env.constVol = r.Bool()
	sc.env.loop = r.Bool()
	sc.sweepEnabled = r.Bool()
	sc.sweepPeriod = r.U8()
	sc.sweepNegate = r.Bool()
	sc.sweepShift = r.U8()
	sc.sweepDivider = r.U8()
	sc.sweepReload = r.Bool()
	sc.timerPeriod = r.U16()
	sc.timer = r.U16()
	sc.lengthCount = r.U8()
}
