package apu

import "github.com/jshorfjr/veloce/hw/snapshot"

// 32-step triangle sequence: 15 down to 0, then 0 back up to 15.
var triangleSeq = [32]uint8{
	15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0,
	0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15,
}

type triangleChannel struct {
	enabled bool

	control      bool // length halt / linear control flag
	linearReload uint8
	linearCount  uint8
	linearStart  bool

	timerPeriod uint16
	timer       uint16
	seqPos      uint8
	lengthCount uint8
}

func (tc *triangleChannel) writeReg(reg uint16, val uint8) {
	switch reg {
	case 0: // $4008
		tc.control = val&0x80 != 0
		tc.linearReload = val & 0x7F
	case 2: // $400A
		tc.timerPeriod = tc.timerPeriod&0x0700 | uint16(val)
	case 3: // $400B
		tc.timerPeriod = tc.timerPeriod&0x00FF | uint16(val&0x07)<<8
		if tc.enabled {
			tc.lengthCount = lengthTable[val>>3]
		}
		tc.linearStart = true
	}
}

// tickTimer clocks the 32-step sequencer. The triangle timer runs every CPU
// cycle, and the sequencer only advances when both counters are non-zero.
func (tc *triangleChannel) tickTimer() {
	if tc.timer == 0 {
		tc.timer = tc.timerPeriod
		if tc.lengthCount > 0 && tc.linearCount > 0 {
			tc.seqPos = (tc.seqPos + 1) & 31
		}
	} else {
		tc.timer--
	}
}

func (tc *triangleChannel) tickLinear() {
	if tc.linearStart {
		tc.linearCount = tc.linearReload
	} else if tc.linearCount > 0 {
		tc.linearCount--
	}
	if !tc.control {
		tc.linearStart = false
	}
}

func (tc *triangleChannel) tickLength() {
	if !tc.control && tc.lengthCount > 0 {
		tc.lengthCount--
	}
}

func (tc *triangleChannel) setEnabled(enabled bool) {
	tc.enabled = enabled
	if !enabled {
		tc.lengthCount = 0
	}
}

// output is the current DAC input in [0, 15]. Ultrasonic periods (< 2) are
// silenced rather than producing popping.
func (tc *triangleChannel) output() uint8 {
	if tc.lengthCount == 0 || tc.linearCount == 0 || tc.timerPeriod < 2 {
		return 0
	}
	return triangleSeq[tc.seqPos]
}

func (tc *triangleChannel) saveState(w *snapshot.Writer) {
	w.Bool(tc.enabled)
	w.Bool(tc.control)
	w.U8(tc.linearReload)
	w.U8(tc.linearCount)
	w.Bool(tc.linearStart)
	w.U16(tc.timerPeriod)
	w.U16(tc.timer)
	w.U8(tc.seqPos)
	w.U8(tc.lengthCount)
}

func (tc *triangleChannel) loadState(r *snapshot.Reader) {
	tc.enabled = r.Bool()
	tc.control = r.Bool()
	tc.linearReload = r.U8()
	tc.linearCount = r.U8()
	tc.linearStart = r.Bool()
	tc.timerPeriod = r.U16()
	tc.timer = r.U16()
	tc.seqPos = r.U8()
	tc.lengthCount = r.U8()
}
