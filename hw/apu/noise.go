package apu

import "github.com/jshorfjr/veloce/hw/snapshot"

var noisePeriods = [16]uint16{
	4, 8, 16, 32, 64, 96, 128, 160, 202, 254, 380, 508, 762, 1016, 2034, 4068,
}

type noiseChannel struct {
	enabled bool
	env     envelope

	mode        bool // tap bit 6 instead of bit 1
	timerPeriod uint16
	timer       uint16
	shift       uint16 // 15-bit LFSR, never zero
	lengthCount uint8
}

func (nc *noiseChannel) writeReg(reg uint16, val uint8) {
	switch reg {
	case 0: // $400C
		nc.env.load(val)
	case 2: // $400E
		nc.mode = val&0x80 != 0
		nc.timerPeriod = noisePeriods[val&0x0F]
	case 3: // $400F
		if nc.enabled {
			nc.lengthCount = lengthTable[val>>3]
		}
		nc.env.restart()
	}
}

// tickTimer clocks the LFSR. Called every second CPU cycle.
func (nc *noiseChannel) tickTimer() {
	if nc.timer == 0 {
		nc.timer = nc.timerPeriod
		var bit uint16
		if nc.mode {
			bit = (nc.shift>>6 ^ nc.shift) & 1
		} else {
			bit = (nc.shift>>1 ^ nc.shift) & 1
		}
		nc.shift = nc.shift>>1 | bit<<14
	} else {
		nc.timer--
	}
}

func (nc *noiseChannel) tickLength() {
	if !nc.env.loop && nc.lengthCount > 0 {
		nc.lengthCount--
	}
}

func (nc *noiseChannel) setEnabled(enabled bool) {
	nc.enabled = enabled
	if !enabled {
		nc.lengthCount = 0
	}
}

func (nc *noiseChannel) output() uint8 {
	if nc.lengthCount == 0 || nc.shift&1 != 0 {
		return 0
	}
	return nc.env.output()
}

func (nc *noiseChannel) saveState(w *snapshot.Writer) {
	w.Bool(nc.enabled)
	w.Bool(nc.env.start)
	w.U8(nc.env.divider)
	w.U8(nc.env.counter)
	w.U8(nc.env.volume)
	w.Bool(nc.env.constVol)
	w.Bool(nc.env.loop)
	w.Bool(nc.mode)
	w.U16(nc.timerPeriod)
	w.U16(nc.timer)
	w.U16(nc.shift)
	w.U8(nc.lengthCount)
}

func (nc *noiseChannel) loadState(r *snapshot.Reader) {
	nc.enabled = r.Bool()
	nc.env.start = r.Bool()
	nc.env.divider = r.U8()
	nc.env.counter = r.U8()
	nc.env.volume = r.U8()
	nc.env.constVol = r.Bool()
	nc.env.loop = r.Bool()
	nc.mode = r.Bool()
	nc.timerPeriod = r.U16()
	nc.timer = r.U16()
	nc.shift = r.U16()
	nc.lengthCount = r.U8()
}
