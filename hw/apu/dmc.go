package apu

import "github.com/jshorfjr/veloce/hw/snapshot"

// dmcChannel holds the delta modulation channel registers. Sample playback
// DMA and the DMC IRQ are not wired up; the channel contributes its current
// output level to the mix, which covers the common $4011 direct-PCM writes.
// TODO: full sample playback once DMA bus stalls are modeled.
type dmcChannel struct {
	enabled    bool
	irqEnabled bool
	loop       bool
	rate       uint8
	level      uint8 // 7-bit output level

	sampleAddr uint16
	sampleLen  uint16
	bytesLeft  uint16
}

func (dc *dmcChannel) writeReg(reg uint16, val uint8) {
	switch reg {
	case 0: // $4010
		dc.irqEnabled = val&0x80 != 0
		dc.loop = val&0x40 != 0
		dc.rate = val & 0x0F
	case 1: // $4011
		dc.level = val & 0x7F
	case 2: // $4012
		dc.sampleAddr = 0xC000 | uint16(val)<<6
	case 3: // $4013
		dc.sampleLen = uint16(val)<<4 + 1
	}
}

func (dc *dmcChannel) setEnabled(enabled bool) {
	dc.enabled = enabled
	if !enabled {
		dc.bytesLeft = 0
	} else if dc.bytesLeft == 0 {
		dc.bytesLeft = dc.sampleLen
	}
}

func (dc *dmcChannel) output() uint8 {
	return dc.level
}

func (dc *dmcChannel) saveState(w *snapshot.Writer) {
	w.Bool(dc.enabled)
	w.Bool(dc.irqEnabled)
	w.Bool(dc.loop)
	w.U8(dc.rate)
	w.U8(dc.level)
	w.U16(dc.sampleAddr)
	w.U16(dc.sampleLen)
	w.U16(dc.bytesLeft)
}

func (dc *dmcChannel) loadState(r *snapshot.Reader) {
	dc.enabled = r.Bool()
	dc.irqEnabled = r.Bool()
	dc.loop = r.Bool()
	dc.rate = r.U8()
	dc.level = r.U8()
	dc.sampleAddr = r.U16()
	dc.sampleLen = r.U16()
	dc.bytesLeft = r.U16()
}
