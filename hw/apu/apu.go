// Package apu emulates the 2A03 sound hardware: two square channels, a
// triangle, a noise channel, the delta modulation channel, the frame
// sequencer and the output mixer.
package apu

import (
	"github.com/jshorfjr/veloce/emu/log"
	"github.com/jshorfjr/veloce/hw/snapshot"
)

// Length counter load values, indexed by the 5-bit field of the length
// registers.
var lengthTable = [32]uint8{
	10, 254, 20, 2, 40, 4, 80, 6, 160, 8, 60, 10, 14, 12, 26, 14,
	12, 16, 24, 18, 48, 20, 96, 22, 192, 24, 72, 26, 16, 28, 32, 30,
}

// The frame sequencer is clocked every 7457 CPU cycles (the hardware divisor
// is 7457.5; the integer approximation is kept deliberately).
const frameCounterPeriod = 7457

// APU is the 2A03 sound unit. Step is driven with CPU cycle counts; mixed
// output accumulates in the Mixer until the host drains it.
type APU struct {
	Square1  squareChannel
	Square2  squareChannel
	Triangle triangleChannel
	Noise    noiseChannel
	DMC      dmcChannel

	frameMode   uint8 // 0: 4-step, 1: 5-step
	frameStep   uint8
	frameCycles int32
	irqInhibit  bool
	frameIRQ    bool

	cycles uint64

	mixer *Mixer
}

func New(mode SyncMode) *APU {
	a := &APU{mixer: newMixer(mode)}
	a.Square1.isChannel1 = true
	a.Reset()
	return a
}

func (a *APU) Reset() {
	a.Square1 = squareChannel{isChannel1: true}
	a.Square2 = squareChannel{}
	a.Triangle = triangleChannel{}
	a.Noise = noiseChannel{shift: 1}
	a.DMC = dmcChannel{}

	a.frameMode = 0
	a.frameStep = 0
	a.frameCycles = 0
	a.irqInhibit = false
	a.frameIRQ = false
	a.cycles = 0

	a.mixer.reset()
}

// Step runs the APU for n CPU cycles.
func (a *APU) Step(n int) {
	for range n {
		a.cycles++

		a.Triangle.tickTimer()

		if a.cycles&1 == 0 {
			a.Square1.tickTimer()
			a.Square2.tickTimer()
			a.Noise.tickTimer()
		}

		a.frameCycles++
		if a.frameCycles >= frameCounterPeriod {
			a.frameCycles = 0
			a.clockFrameCounter()
		}

		a.mixer.push(a.mix())
	}
}

// EndFrame flushes the mixer's band-limited buffer at a frame boundary.
func (a *APU) EndFrame() {
	a.mixer.endFrame()
}

// Drain copies out up to len(out) interleaved stereo samples.
func (a *APU) Drain(out []float32) int {
	return a.mixer.drain(out)
}

// PendingSamples returns the number of buffered interleaved samples.
func (a *APU) PendingSamples() int {
	return a.mixer.pending()
}

func (a *APU) clockFrameCounter() {
	a.frameStep++

	if a.frameMode == 0 {
		if a.frameStep == 1 || a.frameStep == 3 {
			a.clockEnvelopes()
		}
		if a.frameStep == 2 || a.frameStep == 4 {
			a.clockEnvelopes()
			a.clockLengths()
			a.clockSweeps()
		}
		if a.frameStep >= 4 {
			a.frameStep = 0
			if !a.irqInhibit {
				a.frameIRQ = true
			}
		}
	} else {
		if a.frameStep == 1 || a.frameStep == 3 {
			a.clockEnvelopes()
		}
		if a.frameStep == 2 || a.frameStep == 5 {
			a.clockEnvelopes()
			a.clockLengths()
			a.clockSweeps()
		}
		if a.frameStep >= 5 {
			a.frameStep = 0
		}
	}
}

func (a *APU) clockEnvelopes() {
	a.Square1.env.tick()
	a.Square2.env.tick()
	a.Noise.env.tick()
	a.Triangle.tickLinear()
}

func (a *APU) clockLengths() {
	a.Square1.tickLength()
	a.Square2.tickLength()
	a.Triangle.tickLength()
	a.Noise.tickLength()
}

func (a *APU) clockSweeps() {
	a.Square1.tickSweep()
	a.Square2.tickSweep()
}

// mix combines the five channel outputs with the standard linear
// approximation of the 2A03 DAC.
func (a *APU) mix() float32 {
	pulseOut := 0.00752 * float32(a.Square1.output()+a.Square2.output())
	tndOut := 0.00851*float32(a.Triangle.output()) +
		0.00494*float32(a.Noise.output()) +
		0.00335*float32(a.DMC.output())
	return pulseOut + tndOut
}

// ReadReg services CPU reads in $4000-$4017. Only $4015 reads back.
func (a *APU) ReadReg(addr uint16) uint8 {
	if addr != 0x4015 {
		return 0
	}

	var status uint8
	if a.Square1.lengthCount > 0 {
		status |= 0x01
	}
	if a.Square2.lengthCount > 0 {
		status |= 0x02
	}
	if a.Triangle.lengthCount > 0 {
		status |= 0x04
	}
	if a.Noise.lengthCount > 0 {
		status |= 0x08
	}
	if a.DMC.bytesLeft > 0 {
		status |= 0x10
	}
	if a.frameIRQ {
		status |= 0x40
	}
	a.frameIRQ = false
	return status
}

// WriteReg services CPU writes in $4000-$4017.
func (a *APU) WriteReg(addr uint16, val uint8) {
	switch {
	case addr < 0x4004:
		a.Square1.writeReg(addr-0x4000, val)
	case addr < 0x4008:
		a.Square2.writeReg(addr-0x4004, val)
	case addr < 0x400C:
		a.Triangle.writeReg(addr-0x4008, val)
	case addr < 0x4010:
		a.Noise.writeReg(addr-0x400C, val)
	case addr < 0x4014:
		a.DMC.writeReg(addr-0x4010, val)

	case addr == 0x4015:
		a.Square1.setEnabled(val&0x01 != 0)
		a.Square2.setEnabled(val&0x02 != 0)
		a.Triangle.setEnabled(val&0x04 != 0)
		a.Noise.setEnabled(val&0x08 != 0)
		a.DMC.setEnabled(val&0x10 != 0)

	case addr == 0x4017:
		if val&0x80 != 0 {
			a.frameMode = 1
		} else {
			a.frameMode = 0
		}
		a.irqInhibit = val&0x40 != 0
		if a.irqInhibit {
			a.frameIRQ = false
		}
		a.frameStep = 0
		if a.frameMode == 1 {
			// 5-step mode clocks everything immediately.
			a.clockEnvelopes()
			a.clockLengths()
			a.clockSweeps()
		}
		log.ModAPU.DebugZ("write frame counter").
			Uint8("mode", a.frameMode).
			Bool("inhibit", a.irqInhibit).
			End()
	}
}

// FrameIRQ reports whether the frame sequencer IRQ flag is raised.
func (a *APU) FrameIRQ() bool {
	return a.frameIRQ
}

func (a *APU) SaveState(w *snapshot.Writer) {
	w.U8(a.frameMode)
	w.U8(a.frameStep)
	w.I32(a.frameCycles)
	w.Bool(a.irqInhibit)
	w.Bool(a.frameIRQ)
	w.U64(a.cycles)

	a.Square1.saveState(w)
	a.Square2.saveState(w)
	a.Triangle.saveState(w)
	a.Noise.saveState(w)
	a.DMC.saveState(w)
	a.mixer.saveState(w)
}

func (a *APU) LoadState(r *snapshot.Reader) {
	a.frameMode = r.U8()
	a.frameStep = r.U8()
	a.frameCycles = r.I32()
	a.irqInhibit = r.Bool()
	a.frameIRQ = r.Bool()
	a.cycles = r.U64()

	a.Square1.loadState(r)
	a.Square2.loadState(r)
	a.Triangle.loadState(r)
	a.Noise.loadState(r)
	a.DMC.loadState(r)
	a.mixer.loadState(r)
}
