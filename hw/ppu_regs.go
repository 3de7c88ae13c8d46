package hw

import "github.com/jshorfjr/veloce/emu/log"

// CPU-side access to the eight PPU registers, already masked to 0..7 by the
// bus ($2000-$3FFF mirrors every 8 bytes).

func (p *PPU) CPURead(reg uint16) uint8 {
	switch reg {
	case 2:
		return p.readPPUSTATUS()
	case 4:
		return p.oam[p.oamAddr]
	case 7:
		return p.readPPUDATA()
	}
	return 0
}

func (p *PPU) CPUWrite(reg uint16, val uint8) {
	switch reg {
	case 0:
		p.writePPUCTRL(val)
	case 1:
		p.writePPUMASK(val)
	case 3:
		p.oamAddr = val
	case 4:
		p.oam[p.oamAddr] = val
		p.oamAddr++
	case 5:
		p.writePPUSCROLL(val)
	case 6:
		p.writePPUADDR(val)
	case 7:
		p.writePPUDATA(val)
	}
}

// PPUCTRL: $2000
func (p *PPU) writePPUCTRL(val uint8) {
	prevOutput := p.nmiOutput

	p.ctrl = val
	p.nmiOutput = val&0x80 != 0

	// nametable select goes into bits 10-11 of t
	p.t = p.t&^0x0C00 | uint16(val&0x03)<<10

	// Toggling the NMI enable bit during VBlank re-arms the NMI line: a 0->1
	// transition while the flag is up fires an NMI after the next
	// instruction, a 1->0 transition around the VBL set point cancels a
	// latched one.
	if !prevOutput && p.nmiOutput && p.nmiOccurred {
		p.nmiDelayed = true
	}
	if prevOutput && !p.nmiOutput {
		if p.scanline == 241 && p.cycle >= 1 && p.cycle <= 2 {
			p.nmiLatched = false
			p.nmiDelay = 0
			p.nmiTriggered = false
		}
	}

	log.ModPPU.DebugZ("Write to PPUCTRL").Hex8("val", val).End()
}

// PPUMASK: $2001
func (p *PPU) writePPUMASK(val uint8) {
	p.maskPrev = p.mask
	p.maskWriteCycle = p.frameCycle()
	p.mask = val
}

// PPUSTATUS: $2002
func (p *PPU) readPPUSTATUS() uint8 {
	ret := p.status&0xE0 | p.dataBuffer&0x1F

	// Reading PPUSTATUS around the VBL set point races the flag:
	//   (241,0): the flag is never set this frame, no NMI.
	//   (241,1): the read wins, the flag is returned set but only once,
	//            and the NMI is suppressed.
	//   (241,2): flag already visible, NMI (possibly in flight) suppressed.
	if p.scanline == 241 {
		switch p.cycle {
		case 0:
			p.vblSuppress = true
			p.suppressNMI = true
		case 1:
			p.vblSuppress = true
			p.suppressNMI = true
			ret |= 0x80
		case 2:
			p.suppressNMI = true
			p.nmiLatched = false
			p.nmiDelay = 0
			p.nmiTriggered = false
		}
	}

	p.status &^= 0x80
	p.nmiOccurred = false
	p.w = false
	return ret
}

// PPUSCROLL: $2005
func (p *PPU) writePPUSCROLL(val uint8) {
	if !p.w {
		// coarse X and fine X
		p.x = val & 0x07
		p.t = p.t&^0x001F | uint16(val)>>3
	} else {
		// coarse Y and fine Y
		p.t = p.t &^ 0x73E0
		p.t |= uint16(val&0x07) << 12
		p.t |= uint16(val&0xF8) << 2
	}
	p.w = !p.w
}

// PPUADDR: $2006
func (p *PPU) writePPUADDR(val uint8) {
	if !p.w {
		p.t = p.t&0x00FF | uint16(val&0x3F)<<8
	} else {
		p.t = p.t&0xFF00 | uint16(val)
		old := p.v
		p.v = p.t
		p.Cart.Mapper.NotifyPPUAddrChange(old, p.v, p.frameCycle())
	}
	p.w = !p.w
}

// PPUDATA: $2007
func (p *PPU) readPPUDATA() uint8 {
	val := p.dataBuffer
	p.dataBuffer = p.ppuRead(p.v)

	// palette reads are not buffered
	if p.v&0x3FFF >= 0x3F00 {
		val = p.dataBuffer
	}

	p.incrementVRAMAddr()
	return val
}

func (p *PPU) writePPUDATA(val uint8) {
	p.ppuWrite(p.v, val)
	p.incrementVRAMAddr()

	log.ModPPU.DebugZ("VRAM write").
		Hex16("addr", p.v).
		Hex8("val", val).
		End()
}

// After each PPUDATA access v is incremented by 1 or 32 and the mapper gets
// to see the new bus address.
func (p *PPU) incrementVRAMAddr() {
	old := p.v
	if p.ctrl&0x04 != 0 {
		p.v += 32
	} else {
		p.v++
	}
	p.v &= 0x7FFF
	p.Cart.Mapper.NotifyPPUAddrChange(old, p.v, p.frameCycle())
}
