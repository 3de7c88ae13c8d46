package hw

import (
	"github.com/jshorfjr/veloce/hw/mappers"
	"github.com/jshorfjr/veloce/hw/snapshot"
)

const (
	NumScanlines = 262 // scanlines per frame, 261 is the pre-render line
	NumCycles    = 341 // PPU cycles (dots) per scanline

	// ScreenWidth and ScreenHeight are the visible framebuffer dimensions.
	ScreenWidth  = 256
	ScreenHeight = 240
)

// NMISignal is the edge-triggered result of CheckNMI.
type NMISignal uint8

const (
	NMINone NMISignal = iota

	// NMIImmediate fires before the next CPU instruction.
	NMIImmediate

	// NMIDelayed fires after the next CPU instruction completes. Produced by
	// enabling NMI via $2000 while the VBL flag is already set.
	NMIDelayed
)

// Number of PPU dots between the VBL flag being set and the NMI edge
// reaching the CPU (~5 CPU cycles).
const nmiDelayDots = 15

type sprite struct {
	y    uint8
	tile uint8
	attr uint8
	x    uint8
}

// PPU is the 2C02 picture processing unit, stepped one dot at a time.
type PPU struct {
	Cart *mappers.Cartridge

	// CPU-visible registers
	ctrl    uint8
	mask    uint8
	status  uint8
	oamAddr uint8

	// loopy internal registers
	v uint16
	t uint16
	x uint8
	w bool

	dataBuffer uint8

	// timing
	scanline int
	cycle    int
	frame    uint64
	oddFrame bool

	// NMI lifecycle
	nmiOccurred  bool
	nmiOutput    bool
	nmiTriggered bool
	nmiDelayed   bool
	nmiLatched   bool
	nmiDelay     uint8
	vblSuppress  bool
	suppressNMI  bool

	frameComplete bool

	// background pipeline
	bgShiftPatternLo uint16
	bgShiftPatternHi uint16
	bgShiftAttribLo  uint16
	bgShiftAttribHi  uint16
	bgNextTileID     uint8
	bgNextTileAttrib uint8
	bgNextTileLo     uint8
	bgNextTileHi     uint8

	// sprite pipeline
	oam            [256]uint8
	spr            [8]sprite
	sprShiftLo     [8]uint8
	sprShiftHi     [8]uint8
	sprCount       int
	sprEvalLine    int
	sprZeroHitPoss bool
	sprZeroRender  bool

	nametable [2048]uint8
	palette   [32]uint8

	framebuffer [ScreenWidth * ScreenHeight]uint32

	// PPUMASK write tracking for the odd-frame-skip arbitration: the CPU
	// runs ahead of the PPU within an instruction, so a mask write that
	// lands within the last 2 dots before the skip decision must not count.
	maskPrev       uint8
	maskWriteCycle uint32
}

func NewPPU() *PPU {
	p := &PPU{}
	p.Reset()
	return p
}

func (p *PPU) Reset() {
	p.ctrl = 0
	p.mask = 0
	p.status = 0
	p.oamAddr = 0
	p.v = 0
	p.t = 0
	p.x = 0
	p.w = false
	p.dataBuffer = 0
	p.scanline = 0
	p.cycle = 0
	p.frame = 0
	p.oddFrame = false

	p.nmiOccurred = false
	p.nmiOutput = false
	p.nmiTriggered = false
	p.nmiDelayed = false
	p.nmiLatched = false
	p.nmiDelay = 0
	p.vblSuppress = false
	p.suppressNMI = false
	p.frameComplete = false

	p.bgShiftPatternLo = 0
	p.bgShiftPatternHi = 0
	p.bgShiftAttribLo = 0
	p.bgShiftAttribHi = 0
	p.bgNextTileID = 0
	p.bgNextTileAttrib = 0
	p.bgNextTileLo = 0
	p.bgNextTileHi = 0

	p.oam = [256]uint8{}
	p.spr = [8]sprite{}
	p.sprShiftLo = [8]uint8{}
	p.sprShiftHi = [8]uint8{}
	p.sprCount = 0
	p.sprZeroHitPoss = false
	p.sprZeroRender = false

	p.nametable = [2048]uint8{}
	p.palette = [32]uint8{}
	p.framebuffer = [ScreenWidth * ScreenHeight]uint32{}

	p.maskPrev = 0
	p.maskWriteCycle = 0
}

// Framebuffer returns the 256x240 ABGR pixel buffer of the last completed
// frame. Valid until the next frame overwrites it.
func (p *PPU) Framebuffer() []uint32 {
	return p.framebuffer[:]
}

func (p *PPU) Frame() uint64 { return p.frame }

// frameCycle is the dot position within the frame, passed to the mapper for
// A12 filter timing.
func (p *PPU) frameCycle() uint32 {
	return uint32(p.scanline*NumCycles + p.cycle)
}

func (p *PPU) renderingEnabled() bool {
	return p.mask&0x18 != 0
}

// busRead performs a PPU address-space read during rendering, driving the
// mapper's view of the address bus for A12 tracking.
func (p *PPU) busRead(addr uint16) uint8 {
	p.Cart.Mapper.NotifyPPUAddressBus(addr, p.frameCycle())
	return p.ppuRead(addr)
}

// busTouch puts an address on the PPU bus without consuming the value
// (garbage nametable/attribute cycles of the sprite fetch phases, dummy
// fetches at dots 337/339).
func (p *PPU) busTouch(addr uint16) {
	p.Cart.Mapper.NotifyPPUAddressBus(addr, p.frameCycle())
}

// CheckNMI reports and clears a pending NMI edge.
func (p *PPU) CheckNMI() NMISignal {
	if p.nmiTriggered {
		p.nmiTriggered = false
		return NMIImmediate
	}
	if p.nmiDelayed {
		p.nmiDelayed = false
		return NMIDelayed
	}
	return NMINone
}

// CheckFrameComplete reports and clears the frame completion flag, raised
// once per frame when the PPU enters VBlank.
func (p *PPU) CheckFrameComplete() bool {
	if p.frameComplete {
		p.frameComplete = false
		return true
	}
	return false
}

// Step advances the PPU by one dot.
func (p *PPU) Step() {
	visible := p.scanline < 240
	prerender := p.scanline == 261

	if visible || prerender {
		p.stepBackground()
		p.stepSprites(prerender)
	}

	if visible && p.cycle >= 1 && p.cycle <= 256 {
		p.renderPixel()
	}

	if prerender {
		if p.cycle == 1 {
			// Leaving VBlank: clear VBL, sprite 0 hit and overflow.
			p.status &^= 0xE0
			p.nmiOccurred = false
			p.suppressNMI = false
			p.vblSuppress = false
		}
		if p.cycle >= 280 && p.cycle <= 304 && p.renderingEnabled() {
			// copy vertical bits of t into v
			p.v = p.v&^0x7BE0 | p.t&0x7BE0
		}
	}

	if p.scanline == 241 && p.cycle == 1 {
		p.enterVBlank()
	}

	// Delayed NMI edge from the VBL set point.
	if p.nmiLatched {
		p.nmiDelay--
		if p.nmiDelay == 0 {
			p.nmiLatched = false
			if !p.suppressNMI {
				p.nmiTriggered = true
			}
		}
	}

	p.advance()
}

// stepBackground runs the per-dot background fetch pipeline on visible and
// pre-render scanlines.
func (p *PPU) stepBackground() {
	if !p.renderingEnabled() {
		return
	}

	fetchDot := (p.cycle >= 1 && p.cycle <= 256) || (p.cycle >= 321 && p.cycle <= 337)
	shiftDot := (p.cycle >= 2 && p.cycle <= 257) || (p.cycle >= 322 && p.cycle <= 337)

	if shiftDot {
		p.updateShifters()
	}

	if fetchDot {
		switch (p.cycle - 1) % 8 {
		case 0:
			p.loadBackgroundShifters()
			p.bgNextTileID = p.busRead(0x2000 | p.v&0x0FFF)
		case 2:
			attrib := p.busRead(0x23C0 | p.v&0x0C00 | p.v>>4&0x38 | p.v>>2&0x07)
			if p.v&0x40 != 0 {
				attrib >>= 4
			}
			if p.v&0x02 != 0 {
				attrib >>= 2
			}
			p.bgNextTileAttrib = attrib & 0x03
		case 4:
			addr := uint16(p.ctrl&0x10)<<8 + uint16(p.bgNextTileID)<<4 + p.v>>12&7
			p.bgNextTileLo = p.busRead(addr)
		case 6:
			addr := uint16(p.ctrl&0x10)<<8 + uint16(p.bgNextTileID)<<4 + p.v>>12&7 + 8
			p.bgNextTileHi = p.busRead(addr)
		case 7:
			p.incrementX()
		}
	}

	if p.cycle == 256 {
		p.incrementY()
	}

	if p.cycle == 257 {
		// copy horizontal bits of t into v
		p.v = p.v&^0x041F | p.t&0x041F
	}

	// Dummy nametable read; its only effect is clocking MMC3's A12 (the
	// read at dot 337 happens through the fetch pipeline above).
	if p.cycle == 339 {
		p.busTouch(0x2000 | p.v&0x0FFF)
	}
}

// stepSprites handles sprite evaluation at dot 257 and the eight 8-dot
// sprite fetch phases of dots 257-320. Slots beyond the evaluated count
// still fetch from a dummy tile so A12 toggles as on hardware.
func (p *PPU) stepSprites(prerender bool) {
	if !p.renderingEnabled() {
		return
	}

	if p.cycle == 257 {
		if prerender {
			p.evaluateSprites(0)
		} else {
			p.evaluateSprites(p.scanline)
		}
	}

	if p.cycle >= 257 && p.cycle <= 320 {
		slot := (p.cycle - 257) / 8
		switch (p.cycle - 257) % 8 {
		case 0:
			p.busTouch(0x2000 | p.v&0x0FFF)
		case 2:
			p.busTouch(0x23C0 | p.v&0x0C00 | p.v>>4&0x38 | p.v>>2&0x07)
		case 4:
			p.fetchSpritePattern(slot, false)
		case 6:
			p.fetchSpritePattern(slot, true)
		}
	}
}

// spritePatternAddr computes the pattern address for the given sprite slot.
// Unused slots address the dummy tile $FF.
func (p *PPU) spritePatternAddr(slot int, line int) uint16 {
	height := 8
	if p.ctrl&0x20 != 0 {
		height = 16
	}

	if slot >= p.sprCount {
		if height == 16 {
			return 0x1FF0
		}
		return uint16(p.ctrl&0x08)<<9 | 0x0FF0
	}

	spr := &p.spr[slot]
	row := line - int(spr.y)
	if spr.attr&0x80 != 0 {
		row = height - 1 - row
	}

	var addr uint16
	if height == 16 {
		addr = uint16(spr.tile&0x01)<<12 | uint16(spr.tile&0xFE)<<4
		if row >= 8 {
			addr += 16
			row -= 8
		}
	} else {
		addr = uint16(p.ctrl&0x08)<<9 | uint16(spr.tile)<<4
	}
	return addr + uint16(row&7)
}

func (p *PPU) fetchSpritePattern(slot int, hi bool) {
	addr := p.spritePatternAddr(slot, p.sprEvalLine)
	if hi {
		addr += 8
	}
	val := p.busRead(addr)

	if slot >= p.sprCount {
		return
	}
	if p.spr[slot].attr&0x40 != 0 {
		val = reverseByte(val)
	}
	if hi {
		p.sprShiftHi[slot] = val
	} else {
		p.sprShiftLo[slot] = val
	}
}

func reverseByte(b uint8) uint8 {
	b = b&0xF0>>4 | b&0x0F<<4
	b = b&0xCC>>2 | b&0x33<<2
	b = b&0xAA>>1 | b&0x55<<1
	return b
}

// evaluateSprites fills the secondary sprite slots for the given scanline.
// Pattern data is fetched afterwards, during the sprite fetch phases.
func (p *PPU) evaluateSprites(line int) {
	p.sprCount = 0
	p.sprZeroHitPoss = false
	p.sprEvalLine = line

	for i := range p.sprShiftLo {
		p.sprShiftLo[i] = 0
		p.sprShiftHi[i] = 0
	}

	height := 8
	if p.ctrl&0x20 != 0 {
		height = 16
	}

	for i := 0; i < 64; i++ {
		diff := line - int(p.oam[i*4])
		if diff < 0 || diff >= height {
			continue
		}
		if p.sprCount == 8 {
			p.status |= 0x20 // sprite overflow
			break
		}
		if i == 0 {
			p.sprZeroHitPoss = true
		}
		p.spr[p.sprCount] = sprite{
			y:    p.oam[i*4],
			tile: p.oam[i*4+1],
			attr: p.oam[i*4+2],
			x:    p.oam[i*4+3],
		}
		p.sprCount++
	}
}

func (p *PPU) loadBackgroundShifters() {
	p.bgShiftPatternLo = p.bgShiftPatternLo&0xFF00 | uint16(p.bgNextTileLo)
	p.bgShiftPatternHi = p.bgShiftPatternHi&0xFF00 | uint16(p.bgNextTileHi)

	lo, hi := uint16(0), uint16(0)
	if p.bgNextTileAttrib&0x01 != 0 {
		lo = 0xFF
	}
	if p.bgNextTileAttrib&0x02 != 0 {
		hi = 0xFF
	}
	p.bgShiftAttribLo = p.bgShiftAttribLo&0xFF00 | lo
	p.bgShiftAttribHi = p.bgShiftAttribHi&0xFF00 | hi
}

func (p *PPU) updateShifters() {
	p.bgShiftPatternLo <<= 1
	p.bgShiftPatternHi <<= 1
	p.bgShiftAttribLo <<= 1
	p.bgShiftAttribHi <<= 1
}

func (p *PPU) incrementX() {
	if p.v&0x001F == 31 {
		p.v &^= 0x001F
		p.v ^= 0x0400 // switch horizontal nametable
	} else {
		p.v++
	}
}

func (p *PPU) incrementY() {
	if p.v&0x7000 != 0x7000 {
		p.v += 0x1000
		return
	}
	p.v &^= 0x7000
	y := p.v >> 5 & 0x1F
	switch y {
	case 29:
		y = 0
		p.v ^= 0x0800 // switch vertical nametable
	case 31:
		y = 0 // row 31 wraps without switching
	default:
		y++
	}
	p.v = p.v&^0x03E0 | y<<5
}

func (p *PPU) renderPixel() {
	x := p.cycle - 1
	y := p.scanline

	var bgPixel, bgPalette uint8
	if p.mask&0x08 != 0 && (p.mask&0x02 != 0 || x >= 8) {
		bit := uint16(0x8000) >> p.x
		if p.bgShiftPatternLo&bit != 0 {
			bgPixel |= 0x01
		}
		if p.bgShiftPatternHi&bit != 0 {
			bgPixel |= 0x02
		}
		if p.bgShiftAttribLo&bit != 0 {
			bgPalette |= 0x01
		}
		if p.bgShiftAttribHi&bit != 0 {
			bgPalette |= 0x02
		}
	}

	var sprPixel, sprPalette, sprPriority uint8
	if p.mask&0x10 != 0 && (p.mask&0x04 != 0 || x >= 8) {
		p.sprZeroRender = false
		for i := 0; i < p.sprCount; i++ {
			if p.spr[i].x != 0 {
				continue
			}
			var pix uint8
			if p.sprShiftLo[i]&0x80 != 0 {
				pix |= 0x01
			}
			if p.sprShiftHi[i]&0x80 != 0 {
				pix |= 0x02
			}
			if pix == 0 {
				continue
			}
			if i == 0 {
				p.sprZeroRender = true
			}
			sprPixel = pix
			sprPalette = p.spr[i].attr&0x03 + 4
			if p.spr[i].attr&0x20 != 0 {
				sprPriority = 1
			}
			break
		}
	}

	var pixel, palette uint8
	switch {
	case bgPixel == 0 && sprPixel == 0:
	case bgPixel == 0:
		pixel, palette = sprPixel, sprPalette
	case sprPixel == 0:
		pixel, palette = bgPixel, bgPalette
	default:
		// Both opaque: this is where sprite 0 hits are detected.
		if p.sprZeroHitPoss && p.sprZeroRender && p.mask&0x18 == 0x18 {
			if !(p.mask&0x06 != 0x06 && x < 8) {
				p.status |= 0x40
			}
		}
		if sprPriority == 0 {
			pixel, palette = sprPixel, sprPalette
		} else {
			pixel, palette = bgPixel, bgPalette
		}
	}

	color := p.ppuRead(0x3F00+uint16(palette)<<2+uint16(pixel)) & 0x3F
	p.framebuffer[y*ScreenWidth+x] = masterPalette[color]

	// advance the sprite x counters and shifters
	for i := 0; i < p.sprCount; i++ {
		if p.spr[i].x > 0 {
			p.spr[i].x--
		} else {
			p.sprShiftLo[i] <<= 1
			p.sprShiftHi[i] <<= 1
		}
	}
}

func (p *PPU) enterVBlank() {
	p.frameComplete = true

	if !p.vblSuppress {
		p.status |= 0x80
		p.nmiOccurred = true
		if p.nmiOutput && !p.suppressNMI {
			p.nmiLatched = true
			p.nmiDelay = nmiDelayDots
		}
	}
	p.vblSuppress = false
}

// advance moves to the next dot, handling the odd-frame skip of (261, 340).
func (p *PPU) advance() {
	p.cycle++

	if p.scanline == 261 && p.cycle == 340 && p.oddFrame && p.skipRendering() {
		// On rendering-enabled odd frames (261, 340) is never observed.
		p.wrapFrame()
		return
	}

	if p.cycle > 340 {
		p.cycle = 0

		if p.scanline < 240 && p.renderingEnabled() {
			p.Cart.Mapper.Scanline()
		}

		p.scanline++
		if p.scanline > 261 {
			p.wrapFrame()
		}
	}
}

func (p *PPU) wrapFrame() {
	p.scanline = 0
	p.cycle = 0
	p.frame++
	p.oddFrame = !p.oddFrame
	p.Cart.Mapper.NotifyFrameStart()
}

// skipRendering is the rendering-enabled test used by the odd-frame skip.
// The CPU runs ahead of the PPU, so a PPUMASK write issued within the last
// two dots is not yet visible to the PPU: use the previous mask value then.
func (p *PPU) skipRendering() bool {
	mask := p.mask
	elapsed := p.frameCycle() - p.maskWriteCycle
	if p.frameCycle() < p.maskWriteCycle {
		elapsed = p.frameCycle() + NumScanlines*NumCycles - p.maskWriteCycle
	}
	if elapsed <= 2 {
		mask = p.maskPrev
	}
	return mask&0x18 != 0
}

// ppuRead services the PPU's internal address space: pattern tables through
// the mapper, nametables with the mapper's mirroring, palette RAM.
func (p *PPU) ppuRead(addr uint16) uint8 {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		return p.Cart.Mapper.PPURead(addr, p.frameCycle())
	case addr < 0x3F00:
		idx := p.Cart.Mapper.Mirroring().MirrorNT(addr)
		return p.nametable[idx&0x07FF]
	default:
		idx := addr & 0x1F
		if idx == 0x10 || idx == 0x14 || idx == 0x18 || idx == 0x1C {
			idx &= 0x0F
		}
		return p.palette[idx]
	}
}

func (p *PPU) ppuWrite(addr uint16, val uint8) {
	addr &= 0x3FFF
	switch {
	case addr < 0x2000:
		p.Cart.Mapper.PPUWrite(addr, val)
	case addr < 0x3F00:
		idx := p.Cart.Mapper.Mirroring().MirrorNT(addr)
		p.nametable[idx&0x07FF] = val
	default:
		idx := addr & 0x1F
		if idx == 0x10 || idx == 0x14 || idx == 0x18 || idx == 0x1C {
			idx &= 0x0F
		}
		p.palette[idx] = val
	}
}

// DMAWrite stores one byte of an OAM DMA transfer, offset from the current
// OAMADDR and wrapping within OAM.
func (p *PPU) DMAWrite(i int, val uint8) {
	p.oam[uint8(i)+p.oamAddr] = val
}

func (p *PPU) SaveState(w *snapshot.Writer) {
	w.U8(p.ctrl)
	w.U8(p.mask)
	w.U8(p.status)
	w.U8(p.oamAddr)

	w.U16(p.v)
	w.U16(p.t)
	w.U8(p.x)
	w.Bool(p.w)
	w.U8(p.dataBuffer)

	w.I32(int32(p.scanline))
	w.I32(int32(p.cycle))
	w.U64(p.frame)
	w.Bool(p.oddFrame)

	w.Bool(p.nmiOccurred)
	w.Bool(p.nmiOutput)
	w.Bool(p.nmiLatched)
	w.U8(p.nmiDelay)
	w.Bool(p.vblSuppress)
	w.Bool(p.suppressNMI)

	w.U16(p.bgShiftPatternLo)
	w.U16(p.bgShiftPatternHi)
	w.U16(p.bgShiftAttribLo)
	w.U16(p.bgShiftAttribHi)
	w.U8(p.bgNextTileID)
	w.U8(p.bgNextTileAttrib)
	w.U8(p.bgNextTileLo)
	w.U8(p.bgNextTileHi)

	w.Raw(p.oam[:])
	for i := range p.spr {
		w.U8(p.spr[i].y)
		w.U8(p.spr[i].tile)
		w.U8(p.spr[i].attr)
		w.U8(p.spr[i].x)
		w.U8(p.sprShiftLo[i])
		w.U8(p.sprShiftHi[i])
	}
	w.I32(int32(p.sprCount))
	w.I32(int32(p.sprEvalLine))
	w.Bool(p.sprZeroHitPoss)
	w.Bool(p.sprZeroRender)

	w.Raw(p.nametable[:])
	w.Raw(p.palette[:])

	w.U8(p.maskPrev)
	w.U32(p.maskWriteCycle)
}

func (p *PPU) LoadState(r *snapshot.Reader) {
	p.ctrl = r.U8()
	p.mask = r.U8()
	p.status = r.U8()
	p.oamAddr = r.U8()

	p.v = r.U16()
	p.t = r.U16()
	p.x = r.U8()
	p.w = r.Bool()
	p.dataBuffer = r.U8()

	p.scanline = int(r.I32())
	p.cycle = int(r.I32())
	p.frame = r.U64()
	p.oddFrame = r.Bool()

	p.nmiOccurred = r.Bool()
	p.nmiOutput = r.Bool()
	p.nmiLatched = r.Bool()
	p.nmiDelay = r.U8()
	p.vblSuppress = r.Bool()
	p.suppressNMI = r.Bool()
	p.nmiTriggered = false
	p.nmiDelayed = false
	p.frameComplete = false

	p.bgShiftPatternLo = r.U16()
	p.bgShiftPatternHi = r.U16()
	p.bgShiftAttribLo = r.U16()
	p.bgShiftAttribHi = r.U16()
	p.bgNextTileID = r.U8()
	p.bgNextTileAttrib = r.U8()
	p.bgNextTileLo = r.U8()
	p.bgNextTileHi = r.U8()

	r.Raw(p.oam[:])
	for i := range p.spr {
		p.spr[i].y = r.U8()
		p.spr[i].tile = r.U8()
		p.spr[i].attr = r.U8()
		p.spr[i].x = r.U8()
		p.sprShiftLo[i] = r.U8()
		p.sprShiftHi[i] = r.U8()
	}
	p.sprCount = int(r.I32())
	p.sprEvalLine = int(r.I32())
	p.sprZeroHitPoss = r.Bool()
	p.sprZeroRender = r.Bool()

	r.Raw(p.nametable[:])
	r.Raw(p.palette[:])

	p.maskPrev = r.U8()
	p.maskWriteCycle = r.U32()
}
