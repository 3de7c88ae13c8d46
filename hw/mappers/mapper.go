// Package mappers implements the cartridge and the mapper boards sitting in
// the CPU $4020-$FFFF and PPU $0000-$1FFF address spaces.
package mappers

import (
	"github.com/jshorfjr/veloce/emu/log"
	"github.com/jshorfjr/veloce/hw/snapshot"
	"github.com/jshorfjr/veloce/ines"
)

var modMapper = log.ModMapper

// NumFrameCycles is the number of PPU cycles per frame; frame-cycle values
// passed to the mapper wrap at this boundary.
const NumFrameCycles = 89342

// Mapper is the board-specific part of a cartridge: address translation,
// bank switching, nametable mirroring and (for some boards) IRQ generation.
//
// The frameCycle argument of PPU-side methods is scanline*341+cycle, used by
// boards that watch the PPU address bus (MMC3 A12 filtering).
type Mapper interface {
	CPURead(addr uint16) uint8
	CPUWrite(addr uint16, val uint8)

	PPURead(addr uint16, frameCycle uint32) uint8
	PPUWrite(addr uint16, val uint8)

	Mirroring() ines.NTMirroring

	IRQPending(frameCycle uint32) bool
	IRQClear()
	Scanline()

	NotifyPPUAddrChange(old, new uint16, frameCycle uint32)
	NotifyPPUAddressBus(addr uint16, frameCycle uint32)
	NotifyFrameStart()

	Reset()

	SaveState(w *snapshot.Writer)
	LoadState(r *snapshot.Reader)
}

// base carries the memories every board accesses and provides no-op defaults
// for the optional parts of the Mapper interface.
type base struct {
	cart   *Cartridge
	mirror ines.NTMirroring
}

func (b *base) Mirroring() ines.NTMirroring { return b.mirror }

func (b *base) IRQPending(uint32) bool                    { return false }
func (b *base) IRQClear()                                 {}
func (b *base) Scanline()                                 {}
func (b *base) NotifyPPUAddrChange(_, _ uint16, _ uint32) {}
func (b *base) NotifyPPUAddressBus(_ uint16, _ uint32)    {}
func (b *base) NotifyFrameStart()                         {}
func (b *base) Reset()                                    {}
func (b *base) SaveState(*snapshot.Writer)                {}
func (b *base) LoadState(*snapshot.Reader)                {}

// prgRAMRead services $6000-$7FFF reads.
func (b *base) prgRAMRead(addr uint16) uint8 {
	if len(b.cart.PRGRAM) == 0 {
		return 0
	}
	return b.cart.PRGRAM[addr&0x1FFF]
}

// prgRAMWrite services $6000-$7FFF writes.
func (b *base) prgRAMWrite(addr uint16, val uint8) {
	if len(b.cart.PRGRAM) == 0 {
		return
	}
	b.cart.PRGRAM[addr&0x1FFF] = val
}

// prgAt reads PRG ROM at the given byte offset, wrapping out-of-range
// offsets back into the ROM.
func (b *base) prgAt(off uint32) uint8 {
	return b.cart.PRGROM[off%uint32(len(b.cart.PRGROM))]
}

// chrAt reads CHR at the given byte offset, wrapping.
func (b *base) chrAt(off uint32) uint8 {
	return b.cart.CHR[off%uint32(len(b.cart.CHR))]
}

// chrSet writes CHR RAM at the given byte offset. ROM boards ignore it.
func (b *base) chrSet(off uint32, val uint8) {
	if !b.cart.HasCHRRAM {
		return
	}
	b.cart.CHR[off%uint32(len(b.cart.CHR))] = val
}
