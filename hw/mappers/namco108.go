package mappers

import (
	"github.com/jshorfjr/veloce/hw/snapshot"
	"github.com/jshorfjr/veloce/ines"
)

// Namco 108 / DxROM (mapper 206): the MMC3 ancestor. Same bank-select /
// bank-data register pair, but no IRQ, no mirroring control, no PRG mode bit:
// R6/R7 switch $8000/$A000, the last two 8KiB banks are fixed.
type namco108 struct {
	base

	bankSelect uint8
	regs       [8]uint8

	prgOff [4]uint32
	chrOff [8]uint32
}

func newNamco108(cart *Cartridge, mirror ines.NTMirroring) Mapper {
	m := &namco108{base: base{cart: cart, mirror: mirror}}
	m.Reset()
	return m
}

func (m *namco108) Reset() {
	m.bankSelect = 0
	for i := range m.regs {
		m.regs[i] = 0
	}
	m.updateBanks()
}

func (m *namco108) updateBanks() {
	prgSize := uint32(len(m.cart.PRGROM))
	m.prgOff[0] = uint32(m.regs[6]) * 0x2000 % prgSize
	m.prgOff[1] = uint32(m.regs[7]) * 0x2000 % prgSize
	m.prgOff[2] = prgSize - 0x4000
	m.prgOff[3] = prgSize - 0x2000

	chrSize := uint32(len(m.cart.CHR))
	m.chrOff[0] = uint32(m.regs[0]&0xFE) * 0x400 % chrSize
	m.chrOff[1] = uint32(m.regs[0]|0x01) * 0x400 % chrSize
	m.chrOff[2] = uint32(m.regs[1]&0xFE) * 0x400 % chrSize
	m.chrOff[3] = uint32(m.regs[1]|0x01) * 0x400 % chrSize
	m.chrOff[4] = uint32(m.regs[2]) * 0x400 % chrSize
	m.chrOff[5] = uint32(m.regs[3]) * 0x400 % chrSize
	m.chrOff[6] = uint32(m.regs[4]) * 0x400 % chrSize
	m.chrOff[7] = uint32(m.regs[5]) * 0x400 % chrSize
}

func (m *namco108) CPURead(addr uint16) uint8 {
	if addr >= 0x8000 {
		slot := (addr - 0x8000) / 0x2000
		return m.prgAt(m.prgOff[slot] + uint32(addr&0x1FFF))
	}
	return 0
}

func (m *namco108) CPUWrite(addr uint16, val uint8) {
	if addr < 0x8000 || addr >= 0xA000 {
		return
	}
	if addr&1 != 0 {
		reg := m.bankSelect & 0x07
		switch reg {
		case 6, 7:
			m.regs[reg] = val & 0x0F
		default:
			m.regs[reg] = val & 0x3F
		}
		m.updateBanks()
	} else {
		// CHR A12 inversion and PRG mode bits of the later MMC3 don't exist
		// on this board.
		m.bankSelect = val
	}
}

func (m *namco108) PPURead(addr uint16, _ uint32) uint8 {
	if addr < 0x2000 {
		slot := addr / 0x400
		return m.chrAt(m.chrOff[slot] + uint32(addr&0x3FF))
	}
	return 0
}

func (m *namco108) PPUWrite(addr uint16, val uint8) {
	if addr < 0x2000 {
		slot := addr / 0x400
		m.chrSet(m.chrOff[slot]+uint32(addr&0x3FF), val)
	}
}

func (m *namco108) SaveState(w *snapshot.Writer) {
	w.U8(m.bankSelect)
	for _, r := range m.regs {
		w.U8(r)
	}
}

func (m *namco108) LoadState(r *snapshot.Reader) {
	m.bankSelect = r.U8()
	for i := range m.regs {
		m.regs[i] = r.U8()
	}
	m.updateBanks()
}
