package mappers

import (
	"github.com/jshorfjr/veloce/hw/snapshot"
	"github.com/jshorfjr/veloce/ines"
)

// MMC4 (mapper 10): same CHR latch scheme as MMC2, but 16KiB switchable PRG
// at $8000 with the last 16KiB fixed, and latch 0 triggering on the ranges
// $0FD8-$0FDF / $0FE8-$0FEF rather than single addresses.
type mmc4 struct {
	base
	chrLatches

	prgBank  uint8
	prgOff   uint32
	fixedOff uint32
}

func newMMC4(cart *Cartridge, mirror ines.NTMirroring) Mapper {
	m := &mmc4{base: base{cart: cart, mirror: mirror}}
	m.Reset()
	return m
}

func (m *mmc4) Reset() {
	m.prgBank = 0
	m.prgOff = 0
	m.fixedOff = uint32(len(m.cart.PRGROM)) - 0x4000
	m.chrLatches.reset(uint32(len(m.cart.CHR)))
}

func (m *mmc4) CPURead(addr uint16) uint8 {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		return m.prgRAMRead(addr)
	case addr >= 0x8000 && addr < 0xC000:
		return m.prgAt(m.prgOff + uint32(addr&0x3FFF))
	case addr >= 0xC000:
		return m.prgAt(m.fixedOff + uint32(addr&0x3FFF))
	}
	return 0
}

func (m *mmc4) CPUWrite(addr uint16, val uint8) {
	if addr >= 0x6000 && addr < 0x8000 {
		m.prgRAMWrite(addr, val)
		return
	}
	if addr < 0xA000 {
		return
	}

	chrSize := uint32(len(m.cart.CHR))
	switch addr & 0xF000 {
	case 0xA000:
		m.prgBank = val & 0x0F
		m.prgOff = uint32(m.prgBank) * 0x4000 % uint32(len(m.cart.PRGROM))
	case 0xB000:
		m.bank0FD = val & 0x1F
		m.update(chrSize)
	case 0xC000:
		m.bank0FE = val & 0x1F
		m.update(chrSize)
	case 0xD000:
		m.bank1FD = val & 0x1F
		m.update(chrSize)
	case 0xE000:
		m.bank1FE = val & 0x1F
		m.update(chrSize)
	case 0xF000:
		if val&0x01 != 0 {
			m.mirror = ines.HorzMirroring
		} else {
			m.mirror = ines.VertMirroring
		}
	}
}

func (m *mmc4) PPURead(addr uint16, _ uint32) uint8 {
	if addr >= 0x2000 {
		return 0
	}

	var val uint8
	chrSize := uint32(len(m.cart.CHR))
	if addr < 0x1000 {
		val = m.chrAt(m.chrOff0 + uint32(addr&0x0FFF))
		switch addr & 0x0FF8 {
		case 0x0FD8:
			m.latch0 = false
			m.update(chrSize)
		case 0x0FE8:
			m.latch0 = true
			m.update(chrSize)
		}
	} else {
		val = m.chrAt(m.chrOff1 + uint32(addr&0x0FFF))
		switch addr & 0x0FF8 {
		case 0x0FD8:
			m.latch1 = false
			m.update(chrSize)
		case 0x0FE8:
			m.latch1 = true
			m.update(chrSize)
		}
	}
	return val
}

func (m *mmc4) PPUWrite(addr uint16, val uint8) {
	if addr >= 0x2000 {
		return
	}
	if addr < 0x1000 {
		m.chrSet(m.chrOff0+uint32(addr&0x0FFF), val)
	} else {
		m.chrSet(m.chrOff1+uint32(addr&0x0FFF), val)
	}
}

func (m *mmc4) SaveState(w *snapshot.Writer) {
	w.U8(m.prgBank)
	m.chrLatches.saveState(w)
	w.U8(uint8(m.mirror))
}

func (m *mmc4) LoadState(r *snapshot.Reader) {
	m.prgBank = r.U8()
	m.chrLatches.loadState(r, uint32(len(m.cart.CHR)))
	m.mirror = ines.NTMirroring(r.U8())
	m.prgOff = uint32(m.prgBank) * 0x4000 % uint32(len(m.cart.PRGROM))
}
