package mappers

import (
	"github.com/jshorfjr/veloce/hw/snapshot"
	"github.com/jshorfjr/veloce/ines"
)

// chrLatches is the CHR switching machinery shared by MMC2 and MMC4: each
// 4KiB half of the pattern space has an $FD and an $FE bank, selected by a
// latch that toggles when the PPU fetches specific tile rows. The latch
// updates after the triggering read, so the triggering tile still renders
// from the old bank.
type chrLatches struct {
	bank0FD uint8
	bank0FE uint8
	bank1FD uint8
	bank1FE uint8

	// true selects the $FE bank. Power-on state is $FE.
	latch0 bool
	latch1 bool

	chrOff0 uint32
	chrOff1 uint32
}

func (cl *chrLatches) reset(chrSize uint32) {
	cl.bank0FD = 0
	cl.bank0FE = 0
	cl.bank1FD = 0
	cl.bank1FE = 0
	cl.latch0 = true
	cl.latch1 = true
	cl.update(chrSize)
}

func (cl *chrLatches) update(chrSize uint32) {
	bank0 := cl.bank0FD
	if cl.latch0 {
		bank0 = cl.bank0FE
	}
	bank1 := cl.bank1FD
	if cl.latch1 {
		bank1 = cl.bank1FE
	}
	cl.chrOff0 = uint32(bank0) * 0x1000 % chrSize
	cl.chrOff1 = uint32(bank1) * 0x1000 % chrSize
}

func (cl *chrLatches) saveState(w *snapshot.Writer) {
	w.U8(cl.bank0FD)
	w.U8(cl.bank0FE)
	w.U8(cl.bank1FD)
	w.U8(cl.bank1FE)
	w.Bool(cl.latch0)
	w.Bool(cl.latch1)
}

func (cl *chrLatches) loadState(r *snapshot.Reader, chrSize uint32) {
	cl.bank0FD = r.U8()
	cl.bank0FE = r.U8()
	cl.bank1FD = r.U8()
	cl.bank1FE = r.U8()
	cl.latch0 = r.Bool()
	cl.latch1 = r.Bool()
	cl.update(chrSize)
}

// MMC2 (mapper 9, Punch-Out!!): 8KiB switchable PRG at $8000 with the last
// 24KiB fixed, plus the latch-based CHR switching above. Latch 0 triggers on
// the exact addresses $0FD8/$0FE8; latch 1 on the ranges $1FD8-$1FDF and
// $1FE8-$1FEF.
type mmc2 struct {
	base
	chrLatches

	prgBank  uint8
	prgOff   uint32
	fixedOff uint32
}

func newMMC2(cart *Cartridge, mirror ines.NTMirroring) Mapper {
	m := &mmc2{base: base{cart: cart, mirror: mirror}}
	m.Reset()
	return m
}

func (m *mmc2) Reset() {
	m.prgBank = 0
	m.prgOff = 0
	m.fixedOff = uint32(len(m.cart.PRGROM)) - 3*0x2000
	m.chrLatches.reset(uint32(len(m.cart.CHR)))
}

func (m *mmc2) CPURead(addr uint16) uint8 {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		return m.prgRAMRead(addr)
	case addr >= 0x8000 && addr < 0xA000:
		return m.prgAt(m.prgOff + uint32(addr&0x1FFF))
	case addr >= 0xA000:
		return m.prgAt(m.fixedOff + uint32(addr-0xA000))
	}
	return 0
}

func (m *mmc2) CPUWrite(addr uint16, val uint8) {
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
		m.prgOff = uint32(m.prgBank) * 0x2000 % uint32(len(m.cart.PRGROM))
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

func (m *mmc2) PPURead(addr uint16, _ uint32) uint8 {
	if addr >= 0x2000 {
		return 0
	}

	var val uint8
	chrSize := uint32(len(m.cart.CHR))
	if addr < 0x1000 {
		val = m.chrAt(m.chrOff0 + uint32(addr&0x0FFF))
		switch addr {
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

func (m *mmc2) PPUWrite(addr uint16, val uint8) {
	if addr >= 0x2000 {
		return
	}
	if addr < 0x1000 {
		m.chrSet(m.chrOff0+uint32(addr&0x0FFF), val)
	} else {
		m.chrSet(m.chrOff1+uint32(addr&0x0FFF), val)
	}
}

func (m *mmc2) SaveState(w *snapshot.Writer) {
	w.U8(m.prgBank)
	m.chrLatches.saveState(w)
	w.U8(uint8(m.mirror))
}

func (m *mmc2) LoadState(r *snapshot.Reader) {
	m.prgBank = r.U8()
	m.chrLatches.loadState(r, uint32(len(m.cart.CHR)))
	m.mirror = ines.NTMirroring(r.U8())
	m.prgOff = uint32(m.prgBank) * 0x2000 % uint32(len(m.cart.PRGROM))
}
