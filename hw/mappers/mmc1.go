package mappers

import (
	"github.com/jshorfjr/veloce/hw/snapshot"
	"github.com/jshorfjr/veloce/ines"
)

// MMC1 (mapper 1): serial 5-bit shift register feeding four internal
// registers (control, CHR bank 0, CHR bank 1, PRG bank). Three PRG modes,
// two CHR modes, four mirroring modes.
type mmc1 struct {
	base

	shift      uint8
	shiftCount uint8

	control  uint8
	chrBank0 uint8
	chrBank1 uint8
	prgBank  uint8

	prgOff0 uint32
	prgOff1 uint32
	chrOff0 uint32
	chrOff1 uint32
}

func newMMC1(cart *Cartridge, mirror ines.NTMirroring) Mapper {
	m := &mmc1{base: base{cart: cart, mirror: mirror}}
	m.Reset()
	return m
}

func (m *mmc1) Reset() {
	m.shift = 0x10
	m.shiftCount = 0
	m.control = 0x0C // PRG fixed at $C000, 8KiB CHR mode
	m.chrBank0 = 0
	m.chrBank1 = 0
	m.prgBank = 0
	m.updateBanks()
}

func (m *mmc1) CPURead(addr uint16) uint8 {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		return m.prgRAMRead(addr)
	case addr >= 0x8000 && addr < 0xC000:
		return m.prgAt(m.prgOff0 + uint32(addr&0x3FFF))
	case addr >= 0xC000:
		return m.prgAt(m.prgOff1 + uint32(addr&0x3FFF))
	}
	return 0
}

func (m *mmc1) CPUWrite(addr uint16, val uint8) {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		m.prgRAMWrite(addr, val)
	case addr >= 0x8000:
		m.writeRegister(addr, val)
	}
}

func (m *mmc1) writeRegister(addr uint16, val uint8) {
	// Bit 7 resets the shift register and forces PRG mode 3.
	if val&0x80 != 0 {
		m.shift = 0x10
		m.shiftCount = 0
		m.control |= 0x0C
		m.updateBanks()
		return
	}

	m.shift = (val&1)<<4 | m.shift>>1
	m.shiftCount++
	if m.shiftCount < 5 {
		return
	}

	reg := m.shift
	switch {
	case addr < 0xA000:
		m.control = reg
		switch m.control & 0x03 {
		case 0:
			m.mirror = ines.OnlyAScreen
		case 1:
			m.mirror = ines.OnlyBScreen
		case 2:
			m.mirror = ines.VertMirroring
		case 3:
			m.mirror = ines.HorzMirroring
		}
	case addr < 0xC000:
		m.chrBank0 = reg
	case addr < 0xE000:
		m.chrBank1 = reg
	default:
		m.prgBank = reg & 0x0F
	}

	m.updateBanks()
	m.shift = 0x10
	m.shiftCount = 0

	modMapper.DebugZ("MMC1 register write").
		Hex16("addr", addr).
		Hex8("val", reg).
		Hex8("control", m.control).
		End()
}

func (m *mmc1) updateBanks() {
	prgSize := uint32(len(m.cart.PRGROM))
	chrSize := uint32(len(m.cart.CHR))

	switch prgMode := (m.control >> 2) & 0x03; prgMode {
	case 0, 1:
		// 32KiB mode, low bit of the bank number ignored.
		m.prgOff0 = uint32(m.prgBank&0x0E) * 0x4000
		m.prgOff1 = m.prgOff0 + 0x4000
	case 2:
		m.prgOff0 = 0
		m.prgOff1 = uint32(m.prgBank) * 0x4000
	case 3:
		m.prgOff0 = uint32(m.prgBank) * 0x4000
		m.prgOff1 = prgSize - 0x4000
	}
	m.prgOff0 %= prgSize
	m.prgOff1 %= prgSize

	if m.control&0x10 != 0 {
		// two independent 4KiB banks
		m.chrOff0 = uint32(m.chrBank0) * 0x1000 % chrSize
		m.chrOff1 = uint32(m.chrBank1) * 0x1000 % chrSize
	} else {
		// one 8KiB bank
		m.chrOff0 = uint32(m.chrBank0&0x1E) * 0x1000 % chrSize
		m.chrOff1 = m.chrOff0 + 0x1000
		if m.chrOff1 >= chrSize {
			m.chrOff1 = 0
		}
	}
}

func (m *mmc1) PPURead(addr uint16, _ uint32) uint8 {
	switch {
	case addr < 0x1000:
		return m.chrAt(m.chrOff0 + uint32(addr))
	case addr < 0x2000:
		return m.chrAt(m.chrOff1 + uint32(addr&0x0FFF))
	}
	return 0
}

func (m *mmc1) PPUWrite(addr uint16, val uint8) {
	switch {
	case addr < 0x1000:
		m.chrSet(m.chrOff0+uint32(addr), val)
	case addr < 0x2000:
		m.chrSet(m.chrOff1+uint32(addr&0x0FFF), val)
	}
}

func (m *mmc1) SaveState(w *snapshot.Writer) {
	w.U8(m.shift)
	w.U8(m.shiftCount)
	w.U8(m.control)
	w.U8(m.chrBank0)
	w.U8(m.chrBank1)
	w.U8(m.prgBank)
	w.U8(uint8(m.mirror))
}

func (m *mmc1) LoadState(r *snapshot.Reader) {
	m.shift = r.U8()
	m.shiftCount = r.U8()
	m.control = r.U8()
	m.chrBank0 = r.U8()
	m.chrBank1 = r.U8()
	m.prgBank = r.U8()
	m.mirror = ines.NTMirroring(r.U8())
	m.updateBanks()
}
