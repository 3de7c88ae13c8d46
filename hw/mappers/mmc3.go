package mappers

import (
	"github.com/jshorfjr/veloce/hw/snapshot"
	"github.com/jshorfjr/veloce/ines"
)

// The MMC3 scanline counter only clocks on an A12 rising edge preceded by at
// least this many PPU cycles with A12 low. Shorter pulses (the 8-cycle
// toggles inside a sprite or background fetch group) are filtered out.
const a12FilterCycles = 16

// Delay, in PPU cycles, between the counter reaching zero and the IRQ line
// being visible to the CPU.
const mmc3IRQDelayCycles = 0

// MMC3 (mapper 4): four 8KiB PRG slots, eight 1KiB CHR slots, switchable
// mirroring and a scanline IRQ counter clocked by filtered A12 rising edges.
type mmc3 struct {
	base

	bankSelect uint8
	prgMode    bool
	chrMode    bool
	regs       [8]uint8

	prgOff [4]uint32
	chrOff [8]uint32

	irqCounter uint8
	irqLatch   uint8
	irqEnabled bool
	irqPending bool
	irqReload  bool

	// A12 filter state.
	lastA12         bool
	lastA12Cycle    uint32
	irqPendingAt    uint32
	irqPendingArmed bool
}

func newMMC3(cart *Cartridge, mirror ines.NTMirroring) Mapper {
	m := &mmc3{base: base{cart: cart, mirror: mirror}}
	m.Reset()
	return m
}

func (m *mmc3) Reset() {
	m.bankSelect = 0
	m.prgMode = false
	m.chrMode = false
	for i := range m.regs {
		m.regs[i] = 0
	}

	m.irqCounter = 0
	m.irqLatch = 0
	m.irqEnabled = false
	m.irqPending = false
	m.irqReload = false

	m.lastA12 = false
	m.lastA12Cycle = 0
	m.irqPendingAt = 0
	m.irqPendingArmed = false

	m.updateBanks()
}

func (m *mmc3) updateBanks() {
	prgBanks := uint32(len(m.cart.PRGROM)) / 0x2000
	if prgBanks == 0 {
		prgBanks = 1
	}

	// MMC3 has 6 PRG address lines.
	r6 := uint32(m.regs[6]&0x3F) % prgBanks
	r7 := uint32(m.regs[7]&0x3F) % prgBanks
	secondLast := (prgBanks - 2) % prgBanks
	last := (prgBanks - 1) % prgBanks

	if m.prgMode {
		m.prgOff = [4]uint32{secondLast * 0x2000, r7 * 0x2000, r6 * 0x2000, last * 0x2000}
	} else {
		m.prgOff = [4]uint32{r6 * 0x2000, r7 * 0x2000, secondLast * 0x2000, last * 0x2000}
	}

	chrBanks := uint32(len(m.cart.CHR)) / 0x400
	if chrBanks == 0 {
		chrBanks = 1
	}
	chr := func(n uint32) uint32 { return (n % chrBanks) * 0x400 }

	// R0/R1 are 2KiB banks (even), R2-R5 are 1KiB. chrMode swaps the halves.
	if m.chrMode {
		m.chrOff = [8]uint32{
			chr(uint32(m.regs[2])),
			chr(uint32(m.regs[3])),
			chr(uint32(m.regs[4])),
			chr(uint32(m.regs[5])),
			chr(uint32(m.regs[0] & 0xFE)),
			chr(uint32(m.regs[0]&0xFE) + 1),
			chr(uint32(m.regs[1] & 0xFE)),
			chr(uint32(m.regs[1]&0xFE) + 1),
		}
	} else {
		m.chrOff = [8]uint32{
			chr(uint32(m.regs[0] & 0xFE)),
			chr(uint32(m.regs[0]&0xFE) + 1),
			chr(uint32(m.regs[1] & 0xFE)),
			chr(uint32(m.regs[1]&0xFE) + 1),
			chr(uint32(m.regs[2])),
			chr(uint32(m.regs[3])),
			chr(uint32(m.regs[4])),
			chr(uint32(m.regs[5])),
		}
	}
}

func (m *mmc3) CPURead(addr uint16) uint8 {
	switch {
	case addr >= 0x6000 && addr < 0x8000:
		return m.prgRAMRead(addr)
	case addr >= 0x8000:
		slot := (addr - 0x8000) / 0x2000
		return m.prgAt(m.prgOff[slot] + uint32(addr&0x1FFF))
	}
	return 0
}

func (m *mmc3) CPUWrite(addr uint16, val uint8) {
	if addr >= 0x6000 && addr < 0x8000 {
		m.prgRAMWrite(addr, val)
		return
	}
	if addr < 0x8000 {
		return
	}

	even := addr&1 == 0
	switch {
	case addr < 0xA000:
		if even { // bank select
			m.bankSelect = val & 0x07
			m.prgMode = val&0x40 != 0
			m.chrMode = val&0x80 != 0
		} else { // bank data
			m.regs[m.bankSelect] = val
		}
		m.updateBanks()

	case addr < 0xC000:
		if even {
			if val&1 != 0 {
				m.mirror = ines.HorzMirroring
			} else {
				m.mirror = ines.VertMirroring
			}
		}
		// odd: PRG RAM protect, not emulated

	case addr < 0xE000:
		if even {
			m.irqLatch = val
		} else {
			m.irqReload = true
		}

	default:
		if even {
			// IRQ disable also acknowledges any pending IRQ.
			m.irqEnabled = false
			m.irqPending = false
			m.irqPendingArmed = false
		} else {
			m.irqEnabled = true
		}
	}
}

func (m *mmc3) PPURead(addr uint16, _ uint32) uint8 {
	if addr < 0x2000 {
		slot := addr / 0x400
		return m.chrAt(m.chrOff[slot] + uint32(addr&0x3FF))
	}
	return 0
}

func (m *mmc3) PPUWrite(addr uint16, val uint8) {
	if addr < 0x2000 {
		slot := addr / 0x400
		m.chrSet(m.chrOff[slot]+uint32(addr&0x3FF), val)
	}
}

// clockA12 feeds one A12 level change into the filter, clocking the scanline
// counter on rising edges that follow a long-enough low period.
func (m *mmc3) clockA12(a12 bool, frameCycle uint32) {
	if !a12 {
		if m.lastA12 {
			// falling edge: remember when A12 went low
			m.lastA12Cycle = frameCycle
		}
	} else if !m.lastA12 {
		cyclesLow := frameCycle - m.lastA12Cycle
		if frameCycle < m.lastA12Cycle {
			cyclesLow = frameCycle + NumFrameCycles - m.lastA12Cycle
		}

		if cyclesLow >= a12FilterCycles {
			if m.irqCounter == 0 || m.irqReload {
				m.irqCounter = m.irqLatch
				m.irqReload = false
			} else {
				m.irqCounter--
			}

			if m.irqCounter == 0 && m.irqEnabled {
				if !m.irqPendingArmed && !m.irqPending {
					m.irqPendingAt = frameCycle
					m.irqPendingArmed = true
				}
			}
		}
	}
	m.lastA12 = a12
}

func (m *mmc3) NotifyPPUAddressBus(addr uint16, frameCycle uint32) {
	a12 := addr&0x1000 != 0
	if a12 == m.lastA12 {
		return
	}
	m.clockA12(a12, frameCycle)
}

func (m *mmc3) NotifyPPUAddrChange(_, cur uint16, frameCycle uint32) {
	// Only CHR-range addresses drive A12.
	if cur&0x3FFF >= 0x2000 {
		return
	}
	m.clockA12(cur&0x1000 != 0, frameCycle)
}

func (m *mmc3) NotifyFrameStart() {
	// Reset the frame-relative cycle references so the filter never compares
	// cycles across frame boundaries. The A12 wire itself does not reset.
	m.lastA12Cycle = 0
	m.irqPendingAt = 0
	m.irqPendingArmed = false
}

func (m *mmc3) IRQPending(frameCycle uint32) bool {
	if m.irqPending {
		return true
	}
	if m.irqPendingArmed && m.irqEnabled {
		elapsed := frameCycle - m.irqPendingAt
		if frameCycle < m.irqPendingAt {
			elapsed = frameCycle + NumFrameCycles - m.irqPendingAt
		}
		if elapsed >= mmc3IRQDelayCycles {
			m.irqPending = true
			m.irqPendingArmed = false
			return true
		}
	}
	return false
}

func (m *mmc3) IRQClear() {
	m.irqPending = false
}

// Scanline is the legacy scanline-counter fallback. Counting is driven by the
// A12 filter, so this is a no-op.
func (m *mmc3) Scanline() {}

func (m *mmc3) SaveState(w *snapshot.Writer) {
	w.U8(m.bankSelect)
	w.Bool(m.prgMode)
	w.Bool(m.chrMode)
	for _, r := range m.regs {
		w.U8(r)
	}
	w.U8(m.irqCounter)
	w.U8(m.irqLatch)
	w.Bool(m.irqEnabled)
	w.Bool(m.irqPending)
	w.Bool(m.irqReload)
	w.U8(uint8(m.mirror))
	w.Bool(m.lastA12)
	w.U32(m.lastA12Cycle)
}

func (m *mmc3) LoadState(r *snapshot.Reader) {
	m.bankSelect = r.U8()
	m.prgMode = r.Bool()
	m.chrMode = r.Bool()
	for i := range m.regs {
		m.regs[i] = r.U8()
	}
	m.irqCounter = r.U8()
	m.irqLatch = r.U8()
	m.irqEnabled = r.Bool()
	m.irqPending = r.Bool()
	m.irqReload = r.Bool()
	m.mirror = ines.NTMirroring(r.U8())
	m.lastA12 = r.Bool()
	m.lastA12Cycle = r.U32()
	m.irqPendingArmed = false
	m.updateBanks()
}
