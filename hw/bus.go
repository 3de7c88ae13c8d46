package hw

import (
	"github.com/jshorfjr/veloce/emu/log"
	"github.com/jshorfjr/veloce/hw/apu"
	"github.com/jshorfjr/veloce/hw/mappers"
	"github.com/jshorfjr/veloce/hw/snapshot"
)

// VirtualButton is the host-side 32-bit input encoding. Only the buttons a
// NES pad carries are translated; the rest of the mask is ignored.
type VirtualButton uint32

const (
	BtnA      VirtualButton = 0x001
	BtnB      VirtualButton = 0x002
	BtnX      VirtualButton = 0x004
	BtnY      VirtualButton = 0x008
	BtnL      VirtualButton = 0x010
	BtnR      VirtualButton = 0x020
	BtnStart  VirtualButton = 0x040
	BtnSelect VirtualButton = 0x080
	BtnUp     VirtualButton = 0x100
	BtnDown   VirtualButton = 0x200
	BtnLeft   VirtualButton = 0x400
	BtnRight  VirtualButton = 0x800
)

// nesButtons translates a VirtualButton mask to the NES-native shift order:
// A, B, Select, Start, Up, Down, Left, Right.
func nesButtons(buttons VirtualButton) uint8 {
	var b uint8
	if buttons&BtnA != 0 {
		b |= 0x01
	}
	if buttons&BtnB != 0 {
		b |= 0x02
	}
	if buttons&BtnSelect != 0 {
		b |= 0x04
	}
	if buttons&BtnStart != 0 {
		b |= 0x08
	}
	if buttons&BtnUp != 0 {
		b |= 0x10
	}
	if buttons&BtnDown != 0 {
		b |= 0x20
	}
	if buttons&BtnLeft != 0 {
		b |= 0x40
	}
	if buttons&BtnRight != 0 {
		b |= 0x80
	}
	return b
}

// Bus is the CPU-visible memory fabric: internal RAM, the PPU/APU register
// windows, controller ports, OAM DMA and the cartridge space.
type Bus struct {
	RAM [0x800]uint8

	PPU  *PPU
	APU  *apu.APU
	Cart *mappers.Cartridge

	padState  [2]uint8 // latched NES-native button state
	padShift  [2]uint8
	padStrobe bool

	pendingDMACycles int
}

func NewBus(ppu *PPU, sound *apu.APU) *Bus {
	return &Bus{PPU: ppu, APU: sound}
}

// Read8 services a CPU read anywhere in the 64KiB address space. Unmapped
// regions return 0.
func (b *Bus) Read8(addr uint16) uint8 {
	switch {
	case addr < 0x2000:
		return b.RAM[addr&0x07FF]

	case addr < 0x4000:
		if b.PPU != nil {
			return b.PPU.CPURead(addr & 0x0007)
		}
		return 0

	case addr < 0x4020:
		switch addr {
		case 0x4016:
			return b.readController(0)
		case 0x4017:
			return b.readController(1)
		default:
			if b.APU != nil {
				return b.APU.ReadReg(addr)
			}
			return 0
		}

	default:
		if b.Cart != nil {
			return b.Cart.Mapper.CPURead(addr)
		}
		return 0
	}
}

// Write8 services a CPU write anywhere in the 64KiB address space.
func (b *Bus) Write8(addr uint16, val uint8) {
	switch {
	case addr < 0x2000:
		b.RAM[addr&0x07FF] = val

	case addr < 0x4000:
		if b.PPU != nil {
			b.PPU.CPUWrite(addr&0x0007, val)
		}

	case addr < 0x4020:
		switch addr {
		case 0x4014:
			b.oamDMA(val)
		case 0x4016:
			b.writeStrobe(val)
		default:
			if b.APU != nil {
				b.APU.WriteReg(addr, val)
			}
		}

	default:
		if b.Cart != nil {
			b.Cart.Mapper.CPUWrite(addr, val)
		}
	}
}

// SetControllerState latches the host input for one pad. While the strobe is
// high the shift register follows the latch continuously.
func (b *Bus) SetControllerState(pad int, buttons VirtualButton) {
	if pad < 0 || pad > 1 {
		return
	}
	b.padState[pad] = nesButtons(buttons)
	if b.padStrobe {
		b.padShift[pad] = b.padState[pad]
	}
}

func (b *Bus) writeStrobe(val uint8) {
	b.padStrobe = val&1 != 0
	if b.padStrobe {
		b.padShift[0] = b.padState[0]
		b.padShift[1] = b.padState[1]
	}
}

func (b *Bus) readController(pad int) uint8 {
	if b.padStrobe {
		// Strobe high: reads always see the A button.
		return b.padState[pad]&1 | 0x40
	}
	data := b.padShift[pad] & 1
	b.padShift[pad] = b.padShift[pad]>>1 | 0x80
	return data | 0x40 // open bus bit
}

// oamDMA copies a 256-byte page into PPU OAM via 256 bus reads. The 513
// cycle cost is reported through PendingDMACycles for the frame loop to
// account.
func (b *Bus) oamDMA(page uint8) {
	addr := uint16(page) << 8
	for i := 0; i < 256; i++ {
		b.PPU.DMAWrite(i, b.Read8(addr+uint16(i)))
	}
	b.pendingDMACycles = 513

	log.ModMem.DebugZ("OAM DMA").Hex8("page", page).End()
}

// PendingDMACycles returns and clears the cycle cost of a DMA triggered by
// the last instruction.
func (b *Bus) PendingDMACycles() int {
	cycles := b.pendingDMACycles
	b.pendingDMACycles = 0
	return cycles
}

func (b *Bus) SaveState(w *snapshot.Writer) {
	w.Raw(b.RAM[:])
	w.U8(b.padState[0])
	w.U8(b.padState[1])
	w.U8(b.padShift[0])
	w.U8(b.padShift[1])
	w.Bool(b.padStrobe)
}

func (b *Bus) LoadState(r *snapshot.Reader) {
	r.Raw(b.RAM[:])
	b.padState[0] = r.U8()
	b.padState[1] = r.U8()
	b.padShift[0] = r.U8()
	b.padShift[1] = r.U8()
	b.padStrobe = r.Bool()
	b.pendingDMACycles = 0
}
