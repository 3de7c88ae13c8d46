package mappers

import (
	"testing"

	"github.com/jshorfjr/veloce/ines"
)

// makeCart builds a cartridge whose PRG bytes hold their own 8KiB bank
// number and whose CHR bytes hold their own 1KiB bank number, so bank
// switching asserts read naturally.
func makeCart(t *testing.T, mapper uint8, prgBanks16, chrBanks8 int, flags6 uint8) *Cartridge {
	t.Helper()

	hdr := make([]byte, 16)
	copy(hdr, ines.Magic)
	hdr[4] = uint8(prgBanks16)
	hdr[5] = uint8(chrBanks8)
	hdr[6] = flags6 | mapper<<4
	hdr[7] = mapper & 0xF0

	buf := hdr
	for i := 0; i < prgBanks16*16384; i++ {
		buf = append(buf, uint8(i/0x2000))
	}
	for i := 0; i < chrBanks8*8192; i++ {
		buf = append(buf, uint8(i/0x400))
	}

	rom, err := ines.Decode(buf)
	if err != nil {
		t.Fatal(err)
	}
	cart, err := New(rom)
	if err != nil {
		t.Fatal(err)
	}
	return cart
}

func TestUnsupportedMapper(t *testing.T) {
	hdr := make([]byte, 16)
	copy(hdr, ines.Magic)
	hdr[4] = 1
	hdr[6] = 0xF0 // mapper 15
	buf := append(hdr, make([]byte, 16384)...)

	rom, err := ines.Decode(buf)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := New(rom); err == nil {
		t.Fatal("expected an unsupported mapper error")
	}
}

func TestNROMMirrored16K(t *testing.T) {
	cart := makeCart(t, 0, 1, 1, 0)
	m := cart.Mapper

	// 16KiB PRG is mirrored at $C000.
	if got := m.CPURead(0x8000); got != m.CPURead(0xC000) {
		t.Errorf("16K PRG not mirrored: $8000=%02x $C000=%02x", m.CPURead(0x8000), m.CPURead(0xC000))
	}
}

func TestNROMPRGRAM(t *testing.T) {
	cart := makeCart(t, 0, 1, 1, 0)
	m := cart.Mapper

	m.CPUWrite(0x6123, 0x42)
	if got := m.CPURead(0x6123); got != 0x42 {
		t.Errorf("PRG RAM read = %02x, want 42", got)
	}
}

func TestUxROMBanking(t *testing.T) {
	cart := makeCart(t, 2, 8, 0, 0)
	m := cart.Mapper

	// $C000 is fixed to the last 16KiB bank (8KiB ids 14/15).
	if got := m.CPURead(0xC000); got != 14 {
		t.Errorf("fixed bank low = %d, want 14", got)
	}
	if got := m.CPURead(0xE000); got != 15 {
		t.Errorf("fixed bank high = %d, want 15", got)
	}

	m.CPUWrite(0x8000, 3)
	if got := m.CPURead(0x8000); got != 6 {
		t.Errorf("switchable bank = %d, want 6", got)
	}
}

func TestUxROMCHRRAM(t *testing.T) {
	cart := makeCart(t, 2, 2, 0, 0)
	m := cart.Mapper

	if !cart.HasCHRRAM {
		t.Fatal("UxROM cart should have CHR RAM")
	}
	m.PPUWrite(0x1234, 0x99)
	if got := m.PPURead(0x1234, 0); got != 0x99 {
		t.Errorf("CHR RAM read = %02x, want 99", got)
	}
}

func TestCNROMBanking(t *testing.T) {
	cart := makeCart(t, 3, 2, 4, 0)
	m := cart.Mapper

	m.CPUWrite(0x8000, 2)
	if got := m.PPURead(0x0000, 0); got != 16 {
		t.Errorf("CHR bank read = %d, want 16", got)
	}
}

func TestAxROMPowerOnLastBank(t *testing.T) {
	cart := makeCart(t, 7, 8, 0, 0) // 4 x 32KiB banks
	m := cart.Mapper

	// reset vector must come from the last bank
	if got := m.CPURead(0xFFFC); got != 15 {
		t.Errorf("power-on read = %d, want last bank (15)", got)
	}

	m.CPUWrite(0x8000, 0x01)
	if got := m.CPURead(0x8000); got != 4 {
		t.Errorf("bank 1 read = %d, want 4", got)
	}

	if m.Mirroring() != ines.OnlyAScreen {
		t.Errorf("mirroring = %v, want single-screen A", m.Mirroring())
	}
	m.CPUWrite(0x8000, 0x10)
	if m.Mirroring() != ines.OnlyBScreen {
		t.Errorf("mirroring = %v, want single-screen B", m.Mirroring())
	}
}

// mmc1Write shifts a 5-bit value into an MMC1 register, LSB first.
func mmc1Write(m Mapper, addr uint16, val uint8) {
	for i := 0; i < 5; i++ {
		m.CPUWrite(addr, val>>i&1)
	}
}

func TestMMC1PRGModes(t *testing.T) {
	cart := makeCart(t, 1, 8, 1, 0) // 128KiB PRG
	m := cart.Mapper

	// Power-on: mode 3, $C000 fixed to the last 16KiB bank.
	if got := m.CPURead(0xC000); got != 14 {
		t.Errorf("fixed bank = %d, want 14", got)
	}

	mmc1Write(m, 0xE000, 2) // PRG bank 2 at $8000
	if got := m.CPURead(0x8000); got != 4 {
		t.Errorf("switchable bank = %d, want 4", got)
	}

	// Mode 2: fix first at $8000, switch $C000.
	mmc1Write(m, 0x8000, 0x08)
	mmc1Write(m, 0xE000, 3)
	if got := m.CPURead(0x8000); got != 0 {
		t.Errorf("fixed first bank = %d, want 0", got)
	}
	if got := m.CPURead(0xC000); got != 6 {
		t.Errorf("switchable bank = %d, want 6", got)
	}
}

func TestMMC1ResetBit(t *testing.T) {
	cart := makeCart(t, 1, 4, 1, 0)
	m := cart.Mapper

	// Interrupted serial write then reset: shift register cleared, PRG mode
	// back to fix-last.
	m.CPUWrite(0x8000, 1)
	m.CPUWrite(0x8000, 1)
	m.CPUWrite(0x8000, 0x80)

	if got := m.CPURead(0xC000); got != 6 {
		t.Errorf("after reset, fixed bank = %d, want 6", got)
	}
}

func TestMMC1Mirroring(t *testing.T) {
	cart := makeCart(t, 1, 2, 1, 0)
	m := cart.Mapper

	mmc1Write(m, 0x8000, 0x0E) // vertical
	if m.Mirroring() != ines.VertMirroring {
		t.Errorf("mirroring = %v, want vertical", m.Mirroring())
	}
	mmc1Write(m, 0x8000, 0x0F) // horizontal
	if m.Mirroring() != ines.HorzMirroring {
		t.Errorf("mirroring = %v, want horizontal", m.Mirroring())
	}
}

func TestMMC2LatchSwitching(t *testing.T) {
	cart := makeCart(t, 9, 8, 4, 0)
	m := cart.Mapper

	m.CPUWrite(0xB000, 1) // $FD bank for $0000 half
	m.CPUWrite(0xC000, 2) // $FE bank for $0000 half

	// Power-on latch selects $FE.
	if got := m.PPURead(0x0000, 0); got != 2*4 {
		t.Errorf("initial read = %d, want bank 2", got)
	}

	// Reading $0FD8 flips latch 0 to $FD, effective on the next read.
	m.PPURead(0x0FD8, 0)
	if got := m.PPURead(0x0000, 0); got != 1*4 {
		t.Errorf("after latch, read = %d, want bank 1", got)
	}

	// MMC2 latch 0 only reacts to the exact addresses, not the range.
	m.PPURead(0x0FE9, 0)
	if got := m.PPURead(0x0000, 0); got != 1*4 {
		t.Errorf("latch must not flip on $0FE9")
	}
	m.PPURead(0x0FE8, 0)
	if got := m.PPURead(0x0000, 0); got != 2*4 {
		t.Errorf("after $0FE8, read = %d, want bank 2", got)
	}
}

func TestMMC4LatchRange(t *testing.T) {
	cart := makeCart(t, 10, 8, 4, 0)
	m := cart.Mapper

	m.CPUWrite(0xB000, 1)
	m.CPUWrite(0xC000, 2)

	// MMC4 latch 0 responds to the whole $0FD8-$0FDF range.
	m.PPURead(0x0FDC, 0)
	if got := m.PPURead(0x0000, 0); got != 1*4 {
		t.Errorf("after $0FDC, read = %d, want bank 1", got)
	}
}

func TestColorDreamsBanking(t *testing.T) {
	cart := makeCart(t, 11, 4, 2, 0)
	m := cart.Mapper

	m.CPUWrite(0x8000, 0x11) // PRG bank 1, CHR bank 1
	if got := m.CPURead(0x8000); got != 4 {
		t.Errorf("PRG read = %d, want 4", got)
	}
	if got := m.PPURead(0x0000, 0); got != 8 {
		t.Errorf("CHR read = %d, want 8", got)
	}
}

func TestGxROMBanking(t *testing.T) {
	cart := makeCart(t, 66, 4, 2, 0)
	m := cart.Mapper

	m.CPUWrite(0x8000, 0x11) // CHR bank 1, PRG bank 1
	if got := m.CPURead(0x8000); got != 4 {
		t.Errorf("PRG read = %d, want 4", got)
	}
	if got := m.PPURead(0x0000, 0); got != 8 {
		t.Errorf("CHR read = %d, want 8", got)
	}
}

func TestBNROMBanking(t *testing.T) {
	cart := makeCart(t, 34, 8, 0, 0) // CHR RAM: BNROM variant
	m := cart.Mapper

	m.CPUWrite(0x8000, 2)
	if got := m.CPURead(0x8000); got != 8 {
		t.Errorf("PRG read = %d, want 8", got)
	}
}

func TestNINA001Registers(t *testing.T) {
	cart := makeCart(t, 34, 4, 4, 0) // CHR ROM: NINA-001 variant
	m := cart.Mapper

	m.CPUWrite(0x7FFD, 1)
	if got := m.CPURead(0x8000); got != 4 {
		t.Errorf("PRG read = %d, want 4", got)
	}
	m.CPUWrite(0x7FFE, 3)
	if got := m.PPURead(0x0000, 0); got != 12 {
		t.Errorf("CHR low read = %d, want 12", got)
	}
	m.CPUWrite(0x7FFF, 5)
	if got := m.PPURead(0x1000, 0); got != 20 {
		t.Errorf("CHR high read = %d, want 20", got)
	}
}

func TestCamericaBanking(t *testing.T) {
	cart := makeCart(t, 71, 8, 0, 0)
	m := cart.Mapper

	if got := m.CPURead(0xC000); got != 14 {
		t.Errorf("fixed bank = %d, want 14", got)
	}
	m.CPUWrite(0xC000, 2)
	if got := m.CPURead(0x8000); got != 4 {
		t.Errorf("switchable bank = %d, want 4", got)
	}

	m.CPUWrite(0x9000, 0x10)
	if m.Mirroring() != ines.OnlyBScreen {
		t.Errorf("mirroring = %v, want single-screen B", m.Mirroring())
	}
}

func TestNINA03Decode(t *testing.T) {
	cart := makeCart(t, 79, 4, 4, 0)
	m := cart.Mapper

	// Register is decoded at $41xx, not at $8000.
	m.CPUWrite(0x8000, 0x0F)
	if got := m.CPURead(0x8000); got != 0 {
		t.Errorf("write to $8000 must be ignored, read = %d", got)
	}

	m.CPUWrite(0x4100, 0x0A) // PRG bank 1, CHR bank 2
	if got := m.CPURead(0x8000); got != 4 {
		t.Errorf("PRG read = %d, want 4", got)
	}
	if got := m.PPURead(0x0000, 0); got != 16 {
		t.Errorf("CHR read = %d, want 16", got)
	}
}

func TestNamco108Banking(t *testing.T) {
	cart := makeCart(t, 206, 8, 4, 0)
	m := cart.Mapper

	// Fixed last two 8KiB banks.
	if got := m.CPURead(0xC000); got != 14 {
		t.Errorf("fixed bank = %d, want 14", got)
	}
	if got := m.CPURead(0xE000); got != 15 {
		t.Errorf("last bank = %d, want 15", got)
	}

	// R6 switches $8000.
	m.CPUWrite(0x8000, 6)
	m.CPUWrite(0x8001, 3)
	if got := m.CPURead(0x8000); got != 3 {
		t.Errorf("R6 bank = %d, want 3", got)
	}

	// R0 is a 2KiB CHR bank, low bit forced even.
	m.CPUWrite(0x8000, 0)
	m.CPUWrite(0x8001, 5)
	if got := m.PPURead(0x0000, 0); got != 4 {
		t.Errorf("R0 low = %d, want 4", got)
	}
	if got := m.PPURead(0x0400, 0); got != 5 {
		t.Errorf("R0 high = %d, want 5", got)
	}
}

func TestMapperStateRoundTrip(t *testing.T) {
	for _, num := range []uint8{0, 1, 2, 3, 4, 7, 9, 10, 11, 34, 66, 71, 79, 206} {
		cart := makeCart(t, num, 8, 4, 0)
		m := cart.Mapper

		// Poke some state around, then snapshot.
		m.CPUWrite(0x8000, 1)
		m.CPUWrite(0x6000, 0x55)

		blob := saveCart(cart)
		reads := captureReads(m)

		// Disturb and restore.
		m.CPUWrite(0x8000, 0)
		m.CPUWrite(0x6000, 0xAA)
		loadCart(t, cart, blob)

		if got := captureReads(m); got != reads {
			t.Errorf("mapper %d: state not restored (%v != %v)", num, got, reads)
		}
	}
}
