package ines

import (
	"hash/crc32"
	"testing"
)

// buildRom assembles a synthetic iNES image.
func buildRom(t *testing.T, prgBanks, chrBanks int, flags6, flags7 uint8) []byte {
	t.Helper()

	hdr := make([]byte, 16)
	copy(hdr, Magic)
	hdr[4] = uint8(prgBanks)
	hdr[5] = uint8(chrBanks)
	hdr[6] = flags6
	hdr[7] = flags7

	buf := hdr
	for i := 0; i < prgBanks*16384; i++ {
		buf = append(buf, uint8(i))
	}
	for i := 0; i < chrBanks*8192; i++ {
		buf = append(buf, uint8(i^0xFF))
	}
	return buf
}

func TestDecode(t *testing.T) {
	rom, err := Decode(buildRom(t, 2, 1, 0x01, 0x00))
	if err != nil {
		t.Fatal(err)
	}

	if len(rom.PRG) != 32768 {
		t.Errorf("PRG size = %d, want 32768", len(rom.PRG))
	}
	if len(rom.CHR) != 8192 {
		t.Errorf("CHR size = %d, want 8192", len(rom.CHR))
	}
	if rom.Mapper() != 0 {
		t.Errorf("mapper = %d, want 0", rom.Mapper())
	}
	if rom.Mirroring() != VertMirroring {
		t.Errorf("mirroring = %v, want vertical", rom.Mirroring())
	}
	if rom.HasBattery() || rom.HasTrainer() {
		t.Error("battery/trainer flags should be clear")
	}
}

func TestDecodeMapperNumber(t *testing.T) {
	// low nibble in flags6, high nibble in flags7
	rom, err := Decode(buildRom(t, 1, 1, 0x40, 0xC0))
	if err != nil {
		t.Fatal(err)
	}
	if rom.Mapper() != 0xC4 {
		t.Errorf("mapper = %d, want %d", rom.Mapper(), 0xC4)
	}
}

func TestDecodeCRC32(t *testing.T) {
	buf := buildRom(t, 1, 1, 0x00, 0x00)
	rom, err := Decode(buf)
	if err != nil {
		t.Fatal(err)
	}

	// CRC covers PRG+CHR, not the header.
	want := crc32.ChecksumIEEE(buf[16:])
	if rom.CRC32 != want {
		t.Errorf("CRC32 = %08x, want %08x", rom.CRC32, want)
	}
}

func TestDecodeTrainer(t *testing.T) {
	hdr := make([]byte, 16)
	copy(hdr, Magic)
	hdr[4] = 1
	hdr[6] = 0x04 // trainer present
	buf := append(hdr, make([]byte, 512+16384)...)

	rom, err := Decode(buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(rom.Trainer) != 512 {
		t.Errorf("trainer size = %d, want 512", len(rom.Trainer))
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
	}{
		{"empty", nil},
		{"short header", []byte("NES\x1a")},
		{"bad magic", append([]byte("NOPE"), make([]byte, 12)...)},
		{"truncated PRG", buildRom(t, 2, 0, 0, 0)[:16+100]},
		{"truncated CHR", buildRom(t, 1, 1, 0, 0)[:16+16384+100]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode(tt.buf); err == nil {
				t.Error("expected a decode error")
			}
		})
	}
}

func TestMirrorNT(t *testing.T) {
	tests := []struct {
		mode NTMirroring
		addr uint16
		want uint16
	}{
		// horizontal: NT0/NT1 pair, NT2/NT3 pair
		{HorzMirroring, 0x0000, 0x0000},
		{HorzMirroring, 0x0400, 0x0000},
		{HorzMirroring, 0x0800, 0x0400},
		{HorzMirroring, 0x0C00, 0x0400},
		// vertical: NT0/NT2 pair, NT1/NT3 pair
		{VertMirroring, 0x0000, 0x0000},
		{VertMirroring, 0x0400, 0x0400},
		{VertMirroring, 0x0800, 0x0000},
		{VertMirroring, 0x0C00, 0x0400},
		// single screens
		{OnlyAScreen, 0x0C12, 0x0012},
		{OnlyBScreen, 0x0012, 0x0412},
	}
	for _, tt := range tests {
		if got := tt.mode.MirrorNT(tt.addr); got != tt.want {
			t.Errorf("%v.MirrorNT(%04x) = %04x, want %04x", tt.mode, tt.addr, got, tt.want)
		}
	}
}
