package mappers

import (
	"fmt"

	"github.com/jshorfjr/veloce/hw/snapshot"
	"github.com/jshorfjr/veloce/ines"
)

// Cartridge owns the memories of an inserted cart (PRG ROM, CHR ROM or RAM,
// PRG RAM) and the board logic that maps them into the address space.
type Cartridge struct {
	PRGROM []byte
	CHR    []byte // CHR ROM, or 8KiB of CHR RAM when the header declares none.
	PRGRAM []byte

	CRC32      uint32
	MapperNum  uint8
	HasBattery bool
	HasTrainer bool
	HasCHRRAM  bool

	Mapper Mapper
}

// New builds a cartridge from a decoded rom image, selecting the board from
// the header mapper number. Unknown mapper numbers are a load error.
func New(rom *ines.Rom) (*Cartridge, error) {
	desc, ok := All[rom.Mapper()]
	if !ok {
		return nil, fmt.Errorf("unsupported mapper %d", rom.Mapper())
	}

	cart := &Cartridge{
		PRGROM:     rom.PRG,
		MapperNum:  rom.Mapper(),
		HasBattery: rom.HasBattery(),
		HasTrainer: rom.HasTrainer(),
		CRC32:      rom.CRC32,
		PRGRAM:     make([]byte, 0x2000),
	}
	if len(rom.PRG) == 0 {
		return nil, fmt.Errorf("rom has no PRG data")
	}
	if len(rom.CHR) == 0 {
		cart.CHR = make([]byte, 0x2000)
		cart.HasCHRRAM = true
	} else {
		// Boards write through the same slice when they carry CHR RAM, so
		// keep a private copy of the rom's CHR rather than aliasing it.
		cart.CHR = append([]byte(nil), rom.CHR...)
	}

	cart.Mapper = desc.New(cart, rom.Mirroring())

	modMapper.InfoZ("cartridge inserted").
		String("board", desc.Name).
		Uint8("mapper", cart.MapperNum).
		Hex32("crc", cart.CRC32).
		Int("prg", len(cart.PRGROM)).
		Int("chr", len(cart.CHR)).
		Bool("chrram", cart.HasCHRRAM).
		End()
	return cart, nil
}

// Reset resets the board to its power-on banking state. Memories are kept.
func (cart *Cartridge) Reset() {
	cart.Mapper.Reset()
}

// SaveState serializes PRG RAM, CHR RAM (when present) and the board state.
func (cart *Cartridge) SaveState(w *snapshot.Writer) {
	w.Raw(cart.PRGRAM)
	if cart.HasCHRRAM {
		w.Raw(cart.CHR)
	}
	cart.Mapper.SaveState(w)
}

func (cart *Cartridge) LoadState(r *snapshot.Reader) {
	r.Raw(cart.PRGRAM)
	if cart.HasCHRRAM {
		r.Raw(cart.CHR)
	}
	cart.Mapper.LoadState(r)
}
