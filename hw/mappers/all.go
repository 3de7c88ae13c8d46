package mappers

import "github.com/jshorfjr/veloce/ines"

// Desc associates a board name with its constructor.
type Desc struct {
	Name string
	New  func(cart *Cartridge, mirror ines.NTMirroring) Mapper
}

// All is the registry of supported boards, keyed by iNES mapper number.
var All = map[uint8]Desc{
	0:   {Name: "NROM", New: newNROM},
	1:   {Name: "MMC1", New: newMMC1},
	2:   {Name: "UxROM", New: newUxROM},
	3:   {Name: "CNROM", New: newCNROM},
	4:   {Name: "MMC3", New: newMMC3},
	7:   {Name: "AxROM", New: newAxROM},
	9:   {Name: "MMC2", New: newMMC2},
	10:  {Name: "MMC4", New: newMMC4},
	11:  {Name: "Color Dreams", New: newColorDreams},
	34:  {Name: "BNROM/NINA-001", New: newBNROM},
	66:  {Name: "GxROM", New: newGxROM},
	71:  {Name: "Camerica", New: newCamerica},
	79:  {Name: "NINA-03/06", New: newNINA03},
	206: {Name: "Namco 108", New: newNamco108},
}
