package main

import (
	"fmt"
	"os"

	"github.com/go-faster/jx"

	"github.com/jshorfjr/veloce/hw/mappers"
	"github.com/jshorfjr/veloce/ines"
)

func (ri *RomInfos) Run(cli *CLI) error {
	rom, err := ines.Open(ri.RomPath)
	if err != nil {
		return err
	}

	if !ri.JSON {
		rom.PrintInfos(os.Stdout)
		if desc, ok := mappers.All[rom.Mapper()]; ok {
			fmt.Printf("board:     %s\n", desc.Name)
		} else {
			fmt.Printf("board:     unsupported\n")
		}
		return nil
	}

	var enc jx.Encoder
	enc.SetIdent(2)
	enc.ObjStart()
	enc.FieldStart("mapper")
	enc.Int(int(rom.Mapper()))
	if desc, ok := mappers.All[rom.Mapper()]; ok {
		enc.FieldStart("board")
		enc.Str(desc.Name)
	}
	enc.FieldStart("prgSize")
	enc.Int(rom.PRGSize())
	enc.FieldStart("chrSize")
	enc.Int(rom.CHRSize())
	enc.FieldStart("chrRAM")
	enc.Bool(rom.CHRSize() == 0)
	enc.FieldStart("mirroring")
	enc.Str(rom.Mirroring().String())
	enc.FieldStart("battery")
	enc.Bool(rom.HasBattery())
	enc.FieldStart("trainer")
	enc.Bool(rom.HasTrainer())
	enc.FieldStart("crc32")
	enc.Str(fmt.Sprintf("%08x", rom.CRC32))
	enc.ObjEnd()

	fmt.Println(enc.String())
	return nil
}
