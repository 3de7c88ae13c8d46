package hw

import (
	"fmt"

	"github.com/jshorfjr/veloce/emu/log"
	"github.com/jshorfjr/veloce/hw/apu"
	"github.com/jshorfjr/veloce/hw/mappers"
	"github.com/jshorfjr/veloce/hw/snapshot"
	"github.com/jshorfjr/veloce/ines"
)

// NTSC frame rate and CPU clock of the machine being emulated.
const (
	NativeFPS = 60.0988
	CPUFreq   = apu.CPUFreq
)

// Console is a complete NES: CPU, PPU, APU, bus and the inserted cartridge.
// All methods must be called from a single goroutine.
type Console struct {
	CPU  *CPU
	PPU  *PPU
	APU  *apu.APU
	Bus  *Bus
	Cart *mappers.Cartridge

	frameCount uint64
	cycleCount uint64

	// an NMIDelayed signal fires after the next instruction
	nmiAfterInstr bool
}

// NewConsole builds a console with no cartridge inserted. mode selects the
// APU resampler.
func NewConsole(mode apu.SyncMode) *Console {
	ppu := NewPPU()
	sound := apu.New(mode)
	bus := NewBus(ppu, sound)
	cpu := NewCPU(bus)

	return &Console{
		CPU: cpu,
		PPU: ppu,
		APU: sound,
		Bus: bus,
	}
}

// LoadROM parses an iNES image and inserts the cartridge. On error the
// console keeps its previous state.
func (n *Console) LoadROM(data []byte) error {
	rom, err := ines.Decode(data)
	if err != nil {
		return fmt.Errorf("bad rom image: %w", err)
	}

	cart, err := mappers.New(rom)
	if err != nil {
		return err
	}

	n.Cart = cart
	n.Bus.Cart = cart
	n.PPU.Cart = cart
	n.Reset()

	log.ModEmu.InfoZ("rom loaded").Hex32("crc", cart.CRC32).End()
	return nil
}

// Unload removes the cartridge.
func (n *Console) Unload() {
	n.Cart = nil
	n.Bus.Cart = nil
	n.PPU.Cart = nil
	n.frameCount = 0
	n.cycleCount = 0
}

// Loaded reports whether a cartridge is inserted.
func (n *Console) Loaded() bool {
	return n.Cart != nil
}

// Reset puts the machine back into its power-on state, keeping the
// cartridge (and its PRG RAM) in place.
func (n *Console) Reset() {
	if n.Cart != nil {
		n.Cart.Reset()
	}
	n.PPU.Reset()
	n.APU.Reset()
	n.CPU.Reset()
	n.frameCount = 0
	n.cycleCount = 0
	n.nmiAfterInstr = false
}

// RunFrame advances the machine until the PPU signals frame completion at
// the start of VBlank, then latches the controller input for the NEXT
// frame: the NMI handler that reads it runs at the top of the next call.
func (n *Console) RunFrame(pad1, pad2 VirtualButton) {
	if n.Cart == nil {
		return
	}

	frameDone := false
	for !frameDone {
		cycles := int(n.CPU.Step())

		// An OAM DMA triggered by this instruction stalls the CPU.
		cycles += n.Bus.PendingDMACycles()
		n.cycleCount += uint64(cycles)

		if n.nmiAfterInstr {
			n.nmiAfterInstr = false
			n.CPU.TriggerNMI()
		}

		for i := 0; i < cycles*3; i++ {
			n.PPU.Step()

			switch n.PPU.CheckNMI() {
			case NMIImmediate:
				n.CPU.TriggerNMI()
			case NMIDelayed:
				n.nmiAfterInstr = true
			}

			if n.PPU.CheckFrameComplete() {
				frameDone = true
			}
		}

		if n.Cart.Mapper.IRQPending(n.PPU.frameCycle()) {
			n.CPU.TriggerIRQ()
			n.Cart.Mapper.IRQClear()
		}

		n.APU.Step(cycles)
	}

	n.Bus.SetControllerState(0, pad1)
	n.Bus.SetControllerState(1, pad2)

	n.APU.EndFrame()
	n.frameCount++
}

// Framebuffer is the 256x240 ABGR image of the last completed frame.
func (n *Console) Framebuffer() []uint32 {
	return n.PPU.Framebuffer()
}

// DrainAudio copies out up to len(out) interleaved stereo samples produced
// since the last call, returning the number of values written.
func (n *Console) DrainAudio(out []float32) int {
	return n.APU.Drain(out)
}

// ReadMem and WriteMem give the host direct bus access (cheat search,
// debugging, test harnesses). Reads carry their usual side effects.
func (n *Console) ReadMem(addr uint16) uint8 {
	return n.Bus.Read8(addr)
}

func (n *Console) WriteMem(addr uint16, val uint8) {
	n.Bus.Write8(addr, val)
}

func (n *Console) ROMCRC32() uint32 {
	if n.Cart == nil {
		return 0
	}
	return n.Cart.CRC32
}

func (n *Console) FrameCount() uint64 { return n.frameCount }
func (n *Console) CycleCount() uint64 { return n.cycleCount }

// SaveState serializes the whole machine as an opaque blob: rom CRC and
// counters, then the CPU, PPU, APU, bus and cartridge sub-blobs in order.
func (n *Console) SaveState() []byte {
	if n.Cart == nil {
		return nil
	}

	w := snapshot.NewWriter()
	w.U32(n.Cart.CRC32)
	w.U64(n.frameCount)
	w.U64(n.cycleCount)
	w.Bool(n.nmiAfterInstr)

	n.CPU.SaveState(w)
	n.PPU.SaveState(w)
	n.APU.SaveState(w)
	n.Bus.SaveState(w)
	n.Cart.SaveState(w)
	return w.Bytes()
}

// LoadState restores a blob produced by SaveState for the same ROM. On any
// error the console is left in its previous state.
func (n *Console) LoadState(data []byte) error {
	if n.Cart == nil {
		return fmt.Errorf("no rom loaded")
	}

	r := snapshot.NewReader(data)
	crc := r.U32()
	if err := r.Err(); err != nil {
		return fmt.Errorf("bad savestate: %w", err)
	}
	if crc != n.Cart.CRC32 {
		return fmt.Errorf("savestate rom mismatch: state %08x, loaded %08x", crc, n.Cart.CRC32)
	}

	// A truncated blob is only detected mid-restore; keep the pre-restore
	// state around so failure can't leave the machine half-loaded.
	backup := n.SaveState()

	frameCount := r.U64()
	cycleCount := r.U64()
	nmiAfterInstr := r.Bool()

	n.CPU.LoadState(r)
	n.PPU.LoadState(r)
	n.APU.LoadState(r)
	n.Bus.LoadState(r)
	n.Cart.LoadState(r)

	if err := r.Err(); err != nil {
		br := snapshot.NewReader(backup)
		_ = br.U32()
		n.frameCount = br.U64()
		n.cycleCount = br.U64()
		n.nmiAfterInstr = br.Bool()
		n.CPU.LoadState(br)
		n.PPU.LoadState(br)
		n.APU.LoadState(br)
		n.Bus.LoadState(br)
		n.Cart.LoadState(br)
		return fmt.Errorf("bad savestate: %w", err)
	}

	n.frameCount = frameCount
	n.cycleCount = cycleCount
	n.nmiAfterInstr = nmiAfterInstr

	log.ModSnap.InfoZ("state restored").
		Uint64("frame", n.frameCount).
		End()
	return nil
}
