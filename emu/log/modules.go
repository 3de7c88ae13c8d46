package log

import "strings"

type ModuleMask uint64
type Module uint

const (
	ModuleMaskAll ModuleMask = 0xFFFFFFFFFFFFFFFF
)

// Predefined module constants. One per hardware block, so that debug logging
// can be enabled per-module from the command line.
const (
	ModEmu Module = iota + 1
	ModCPU
	ModMem
	ModPPU
	ModAPU
	ModMapper
	ModCart
	ModSnap
	ModInput

	endStandardMods
)

var modNames = []string{
	"<error>", "emu", "cpu", "mem", "ppu", "apu", "mapper", "cart", "snap", "input",
}

var modDebugMask ModuleMask = 0

func ModuleByName(name string) (Module, bool) {
	for i, n := range modNames[1:] {
		if n == name {
			return Module(i + 1), true
		}
	}
	return 0, false
}

func ModuleNames() []string {
	return modNames[1:]
}

func (mod Module) Name() string {
	return modNames[mod]
}

func (mod Module) mask() ModuleMask {
	return 1 << uint(mod)
}

// EnableDebugModules turns on debug-level logging for the given modules.
func EnableDebugModules(mask ModuleMask) {
	modDebugMask |= mask
}

func DisableDebugModules(mask ModuleMask) {
	modDebugMask &^= mask
}

// ParseModuleMask parses a comma-separated module list ("cpu,ppu") or "all".
func ParseModuleMask(s string) (ModuleMask, bool) {
	if s == "" {
		return 0, true
	}
	if s == "all" {
		return ModuleMaskAll, true
	}
	var mask ModuleMask
	for _, name := range strings.Split(s, ",") {
		mod, ok := ModuleByName(strings.TrimSpace(name))
		if !ok {
			return 0, false
		}
		mask |= mod.mask()
	}
	return mask, true
}
