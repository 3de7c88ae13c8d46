package mappers

import "testing"

func newMMC3Cart(t *testing.T) (*Cartridge, *mmc3) {
	t.Helper()
	cart := makeCart(t, 4, 8, 4, 0)
	return cart, cart.Mapper.(*mmc3)
}

// pulseA12 drives one filtered A12 rising edge: low long enough to satisfy
// the filter, then high.
func pulseA12(m *mmc3, cycle uint32) uint32 {
	m.NotifyPPUAddressBus(0x0000, cycle)
	m.NotifyPPUAddressBus(0x1000, cycle+a12FilterCycles)
	return cycle + a12FilterCycles + 1
}

func TestMMC3PRGBanking(t *testing.T) {
	cart, _ := newMMC3Cart(t)
	m := cart.Mapper

	// Mode 0: last two banks fixed.
	if got := m.CPURead(0xC000); got != 14 {
		t.Errorf("$C000 = %d, want 14", got)
	}
	if got := m.CPURead(0xE000); got != 15 {
		t.Errorf("$E000 = %d, want 15", got)
	}

	// R6 switches $8000 in mode 0.
	m.CPUWrite(0x8000, 6)
	m.CPUWrite(0x8001, 3)
	if got := m.CPURead(0x8000); got != 3 {
		t.Errorf("$8000 = %d, want 3", got)
	}

	// Mode 1 swaps: $8000 fixed to second-to-last, R6 at $C000.
	m.CPUWrite(0x8000, 0x46)
	if got := m.CPURead(0x8000); got != 14 {
		t.Errorf("mode 1 $8000 = %d, want 14", got)
	}
	if got := m.CPURead(0xC000); got != 3 {
		t.Errorf("mode 1 $C000 = %d, want 3", got)
	}
}

func TestMMC3CHRModes(t *testing.T) {
	cart, _ := newMMC3Cart(t)
	m := cart.Mapper

	m.CPUWrite(0x8000, 0) // R0, chr mode 0
	m.CPUWrite(0x8001, 5) // 2KiB bank: low bit ignored
	if got := m.PPURead(0x0000, 0); got != 4 {
		t.Errorf("R0 even = %d, want 4", got)
	}
	if got := m.PPURead(0x0400, 0); got != 5 {
		t.Errorf("R0 odd = %d, want 5", got)
	}

	// chr mode 1 moves R0 to the $1000 half.
	m.CPUWrite(0x8000, 0x80)
	if got := m.PPURead(0x1000, 0); got != 4 {
		t.Errorf("mode 1 R0 = %d, want 4", got)
	}
}

func TestMMC3A12Filter(t *testing.T) {
	_, m := newMMC3Cart(t)

	m.CPUWrite(0xC000, 3) // latch
	m.CPUWrite(0xC001, 0) // reload
	m.CPUWrite(0xE001, 0) // enable

	// First filtered edge reloads the counter with the latch.
	cycle := pulseA12(m, 100)
	if m.irqCounter != 3 {
		t.Fatalf("counter = %d, want 3 after reload", m.irqCounter)
	}

	// Short A12 toggles (less than 16 dots low) are filtered out.
	m.NotifyPPUAddressBus(0x0000, cycle)
	m.NotifyPPUAddressBus(0x1000, cycle+8)
	if m.irqCounter != 3 {
		t.Fatalf("counter = %d after a filtered pulse, want 3", m.irqCounter)
	}
	cycle += 9

	// Three more filtered edges bring it to zero and schedule the IRQ.
	cycle = pulseA12(m, cycle)
	cycle = pulseA12(m, cycle)
	cycle = pulseA12(m, cycle)

	if m.irqCounter != 0 {
		t.Fatalf("counter = %d, want 0", m.irqCounter)
	}
	if !m.IRQPending(cycle) {
		t.Fatal("IRQ should be pending once the counter reaches 0")
	}

	m.IRQClear()
	if m.IRQPending(cycle) {
		t.Fatal("IRQClear must acknowledge the IRQ")
	}
}

func TestMMC3IRQDisableClearsPending(t *testing.T) {
	_, m := newMMC3Cart(t)

	m.CPUWrite(0xC000, 1)
	m.CPUWrite(0xC001, 0)
	m.CPUWrite(0xE001, 0)

	cycle := pulseA12(m, 50)
	cycle = pulseA12(m, cycle)
	if !m.IRQPending(cycle) {
		t.Fatal("expected pending IRQ")
	}

	// Writing the disable register acknowledges any pending IRQ.
	m.CPUWrite(0xE000, 0)
	if m.IRQPending(cycle) {
		t.Fatal("disable must clear the pending IRQ")
	}

	// Re-enabling does not by itself raise one.
	m.CPUWrite(0xE001, 0)
	if m.IRQPending(cycle) {
		t.Fatal("enable must not raise an IRQ")
	}
}

func TestMMC3A12FilterWrap(t *testing.T) {
	_, m := newMMC3Cart(t)

	m.CPUWrite(0xC000, 0)
	m.CPUWrite(0xC001, 0)

	// Rise quickly so this first edge is filtered, leaving A12 high.
	m.NotifyPPUAddressBus(0x1000, 5)
	if !m.irqReload {
		t.Fatal("short first edge must not clock the counter")
	}

	// A low period spanning the frame-cycle wrap still satisfies the
	// filter: 10 dots before the wrap plus 20 after.
	m.NotifyPPUAddressBus(0x0000, NumFrameCycles-10)
	m.NotifyPPUAddressBus(0x1000, 20)
	if m.irqReload {
		t.Fatal("edge across the wrap was not clocked")
	}
}

func TestMMC3Mirroring(t *testing.T) {
	cart, _ := newMMC3Cart(t)
	m := cart.Mapper

	m.CPUWrite(0xA000, 1)
	if m.Mirroring().String() != "horizontal" {
		t.Errorf("mirroring = %v, want horizontal", m.Mirroring())
	}
	m.CPUWrite(0xA000, 0)
	if m.Mirroring().String() != "vertical" {
		t.Errorf("mirroring = %v, want vertical", m.Mirroring())
	}
}
