package apu

import (
	"math"
	"testing"
)

func TestLengthCounterLoad(t *testing.T) {
	a := New(SyncAverage)

	a.WriteReg(0x4015, 0x01)    // enable pulse 1
	a.WriteReg(0x4003, 0x01<<3) // length index 1 -> 254
	if a.Square1.lengthCount != 254 {
		t.Errorf("length = %d, want 254", a.Square1.lengthCount)
	}

	// A disabled channel ignores length loads.
	a.WriteReg(0x4015, 0x00)
	if a.Square1.lengthCount != 0 {
		t.Errorf("disabling must zero the length counter")
	}
	a.WriteReg(0x4003, 0x01<<3)
	if a.Square1.lengthCount != 0 {
		t.Errorf("disabled channel must not reload its length")
	}
}

func TestStatusRegister(t *testing.T) {
	a := New(SyncAverage)

	a.WriteReg(0x4015, 0x0F)
	a.WriteReg(0x4003, 0x00) // pulse1 length 10
	a.WriteReg(0x400B, 0x00) // triangle length 10
	a.WriteReg(0x400F, 0x00) // noise length 10

	got := a.ReadReg(0x4015)
	if got&0x0F != 0x0D {
		t.Errorf("status = %02x, want pulse1|triangle|noise set", got)
	}
}

func TestFrameIRQ(t *testing.T) {
	a := New(SyncAverage)

	// 4-step mode raises the frame IRQ at step 4.
	a.Step(4 * frameCounterPeriod)
	if !a.FrameIRQ() {
		t.Fatal("frame IRQ should be raised in 4-step mode")
	}

	// $4015 read reports and clears it.
	if a.ReadReg(0x4015)&0x40 == 0 {
		t.Fatal("status should report the frame IRQ")
	}
	if a.ReadReg(0x4015)&0x40 != 0 {
		t.Fatal("reading $4015 must clear the frame IRQ")
	}

	// 5-step mode never raises it.
	a.Reset()
	a.WriteReg(0x4017, 0x80)
	a.Step(6 * frameCounterPeriod)
	if a.FrameIRQ() {
		t.Fatal("no frame IRQ in 5-step mode")
	}

	// IRQ inhibit suppresses and clears.
	a.Reset()
	a.Step(4 * frameCounterPeriod)
	a.WriteReg(0x4017, 0x40)
	if a.FrameIRQ() {
		t.Fatal("IRQ inhibit must clear a raised frame IRQ")
	}
}

func TestLengthCounterDecay(t *testing.T) {
	a := New(SyncAverage)

	a.WriteReg(0x4015, 0x01)
	a.WriteReg(0x4000, 0x00)    // no halt
	a.WriteReg(0x4003, 0x02<<3) // length 20

	// Two half-frame clocks per 4-step sequence.
	a.Step(4 * frameCounterPeriod)
	if a.Square1.lengthCount != 18 {
		t.Errorf("length = %d, want 18 after one sequence", a.Square1.lengthCount)
	}

	// Halt freezes it.
	a.WriteReg(0x4000, 0x20)
	a.Step(4 * frameCounterPeriod)
	if a.Square1.lengthCount != 18 {
		t.Errorf("length = %d, want 18 while halted", a.Square1.lengthCount)
	}
}

func TestNoiseLFSRTaps(t *testing.T) {
	nc := noiseChannel{shift: 1, timerPeriod: 0}

	// mode 0 taps bit 1: from state 1, feedback = (0^1)&1 = 1.
	nc.tickTimer()
	if nc.shift != 0x4000 {
		t.Errorf("shift = %04x, want 4000", nc.shift)
	}

	// mode 1 taps bit 6.
	nc = noiseChannel{shift: 1, mode: true}
	nc.tickTimer()
	if nc.shift != 0x4000 {
		t.Errorf("mode 1 shift = %04x, want 4000", nc.shift)
	}
}

func TestSweepNegateFormulas(t *testing.T) {
	a := New(SyncAverage)
	a.WriteReg(0x4015, 0x03)

	// Pulse 1: one's complement (subtracts change+1).
	a.WriteReg(0x4002, 100)
	a.WriteReg(0x4001, 0x88) // enabled, negate, shift 0, period 0
	a.Square1.sweepDivider = 0
	a.Square1.sweepReload = false
	a.Square1.tickSweep()
	if a.Square1.timerPeriod != 0xFFFF&(100-100-1) {
		t.Errorf("pulse1 period = %d, want %d", a.Square1.timerPeriod, uint16(0xFFFF&(100-100-1)))
	}

	// Pulse 2: two's complement.
	a.WriteReg(0x4006, 100)
	a.WriteReg(0x4005, 0x88)
	a.Square2.sweepDivider = 0
	a.Square2.sweepReload = false
	a.Square2.tickSweep()
	if a.Square2.timerPeriod != 0 {
		t.Errorf("pulse2 period = %d, want 0", a.Square2.timerPeriod)
	}
}

func TestSampleRateNoDrift(t *testing.T) {
	a := New(SyncAverage)

	// One second of CPU time must produce exactly SampleRate sample pairs,
	// whatever the step granularity.
	total := 0
	out := make([]float32, 65536)
	for cycles := 0; cycles < CPUFreq; cycles += 1000 {
		n := CPUFreq - cycles
		if n > 1000 {
			n = 1000
		}
		a.Step(n)
		total += a.Drain(out) / 2
	}
	total += a.Drain(out) / 2

	if total != SampleRate {
		t.Errorf("produced %d sample pairs in one second, want %d", total, SampleRate)
	}
}

func TestMixerSilence(t *testing.T) {
	a := New(SyncAverage)

	// All channels silent: output must be exactly zero.
	a.Step(CPUFreq / 60)
	out := make([]float32, 4096)
	n := a.Drain(out)
	if n == 0 {
		t.Fatal("expected samples after a frame worth of cycles")
	}
	for _, s := range out[:n] {
		if s != 0 {
			t.Fatalf("silent mix produced %f", s)
		}
	}
}

func TestMixerOutputRange(t *testing.T) {
	a := New(SyncAverage)

	// Drive every channel at full blast; the linear mix peaks at about 0.853
	// (DMC level 127 alone contributes 0.425), so it must stay in [0, 0.86].
	a.WriteReg(0x4015, 0x1F)
	a.WriteReg(0x4000, 0x3F) // duty 0, constant volume 15
	a.WriteReg(0x4002, 0x80)
	a.WriteReg(0x4003, 0x08)
	a.WriteReg(0x4004, 0x3F)
	a.WriteReg(0x4006, 0x80)
	a.WriteReg(0x4007, 0x08)
	a.WriteReg(0x4008, 0xFF)
	a.WriteReg(0x400A, 0x80)
	a.WriteReg(0x400B, 0x08)
	a.WriteReg(0x400C, 0x3F)
	a.WriteReg(0x400E, 0x00)
	a.WriteReg(0x400F, 0x08)
	a.WriteReg(0x4011, 0x7F)

	a.Step(CPUFreq / 10)
	out := make([]float32, 65536)
	n := a.Drain(out)
	for _, s := range out[:n] {
		if s < 0 || s > 0.86 {
			t.Fatalf("sample %f out of range", s)
		}
		if math.IsNaN(float64(s)) {
			t.Fatal("NaN sample")
		}
	}
}

func TestBlipModeProducesSamples(t *testing.T) {
	a := New(SyncBlip)

	a.WriteReg(0x4015, 0x01)
	a.WriteReg(0x4000, 0x7F)
	a.WriteReg(0x4002, 0x40)
	a.WriteReg(0x4003, 0x08)

	// One frame of cycles, flushed at the frame boundary.
	a.Step(29780)
	a.EndFrame()

	out := make([]float32, 8192)
	n := a.Drain(out)
	if n < 600*2 {
		t.Errorf("blip mode produced %d samples, want at least one frame worth", n/2)
	}
}

func TestStateRoundTrip(t *testing.T) {
	a := New(SyncAverage)

	a.WriteReg(0x4015, 0x1F)
	a.WriteReg(0x4000, 0xBF)
	a.WriteReg(0x4002, 0x42)
	a.WriteReg(0x4003, 0x13)
	a.WriteReg(0x4008, 0x81)
	a.WriteReg(0x400A, 0x37)
	a.WriteReg(0x400B, 0x21)
	a.WriteReg(0x400E, 0x85)
	a.WriteReg(0x400F, 0x30)
	a.Step(12345)

	// Restoring clears the output ring, so drain the original too before
	// comparing sample counts.
	a.Drain(make([]float32, 8192))
	blob := saveAPU(a)

	// Run both a restored copy and the original forward; they must agree.
	b := New(SyncAverage)
	loadAPU(t, b, blob)

	a.Step(54321)
	b.Step(54321)

	if a.Square1 != b.Square1 || a.Triangle != b.Triangle || a.Noise != b.Noise {
		t.Error("restored APU diverged from the original")
	}

	outA := make([]float32, 8192)
	outB := make([]float32, 8192)
	na := a.Drain(outA)
	nb := b.Drain(outB)
	if na != nb {
		t.Fatalf("sample counts diverged: %d != %d", na, nb)
	}
}
