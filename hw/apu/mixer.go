package apu

import (
	"github.com/arl/blip"

	"github.com/jshorfjr/veloce/hw/snapshot"
)

const (
	// SampleRate is the output rate of the mixer.
	SampleRate = 44100

	// CPUFreq is the NTSC 2A03 clock rate, which is also the mixer's input
	// rate (one mixed sample per CPU cycle).
	CPUFreq = 1789773

	filterAlpha = 0.6

	// The output ring keeps at most this many stereo pairs. Once it is full,
	// newly produced samples are dropped until the host drains it.
	ringPairs = 8192
)

// SyncMode selects how the per-cycle channel mix is resampled to 44.1kHz.
type SyncMode uint8

const (
	// SyncAverage accumulates every CPU-cycle sample and emits the boxcar
	// average each time the rate accumulator rolls over, smoothed by a
	// first-order low-pass.
	SyncAverage SyncMode = iota

	// SyncBlip feeds amplitude deltas into a band-limited synthesis buffer
	// and reads the resampled result at frame end. Sharper highs, at the
	// cost of frame-granular output.
	SyncBlip
)

// Mixer converts the APU's per-CPU-cycle mix to interleaved stereo float
// samples at the output rate.
type Mixer struct {
	mode SyncMode

	// averaging resampler
	sampleCounter int32
	accum         float32
	accumCount    int32
	filterState   float32

	// band-limited resampler
	buf     *blip.Buffer
	lastAmp int32
	clock   uint64
	tmp     [4096]int16

	ring []float32 // interleaved stereo
}

func newMixer(mode SyncMode) *Mixer {
	mx := &Mixer{
		mode: mode,
		ring: make([]float32, 0, ringPairs*2),
	}
	if mode == SyncBlip {
		mx.buf = blip.NewBuffer(len(mx.tmp))
		mx.buf.SetRates(CPUFreq, SampleRate)
	}
	return mx
}

func (mx *Mixer) reset() {
	mx.sampleCounter = 0
	mx.accum = 0
	mx.accumCount = 0
	mx.filterState = 0
	mx.lastAmp = 0
	mx.clock = 0
	mx.ring = mx.ring[:0]
	if mx.buf != nil {
		mx.buf.Clear()
	}
}

// push feeds one CPU cycle worth of mixed output, in [0, ~0.85].
func (mx *Mixer) push(sample float32) {
	switch mx.mode {
	case SyncAverage:
		mx.accum += sample
		mx.accumCount++

		mx.sampleCounter += SampleRate
		if mx.sampleCounter >= CPUFreq {
			mx.sampleCounter -= CPUFreq

			avg := mx.accum / float32(mx.accumCount)
			mx.accum = 0
			mx.accumCount = 0

			mx.filterState += filterAlpha * (avg - mx.filterState)
			mx.emit(mx.filterState)
		}

	case SyncBlip:
		amp := int32(sample * 32767)
		if amp != mx.lastAmp {
			mx.buf.AddDelta(mx.clock, amp-mx.lastAmp)
			mx.lastAmp = amp
		}
		mx.clock++
	}
}

// endFrame flushes the band-limited buffer. A no-op in averaging mode, where
// samples stream out as the rate accumulator rolls over.
func (mx *Mixer) endFrame() {
	if mx.mode != SyncBlip {
		return
	}
	mx.buf.EndFrame(int(mx.clock))
	mx.clock = 0
	for mx.buf.SamplesAvailable() > 0 {
		n := mx.buf.ReadSamples(mx.tmp[:], len(mx.tmp), false)
		if n == 0 {
			break
		}
		for _, s := range mx.tmp[:n] {
			mx.emit(float32(s) / 32768)
		}
	}
}

// emit appends one mono sample to the stereo ring, duplicated into both
// channels.
func (mx *Mixer) emit(s float32) {
	if len(mx.ring) >= ringPairs*2 {
		return
	}
	mx.ring = append(mx.ring, s, s)
}

// drain copies out up to len(out) interleaved samples and removes them from
// the ring. Returns the number of float32 values written (always even).
func (mx *Mixer) drain(out []float32) int {
	n := copy(out, mx.ring)
	n -= n % 2
	mx.ring = mx.ring[:copy(mx.ring, mx.ring[n:])]
	return n
}

// pending returns the number of buffered interleaved samples.
func (mx *Mixer) pending() int {
	return len(mx.ring)
}

func (mx *Mixer) saveState(w *snapshot.Writer) {
	w.I32(mx.sampleCounter)
	w.F32(mx.filterState)
}

func (mx *Mixer) loadState(r *snapshot.Reader) {
	mx.sampleCounter = r.I32()
	mx.filterState = r.F32()
	mx.accum = 0
	mx.accumCount = 0
	mx.lastAmp = 0
	mx.clock = 0
	mx.ring = mx.ring[:0]
	if mx.buf != nil {
		mx.buf.Clear()
	}
}
