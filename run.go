package main

import (
	"context"
	"fmt"
	"hash/crc32"
	"os"
	"strconv"
	"strings"
	"unsafe"

	"golang.org/x/sync/errgroup"

	"github.com/jshorfjr/veloce/hw"
)

// press is one scripted button hold over an inclusive frame range.
type press struct {
	button hw.VirtualButton
	from   int
	to     int
}

var buttonNames = map[string]hw.VirtualButton{
	"A":      hw.BtnA,
	"B":      hw.BtnB,
	"Start":  hw.BtnStart,
	"Select": hw.BtnSelect,
	"Up":     hw.BtnUp,
	"Down":   hw.BtnDown,
	"Left":   hw.BtnLeft,
	"Right":  hw.BtnRight,
}

// parsePress parses "Start:30-40" into a press.
func parsePress(s string) (press, error) {
	name, frames, ok := strings.Cut(s, ":")
	if !ok {
		return press{}, fmt.Errorf("malformed press %q, want BTN:FROM-TO", s)
	}
	btn, ok := buttonNames[name]
	if !ok {
		return press{}, fmt.Errorf("unknown button %q", name)
	}
	from, to, ok := strings.Cut(frames, "-")
	if !ok {
		to = from
	}
	f, err := strconv.Atoi(from)
	if err != nil {
		return press{}, fmt.Errorf("malformed press %q: %w", s, err)
	}
	t, err := strconv.Atoi(to)
	if err != nil {
		return press{}, fmt.Errorf("malformed press %q: %w", s, err)
	}
	return press{button: btn, from: f, to: t}, nil
}

type frameReport struct {
	frame    uint64
	digest   uint32
	nsamples int
}

func (r *Run) Run(cli *CLI) error {
	cfg, err := loadConfig(r.Config)
	if err != nil {
		return err
	}
	mode, err := cfg.syncMode()
	if err != nil {
		return err
	}

	frames := r.Frames
	if cfg.Emulation.Frames > 0 {
		frames = cfg.Emulation.Frames
	}

	var presses []press
	for _, s := range append(cfg.Input.Press, r.Press...) {
		p, err := parsePress(s)
		if err != nil {
			return err
		}
		presses = append(presses, p)
	}

	rom, err := os.ReadFile(r.RomPath)
	if err != nil {
		return err
	}

	console := hw.NewConsole(mode)
	if err := console.LoadROM(rom); err != nil {
		return err
	}

	if r.LoadState != "" {
		blob, err := os.ReadFile(r.LoadState)
		if err != nil {
			return err
		}
		if err := console.LoadState(blob); err != nil {
			return err
		}
	}

	// The emulation loop and the report writer run as a two-stage pipeline:
	// the console stays on its own goroutine, the writer formats and flushes.
	reports := make(chan frameReport, 8)
	audio := make([]float32, 4096)

	g, _ := errgroup.WithContext(context.Background())

	g.Go(func() error {
		defer close(reports)
		for i := 0; i < frames; i++ {
			var pad hw.VirtualButton
			for _, p := range presses {
				if i >= p.from && i <= p.to {
					pad |= p.button
				}
			}

			console.RunFrame(pad, 0)
			n := console.DrainAudio(audio)

			reports <- frameReport{
				frame:    console.FrameCount(),
				digest:   framebufferDigest(console.Framebuffer()),
				nsamples: n / 2,
			}
		}
		return nil
	})

	var last frameReport
	g.Go(func() error {
		for rep := range reports {
			last = rep
			if !r.Quiet {
				fmt.Printf("frame %4d  fb=%08x  audio=%d\n", rep.frame, rep.digest, rep.nsamples)
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Printf("ran %d frames, final fb=%08x, cycles=%d\n", frames, last.digest, console.CycleCount())

	if r.SaveState != "" {
		if err := os.WriteFile(r.SaveState, console.SaveState(), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// framebufferDigest hashes the 256x240 pixel buffer for compact reporting.
func framebufferDigest(fb []uint32) uint32 {
	buf := unsafe.Slice((*byte)(unsafe.Pointer(&fb[0])), len(fb)*4)
	return crc32.ChecksumIEEE(buf)
}
