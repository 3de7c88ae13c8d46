package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/jshorfjr/veloce/emu/log"
)

var version = "devel"

func main() {
	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("veloce"),
		kong.Description("Headless NES emulation core."),
		kong.UsageOnError(),
		kong.Vars{
			"log_help":     "Enable debug logging for the given modules (" + strings.Join(log.ModuleNames(), ",") + " or all).",
			"rompath_help": "Path to an iNES rom file.",
		},
	)

	mask, ok := log.ParseModuleMask(cli.Log)
	if !ok {
		fatalf("unknown log module in %q", cli.Log)
	}
	log.EnableDebugModules(mask)

	if err := ctx.Run(&cli); err != nil {
		fatalf("%v", err)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "veloce: "+format+"\n", args...)
	os.Exit(1)
}
