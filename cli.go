package main

import "fmt"

type CLI struct {
	Run      Run      `cmd:"" help:"Run a ROM headless for a number of frames." default:"withargs"`
	RomInfos RomInfos `cmd:"" help:"Show ROM infos." name:"rom-infos"`
	Version  Version  `cmd:"" help:"Show veloce version."`

	Log string `help:"${log_help}" placeholder:"mod0,mod1,..."`
}

type Run struct {
	RomPath string `arg:"" name:"/path/to/rom" help:"${rompath_help}" required:"" type:"existingfile"`

	Config    string   `name:"config" help:"TOML configuration file." type:"existingfile"`
	Frames    int      `name:"frames" help:"Number of frames to run." default:"60"`
	Press     []string `name:"press" help:"Scripted input, e.g. Start:30-40 (repeatable)." placeholder:"BTN:FROM-TO"`
	SaveState string   `name:"save-state" help:"Write a savestate after the last frame." type:"path"`
	LoadState string   `name:"load-state" help:"Restore a savestate before running." type:"existingfile"`
	Quiet     bool     `name:"quiet" help:"Only print the final frame digest."`
}

type RomInfos struct {
	RomPath string `arg:"" name:"/path/to/rom" help:"${rompath_help}" required:"" type:"existingfile"`

	JSON bool `name:"json" help:"Emit infos as JSON."`
}

type Version struct{}

func (v *Version) Run(cli *CLI) error {
	fmt.Println("veloce", version)
	return nil
}
