package main

import (
	"github.com/alecthomas/kong"

	"github.com/getyourway/scanpad-go/internal/cli"
)

func main() {
	var root cli.CLI
	ctx := kong.Parse(&root,
		kong.Name("scanpad"),
		kong.Description("Configure and control an aRdent ScanPad over BLE."),
		kong.UsageOnError(),
	)
	ctx.FatalIfErrorf(ctx.Run(&root))
}
