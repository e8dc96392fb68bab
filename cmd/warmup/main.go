package main

import (
	"github.com/klothoplatform/warmup/pkg/cli"
)

// Version is set at build time with -ldflags "-X main.Version=...".
var Version = "0.0.0-local"

func main() {
	wm := cli.WarmupMain{
		Version: Version,
	}
	wm.Main()
}
