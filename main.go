package main

import (
	"fmt"
	"os"

	"github.com/sofi-fitness/studio-landing/cmd"
	"github.com/sofi-fitness/studio-landing/internal/buildinfo"
	"github.com/sofi-fitness/studio-landing/internal/conf"
)

// Set with -ldflags "-X main.version=... -X main.buildDate=... -X main.commit=..."
var (
	version   string
	buildDate string
	commit    string
)

func main() {
	ctx := conf.NewContext(buildinfo.New(version, buildDate, commit))

	rootCmd := cmd.RootCommand(ctx)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
