package main

import "github.com/adverant/nexus/ocr-worker/internal/cli"

var (
	version   = "dev"
	gitCommit = "none"
)

func main() {
	cli.SetVersionInfo(version, gitCommit)
	cli.Execute()
}
