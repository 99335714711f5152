package main

import "github.com/swordfishtr/replay-server/cmd/replay-server/cmd"

func main() {
	cmd.Execute()
}
