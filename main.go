// Package main is the entry point for the goaliemetrics CLI tool, which ingests
// NHL play-by-play documents and computes goaltender glove/stick save metrics.
package main

import "github.com/pable/go-goalie-metrics/cmd"

func main() {
	cmd.Execute()
}
