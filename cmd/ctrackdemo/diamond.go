package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/Compaile/ctrack"
)

var diamondCmd = &cobra.Command{
	Use:   "diamond",
	Short: "A diamond call graph: A calls B and C, both of which call D",
	RunE: func(cmd *cobra.Command, args []string) error {
		nodeA()
		return ctrack.Print(ctrack.DefaultSettings())
	},
}

func nodeA() {
	defer ctrack.TrackName("A")()
	time.Sleep(2 * time.Millisecond)
	nodeB()
	nodeC()
}

func nodeB() {
	defer ctrack.TrackName("B")()
	time.Sleep(2 * time.Millisecond)
	nodeD()
}

func nodeC() {
	defer ctrack.TrackName("C")()
	time.Sleep(2 * time.Millisecond)
	nodeD()
}

func nodeD() {
	defer ctrack.TrackName("D")()
	time.Sleep(3 * time.Millisecond)
}
