package main

import (
	"github.com/spf13/cobra"
)

func main() {
	var root = &cobra.Command{Use: "simsmonitor"}

	root.AddCommand(serveCMD(), migrateCMD(), fetchCMD())
	_ = root.Execute()
}
