package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"cachehouse/internal/buildinfo"
)

func init() {
	rootCmd.AddCommand(versionCmd)
}

var str = `
Version: %s
Commit: %s
Build date: %s
GOOS: %s-%s`

var versionCmd = &cobra.Command{
	Use: "version",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf(
			str+"\n",
			buildinfo.Version,
			buildinfo.Commit,
			buildinfo.BuildDate,
			runtime.GOOS,
			runtime.GOARCH,
		)
	},
}
