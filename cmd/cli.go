package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"cachehouse/internal/cli"
	"cachehouse/internal/logger"
)

// cliCmd represents the CLI command.
var cliCmd = &cobra.Command{
	Use:   "cli",
	Short: "Interactive cachehouse command-line interface",
	Long: `Interactive cachehouse command-line interface similar to redis-cli.

Connect to a cachehouse server and execute commands interactively or in batch mode.

Examples:
  cachehouse cli
  cachehouse cli --host 127.0.0.1 --port 6380
  cachehouse cli --eval "SET key value"
  cachehouse cli --file commands.txt`,
	Run: func(cmd *cobra.Command, args []string) {
		err := cli.Run(cli.Config{
			Host:    getStringFlag(cmd, "host", "127.0.0.1"),
			Port:    getIntFlag(cmd, "port", 6380),
			Timeout: getDurationFlag(cmd, "timeout", 5*time.Second),
			Eval:    getStringFlag(cmd, "eval", ""),
			File:    getStringFlag(cmd, "file", ""),
		})
		if err != nil {
			logger.Fatalf("cli: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(cliCmd)

	cliCmd.Flags().String("host", "127.0.0.1", "cachehouse server host")
	cliCmd.Flags().IntP("port", "p", 6380, "cachehouse server port")
	cliCmd.Flags().Duration("timeout", 5*time.Second, "Connection timeout")

	cliCmd.Flags().String("eval", "", "Send a single command non-interactively")
	cliCmd.Flags().String("file", "", "Execute commands from a script file")
}

func getDurationFlag(cmd *cobra.Command, name string, defaultValue time.Duration) time.Duration {
	if value, err := cmd.Flags().GetDuration(name); err == nil {
		return value
	}
	return defaultValue
}
