package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"cachehouse/internal/benchmark"
)

// benchmarkCmd represents the benchmark command.
var benchmarkCmd = &cobra.Command{
	Use:   "benchmark",
	Short: "Run cachehouse load tests",
	Long: `Run load tests against a running cachehouse server, reporting
throughput and latency percentiles per command.

Examples:
  cachehouse benchmark --requests 10000 --concurrency 10
  cachehouse benchmark --commands SET,GET,INCR --requests 5000`,
	Run: runBenchmark,
}

func init() {
	rootCmd.AddCommand(benchmarkCmd)

	benchmarkCmd.Flags().String("host", "127.0.0.1", "cachehouse server host")
	benchmarkCmd.Flags().IntP("port", "p", 6380, "cachehouse server port")

	benchmarkCmd.Flags().Int("requests", 10000, "Total number of requests per command")
	benchmarkCmd.Flags().IntP("concurrency", "c", 50, "Number of parallel connections")
	benchmarkCmd.Flags().Duration("timeout", 5*time.Second, "Connection timeout")

	benchmarkCmd.Flags().String("commands", "SET,GET,INCR,DECR,MSET,MGET", "Comma-separated list of commands to test")
	benchmarkCmd.Flags().Int("keyspace", 10000, "Keyspace size for random key generation")

	benchmarkCmd.Flags().BoolP("quiet", "q", false, "Quiet mode (only show summary)")
}

func runBenchmark(cmd *cobra.Command, _ []string) {
	commands := strings.Split(getStringFlag(cmd, "commands", "SET,GET,INCR,DECR,MSET,MGET"), ",")
	for i, c := range commands {
		commands[i] = strings.ToUpper(strings.TrimSpace(c))
	}

	config := benchmark.Config{
		Addr:        fmt.Sprintf("%s:%d", getStringFlag(cmd, "host", "127.0.0.1"), getIntFlag(cmd, "port", 6380)),
		Requests:    getIntFlag(cmd, "requests", 10000),
		Concurrency: getIntFlag(cmd, "concurrency", 50),
		Commands:    commands,
		KeySpace:    getIntFlag(cmd, "keyspace", 10000),
		Timeout:     getDurationFlag(cmd, "timeout", 5*time.Second),
		Quiet:       getBoolFlag(cmd, "quiet"),
	}

	if !config.Quiet {
		fmt.Println("cachehouse benchmark")
		fmt.Println("====================")
		fmt.Printf("Host: %s\n", config.Addr)
		fmt.Printf("Requests: %d\n", config.Requests)
		fmt.Printf("Concurrency: %d\n", config.Concurrency)
		fmt.Printf("Commands: %s\n\n", strings.Join(config.Commands, ", "))
	}

	results := benchmark.Run(config)
	benchmark.PrintResults(results)
}

func getBoolFlag(cmd *cobra.Command, name string) bool {
	if value, err := cmd.Flags().GetBool(name); err == nil {
		return value
	}
	return false
}
