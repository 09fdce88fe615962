/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"cachehouse/internal/engine"
	"cachehouse/internal/logger"
	"cachehouse/internal/server"
)

const defaultMaxKeys = 10000

// rootCmd represents the base command when called without subcommands: it
// starts the server directly, the way the teacher's rootCmd does, rather
// than requiring a "serve" subcommand.
var rootCmd = &cobra.Command{
	Use:   "cachehouse",
	Short: "An in-memory key/value cache engine",
	Long: `cachehouse is an in-memory key/value cache engine with a bounded,
strictly LRU-ordered store, optimistic-concurrency transactions
(MULTI/EXEC/DISCARD) and key watches (WATCH/UNWATCH).`,
	Run: func(cmd *cobra.Command, args []string) {
		logLevel := logger.LogLevel(getStringFlag(cmd, "log-level", "info"))
		logger.Init(logLevel)

		maxKeys := getIntFlag(cmd, "max-keys", defaultMaxKeys)
		eng := engine.New(maxKeys)

		srv := server.New(server.Config{
			Addr: getStringFlag(cmd, "port", ":6380"),
		}, eng)

		errs := make(chan error, 1)
		go func() {
			errs <- srv.ListenAndServe()
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errs:
			logger.Errorf("server exited: %v", err)
			os.Exit(1)
		case <-quit:
			logger.Info("shutting down")
		}
	},
}

// Execute adds child commands to root and sets flags appropriately.
// Called by main.main(). Only needs to happen once to rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().String("log-level", "info", "Log level (debug, info, warn, error, fatal)")
	rootCmd.Flags().String("port", ":6380", "Server listen address")
	rootCmd.Flags().Int("max-keys", defaultMaxKeys, "Store capacity before strict LRU eviction begins")
}

func getStringFlag(cmd *cobra.Command, name, defaultValue string) string {
	if value, err := cmd.Flags().GetString(name); err == nil && value != "" {
		return value
	}
	return defaultValue
}

func getIntFlag(cmd *cobra.Command, name string, defaultValue int) int {
	if value, err := cmd.Flags().GetInt(name); err == nil {
		return value
	}
	return defaultValue
}
