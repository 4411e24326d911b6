package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/keep/cmd/kv"
	"github.com/ValentinKolb/keep/cmd/serve"
	"github.com/ValentinKolb/keep/cmd/util"
	"github.com/spf13/cobra"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "keep",
		Short: "persistent key-value store",
		Long: fmt.Sprintf(`keep (v%s)

A persistent key-value store written in Go that needs no database:
every entry is a single file named by the SHA-256 hash of its key.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of keep",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("keep v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(kv.KeyValueCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "serializer"
	RootCmd.PersistentFlags().String(key, "binary", util.WrapString("serializer to use (json, gob, binary)"))
	key = "transport"
	RootCmd.PersistentFlags().String(key, "http", util.WrapString("transport to use (http, tcp, unix)"))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
