package kv

import (
	"github.com/ValentinKolb/keep/cmd/util"
	"github.com/ValentinKolb/keep/lib/store"
	"github.com/ValentinKolb/keep/lib/store/fstore"
	"github.com/ValentinKolb/keep/rpc/client"
	"github.com/ValentinKolb/keep/rpc/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	kvStore store.IStore

	// KeyValueCommands represents the KV command group
	KeyValueCommands = &cobra.Command{
		Use:   "kv",
		Short: "Perform key-value store operations",
		Long: `Perform key-value store operations.

With --dir the commands work directly on the file store in that directory,
otherwise they connect to a keep server (see "keep serve").`,
		PersistentPreRunE: setupKVStore,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add common RPC flags to the KV command
	util.SetupRPCClientFlags(KeyValueCommands)

	key := "dir"
	KeyValueCommands.PersistentFlags().String(key, "", util.WrapString("Use the file store in this directory instead of a server (e.g. .keep/storage)"))

	key = "concurrency"
	KeyValueCommands.PersistentFlags().Int(key, 0, util.WrapString("Number of files read or removed in parallel by --dir stores (0 = number of CPUs)"))

	key = "log-level"
	KeyValueCommands.PersistentFlags().String(key, "warn", util.WrapString("The level at which logs will be output (debug, info, warn, error)"))

	// Add subcommands
	KeyValueCommands.AddCommand(setCmd)
	KeyValueCommands.AddCommand(getCmd)
	KeyValueCommands.AddCommand(delCmd)
	KeyValueCommands.AddCommand(clearCmd)
	KeyValueCommands.AddCommand(dataCmd)
	KeyValueCommands.AddCommand(keysCmd)
	KeyValueCommands.AddCommand(valuesCmd)
	KeyValueCommands.AddCommand(lenCmd)
	KeyValueCommands.AddCommand(perfTestCmd)
}

// setupKVStore initializes either the local file store or the RPC store client
func setupKVStore(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	if err := common.InitLoggers(viper.GetString("log-level")); err != nil {
		return err
	}

	// Case local file store
	if dir := viper.GetString("dir"); dir != "" {
		cfg := fstore.DefaultConfig()
		cfg.Dir = dir
		if c := viper.GetInt("concurrency"); c > 0 {
			cfg.Concurrency = c
		}

		s, err := fstore.Open(cfg)
		if err != nil {
			return err
		}
		util.Logger.Debugf("using file store in %s", s.Dir())
		kvStore = s
		return nil
	}

	// Case RPC store
	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	t, err := util.GetTransport()
	if err != nil {
		return err
	}

	kvStore, err = client.NewRPCStore(
		util.GetNamespace(),
		*util.GetClientConfig(),
		t,
		s,
	)
	return err
}
