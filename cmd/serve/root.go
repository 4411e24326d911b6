package serve

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ValentinKolb/keep/cmd/util"
	"github.com/ValentinKolb/keep/rpc/common"
	"github.com/ValentinKolb/keep/rpc/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:   "serve",
		Short: "Start the keep server",
		Long: `Start the keep server with the specified configuration. The configuration can be set via command line flags or environment variables.
The format of the environment variables is KEEP_<flag> (e.g. KEEP_LOG_LEVEL=debug)`,
		Args:    cobra.NoArgs,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(util.InitConfig)

	// add flags
	key := "namespaces"
	ServeCmd.PersistentFlags().String(key, "storage=fstore", util.WrapString("Comma-separated list of namespaces to serve. Format: NAME=TYPE where TYPE is one of: fstore, lstore"))

	key = "root"
	ServeCmd.PersistentFlags().String(key, ".keep", util.WrapString("Root directory of the file stores. Every fstore namespace is stored in <root>/<name>"))

	key = "concurrency"
	ServeCmd.PersistentFlags().Int(key, 0, util.WrapString("Number of files read or removed in parallel by aggregate operations (0 = number of CPUs)"))

	key = "sync-writes"
	ServeCmd.PersistentFlags().Bool(key, false, util.WrapString("Flush every written file to disk before it replaces the previous value"))

	key = "endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:8080", util.WrapString("The address on which the API will listen (e.g. localhost:8080, /tmp/keep.sock, ...)"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", util.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	// bind the flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	// parse namespaces
	serveCmdConfig.Namespaces = []common.ServerNamespace{}
	for _, def := range strings.Split(viper.GetString("namespaces"), ",") {
		if strings.TrimSpace(def) == "" {
			continue
		}
		ns, err := common.ParseNamespace(def)
		if err != nil {
			return err
		}
		serveCmdConfig.Namespaces = append(serveCmdConfig.Namespaces, ns)
	}
	if len(serveCmdConfig.Namespaces) == 0 {
		return fmt.Errorf("at least one namespace is required")
	}

	// read the configuration from the command line flags and environment variables
	serveCmdConfig.Root = viper.GetString("root")
	serveCmdConfig.Concurrency = viper.GetInt("concurrency")
	serveCmdConfig.SyncWrites = viper.GetBool("sync-writes")
	serveCmdConfig.Endpoint = viper.GetString("endpoint")
	serveCmdConfig.LogLevel = viper.GetString("log-level")

	return nil
}

// run starts the keep server and stops it on SIGINT or SIGTERM
func run(_ *cobra.Command, _ []string) error {
	s, err := util.GetSerializer()
	if err != nil {
		return err
	}

	t, err := util.GetServerTransport()
	if err != nil {
		return err
	}

	serv := server.NewRPCServer(
		*serveCmdConfig,
		t,
		s,
	)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sig)

	go func() {
		<-sig
		server.Logger.Infof("shutting down")
		if err := serv.Close(); err != nil {
			server.Logger.Errorf("error closing server: %v", err)
		}
	}()

	// blocks until the transport is closed
	return serv.Serve()
}
