// clipshare: clipboard synchronisation between machines over TCP.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	v := viper.New()

	root := &cobra.Command{
		Use:   "clipshare",
		Short: "Synchronise the system clipboard between machines over TCP",
		Long: `clipshare keeps the system clipboard of two machines in sync.

Each instance polls its local clipboard for changes and pushes them to the
peer over a persistent TCP connection; inbound updates from the peer are
written straight to the local clipboard. Run it on both machines, pointed
at each other, for bidirectional sync:

  host A:  clipshare --listen 9777 --peer hostB:9777
  host B:  clipshare --listen 9777 --peer hostA:9777

One-directional setups need only one flag per side. Use "clipshare
copy/paste/status" as CLI tools on any host running a daemon.

Config file search order (first found wins):
  /etc/clipshare/clipshare.toml
  $HOME/.config/clipshare/clipshare.toml
  path supplied via --config

All flags can be set via CLIPSHARE_<FLAG> env vars or config-file keys.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		PreRunE:      func(cmd *cobra.Command, _ []string) error { return bindViper(cmd, v) },
		RunE:         func(_ *cobra.Command, _ []string) error { return runSync(v) },
	}
	addSyncFlags(root)

	root.AddCommand(
		newCopyCmd(),
		newPasteCmd(),
		newStatusCmd(),
		newWatchCmd(),
		newVersionCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("clipshare %s\n", Version)
		},
	}
}
