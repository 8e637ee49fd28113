package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/erazemk/lostfound/internal/config"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// cli carries state shared by the subcommands.
type cli struct {
	v        *viper.Viper
	cfgFile  string
	envFile  string
	cfg      *config.Config
	closeLog func()
}

func newRootCmd() *cobra.Command {
	c := &cli{v: config.New(), closeLog: func() {}}

	root := &cobra.Command{
		Use:   "lostfound",
		Short: "Campus lost and found with automatic item matching",
		Long: `lostfound keeps track of items students report lost and items security
logs as found, and matches the two automatically.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(c.envFile); err != nil {
				return err
			}
			cfg, err := config.Load(c.v, c.cfgFile)
			if err != nil {
				return err
			}
			c.cfg = cfg

			closeLog, err := setupLogger(cfg.Log)
			if err != nil {
				return err
			}
			c.closeLog = closeLog
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			c.closeLog()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (YAML, TOML or JSON)")
	flags.StringVar(&c.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	flags.StringP("db", "d", "lostfound.db", "SQLite database path")
	flags.StringP("log", "l", "", "log file path (default: stdout/stderr only)")
	c.v.BindPFlag("db", flags.Lookup("db"))
	flags.StringP("admin-user", "u", "admin", "admin username created with a new database")
	c.v.BindPFlag("log", flags.Lookup("log"))
	c.v.BindPFlag("admin_user", flags.Lookup("admin-user"))

	root.AddCommand(newServeCmd(c), newInitCmd(c), newRematchCmd(c), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "lostfound %s\n", version)
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
