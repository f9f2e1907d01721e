package main

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

// cli carries the settings shared by every command.
type cli struct {
	v       *viper.Viper
	cfgFile string
	table   bool
	scale   int32
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:           "ledgerd-cli",
		Short:         "ledgerd CLI tool",
		Long:          `A command line interface for interacting with the ledgerd API.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.initConfig()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&c.cfgFile, "config", "c", "", "config file (default $HOME/.ledgerd.yaml)")
	flags.String("url", "http://localhost:8080", "Base URL of the ledgerd API")
	flags.Duration("timeout", 10*time.Second, "Request timeout")
	flags.BoolVar(&c.table, "table", false, "Render results as a table instead of JSON")
	flags.Int32Var(&c.scale, "scale", 0, "Decimal places used to display amounts in tables")

	_ = c.v.BindPFlag("url", flags.Lookup("url"))
	_ = c.v.BindPFlag("timeout", flags.Lookup("timeout"))

	rootCmd.AddCommand(
		c.idCmd(),
		c.accountsCmd(),
		c.transfersCmd(),
		c.accountCmd(),
		c.ledgerCmd(),
	)

	return rootCmd
}

// initConfig layers flags over LEDGERD_* environment variables over the
// optional config file.
func (c *cli) initConfig() error {
	if c.cfgFile != "" {
		c.v.SetConfigFile(c.cfgFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			c.v.AddConfigPath(home)
		}
		c.v.SetConfigName(".ledgerd")
		c.v.SetConfigType("yaml")
	}

	c.v.SetEnvPrefix("LEDGERD")
	c.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	c.v.AutomaticEnv()

	if err := c.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if c.cfgFile != "" || !errors.As(err, &notFound) {
			return err
		}
	}

	return nil
}

func (c *cli) client() *client {
	return newClient(strings.TrimRight(c.v.GetString("url"), "/"), c.v.GetDuration("timeout"))
}
