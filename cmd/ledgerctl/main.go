// ledgerctl - консольный клиент API журнала расходов.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fsdevblog/splitledger/internal/transport/client"
)

const (
	defaultServer  = "http://localhost:8080"
	defaultTimeout = 10 * time.Second
)

// cli хранит HTTP клиент, собранный из настроек viper после разбора флагов.
type cli struct {
	v      *viper.Viper
	client client.HTTPClient
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &cli{v: viper.New()}

	var cfgFile string
	rootCmd := &cobra.Command{
		Use:           "ledgerctl",
		Short:         "Command line client for the split ledger API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return c.init(cfgFile)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./ledgerctl.yaml)")
	flags.String("server", defaultServer, "API base URL")
	flags.Duration("timeout", defaultTimeout, "request timeout")

	_ = c.v.BindPFlag("server", flags.Lookup("server"))
	_ = c.v.BindPFlag("timeout", flags.Lookup("timeout"))

	rootCmd.AddCommand(c.usersCmd())
	rootCmd.AddCommand(c.groupsCmd())
	rootCmd.AddCommand(c.expensesCmd())
	rootCmd.AddCommand(c.balancesCmd())

	return rootCmd
}

// init читает конфиг и переменные окружения LEDGERCTL_*. Флаги имеют приоритет.
func (c *cli) init(cfgFile string) error {
	if cfgFile != "" {
		c.v.SetConfigFile(cfgFile)
	} else {
		c.v.AddConfigPath(".")
		c.v.SetConfigName("ledgerctl")
		c.v.SetConfigType("yaml")
	}

	c.v.SetEnvPrefix("LEDGERCTL")
	c.v.AutomaticEnv()

	if err := c.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	server := strings.TrimRight(c.v.GetString("server"), "/")
	c.client = client.New(server, c.v.GetDuration("timeout"))
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return err //nolint:wrapcheck
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}
