// Package cmd holds the localboard command line.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"LocalBoard/internal/config"
	"LocalBoard/internal/logging"
	lbnet "LocalBoard/internal/net"
)

// options are the flags shared by every command.
type options struct {
	configFile string
	noShare    bool
}

// NewRootCmd builds the command tree. Running the root command hosts a
// board; a share link as the only argument joins one instead, so the binary
// can be registered as the localboard:// handler.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&options{})
}

func newRootCmd(opts *options) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "localboard [localboard://host:port]",
		Short: "Shared whiteboard for the local network",
		Long: `LocalBoard is a whiteboard that smooths what you draw and shares it
with other boards on the same network. Run it without arguments to host a
board, or pass a share link to join one.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if !strings.HasPrefix(args[0], lbnet.LinkScheme) {
					return fmt.Errorf("unexpected argument %q, want a %s link", args[0], lbnet.LinkScheme)
				}
				return runJoin(cmd, opts, args[0])
			}
			return runHost(cmd, opts)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "config file (default is $HOME/.config/localboard/config.yaml)")
	flags.Bool("multi-line", true, "keep every stroke instead of one at a time")
	flags.Bool("clear-on-finish", false, "clear the board as soon as a stroke is finished")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.BoolVar(&opts.noShare, "no-share", false, "do not serve the board to other peers")

	rootCmd.AddCommand(newJoinCmd(opts), newBrowseCmd())
	return rootCmd
}

// Execute runs the command line until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := NewRootCmd().ExecuteContext(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

// flagKeys maps config keys to the persistent flags that override them.
var flagKeys = map[string]string{
	"drawing.multi_line_mode": "multi-line",
	"drawing.clear_on_finish": "clear-on-finish",
	"logging.level":           "log-level",
}

// loadConfig reads the configuration with flag overrides applied and
// installs the logger it asks for.
func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	v := config.New(opts.configFile)
	if err := bindFlags(cmd, v); err != nil {
		return nil, err
	}
	if err := config.ReadIn(v); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg, err := config.Load(v)
	if err != nil {
		return nil, err
	}
	if opts.noShare {
		cfg.Share.Enabled = false
	}

	logging.SetLogger(logging.NewTextLogger(cmd.ErrOrStderr(), cfg.Logging.Level))
	logging.Logger().Debug("[CONFIG] loaded", "file", v.ConfigFileUsed(),
		"multi_line", cfg.Drawing.MultiLineMode,
		"smoothing", cfg.Smoothing.Enabled,
		"granularity", cfg.Smoothing.Granularity)
	return cfg, nil
}

func bindFlags(cmd *cobra.Command, v *viper.Viper) error {
	for key, name := range flagKeys {
		f := cmd.Flag(name)
		if f == nil {
			return fmt.Errorf("flag --%s is not defined", name)
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding --%s: %w", name, err)
		}
	}
	return nil
}
