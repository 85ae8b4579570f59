package cmd

import (
	"context"
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"github.com/spf13/cobra"

	"LocalBoard/internal/logging"
	lbnet "LocalBoard/internal/net"
	"LocalBoard/internal/state"
	"LocalBoard/internal/ui"
)

const dialTimeout = 5 * time.Second

func newJoinCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "join <localboard://host:port>",
		Short: "Join a board hosted on the local network",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJoin(cmd, opts, args[0])
		},
	}
}

func runJoin(cmd *cobra.Command, opts *options, link string) error {
	url, err := lbnet.LinkToURL(link)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	logging.Logger().Info("[CLIENT] starting", "link", link)

	// Lines drawn before the host's welcome are attributed to this process.
	app := ui.NewApp("LocalBoard - "+link, cfg.CaptureSettings(), state.SiteID())

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	app.OnClosed(cancel)

	go connect(ctx, url, app.Board)
	app.Run()
	return nil
}

// connect joins the host at url and feeds its messages to board until the
// connection drops or ctx ends.
func connect(ctx context.Context, url string, board *ui.BoardWidget) {
	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	client, err := lbnet.Dial(dialCtx, url)
	cancel()
	if err != nil {
		logging.Logger().Error("[CLIENT] connection failed", "url", url, "error", err)
		board.SetStatus(fmt.Sprintf("Connection failed: %v", err))
		return
	}

	go func() {
		<-ctx.Done()
		_ = client.Close()
	}()

	fyne.Do(func() {
		board.Controller().AddSink(client)
		board.OnClear = func(owner string) {
			if err := client.Send(lbnet.NewClearMessage(owner)); err != nil {
				logging.Logger().Warn("[CLIENT] failed to send clear", "error", err)
			}
		}
	})

	if err := client.Listen(board); err != nil && ctx.Err() == nil {
		logging.Logger().Warn("[CLIENT] disconnected", "error", err)
		board.SetStatus(fmt.Sprintf("Disconnected from host: %v", err))
		return
	}
	board.SetStatus("Disconnected from host")
}
