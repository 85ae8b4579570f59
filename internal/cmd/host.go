package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"LocalBoard/internal/logging"
	lbnet "LocalBoard/internal/net"
	"LocalBoard/internal/ui"
)

// hostOwner is the owner id the host stamps on its own lines.
const hostOwner = "host"

func runHost(cmd *cobra.Command, opts *options) error {
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	logging.Logger().Info("[HOST] starting", "share", cfg.Share.Enabled)

	title := "LocalBoard"
	var link string
	if cfg.Share.Enabled {
		ip, err := lbnet.GetOutgoingIP()
		if err != nil {
			logging.Logger().Warn("[HOST] could not determine local address", "error", err)
			ip = "127.0.0.1"
		}
		link = lbnet.ShareLink(ip, cfg.Share.Port)
		title = "LocalBoard - " + link
	}

	app := ui.NewApp(title, cfg.CaptureSettings(), hostOwner)
	if !cfg.Share.Enabled {
		app.Run()
		return nil
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	app.OnClosed(cancel)

	board := app.Board
	hub := lbnet.NewHub(board)
	board.Controller().AddSink(hub)
	board.OnClear = func(owner string) {
		hub.Broadcast(lbnet.NewClearMessage(owner), nil)
	}

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Share.Port)
		if err := hub.ListenAndServe(ctx, addr); err != nil {
			logging.Logger().Error("[HOST] relay stopped", "addr", addr, "error", err)
			board.SetStatus("Sharing unavailable: " + err.Error())
		}
	}()

	if cfg.Share.Advertise {
		server, err := lbnet.Advertise(cfg.Share.Port)
		if err != nil {
			logging.Logger().Warn("[HOST] mDNS advertisement failed", "error", err)
		} else {
			defer server.Shutdown()
		}
	}

	logging.Logger().Info("[HOST] share link", "link", link)
	app.Run()
	return nil
}
