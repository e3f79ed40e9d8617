// Command hiscorebot refreshes the RuneScape Wiki's hiscore counts module.
// One run scrapes the ranking ladders for every count table, snapshots the
// results to disk and edits the module on each configured language's wiki.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/weirdgloop/hiscorebot/internal/config"
	"github.com/weirdgloop/hiscorebot/internal/counts"
	"github.com/weirdgloop/hiscorebot/internal/hiscores"
	"github.com/weirdgloop/hiscorebot/internal/logging"
	"github.com/weirdgloop/hiscorebot/internal/mediawiki"
	"github.com/weirdgloop/hiscorebot/internal/proxy"
	"github.com/weirdgloop/hiscorebot/internal/status"
)

var version = "dev"

var verbose int

var rootCmd = &cobra.Command{
	Use:   "hiscorebot <config>",
	Short: "Update the wiki's hiscore counts module",
	Long: `Update the wiki's hiscore counts module.

Reads the previous counts from the English module, walks the hiscores
ranking ladders to refresh them, writes a JSON snapshot next to the logs,
and saves the module on every configured language's wiki.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), args[0])
	},
}

func init() {
	rootCmd.Flags().CountVarP(&verbose, "verbose", "v", "increase log verbosity")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	start := time.Now().UTC()

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logPath, closeLog, err := logging.Setup(verbose, cfg.LogDir, start)
	if err != nil {
		return err
	}
	defer closeLog()

	runID := uuid.NewString()
	slog.Info("hiscore counts run starting",
		"version", version, "run_id", runID, "log", logPath)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rot := proxy.New(cfg.Proxies,
		time.Duration(cfg.ProxyDelay)*time.Second,
		time.Duration(cfg.RequestDelay)*time.Second)
	client := hiscores.NewClient(rot)

	// The status server lives alongside the run and stops with it.
	g, gctx := errgroup.WithContext(ctx)
	workCtx, cancel := context.WithCancel(gctx)
	defer cancel()
	if cfg.StatusAddr != "" {
		srv := status.New(cfg.StatusAddr, runID, start, client)
		g.Go(func() error { return srv.Run(workCtx) })
	}

	runErr := collectAndPublish(workCtx, cfg, client, start)

	cancel()
	if err := g.Wait(); err != nil {
		slog.Warn("status server stopped with error", "error", err)
	}

	slog.Info("run complete",
		"requests", humanize.Comma(client.TotalRequests()),
		"rate_limit_events", client.ErrorRequests(),
		"cooldown_seconds", rot.Cooldown().Seconds(),
		"elapsed", time.Since(start).Round(time.Second).String())

	return runErr
}

// collectAndPublish is the body of one run: seed from the English module,
// refresh every count, snapshot to disk, then publish per language. Errors
// before the snapshot is written are fatal; a failed language publish is
// reported but does not stop the remaining languages.
func collectAndPublish(ctx context.Context, cfg config.Config, client *hiscores.Client, start time.Time) error {
	prior, err := fetchPrior(ctx, cfg.Wiki.EN)
	if err != nil {
		return fmt.Errorf("reading previous counts: %w", err)
	}
	slog.Info("previous counts parsed", "cells", prior.Len())

	snap := counts.Update(ctx, client, prior, start)

	snapshotPath := filepath.Join(cfg.LogDir,
		fmt.Sprintf("hiscorecounts-%s.json", start.Format("2006-01-02_15-04-05")))
	if err := snap.WriteFile(snapshotPath); err != nil {
		return err
	}
	slog.Info("counts snapshot written", "path", snapshotPath)

	languages := []struct {
		lang counts.Language
		wiki *config.Wiki
	}{
		{counts.EN, cfg.Wiki.EN},
		{counts.PTBR, cfg.Wiki.PtBR},
	}

	var firstErr error
	for _, l := range languages {
		if l.wiki == nil {
			continue
		}
		if err := publishLanguage(ctx, l.wiki, l.lang, snap); err != nil {
			slog.Error("publish failed", "language", l.lang.String(), "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// fetchPrior reads the English module inside a scoped session and parses
// the previous counts out of it.
func fetchPrior(ctx context.Context, wiki *config.Wiki) (*counts.Snapshot, error) {
	session, err := mediawiki.NewClient(wiki.APIPath, wiki.Username, wiki.Password)
	if err != nil {
		return nil, err
	}
	if err := session.Login(ctx); err != nil {
		return nil, err
	}
	defer logout(ctx, session)

	text, err := session.PageContent(ctx, counts.EN.Module())
	if err != nil {
		return nil, err
	}
	return counts.ParseModule(text), nil
}

func publishLanguage(ctx context.Context, wiki *config.Wiki, lang counts.Language, snap *counts.Snapshot) error {
	session, err := mediawiki.NewClient(wiki.APIPath, wiki.Username, wiki.Password)
	if err != nil {
		return err
	}
	if err := session.Login(ctx); err != nil {
		return err
	}
	defer logout(ctx, session)

	return counts.Publish(ctx, session, lang, snap)
}

func logout(ctx context.Context, session *mediawiki.Client) {
	// Log out even when the surrounding work was cancelled.
	if err := session.Logout(context.WithoutCancel(ctx)); err != nil {
		slog.Warn("logout failed", "error", err)
	}
}
