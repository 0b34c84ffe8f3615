package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/On-Jun9/MediaSort/internal/organize"
	"github.com/On-Jun9/MediaSort/internal/runlock"
	"github.com/On-Jun9/MediaSort/pkg/types"
	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newOrganizeCommand(ctx *commandContext) *cobra.Command {
	var (
		source        string
		dest          string
		structure     string
		uncategorized string
		dryRun        bool
		hashVerify    bool
	)

	cmd := &cobra.Command{
		Use:   "organize",
		Short: "Copy a source tree into a date-structured destination",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.loadConfig()
			if err != nil {
				return err
			}
			if source != "" {
				cfg.Source = source
			}
			if dest != "" {
				cfg.Dest = dest
			}
			if structure != "" {
				cfg.Structure = types.StructureTemplate(structure)
			}
			if uncategorized != "" {
				cfg.UncategorizedDir = uncategorized
			}
			if dryRun {
				cfg.DryRun = true
			}
			if hashVerify {
				cfg.HashVerify = true
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			logger, err := openLogger(cfg, out)
			if err != nil {
				return err
			}
			defer logger.Close()

			lock, err := runlock.Acquire(cfg.LockFile)
			if err != nil {
				return err
			}
			defer lock.Release()

			runCtx, stop := signalContext()
			defer stop()

			opts := organize.Options{
				RunID:            uuid.NewString(),
				Source:           cfg.Source,
				Dest:             cfg.Dest,
				Template:         cfg.Structure,
				UncategorizedDir: cfg.UncategorizedDir,
				DryRun:           cfg.DryRun,
				HashVerify:       cfg.HashVerify,
			}

			events := make(chan organize.Event)
			done := make(chan struct{})
			printer := newEventPrinter(out, isTerminal(out))
			go func() {
				defer close(done)
				for ev := range events {
					printer.handle(ev)
				}
			}()

			stats, runErr := organize.New(afero.NewOsFs(), logger).Run(runCtx, opts, events)
			<-done

			cancelled := errors.Is(runErr, context.Canceled)
			if runErr != nil && !cancelled {
				return runErr
			}

			logger.Summary(stats)
			recordHistory(cfg, types.HistoryEntry{
				ID:        opts.RunID,
				Kind:      types.HistoryKindOrganize,
				Source:    opts.Source,
				Dest:      opts.Dest,
				Stats:     &stats,
				Cancelled: cancelled,
			}, cmd.ErrOrStderr())

			if cancelled {
				return fmt.Errorf("organize cancelled: %w", runErr)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&source, "source", "s", "", "source directory")
	cmd.Flags().StringVarP(&dest, "dest", "d", "", "destination directory")
	cmd.Flags().StringVar(&structure, "structure", "", "folder structure: year, year/month, year/month/day")
	cmd.Flags().StringVar(&uncategorized, "uncategorized-dir", "", "folder under dest for files without a usable date")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would be copied without writing")
	cmd.Flags().BoolVar(&hashVerify, "hash-verify", false, "verify copies with SHA-256")

	return cmd
}

// eventPrinter renders organize events. On a terminal it draws a progress
// bar and prints only failures; otherwise it prints every log line.
type eventPrinter struct {
	out io.Writer
	tty bool
	bar *progressbar.ProgressBar
}

func newEventPrinter(out io.Writer, tty bool) *eventPrinter {
	return &eventPrinter{out: out, tty: tty}
}

func (p *eventPrinter) handle(ev organize.Event) {
	switch ev.Type {
	case organize.EventProgress:
		if !p.tty {
			return
		}
		if p.bar == nil {
			p.bar = progressbar.NewOptions(ev.Total,
				progressbar.OptionSetWriter(p.out),
				progressbar.OptionSetDescription("Organizing"),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}
		_ = p.bar.Set(ev.Current)
	case organize.EventLog:
		if p.tty {
			if ev.Action != types.CopyActionFailed {
				return
			}
			if p.bar != nil {
				_ = p.bar.Clear()
			}
		}
		fmt.Fprintln(p.out, ev.Message)
	case organize.EventInfo:
		fmt.Fprintln(p.out, ev.Message)
	case organize.EventComplete:
		if p.bar != nil {
			_ = p.bar.Finish()
		}
	}
	// EventError is returned by Run and reported by main.
}
