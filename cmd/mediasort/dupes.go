package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/On-Jun9/MediaSort/internal/config"
	"github.com/On-Jun9/MediaSort/internal/dupes"
	"github.com/On-Jun9/MediaSort/internal/log"
	"github.com/On-Jun9/MediaSort/internal/runlock"
	"github.com/On-Jun9/MediaSort/pkg/types"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// resolveFlags are shared by "dupes clean" and "dupes move".
type resolveFlags struct {
	notDuplicate []string
	yes          bool
}

func newDupesCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dupes",
		Short: "Find and resolve same-name same-size duplicates in a folder",
	}
	cmd.AddCommand(newDupesScanCommand(ctx))
	cmd.AddCommand(newDupesCleanCommand(ctx))
	cmd.AddCommand(newDupesMoveCommand(ctx))
	return cmd
}

func newDupesScanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "scan <folder>",
		Short: "List duplicate pairs without changing anything",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.loadConfig()
			if err != nil {
				return err
			}
			logger, err := openLogger(cfg, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer logger.Close()

			sess, err := scanSession(args[0], logger, nil)
			if err != nil {
				return err
			}
			printPairs(cmd.OutOrStdout(), sess)
			return nil
		},
	}
}

func newDupesCleanCommand(ctx *commandContext) *cobra.Command {
	var flags resolveFlags

	cmd := &cobra.Command{
		Use:   "clean <folder>",
		Short: "Delete the later-seen file of every duplicate pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, ctx, args[0], dupes.OperationClean, "", "", flags)
		},
	}
	addResolveFlags(cmd, &flags)
	return cmd
}

func newDupesMoveCommand(ctx *commandContext) *cobra.Command {
	var (
		flags    resolveFlags
		target   string
		conflict string
	)

	cmd := &cobra.Command{
		Use:   "move <folder>",
		Short: "Move the later-seen file of every duplicate pair into a review folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if target == "" {
				return &config.ValidationError{Field: "target", Message: "target folder is required"}
			}
			return runResolve(cmd, ctx, args[0], dupes.OperationMove, target, types.ConflictPolicy(conflict), flags)
		},
	}
	addResolveFlags(cmd, &flags)
	cmd.Flags().StringVarP(&target, "target", "t", "", "folder that receives the later-seen files")
	cmd.Flags().StringVar(&conflict, "conflict", "", "name collision in target: skip, rename")
	return cmd
}

func addResolveFlags(cmd *cobra.Command, flags *resolveFlags) {
	cmd.Flags().StringArrayVar(&flags.notDuplicate, "not-duplicate", nil, `pair to keep, as "FIRST|SECOND" (repeatable)`)
	cmd.Flags().BoolVarP(&flags.yes, "yes", "y", false, "do not ask for confirmation")
}

func runResolve(cmd *cobra.Command, ctx *commandContext, folder, op, target string, conflict types.ConflictPolicy, flags resolveFlags) error {
	cfg, err := ctx.loadConfig()
	if err != nil {
		return err
	}
	if conflict != "" {
		cfg.MoveConflict = conflict
	}
	if err := cfg.Normalize(); err != nil {
		return err
	}

	overrides, err := parsePairs(flags.notDuplicate)
	if err != nil {
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

	sess, err := scanSession(folder, logger, overrides)
	if err != nil {
		return err
	}
	printPairs(out, sess)

	pending := len(sess.Pending())
	if pending == 0 {
		return nil
	}
	if !flags.yes {
		verb := "Delete"
		if op == dupes.OperationMove {
			verb = "Move"
		}
		ok, err := confirm(cmd.InOrStdin(), out, fmt.Sprintf("%s %d later-seen file(s)? [y/N] ", verb, pending))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	runCtx, stop := signalContext()
	defer stop()

	resolver := dupes.NewResolver(afero.NewOsFs(), logger, cfg.MoveConflict)
	entry := types.HistoryEntry{Source: sess.Folder}
	var summary types.ResolveSummary
	if op == dupes.OperationMove {
		if target, err = filepath.Abs(target); err != nil {
			return err
		}
		summary, err = resolver.MoveTo(runCtx, sess, target)
		entry.Kind = types.HistoryKindMove
		entry.Dest = target
	} else {
		summary, err = resolver.CleanNow(runCtx, sess)
		entry.Kind = types.HistoryKindClean
	}

	logger.ResolveSummary(summary)
	entry.Resolve = &summary
	entry.Cancelled = errors.Is(err, context.Canceled)
	recordHistory(cfg, entry, cmd.ErrOrStderr())
	return err
}

// scanSession scans folder into a fresh session and applies overrides.
// Paths are made absolute so they match the scanner's output.
func scanSession(folder string, logger *log.Logger, overrides []types.DuplicatePair) (*dupes.Session, error) {
	abs, err := filepath.Abs(folder)
	if err != nil {
		return nil, err
	}

	pairs, err := dupes.NewScanner(afero.NewOsFs(), logger).Scan(abs)
	if err != nil {
		return nil, err
	}

	sess := dupes.NewSession()
	sess.Load(abs, pairs)
	for _, p := range overrides {
		first, err := filepath.Abs(p.First)
		if err != nil {
			return nil, err
		}
		second, err := filepath.Abs(p.Second)
		if err != nil {
			return nil, err
		}
		sess.MarkNotDuplicate(types.DuplicatePair{First: first, Second: second})
	}
	return sess, nil
}

// parsePairs reads "FIRST|SECOND" values.
func parsePairs(values []string) ([]types.DuplicatePair, error) {
	pairs := make([]types.DuplicatePair, 0, len(values))
	for _, v := range values {
		first, second, ok := strings.Cut(v, "|")
		first, second = strings.TrimSpace(first), strings.TrimSpace(second)
		if !ok || first == "" || second == "" {
			return nil, &config.ValidationError{Field: "not-duplicate", Message: fmt.Sprintf("expected FIRST|SECOND, got %q", v)}
		}
		pairs = append(pairs, types.DuplicatePair{First: first, Second: second})
	}
	return pairs, nil
}

func printPairs(out io.Writer, sess *dupes.Session) {
	if len(sess.Pairs) == 0 {
		fmt.Fprintf(out, "No duplicates found in %s.\n", sess.Folder)
		return
	}

	rows := make([][]string, 0, len(sess.Pairs))
	for i, p := range sess.Pairs {
		mark := ""
		if sess.IsNotDuplicate(p) {
			mark = "not duplicate"
		}
		rows = append(rows, []string{strconv.Itoa(i + 1), p.First, p.Second, mark})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"#", "Kept (first seen)", "Duplicate (later seen)", "Note"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
	))
	fmt.Fprintf(out, "%d pair(s), %d marked not duplicate.\n", len(sess.Pairs), sess.Overrides.Len())
}

func confirm(in io.Reader, out io.Writer, prompt string) (bool, error) {
	fmt.Fprint(out, prompt)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
