package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/quadstore/internal/quadfile"
	"github.com/roach88/quadstore/internal/rdf"
)

// CountResult is the JSON payload of add, delete, delete-matches and size.
type CountResult struct {
	Count int64 `json:"count"`
}

// HasResult is the JSON payload of has.
type HasResult struct {
	Present bool `json:"present"`
	Quads   int  `json:"quads"`
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <file>...",
		Short: "Add quads from files",
		Long: `Add every quad in the given files. Quads already stored are skipped.

Files are N-Quads (.nq, .nt) or YAML/JSON quad lists (.yaml, .yml, .json);
"-" reads N-Quads from stdin.

Example:
  quadstore add people.nq
  cat people.nq | quadstore add -`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(rootOpts, args, cmd)
		},
	}
}

// NewDeleteCommand creates the delete command.
func NewDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <file>...",
		Short: "Delete quads listed in files",
		Long: `Delete every quad in the given files. Quads that are not stored are ignored.

Example:
  quadstore delete stale.nq`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(rootOpts, args, cmd)
		},
	}
}

// NewHasCommand creates the has command.
func NewHasCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "has <file>...",
		Short: "Check that every quad in files is stored",
		Long: `Check that every quad in the given files is stored.

Exit codes:
  0 - All quads are stored
  1 - At least one quad is missing, or the store failed
  2 - Command error (unreadable file, invalid quad)`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHas(rootOpts, args, cmd)
		},
	}
}

func runAdd(opts *RootOptions, files []string, cmd *cobra.Command) error {
	out := formatter(opts, cmd)
	quads, err := readQuadFiles(files, cmd)
	if err != nil {
		return out.Fail(CodeInput, WrapExitError(ExitCommandError, "failed to read quads", err))
	}

	s, err := openSession(opts)
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)
	defer s.Close(ctx)

	n, err := s.store.Add(ctx, quads...)
	if err != nil {
		exitErr, code := storeExitError("add", err)
		return out.Fail(code, exitErr)
	}
	out.VerboseLog("read %d quads from %d files", len(quads), len(files))
	return out.Success(fmt.Sprintf("added %d quads", n), CountResult{Count: int64(n)})
}

func runDelete(opts *RootOptions, files []string, cmd *cobra.Command) error {
	out := formatter(opts, cmd)
	quads, err := readQuadFiles(files, cmd)
	if err != nil {
		return out.Fail(CodeInput, WrapExitError(ExitCommandError, "failed to read quads", err))
	}

	s, err := openSession(opts)
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)
	defer s.Close(ctx)

	n, err := s.store.Delete(ctx, quads...)
	if err != nil {
		exitErr, code := storeExitError("delete", err)
		return out.Fail(code, exitErr)
	}
	return out.Success(fmt.Sprintf("deleted %d quads", n), CountResult{Count: int64(n)})
}

func runHas(opts *RootOptions, files []string, cmd *cobra.Command) error {
	out := formatter(opts, cmd)
	quads, err := readQuadFiles(files, cmd)
	if err != nil {
		return out.Fail(CodeInput, WrapExitError(ExitCommandError, "failed to read quads", err))
	}

	s, err := openSession(opts)
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)
	defer s.Close(ctx)

	ok, err := s.store.Has(ctx, quads...)
	if err != nil {
		exitErr, code := storeExitError("has", err)
		return out.Fail(code, exitErr)
	}

	text := fmt.Sprintf("all %d quads present", len(quads))
	if !ok {
		text = "missing quads"
	}
	if err := out.Success(text, HasResult{Present: ok, Quads: len(quads)}); err != nil {
		return err
	}
	if !ok {
		missing := NewExitError(ExitFailure, "not all quads are stored")
		missing.reported = true
		return missing
	}
	return nil
}

// readQuadFiles reads every file in order. "-" reads N-Quads from stdin.
func readQuadFiles(files []string, cmd *cobra.Command) ([]rdf.Quad, error) {
	var quads []rdf.Quad
	for _, path := range files {
		var (
			batch []rdf.Quad
			err   error
		)
		if path == "-" {
			batch, err = quadfile.Read(cmd.InOrStdin(), quadfile.FormatNQuads)
		} else {
			batch, err = quadfile.ReadFile(path)
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		quads = append(quads, batch...)
	}
	return quads, nil
}
