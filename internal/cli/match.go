package cli

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/quadstore/internal/quadfile"
	"github.com/roach88/quadstore/internal/rdf"
)

// PatternOptions holds the position flags shared by match and delete-matches.
// Each value is an N-Quads term; an empty flag is a wildcard.
type PatternOptions struct {
	*RootOptions
	Subject   string
	Predicate string
	Object    string
	Graph     string
}

// MatchResult is the JSON payload of match.
type MatchResult struct {
	Count int              `json:"count"`
	Quads []quadfile.Entry `json:"quads"`
}

func (o *PatternOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.Subject, "subject", "s", "", "subject term, e.g. '<ex:hello>' or '_:b1'")
	cmd.Flags().StringVarP(&o.Predicate, "predicate", "p", "", "predicate term")
	cmd.Flags().StringVarP(&o.Object, "object", "o", "", `object term, e.g. '"Hello"@en'`)
	cmd.Flags().StringVarP(&o.Graph, "graph", "g", "", `graph term; "default" selects the default graph`)
}

func (o *PatternOptions) pattern() (rdf.Pattern, error) {
	return quadfile.ParsePattern(o.Subject, o.Predicate, o.Object, o.Graph)
}

// NewMatchCommand creates the match command.
func NewMatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PatternOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Print stored quads matching a pattern",
		Long: `Print every stored quad matching the pattern as N-Quads.
Omitted positions match any term.

Example:
  quadstore match --subject '<ex:hello>'
  quadstore match -p '<rdfs:label>' --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMatch(opts, cmd)
		},
	}
	opts.bind(cmd)
	return cmd
}

// NewDeleteMatchesCommand creates the delete-matches command.
func NewDeleteMatchesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PatternOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "delete-matches",
		Short: "Delete stored quads matching a pattern",
		Long: `Delete every stored quad matching the pattern.
With no position flags every quad is deleted, so --all is required then.

Example:
  quadstore delete-matches --predicate '<rdfs:label>'
  quadstore delete-matches --all`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			all, _ := cmd.Flags().GetBool("all")
			return runDeleteMatches(opts, all, cmd)
		},
	}
	opts.bind(cmd)
	cmd.Flags().Bool("all", false, "allow an empty pattern that deletes every quad")
	return cmd
}

func runMatch(opts *PatternOptions, cmd *cobra.Command) error {
	out := formatter(opts.RootOptions, cmd)
	p, err := opts.pattern()
	if err != nil {
		return out.Fail(CodeInput, WrapExitError(ExitCommandError, "invalid pattern", err))
	}

	s, err := openSession(opts.RootOptions)
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)
	defer s.Close(ctx)

	ds, err := s.store.Match(ctx, p)
	if err != nil {
		exitErr, code := storeExitError("match", err)
		return out.Fail(code, exitErr)
	}

	quads := ds.Quads()
	entries := make([]quadfile.Entry, len(quads))
	for i, q := range quads {
		entries[i] = quadfile.EntryFor(q)
	}

	var buf bytes.Buffer
	if err := quadfile.WriteNQuads(&buf, quads); err != nil {
		return WrapExitError(ExitFailure, "failed to render quads", err)
	}
	return out.Success(strings.TrimSuffix(buf.String(), "\n"), MatchResult{Count: len(quads), Quads: entries})
}

func runDeleteMatches(opts *PatternOptions, all bool, cmd *cobra.Command) error {
	out := formatter(opts.RootOptions, cmd)
	p, err := opts.pattern()
	if err != nil {
		return out.Fail(CodeInput, WrapExitError(ExitCommandError, "invalid pattern", err))
	}
	if p.IsEmpty() && !all {
		return out.Fail(CodeInput, NewExitError(ExitCommandError, "empty pattern deletes every quad; pass --all to confirm"))
	}

	s, err := openSession(opts.RootOptions)
	if err != nil {
		return err
	}
	ctx := commandContext(cmd)
	defer s.Close(ctx)

	n, err := s.store.DeleteMatches(ctx, p)
	if err != nil {
		exitErr, code := storeExitError("delete-matches", err)
		return out.Fail(code, exitErr)
	}
	return out.Success(fmt.Sprintf("deleted %d quads", n), CountResult{Count: int64(n)})
}
