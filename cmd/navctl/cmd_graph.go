package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/atomicstack/navstate/internal/app"
	"github.com/atomicstack/navstate/internal/deeplink"
	"github.com/atomicstack/navstate/internal/format/outline"
	"github.com/atomicstack/navstate/internal/format/table"
	"github.com/atomicstack/navstate/internal/graph"
	"github.com/atomicstack/navstate/internal/labels"
	"github.com/atomicstack/navstate/internal/nav"
)

// =============================================================================
// ROUTES COMMAND
// =============================================================================

func newRoutesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "routes <graph>",
		Short: "List deep-link patterns with their routes and scopes",
		Args:  cobra.ExactArgs(1),
		RunE:  runRoutes,
	}
}

// runRoutes prints one row per pattern followed by the routes only reachable
// through the registry.
func runRoutes(cmd *cobra.Command, args []string) error {
	g, err := graph.Load(args[0])
	if err != nil {
		return err
	}
	reg := g.Registry()
	rows := [][]string{{"PATTERN", "ROUTE", "SCOPE"}}
	linked := make(map[string]bool)
	for _, p := range g.Router().Patterns() {
		route, _ := g.Router().Route(p)
		linked[route] = true
		rows = append(rows, []string{p, route, scopeColumn(reg.IsContainer(route), route, g)})
	}
	for _, route := range g.Destinations() {
		if linked[route] {
			continue
		}
		rows = append(rows, []string{"-", route, scopeColumn(reg.IsContainer(route), route, g)})
	}
	out := cmd.OutOrStdout()
	for _, line := range table.Format(rows, nil) {
		fmt.Fprintln(out, strings.TrimRight(line, " "))
	}
	return nil
}

func scopeColumn(container bool, route string, g *graph.Graph) string {
	if container {
		return "container"
	}
	if s, ok := g.Registry().ScopeKey(route); ok {
		return string(s)
	}
	return "-"
}

// =============================================================================
// RESOLVE COMMAND
// =============================================================================

type resolveOptions struct {
	graphPath string
	mode      string
	keys      bool
	locale    string
}

func newResolveCmd() *cobra.Command {
	opts := &resolveOptions{}
	cmd := &cobra.Command{
		Use:   "resolve <link>",
		Short: "Reconstruct the tree a deep link opens and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, opts, args[0])
		},
	}
	cmd.Flags().StringVarP(&opts.graphPath, "graph", "g", "nav.yaml", "navigation graph file")
	cmd.Flags().StringVar(&opts.mode, "mode", deeplink.ModeReplace.String(), "replace or graft onto the start tree")
	cmd.Flags().BoolVar(&opts.keys, "keys", false, "show node keys")
	cmd.Flags().StringVar(&opts.locale, "locale", "", "label locale")
	return cmd
}

func runResolve(cmd *cobra.Command, opts *resolveOptions, link string) error {
	mode, err := deeplink.ParseMode(opts.mode)
	if err != nil {
		return err
	}
	g, err := graph.Load(opts.graphPath)
	if err != nil {
		return err
	}
	lbl, err := labels.New(opts.locale, g.Labels)
	if err != nil {
		return err
	}
	keys := &nav.SequentialKeys{}
	var current nav.Node
	if mode == deeplink.ModeGraft {
		mut := nav.NewMutator(g.Registry(), g.Registry(), keys)
		if current, err = app.InitialRoot(g, mut, g.StartDestination()); err != nil {
			return err
		}
	}
	root, err := deeplink.NewResolver(g.Router(), g.Registry(), keys).Resolve(current, link, mode)
	if err != nil {
		if !errors.Is(err, deeplink.ErrNoMatch) {
			return err
		}
		if suggestions := g.Router().Suggest(link, 3); len(suggestions) > 0 {
			return fmt.Errorf("%w (did you mean %s?)", err, strings.Join(suggestions, ", "))
		}
		return err
	}
	out := cmd.OutOrStdout()
	for _, line := range outline.Render(root, outline.Options{Label: lbl.Label, Keys: opts.keys}) {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out, "→", strings.Join(outline.Breadcrumb(root, lbl.Label), " → "))
	return nil
}

// =============================================================================
// VALIDATE COMMAND
// =============================================================================

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <graph>...",
		Short: "Check graph files and report every broken one",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runValidate,
	}
}

// runValidate loads every file and builds its start tree, so a start
// destination the registry cannot materialise is caught too.
func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range args {
		if err := validateGraph(path); err != nil {
			failed++
			fmt.Fprintf(out, "FAIL %s: %v\n", path, err)
			continue
		}
		fmt.Fprintf(out, "ok   %s\n", path)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d graphs invalid", failed, len(args))
	}
	return nil
}

func validateGraph(path string) error {
	g, err := graph.Load(path)
	if err != nil {
		return err
	}
	mut := nav.NewMutator(g.Registry(), g.Registry(), &nav.SequentialKeys{})
	root, err := app.InitialRoot(g, mut, g.StartDestination())
	if err != nil {
		return err
	}
	return nav.Validate(root)
}
