package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/gordian-engine/gsegtree/sgeom"
	"github.com/gordian-engine/gsegtree/sinput"
	"github.com/gordian-engine/gsegtree/smulti"
	"github.com/gordian-engine/gsegtree/svis"
	"github.com/spf13/cobra"
)

func newEvalCmd() *cobra.Command {
	var (
		in      inputFlags
		queries []string
		updates []string
		kinds   string
		render  string
	)

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Build an engine in-process, apply updates, then run queries",
		Example: `  gsegtree eval --values 2,5,1,4,9,3 --query 1:4
  gsegtree eval --csv data.csv --update 2=100 --query 0:6 --kinds sum --render text`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			input, err := in.load()
			if err != nil {
				return err
			}
			ks, err := smulti.ParseKinds(kinds)
			if err != nil {
				return err
			}
			if render != "" && render != "text" && render != "dot" {
				return fmt.Errorf("unknown render format %q", render)
			}

			// Parse every argument before touching the engine.
			as := make([]smulti.Assignment, len(updates))
			for i, u := range updates {
				if as[i], err = sinput.ParseAssignment(u); err != nil {
					return err
				}
			}
			ranges := make([]sgeom.Range, len(queries))
			for i, q := range queries {
				if ranges[i], err = sinput.ParseRange(q); err != nil {
					return err
				}
			}

			e := smulti.New()
			if err := e.Build(input); err != nil {
				return fmt.Errorf("build: %w", err)
			}
			if err := e.UpdateBatch(as); err != nil {
				return fmt.Errorf("update: %w", err)
			}
			results, err := e.QueryBatch(ranges, ks)
			if err != nil {
				return fmt.Errorf("query: %w", err)
			}

			out := cmd.OutOrStdout()
			for i, r := range ranges {
				fmt.Fprintf(out, "%s %s\n", r, formatResult(results[i]))
			}

			if render == "" {
				return nil
			}
			snap, err := svis.NewSnapshot(e)
			if err != nil {
				return err
			}
			return renderSnapshot(out, snap, render)
		},
	}

	in.register(cmd)
	cmd.Flags().StringArrayVar(&queries, "query", nil, "range lo:hi to query, repeatable")
	cmd.Flags().StringArrayVar(&updates, "update", nil, "point update pos=value, repeatable, applied in order before queries")
	cmd.Flags().StringVar(&kinds, "kinds", "min,max,sum", "aggregate kinds to query")
	cmd.Flags().StringVar(&render, "render", "", "render the final tree: text or dot")

	return cmd
}

func formatResult(res map[smulti.Kind]int64) string {
	parts := make([]string, 0, len(res))
	smulti.AllKinds.Each(func(k smulti.Kind) {
		if v, ok := res[k]; ok {
			parts = append(parts, fmt.Sprintf("%s=%d", k, v))
		}
	})
	return strings.Join(parts, " ")
}

func renderSnapshot(w io.Writer, snap svis.Snapshot, format string) error {
	switch format {
	case "text":
		return svis.RenderText(w, snap)
	case "dot":
		return svis.RenderDOT(w, snap)
	default:
		return fmt.Errorf("unknown render format %q", format)
	}
}
