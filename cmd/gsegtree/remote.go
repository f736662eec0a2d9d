package main

import (
	"fmt"

	"github.com/gordian-engine/gsegtree/sclient"
	"github.com/gordian-engine/gsegtree/sinput"
	"github.com/gordian-engine/gsegtree/smulti"
	"github.com/spf13/cobra"
)

func newRemoteCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Operate on trees held by a running gsegtree server",
	}
	cmd.PersistentFlags().StringVar(&addr, "addr", "http://127.0.0.1:7878", "server address, http://host:port or unix:///path")

	client := func() (*sclient.Client, error) {
		return sclient.New(addr)
	}

	cmd.AddCommand(
		newRemoteCreateCmd(client),
		newRemoteListCmd(client),
		newRemoteQueryCmd(client),
		newRemoteUpdateCmd(client),
		newRemoteRenderCmd(client),
		newRemoteDeleteCmd(client),
	)
	return cmd
}

type clientFunc func() (*sclient.Client, error)

func newRemoteCreateCmd(client clientFunc) *cobra.Command {
	var in inputFlags
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a tree and print its ID",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			vals, err := in.load()
			if err != nil {
				return err
			}
			c, err := client()
			if err != nil {
				return err
			}
			res, err := c.Create(cmd.Context(), vals)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.ID)
			return nil
		},
	}
	in.register(cmd)
	return cmd
}

func newRemoteListCmd(client clientFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tree IDs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := client()
			if err != nil {
				return err
			}
			ids, err := c.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, id := range ids {
				fmt.Fprintln(cmd.OutOrStdout(), id)
			}
			return nil
		},
	}
}

func newRemoteQueryCmd(client clientFunc) *cobra.Command {
	var kinds string
	cmd := &cobra.Command{
		Use:   "query ID LO:HI",
		Short: "Query a range of a tree",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := sinput.ParseRange(args[1])
			if err != nil {
				return err
			}
			ks, err := smulti.ParseKinds(kinds)
			if err != nil {
				return err
			}
			c, err := client()
			if err != nil {
				return err
			}
			res, err := c.Query(cmd.Context(), args[0], r.Lo, r.Hi, ks)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", r, formatResult(res))
			return nil
		},
	}
	cmd.Flags().StringVar(&kinds, "kinds", "min,max,sum", "aggregate kinds to query")
	return cmd
}

func newRemoteUpdateCmd(client clientFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "update ID POS=VALUE",
		Short: "Set one position of a tree",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := sinput.ParseAssignment(args[1])
			if err != nil {
				return err
			}
			c, err := client()
			if err != nil {
				return err
			}
			return c.Update(cmd.Context(), args[0], a.Pos, a.Value)
		},
	}
}

func newRemoteRenderCmd(client clientFunc) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "render ID",
		Short: "Print a tree as text or Graphviz DOT",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client()
			if err != nil {
				return err
			}
			out, err := c.Render(cmd.Context(), args[0], format)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "text or dot")
	return cmd
}

func newRemoteDeleteCmd(client clientFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a tree",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := client()
			if err != nil {
				return err
			}
			return c.Delete(cmd.Context(), args[0])
		},
	}
}
