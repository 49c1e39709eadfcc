package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/de-tools/service-atlas/pkg/models/domain"
)

type ColumnsCmd struct {
	env Env
}

func NewColumnsCmd(env Env) *cobra.Command {
	cc := &ColumnsCmd{env: env}
	return &cobra.Command{
		Use:   "columns",
		Short: "List the backend columns and the fields they resolve to",
		RunE:  cc.run,
	}
}

func (cc *ColumnsCmd) run(cmd *cobra.Command, _ []string) error {
	ctx, s, err := cc.env.Open(cmd.Context())
	if err != nil {
		return err
	}
	defer closeSession(ctx, s)

	cols, resolved := s.Controller.Columns(ctx)
	if cols == nil {
		return fmt.Errorf("failed to list columns")
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Columns (%d):\n", len(cols))
	for _, c := range cols {
		fmt.Fprintf(out, "  %s\n", c)
	}
	fmt.Fprintln(out, "Resolved fields:")
	for _, f := range domain.Fields {
		if c, ok := resolved[f]; ok {
			fmt.Fprintf(out, "  %-16s %s\n", f, c)
		} else {
			fmt.Fprintf(out, "  %-16s -\n", f)
		}
	}
	return nil
}
