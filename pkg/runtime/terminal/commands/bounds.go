package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/de-tools/service-atlas/pkg/services/dashboard"
)

type BoundsCmd struct {
	env Env
}

func NewBoundsCmd(env Env) *cobra.Command {
	bc := &BoundsCmd{env: env}
	return &cobra.Command{
		Use:   "bounds",
		Short: "Show the period covered by the backend",
		RunE:  bc.run,
	}
}

func (bc *BoundsCmd) run(cmd *cobra.Command, _ []string) error {
	ctx, s, err := bc.env.Open(cmd.Context())
	if err != nil {
		return err
	}
	defer closeSession(ctx, s)

	bounds := s.Controller.Bounds(ctx)
	if bounds == nil {
		return fmt.Errorf("no date bounds available")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "First: %s\nLast:  %s\nRows:  %d\n",
		bounds.First.Format(dashboard.DisplayLayout),
		bounds.Last.Format(dashboard.DisplayLayout),
		bounds.Count)
	return nil
}
