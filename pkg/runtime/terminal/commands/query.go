package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/de-tools/service-atlas/pkg/runtime/terminal/export"
)

type QueryCmd struct {
	env      Env
	reporter *export.Reporter
	flags    rangeFlags
}

func NewQueryCmd(env Env, reporter *export.Reporter) *cobra.Command {
	qc := &QueryCmd{env: env, reporter: reporter}
	cmd := &cobra.Command{
		Use:   "query",
		Short: "List the services of a period",
		RunE:  qc.run,
	}
	qc.flags.register(cmd)
	return cmd
}

func (qc *QueryCmd) run(cmd *cobra.Command, _ []string) error {
	req, filter, err := qc.flags.request()
	if err != nil {
		return err
	}
	ctx, s, err := qc.env.Open(cmd.Context())
	if err != nil {
		return err
	}
	defer closeSession(ctx, s)

	result := s.Controller.Load(ctx, req)
	if result.Failed {
		return fmt.Errorf("failed to load services")
	}
	return qc.reporter.Records(filter.Apply(result.Records))
}
