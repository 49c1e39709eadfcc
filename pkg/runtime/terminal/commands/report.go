package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/de-tools/service-atlas/pkg/services/report"
)

type ReportCmd struct {
	env    Env
	table  ReportHandler
	plain  ReportHandler
	flags  rangeFlags
	format string
}

func NewReportCmd(env Env, table, plain ReportHandler) *cobra.Command {
	rc := &ReportCmd{env: env, table: table, plain: plain}
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Summarize technicians, cities and hourly demand of a period",
		RunE:  rc.run,
	}
	rc.flags.register(cmd)
	cmd.Flags().StringVar(&rc.format, "format", "table", "Output format (table or plain)")
	return cmd
}

func (rc *ReportCmd) run(cmd *cobra.Command, _ []string) error {
	var handler ReportHandler
	switch rc.format {
	case "table":
		handler = rc.table
	case "plain":
		handler = rc.plain
	default:
		return fmt.Errorf("unknown format %q", rc.format)
	}

	req, filter, err := rc.flags.request()
	if err != nil {
		return err
	}
	ctx, s, err := rc.env.Open(cmd.Context())
	if err != nil {
		return err
	}
	defer closeSession(ctx, s)

	result := s.Controller.Load(ctx, req)
	if result.Failed {
		return fmt.Errorf("failed to load services")
	}
	if len(result.Records) == 0 {
		return nil
	}
	return handler.Handle(report.Build(result, filter))
}
