package commands

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/de-tools/service-atlas/pkg/services/backends"
	"github.com/de-tools/service-atlas/pkg/services/importer"
	"github.com/de-tools/service-atlas/pkg/services/normalize"
	"github.com/de-tools/service-atlas/pkg/store/records"
)

type ImportCmd struct {
	env       Env
	file      string
	sheet     string
	appendTo  bool
	keepCase  bool
	noIndexes bool
}

func NewImportCmd(env Env) *cobra.Command {
	ic := &ImportCmd{env: env}
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load a spreadsheet of services into the configured SQL backend",
		RunE:  ic.run,
	}

	cmd.Flags().StringVar(&ic.file, "file", "", "Path to the .xlsx file or an s3://bucket/key URL")
	cmd.Flags().StringVar(&ic.sheet, "sheet", "", "Sheet name (default is the first sheet)")
	cmd.Flags().BoolVar(&ic.appendTo, "append", false, "Append instead of replacing the table")
	cmd.Flags().BoolVar(&ic.keepCase, "keep-case", false, "Keep text values as written")
	cmd.Flags().BoolVar(&ic.noIndexes, "no-indexes", false, "Skip index creation")

	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func (ic *ImportCmd) run(cmd *cobra.Command, _ []string) error {
	ctx, cfg, err := ic.env.LoadConfig(cmd.Context())
	if err != nil {
		return err
	}

	db, dialect, err := backends.OpenDB(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to close database")
		}
	}()

	table := backends.Table(cfg)
	w, err := records.NewWriter(db, dialect, table)
	if err != nil {
		return err
	}

	settings := cfg.Import
	if ic.sheet != "" {
		settings.Sheet = ic.sheet
	}
	if ic.appendTo {
		settings.Replace = false
	}
	if ic.keepCase {
		settings.TitleCase = false
	}
	if ic.noIndexes {
		settings.Indexes = false
	}

	summary, err := importer.New(db, w, normalize.New(), settings).Import(ctx, ic.file)
	if err != nil {
		return fmt.Errorf("import of %s failed: %w", ic.file, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Imported %d services into %s.%s\n", summary.Written, dialect.Name, table)
	fmt.Fprintf(out, "Rows read: %d, without date: %d, duplicates: %d\n",
		summary.Read, summary.DroppedTimestamp, summary.Duplicates)
	fmt.Fprintf(out, "Technicians: %d, cities: %d\n", summary.Technicians, summary.Cities)
	fmt.Fprintf(out, "Period: %s to %s\n",
		summary.First.Format("02/01/2006"), summary.Last.Format("02/01/2006"))
	fmt.Fprintf(out, "Technician value: R$ %.2f, company value: R$ %.2f\n",
		summary.TechnicianValueTotal, summary.CompanyValueTotal)
	return nil
}
