package importer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/de-tools/service-atlas/pkg/models/domain"
	"github.com/de-tools/service-atlas/pkg/services/dashboard"
	"github.com/de-tools/service-atlas/pkg/services/normalize"
	"github.com/de-tools/service-atlas/pkg/store/excel"
	"github.com/de-tools/service-atlas/pkg/store/objectstore"
	"github.com/de-tools/service-atlas/pkg/store/records"
)

var ErrNothingToImport = errors.New("no valid rows left after cleaning")

type Settings struct {
	Sheet string `mapstructure:"sheet"`
	// Replace drops the target table before writing.
	Replace bool `mapstructure:"replace"`
	// TitleCase rewrites categorical text as "Title Case".
	TitleCase bool `mapstructure:"title_case"`
	Indexes   bool `mapstructure:"indexes"`
	// S3Region is used for s3:// sources; empty uses the AWS defaults.
	S3Region string `mapstructure:"s3_region"`
}

// Summary reports what an import did.
type Summary struct {
	Read                 int
	DroppedTimestamp     int
	Duplicates           int
	Written              int
	Technicians          int
	Cities               int
	First                time.Time
	Last                 time.Time
	TechnicianValueTotal float64
	CompanyValueTotal    float64
	Duration             time.Duration
}

type Importer struct {
	db         *sql.DB
	writer     records.Writer
	normalizer *normalize.Normalizer
	settings   Settings
	objects    objectstore.Getter
}

type Option func(*Importer)

// WithObjects sets the client used for s3:// sources.
func WithObjects(g objectstore.Getter) Option {
	return func(i *Importer) {
		i.objects = g
	}
}

func New(db *sql.DB, w records.Writer, n *normalize.Normalizer, s Settings, opts ...Option) *Importer {
	i := &Importer{db: db, writer: w, normalizer: n, settings: s}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Import loads a spreadsheet, cleans it and writes it in one transaction.
func (i *Importer) Import(ctx context.Context, path string) (Summary, error) {
	logger := zerolog.Ctx(ctx)
	started := time.Now()

	recs, summary, err := i.Load(ctx, path)
	if err != nil {
		return summary, err
	}

	tx, err := i.db.BeginTx(ctx, nil)
	if err != nil {
		return summary, fmt.Errorf("begin import transaction: %w", err)
	}
	txCtx := records.WithTransaction(ctx, tx)

	if err := i.write(txCtx, recs); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Warn().Err(rbErr).Msg("failed to roll back import")
		}
		return summary, err
	}
	if err := tx.Commit(); err != nil {
		return summary, fmt.Errorf("commit import: %w", err)
	}
	summary.Written = len(recs)

	if i.settings.Indexes {
		if _, err := i.writer.EnsureIndexes(ctx); err != nil {
			return summary, err
		}
	}

	summary.Duration = time.Since(started)
	logger.Info().
		Int("read", summary.Read).
		Int("written", summary.Written).
		Int("dropped", summary.DroppedTimestamp).
		Int("duplicates", summary.Duplicates).
		Dur("took", summary.Duration).
		Msg("import finished")
	return summary, nil
}

func (i *Importer) write(ctx context.Context, recs []domain.ServiceRecord) error {
	if i.settings.Replace {
		if err := i.writer.DropTable(ctx); err != nil {
			return err
		}
	}
	if err := i.writer.CreateTable(ctx); err != nil {
		return err
	}
	_, err := i.writer.Add(ctx, recs)
	return err
}

// localPath downloads s3:// sources and returns a function removing the
// temporary copy.
func (i *Importer) localPath(ctx context.Context, location string) (string, func(), error) {
	bucket, key, ok := objectstore.ParseS3URL(location)
	if !ok {
		return location, func() {}, nil
	}
	if i.objects == nil {
		g, err := objectstore.NewS3Getter(ctx, i.settings.S3Region)
		if err != nil {
			return "", nil, err
		}
		i.objects = g
	}
	path, err := objectstore.Download(ctx, i.objects, bucket, key)
	if err != nil {
		return "", nil, err
	}
	return path, func() {
		if err := os.Remove(path); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Str("path", path).Msg("failed to remove downloaded sheet")
		}
	}, nil
}

// Load reads and cleans a spreadsheet without writing it. location is a
// local path or an s3://bucket/key URL.
func (i *Importer) Load(ctx context.Context, location string) ([]domain.ServiceRecord, Summary, error) {
	var summary Summary

	path, cleanup, err := i.localPath(ctx, location)
	if err != nil {
		return nil, summary, err
	}
	defer cleanup()

	wb, err := excel.OpenWorkbook(path)
	if err != nil {
		return nil, summary, err
	}
	defer func() {
		if err := wb.Close(); err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to close workbook")
		}
	}()

	sheet, err := wb.SheetName(i.settings.Sheet)
	if err != nil {
		return nil, summary, err
	}
	header, err := wb.Header(sheet)
	if err != nil {
		return nil, summary, err
	}
	tsCol, ok := normalize.ResolveColumns(header).Column(domain.FieldTimestamp)
	if !ok {
		return nil, summary, fmt.Errorf("sheet %s has no timestamp column", sheet)
	}

	set, err := wb.Read(sheet, tsCol)
	if err != nil {
		return nil, summary, err
	}
	recs, stats := i.normalizer.NormalizeSet(set)
	summary.Read = stats.Input
	summary.DroppedTimestamp = stats.DroppedTimestamp

	recs = Clean(recs, i.settings.TitleCase)
	summary.Duplicates = stats.Kept - len(recs)
	if len(recs) == 0 {
		return nil, summary, ErrNothingToImport
	}

	techs, cities := map[string]struct{}{}, map[string]struct{}{}
	for _, r := range recs {
		techs[r.TechnicianID] = struct{}{}
		cities[r.City] = struct{}{}
		summary.TechnicianValueTotal += r.TechnicianValue
		summary.CompanyValueTotal += r.CompanyValue
	}
	summary.Technicians = len(techs)
	summary.Cities = len(cities)
	summary.First = recs[0].Timestamp
	summary.Last = recs[len(recs)-1].Timestamp
	return recs, summary, nil
}

type recordKey struct {
	domain.ServiceRecord
	lat, lon       float64
	hasLat, hasLon bool
}

func keyOf(r domain.ServiceRecord) recordKey {
	k := recordKey{ServiceRecord: r}
	k.Latitude, k.Longitude = nil, nil
	if r.Latitude != nil {
		k.lat, k.hasLat = *r.Latitude, true
	}
	if r.Longitude != nil {
		k.lon, k.hasLon = *r.Longitude, true
	}
	return k
}

// Clean removes exact duplicates, optionally title-cases categorical text
// and sorts by timestamp.
func Clean(recs []domain.ServiceRecord, titleCase bool) []domain.ServiceRecord {
	caser := cases.Title(language.BrazilianPortuguese)
	seen := make(map[recordKey]struct{}, len(recs))
	out := make([]domain.ServiceRecord, 0, len(recs))
	for _, r := range recs {
		if titleCase {
			r.TechnicianID = caser.String(r.TechnicianID)
			r.City = caser.String(r.City)
			r.Base = caser.String(r.Base)
			r.Status = caser.String(r.Status)
			r.ServiceType = caser.String(r.ServiceType)
		}
		k := keyOf(r)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	dashboard.SortRecords(out, domain.OrderAscending)
	return slices.Clip(out)
}
