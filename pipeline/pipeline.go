// Package pipeline ties reading, header detection, aggregation, enrichment
// and report writing into the two jobs the service runs.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jalad-shrimali/cdr-analyzer/aggregate"
	"github.com/jalad-shrimali/cdr-analyzer/enrich"
	"github.com/jalad-shrimali/cdr-analyzer/geofence"
	"github.com/jalad-shrimali/cdr-analyzer/headers"
	"github.com/jalad-shrimali/cdr-analyzer/report"
	"github.com/jalad-shrimali/cdr-analyzer/sheet"
)

// ErrInsufficientData means no row yielded a valid B-party number, an
// address or an IMEI.
var ErrInsufficientData = errors.New("insufficient data: no valid mobile numbers, addresses or IMEIs found")

// Default enrichment depths for callers that do not choose their own.
const (
	DefaultTopN       = 15
	DefaultCallerTopN = 15
)

type Config struct {
	Enricher *enrich.Enricher          // nil disables enrichment
	Cells    aggregate.AddressResolver // nil disables cell-ID addresses
	Location *time.Location            // geo-fencing wall clock zone; nil means time.Local
	Logger   *zap.Logger
}

// Analyzer runs analysis and geo-fencing jobs. It holds no per-run state and
// is safe for concurrent use.
type Analyzer struct {
	enricher *enrich.Enricher
	cells    aggregate.AddressResolver
	loc      *time.Location
	log      *zap.Logger
}

func New(cfg Config) *Analyzer {
	a := &Analyzer{
		enricher: cfg.Enricher,
		cells:    cfg.Cells,
		loc:      cfg.Location,
		log:      cfg.Logger,
	}
	if a.log == nil {
		a.log = zap.NewNop()
	}
	return a
}

type AnalyzeOptions struct {
	TopN       int
	CallerTopN int
	Lookup     bool // SIM registry
	CallerID   bool
}

// Output is a finished workbook plus the run it came from.
type Output struct {
	ID       string
	Workbook *bytes.Buffer
	Rows     int
	Numbers  int
}

// frame locates the header row of tbl and frames the data under it.
func frame(tbl *sheet.Table) (*sheet.Frame, error) {
	idx, _ := headers.DetectHeaderRow(tbl.TextRows(headers.MaxScanRows))
	return tbl.Frame(idx)
}

// Analyze aggregates tbl by B-party number, enriches the top entries and
// renders the analysis workbook. Input problems are returned before any
// external lookup is made.
func (a *Analyzer) Analyze(ctx context.Context, tbl *sheet.Table, opts AnalyzeOptions) (*Output, error) {
	id := uuid.NewString()
	log := a.log.With(zap.String("analysis_id", id))
	start := time.Now()

	fr, err := frame(tbl)
	if err != nil {
		return nil, err
	}
	cols, err := headers.Resolve(fr.Header, headers.BNumber, headers.Date)
	if err != nil {
		return nil, err
	}
	log.Info("columns resolved",
		zap.Int("header_row", fr.HeaderIndex),
		zap.String("bnumber", cols.BNumber.Name),
		zap.String("date", cols.Date.Name))

	var aggOpts []aggregate.Option
	if a.cells != nil && cols.Address == nil && cols.CellID != nil {
		aggOpts = append(aggOpts, aggregate.WithAddressResolver(a.cells))
	}
	res := aggregate.Run(ctx, fr, cols, aggOpts...)
	if len(res.Numbers)+len(res.Addresses)+len(res.IMEIs) == 0 {
		return nil, ErrInsufficientData
	}
	if len(res.Numbers) == 0 {
		log.Warn("no valid b-party numbers; writing address and imei summaries only")
	}
	log.Info("aggregated",
		zap.Int("rows", res.Rows),
		zap.Int("numbers", len(res.Numbers)),
		zap.Int("unnormalized", res.Unnormalized),
		zap.Int("addresses", len(res.Addresses)),
		zap.Int("imeis", len(res.IMEIs)))

	in := report.Analysis{Result: res, Raw: fr}
	if a.enricher != nil && (opts.Lookup || opts.CallerID) {
		in.Lookup = opts.Lookup && a.enricher.SIMAvailable()
		in.CallerID = opts.CallerID && a.enricher.CallerIDAvailable()
		if opts.Lookup && !in.Lookup {
			log.Warn("sim registry lookup requested but not configured")
		}
		if opts.CallerID && !in.CallerID {
			log.Warn("caller id lookup requested but not configured")
		}
		numbers := make([]string, len(res.Numbers))
		for i, n := range res.Numbers {
			numbers[i] = n.Number
		}
		er := a.enricher.Enrich(ctx, numbers, enrich.Options{
			TopN:       opts.TopN,
			CallerTopN: opts.CallerTopN,
			SIM:        in.Lookup,
			CallerID:   in.CallerID,
		})
		in.Enrichment = er.Records
	}

	buf, err := report.WriteAnalysis(in)
	if err != nil {
		return nil, fmt.Errorf("write analysis workbook: %w", err)
	}
	log.Info("analysis complete", zap.Int("bytes", buf.Len()), zap.Duration("took", time.Since(start)))
	return &Output{ID: id, Workbook: buf, Rows: res.Rows, Numbers: len(res.Numbers)}, nil
}

// Geofence filters tbl to a time-of-day window and renders the geo-fencing
// workbook.
func (a *Analyzer) Geofence(ctx context.Context, tbl *sheet.Table, opts geofence.Options) (*Output, error) {
	id := uuid.NewString()
	log := a.log.With(zap.String("analysis_id", id))
	start := time.Now()

	fr, err := frame(tbl)
	if err != nil {
		return nil, err
	}
	if opts.Location == nil {
		opts.Location = a.loc
	}
	res, err := geofence.Run(fr, opts)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	log.Info("geofence filtered",
		zap.Stringer("window", opts.Window),
		zap.Int("scanned", res.Scanned),
		zap.Int("matched", len(res.Rows)),
		zap.Int("numbers", len(res.Summary)))

	buf, err := report.WriteGeofence(res)
	if err != nil {
		return nil, fmt.Errorf("write geofence workbook: %w", err)
	}
	log.Info("geofence complete", zap.Int("bytes", buf.Len()), zap.Duration("took", time.Since(start)))
	return &Output{ID: id, Workbook: buf, Rows: len(res.Rows), Numbers: len(res.Summary)}, nil
}
