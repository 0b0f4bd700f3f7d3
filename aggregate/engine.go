// Package aggregate folds framed CDR rows into per-number, per-address and
// per-IMEI statistics in a single pass.
package aggregate

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/jalad-shrimali/cdr-analyzer/headers"
	"github.com/jalad-shrimali/cdr-analyzer/normalize"
	"github.com/jalad-shrimali/cdr-analyzer/sheet"
)

// AddressResolver maps a cell ID to a site address.
type AddressResolver interface {
	Lookup(ctx context.Context, cellID string) (string, bool)
}

// Result is the materialised output, every list sorted by descending count
// with ties kept in first-seen order.
type Result struct {
	Numbers   []NumberStat
	Addresses []KeyStat
	IMEIs     []KeyStat

	Rows         int // data rows consumed
	Unnormalized int // rows whose B-party could not be canonicalised
}

// Engine accumulates rows against a fixed column map.
type Engine struct {
	cols     headers.ColumnMap
	resolver AddressResolver
	cellMemo map[string]string

	numIdx map[string]int
	nums   []NumberStat
	addrs  keyed
	imeis  keyed

	rows, bad int
}

// Option configures an Engine.
type Option func(*Engine)

// WithAddressResolver resolves addresses from cell IDs when the upload has a
// cell-ID column but no address column.
func WithAddressResolver(r AddressResolver) Option {
	return func(e *Engine) { e.resolver = r }
}

func New(cols headers.ColumnMap, opts ...Option) *Engine {
	e := &Engine{
		cols:     cols,
		cellMemo: map[string]string{},
		numIdx:   map[string]int{},
		addrs:    newKeyed(),
		imeis:    newKeyed(),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Run is New + Add for every row + Result.
func Run(ctx context.Context, fr *sheet.Frame, cols headers.ColumnMap, opts ...Option) Result {
	e := New(cols, opts...)
	for _, row := range fr.Rows {
		e.Add(ctx, row)
	}
	return e.Result()
}

// Add folds one data row. The number, address and IMEI maps are updated
// independently, so one row may touch all three.
func (e *Engine) Add(ctx context.Context, row []sheet.Cell) {
	e.rows++

	var (
		ts    time.Time
		hasTS bool
	)
	if e.cols.Date != nil {
		ts, hasTS = normalize.ParseCell(sheet.At(row, e.cols.Date.Index))
	}

	if num, ok := e.number(row); ok {
		i, seen := e.numIdx[num]
		if !seen {
			i = len(e.nums)
			e.numIdx[num] = i
			e.nums = append(e.nums, NumberStat{Number: num})
		}
		st := &e.nums[i]
		st.Count++
		if hasTS {
			st.Span.Observe(ts)
		}
		st.Tally.Add(normalize.ClassifyCallType(e.callText(row)))
	} else {
		e.bad++
	}

	if addr, ok := e.address(ctx, row); ok {
		e.addrs.add(addr, ts, hasTS)
	}
	if imei, ok := text(row, e.cols.IMEI); ok {
		e.imeis.add(imei, ts, hasTS)
	}
}

func (e *Engine) number(row []sheet.Cell) (string, bool) {
	if e.cols.BNumber == nil {
		return "", false
	}
	return normalize.Phone(sheet.At(row, e.cols.BNumber.Index).String())
}

func (e *Engine) callText(row []sheet.Cell) string {
	var parts []string
	if v, ok := text(row, e.cols.Direction); ok {
		parts = append(parts, v)
	}
	if v, ok := text(row, e.cols.Type); ok {
		parts = append(parts, v)
	}
	return strings.Join(parts, " ")
}

func (e *Engine) address(ctx context.Context, row []sheet.Cell) (string, bool) {
	if e.cols.Address != nil {
		return text(row, e.cols.Address)
	}
	if e.cols.CellID == nil || e.resolver == nil {
		return "", false
	}
	id, ok := text(row, e.cols.CellID)
	if !ok {
		return "", false
	}
	addr, hit := e.cellMemo[id]
	if !hit {
		addr, _ = e.resolver.Lookup(ctx, id)
		e.cellMemo[id] = addr
	}
	return addr, addr != ""
}

// Result sorts and returns the aggregates collected so far.
func (e *Engine) Result() Result {
	nums := slices.Clone(e.nums)
	slices.SortStableFunc(nums, func(a, b NumberStat) int { return b.Count - a.Count })
	return Result{
		Numbers:      nums,
		Addresses:    e.addrs.sorted(),
		IMEIs:        e.imeis.sorted(),
		Rows:         e.rows,
		Unnormalized: e.bad,
	}
}

/* ──────────── helpers ──────────── */

// text returns the trimmed cell text of col; empty and "None" count as absent.
func text(row []sheet.Cell, col *headers.Column) (string, bool) {
	if col == nil {
		return "", false
	}
	v := sheet.At(row, col.Index).String()
	if v == "" || strings.EqualFold(v, "none") {
		return "", false
	}
	return v, true
}

type keyed struct {
	idx   map[string]int
	stats []KeyStat
}

func newKeyed() keyed { return keyed{idx: map[string]int{}} }

func (k *keyed) add(key string, ts time.Time, hasTS bool) {
	i, ok := k.idx[key]
	if !ok {
		i = len(k.stats)
		k.idx[key] = i
		k.stats = append(k.stats, KeyStat{Key: key})
	}
	st := &k.stats[i]
	st.Count++
	if hasTS {
		st.Span.Observe(ts)
	}
}

func (k *keyed) sorted() []KeyStat {
	out := slices.Clone(k.stats)
	slices.SortStableFunc(out, func(a, b KeyStat) int { return b.Count - a.Count })
	return out
}
