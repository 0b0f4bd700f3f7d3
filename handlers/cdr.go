// Package handlers exposes the CDR analysis and geo-fencing jobs over HTTP.
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jalad-shrimali/cdr-analyzer/geofence"
	"github.com/jalad-shrimali/cdr-analyzer/pipeline"
	"github.com/jalad-shrimali/cdr-analyzer/sheet"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Analyzer runs the jobs behind the endpoints.
type Analyzer interface {
	Analyze(ctx context.Context, tbl *sheet.Table, opts pipeline.AnalyzeOptions) (*pipeline.Output, error)
	Geofence(ctx context.Context, tbl *sheet.Table, opts geofence.Options) (*pipeline.Output, error)
}

type Options struct {
	MaxUploadBytes int64
	TopN           int // used when the form omits top_n
	CallerTopN     int // used when the form omits eyecon_top_n
	AllowedOrigins []string
}

type Handler struct {
	an   Analyzer
	opts Options
	log  *zap.Logger
	now  func() time.Time
}

func NewHandler(an Analyzer, opts Options, log *zap.Logger) *Handler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 50 << 20
	}
	if opts.TopN <= 0 {
		opts.TopN = pipeline.DefaultTopN
	}
	if opts.CallerTopN <= 0 {
		opts.CallerTopN = pipeline.DefaultCallerTopN
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{an: an, opts: opts, log: log, now: time.Now}
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Analyze handles POST /api/cdr/analyze.
//
// Form fields: file, top_n, eyecon_top_n, enable_lookup, enable_eyecon.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	tbl, name, err := h.upload(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	opts := pipeline.AnalyzeOptions{
		Lookup:   formBool(r, "enable_lookup"),
		CallerID: formBool(r, "enable_eyecon"),
	}
	if opts.TopN, err = formInt(r, "top_n", h.opts.TopN); err != nil {
		h.writeError(w, r, err)
		return
	}
	if opts.CallerTopN, err = formInt(r, "eyecon_top_n", h.opts.CallerTopN); err != nil {
		h.writeError(w, r, err)
		return
	}

	out, err := h.an.Analyze(r.Context(), tbl, opts)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeWorkbook(w, out, h.filename(name, "_analysis", "cdr_analysis_"))
}

// Geofence handles POST /api/cdr/geofence.
//
// Form fields: file, fromTime, fromPeriod, toTime, toPeriod, includeB.
func (h *Handler) Geofence(w http.ResponseWriter, r *http.Request) {
	tbl, name, err := h.upload(w, r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	win, err := geofence.ParseWindow(
		r.FormValue("fromTime"), r.FormValue("fromPeriod"),
		r.FormValue("toTime"), r.FormValue("toPeriod"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	out, err := h.an.Geofence(r.Context(), tbl, geofence.Options{
		Window:   win,
		IncludeB: formBool(r, "includeB"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeWorkbook(w, out, h.filename(name, "_geofence", "cdr_geofence_"))
}

/* ──────────── helpers ──────────── */

// upload parses the multipart form and reads the "file" part.
func (h *Handler) upload(w http.ResponseWriter, r *http.Request) (*sheet.Table, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		if statusOf(err) == http.StatusRequestEntityTooLarge {
			return nil, "", err
		}
		return nil, "", badRequest("expected a multipart form upload")
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		return nil, "", badRequest("no file uploaded")
	}
	defer f.Close()

	tbl, err := sheet.Read(f, hdr.Filename)
	if err != nil {
		return nil, "", err
	}
	h.log.Debug("upload read",
		zap.String("file", hdr.Filename),
		zap.Int64("size", hdr.Size),
		zap.Int("rows", len(tbl.Rows)))
	return tbl, hdr.Filename, nil
}

func (h *Handler) writeWorkbook(w http.ResponseWriter, out *pipeline.Output, filename string) {
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(out.Workbook.Len()))
	w.Header().Set("X-Analysis-ID", out.ID)
	w.WriteHeader(http.StatusOK)
	if _, err := out.Workbook.WriteTo(w); err != nil {
		h.log.Warn("write workbook", zap.String("analysis_id", out.ID), zap.Error(err))
	}
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._ -]+`)

// filename derives the download name from the upload name, falling back to a
// timestamped one.
func (h *Handler) filename(upload, suffix, fallback string) string {
	base := filepath.Base(strings.ReplaceAll(upload, `\`, "/"))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.Trim(unsafeName.ReplaceAllString(base, "_"), " ._")
	if base == "" {
		return fallback + h.now().Format("20060102_150405") + ".xlsx"
	}
	return base + suffix + ".xlsx"
}

func formBool(r *http.Request, key string) bool {
	switch strings.ToLower(strings.TrimSpace(r.FormValue(key))) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

func formInt(r *http.Request, key string, def int) (int, error) {
	v := strings.TrimSpace(r.FormValue(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, badRequest(fmt.Sprintf("%s must be a non-negative integer", key))
	}
	return n, nil
}
