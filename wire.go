package main

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/jalad-shrimali/cdr-analyzer/cache"
	"github.com/jalad-shrimali/cdr-analyzer/celldb"
	"github.com/jalad-shrimali/cdr-analyzer/config"
	"github.com/jalad-shrimali/cdr-analyzer/enrich"
	"github.com/jalad-shrimali/cdr-analyzer/logging"
	"github.com/jalad-shrimali/cdr-analyzer/pipeline"
)

// app is everything a command needs, built from configuration.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	analyzer *pipeline.Analyzer
	closers  []func() error
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadFromEnv(cfgFile)
	if err != nil {
		return nil, err
	}
	log, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, err
	}
	a := &app{cfg: cfg, log: log}

	loc, err := cfg.Geofence.Location()
	if err != nil {
		return nil, err
	}
	pc := pipeline.Config{Location: loc, Logger: log}

	if cfg.CellDB.Path != "" {
		db, err := celldb.Open(cfg.CellDB.Path)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		pc.Cells = db
		log.Info("cell database opened", zap.String("path", cfg.CellDB.Path))
	}

	ec := enrich.Config{Concurrency: cfg.Enrichment.Concurrency, Logger: log}
	if cfg.SIMRegistry.BaseURL != "" {
		ec.SIM = enrich.NewSIMRegistry(cfg.SIMRegistry.BaseURL, cfg.Enrichment.Timeout())
	}
	switch {
	case cfg.CallerID.BaseURL == "":
	case cfg.CallerID.APIKey == "":
		log.Warn("caller id disabled", zap.Error(enrich.ErrNoAPIKey))
	default:
		ec.CallerID = enrich.NewCallerID(cfg.CallerID.BaseURL, cfg.CallerID.APIKey, cfg.CallerID.CountryCode, cfg.Enrichment.Timeout())
	}
	if cfg.Cache.Enabled {
		rc := cache.New(cfg.Cache.Addr, cfg.Cache.Password, cfg.Cache.DB, cfg.Cache.TTL())
		pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := rc.Ping(pctx)
		cancel()
		if err != nil {
			log.Warn("redis not available, lookups will not be cached", zap.String("addr", cfg.Cache.Addr), zap.Error(err))
			rc.Close()
		} else {
			ec.Cache = rc
			a.closers = append(a.closers, rc.Close)
			log.Info("redis connected", zap.String("addr", cfg.Cache.Addr))
		}
	}
	if ec.SIM != nil || ec.CallerID != nil {
		pc.Enricher = enrich.New(ec)
	}

	a.analyzer = pipeline.New(pc)
	return a, nil
}

func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	_ = a.log.Sync()
	return errors.Join(errs...)
}
