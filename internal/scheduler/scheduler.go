package scheduler

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/fichaflow/backend/internal/db"
	"github.com/fichaflow/backend/internal/ingest"
	"github.com/fichaflow/backend/internal/service"
)

// Scheduler sweeps a watch directory for exported CSVs on a cron expression
// and runs the analysis pipeline over each one. Handled files are renamed
// with a .done (or .failed) suffix so a sweep never picks them up twice.
type Scheduler struct {
	Store     *db.Store
	Processor *service.ProcessingService
	WatchDir  string
	Spec      string
	Logger    zerolog.Logger

	cron *cron.Cron
}

func (s *Scheduler) Start() error {
	s.cron = cron.New()
	_, err := s.cron.AddFunc(s.Spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		s.Sweep(ctx)
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	s.Logger.Info().Str("dir", s.WatchDir).Str("spec", s.Spec).Msg("scheduler started")
	return nil
}

func (s *Scheduler) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}

// Sweep processes every pending CSV in the watch directory, oldest first.
func (s *Scheduler) Sweep(ctx context.Context) {
	entries, err := os.ReadDir(s.WatchDir)
	if err != nil {
		s.Logger.Error().Err(err).Str("dir", s.WatchDir).Msg("failed to read watch dir")
		return
	}

	var pending []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".csv") {
			pending = append(pending, e.Name())
		}
	}
	sort.Strings(pending)

	for _, name := range pending {
		path := filepath.Join(s.WatchDir, name)
		if err := s.processFile(ctx, path); err != nil {
			s.Logger.Error().Err(err).Str("file", name).Msg("scheduled analysis failed")
			s.markHandled(path, ".failed")
			continue
		}
		s.Logger.Info().Str("file", name).Msg("scheduled analysis done")
		s.markHandled(path, ".done")
	}
}

func (s *Scheduler) processFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	rows, diags, errs := ingest.ParseTickets(f)
	if len(errs) > 0 {
		s.Logger.Warn().Int("errors", len(errs)).Str("file", filepath.Base(path)).Msg("rows skipped during parse")
	}
	s.Logger.Info().
		Int("rows", diags.RowsTotal).
		Int("excluded", diags.RowsExcludedStatus).
		Msg("export parsed")

	groups := service.GroupStores(rows)

	runID, err := s.Store.CreateRun(ctx, "RUNNING")
	if err != nil {
		return err
	}
	summary, err := s.Processor.ProcessUpload(ctx, groups, time.Now().UTC(), false)
	status := "SUCCESS"
	if err != nil {
		status = "FAILED"
	}
	b, _ := json.Marshal(summary)
	if finishErr := s.Store.FinishRun(ctx, runID, status, b); finishErr != nil {
		s.Logger.Error().Err(finishErr).Msg("failed to finish run")
	}
	return err
}

func (s *Scheduler) markHandled(path, suffix string) {
	if err := os.Rename(path, path+suffix); err != nil {
		s.Logger.Error().Err(err).Str("file", path).Msg("failed to rename handled file")
	}
}
