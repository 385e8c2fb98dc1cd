package cli

import (
	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/config"
	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/deps"
	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/detector"
	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/export"
	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/logger"
	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/monitor"
	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/repository"
	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/repository/sqlite"
	"github.com/Vinayak4780/Bar--Qr-Code-Detection/internal/session"
)

// app bundles the components shared by the detection commands.
type app struct {
	cfg        *config.Config
	log        *logger.Logger
	db         *sqlite.DB
	detector   *detector.Detector
	exporter   *export.ExcelExporter
	monitor    *monitor.Monitor
	sessions   repository.SessionRepository
	detections repository.DetectionRepository
}

// newApp loads configuration, verifies dependencies, and wires the shared
// components. A missing dependency is fatal here, before any session starts.
func newApp() (*app, error) {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.LogDirectory)
	if err != nil {
		return nil, err
	}

	if err := deps.Check(deps.DefaultProbes(cfg.ExportDirectory), log); err != nil {
		log.Close()
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		log:      log,
		detector: detector.NewDetector(log),
		exporter: export.NewExcelExporter(cfg.ExportDirectory, log),
		monitor:  monitor.NewMonitor(cfg.ResourcePollInterval),
	}

	// History is best-effort; a broken database never blocks detection.
	if db, err := sqlite.New(cfg.DatabasePath); err != nil {
		log.Warning("Detection history unavailable: %v", err)
	} else {
		a.db = db
		a.sessions = sqlite.NewSessionRepository(db)
		a.detections = sqlite.NewDetectionRepository(db)
	}

	return a, nil
}

// controller builds a session controller with the shared components.
func (a *app) controller(opts session.Options) *session.Controller {
	opts.DedupWindow = a.cfg.DedupWindow
	opts.FlushInterval = a.cfg.ExportFlushInterval
	opts.QueueSize = a.cfg.FrameQueueSize
	opts.Sessions = a.sessions
	opts.Detections = a.detections
	return session.NewController(a.detector, a.exporter, a.monitor, a.log, opts)
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
	a.log.Close()
}
