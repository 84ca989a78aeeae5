package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/afero"

	analyticsinadapter "fitlab/internal/modules/analytics/adapter/in"
	analyticsoutadapter "fitlab/internal/modules/analytics/adapter/out"
	analyticsservice "fitlab/internal/modules/analytics/service"
	analyticsusecase "fitlab/internal/modules/analytics/usecase"
	captureinadapter "fitlab/internal/modules/capture/adapter/in"
	captureoutadapter "fitlab/internal/modules/capture/adapter/out"
	capturedomain "fitlab/internal/modules/capture/domain"
	captureout "fitlab/internal/modules/capture/port/out"
	captureservice "fitlab/internal/modules/capture/service"
	captureusecase "fitlab/internal/modules/capture/usecase"
	cataloginadapter "fitlab/internal/modules/catalog/adapter/in"
	catalogoutadapter "fitlab/internal/modules/catalog/adapter/out"
	catalogservice "fitlab/internal/modules/catalog/service"
	catalogusecase "fitlab/internal/modules/catalog/usecase"
	resultsinadapter "fitlab/internal/modules/results/adapter/in"
	resultsoutadapter "fitlab/internal/modules/results/adapter/out"
	resultsdomain "fitlab/internal/modules/results/domain"
	resultsin "fitlab/internal/modules/results/port/in"
	resultsout "fitlab/internal/modules/results/port/out"
	resultsservice "fitlab/internal/modules/results/service"
	resultsusecase "fitlab/internal/modules/results/usecase"
	"fitlab/internal/platform/clock"
	"fitlab/internal/platform/config"
	"fitlab/internal/platform/httpapi"
	"fitlab/internal/platform/id"
	"fitlab/internal/platform/logging"
	uiapp "fitlab/internal/ui/app"
)

// Mode selects the adapters that suit how the binary was started.
type Mode int

const (
	// ModeCLI checkpoints the attempt to disk so separate runs share it.
	ModeCLI Mode = iota
	// ModeTUI keeps the attempt in memory and logs to a file.
	ModeTUI
	// ModeServe keeps the attempt in memory for the HTTP surface.
	ModeServe
)

type App struct {
	Config config.Config
	Logger *logging.ZapLogger

	CatalogCLI   cataloginadapter.CLIHandler
	CaptureCLI   captureinadapter.CLIHandler
	ResultsCLI   resultsinadapter.CLIHandler
	AnalyticsCLI analyticsinadapter.CLIHandler
	Router       http.Handler

	results resultsin.Usecase
}

func New(cfg config.Config, mode Mode) (*App, error) {
	logFile := cfg.Log.File
	if mode == ModeTUI && logFile == "" {
		logFile = filepath.Join(cfg.StateDir, "fitlab.log")
	}
	logger, err := logging.NewZapLogger(cfg.Log.Level, logFile)
	if err != nil {
		return nil, fmt.Errorf("new logger: %w", err)
	}

	fs := afero.NewOsFs()
	clk := clock.SystemClock{}

	catalogUC := catalogusecase.NewInteractor(catalogservice.NewCatalogService(
		catalogoutadapter.NewYAMLDefinitionStore(fs, cfg.WorkspacePath),
	))

	analyticsUC := analyticsusecase.NewInteractor(analyticsservice.NewAnalyticsService(
		analyticsoutadapter.NewFileManifestStore(fs, cfg.WorkspacePath),
		analyticsoutadapter.NewGRPCHost(logger.With("component", "analytics")),
		fs,
		cfg.WorkspacePath,
		logger,
	))

	backend, err := openBackend(cfg)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	logger.Info("results backend ready", "backend", cfg.Storage.Backend)

	policy, err := resultsdomain.ParseWritePolicy(cfg.Results.WritePolicy)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	store := resultsservice.NewRecentResults(backend,
		resultsservice.WithPolicy(policy),
		resultsservice.WithTimeout(cfg.Results.Timeout),
		resultsservice.WithLogger(logger.With("component", "results")),
	)
	resultsUC := resultsusecase.NewInteractor(store, resultsservice.NewQueryService(backend), backend)

	seed := cfg.Percentile.Seed
	if seed == 0 {
		seed = uint64(clk.Now().UnixNano())
	}
	synthetic := capturedomain.SyntheticPercentile(seed)
	var percentile captureout.PercentileSource = captureoutadapter.NewSyntheticPercentileSource(synthetic)
	if cfg.Percentile.Source == config.PercentilePlugin {
		percentile = captureoutadapter.NewPluginPercentileSource(analyticsUC, cfg.Percentile.Plugin)
	}
	logger.Info("percentile source ready", "source", cfg.Percentile.Source, "plugin", cfg.Percentile.Plugin)

	var attempts captureout.AttemptStore = captureoutadapter.NewMemoryAttemptStore()
	if mode == ModeCLI {
		attempts = captureoutadapter.NewFileAttemptStore(fs, cfg.WorkspacePath)
	}
	captureLogger := logger.With("component", "capture")
	captureUC := captureusecase.NewInteractor(
		captureservice.NewCaptureService(clk, id.NewULID(clk), id.UUID{}, percentile, synthetic, captureLogger),
		catalogUC,
		resultsUC,
		attempts,
		captureoutadapter.NewMarkdownResultJournal(fs, cfg.WorkspacePath),
		captureLogger,
	)

	router := httpapi.NewRouter(logger.With("component", "http"),
		cataloginadapter.NewHTTPHandler(catalogUC),
		captureinadapter.NewHTTPHandler(captureUC),
		resultsinadapter.NewHTTPHandler(resultsUC),
	)

	return &App{
		Config:       cfg,
		Logger:       logger,
		CatalogCLI:   cataloginadapter.NewCLIHandler(catalogUC),
		CaptureCLI:   captureinadapter.NewCLIHandler(captureUC),
		ResultsCLI:   resultsinadapter.NewCLIHandler(resultsUC),
		AnalyticsCLI: analyticsinadapter.NewCLIHandler(analyticsUC),
		Router:       router,
		results:      resultsUC,
	}, nil
}

func openBackend(cfg config.Config) (resultsout.Backend, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return resultsoutadapter.NewMemoryRepository(), nil
	case config.BackendPostgres:
		repo, err := resultsoutadapter.OpenPostgres(cfg.Storage.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres results: %w", err)
		}
		return repo, nil
	case config.BackendRedis:
		return resultsoutadapter.DialRedis(cfg.Storage.RedisAddr, cfg.Storage.RedisKey), nil
	default:
		repo, err := resultsoutadapter.OpenSQLite(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite results: %w", err)
		}
		return repo, nil
	}
}

// Close shuts the results store, then the backend, then flushes logs.
// Sync errors are ignored since stderr cannot be synced on every platform.
func (a *App) Close() error {
	err := a.results.Close()
	_ = a.Logger.Sync()
	return err
}

func RunTUI(app *App) error {
	model := uiapp.NewModel(app.CatalogCLI, app.CaptureCLI, app.ResultsCLI)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}

func Serve(ctx context.Context, app *App, addr string) error {
	if addr == "" {
		addr = app.Config.HTTP.Addr
	}
	return httpapi.Serve(ctx, addr, app.Router, app.Logger)
}
