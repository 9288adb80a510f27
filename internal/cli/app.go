package cli

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/Yat-Muk/opsdeck/internal/application"
	"github.com/Yat-Muk/opsdeck/internal/application/orchestrator"
	"github.com/Yat-Muk/opsdeck/internal/application/poller"
	domainConfig "github.com/Yat-Muk/opsdeck/internal/domain/config"
	domainConsole "github.com/Yat-Muk/opsdeck/internal/domain/console"
	"github.com/Yat-Muk/opsdeck/internal/infra/api"
	"github.com/Yat-Muk/opsdeck/internal/infra/backup"
	infraConfig "github.com/Yat-Muk/opsdeck/internal/infra/config"
	"github.com/Yat-Muk/opsdeck/internal/pkg/appctx"
	"github.com/Yat-Muk/opsdeck/internal/pkg/logger"
	"github.com/Yat-Muk/opsdeck/internal/pkg/tlsconfig"
	"github.com/Yat-Muk/opsdeck/internal/pkg/version"
	"github.com/Yat-Muk/opsdeck/internal/tui/model"
	"github.com/Yat-Muk/opsdeck/internal/tui/style"
)

// app 一次命令運行所需的依賴
type app struct {
	paths  *appctx.Paths
	log    *zap.Logger
	repo   *infraConfig.FileRepository
	cfgSvc *application.ConfigService
	cfg    *domainConfig.Config
	client *api.Client

	stdoutTTY bool
	stdinTTY  bool
}

// newApp 初始化路徑、配置、日誌與後端客戶端
func newApp() (*app, error) {
	a, err := newBareApp()
	if err != nil {
		return nil, err
	}

	cfg, err := a.cfgSvc.GetConfig(context.Background())
	if err != nil {
		return nil, fmt.Errorf("加載配置失敗 (%s): %w", a.paths.ConfigFile, err)
	}
	if apiFlag != "" {
		cfg.API.BaseURL = apiFlag
	}
	a.cfg = cfg

	// 配置決定日誌級別與輪轉參數
	log, err := buildLogger(a.paths, cfg.Log)
	if err != nil {
		return nil, err
	}
	a.log = log
	a.repo.SetLogger(log)

	a.log.Info("opsdeck 正在啟動",
		zap.String("version", version.Version),
		zap.String("commit", version.GitCommit),
		zap.String("api", cfg.API.BaseURL),
	)

	tlsCfg, err := tlsconfig.Build(tlsconfig.Options{
		CAFile:             cfg.API.TLS.CAFile,
		CertFile:           cfg.API.TLS.CertFile,
		KeyFile:            cfg.API.TLS.KeyFile,
		ServerName:         cfg.API.TLS.ServerName,
		InsecureSkipVerify: cfg.API.TLS.InsecureSkipVerify,
	})
	if err != nil {
		return nil, fmt.Errorf("TLS 配置無效: %w", err)
	}
	if cfg.API.TLS.InsecureSkipVerify {
		log.Warn("已關閉後端證書校驗", zap.String("api", cfg.API.BaseURL))
	}

	client, err := api.New(cfg.API.BaseURL,
		api.WithTLSConfig(tlsCfg),
		api.WithTimeouts(cfg.API.RequestTimeout, cfg.API.OperationTimeout),
		api.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}
	a.client = client
	return a, nil
}

// newBareApp 只需要路徑與配置倉庫的命令 (config / service)
func newBareApp() (*app, error) {
	paths, err := appctx.NewPaths(workDirFlag)
	if err != nil {
		return nil, fmt.Errorf("無法初始化路徑: %w", err)
	}

	log := zap.NewNop()
	repo := infraConfig.NewFileRepository(paths.ConfigFile, log)

	return &app{
		paths:     paths,
		log:       log,
		repo:      repo,
		cfgSvc:    application.NewConfigService(repo, log),
		stdoutTTY: term.IsTerminal(int(os.Stdout.Fd())),
		stdinTTY:  term.IsTerminal(int(os.Stdin.Fd())),
	}, nil
}

// enableSnapshots 按配置啟用寫入前快照，關閉時返回 nil
func (a *app) enableSnapshots(ctx context.Context) (*backup.Manager, error) {
	bc := domainConfig.DefaultConfig().Backup
	if cfg, err := a.cfgSvc.GetConfig(ctx); err == nil {
		bc = cfg.Backup
	}
	if !bc.Enabled {
		return nil, nil
	}

	mgr, err := backup.NewManager(a.paths.ConfigFile, a.paths.BackupDir, backup.RetentionPolicy{
		MaxFiles: bc.MaxFiles,
		MaxAge:   bc.MaxAge,
	})
	if err != nil {
		return nil, err
	}
	a.cfgSvc.SetSnapshotter(mgr)
	return mgr, nil
}

func buildLogger(paths *appctx.Paths, lc domainConfig.LogConfig) (*zap.Logger, error) {
	logConfig := logger.DefaultConfig()
	logConfig.OutputPath = paths.LogFile
	if lc.OutputPath != "" {
		logConfig.OutputPath = lc.OutputPath
	}
	logConfig.Level = lc.Level
	logConfig.MaxSize = lc.MaxSize
	logConfig.MaxBackups = lc.MaxBackups
	logConfig.MaxAge = lc.MaxAge
	logConfig.Compress = lc.Compress
	logConfig.Console = false
	if debugFlag {
		logConfig.Level = "debug"
	}

	log, err := logger.New(logConfig)
	if err != nil {
		return nil, fmt.Errorf("日誌初始化失敗: %w", err)
	}
	return log, nil
}

func (a *app) close() {
	_ = a.log.Sync()
}

// newEngine 長期運行的引擎 (TUI / watch)
func (a *app) newEngine(ctx context.Context) (*application.Engine, error) {
	return application.NewEngine(a.cfg, a.client,
		application.WithLogger(a.log),
		application.WithContext(ctx),
	)
}

// newOneShotEngine 一次性命令：不產生定時鏈，也不做操作後的延遲刷新
func (a *app) newOneShotEngine(ctx context.Context) (*application.Engine, error) {
	return application.NewEngine(a.cfg, a.client,
		application.WithLogger(a.log),
		application.WithContext(ctx),
		application.WithPollerOptions(poller.WithTick(application.NoTicks)),
		application.WithOrchestratorOptions(orchestrator.WithScheduler(application.SkipDelayed)),
	)
}

// formatLine 終端上帶顏色，重定向時為純文本
func (a *app) formatLine(l domainConsole.LogLine) string {
	if a.stdoutTTY {
		return style.RenderLogLine(l)
	}
	return model.FormatLine(l)
}
