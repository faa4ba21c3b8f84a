package server

import (
	"context"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"campboard/internal/api"
	"campboard/internal/config"
	"campboard/internal/ingest"
	"campboard/internal/push"
	"campboard/internal/source"
	"campboard/internal/store"
	syncsvc "campboard/internal/sync"
)

// Server HTTP 服务器
type Server struct {
	router  *gin.Engine
	store   *store.Store
	hub     *push.Hub
	syncSvc *syncsvc.Service
	cfg     *config.AppConfig
	log     *zap.Logger
}

// NewServer 创建服务器并完成全部组件装配
func NewServer(cfg *config.AppConfig, log *zap.Logger) (*Server, error) {
	if !cfg.Server.DevMode {
		gin.SetMode(gin.ReleaseMode)
	}

	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		dataDir = cfg.Data.DataDir
	}
	dbPath := filepath.Join(dataDir, "campboard.db")

	sqliteStore, err := store.New(dbPath)
	if err != nil {
		return nil, err
	}

	hub := push.NewHub(log)

	src := buildSource(cfg, log)
	snapshot := syncsvc.NewSnapshotStrategy(sqliteStore, hub, log)
	mirror := syncsvc.NewMirrorStrategy(sqliteStore, hub, log)
	syncService := syncsvc.NewService(src, log, snapshot, mirror)

	maxUpload := int64(cfg.Upload.MaxFileSizeMB) << 20
	engine := ingest.NewEngine(sqliteStore, hub, log, maxUpload)

	attachDir := filepath.Join(dataDir, "attachments")
	handler := api.NewHandler(sqliteStore, syncService, engine, hub, attachDir, maxUpload, log)

	s := &Server{
		router:  gin.Default(),
		store:   sqliteStore,
		hub:     hub,
		syncSvc: syncService,
		cfg:     cfg,
		log:     log,
	}

	s.setupRoutes(handler, attachDir)

	return s, nil
}

// buildSource 按配置选择数据源实现
func buildSource(cfg *config.AppConfig, log *zap.Logger) source.Source {
	excluded := cfg.Source.ExcludedSheets
	if len(excluded) == 0 {
		excluded = source.DefaultExcludedSheets
	}
	if cfg.Source.WorkbookPath != "" {
		return source.NewWorkbookSource(cfg.Source.WorkbookPath, excluded, log)
	}
	timeout := time.Duration(cfg.Source.TimeoutSec) * time.Second
	return source.NewHTTPSource(cfg.Source.URL, cfg.Source.APIKey, excluded, timeout, log)
}

// setupRoutes 设置路由
func (s *Server) setupRoutes(handler *api.Handler, attachDir string) {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	apiGroup := s.router.Group("/api")
	{
		handler.RegisterRoutes(apiGroup)
	}

	// 附件静态访问
	s.router.Static("/attachments", attachDir)
}

// RunScheduler 启动周期同步：启动即同步一次，之后按配置间隔触发
// 单飞闸门保证与手动触发的同步不会交错执行
func (s *Server) RunScheduler(ctx context.Context) {
	interval := time.Duration(s.cfg.Source.PollIntervalSec) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}

	s.runSyncOnce(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runSyncOnce(ctx)
		}
	}
}

func (s *Server) runSyncOnce(ctx context.Context) {
	if _, err := s.syncSvc.Sync(ctx, ""); err != nil {
		if err == syncsvc.ErrSyncInProgress {
			s.log.Info("上一轮同步仍在执行，跳过本轮")
			return
		}
		s.log.Error("定时同步失败", zap.Error(err))
	}
}

// Run 启动服务器
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Close 关闭底层资源
func (s *Server) Close() error {
	return s.store.Close()
}

// GetStore 获取存储（用于测试）
func (s *Server) GetStore() *store.Store {
	return s.store
}
