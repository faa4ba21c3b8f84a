package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"campboard/internal/config"
	"campboard/internal/server"
)

var (
	port    = flag.Int("port", 0, "服务端口 (config.toml 优先)")
	devMode = flag.Bool("dev", false, "开发模式")
	dataDir = flag.String("dataDir", "", "数据目录 (覆盖配置文件)")
)

func main() {
	flag.Parse()

	fmt.Println("==========================================")
	fmt.Println("  Campboard - 活动/线索表格同步看板服务")
	fmt.Println("==========================================")

	// 加载配置
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("加载配置失败，使用默认配置: %v", err)
		cfg = config.DefaultConfig()
	}

	// 命令行参数覆盖配置
	if *port > 0 {
		cfg.Server.Port = *port
	}
	if *devMode {
		cfg.Server.DevMode = true
	}
	if *dataDir != "" {
		cfg.Data.DataDir = *dataDir
	}

	logger, err := buildLogger(cfg.Server.DevMode)
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer logger.Sync()

	// 创建服务器
	srv, err := server.NewServer(cfg, logger)
	if err != nil {
		logger.Fatal("初始化服务失败", zap.Error(err))
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)

	// 周期同步：启动即同步一次，之后按配置间隔执行
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.RunScheduler(ctx)

	// 启动服务器
	go func() {
		logger.Info("服务启动中", zap.Int("port", cfg.Server.Port))
		if err := srv.Run(addr); err != nil {
			logger.Fatal("服务启动失败", zap.Error(err))
		}
	}()

	fmt.Printf("服务已启动: http://localhost:%d\n", cfg.Server.Port)
	fmt.Println("\n按 Ctrl+C 停止服务...")

	// 等待信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("\n正在关闭服务...")
	cancel()
	if err := srv.Close(); err != nil {
		logger.Error("关闭资源失败", zap.Error(err))
	}
}

func buildLogger(devMode bool) (*zap.Logger, error) {
	if devMode {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
