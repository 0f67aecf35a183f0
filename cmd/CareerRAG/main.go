package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	httpServer "CareerRAG/api/http"
	"CareerRAG/internal/config"
	"CareerRAG/internal/initial"
	"CareerRAG/pkg/zlog"
)

func main() {
	// 1. 加载配置
	conf := config.GetConfig()
	host := conf.MainConfig.Host
	port := conf.MainConfig.Port

	// 2. 连接数据库。失败不致命：内存存储独立工作，
	// 之后可通过 reset-db-connection 重建连接
	if err := initial.OpenGorm(); err != nil {
		zlog.Warn("mysql unavailable at startup, persistence degraded")
	}

	// 3. 组装并启动 HTTP 服务
	server, err := httpServer.NewServer(conf)
	if err != nil {
		zlog.Fatal("服务器装配失败: " + err.Error())
		return
	}
	go func() {
		addr := fmt.Sprintf("%s:%d", host, port)
		zlog.Info(fmt.Sprintf("服务器正在启动，监听地址: %s", addr))
		if err := server.Engine.Run(addr); err != nil {
			zlog.Fatal("服务器启动失败: " + err.Error())
			return
		}
	}()

	// 4. 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("正在关闭服务器...")
	server.Shutdown()
	zlog.Sync()
	zlog.Info("服务器已关闭")
}
