// 手动检查后端连通性
//
// 部署新的后端地址或修改 configs/config.yaml 后，用它确认客户端能连上。
//
// 用法: go run scripts/check_backend.go

package main

import (
	"context"
	"log"
	"time"
	"wiki_quiz_client/internal/config"
	"wiki_quiz_client/internal/httpclient"
	"wiki_quiz_client/internal/service"
	"wiki_quiz_client/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	logger.InitLogger(cfg)

	quizzes := service.NewQuizService(httpclient.New(cfg.API))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	log.Printf("检查后端 %s ...", cfg.API.BaseURL)
	if err := quizzes.Health(ctx); err != nil {
		log.Fatalf("健康检查失败 (%s): %v", httpclient.KindOf(err), err)
	}

	rows, err := quizzes.ListHistory(ctx)
	if err != nil {
		log.Fatalf("获取历史失败 (%s): %v", httpclient.KindOf(err), err)
	}
	log.Printf("完成！历史测验 %d 条", len(rows))
}
