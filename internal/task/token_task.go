package task

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"listora_publisher_v1/internal/model"
	"listora_publisher_v1/internal/repository"
	"listora_publisher_v1/internal/service"
)

// TokenTask 连接 Token 保活任务
// 定时扫出即将过期的连接提前刷新，避免发布链路在热路径上撞到过期 Token
type TokenTask struct {
	ConnRepo     repository.ConnectionRepository
	TokenService *service.TokenService
	Cron         *cron.Cron

	// 控制并发刷新的数量，防止 OAuth 端点限流
	concurrencyLimit int
	sleepTime        time.Duration
}

func NewTokenTask(connRepo repository.ConnectionRepository, tokenService *service.TokenService) *TokenTask {
	return &TokenTask{
		ConnRepo:         connRepo,
		TokenService:     tokenService,
		Cron:             cron.New(cron.WithSeconds()), // 支持秒级控制
		concurrencyLimit: 20,
		sleepTime:        50 * time.Millisecond, // 每个协程启动间隔，平滑波峰
	}
}

// Start 启动定时任务
func (t *TokenTask) Start() {
	// 首次执行
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		log.Println("[Task] 服务启动，正在执行首次 Token 检查...")
		t.refreshJob(ctx)
	}()

	// 每 30 分钟扫一轮，窗口是 1 小时，两轮必然覆盖
	_, err := t.Cron.AddFunc("0 0/30 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		t.refreshJob(ctx)
	})

	if err != nil {
		log.Fatalf("无法启动 Token 定时任务: %v", err)
	}

	t.Cron.Start()
	log.Println("Token 保活任务已启动 (每30分钟检查一次)")
}

// Stop 停止定时任务
func (t *TokenTask) Stop() {
	if t.Cron != nil {
		t.Cron.Stop()
	}
}

// refreshJob 自动刷新逻辑
func (t *TokenTask) refreshJob(ctx context.Context) {
	conns, err := t.ConnRepo.FindExpiring(ctx, service.TokenRefreshWindow)
	if err != nil {
		log.Printf("[Cron] 连接过期状态查询失败: %v", err)
		return
	}
	if len(conns) == 0 {
		return
	}

	// 信号量通道，容量即并发上限
	sem := make(chan struct{}, t.concurrencyLimit)
	var wg sync.WaitGroup

	log.Printf("[Cron] 开始处理 %d 个连接的 Token 刷新，并发上限: %d", len(conns), t.concurrencyLimit)

	for _, conn := range conns {
		select {
		case <-ctx.Done():
			log.Println("[Cron] 任务超时停止")
			return
		default:
		}

		sem <- struct{}{}
		wg.Add(1)

		// 平滑波峰
		time.Sleep(t.sleepTime)

		currentConn := conn

		go func(c model.MarketplaceConnection) {
			defer wg.Done()
			defer func() { <-sem }()

			if _, err := t.TokenService.EnsureSellerToken(ctx, &c); err != nil {
				// 日志仅记录，不中断其他协程
				log.Printf("[Cron] 连接 [%d/%s] 刷新失败: %v", c.ID, c.Platform, err)
			}
		}(currentConn)
	}

	wg.Wait()
	log.Println("[Cron] 本轮 Token 刷新任务完成")
}
