package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"budget/config"
	"budget/database"
	"budget/middleware"
	"budget/router"
	"budget/service"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

// @title 家庭账本 API
// @version 1.0
// @description 家庭共享记账：家庭成员、类别、银行账户与交易
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

var (
	configFile  string
	port        string
	showVersion bool
)

func init() {
	flag.StringVar(&configFile, "config", "", "外部配置文件路径（可选）")
	flag.StringVar(&configFile, "c", "", "外部配置文件路径（简写）")
	flag.StringVar(&port, "port", "", "监听端口，如: 8080 或 :8080")
	flag.StringVar(&port, "p", "", "监听端口（简写）")
	flag.BoolVar(&showVersion, "version", false, "显示版本信息")
	flag.BoolVar(&showVersion, "v", false, "显示版本信息（简写）")
}

func main() {
	flag.Parse()

	if showVersion {
		log.Println("家庭账本 v1.0.0")
		return
	}

	// .env 中的变量作为 BUDGET_* 环境变量参与配置覆盖，文件不存在时忽略
	_ = godotenv.Load()

	// 加载配置（内置配置 + 可选的外部配置覆盖）
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	// 命令行参数覆盖端口配置
	if port != "" {
		if !strings.HasPrefix(port, ":") {
			port = ":" + port
		}
		cfg.Server.Port = port
		log.Printf("命令行指定端口: %s", port)
	}

	config.PrintConfig()

	store, closeStore, err := database.NewStore(cfg)
	if err != nil {
		log.Fatalf("数据库初始化失败: %v", err)
	}
	defer closeStore()

	notifier, closeNotifier := buildNotifier(cfg)
	defer closeNotifier()

	middleware.InitJWT(cfg)

	srv := &http.Server{
		Addr:              cfg.Server.Port,
		Handler:           router.SetupRouter(cfg, store, notifier),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 16,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("==========================================")
		log.Printf("  🏠 家庭账本已启动")
		log.Printf("==========================================")
		log.Printf("  Swagger:  http://localhost%s/swagger/index.html", cfg.Server.Port)
		log.Printf("  API接口:  http://localhost%s/api/v1/", cfg.Server.Port)
		log.Printf("==========================================")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Println("正在关闭服务器...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Printf("服务器异常退出: %v", err)
		os.Exit(1)
	}
	log.Println("服务器已停止")
}

// buildNotifier 按配置组合邀请通知渠道，AMQP 连接失败时降级为仅邮件
func buildNotifier(cfg *config.Config) (service.Notifier, func()) {
	var notifiers service.MultiNotifier
	closeFn := func() {}

	if cfg.Email.Enabled {
		notifiers = append(notifiers, &service.EmailNotifier{Email: service.NewEmailService(&cfg.Email, cfg.Server.BaseURL)})
	}
	if cfg.AMQP.Enabled {
		amqpNotifier, err := service.NewAMQPNotifier(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.RoutingKey)
		if err != nil {
			log.Printf("警告: AMQP 不可用，邀请事件将不会发布: %v", err)
		} else {
			notifiers = append(notifiers, amqpNotifier)
			closeFn = func() { _ = amqpNotifier.Close() }
		}
	}

	if len(notifiers) == 0 {
		return service.NopNotifier{}, closeFn
	}
	return notifiers, closeFn
}
