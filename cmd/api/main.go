package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/taskee-dev/taskee/backend/internal/config"
	"github.com/taskee-dev/taskee/backend/internal/domain"
	"github.com/taskee-dev/taskee/backend/internal/handler"
	"github.com/taskee-dev/taskee/backend/internal/mailqueue"
	"github.com/taskee-dev/taskee/backend/internal/ratelimit"
	"github.com/taskee-dev/taskee/backend/internal/repository"
	"golang.org/x/crypto/bcrypt"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	/**********************************************
	 * 创建 logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * 加载配置
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法加载配置文件", "error", err)
		return
	}

	/**********************************************
	 * 连接数据库
	 **********************************************/
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	/**********************************************
	 * 创建 repository
	 **********************************************/
	repo := repository.NewRepository(cfg, dbpool)

	/**********************************************
	 * 确保数据库中存在初始组织和初始管理员
	 **********************************************/
	org, err := repo.EnsureOrganization(ctx, cfg.InitialAdmin.Organization)
	if err != nil {
		logger.Error("无法创建初始组织", "error", err)
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(cfg.InitialAdmin.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("无法生成初始管理员密码哈希", "error", err)
		return
	}
	initialAdmin := &domain.User{
		OrganizationID: org.ID,
		Username:       cfg.InitialAdmin.Username,
		PasswordHash:   string(passwordHash),
		FullName:       cfg.InitialAdmin.FullName,
		Email:          cfg.InitialAdmin.Email,
		Role:           domain.RoleManager,
	}
	if err := repo.CreateUser(ctx, initialAdmin); err != nil {
		var pgErr *pgconn.PgError
		switch {
		case errors.As(err, &pgErr) && pgErr.ConstraintName == "users_username_key":
			// 如果返回这个错误，说明数据库中已经存在初始管理员，不处理
		default:
			logger.Error("无法创建初始管理员", "error", err)
			return
		}
	}

	/**********************************************
	 * 连接 rabbitmq
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("无法连接到 rabbitmq", "error", err)
		return
	}
	defer conn.Close()

	// 建立通道
	ch, err := conn.Channel()
	if err != nil {
		logger.Error("无法建立通道", "error", err)
		return
	}
	defer ch.Close()

	if _, err := mailqueue.DeclareQueue(ch, cfg.RabbitMQ.Queue); err != nil {
		logger.Error("无法声明队列", "error", err)
		return
	}
	publisher := mailqueue.NewPublisher(ch, cfg.RabbitMQ.Queue, time.Duration(cfg.RabbitMQ.PublishTimeout)*time.Second)

	/**********************************************
	 * 连接 redis
	 **********************************************/
	rdb := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password:    cfg.Redis.Password,
		DB:          0,
		DialTimeout: time.Duration(cfg.Redis.ConnectTimeout) * time.Second,
	})
	defer rdb.Close()

	/**********************************************
	 * 创建限流器
	 **********************************************/
	// 进程内限流器只在单实例部署时准确，多实例部署时应使用 redis
	window := time.Duration(cfg.RateLimit.Window) * time.Second
	var limiter ratelimit.Limiter
	switch cfg.RateLimit.Backend {
	case "redis":
		limiter = ratelimit.NewRedis(rdb, "ratelimit:", cfg.RateLimit.Limit, window)
	case "memory":
		memory := ratelimit.NewMemory(cfg.RateLimit.Limit, window)
		go func() {
			ticker := time.NewTicker(window)
			defer ticker.Stop()
			for range ticker.C {
				memory.Prune()
			}
		}()
		limiter = memory
	default:
		logger.Error("不支持的限流器类型", "backend", cfg.RateLimit.Backend)
		return
	}

	/**********************************************
	 * 创建 handler
	 **********************************************/
	handler, err := handler.NewHandler(cfg, repo, publisher, rdb, limiter)
	if err != nil {
		logger.Error("无法创建 handler", "error", err)
		return
	}
	handler.RegisterRoutes()

	/**********************************************
	 * 启动 HTTP 服务器
	 **********************************************/
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      handler.Mux,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("正在启动服务器...", "port", cfg.Server.Port, "rateLimitBackend", cfg.RateLimit.Backend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("无法启动服务器", slog.String("error", err.Error()))
			return
		}
	}()

	<-quit
	logger.Info("正在关闭服务器...")

	ctx, cancel = context.WithTimeout(context.Background(), time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("关闭服务器失败", slog.String("error", err.Error()))
	}
	logger.Info("服务器已成功关闭")
}
