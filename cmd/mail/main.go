package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"html/template"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/taskee-dev/taskee/backend/internal/config"
	"github.com/taskee-dev/taskee/backend/internal/domain"
	"github.com/taskee-dev/taskee/backend/internal/mailqueue"
	"github.com/taskee-dev/taskee/backend/internal/reminder"
	"github.com/taskee-dev/taskee/backend/internal/repository"
	"github.com/wneessen/go-mail"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// 每种邮件类型对应的模板和标题
var mailTemplates = map[string]struct {
	file    string
	subject string
}{
	domain.MailTypeCreateUser:    {file: "./templates/new_account_email.html", subject: "Taskee - 账户信息"},
	domain.MailTypeResetPassword: {file: "./templates/reset_password_otp_email.html", subject: "Taskee - 重置密码"},
	domain.MailTypeReminder:      {file: "./templates/reminder_email.html", subject: "Taskee - 提醒"},
}

func buildMail(from string, mailMessage domain.MailMessage) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, err
	}
	if err := m.To(mailMessage.To); err != nil {
		return nil, err
	}

	t := mailTemplates[mailMessage.Type]
	tmpl, err := template.ParseFiles(t.file)
	if err != nil {
		return nil, err
	}
	if err := m.SetBodyHTMLTemplate(tmpl, mailMessage.Data); err != nil {
		return nil, err
	}
	m.Subject(t.subject)

	return m, nil
}

func main() {
	/**********************************************
	 * 创建 logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	/**********************************************
	 * 读取配置文件
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * 创建邮件客户端
	 **********************************************/
	client, err := mail.NewClient(cfg.Email.SMTP.Host,
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithSSL(),
		mail.WithPort(cfg.Email.SMTP.Port),
		mail.WithUsername(cfg.Email.SMTP.Username),
		mail.WithPassword(cfg.Email.SMTP.Password),
	)
	if err != nil {
		logger.Error("无法创建邮件客户端", slog.String("error", err.Error()))
		return
	}
	defer client.Close()

	// 验证邮件客户端是否连接成功
	clientDialCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Email.SMTP.DialTimeout)*time.Second)
	defer cancel()
	if err := client.DialWithContext(clientDialCtx); err != nil {
		logger.Error("无法连接到邮件服务器", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * 连接数据库，提醒的发送状态保存在数据库中
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

	pingCtx, pingCancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer pingCancel()
	if err := dbpool.PingContext(pingCtx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	/**********************************************
	 * 连接 RabbitMQ
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("无法连接到 RabbitMQ", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	// 消费和发布使用不同的通道
	ch, err := conn.Channel()
	if err != nil {
		logger.Error("无法创建通道", slog.String("error", err.Error()))
		return
	}
	defer ch.Close()

	publishCh, err := conn.Channel()
	if err != nil {
		logger.Error("无法创建通道", slog.String("error", err.Error()))
		return
	}
	defer publishCh.Close()

	q, err := mailqueue.DeclareQueue(ch, cfg.RabbitMQ.Queue)
	if err != nil {
		logger.Error("无法声明队列", slog.String("error", err.Error()))
		return
	}

	// 监听 CTRL+C
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	msgs, err := ch.Consume(
		q.Name, // 队列
		"",     // 消费者标识，由 RabbitMQ 自动分配
		false,  // 手动确认
		false,  // 是否独占队列
		false,  // RabbitMQ 不支持 noLocal
		false,  // 是否不等待
		nil,    // 额外参数
	)
	if err != nil {
		logger.Error("无法消费消息", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 用于关闭 goroutine 的上下文
	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	/**********************************************
	 * 提醒调度
	 **********************************************/
	publisher := mailqueue.NewPublisher(publishCh, cfg.RabbitMQ.Queue, time.Duration(cfg.RabbitMQ.PublishTimeout)*time.Second)
	dispatcher := reminder.NewDispatcher(
		repo,
		publisher,
		time.Duration(cfg.Reminder.Interval)*time.Second,
		cfg.Reminder.BatchSize,
		logger,
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		dispatcher.Run(ctx)
	}()

	/**********************************************
	 * 发送邮件
	 **********************************************/
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					logger.Error("消息通道已关闭")
					return
				}

				mailMessage := domain.MailMessage{}
				if err := json.Unmarshal(msg.Body, &mailMessage); err != nil {
					logger.Error("邮件信息反序列化失败", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}
				logger.Info("收到消息", slog.String("type", mailMessage.Type), slog.String("to", mailMessage.To))

				if _, ok := mailTemplates[mailMessage.Type]; !ok {
					logger.Error("不支持的邮件类型", slog.String("type", mailMessage.Type))
					_ = msg.Nack(false, false)
					continue
				}

				m, err := buildMail(cfg.Email.SMTP.Username, mailMessage)
				if err != nil {
					logger.Error("无法构建邮件", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				if err := client.DialAndSend(m); err != nil {
					logger.Error("邮件发送失败", slog.String("error", err.Error()))
					_ = msg.Nack(false, true) // 将消息重新入队
					continue
				}

				_ = msg.Ack(false)
			}
		}
	}()

	logger.Info("等待消息...（按 CTRL+C 退出）")
	<-sigChan

	// 优雅退出
	slog.Info("正在关闭 mail worker...")
	cancel()
	wg.Wait()
	slog.Info("mail worker 已成功关闭")
}
