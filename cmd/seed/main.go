package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/taskee-dev/taskee/backend/internal/config"
	"github.com/taskee-dev/taskee/backend/internal/domain"
	"github.com/taskee-dev/taskee/backend/internal/importer"
	"github.com/taskee-dev/taskee/backend/internal/repository"
	"github.com/taskee-dev/taskee/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var orgName string
	var file string

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机用户, 2: 插入随机空闲时间, 3: 插入随机记录, 4: 从 CSV 导入空闲时间, 5: 插入今天的随机任务)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.StringVar(&orgName, "org", "", "目标组织名称，默认为初始管理员所在的组织")
	flag.StringVar(&file, "file", "", "op 4 使用的 CSV 文件路径")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建数据库连接池
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

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)

	if orgName == "" {
		orgName = cfg.InitialAdmin.Organization
	}
	org, err := repo.EnsureOrganization(context.Background(), orgName)
	if err != nil {
		slog.Error("无法获取组织", slog.String("error", err.Error()))
		return
	}

	// 执行操作
	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的用户数量")
			return
		}

		cnt := 0
		for i := 0; i < n; i++ {
			user, err := utils.GenerateRandomUser(org.ID, cfg.Seed.User.Password, cfg.Email.UserDomain)
			if err != nil {
				slog.Error("无法生成随机用户", slog.String("error", err.Error()))
				continue
			}

			if err := repo.CreateUser(context.Background(), user); err != nil {
				slog.Error("无法插入用户", slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		slog.Info("插入用户成功", slog.Int("count", cnt))
	case 2:
		users, err := repo.GetActiveUsersByOrganization(context.Background(), org.ID)
		if err != nil {
			slog.Error("无法获取组织内的用户", slog.String("error", err.Error()))
			return
		}

		cnt := 0
		windowsByUser := make(map[int64][]*domain.AvailabilityWindow, len(users))
		for _, user := range users {
			windowsByUser[user.ID] = utils.GenerateRandomAvailabilityWindows(user)
			cnt += len(windowsByUser[user.ID])
		}

		if err := repo.ReplaceAvailabilityWindows(context.Background(), windowsByUser); err != nil {
			slog.Error("无法插入空闲时间", slog.String("error", err.Error()))
			return
		}

		slog.Info("插入空闲时间成功", slog.Int("users", len(users)), slog.Int("count", cnt))
	case 3:
		if n <= 0 {
			slog.Error("请输入合法的记录数量")
			return
		}

		users, err := repo.GetActiveUsersByOrganization(context.Background(), org.ID)
		if err != nil {
			slog.Error("无法获取组织内的用户", slog.String("error", err.Error()))
			return
		}

		// 每个用户每种类型插入 n 条记录
		cnt := 0
		for _, user := range users {
			for _, kind := range []domain.EntryKind{domain.EntryKindTime, domain.EntryKindTrip, domain.EntryKindExpense} {
				for i := 0; i < n; i++ {
					entry := utils.GenerateRandomEntry(kind, user)
					if err := repo.CreateEntry(context.Background(), entry); err != nil {
						slog.Error("无法插入记录", slog.String("kind", string(kind)), slog.String("error", err.Error()))
						continue
					}

					cnt++
				}
			}
		}

		slog.Info("插入记录成功", slog.Int("count", cnt))
	case 4:
		if file == "" {
			slog.Error("请使用 -file 指定 CSV 文件")
			return
		}

		f, err := os.Open(file)
		if err != nil {
			slog.Error("打开文件失败", slog.String("error", err.Error()))
			return
		}
		defer f.Close()

		result, err := importer.ImportAvailability(context.Background(), repo, org.ID, f)
		if err != nil {
			slog.Error("导入空闲时间失败", slog.String("error", err.Error()))
			return
		}

		for _, s := range result.Skipped {
			slog.Warn("跳过一行", slog.Int("line", s.Line), slog.String("reason", s.Reason))
		}
		slog.Info("导入空闲时间成功",
			slog.String("batchID", result.BatchID),
			slog.Int("users", result.ImportedUsers),
			slog.Int("windows", result.ImportedWindows),
			slog.Int("skipped", len(result.Skipped)),
		)
	case 5:
		if n <= 0 {
			slog.Error("请输入合法的任务数量")
			return
		}

		users, err := repo.GetActiveUsersByOrganization(context.Background(), org.ID)
		if err != nil || len(users) == 0 {
			slog.Error("组织内没有可分配的用户", slog.Any("error", err))
			return
		}

		today := time.Now().Truncate(24 * time.Hour)
		cnt := 0
		for i := 0; i < n; i++ {
			assignee := users[rand.Intn(len(users))].ID
			task := &domain.Task{
				OrganizationID: org.ID,
				Title:          fmt.Sprintf("随机任务 %d", i+1),
				Status:         domain.TaskStatusTodo,
				AssigneeID:     &assignee,
				DueDate:        &today,
			}
			if err := repo.CreateTask(context.Background(), task); err != nil {
				slog.Error("无法插入任务", slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		slog.Info("插入任务成功", slog.Int("count", cnt))
	default:
		slog.Error("指定的操作非法")
	}
}
