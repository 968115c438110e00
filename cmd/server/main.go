// PaiGong 派工引擎服务
// 主程序入口

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/paigong/paigong/internal/config"
	"github.com/paigong/paigong/internal/database"
	"github.com/paigong/paigong/internal/handler"
	"github.com/paigong/paigong/internal/metrics"
	"github.com/paigong/paigong/internal/middleware"
	"github.com/paigong/paigong/internal/repository"
	"github.com/paigong/paigong/pkg/logger"
)

// 构建信息（通过 ldflags 注入）
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "配置加载失败: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	logFormat := "json"
	if cfg.IsDevelopment() {
		logFormat = "console"
	}
	logger.Init(logger.Config{
		Level:  cfg.App.LogLevel,
		Format: logFormat,
	})

	// 打印版本信息
	fmt.Printf("PaiGong 派工引擎 v%s\n", Version)
	fmt.Printf("Build: %s (%s)\n", BuildTime, GitCommit)
	fmt.Println()

	// 连接数据库
	db, err := database.New(&cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("数据库连接失败")
	}
	defer db.Close()

	// 创建仓储
	memberRepo := repository.NewMemberRepository(db)
	skillRepo := repository.NewSkillRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	ruleRepo := repository.NewRuleRepository(db)
	availabilityRepo := repository.NewAvailabilityRepository(db)
	shiftRepo := repository.NewScheduleShiftRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	areaRepo := repository.NewAreaRepository(db)
	targetRepo := repository.NewStaffingTargetRepository(db)
	plannedShiftRepo := repository.NewPlannedShiftRepository(db)

	settings := cfg.ManagerSettings()

	// 创建处理器
	assignHandler := handler.NewAssignHandler(memberRepo, taskRepo, ruleRepo, shiftRepo, assignmentRepo, settings)
	plannerHandler := handler.NewPlannerHandler(memberRepo, skillRepo, areaRepo, targetRepo, availabilityRepo, plannedShiftRepo, settings)
	statsHandler := handler.NewStatsHandler(memberRepo, taskRepo, shiftRepo, assignmentRepo, areaRepo, targetRepo, plannedShiftRepo)
	adminHandler := handler.NewAdminHandler(memberRepo, skillRepo, taskRepo, ruleRepo, areaRepo, targetRepo, availabilityRepo, shiftRepo)

	// 创建 HTTP 服务器
	mux := http.NewServeMux()

	// ========================================
	// 系统端点
	// ========================================

	// 健康检查端点
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := db.Health(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"degraded","service":"paigong","database":"down"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"paigong"}`))
	})

	// 版本信息端点
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"version":"%s","build_time":"%s","git_commit":"%s"}`, Version, BuildTime, GitCommit)
	})

	// ========================================
	// API v1 端点
	// ========================================

	// API 根路由
	mux.HandleFunc("/api/v1/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{
			"message": "PaiGong 派工引擎 API v1",
			"endpoints": {
				"assignments": {
					"generate": "POST /api/v1/assignments/generate",
					"lock": "POST /api/v1/assignments/lock",
					"list": "GET /api/v1/assignments?date=YYYY-MM-DD"
				},
				"planner": {
					"autofill": "POST /api/v1/planner/autofill",
					"conflicts": "GET /api/v1/planner/conflicts?start_date=YYYY-MM-DD",
					"shifts": "GET /api/v1/planner/shifts?start_date=YYYY-MM-DD"
				},
				"stats": {
					"coverage": "GET /api/v1/stats/coverage?start_date=YYYY-MM-DD",
					"workload": "GET /api/v1/stats/workload?date=YYYY-MM-DD"
				},
				"data": {
					"members": "GET|POST /api/v1/members",
					"skills": "GET|POST /api/v1/skills",
					"tasks": "GET|POST /api/v1/tasks",
					"rules": "GET|POST /api/v1/rules",
					"areas": "GET|POST /api/v1/areas",
					"targets": "GET|POST /api/v1/targets",
					"schedule": "GET|PUT /api/v1/schedule?date=YYYY-MM-DD"
				}
			}
		}`))
	})

	// 派工 API
	mux.HandleFunc("/api/v1/assignments/generate", assignHandler.Generate)
	mux.HandleFunc("/api/v1/assignments/lock", assignHandler.Lock)
	mux.HandleFunc("/api/v1/assignments", assignHandler.ListByDate)

	// 排班规划 API
	mux.HandleFunc("/api/v1/planner/autofill", plannerHandler.AutoFill)
	mux.HandleFunc("/api/v1/planner/conflicts", plannerHandler.Conflicts)
	mux.HandleFunc("/api/v1/planner/shifts", plannerHandler.ListShifts)

	// 统计分析 API
	mux.HandleFunc("/api/v1/stats/coverage", statsHandler.Coverage)
	mux.HandleFunc("/api/v1/stats/workload", statsHandler.Workload)

	// 基础数据 API
	mux.HandleFunc("/api/v1/members", adminHandler.Members)
	mux.HandleFunc("/api/v1/members/", func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/availability") {
			adminHandler.MemberAvailability(w, r)
			return
		}
		adminHandler.Member(w, r)
	})
	mux.HandleFunc("/api/v1/skills", adminHandler.Skills)
	mux.HandleFunc("/api/v1/tasks", adminHandler.Tasks)
	mux.HandleFunc("/api/v1/tasks/", adminHandler.Task)
	mux.HandleFunc("/api/v1/rules", adminHandler.Rules)
	mux.HandleFunc("/api/v1/areas", adminHandler.Areas)
	mux.HandleFunc("/api/v1/targets", adminHandler.Targets)
	mux.HandleFunc("/api/v1/schedule", adminHandler.DaySchedule)

	// ========================================
	// 监控端点
	// ========================================

	if cfg.Metrics.Enabled {
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
	}

	// ========================================
	// 中间件
	// ========================================

	// 中间件执行顺序：requestID -> recovery -> auth -> logging -> handler
	auth := middleware.AuthMiddleware(&middleware.AuthConfig{
		APIKeys:   cfg.API.APIKeys,
		SkipPaths: []string{"/health", "/version", cfg.Metrics.Path},
	})
	rootHandler := middleware.RequestIDMiddleware(
		middleware.RecoveryMiddleware(
			auth(middleware.LoggingMiddleware(mux))))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rootHandler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.API.Timeout,
		IdleTimeout:  120 * time.Second,
	}

	// 启动服务器（非阻塞）
	go func() {
		logger.Info().
			Int("port", cfg.App.Port).
			Str("version", Version).
			Str("env", cfg.App.Env).
			Str("url", fmt.Sprintf("http://localhost:%d", cfg.App.Port)).
			Msg("服务器启动")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("服务器启动失败")
			os.Exit(1)
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("正在关闭服务器...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("服务器关闭失败")
		os.Exit(1)
	}

	logger.Info().Msg("服务器已关闭")
}
