package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mymmrac/telego"

	"github.com/nopparoot15/Saltybot/bot/config"
	"github.com/nopparoot15/Saltybot/bot/db"
	logpkg "github.com/nopparoot15/Saltybot/bot/logger"
	"github.com/nopparoot15/Saltybot/bot/screening"
	"github.com/nopparoot15/Saltybot/bot/telegram"
	"github.com/nopparoot15/Saltybot/bot/telegram/handler"
	"github.com/nopparoot15/Saltybot/bot/verify"
	"github.com/nopparoot15/Saltybot/bot/worker"
)

// App wires all application dependencies.
type App struct {
	Config   *config.Config
	Logger   *logpkg.Logger
	DB       *db.Repository
	Pool     *worker.Pool
	Telegram *telegram.Bot
	Service  *verify.Service
	Location *time.Location
}

// New builds the application container.
func New(ctx context.Context, configPath string) (*App, error) {
	conf, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	log, err := logpkg.New(conf.GetString("LogLevel"), conf.GetString("LogFormat"), conf.GetBool("LogSource"))
	if err != nil {
		return nil, err
	}

	gormLogger := logpkg.NewGormLogger(log.Slog(), logpkg.ParseGormLevel(conf.GetString("GormLogLevel")))
	databasePath := conf.GetString("Database")
	if strings.TrimSpace(databasePath) == "" {
		databasePath = "saltybot.db"
	}

	repo, err := db.NewSQLiteRepository(databasePath, gormLogger)
	if err != nil {
		return nil, fmt.Errorf("init db: %w", err)
	}
	poolMaxOpen := conf.GetInt("DBMaxOpenConns")
	poolMaxIdle := conf.GetInt("DBMaxIdleConns")
	poolMaxLifetimeSec := conf.GetInt("DBConnMaxLifetimeSec")
	if err := repo.ConfigurePool(poolMaxOpen, poolMaxIdle, time.Duration(poolMaxLifetimeSec)*time.Second); err != nil {
		return nil, fmt.Errorf("configure db pool: %w", err)
	}

	pool := worker.New(conf.GetInt("WorkerPoolSize"))

	loc, err := time.LoadLocation(conf.GetString("Timezone"))
	if err != nil {
		// ICT is the guild's home zone, keep working without tzdata
		log.Warn("timezone load failed, using fixed UTC+7", "timezone", conf.GetString("Timezone"), "error", err)
		loc = time.FixedZone("ICT", 7*60*60)
	}

	tele, err := telegram.New(conf, log)
	if err != nil {
		return nil, fmt.Errorf("init telegram: %w", err)
	}

	return &App{
		Config:   conf,
		Logger:   log,
		DB:       repo,
		Pool:     pool,
		Telegram: tele,
		Location: loc,
	}, nil
}

// Start wires handlers and begins long polling.
func (a *App) Start(ctx context.Context) error {
	meCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	me, err := a.Telegram.GetMe(meCtx)
	if err != nil {
		return fmt.Errorf("getMe: %w", err)
	}
	botName := me.Username

	rateLimitPerSecond := a.Config.GetFloat64("RateLimitPerSecond")
	if rateLimitPerSecond <= 0 {
		rateLimitPerSecond = 1.0
	}
	rateLimitBurst := a.Config.GetInt("RateLimitBurst")
	if rateLimitBurst <= 0 {
		rateLimitBurst = 3
	}
	rateLimiter := telegram.NewRateLimiter(rateLimitPerSecond, rateLimitBurst)
	rateLimiter.SetLogger(a.Logger)

	notifier := telegram.NewNotifier(a.Telegram.Client(), rateLimiter, a.Pool, a.Config.GetInt64("AdminNoticeChatID"), a.Logger)

	heuristic := screening.NewHeuristic(a.Config.GetInt("MinAccountAgeDaysHigh"), a.Config.GetInt("MinAccountAgeDaysMed"))
	screener := screening.NewRemote(
		a.Config.GetString("ScreeningURL"),
		time.Duration(a.Config.GetInt("ScreeningTimeoutSec"))*time.Second,
		heuristic,
		a.Logger,
	)

	loc := a.Location
	now := func() time.Time { return time.Now().In(loc) }
	a.Service = verify.NewService(a.DB, a.DB, notifier, screener, a.Logger, now)

	adminIDs := make(map[int64]struct{})
	for _, id := range a.Config.GetInt64Slice("AdminUserIDs") {
		adminIDs[id] = struct{}{}
	}

	router := &handler.Router{
		Verify: &handler.VerifyHandler{
			Service:     a.Service,
			Notifier:    notifier,
			Config:      a.Config,
			RateLimiter: rateLimiter,
			Logger:      a.Logger,
		},
		Setup: &handler.SetupHandler{
			Config:      a.Config,
			RateLimiter: rateLimiter,
			AdminIDs:    adminIDs,
		},
		Stats: &handler.StatsHandler{
			Repo:        a.DB,
			Config:      a.Config,
			RateLimiter: rateLimiter,
			Logger:      a.Logger,
			AdminIDs:    adminIDs,
		},
		Decision: &handler.DecisionHandler{
			Service:     a.Service,
			Notifier:    notifier,
			RateLimiter: rateLimiter,
			Logger:      a.Logger,
			AdminIDs:    adminIDs,
			Location:    loc,
		},
		BotName: botName,
		Logger:  a.Logger,
	}

	commands := []telego.BotCommand{
		{Command: "verify", Description: "ส่งฟอร์มยืนยันตัวตน / submit the verification form"},
		{Command: "verifysetup", Description: "โพสต์วิธียืนยันตัวตน / post verification instructions (admin)"},
		{Command: "verifystats", Description: "สถิติการยืนยันตัวตน / verification stats (admin)"},
	}
	_ = a.Telegram.Client().SetMyCommands(ctx, &telego.SetMyCommandsParams{Commands: commands})

	updates, err := a.Telegram.Client().UpdatesViaLongPolling(ctx, nil)
	if err != nil {
		return fmt.Errorf("start long polling: %w", err)
	}

	a.Logger.Info("bot started", "bot_name", botName)
	go func() {
		for update := range updates {
			u := update
			go router.Route(ctx, a.Telegram.Client(), &u)
		}
	}()
	return nil
}

// Shutdown releases resources.
func (a *App) Shutdown(ctx context.Context) error {
	var firstErr error

	if a.Pool != nil {
		if err := a.Pool.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("shutdown worker pool: %w", err)
		}
	}

	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			if a.Logger != nil {
				a.Logger.Error("close database failed", "error", err)
			}
			if firstErr == nil {
				firstErr = fmt.Errorf("close database: %w", err)
			}
		}
	}

	if a.Logger != nil {
		_ = a.Logger.Close()
	}

	return firstErr
}
