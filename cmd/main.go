package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"GGPoker/config"
	"GGPoker/internal/api"
	"GGPoker/internal/game/manager"
	"GGPoker/internal/game/table"
	"GGPoker/internal/session"
	"GGPoker/internal/storage"
	"GGPoker/internal/utils"
	"GGPoker/internal/websocket"

	"github.com/gin-gonic/gin"
)

func main() {
	path := os.Getenv("GGPOKER_CONFIG")
	if path == "" {
		path = "config/config.yaml"
	}
	if _, err := os.Stat(path); err != nil {
		path = ""
	}
	if err := config.Load(path); err != nil {
		utils.Print.Fatal("config load failed", "err", err)
	}
	utils.Init(config.C.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	//-------------------------------------------------------
	// 1. 选择 token 存储
	//-------------------------------------------------------
	tokens, closeTokens, err := openTokenStore(ctx)
	if err != nil {
		utils.Print.Fatal("session store init failed", "store", config.C.Session.Store, "err", err)
	}
	defer closeTokens()

	//-------------------------------------------------------
	// 2. 初始化客户端上下文
	//-------------------------------------------------------
	rtURL, err := websocket.RealtimeURL(config.C.Server.BaseURL, config.C.Server.RealtimePort, config.C.Server.RealtimePath)
	if err != nil {
		utils.Print.Fatal("bad server url", "err", err)
	}

	var mgr *manager.Manager
	mgr = manager.New(tokens, manager.Config{
		BaseURL:     config.C.Server.BaseURL,
		AuthPath:    config.C.Server.AuthPath,
		RealtimeURL: rtURL,
		SessionKey:  config.C.Session.Key,
		HTTPTimeout: config.C.Server.Timeout,
		LogSize:     config.C.Channel.LogSize,
		Backoff: websocket.Backoff{
			Base:    config.C.Channel.ReconnectBase,
			Max:     config.C.Channel.ReconnectMax,
			Retries: config.C.Channel.ReconnectRetries,
		},
		PingPeriod: config.C.Channel.PingPeriod,
		Logger:     utils.Print,
		OnSnapshot: func(s table.Snapshot) {
			sess, _ := mgr.Session.Current()
			fmt.Println(table.Render(s, sess.PlayerID))
		},
	})

	if err := mgr.Open(ctx); err != nil {
		utils.Print.Fatal("open failed", "err", err)
	}
	defer mgr.Close()
	utils.Print.Info("connecting", "realtime", rtURL)

	//-------------------------------------------------------
	// 3. 本地 HTTP 接口
	//-------------------------------------------------------
	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:    config.C.API.Listen,
		Handler: api.NewRouter(mgr),
	}
	go func() {
		utils.Print.Info("api listening", "addr", config.C.API.Listen)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Print.Error("api server failed", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	utils.Print.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Print.Error("api shutdown", "err", err)
	}
}

// openTokenStore builds the configured session.TokenStore and returns a
// cleanup for any connection it opened.
func openTokenStore(ctx context.Context) (session.TokenStore, func(), error) {
	noop := func() {}
	switch config.C.Session.Store {
	case "memory":
		return session.NewMemoryStore(), noop, nil
	case "", "file":
		return session.NewFileStore(config.C.Session.File), noop, nil
	case "redis":
		rdb, err := storage.NewRedis(ctx, config.C.Redis.Addr, config.C.Redis.Password, config.C.Redis.DB)
		if err != nil {
			return nil, noop, err
		}
		return session.NewRedisStore(rdb), func() { _ = rdb.Close() }, nil
	case "postgres":
		db, err := storage.NewPostgres(ctx, config.C.Database.DSN)
		if err != nil {
			return nil, noop, err
		}
		st, err := session.NewPostgresStore(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		return st, func() { _ = db.Close() }, nil
	default:
		return nil, noop, fmt.Errorf("unknown session store %q", config.C.Session.Store)
	}
}
