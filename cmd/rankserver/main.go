package main

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/userrank/server/internal/config"
	"github.com/userrank/server/internal/durability"
	"github.com/userrank/server/internal/httpapi"
	"github.com/userrank/server/internal/store"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func buildLogger() *zap.Logger {
	logConfig := zap.NewDevelopmentConfig()
	logConfig.EncoderConfig.TimeKey = ""
	logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logConfig.DisableStacktrace = true
	logConfig.DisableCaller = true
	return zap.Must(logConfig.Build())
}

func main() {
	log := buildLogger()
	defer log.Sync()
	log = log.Named("main")

	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		log.Fatal("configuration failed", zap.Error(err))
	}

	views := []store.View{store.ExpPersView, store.ActiveView, store.ExpGangView}
	switch cfg.Hybrid {
	case config.HybridA:
		views = append(views, store.HybridAView)
	case config.HybridB:
		views = append(views, store.HybridBView)
	}

	s := store.New(log, views...)
	seedUsers(s, cfg.Seed)

	var writer *durability.Writer
	if cfg.Durability != "" {
		writer = durability.NewWriter(cfg.Durability, "userstore-mutations", log)
		defer writer.Close()
	}

	router := httpapi.NewRouter(s, httpapi.Options{
		Workers:    cfg.Workers,
		Durability: writer,
	}, log)

	addr := fmt.Sprintf(":%d", cfg.Port)
	httpserver := &http.Server{
		Addr:    addr,
		Handler: router,

		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,

		MaxHeaderBytes: 1 << 15,

		ErrorLog: zap.NewStdLog(log.Named("http").WithOptions(zap.AddCallerSkip(1))),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Info("running HTTP server", zap.String("addr", addr), zap.Int("workers", cfg.Workers))
		serveErr <- httpserver.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && err != http.ErrServerClosed {
			log.Fatal("server failed", zap.Error(err))
		}
	case <-ctx.Done():
		stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpserver.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", zap.Error(err))
		}
	}

	fmt.Println("Bye!")
	os.Exit(0)
}

// seedUsers populates the store with n synthetic records at startup, for
// local exercising of the rank endpoints without a separate data loader.
func seedUsers(s *store.UserStore, n int) {
	if n <= 0 {
		return
	}
	rng := rand.New(rand.NewSource(1))
	for uid := uint32(1); uid <= uint32(n); uid++ {
		_ = s.Put(&store.Record{
			UID:     uid,
			Name:    fmt.Sprintf("user%d", uid),
			ExpPers: uint32(rng.Intn(1000)),
			Active:  uint32(rng.Intn(1000)),
			ExpGang: uint32(rng.Intn(1000)),
		})
	}
}
