package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Yagnik-Gohil/skribbl-server/internal/config"
	"github.com/Yagnik-Gohil/skribbl-server/internal/httpapi"
	"github.com/Yagnik-Gohil/skribbl-server/internal/registry"
	"github.com/Yagnik-Gohil/skribbl-server/internal/schedule"
	"github.com/Yagnik-Gohil/skribbl-server/internal/words"
)

func main() {
	_ = godotenv.Load()

	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cfg := config.FromEnv()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sched := schedule.New()
	defer sched.Stop()

	g := registry.New(ctx, sched, words.NewPicker(nil), log)

	handler := httpapi.SetupRoutes(g, log, cfg.OriginPatterns)

	srv := &http.Server{Addr: cfg.Addr, Handler: handler}

	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-egCtx.Done()
		g.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := eg.Wait(); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}
