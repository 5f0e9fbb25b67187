package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pawly/config"
	"pawly/internal/database"
	"pawly/internal/router"
	"pawly/internal/service"
	"pawly/internal/sse"
	"pawly/pkg/cloudinary"
	"pawly/pkg/mail"
)

func main() {
	cfg := config.Load()
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	cloud := cloudinary.Disabled()
	if cfg.Cloudinary.CloudName != "" {
		cloud, err = cloudinary.NewClientFromParams(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
		if err != nil {
			log.Fatalf("cloudinary: %v", err)
		}
	} else {
		log.Printf("cloudinary not configured; image uploads disabled")
	}

	var mailer mail.Mailer = mail.LogMailer{}
	if cfg.Mail.Username != "" {
		mailer = mail.NewSMTPMailer(cfg.Mail)
	}

	registry := sse.NewRegistry()
	eventCache := sse.NewEventCache(cfg.Stream.ReplayCacheSize, cfg.Stream.ReplayCacheTTL)
	dispatcher := service.NewDispatcher(cfg.Stream.DispatchWorkers, cfg.Stream.DispatchQueue)

	engine := router.Setup(cfg, router.Deps{
		DB:         db,
		Cloud:      cloud,
		Mailer:     mailer,
		Registry:   registry,
		EventCache: eventCache,
		Dispatcher: dispatcher,
	})
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Printf("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server shutdown:", err)
	}
	// Finish queued notification dispatches before exit.
	dispatcher.Close()
	fmt.Println("server stopped")
}
