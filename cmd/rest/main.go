package main

import (
	"context"
	"log"

	"procuredoc-be/internal/bootstrap"
	"procuredoc-be/internal/config"
	"procuredoc-be/internal/server"
	"procuredoc-be/internal/tracer"
	"procuredoc-be/pkg/database"
	"procuredoc-be/pkg/events"
	pktNats "procuredoc-be/pkg/nats"
)

func main() {
	// 0. Initialize Tracer
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 4. Start Background Services
	go func() {
		log.Println("Background: Starting generation queue consumer...")
		if err := container.Queue.Run(context.Background(), container.Worker.Handle); err != nil {
			log.Printf("Background queue error: %v", err)
		}
	}()

	// Failure audit: mirror terminal generation failures into the main log so
	// ops can watch them without tailing the worker log.
	if natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL); err != nil {
		log.Printf("[WARN] Failure audit subscriber unavailable: %v", err)
	} else {
		err := natsSub.Subscribe("events."+events.SectionGenerationFailed, "failure-audit",
			func(ctx context.Context, event events.Event) error {
				container.Logger.Warn("Audit", "Section generation failed", event.Payload())
				return nil
			})
		if err != nil {
			log.Printf("[WARN] Failed to start failure audit subscription: %v", err)
		}
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
