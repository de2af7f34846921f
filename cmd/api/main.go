package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cascade-randonneurs/brevet-planner-api/internal/adapters/httpapi"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/adapters/localdir"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/adapters/logmail"
	memchapterrepo "github.com/cascade-randonneurs/brevet-planner-api/internal/adapters/memory/chapterrepo"
	memeventrepo "github.com/cascade-randonneurs/brevet-planner-api/internal/adapters/memory/eventrepo"
	memfilestore "github.com/cascade-randonneurs/brevet-planner-api/internal/adapters/memory/filestore"
	memregistrationrepo "github.com/cascade-randonneurs/brevet-planner-api/internal/adapters/memory/registrationrepo"
	memresultrepo "github.com/cascade-randonneurs/brevet-planner-api/internal/adapters/memory/resultrepo"
	memriderrepo "github.com/cascade-randonneurs/brevet-planner-api/internal/adapters/memory/riderrepo"
	memrouterepo "github.com/cascade-randonneurs/brevet-planner-api/internal/adapters/memory/routerepo"
	postgres "github.com/cascade-randonneurs/brevet-planner-api/internal/adapters/postgres"
	pgchapterrepo "github.com/cascade-randonneurs/brevet-planner-api/internal/adapters/postgres/chapterrepo"
	pgeventrepo "github.com/cascade-randonneurs/brevet-planner-api/internal/adapters/postgres/eventrepo"
	pgregistrationrepo "github.com/cascade-randonneurs/brevet-planner-api/internal/adapters/postgres/registrationrepo"
	pgresultrepo "github.com/cascade-randonneurs/brevet-planner-api/internal/adapters/postgres/resultrepo"
	pgriderrepo "github.com/cascade-randonneurs/brevet-planner-api/internal/adapters/postgres/riderrepo"
	pgrouterepo "github.com/cascade-randonneurs/brevet-planner-api/internal/adapters/postgres/routerepo"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/adapters/smtpmail"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/app/calendar"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/app/lifecycle"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/app/results"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/app/riders"
	platformclock "github.com/cascade-randonneurs/brevet-planner-api/internal/platform/clock"
	"github.com/cascade-randonneurs/brevet-planner-api/internal/platform/config"
	chapterrepoport "github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/chapterrepo"
	eventrepoport "github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/eventrepo"
	filestoreport "github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/filestore"
	mailerport "github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/mailer"
	registrationrepoport "github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/registrationrepo"
	resultrepoport "github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/resultrepo"
	riderrepoport "github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/riderrepo"
	routerepoport "github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/routerepo"
)

func main() {
	config.LoadDotEnv()

	port := config.Getenv("PORT", "8080")
	baseURL := config.Getenv("BASE_URL", "http://localhost:"+port)

	clk := platformclock.NewSystemClock()

	storageBackend := config.Getenv("STORAGE_BACKEND", "memory")
	var (
		chapterRepo      chapterrepoport.Repository
		eventRepo        eventrepoport.Repository
		riderRepo        riderrepoport.Repository
		registrationRepo registrationrepoport.Repository
		resultRepo       resultrepoport.Repository
		routeRepo        routerepoport.Repository
		cleanup          func()
	)

	switch storageBackend {
	case "postgres":
		dsn := os.Getenv("DATABASE_URL")
		pool, err := postgres.NewPool(context.Background(), dsn, postgres.PoolOptions{})
		if err != nil {
			log.Fatalf("invalid postgres config: %v", err)
		}
		cleanup = pool.Close

		chapterRepo = pgchapterrepo.NewRepo(pool)
		eventRepo = pgeventrepo.NewRepo(pool)
		riderRepo = pgriderrepo.NewRepo(pool)
		registrationRepo = pgregistrationrepo.NewRepo(pool)
		resultRepo = pgresultrepo.NewRepo(pool)
		routeRepo = pgrouterepo.NewRepo(pool)
	default:
		chapterRepo = memchapterrepo.NewRepo()
		eventRepo = memeventrepo.NewRepo()
		riderRepo = memriderrepo.NewRepo()
		registrationRepo = memregistrationrepo.NewRepo()
		resultRepo = memresultrepo.NewRepo()
		routeRepo = memrouterepo.NewRepo()
	}

	if cleanup != nil {
		defer cleanup()
	}

	var mail mailerport.Mailer
	switch config.Getenv("MAILER", "log") {
	case "smtp":
		smtpCfg, err := config.LoadSMTPConfigFromEnv()
		if err != nil {
			log.Fatalf("invalid mailer config: %v", err)
		}
		mail, err = smtpmail.NewMailer(smtpmail.Config{
			Host:     smtpCfg.Host,
			Port:     smtpCfg.Port,
			Username: smtpCfg.Username,
			Password: smtpCfg.Password,
			From:     smtpCfg.From,
			FromName: smtpCfg.FromName,
		})
		if err != nil {
			log.Fatalf("smtp mailer: %v", err)
		}
	default:
		mail = logmail.NewMailer(nil)
	}

	var files filestoreport.Store
	if dir := os.Getenv("FILESTORE_DIR"); dir != "" {
		var err error
		files, err = localdir.NewStore(dir)
		if err != nil {
			log.Fatalf("filestore: %v", err)
		}
	} else {
		files = memfilestore.NewStore()
	}

	resultsSvc := results.NewService(resultRepo, registrationRepo, riderRepo, eventRepo, chapterRepo, mail, files, clk, baseURL)
	lifecycleSvc := lifecycle.NewService(eventRepo, chapterRepo, resultsSvc, clk)
	calendarSvc := calendar.NewService(chapterRepo, eventRepo, clk, baseURL)
	riderSvc := riders.NewService(riderRepo)

	handler := httpapi.NewRouter(&httpapi.Server{
		Lifecycle:       lifecycleSvc,
		Results:         resultsSvc,
		Calendar:        calendarSvc,
		Riders:          riderSvc,
		Events:          eventRepo,
		Routes:          routeRepo,
		Chapters:        chapterRepo,
		Registrations:   registrationRepo,
		RiderRepo:       riderRepo,
		TriggerSecret:   os.Getenv("TRIGGER_SECRET"),
		ExtraBlankCards: config.GetenvInt("EXTRA_BLANK_CARDS", 0),
	})

	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("api listening on :%s (storage=%s)", port, storageBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
