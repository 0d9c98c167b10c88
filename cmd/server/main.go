package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/iliyamo/airline-reservation/internal/config"
	"github.com/iliyamo/airline-reservation/internal/database"
	"github.com/iliyamo/airline-reservation/internal/handler"
	"github.com/iliyamo/airline-reservation/internal/middleware"
	"github.com/iliyamo/airline-reservation/internal/notify"
	"github.com/iliyamo/airline-reservation/internal/queue"
	"github.com/iliyamo/airline-reservation/internal/repository"
	"github.com/iliyamo/airline-reservation/internal/router"
	"github.com/iliyamo/airline-reservation/internal/server"
	"github.com/iliyamo/airline-reservation/internal/service"
	"github.com/iliyamo/airline-reservation/internal/utils"
)

func main() {
	var (
		envFile       = pflag.String("env-file", ".env", "optional dotenv file loaded before reading the environment")
		port          = pflag.StringP("port", "p", "", "TCP port of the command protocol (overrides APP_PORT)")
		adminAddr     = pflag.String("admin-addr", "", "listen address of the admin HTTP API (overrides ADMIN_ADDR)")
		consumeEvents = pflag.Bool("consume-events", false, "also run the event consumer writing logs/reservations.log")
		printToken    = pflag.Bool("print-admin-token", false, "print a signed admin token at startup")
	)
	pflag.Parse()
	// A bare positional argument is the port.
	if *port == "" && pflag.NArg() > 0 {
		*port = pflag.Arg(0)
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatal(err)
	}
	if *port != "" {
		cfg.Port = *port
	}
	if *adminAddr != "" {
		cfg.AdminAddr = *adminAddr
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := repository.NewStore(repository.Options{
		ReservationTimeout: cfg.ReservationTimeout,
		BcryptCost:         cfg.BcryptCost,
	})

	publishers := []service.Publisher{service.LogPublisher}
	if cfg.AMQPURL != "" {
		amqpPub := service.NewAMQPPublisher(cfg.AMQPURL, cfg.EventsQueue)
		defer amqpPub.Close()
		publishers = append(publishers, amqpPub)
	}
	if cfg.AuditEnabled() {
		db, err := database.Open(ctx, database.Options{
			User:     cfg.DB.User,
			Password: cfg.DB.Pass,
			Host:     cfg.DB.Host,
			Port:     cfg.DB.Port,
			Name:     cfg.DB.Name,
		})
		if err != nil {
			log.Printf("audit: %v; journal disabled", err)
		} else {
			defer db.Close()
			audit := repository.NewAuditRepo(db)
			if err := audit.EnsureSchema(ctx); err != nil {
				log.Printf("audit: %v; journal disabled", err)
			} else {
				publishers = append(publishers, audit)
			}
		}
	}
	dispatcher := service.NewDispatcher(1024, publishers...)

	notifier, closeNotifier := newNotifier(cfg)
	defer closeNotifier()

	limiter := middleware.NewCommandLimiter(cfg.RateLimit, nil)
	if cfg.RateLimit.Enabled {
		rdb, err := config.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			log.Printf("ratelimit: %v; command rate limiting disabled", err)
		} else {
			defer rdb.Close()
			limiter = middleware.NewCommandLimiter(cfg.RateLimit, rdb)
		}
	}

	proc := handler.NewProcessor(store, handler.Options{
		Notifier: notifier,
		Events:   dispatcher,
		Limiter:  limiter,
	})
	sched := service.NewExpiryScheduler(store, cfg.SweepInterval, nil, dispatcher)

	var wg sync.WaitGroup
	dispatchCtx, stopDispatch := context.WithCancel(context.Background())
	go dispatcher.Run(dispatchCtx)
	wg.Add(1)
	go func() { defer wg.Done(); sched.Run(ctx) }()

	if *consumeEvents && cfg.AMQPURL != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = queue.StartEventConsumer(ctx, queue.ConsumerConfig{URL: cfg.AMQPURL, Queue: cfg.EventsQueue})
		}()
	}

	if cfg.AdminAddr != "" {
		e := router.New(handler.NewAdminHandler(store), cfg.JWTSecret)
		if *printToken {
			tok, err := utils.NewAccessToken(cfg.JWTSecret, "operator", router.AdminRole, cfg.AdminTTL)
			if err != nil {
				log.Printf("admin: issue token: %v", err)
			} else {
				log.Printf("admin: token (expires %s): %s", tok.Exp.Format(time.RFC3339), tok.Token)
			}
		}
		go func() {
			log.Printf("admin: listening on %s", cfg.AdminAddr)
			if err := e.Start(cfg.AdminAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("admin: %v", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = e.Shutdown(shutdownCtx)
		}()
	}

	log.Printf("server: starting (env=%s, hold=%s, sweep=%s)", cfg.Env, cfg.ReservationTimeout, cfg.SweepInterval)
	srv := server.New(proc, server.Options{MaxFrameBytes: cfg.MaxFrameBytes, IdleTimeout: cfg.IdleTimeout})
	if err := srv.ListenAndServe(ctx, ":"+cfg.Port); err != nil {
		log.Printf("server: %v", err)
	}

	stop()
	wg.Wait()
	// Events from the last sweep are still queued; drain them.
	stopDispatch()
	<-dispatcher.Done()
	log.Printf("server: stopped")
}

// newNotifier opens the UDP notice socket.  Without one the server keeps
// running and notices are dropped.
func newNotifier(cfg config.Config) (notify.Notifier, func()) {
	if !cfg.NotifyEnabled {
		return notify.Discard{}, func() {}
	}
	udp, err := notify.NewUDPNotifier(notify.PeerPortOffset(cfg.NotifyPortOffset), cfg.NotifyWriteTimeout)
	if err != nil {
		log.Printf("notify: %v; notices disabled", err)
		return notify.Discard{}, func() {}
	}
	return udp, func() { _ = udp.Close() }
}
