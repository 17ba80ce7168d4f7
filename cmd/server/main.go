package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	glog "github.com/labstack/gommon/log"
	"github.com/redis/go-redis/v9"

	"github.com/hotelbook/room-reservation/internal/config"
	"github.com/hotelbook/room-reservation/internal/database"
	"github.com/hotelbook/room-reservation/internal/handler"
	"github.com/hotelbook/room-reservation/internal/middleware"
	"github.com/hotelbook/room-reservation/internal/repository"
	"github.com/hotelbook/room-reservation/internal/router"
	"github.com/hotelbook/room-reservation/internal/service"
)

func main() {
	config.LoadDotEnv()
	cfg := config.Load() // Load environment config

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("store (%s): %v", cfg.StoreDriver, err)
	}
	defer closeStore()

	// Redis is optional; features that need it turn themselves off when nil.
	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		log.Printf("redis unreachable; rate limiting and room locks disabled")
	} else {
		defer rdb.Close()
	}

	events, closeEvents := eventPublisher()
	defer closeEvents()

	svc := service.NewReservationService(repo, roomLocker(rdb), events)

	e := echo.New()
	e.HideBanner = true
	e.Logger.SetLevel(logLevel(cfg.LogLevel))
	router.RegisterRoutes(e,
		handler.NewReservationHandler(svc, cfg.RequestTimeout),
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
	)

	addr := ":" + cfg.Port                                                        // Address string with port
	log.Printf("listening on %s (env=%s, store=%s)", addr, cfg.Env, cfg.StoreDriver) // Print startup info

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// openStore connects the reservation store selected by STORE_DRIVER and
// prepares its indexes or schema.  The returned func releases the handle.
func openStore(ctx context.Context, cfg config.Config) (repository.ReservationRepo, func(), error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		client, err := database.OpenMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, err
		}
		coll := client.Database(cfg.MongoDB).Collection(cfg.MongoCollection)
		if err := repository.EnsureReservationIndexes(ctx, coll); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, err
		}
		return repository.NewMongoReservationRepo(coll), func() {
			if err := client.Disconnect(context.Background()); err != nil {
				log.Printf("mongo disconnect: %v", err)
			}
		}, nil

	case config.DriverMySQL, config.DriverPostgres:
		db, err := database.OpenSQL(database.SQLConfig{
			Driver:  cfg.StoreDriver,
			User:    cfg.DBUser,
			Pass:    cfg.DBPass,
			Host:    cfg.DBHost,
			Port:    cfg.DBPort,
			Name:    cfg.DBName,
			SSLMode: cfg.DBSSLMode,
		})
		if err != nil {
			return nil, nil, err
		}
		if err := repository.EnsureReservationSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return repository.NewSQLReservationRepo(db), func() { _ = db.Close() }, nil

	default: // config.DriverMemory
		log.Printf("using in-memory store; reservations are lost on restart")
		return repository.NewMemoryReservationRepo(), func() {}, nil
	}
}

func roomLocker(rdb *redis.Client) service.RoomLocker {
	lc := config.LoadRoomLockConfig()
	if !lc.Enabled {
		return service.NoRoomLock{}
	}
	if rdb == nil {
		log.Printf("ROOM_LOCK_ENABLED set but redis is unreachable; booking without locks")
		return service.NoRoomLock{}
	}
	return service.NewRedisRoomLocker(rdb, lc)
}

// eventPublisher dials RabbitMQ when events are enabled.  A broker that is
// down at boot disables events rather than the API.
func eventPublisher() (service.EventPublisher, func()) {
	ec := config.LoadEventsConfig()
	if !ec.Enabled {
		return service.NopPublisher{}, func() {}
	}
	pub, err := service.NewAMQPPublisher(ec.URL, ec.Queue)
	if err != nil {
		log.Printf("events disabled: %v", err)
		return service.NopPublisher{}, func() {}
	}
	return pub, func() { _ = pub.Close() }
}

func logLevel(s string) glog.Lvl {
	switch s {
	case "debug":
		return glog.DEBUG
	case "warn":
		return glog.WARN
	case "error":
		return glog.ERROR
	case "off":
		return glog.OFF
	default:
		return glog.INFO
	}
}
