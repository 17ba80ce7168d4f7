package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hotelbook/room-reservation/internal/config"
	"github.com/hotelbook/room-reservation/internal/queue"
)

// reservation-events drains the reservation event queue into a log file,
// one line per event.
func main() {
	config.LoadDotEnv()
	ec := config.LoadEventsConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("consuming %s into %s", ec.Queue, ec.LogPath)
	err := queue.StartReservationConsumer(ctx, ec.URL, ec.Queue, ec.LogPath)
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
	log.Printf("stopped")
}
