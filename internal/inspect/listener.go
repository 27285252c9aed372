package inspect

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SystemBuilders/LineAuth/internal/session"
	"github.com/gorilla/mux"
)

// Start begins the inspection endpoint as a http server. It blocks
// until the server fails or the process is interrupted.
func Start(sessions session.Table, addr string) error {
	router := mux.NewRouter()
	router = SetupRouting(sessions, router)

	server := &http.Server{
		Handler: router,
		Addr:    addr,
	}

	go gracefulShutdown(server)

	log.Println("Starting inspection server on " + addr)
	return server.ListenAndServe()
}

// gracefulShutdown shuts down the server on getting a ^C signal.
func gracefulShutdown(server *http.Server) {
	interruptChan := make(chan os.Signal, 1)
	signal.Notify(interruptChan, os.Interrupt, syscall.SIGTERM)

	// Block until we receive our signal.
	<-interruptChan

	// Create a deadline to wait for currently serving items.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	server.Shutdown(ctx)

	log.Println("Shutting down")
	os.Exit(0)
}
