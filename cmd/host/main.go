/*
main.go - Host process entry point

PURPOSE:
  Initializes and starts the monee host: the authoritative process every
  node syncs against (spec.md §4.6). Handles configuration, dependency
  injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Resolve configuration (flags > env > monee.yaml)
  2. Open the SQLite database and migrate its schema
  3. Wire the capability container (repositories, event service, sync
     service, optional SNS notifier)
  4. Configure the HTTP router
  5. Start the server with graceful shutdown

CONFIGURATION:
  -addr             HTTP listen address (env MONEE_HOST_ADDR, default ":8080")
  -db               SQLite database path (env MONEE_DB_PATH, default "monee-host.db")
  -sns-topic-arn    Optional SNS topic for best-effort sync notifications
                    (env MONEE_SNS_TOPIC_ARN, default "": disabled)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the database connection
  4. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - sync/host/service.go: The service this binary exposes
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/spf13/viper"

	"github.com/ocxide/monee/api"
	"github.com/ocxide/monee/bus"
	"github.com/ocxide/monee/container"
	"github.com/ocxide/monee/store/sqlite"
	synchost "github.com/ocxide/monee/sync/host"
)

func loadConfig() (addr, dbPath, topicARN string) {
	fs := flag.NewFlagSet("monee-host", flag.ExitOnError)
	fs.String("addr", ":8080", "HTTP listen address")
	fs.String("db", "monee-host.db", "SQLite database path")
	fs.String("sns-topic-arn", "", "Optional SNS topic ARN for sync notifications")
	fs.Parse(os.Args[1:])

	v := viper.New()
	v.BindEnv("addr", "MONEE_HOST_ADDR")
	v.BindEnv("db", "MONEE_DB_PATH")
	v.BindEnv("sns-topic-arn", "MONEE_SNS_TOPIC_ARN")
	v.SetConfigName("monee")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // absence is fine; flags/env still apply

	// Flag defaults are the lowest layer; only flags set on the command line
	// override env and monee.yaml.
	fs.VisitAll(func(f *flag.Flag) { v.SetDefault(f.Name, f.DefValue) })
	fs.Visit(func(f *flag.Flag) { v.Set(f.Name, f.Value.String()) })

	return v.GetString("addr"), v.GetString("db"), v.GetString("sns-topic-arn")
}

func main() {
	addr, dbPath, topicARN := loadConfig()
	logger := log.New(os.Stdout, "monee-host: ", log.LstdFlags)

	db, err := sqlite.New(dbPath)
	if err != nil {
		logger.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	b := bus.New(256)
	go b.Run()
	defer b.Stop()

	ledger := sqlite.NewLedger(db)
	cat := sqlite.NewCatalogue(db)

	var notifier synchost.Notifier
	if topicARN != "" {
		awsCfg, err := config.LoadDefaultConfig(context.Background())
		if err != nil {
			logger.Printf("warning: failed to load AWS config, sync notifications disabled: %v", err)
		} else {
			notifier = &synchost.SNSNotifier{
				Client:   sns.NewFromConfig(awsCfg),
				TopicARN: topicARN,
				Logger:   logger,
			}
		}
	}

	c, err := container.NewHost(context.Background(), db.Conn, logger, b, cat, ledger, ledger, ledger, sqlite.NewNodeRegistry(db), ledger, sqlite.NewAuditTrail(db), notifier)
	if err != nil {
		logger.Fatalf("failed to bootstrap snapshot: %v", err)
	}

	router := api.NewRouter(api.NewHandler(c.Sync), c.Metrics.Registry)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Printf("listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Println("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Fatalf("server forced to shutdown: %v", err)
	}
	logger.Println("stopped")
	fmt.Fprintln(os.Stdout)
}
