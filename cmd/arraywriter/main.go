package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/suparena/arraywriter"
	"github.com/suparena/arraywriter/config"
	"github.com/suparena/arraywriter/datastore/ddb"
	"github.com/suparena/arraywriter/httpapi"
	"github.com/suparena/arraywriter/storagemodels"
)

var (
	versionFlag = flag.Bool("version", false, "Show version information")
	vFlag       = flag.Bool("v", false, "Show version information (short)")
	configPath  = flag.String("config", "", "Path to the YAML config file (default $CONFIG_PATH or ./config.yaml)")
)

func main() {
	flag.Parse()

	if *versionFlag || *vFlag {
		info := arraywriter.GetVersionInfo()
		fmt.Printf("arraywriter version %s\n", info.Version)
		fmt.Printf("Git commit: %s\n", info.GitCommit)
		fmt.Printf("Build date: %s\n", info.BuildDate)
		fmt.Printf("Go version: %s\n", info.GoVersion)
		os.Exit(0)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := ddb.NewDynamodbDataStore[storagemodels.ValueRecord](ctx, ddb.ClientConfig{
		AccessKey: cfg.AWSAccessKey,
		SecretKey: cfg.AWSSecretKey,
		Region:    cfg.AWSRegion,
		Endpoint:  cfg.DynamoDBEndpoint,
	}, cfg.TableName, ddb.WithRetries(cfg.MaxWriteRetries))
	if err != nil {
		log.Fatal(err)
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)
	handler, srv, err := httpapi.NewServer(cfg, httpapi.Deps{Store: store, Logger: logger})
	if err != nil {
		log.Fatal(err)
	}

	server := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: handler,
	}

	idle := make(chan struct{})
	go func() {
		defer close(idle)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("shutdown error: %v", err)
		}
	}()

	log.Printf("arraywriter listening on %s, %s -> table %s (%s writes)", cfg.ListenAddr, cfg.Route, cfg.TableName, cfg.WriteMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	<-idle

	// Let accepted async writes land before exiting.
	drainCtx, cancel := context.WithTimeout(context.Background(), cfg.WriteTimeout)
	defer cancel()
	if err := srv.WaitForWrites(drainCtx); err != nil {
		log.Printf("pending writes abandoned: %v", err)
	}
	d := srv.Dispatcher()
	log.Printf("stopped: %d rows written, %d writes failed", d.Written(), d.Failed())
}
