package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/emrgen/taxonomy/internal/cache"
	"github.com/emrgen/taxonomy/internal/compress"
	"github.com/emrgen/taxonomy/internal/config"
	"github.com/emrgen/taxonomy/internal/jobs"
	"github.com/emrgen/taxonomy/internal/queue"
	"github.com/emrgen/taxonomy/internal/service"
	"github.com/emrgen/taxonomy/internal/store"
	chi "github.com/go-chi/chi/v5"
	"github.com/gobuffalo/packr"
	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// Server represents the server
type Server struct {
	httpPort string
}

// NewServer creates a new server
func NewServer(httpPort string) *Server {
	return &Server{
		httpPort: httpPort,
	}
}

// Start starts the server
func (s *Server) Start() {
	if err := Start(s.httpPort); err != nil {
		logrus.Fatalf("error starting server: %v", err)
	}
}

// Start builds every handle explicitly, wires the services, and runs the
// http server until a termination signal arrives. All handles are closed on
// the way out.
func Start(httpPort string) error {
	httpPort = ":" + httpPort

	cnf := config.LoadConfig()
	rdb := config.GetDb(cnf)

	listener, err := net.Listen("tcp", httpPort)
	if err != nil {
		return err
	}

	taxStore := store.NewGormStore(rdb)
	if err := taxStore.Migrate(); err != nil {
		return err
	}

	redis := cache.NewRedis(cnf.RedisAddr, cnf.RedisPassword, cnf.RedisDB)
	entryCache := cache.NewRedisEntryCache(redis)

	codec := compress.ForName(cnf.Compression)

	var entryQueue queue.EntryQueue = queue.NewNop()
	if cnf.KafkaBrokers != "" {
		entryQueue, err = queue.NewKafkaEntryQueue(cnf.KafkaBrokers, cnf.KafkaTopic)
		if err != nil {
			return err
		}
	}

	entries := service.NewEntryService(codec, taxStore, entryCache, entryQueue)
	search := service.NewSearchService(taxStore)
	taxa := service.NewTaxonService(taxStore)

	router := newRouter(
		NewEntryHandler(entries),
		NewSearchHandler(search),
		NewTaxonHandler(taxa),
	)

	apiMux := http.NewServeMux()
	openapiDocs := packr.NewBox("../../docs/v1")
	docsPath := "/v1/docs/"
	apiMux.Handle(docsPath, http.StripPrefix(docsPath, http.FileServer(openapiDocs)))
	apiMux.Handle("/", router)

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "PUT"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	restServer := &http.Server{
		Addr:    httpPort,
		Handler: c.Handler(apiMux),
	}

	executor := jobs.NewTaskExecutor([]jobs.CronJob{
		jobs.NewCacheSyncTask(cnf.CacheSyncCron, taxStore, entryCache),
		jobs.NewStatsTask(cnf.StatsCron, taxStore),
	})
	executor.Run()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		logrus.Info("starting http server on: ", httpPort)
		logrus.Info("click on the following link to view the API documentation: http://localhost", httpPort, "/v1/docs/")
		if err := restServer.Serve(listener); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logrus.Errorf("error starting http server: %v", err)
			}
		}
		logrus.Infof("http server stopped")
	}()

	time.Sleep(1 * time.Second)
	logrus.Infof("Press Ctrl+C to stop the server")

	// listen for interrupt signal to gracefully shut down the server
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, unix.SIGTERM, unix.SIGINT, unix.SIGTSTP)
	<-sigs
	// clean Ctrl+C output
	fmt.Println()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := restServer.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("error stopping http server: %v", err)
	}

	executor.Stop()
	entryQueue.Close()

	if err := redis.Close(); err != nil {
		logrus.Errorf("error closing redis: %v", err)
	}

	if sqlDB, err := rdb.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logrus.Errorf("error closing database: %v", err)
		}
	}

	wg.Wait()

	return nil
}

func newRouter(entries *EntryHandler, search *SearchHandler, taxa *TaxonHandler) chi.Router {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(RequestTime)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/entries", search.Search)
		r.Post("/entries", entries.Create)

		r.Route("/entries/{id}", func(r chi.Router) {
			r.Get("/", entries.Get)
			r.Put("/", entries.Update)
			r.Delete("/", entries.Delete)
			r.Get("/versions", entries.ListVersions)
			r.Get("/versions/{version}", entries.GetVersion)
			r.Post("/restore", entries.Restore)
		})

		r.Route("/taxa", func(r chi.Router) {
			r.Get("/", taxa.List)
			r.Post("/", taxa.Create)
			r.Get("/{id}", taxa.Get)
		})
	})

	return r
}
