package main

import (
	"context"
	"net"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/example/movie-platform/internal/platform/auth"
	"github.com/example/movie-platform/internal/platform/config"
	"github.com/example/movie-platform/internal/platform/db"
	"github.com/example/movie-platform/internal/platform/events"
	"github.com/example/movie-platform/internal/platform/httpserver"
	"github.com/example/movie-platform/internal/platform/logging"
	"github.com/example/movie-platform/internal/platform/natsconn"
	"github.com/example/movie-platform/internal/platform/run"
	socialconfig "github.com/example/movie-platform/services/social/internal/config"
	"github.com/example/movie-platform/services/social/internal/grpcapi"
	"github.com/example/movie-platform/services/social/internal/handlers"
	"github.com/example/movie-platform/services/social/internal/social"
	"github.com/example/movie-platform/services/social/internal/store"
	"github.com/example/movie-platform/services/social/internal/worker"
)

// backend is the set of stores the core runs on.
type backend struct {
	relationships store.RelationshipStore
	comments      store.CommentStore
	reactions     store.ReactionStore
	ratings       store.RatingStore
	movies        store.MovieCatalog
	directory     store.DirectoryWriter
	ping          func(context.Context) error
	close         func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logging.New(logging.Options{Service: cfg.ServiceName, Level: cfg.LogLevel, Development: !cfg.IsProduction()})
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	scfg, err := socialconfig.Load(cfg.IsProduction())
	if err != nil {
		log.Error("social config", zap.Error(err))
		_ = log.Sync()
		run.Exit(1)
	}

	be := initBackend(log, cfg.IsProduction(), scfg)
	defer be.close()

	nc, js := initNATS(log, scfg.Events)
	if nc != nil {
		defer nc.Close()
	}
	publisher := events.New(js, log)
	if err := publisher.EnsureStream(events.StreamConfig{Name: scfg.Events.Stream, Subjects: []string{"social.>"}}); err != nil {
		log.Warn("ensure events stream", zap.Error(err))
	}

	opts := social.Options{
		Logger:          log,
		Events:          publisher,
		DefaultPageSize: scfg.Paging.DefaultPageSize,
		MaxPageSize:     scfg.Paging.MaxPageSize,
	}
	svc := handlers.Services{
		Graph:     social.NewRelationshipGraph(be.relationships, opts),
		Comments:  social.NewCommentThread(be.comments, be.movies, opts),
		Reactions: social.NewReactionStore(be.reactions, opts),
		Ratings:   social.NewRatingStore(be.ratings, be.movies, opts),
	}

	r := chi.NewRouter()
	httpserver.SetupRouter(r, httpserver.RouterConfig{ReadyFunc: be.ping, Log: log})
	handlers.Mount(r, svc, auth.JWTVerifier{Secret: []byte(scfg.JWT.Secret), Issuer: scfg.JWT.Issuer, Leeway: scfg.JWT.Leeway})

	srv := httpserver.New(httpserver.Options{Addr: cfg.HTTP.Addr, ServiceName: cfg.ServiceName, Router: r})

	lis, err := net.Listen("tcp", scfg.GRPC.Addr)
	if err != nil {
		log.Error("grpc listen", zap.Error(err))
		run.Exit(1)
	}
	grpcSrv := grpcapi.New(log)
	go func() {
		if err := grpcSrv.Serve(lis); err != nil {
			log.Error("grpc serve", zap.Error(err))
		}
	}()
	grpcSrv.SetServing(true)

	runner := run.New(log)
	code := runner.WithSignals(func(ctx context.Context) error {
		if js != nil {
			consumer := worker.NewDirectoryConsumer(be.directory, log, worker.DirectoryConsumerOptions{})
			go func() {
				if err := consumer.Run(ctx, js); err != nil {
					log.Warn("directory consumer stopped", zap.Error(err))
				}
			}()
		}
		return srv.Start(log)
	})

	grpcSrv.SetServing(false)
	runner.Graceful(cfg.ShutdownTimeout, srv.Shutdown)
	grpcSrv.Stop(cfg.ShutdownTimeout)

	log.Info("exit", zap.Int("code", code))
	run.Exit(code)
}

// initBackend selects Postgres when DATABASE_URL is set. Outside production
// an unreachable database falls back to the in-memory store.
func initBackend(log *zap.Logger, production bool, cfg socialconfig.Config) backend {
	if cfg.DB.URL == "" {
		log.Warn("DATABASE_URL not set, using in-memory social store (development only)")
		return memoryBackend(cfg.Seed)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	pool, err := db.Open(ctx, db.Options{DSN: cfg.DB.URL, MaxConns: int32(cfg.DB.MaxConns)})
	if err != nil {
		if production {
			log.Error("postgres is required in production but unavailable", zap.Error(err))
			_ = log.Sync()
			run.Exit(1)
		}
		log.Warn("postgres unavailable, falling back to in-memory store", zap.Error(err))
		return memoryBackend(cfg.Seed)
	}

	pg := store.NewPostgres(pool)
	if cfg.DB.AutoMigrate {
		if err := pg.Migrate(ctx); err != nil {
			log.Error("migrate", zap.Error(err))
			pool.Close()
			_ = log.Sync()
			run.Exit(1)
		}
	}

	log.Info("social store: postgres")
	dir := pg.Directory()
	return backend{
		relationships: pg.Relationships(),
		comments:      pg.Comments(),
		reactions:     pg.Reactions(),
		ratings:       pg.Ratings(),
		movies:        dir,
		directory:     dir,
		ping:          pg.Ping,
		close:         pool.Close,
	}
}

func memoryBackend(seed socialconfig.SeedConfig) backend {
	mem := store.NewMemory()
	dir := mem.Directory()
	dir.AddUser(seed.Users...)
	dir.AddMovie(seed.Movies...)
	return backend{
		relationships: mem.Relationships(),
		comments:      mem.Comments(),
		reactions:     mem.Reactions(),
		ratings:       mem.Ratings(),
		movies:        dir,
		directory:     dir,
		ping:          func(context.Context) error { return nil },
		close:         func() {},
	}
}

// initNATS is non-fatal: without a connection events are dropped and the
// directory mirror is not updated.
func initNATS(log *zap.Logger, cfg socialconfig.EventsConfig) (*nats.Conn, nats.JetStreamContext) {
	if cfg.NATSURL == "" {
		log.Warn("NATS_URL not set, social events disabled")
		return nil, nil
	}
	nc, js, err := natsconn.ConnectJetStream(natsconn.Options{URL: cfg.NATSURL, Name: "social", Log: log})
	if err != nil {
		log.Error("nats connect", zap.Error(err))
		return nil, nil
	}
	return nc, js
}
