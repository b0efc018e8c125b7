package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/victornm/jeopardy/internal/api"
	"github.com/victornm/jeopardy/internal/event"
	"github.com/victornm/jeopardy/internal/leaderboard"
	"github.com/victornm/jeopardy/internal/session"
	"github.com/victornm/jeopardy/internal/store"
	"github.com/victornm/jeopardy/internal/telemetry"
)

type Config struct {
	HTTP struct {
		Port      int32
		PublicURL string
	}

	GRPC struct {
		Port int32
	}

	Redis struct {
		Addrs  []string
		Pass   string
		Prefix string
	}

	Store StoreConfig

	Game struct {
		Timer session.TimerConfig
	}
}

type StoreConfig struct {
	Driver string

	Postgres struct {
		Addr string
		User string
		Pass string
		Name string
	}

	SQLite struct {
		Path string
	}
}

// DefaultConfig is the configuration used for anything the file and environment leave unset.
func DefaultConfig() Config {
	var c Config
	c.HTTP.Port = 8080
	c.GRPC.Port = 8081
	c.Redis.Addrs = []string{"localhost:6379"}
	c.Redis.Prefix = "jeopardy"
	c.Store.Driver = store.DriverRedis
	c.Store.SQLite.Path = "jeopardy.db"
	c.Game.Timer.Duration = 30 * time.Second
	c.Game.Timer.StartOn = session.StartOnSelect
	return c
}

type Server struct {
	c Config

	eb *event.Bus

	infra struct {
		redis      redis.UniversalClient
		kv         store.KV
		closeStore func()
	}

	service struct {
		session     *session.Service
		leaderboard *leaderboard.Service
	}

	api    *api.API
	health *health.Server
	http   *http.Server
	grpc   *grpc.Server
}

func Init(c Config) (*Server, error) {
	s := &Server{c: c}

	s.eb = event.NewBus()

	if err := s.initInfra(); err != nil {
		return nil, fmt.Errorf("server: init infra: %w", err)
	}

	if err := s.initService(); err != nil {
		return nil, fmt.Errorf("server: init service: %w", err)
	}

	s.initAPI()
	return s, nil
}

func (s *Server) initInfra() error {
	var err error
	s.infra.redis, err = ConnectRedis(s.c.Redis.Addrs, s.c.Redis.Pass)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}

	if err := s.initStore(); err != nil {
		return fmt.Errorf("store: %w", err)
	}

	return nil
}

func (s *Server) initStore() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	kv, closeStore, err := OpenStore(ctx, s.c.Store, s.infra.redis, s.c.Redis.Prefix)
	if err != nil {
		return err
	}

	s.infra.kv = kv
	s.infra.closeStore = closeStore

	slog.InfoContext(ctx, "server: store ready", "driver", s.c.Store.Driver)
	return nil
}

func (s *Server) initService() error {
	snap := store.NewSnapshot(s.infra.kv)
	snap.Subscribe(s.eb)

	telemetry.MonitorGame(s.eb)

	s.service.leaderboard = leaderboard.NewService(leaderboard.Config{
		EventBus: s.eb,
		Redis:    s.infra.redis,
		Prefix:   s.c.Redis.Prefix,
	})

	s.service.session = session.NewService(context.Background(), session.Config{
		EventBus: s.eb,
		Snapshot: snap,
		Timer:    s.c.Game.Timer,
	})

	// Players restored from the store never go through players.changed.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	st := s.service.session.State(ctx)
	if err := s.service.leaderboard.UpdateLeaderboard(ctx, st.Players); err != nil {
		return fmt.Errorf("leaderboard: %w", err)
	}

	return nil
}

func (s *Server) initAPI() {
	e := gin.New()
	e.GET("/metrics", gin.WrapH(promhttp.Handler()))
	pprof.Register(e, "/debug/pprof")
	e.Use(gin.Recovery())

	s.grpc = grpc.NewServer(telemetry.GRPCServerInterceptor())
	s.health = health.NewServer()
	healthpb.RegisterHealthServer(s.grpc, s.health)

	s.api = api.New(api.Config{
		Router:       e,
		EventBus:     s.eb,
		Session:      s.service.session,
		Leaderboard:  s.service.leaderboard,
		Redis:        s.infra.redis,
		PubsubPrefix: s.c.Redis.Prefix,
		PublicURL:    s.c.HTTP.PublicURL,
	})

	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.c.HTTP.Port),
		Handler:           e,
		ReadHeaderTimeout: 60 * time.Second,
	}
}

func (s *Server) Start() {
	ctx := context.TODO()

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", s.c.GRPC.Port))
	if err != nil {
		slog.ErrorContext(ctx, "grpc server: listen failed", "error", err)
		panic(err)
	}

	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	var eg errgroup.Group
	eg.Go(func() error {
		slog.InfoContext(ctx, fmt.Sprintf("server: gRPC listening on port %d", s.c.GRPC.Port))
		return s.grpc.Serve(lis)
	})

	eg.Go(func() error {
		slog.InfoContext(ctx, fmt.Sprintf("server: HTTP listening on port %d", s.c.HTTP.Port))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	err = eg.Wait()
	if err != nil {
		slog.ErrorContext(ctx, "server: shutdown with error", "error", err)
	}
}

func (s *Server) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.health.Shutdown()

	s.grpc.GracefulStop()
	s.api.Close()
	if err := s.http.Shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "server: shutdown HTTP failed", "error", err)
	}

	// No request can arm the question timer any more.
	s.service.session.Stop()
	s.service.leaderboard.Stop()

	// Drains pending snapshot writes before the stores go away.
	s.eb.Stop()

	s.infra.closeStore()
	if err := s.infra.redis.Close(); err != nil {
		slog.ErrorContext(ctx, "server: close redis failed", "error", err)
	}

	slog.InfoContext(ctx, "server: shutdown completed")
}

func ConnectRedis(addrs []string, pass string) (redis.UniversalClient, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	r := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    addrs,
		Password: pass,
	})

	if err := telemetry.MonitorRedis(r); err != nil {
		return nil, err
	}

	if err := r.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return r, nil
}
