package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beka-birhanu/vinom-evolve/api"
	api_i "github.com/beka-birhanu/vinom-evolve/api/i"
	"github.com/beka-birhanu/vinom-evolve/api/identity"
	simulationapi "github.com/beka-birhanu/vinom-evolve/api/simulation"
	"github.com/beka-birhanu/vinom-evolve/config"
	logger "github.com/beka-birhanu/vinom-evolve/infrastruture/log"
	"github.com/beka-birhanu/vinom-evolve/infrastruture/metrics"
	"github.com/beka-birhanu/vinom-evolve/infrastruture/repo"
	"github.com/beka-birhanu/vinom-evolve/infrastruture/sortedstorage"
	"github.com/beka-birhanu/vinom-evolve/infrastruture/token"
	"github.com/beka-birhanu/vinom-evolve/infrastruture/websocket"
	"github.com/beka-birhanu/vinom-evolve/service"
	"github.com/beka-birhanu/vinom-evolve/service/i"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const connectTimeout = 10 * time.Second

// Dependencies of the server, wired in order by the init functions.
var (
	envs                 config.Config
	mongoClient          *mongo.Client
	redisClient          *redis.Client
	generationRepo       i.GenerationRepo
	leaderboard          i.Leaderboard
	recorder             *metrics.PrometheusRecorder
	hub                  *websocket.Hub
	simulationManager    *service.SimulationManager
	jwtTokenizer         i.Tokenizer
	simulationController api_i.Controller
	router               *api.Router
	appLogger            *logger.Logger
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the simulation server",
	Long: `Start the HTTP API and the websocket frame stream. Configuration comes from
the environment or a .env file; MONGO_URI and REDIS_ADDR enable generation
history and the leaderboard.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func newLogger(name, color string) *logger.Logger {
	l, err := logger.New(name, color, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "creating %s logger: %v\n", name, err)
		os.Exit(1)
	}
	return l
}

func initMongo(ctx context.Context) {
	if envs.MongoURI == "" {
		appLogger.Warning("MONGO_URI not set, generation history is not stored")
		return
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	var err error
	mongoClient, err = mongo.Connect(connectCtx, options.Client().ApplyURI(envs.MongoURI))
	if err != nil {
		appLogger.Error(fmt.Sprintf("Failed to connect to MongoDB: %v", err))
		os.Exit(1)
	}
	if err = mongoClient.Ping(connectCtx, nil); err != nil {
		appLogger.Error(fmt.Sprintf("MongoDB ping failed: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Connected to MongoDB")

	r := repo.NewGenerationRepo(mongoClient, envs.DBName, "generations")
	if err := r.EnsureIndexes(connectCtx); err != nil {
		appLogger.Warning(fmt.Sprintf("Creating generation indexes: %v", err))
	}
	generationRepo = r
	appLogger.Info("Generation repository initialized")
}

func initRedis(ctx context.Context) {
	if envs.RedisAddr == "" {
		appLogger.Warning("REDIS_ADDR not set, leaderboard disabled")
		return
	}

	redisClient = redis.NewClient(&redis.Options{
		Addr:     envs.RedisAddr,
		Password: envs.RedisPassword,
	})
	pingCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		appLogger.Error(fmt.Sprintf("Redis ping failed: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Connected to Redis")

	var err error
	leaderboard, err = sortedstorage.NewRedisLeaderboard(redisClient, envs.LeaderboardTTLSeconds)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating leaderboard: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Leaderboard initialized")
}

func initHub(ctx context.Context) {
	hub = websocket.NewHub(newLogger("FRAMES", config.ColorMagenta))
	go hub.Run(ctx)
	appLogger.Info("Frame hub initialized")
}

func initSimulationManager() {
	opts := &service.Options{
		Logger:      newLogger("SIMULATION", config.ColorCyan),
		Broadcaster: hub,
		Repo:        generationRepo,
		Leaderboard: leaderboard,
		Recorder:    recorder,
	}

	var err error
	simulationManager, err = service.NewSimulationManager(opts, envs.FPS)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating simulation manager: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Simulation manager initialized")
}

func defaultSimulation() service.SimulationConfig {
	return service.SimulationConfig{
		Rows:         envs.GridRows,
		Cols:         envs.GridCols,
		Width:        envs.ViewportWidth,
		Height:       envs.ViewportHeight,
		Population:   envs.Population,
		MutationRate: envs.MutationRate,
		Speed:        envs.Speed,
		Seed:         envs.Seed,
	}
}

func initJWTTokenizer() {
	jwtTokenizer = token.NewJwtService(envs.JWTSecret, envs.JWTIssuer)
	appLogger.Info("JWT Tokenizer initialized")
}

func initSimulationController(ctx context.Context) {
	var err error
	simulationController, err = simulationapi.NewController(simulationapi.Config{
		Manager:     simulationManager,
		Tokenizer:   jwtTokenizer,
		Repo:        generationRepo,
		Leaderboard: leaderboard,
		Defaults:    defaultSimulation(),
		Context:     ctx,
	})
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating simulation controller: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Simulation controller initialized")
}

func startInitialSimulation(ctx context.Context) {
	sim, err := simulationManager.Start(ctx, defaultSimulation())
	if err != nil {
		appLogger.Error(fmt.Sprintf("Starting initial simulation: %v", err))
		os.Exit(1)
	}
	controlToken, err := jwtTokenizer.Generate(map[string]interface{}{
		identity.ClaimSimulationID: sim.ID().String(),
	}, 24*time.Hour)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Issuing control token: %v", err))
		os.Exit(1)
	}
	appLogger.Info(fmt.Sprintf("Initial simulation %s started, control token: %s", sim.ID(), controlToken))
}

func initRouter(t i.Tokenizer) {
	router = api.NewRouter(api.Config{
		Addr:                    fmt.Sprintf("%s:%v", envs.HostIP, envs.RESTPort),
		BaseURL:                 "/api",
		Controllers:             []api_i.Controller{simulationController},
		AuthorizationMiddleware: identity.Authoriz(t),
		Metrics:                 recorder.Handler(),
		Frames:                  hub.ServeWS,
	})
	appLogger.Info("Router initialized")
}

func serve() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appLogger = newLogger("APP", config.ColorGreen)
	envs = config.Load()
	gin.SetMode(envs.GinMode)

	initMongo(ctx)
	if mongoClient != nil {
		defer func() {
			_ = mongoClient.Disconnect(context.Background())
		}()
	}
	initRedis(ctx)
	if redisClient != nil {
		defer redisClient.Close()
	}

	recorder = metrics.NewPrometheusRecorder()
	initHub(ctx)
	initSimulationManager()
	defer simulationManager.StopAll()
	initJWTTokenizer()
	initSimulationController(ctx)
	startInitialSimulation(ctx)
	initRouter(jwtTokenizer)

	errs := make(chan error, 1)
	go func() { errs <- router.Run() }()

	select {
	case err := <-errs:
		appLogger.Error(fmt.Sprintf("Starting server: %v", err))
		return err
	case <-ctx.Done():
		appLogger.Info("Shutting down")
		return nil
	}
}
