package simulationapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	api_i "github.com/beka-birhanu/vinom-evolve/api/i"
	"github.com/beka-birhanu/vinom-evolve/api/identity"
	"github.com/beka-birhanu/vinom-evolve/grid"
	"github.com/beka-birhanu/vinom-evolve/report"
	"github.com/beka-birhanu/vinom-evolve/service"
	"github.com/beka-birhanu/vinom-evolve/service/i"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	defaultTokenTTL    = 24 * time.Hour
	defaultTopN        = 10
	maxTopN            = 100
	storeTimeout       = 2 * time.Second
	controlErrorString = "simulation is controlled by another token"
)

// Config holds the dependencies of a Controller. Repo and Leaderboard are optional.
type Config struct {
	Manager     *service.SimulationManager
	Tokenizer   i.Tokenizer
	Repo        i.GenerationRepo
	Leaderboard i.Leaderboard
	Defaults    service.SimulationConfig
	TokenTTL    time.Duration

	// Context bounds the frame loops of simulations started over HTTP.
	Context context.Context
}

// Controller exposes the active simulation over HTTP.
type Controller struct {
	manager     *service.SimulationManager
	tokenizer   i.Tokenizer
	repo        i.GenerationRepo
	leaderboard i.Leaderboard
	defaults    service.SimulationConfig
	tokenTTL    time.Duration
	ctx         context.Context
}

// NewController initializes a Controller.
func NewController(c Config) (*Controller, error) {
	if c.Manager == nil {
		return nil, errors.New("simulation manager is required")
	}
	if c.Tokenizer == nil {
		return nil, errors.New("tokenizer is required")
	}
	if c.TokenTTL <= 0 {
		c.TokenTTL = defaultTokenTTL
	}
	if c.Context == nil {
		c.Context = context.Background()
	}
	return &Controller{
		manager:     c.Manager,
		tokenizer:   c.Tokenizer,
		repo:        c.Repo,
		leaderboard: c.Leaderboard,
		defaults:    c.Defaults,
		tokenTTL:    c.TokenTTL,
		ctx:         c.Context,
	}, nil
}

var _ api_i.Controller = (*Controller)(nil)

// RegisterPublic registers public routes.
func (sc *Controller) RegisterPublic(route *gin.RouterGroup) {
	simulations := route.Group("/simulations")
	{
		simulations.POST("", sc.start)
		simulations.GET("/current", sc.current)
		simulations.GET("/current/history", sc.history)
		simulations.GET("/current/history/plot", sc.plot)
	}
	route.GET("/runs/:ID/history", sc.storedHistory)
	route.GET("/leaderboard/:rows/:cols", sc.top)
}

// RegisterProtected registers routes that need the control token of the active simulation.
func (sc *Controller) RegisterProtected(route *gin.RouterGroup) {
	current := route.Group("/simulations/current")
	{
		current.PATCH("/params", sc.setParams)
		current.POST("/regenerate", sc.regenerate)
		current.PUT("/viewport", sc.resize)
	}
}

// start replaces the active simulation and hands out its control token.
func (sc *Controller) start(ctx *gin.Context) {
	var request StartRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	sim, err := sc.manager.Start(sc.ctx, sc.merge(request))
	if err != nil {
		ctx.JSON(statusOf(err), gin.H{"error": err.Error()})
		return
	}

	expiresAt := time.Now().UTC().Add(sc.tokenTTL)
	token, err := sc.tokenizer.Generate(map[string]interface{}{
		identity.ClaimSimulationID: sim.ID().String(),
	}, sc.tokenTTL)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "issuing control token"})
		return
	}

	ctx.JSON(http.StatusCreated, &StartResponse{
		ID:        sim.ID(),
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
		Params:    sim.Params(),
	})
}

func (sc *Controller) merge(r StartRequest) service.SimulationConfig {
	c := sc.defaults
	if r.Rows > 0 {
		c.Rows = r.Rows
	}
	if r.Cols > 0 {
		c.Cols = r.Cols
	}
	if r.Width > 0 {
		c.Width = r.Width
	}
	if r.Height > 0 {
		c.Height = r.Height
	}
	if r.Population > 0 {
		c.Population = r.Population
	}
	if r.MutationRate != nil {
		c.MutationRate = *r.MutationRate
	}
	if r.Speed != nil {
		c.Speed = *r.Speed
	}
	c.Seed = r.Seed
	return c
}

// current returns the latest frame of the active simulation.
func (sc *Controller) current(ctx *gin.Context) {
	sim, err := sc.manager.Active()
	if err != nil {
		ctx.JSON(statusOf(err), gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, sim.Snapshot())
}

// history lists the generations scored since the last (re)generation.
func (sc *Controller) history(ctx *gin.Context) {
	sim, err := sc.manager.Active()
	if err != nil {
		ctx.JSON(statusOf(err), gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, &HistoryResponse{ID: sim.ID(), Run: sim.RunNumber(), Generations: sim.History()})
}

// plot renders the history of the active simulation as a PNG chart.
func (sc *Controller) plot(ctx *gin.Context) {
	sim, err := sc.manager.Active()
	if err != nil {
		ctx.JSON(statusOf(err), gin.H{"error": err.Error()})
		return
	}

	history := sim.History()
	if len(history) == 0 {
		ctx.JSON(http.StatusNotFound, gin.H{"error": report.ErrNoHistory.Error()})
		return
	}

	ctx.Header("Content-Type", "image/png")
	if err := report.WritePNG(ctx.Writer, history, "Simulation "+sim.ID().String()); err != nil {
		_ = ctx.Error(err)
		ctx.Status(http.StatusInternalServerError)
	}
}

// storedHistory reads the persisted history of any run.
func (sc *Controller) storedHistory(ctx *gin.Context) {
	if sc.repo == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "history store disabled"})
		return
	}

	ID, err := uuid.Parse(ctx.Params.ByName("ID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	records, err := sc.repo.BySimulation(timeoutCtx, ID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if len(records) == 0 {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "run not found"})
		return
	}

	ctx.JSON(http.StatusOK, &StoredHistoryResponse{ID: ID, Runs: groupRuns(records)})
}

// groupRuns splits records ordered by run into one entry per run.
func groupRuns(records []*i.GenerationRecord) []RunHistory {
	var runs []RunHistory
	for _, r := range records {
		if len(runs) == 0 || runs[len(runs)-1].Run != r.Run {
			runs = append(runs, RunHistory{
				Run:          r.Run,
				Rows:         r.Rows,
				Cols:         r.Cols,
				MutationRate: r.MutationRate,
			})
		}
		last := &runs[len(runs)-1]
		last.Generations = append(last.Generations, r.Stats)
	}
	return runs
}

// top lists the runs that solved a maze shape in the fewest generations.
func (sc *Controller) top(ctx *gin.Context) {
	if sc.leaderboard == nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"error": "leaderboard disabled"})
		return
	}

	rows, errRows := strconv.Atoi(ctx.Params.ByName("rows"))
	cols, errCols := strconv.Atoi(ctx.Params.ByName("cols"))
	if errRows != nil || errCols != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "rows and cols must be integers"})
		return
	}

	n := int64(defaultTopN)
	if raw := ctx.Query("n"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed <= 0 {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "n must be a positive integer"})
			return
		}
		n = min(parsed, maxTopN)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	entries, err := sc.leaderboard.Top(timeoutCtx, rows, cols, n)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, &LeaderboardResponse{Rows: rows, Cols: cols, Entries: entries})
}

// controlled returns the active simulation if the request's token controls it.
func (sc *Controller) controlled(ctx *gin.Context) (*service.Simulation, bool) {
	sim, err := sc.manager.Active()
	if err != nil {
		ctx.JSON(statusOf(err), gin.H{"error": err.Error()})
		return nil, false
	}
	id, ok := identity.SimulationID(ctx)
	if !ok || id != sim.ID().String() {
		ctx.JSON(http.StatusForbidden, gin.H{"error": controlErrorString})
		return nil, false
	}
	return sim, true
}

func (sc *Controller) setParams(ctx *gin.Context) {
	sim, ok := sc.controlled(ctx)
	if !ok {
		return
	}

	var request service.ParamsUpdate
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := sim.SetParams(request); err != nil {
		ctx.JSON(statusOf(err), gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, sim.Params())
}

func (sc *Controller) regenerate(ctx *gin.Context) {
	sim, ok := sc.controlled(ctx)
	if !ok {
		return
	}

	var request RegenerateRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := sim.Regenerate(request.Rows, request.Cols, request.Population); err != nil {
		ctx.JSON(statusOf(err), gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, sim.Snapshot())
}

func (sc *Controller) resize(ctx *gin.Context) {
	sim, ok := sc.controlled(ctx)
	if !ok {
		return
	}

	var request ViewportRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := sim.Resize(request.Width, request.Height); err != nil {
		ctx.JSON(statusOf(err), gin.H{"error": err.Error()})
		return
	}
	ctx.Status(http.StatusNoContent)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrNoSimulation):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidSpeed),
		errors.Is(err, grid.ErrInvalidDimensions),
		errors.Is(err, grid.ErrInvalidPopulation),
		errors.Is(err, grid.ErrInvalidViewport),
		errors.Is(err, grid.ErrInvalidMutationRate),
		errors.Is(err, grid.ErrInvalidGenome):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
