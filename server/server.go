package server

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"dicewars/experiments/metrics"
	"dicewars/game"
	"dicewars/meta"
	"dicewars/searcher"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

const RequestIDHeader = "X-Request-ID"

type PlanRequest struct {
	Grid       [][]game.Cell `json:"grid"`
	MaxDice    int           `json:"maxDice"` // Defaults to game.DefaultMaxDice
	Player     game.Side     `json:"player"`
	Iterations int           `json:"iterations"` // Zero picks the board's difficulty tier, capped at meta.MAX_PLAN_ITERATIONS
	Seconds    float64       `json:"seconds"`    // Zero picks the board's difficulty tier, capped at meta.MAX_PLAN_SECONDS
	Seed       *uint64       `json:"seed"`       // Omitted seeds from the clock
}

type PlanResponse struct {
	Found   bool                 `json:"found"`
	Move    *game.Move           `json:"move,omitempty"`
	Policy  []searcher.Visit     `json:"policy"`
	Metrics metrics.SearchMetric `json:"metrics"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// New returns the planning API. Every request builds its own planner and
// random source, so requests are independent.
func New() http.Handler {
	r := mux.NewRouter()
	r.Use(withRequestID)
	r.HandleFunc("/plan", handlePlan).Methods(http.MethodPost)
	r.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)
	return r
}

// withRequestID tags the request and its log lines with an ID, reusing the
// caller's ID when one is sent.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		logger := log.With().Str("request", id).Logger()
		next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context())))
	})
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "ok")
}

func handlePlan(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	var req PlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, logger, http.StatusBadRequest, fmt.Errorf("bad request: %w", err))
		return
	}

	resp, err := plan(req)
	if err != nil {
		writeError(w, logger, http.StatusBadRequest, err)
		return
	}

	logger.Info().
		Str("player", string(req.Player)).
		Bool("found", resp.Found).
		Int("iterations", resp.Metrics.Iterations).
		Msg("planned move")
	writeJSON(w, logger, http.StatusOK, resp)
}

func plan(req PlanRequest) (PlanResponse, error) {
	if req.Player != game.Human && req.Player != game.AI {
		return PlanResponse{}, fmt.Errorf("%w: unknown player %q", game.ErrConfiguration, req.Player)
	}
	if req.MaxDice == 0 {
		req.MaxDice = game.DefaultMaxDice
	}
	seed := uint64(time.Now().UnixNano())
	if req.Seed != nil {
		seed = *req.Seed
	}
	rng := rand.New(rand.NewSource(seed))

	state, err := game.FromGrid(req.Grid, req.MaxDice, rng)
	if err != nil {
		return PlanResponse{}, err
	}

	iterations, seconds := meta.Difficulty(state.Rows(), state.Cols())
	if req.Iterations != 0 {
		iterations = req.Iterations
	}
	if req.Seconds != 0 {
		seconds = req.Seconds
	}
	if math.IsNaN(seconds) || seconds < 0 {
		return PlanResponse{}, fmt.Errorf("%w: search seconds must be positive, got %g", game.ErrConfiguration, seconds)
	}
	iterations = min(iterations, meta.MAX_PLAN_ITERATIONS)
	seconds = min(seconds, meta.MAX_PLAN_SECONDS)

	m, err := searcher.NewMCTS(rng,
		searcher.WithIterations(iterations),
		searcher.WithDuration(searcher.Seconds(seconds)),
		searcher.WithMetrics(),
	)
	if err != nil {
		return PlanResponse{}, err
	}

	move, ok, metric := m.FindMove(state, req.Player)
	resp := PlanResponse{Found: ok, Policy: m.Policy(), Metrics: metric}
	if ok {
		resp.Move = &move
	}
	return resp, nil
}

func writeJSON(w http.ResponseWriter, logger *zerolog.Logger, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, logger *zerolog.Logger, status int, err error) {
	logger.Warn().Err(err).Int("status", status).Msg("rejected plan request")
	writeJSON(w, logger, status, errorResponse{Error: err.Error()})
}
