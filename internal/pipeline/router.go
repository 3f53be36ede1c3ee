// Package pipeline orquesta el ciclo completo por par de mercados:
// clasificar → resolver → registrar métrica → validar → dimensionar → enrutar.
// Cada invocación queda resumida en un RunSummary persistido, incluso si
// muere a medias.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/arbot/internal/classify"
	"github.com/alejandrodnm/arbot/internal/domain"
	"github.com/alejandrodnm/arbot/internal/execmode"
	"github.com/alejandrodnm/arbot/internal/metrics"
	"github.com/alejandrodnm/arbot/internal/ports"
	"github.com/alejandrodnm/arbot/internal/review"
	"github.com/alejandrodnm/arbot/internal/solver"
)

// Config son los umbrales de riesgo y los límites por invocación.
type Config struct {
	MinProfitMarginUSD    float64
	MinLiquidityPerLegUSD float64
	RefSizeUSD            float64 // tamaño de referencia para estimar ProfitUSD
	CapPctOfDepth         float64
	MaxPositionUSD        float64
	MaxPairsPerRun        int // ≤ 0 = sin límite
	MaxEvents             int
}

// Router conecta los colaboradores externos con el core de decisión.
type Router struct {
	cfg Config

	provider   ports.EventProvider
	classifier *classify.Classifier
	solver     *solver.Solver
	metrics    *metrics.Aggregator
	alerts     *metrics.Evaluator
	queue      *review.Queue
	mode       *execmode.Controller
	executor   ports.OrderExecutor
	runs       ports.RunStore
	audit      ports.AuditLog

	now func() time.Time
}

// Deps agrupa los colaboradores del Router.
type Deps struct {
	Provider   ports.EventProvider
	Classifier *classify.Classifier
	Solver     *solver.Solver
	Metrics    *metrics.Aggregator
	Alerts     *metrics.Evaluator
	Queue      *review.Queue
	Mode       *execmode.Controller
	Executor   ports.OrderExecutor
	Runs       ports.RunStore
	Audit      ports.AuditLog
}

// NewRouter crea un Router con la configuración y colaboradores dados.
func NewRouter(cfg Config, deps Deps) *Router {
	return &Router{
		cfg:        cfg,
		provider:   deps.Provider,
		classifier: deps.Classifier,
		solver:     deps.Solver,
		metrics:    deps.Metrics,
		alerts:     deps.Alerts,
		queue:      deps.Queue,
		mode:       deps.Mode,
		executor:   deps.Executor,
		runs:       deps.Runs,
		audit:      deps.Audit,
		now:        time.Now,
	}
}

// RunOnce ejecuta una invocación completa del pipeline y devuelve su resumen.
// El resumen se persiste siempre: primero como running, al final como
// ok o error con el mensaje correspondiente.
func (r *Router) RunOnce(ctx context.Context) domain.RunSummary {
	run := domain.RunSummary{
		ID:        uuid.NewString(),
		StartedAt: r.now().UTC(),
		Status:    domain.RunRunning,
	}
	r.saveRun(ctx, run)

	defer func() {
		run.FinishedAt = r.now().UTC()
		if run.Status == domain.RunRunning {
			run.Status = domain.RunOK
		}
		r.saveRun(ctx, run)
		r.recordAudit(ctx, domain.ActionRunStatus, map[string]string{
			"run_id":  run.ID,
			"status":  string(run.Status),
			"pairs":   strconv.Itoa(run.PairsChecked),
			"queued":  strconv.Itoa(run.Queued),
			"message": run.Message,
		})
		if r.alerts != nil && r.metrics != nil {
			r.alerts.Evaluate(ctx, r.metrics.Current(ctx))
		}
	}()

	events, err := r.provider.FetchEvents(ctx, r.cfg.MaxEvents)
	if err != nil {
		run.Status = domain.RunError
		run.Message = fmt.Sprintf("fetch events: %v", err)
		slog.Error("market fetch failed", "run_id", run.ID, "err", err)
		return run
	}

	state := r.mode.Get(ctx)
	slog.Info("run started", "run_id", run.ID, "events", len(events),
		"mode", state.Mode, "trigger", state.Trigger)

	for _, event := range events {
		for _, pair := range event.Pairs() {
			if r.cfg.MaxPairsPerRun > 0 && run.PairsChecked >= r.cfg.MaxPairsPerRun {
				slog.Info("pair limit reached", "run_id", run.ID, "limit", r.cfg.MaxPairsPerRun)
				return run
			}
			if ctx.Err() != nil {
				run.Status = domain.RunError
				run.Message = ctx.Err().Error()
				return run
			}

			run.PairsChecked++
			out := r.safeProcess(ctx, pair, state)
			if out.opportunity {
				run.Opportunities++
			}
			if out.queued {
				run.Queued++
			}
			if out.executed {
				run.Executed++
			}
		}
	}

	slog.Info("run finished", "run_id", run.ID, "pairs", run.PairsChecked,
		"opportunities", run.Opportunities, "queued", run.Queued, "executed", run.Executed)
	return run
}

type pairOutcome struct {
	opportunity bool
	queued      bool
	executed    bool
}

// safeProcess aísla cada par: un pánico o error en uno no interrumpe el resto
// de la invocación.
func (r *Router) safeProcess(ctx context.Context, pair domain.MarketPair, state domain.ModeState) (out pairOutcome) {
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("pair processing panicked", "event", pair.EventID, "panic", rec)
			out = pairOutcome{}
		}
	}()
	return r.processPair(ctx, pair, state)
}

func (r *Router) processPair(ctx context.Context, pair domain.MarketPair, state domain.ModeState) pairOutcome {
	cls := r.classifier.Classify(ctx, pair)
	res, weights := r.solver.Hedge(ctx, pair, cls.Combinations)
	if !res.HasArbitrage {
		return pairOutcome{}
	}

	profitUSD := res.ProfitPerUnit() * r.cfg.RefSizeUSD
	opp := domain.Opportunity{
		Pair:         pair,
		Result:       res,
		Combinations: cls.Combinations,
		Dependent:    cls.Dependent,
		ProfitUSD:    profitUSD,
		DetectedAt:   r.now().UTC(),
	}

	// La señal cruda se registra antes de validar: la fuerza de señal y la
	// señal accionable son métricas distintas.
	if err := r.metrics.RecordOpportunity(ctx, map[string]string{
		"event":      pair.EventID,
		"min_cost":   fmt.Sprintf("%.4f", res.MinCost),
		"source":     string(cls.Source),
		"profit_usd": fmt.Sprintf("%.2f", profitUSD),
	}); err != nil {
		slog.Warn("opportunity metric failed", "err", err)
	}

	v := domain.ValidateExecution(profitUSD, pair.MinLiquidity(),
		r.cfg.MinProfitMarginUSD, r.cfg.MinLiquidityPerLegUSD)
	if !v.Passed {
		slog.Debug("opportunity rejected", "event", pair.EventID, "reason", v.Reason)
		return pairOutcome{opportunity: true}
	}

	size := domain.SizeFromDepth(
		[]float64{pair.A.LiquidityUSD, pair.B.LiquidityUSD},
		r.cfg.CapPctOfDepth, r.cfg.MaxPositionUSD)
	if size <= 0 {
		slog.Debug("position size is zero", "event", pair.EventID)
		return pairOutcome{opportunity: true}
	}

	if state.Trigger == domain.TriggerAuto {
		return pairOutcome{opportunity: true, executed: r.execute(ctx, opp, weights, size, state)}
	}

	id, err := r.queue.Add(ctx, opp)
	if err != nil {
		slog.Error("enqueue failed", "event", pair.EventID, "err", err)
		return pairOutcome{opportunity: true}
	}
	slog.Info("opportunity queued for review", "queue_id", id,
		"profit_usd", profitUSD, "min_cost", res.MinCost)
	return pairOutcome{opportunity: true, queued: true}
}

// execute envía las patas del hedge y registra resultado, latencia y PnL.
func (r *Router) execute(ctx context.Context, opp domain.Opportunity, weights []float64, sizeUSD float64, state domain.ModeState) bool {
	legs := hedgeLegs(opp.Pair, weights)
	if len(legs) == 0 {
		slog.Warn("no hedge legs derived, skipping execution", "event", opp.Pair.EventID)
		return false
	}

	mode := state.EffectiveMode()
	if mode != state.Mode {
		slog.Info("dry-run active, forcing paper execution", "event", opp.Pair.EventID)
	}

	start := r.now()
	result, err := r.executor.SubmitOrders(ctx, legs, sizeUSD, mode)
	latencyMs := float64(r.now().Sub(start)) / float64(time.Millisecond)

	success := err == nil && result.Success
	pnl := 0.0
	if success {
		pnl = opp.Result.ProfitPerUnit() * sizeUSD
	}
	if err != nil {
		slog.Error("order submission failed", "event", opp.Pair.EventID, "err", err)
	}

	if mErr := r.metrics.RecordExecution(ctx, success, pnl, latencyMs); mErr != nil {
		slog.Warn("execution metric failed", "err", mErr)
	}
	r.recordAudit(ctx, domain.ActionOrderSubmit, map[string]string{
		"event":    opp.Pair.EventID,
		"mode":     string(mode),
		"dry_run":  strconv.FormatBool(state.DryRun),
		"size_usd": fmt.Sprintf("%.2f", sizeUSD),
		"success":  strconv.FormatBool(success),
		"message":  result.Message,
	})
	return success
}

// hedgeLegs construye una pata BUY por átomo con peso positivo en la
// solución óptima.
func hedgeLegs(pair domain.MarketPair, weights []float64) []ports.OrderLeg {
	if len(weights) != 4 {
		return nil
	}
	atoms := []struct {
		conditionID string
		outcome     domain.Outcome
		price       float64
	}{
		{pair.A.ConditionID, domain.OutcomeAffirmative, pair.A.PriceYes},
		{pair.A.ConditionID, domain.OutcomeNegative, pair.A.PriceNo},
		{pair.B.ConditionID, domain.OutcomeAffirmative, pair.B.PriceYes},
		{pair.B.ConditionID, domain.OutcomeNegative, pair.B.PriceNo},
	}

	var legs []ports.OrderLeg
	for k, w := range weights {
		if w < 1e-9 {
			continue
		}
		legs = append(legs, ports.OrderLeg{
			TokenID: fmt.Sprintf("%s:%s", atoms[k].conditionID, atoms[k].outcome),
			Price:   atoms[k].price,
			Side:    "BUY",
		})
	}
	return legs
}

func (r *Router) saveRun(ctx context.Context, run domain.RunSummary) {
	if err := r.runs.SaveRun(ctx, run); err != nil {
		slog.Error("run summary save failed", "run_id", run.ID, "err", err)
	}
}

func (r *Router) recordAudit(ctx context.Context, action domain.AuditAction, details map[string]string) {
	if r.audit == nil {
		return
	}
	if err := r.audit.Append(ctx, action, details); err != nil {
		slog.Warn("audit append failed", "action", action, "err", err)
	}
}
