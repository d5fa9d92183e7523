// Package backtest drives the portfolio simulation: a strictly
// sequential state machine over aligned candles that computes equity and
// drawdown, trips the circuit breaker, liquidates during cooldown, and
// routes exits and entries through the position ledger, the risk budget,
// and the execution model.
package backtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/harshal31718/enma-quant-trading-platform/execution"
	"github.com/harshal31718/enma-quant-trading-platform/id"
	"github.com/harshal31718/enma-quant-trading-platform/journal"
	"github.com/harshal31718/enma-quant-trading-platform/ledger"
	"github.com/harshal31718/enma-quant-trading-platform/market"
	"github.com/harshal31718/enma-quant-trading-platform/metrics"
	"github.com/harshal31718/enma-quant-trading-platform/risk"
	"github.com/harshal31718/enma-quant-trading-platform/signal"
)

// cashEpsilon tolerates float residue when asserting cash never goes
// negative after a committed trade.
const cashEpsilon = 1e-9

// Deps are the engine's collaborators. Series and Signals are required;
// Journal and Logger are optional.
type Deps struct {
	Series  map[string]market.Series
	Signals signal.Provider
	Journal journal.Journal
	Logger  *zerolog.Logger
}

// Engine owns all mutable run state. It is single-use: construct, Run
// once, read the Result. No ambient globals, so runs replay
// deterministically given the same inputs.
type Engine struct {
	cfg    Config
	series map[string]market.Series
	sigs   signal.Provider
	jrnl   journal.Journal
	log    zerolog.Logger

	runID  string
	budget *risk.Budget
	book   *ledger.Ledger

	cash         float64
	peak         float64
	maxDrawdown  float64
	state        State
	cooldownLeft int
	curve        []EquityPoint
}

// NewEngine validates the configuration, builds the risk budget, and
// checks that every configured symbol has a price series.
func NewEngine(cfg Config, deps Deps) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if deps.Signals == nil {
		return nil, fmt.Errorf("backtest: signal provider is required")
	}
	for _, sc := range cfg.Symbols {
		s, ok := deps.Series[sc.Symbol]
		if !ok || s.Len() == 0 {
			return nil, fmt.Errorf("backtest: no price series for symbol %s", sc.Symbol)
		}
	}
	budget, err := risk.NewBudget(cfg.Budget)
	if err != nil {
		return nil, err
	}

	log := zerolog.Nop()
	if deps.Logger != nil {
		log = *deps.Logger
	}

	return &Engine{
		cfg:    cfg,
		series: deps.Series,
		sigs:   deps.Signals,
		jrnl:   deps.Journal,
		log:    log,
		runID:  id.New(),
		budget: budget,
		book:   ledger.New(),
		cash:   cfg.InitialCapital,
		peak:   cfg.InitialCapital,
		state:  StateEnabled,
	}, nil
}

// RunID identifies this run in journals and reports.
func (e *Engine) RunID() string { return e.runID }

// Run executes the simulation over the common timestamp index of all
// configured symbols. The context is checked between timestamps only, so
// cancellation never leaves a step half-committed.
func (e *Engine) Run(ctx context.Context) (Result, error) {
	index := market.Align(e.seriesForSymbols())
	if len(index) == 0 {
		return Result{}, fmt.Errorf("backtest: configured symbols share no common timestamps")
	}

	e.log.Info().
		Str("run_id", e.runID).
		Int("candles", len(index)).
		Int("symbols", len(e.cfg.Symbols)).
		Time("start", index[0]).
		Time("end", index[len(index)-1]).
		Msg("backtest starting")

	for _, ts := range index {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		default:
		}
		if err := e.step(ts); err != nil {
			return Result{}, err
		}
	}

	return e.finish()
}

// step processes one aligned candle across all symbols. The order is
// fixed: snapshot, equity/drawdown, breaker transition, cooldown
// liquidation, exits, entries.
func (e *Engine) step(ts time.Time) error {
	prices := make(map[string]float64, len(e.cfg.Symbols))
	ranges := make(map[string]float64, len(e.cfg.Symbols))
	for _, sc := range e.cfg.Symbols {
		c, ok := e.series[sc.Symbol].At(ts)
		if !ok {
			return fmt.Errorf("backtest: no candle for %s at %s (input misaligned)", sc.Symbol, ts)
		}
		prices[sc.Symbol] = c.Close
		ranges[sc.Symbol] = c.Range()
	}

	equity := e.cash
	for _, sc := range e.cfg.Symbols {
		if pos, open := e.book.Position(sc.Symbol); open {
			equity += pos.Quantity * prices[sc.Symbol]
		}
	}
	e.curve = append(e.curve, EquityPoint{Time: ts, Equity: equity})
	if err := e.recordEquity(ts, equity); err != nil {
		return err
	}

	if equity > e.peak {
		e.peak = equity
	}
	drawdown := (e.peak - equity) / e.peak
	if drawdown > e.maxDrawdown {
		e.maxDrawdown = drawdown
	}

	if drawdown >= e.cfg.MaxDrawdown && e.state == StateEnabled {
		e.state = StateCooldown
		e.cooldownLeft = e.cfg.CooldownCandles
		e.log.Warn().
			Str("run_id", e.runID).
			Time("ts", ts).
			Float64("drawdown", drawdown).
			Msg("max drawdown breached, entering cooldown")
	}

	if e.state == StateCooldown {
		if err := e.cooldownStep(ts, prices, ranges); err != nil {
			return err
		}
		return e.checkInvariants()
	}

	if err := e.processExits(ts, prices, ranges); err != nil {
		return err
	}
	if err := e.processEntries(ts, equity, prices, ranges); err != nil {
		return err
	}
	return e.checkInvariants()
}

// cooldownStep force-liquidates every open position and counts the
// breaker down. Signal-driven exits and entries are skipped entirely
// until the breaker clears.
func (e *Engine) cooldownStep(ts time.Time, prices, ranges map[string]float64) error {
	e.cooldownLeft--

	for _, sc := range e.cfg.Symbols {
		pos, open := e.book.Position(sc.Symbol)
		if !open {
			continue
		}
		if err := e.closePosition(ts, pos, prices[sc.Symbol], ranges[sc.Symbol], ledger.ReasonLiquidation); err != nil {
			return err
		}
		e.log.Info().
			Str("run_id", e.runID).
			Str("symbol", sc.Symbol).
			Time("ts", ts).
			Msg("position liquidated in cooldown")
	}

	if e.cooldownLeft <= 0 {
		e.state = StateEnabled
		e.log.Info().Str("run_id", e.runID).Time("ts", ts).Msg("cooldown cleared, trading re-enabled")
	}
	return nil
}

// processExits closes any open position whose signal turned FLAT.
func (e *Engine) processExits(ts time.Time, prices, ranges map[string]float64) error {
	for _, sc := range e.cfg.Symbols {
		pos, open := e.book.Position(sc.Symbol)
		if !open {
			continue
		}
		dir, err := e.sigs.Signal(sc.Symbol, ts)
		if err != nil {
			return fmt.Errorf("backtest: signal for %s at %s: %w", sc.Symbol, ts, err)
		}
		if dir != signal.Flat {
			continue
		}
		if err := e.closePosition(ts, pos, prices[sc.Symbol], ranges[sc.Symbol], ledger.ReasonSignal); err != nil {
			return err
		}
	}
	return nil
}

// processEntries scans flat symbols in priority order, requesting
// allocations sized at each symbol's target risk fraction. The scan
// stops early once portfolio-level room is exhausted; there is no retry
// within a step for symbols skipped earlier.
func (e *Engine) processEntries(ts time.Time, equity float64, prices, ranges map[string]float64) error {
	for _, sc := range e.cfg.Symbols {
		if e.budget.RemainingRisk() <= 0 {
			break
		}
		if _, open := e.book.Position(sc.Symbol); open {
			continue
		}
		dir, err := e.sigs.Signal(sc.Symbol, ts)
		if err != nil {
			return fmt.Errorf("backtest: signal for %s at %s: %w", sc.Symbol, ts, err)
		}
		if dir != signal.Long {
			continue
		}

		granted := e.budget.Allocate(sc.Symbol, sc.RiskFraction, equity)
		if granted <= 0 {
			continue
		}

		fill, err := execution.Open(e.cash, equity, prices[sc.Symbol], ranges[sc.Symbol],
			granted, e.cfg.FeeRate, e.cfg.SlippageFraction)
		if errors.Is(err, execution.ErrInsufficientFunds) {
			// No capital was committed; the reservation must not linger.
			e.budget.Release(sc.Symbol, granted, equity*granted)
			continue
		}
		if err != nil {
			return err
		}

		e.cash = fill.Cash
		if err := e.book.Open(sc.Symbol, ts, fill.Price, fill.Quantity, granted, fill.Notional); err != nil {
			// Guarded by the flat check above; reaching it means the
			// ledger and the scan disagree.
			return fmt.Errorf("backtest: open %s at %s: %w", sc.Symbol, ts, err)
		}
	}
	return nil
}

// closePosition prices the exit, releases the exact (risk, notional)
// granted at entry, and finalizes the ledger trade.
func (e *Engine) closePosition(ts time.Time, pos ledger.Position, price, candleRange float64, reason string) error {
	fill := execution.Close(e.cash, pos.Quantity, price, candleRange, e.cfg.FeeRate, e.cfg.SlippageFraction)
	e.cash = fill.Cash
	e.budget.Release(pos.Symbol, pos.RiskFraction, pos.Notional)

	trade, closed := e.book.Close(pos.Symbol, ts, fill.Price, reason)
	if !closed {
		return fmt.Errorf("backtest: close of %s at %s found no open position", pos.Symbol, ts)
	}
	return e.recordTrade(trade)
}

func (e *Engine) checkInvariants() error {
	if e.cash < -cashEpsilon {
		return fmt.Errorf("backtest: cash went negative (%v), accounting defect", e.cash)
	}
	if err := e.budget.Check(); err != nil {
		return err
	}
	return nil
}

func (e *Engine) finish() (Result, error) {
	m := metrics.Compute(equityValues(e.curve), e.cfg.PeriodsPerYear)

	symbols := make([]string, len(e.cfg.Symbols))
	for i, sc := range e.cfg.Symbols {
		symbols[i] = sc.Symbol
	}
	trades := e.book.Closed()

	result := Result{
		RunID:       e.runID,
		EquityCurve: e.curve,
		Trades:      trades,
		Summary: Summary{
			InitialCapital: e.cfg.InitialCapital,
			FinalEquity:    e.curve[len(e.curve)-1].Equity,
			MaxDrawdownPct: e.maxDrawdown * 100,
			UsedRiskPct:    e.budget.UsedRisk() * 100,
			FinalState:     e.state,
			Symbols:        symbols,
			TotalTrades:    len(trades),
			Metrics:        m,
		},
	}

	if e.jrnl != nil {
		rec := journal.RunRecord{
			RunID:          e.runID,
			Created:        time.Now().UTC(),
			InitialCapital: result.Summary.InitialCapital,
			FinalEquity:    result.Summary.FinalEquity,
			ReturnPct:      m.ReturnPct,
			MaxDrawdownPct: result.Summary.MaxDrawdownPct,
			Sharpe:         m.Sharpe,
			CAGRPct:        m.CAGRPct,
			UsedRiskPct:    result.Summary.UsedRiskPct,
			FinalState:     string(result.Summary.FinalState),
			Symbols:        symbols,
			Trades:         len(trades),
		}
		if err := e.jrnl.RecordRun(rec); err != nil {
			return Result{}, err
		}
	}

	e.log.Info().
		Str("run_id", e.runID).
		Float64("final_equity", result.Summary.FinalEquity).
		Float64("max_drawdown_pct", result.Summary.MaxDrawdownPct).
		Int("trades", len(trades)).
		Str("state", string(e.state)).
		Msg("backtest finished")

	return result, nil
}

func (e *Engine) recordEquity(ts time.Time, equity float64) error {
	if e.jrnl == nil {
		return nil
	}
	return e.jrnl.RecordEquity(journal.EquityRecord{RunID: e.runID, Time: ts, Equity: equity})
}

func (e *Engine) recordTrade(t ledger.Trade) error {
	if e.jrnl == nil {
		return nil
	}
	return e.jrnl.RecordTrade(journal.TradeRecord{
		RunID:      e.runID,
		Symbol:     t.Symbol,
		EntryTime:  t.EntryTime,
		ExitTime:   t.ExitTime,
		EntryPrice: t.EntryPrice,
		ExitPrice:  t.ExitPrice,
		Quantity:   t.Quantity,
		PnL:        t.PnL,
		PnLPct:     t.PnLPct,
		Reason:     t.Reason,
	})
}

func (e *Engine) seriesForSymbols() map[string]market.Series {
	out := make(map[string]market.Series, len(e.cfg.Symbols))
	for _, sc := range e.cfg.Symbols {
		out[sc.Symbol] = e.series[sc.Symbol]
	}
	return out
}

func equityValues(curve []EquityPoint) []float64 {
	vals := make([]float64, len(curve))
	for i, p := range curve {
		vals[i] = p.Equity
	}
	return vals
}
