package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"StressWatch/internal/domain/models"
	domrepo "StressWatch/internal/domain/repository"
	"StressWatch/internal/services/alerting"
	"StressWatch/internal/services/analytics"
	"StressWatch/pkg/logger"
)

// StrainRefs names the indicator codes whose raw closes feed the strain
// calculator. All three must be registered indicators; an unset Primary
// disables strain evaluation.
type StrainRefs struct {
	Primary   string
	Secondary string
	Tertiary  string
}

// LiquidityRefs names the indicator codes whose raw series feed the derived
// liquidity composite: money stock and balance sheet levels plus the reserve
// drain balance. All code fields must be set to enable it.
type LiquidityRefs struct {
	Code         string
	MoneyStock   string
	BalanceSheet string
	ReserveDrain string
	GreenMax     float64
	YellowMax    float64
	Scale        float64
}

func (r LiquidityRefs) enabled() bool {
	return r.Code != "" && r.MoneyStock != "" && r.BalanceSheet != "" && r.ReserveDrain != ""
}

// BondRefs names the indicator codes whose raw series feed the derived bond
// market composite. TermPremium is optional; the family weights adjust when
// it is absent.
type BondRefs struct {
	Code         string
	HighYield    string
	InvestGrade  string
	CurveSpreads []string
	ShortYield   string
	LongYield    string
	TermPremium  string
	GreenMax     float64
	YellowMax    float64
}

func (r BondRefs) enabled() bool {
	return r.Code != "" && r.HighYield != "" && r.InvestGrade != "" &&
		len(r.CurveSpreads) > 0 && r.ShortYield != "" && r.LongYield != ""
}

type Options struct {
	Workers     int
	SeriesDepth int
	StrainRefs  StrainRefs
	Liquidity   LiquidityRefs
	Bond        BondRefs
}

// indicatorState is everything the runner owns for one indicator. The mutex
// serializes ingestion against cycle processing; the normalizer itself is
// single-threaded per indicator.
type indicatorState struct {
	def  models.IndicatorDefinition
	norm *analytics.Normalizer

	mu      sync.Mutex
	pending []models.RawObservation
	last    *models.CycleResult
}

// CycleRunner drives the evaluation pipeline: buffered raw observations go
// through per-indicator normalization in parallel, composites wait for their
// complete fan-in, and the alert engine only sees the finished snapshot.
type CycleRunner struct {
	indicators map[string]*indicatorState
	composites []models.CompositeDefinition
	classifier *analytics.Classifier
	builder    *analytics.Builder
	strain     *analytics.StrainCalculator
	strainRefs StrainRefs
	liquidity  LiquidityRefs
	bond       BondRefs
	alerts     *alerting.Engine
	store      domrepo.ResultStore
	publisher  domrepo.AlertPublisher
	metrics    domrepo.Metrics
	log        *logger.Logger
	workers    int

	// Raw series of the strain, liquidity and bond reference indicators,
	// teed off ingestion so derived readings never depend on normalized
	// window state. Dirty flags gate re-evaluation: a cycle without new
	// reference data re-uses the previous reading instead of recomputing
	// and persisting a duplicate.
	seriesMu       sync.Mutex
	rawSeries      map[string][]float64
	teed           map[string]struct{}
	seriesDepth    int
	strainDirty    bool
	liquidityDirty bool
	bondDirty      bool
	lastLiquidity  *models.CycleResult
	lastBond       *models.CycleResult
}

func NewCycleRunner(
	defs []models.IndicatorDefinition,
	composites []models.CompositeDefinition,
	classifier *analytics.Classifier,
	strain *analytics.StrainCalculator,
	alerts *alerting.Engine,
	store domrepo.ResultStore,
	publisher domrepo.AlertPublisher,
	metrics domrepo.Metrics,
	log *logger.Logger,
	opts Options,
) *CycleRunner {
	indicators := make(map[string]*indicatorState, len(defs))
	for _, def := range defs {
		indicators[def.Code] = &indicatorState{def: def, norm: analytics.NewNormalizer(def)}
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}
	depth := opts.SeriesDepth
	if depth <= 0 {
		depth = 252
	}
	if strain != nil && depth < strain.TrendLength()+1 {
		depth = strain.TrendLength() + 1
	}
	liquidity := opts.Liquidity
	if liquidity.GreenMax == 0 && liquidity.YellowMax == 0 {
		liquidity.GreenMax, liquidity.YellowMax = 35, 65
	}
	bond := opts.Bond
	if bond.GreenMax == 0 && bond.YellowMax == 0 {
		bond.GreenMax, bond.YellowMax = 35, 65
	}

	teed := make(map[string]struct{})
	if strain != nil && opts.StrainRefs.Primary != "" {
		for _, code := range []string{opts.StrainRefs.Primary, opts.StrainRefs.Secondary, opts.StrainRefs.Tertiary} {
			teed[code] = struct{}{}
		}
	}
	if liquidity.enabled() {
		for _, code := range []string{liquidity.MoneyStock, liquidity.BalanceSheet, liquidity.ReserveDrain} {
			teed[code] = struct{}{}
		}
	}
	if bond.enabled() {
		codes := []string{bond.HighYield, bond.InvestGrade, bond.ShortYield, bond.LongYield}
		codes = append(codes, bond.CurveSpreads...)
		if bond.TermPremium != "" {
			codes = append(codes, bond.TermPremium)
		}
		for _, code := range codes {
			teed[code] = struct{}{}
		}
	}

	return &CycleRunner{
		indicators:  indicators,
		composites:  composites,
		classifier:  classifier,
		builder:     analytics.NewBuilder(),
		strain:      strain,
		strainRefs:  opts.StrainRefs,
		liquidity:   liquidity,
		bond:        bond,
		alerts:      alerts,
		store:       store,
		publisher:   publisher,
		metrics:     metrics,
		log:         log,
		workers:     workers,
		rawSeries:   make(map[string][]float64),
		teed:        teed,
		seriesDepth: depth,
	}
}

// Ingest buffers one raw observation for the next cycle. Unknown indicator
// codes are rejected so a misconfigured feed is visible immediately.
func (r *CycleRunner) Ingest(obs models.RawObservation) error {
	st, ok := r.indicators[obs.IndicatorCode]
	if !ok {
		r.metrics.RecordError("unknown_indicator")
		return fmt.Errorf("unknown indicator %q", obs.IndicatorCode)
	}
	st.mu.Lock()
	st.pending = append(st.pending, obs)
	st.mu.Unlock()
	return nil
}

// RunCycle evaluates everything buffered since the last cycle and returns
// the snapshot the alert engine saw. Persistence failures are logged and
// counted but never change computed results.
func (r *CycleRunner) RunCycle(ctx context.Context, ts time.Time) (models.CycleSnapshot, error) {
	start := time.Now()

	results := make(map[string]models.CycleResult, len(r.indicators)+len(r.composites))
	var resMu sync.Mutex

	sem := make(chan struct{}, r.workers)
	var wg sync.WaitGroup
	for code, st := range r.indicators {
		wg.Add(1)
		go func(code string, st *indicatorState) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			res := r.processIndicator(ctx, code, st)
			resMu.Lock()
			results[code] = res
			resMu.Unlock()
		}(code, st)
	}
	wg.Wait()

	// Composites only aggregate complete fan-ins: every sub-metric has
	// resolved by this point, one without data poisons the composite for
	// the cycle.
	for _, def := range r.composites {
		res := r.processComposite(ctx, ts, def, results)
		results[def.Code] = res
	}

	r.evaluateDerivedComposites(ctx, ts, results)
	r.evaluateStrain(ctx, ts)

	snap := models.CycleSnapshot{Timestamp: ts, Results: results}

	// System-wide barrier: the alert engine sees the snapshot only after
	// every indicator and composite has resolved.
	alert, err := r.alerts.Evaluate(ctx, snap)
	if err != nil {
		r.log.Error("alert evaluation failed", logger.Error(err))
		r.metrics.RecordError("alert_evaluate")
	}
	if alert != nil {
		r.emitAlert(ctx, alert)
	}

	r.metrics.RecordCycle(time.Since(start).Seconds())
	return snap, nil
}

// processIndicator drains the indicator's buffer through its normalizer.
// A cycle with no new observations carries the previous classification
// forward; a rejected batch makes the indicator data-unavailable for this
// cycle without touching its window.
func (r *CycleRunner) processIndicator(ctx context.Context, code string, st *indicatorState) models.CycleResult {
	st.mu.Lock()
	defer st.mu.Unlock()

	pending := st.pending
	st.pending = nil

	if len(pending) == 0 {
		if st.last != nil {
			return *st.last
		}
		r.metrics.RecordNoData(code)
		return models.CycleResult{HasData: false}
	}

	outs, err := st.norm.PushBatch(pending)
	if err != nil {
		r.log.Warn("observation batch rejected",
			logger.String("indicator", code),
			logger.Int("batch_size", len(pending)),
			logger.Error(err))
		r.metrics.RecordError("ingest_rejected")
		return models.CycleResult{HasData: false}
	}

	r.recordDerivedSeries(code, pending)

	if len(outs) == 0 {
		// Everything went to warm-up; nothing scoreable yet.
		r.metrics.RecordNoData(code)
		return models.CycleResult{HasData: false}
	}

	normalized := make([]models.NormalizedObservation, len(outs))
	for i, out := range outs {
		score, state := r.classifier.Classify(out.NormalizedValue, st.def.GreenMax, st.def.YellowMax)
		normalized[i] = models.NormalizedObservation{
			IndicatorCode:   code,
			Timestamp:       out.Timestamp,
			RawValue:        out.RawValue,
			StandardScore:   out.StandardScore,
			NormalizedValue: out.NormalizedValue,
			Score:           score,
			State:           state,
			HasData:         true,
		}
		r.metrics.RecordObservation(code)
	}
	last := normalized[len(normalized)-1]
	r.metrics.RecordScore(code, last.Score)

	saveStart := time.Now()
	if err := r.store.SaveObservations(ctx, normalized); err != nil {
		r.log.Error("observation persist failed", logger.String("indicator", code), logger.Error(err))
		r.metrics.RecordError("store_observations")
	}
	r.metrics.RecordLatency("store_observations_seconds", time.Since(saveStart).Seconds())

	res := models.CycleResult{State: last.State, Score: last.Score, HasData: true}
	st.last = &res
	return res
}

func (r *CycleRunner) processComposite(ctx context.Context, ts time.Time, def models.CompositeDefinition, results map[string]models.CycleResult) models.CycleResult {
	scores := make(map[string]float64, len(def.Components))
	for _, c := range def.Components {
		sub, ok := results[c.SubMetricID]
		if !ok || !sub.HasData {
			r.metrics.RecordNoData(def.Code)
			return models.CycleResult{HasData: false}
		}
		scores[c.SubMetricID] = sub.Score
	}

	co, err := r.builder.Build(ts, def, scores)
	if err != nil {
		r.log.Error("composite build failed", logger.String("composite", def.Code), logger.Error(err))
		r.metrics.RecordError("composite_build")
		return models.CycleResult{HasData: false}
	}

	if err := r.store.SaveComposite(ctx, co); err != nil {
		r.log.Error("composite persist failed", logger.String("composite", def.Code), logger.Error(err))
		r.metrics.RecordError("store_composite")
	}
	r.metrics.RecordScore(def.Code, co.Score)
	return models.CycleResult{State: co.State, Score: co.Score, HasData: true}
}

// recordDerivedSeries tees raw values of the strain, liquidity and bond
// reference indicators into their shared series history.
func (r *CycleRunner) recordDerivedSeries(code string, obs []models.RawObservation) {
	if _, ok := r.teed[code]; !ok {
		return
	}
	r.seriesMu.Lock()
	defer r.seriesMu.Unlock()
	series := r.rawSeries[code]
	for _, o := range obs {
		series = append(series, o.Value)
	}
	if len(series) > r.seriesDepth {
		series = series[len(series)-r.seriesDepth:]
	}
	r.rawSeries[code] = series

	if code == r.strainRefs.Primary || code == r.strainRefs.Secondary || code == r.strainRefs.Tertiary {
		r.strainDirty = true
	}
	if code == r.liquidity.MoneyStock || code == r.liquidity.BalanceSheet || code == r.liquidity.ReserveDrain {
		r.liquidityDirty = true
	}
	if code == r.bond.HighYield || code == r.bond.InvestGrade || code == r.bond.ShortYield ||
		code == r.bond.LongYield || code == r.bond.TermPremium {
		r.bondDirty = true
	}
	for _, c := range r.bond.CurveSpreads {
		if code == c {
			r.bondDirty = true
		}
	}
}

// evaluateDerivedComposites resolves the composites computed from teed raw
// series rather than sub-metric scores. Their results join the snapshot and
// count toward the alert threshold like any indicator.
func (r *CycleRunner) evaluateDerivedComposites(ctx context.Context, ts time.Time, results map[string]models.CycleResult) {
	if r.liquidity.enabled() {
		results[r.liquidity.Code] = r.evaluateLiquidity(ctx, ts)
	}
	if r.bond.enabled() {
		results[r.bond.Code] = r.evaluateBond(ctx, ts)
	}
}

// evaluateLiquidity derives money growth and balance sheet deltas from the
// teed levels, sums the component z-scores and maps the latest signal onto
// the stress scale.
func (r *CycleRunner) evaluateLiquidity(ctx context.Context, ts time.Time) models.CycleResult {
	r.seriesMu.Lock()
	dirty := r.liquidityDirty
	r.liquidityDirty = false
	money := r.rawSeries[r.liquidity.MoneyStock]
	balance := r.rawSeries[r.liquidity.BalanceSheet]
	drain := r.rawSeries[r.liquidity.ReserveDrain]
	r.seriesMu.Unlock()

	if !dirty {
		if r.lastLiquidity != nil {
			return *r.lastLiquidity
		}
		return models.CycleResult{HasData: false}
	}

	growth := analytics.PercentChangeSeries(money)
	delta := analytics.RateOfChangeSeries(balance)
	aligned := tailAlign(growth, delta, drain)
	if len(aligned[0]) < 2 {
		r.metrics.RecordNoData(r.liquidity.Code)
		return models.CycleResult{HasData: false}
	}
	signal, err := analytics.LiquiditySignal(aligned[0], aligned[1], aligned[2])
	if err != nil {
		r.log.Error("liquidity signal failed", logger.Error(err))
		r.metrics.RecordError("liquidity_signal")
		return models.CycleResult{HasData: false}
	}
	score := analytics.LiquidityStress(signal[len(signal)-1], r.liquidity.Scale)
	state := analytics.StateForScore(score, r.liquidity.GreenMax, r.liquidity.YellowMax)

	co := models.CompositeObservation{Code: r.liquidity.Code, Timestamp: ts, Score: score, State: state}
	if err := r.store.SaveComposite(ctx, co); err != nil {
		r.log.Error("composite persist failed", logger.String("composite", r.liquidity.Code), logger.Error(err))
		r.metrics.RecordError("store_composite")
	}
	r.metrics.RecordScore(r.liquidity.Code, score)

	res := models.CycleResult{State: state, Score: score, HasData: true}
	r.lastLiquidity = &res
	return res
}

// evaluateBond folds the teed rate series through the four bond stress
// families, plus the term premium when its series carries data.
func (r *CycleRunner) evaluateBond(ctx context.Context, ts time.Time) models.CycleResult {
	r.seriesMu.Lock()
	dirty := r.bondDirty
	r.bondDirty = false
	highYield := r.rawSeries[r.bond.HighYield]
	investGrade := r.rawSeries[r.bond.InvestGrade]
	curves := make([][]float64, len(r.bond.CurveSpreads))
	for i, code := range r.bond.CurveSpreads {
		curves[i] = r.rawSeries[code]
	}
	shortYield := r.rawSeries[r.bond.ShortYield]
	longYield := r.rawSeries[r.bond.LongYield]
	var premium []float64
	if r.bond.TermPremium != "" {
		premium = r.rawSeries[r.bond.TermPremium]
	}
	r.seriesMu.Unlock()

	if !dirty {
		if r.lastBond != nil {
			return *r.lastBond
		}
		return models.CycleResult{HasData: false}
	}

	credit := tailAlign(highYield, investGrade)
	curves = tailAlign(curves...)
	rates := tailAlign(shortYield, longYield)
	if len(credit[0]) < 2 || len(curves[0]) < 2 || len(rates[0]) < 2 {
		r.metrics.RecordNoData(r.bond.Code)
		return models.CycleResult{HasData: false}
	}
	if len(premium) < 2 {
		premium = nil
	}

	def := models.CompositeDefinition{
		Code:       r.bond.Code,
		Components: analytics.DefaultBondWeights(premium != nil),
		GreenMax:   r.bond.GreenMax,
		YellowMax:  r.bond.YellowMax,
	}
	co, err := analytics.EvaluateBondStress(ts, def, analytics.BondInputs{
		HighYieldOAS:   credit[0],
		InvestGradeOAS: credit[1],
		CurveSpreads:   curves,
		ShortYield:     rates[0],
		LongYield:      rates[1],
		TermPremium:    premium,
	})
	if err != nil {
		r.log.Error("bond composite failed", logger.Error(err))
		r.metrics.RecordError("bond_composite")
		return models.CycleResult{HasData: false}
	}

	if err := r.store.SaveComposite(ctx, co); err != nil {
		r.log.Error("composite persist failed", logger.String("composite", r.bond.Code), logger.Error(err))
		r.metrics.RecordError("store_composite")
	}
	r.metrics.RecordScore(r.bond.Code, co.Score)

	res := models.CycleResult{State: co.State, Score: co.Score, HasData: true}
	r.lastBond = &res
	return res
}

// tailAlign trims every series to the length of the shortest one, keeping
// the most recent readings so per-point formulas see aligned tails.
func tailAlign(series ...[]float64) [][]float64 {
	n := -1
	for _, s := range series {
		if n < 0 || len(s) < n {
			n = len(s)
		}
	}
	out := make([][]float64, len(series))
	for i, s := range series {
		out[i] = s[len(s)-n:]
	}
	return out
}

func (r *CycleRunner) evaluateStrain(ctx context.Context, ts time.Time) {
	if r.strain == nil || r.strainRefs.Primary == "" {
		return
	}
	r.seriesMu.Lock()
	dirty := r.strainDirty
	r.strainDirty = false
	primary := r.rawSeries[r.strainRefs.Primary]
	secondary := r.rawSeries[r.strainRefs.Secondary]
	tertiary := r.rawSeries[r.strainRefs.Tertiary]
	r.seriesMu.Unlock()

	// A cycle without new closes would only smooth in a duplicate of the
	// previous direction reading.
	if !dirty {
		return
	}

	need := r.strain.TrendLength() + 1
	if len(primary) < need || len(secondary) < need || len(tertiary) < need {
		return
	}

	snap := r.strain.EvaluateSeries(ts, primary, secondary, tertiary)
	if err := r.store.SaveStrain(ctx, snap); err != nil {
		r.log.Error("strain persist failed", logger.Error(err))
		r.metrics.RecordError("store_strain")
	}
	r.log.Debug("strain evaluated",
		logger.Float64("score", snap.StrainScore),
		logger.String("level", string(snap.StrainLevel)),
		logger.String("direction", string(snap.DirectionState)))
}

func (r *CycleRunner) emitAlert(ctx context.Context, a *models.Alert) {
	r.log.Info("stress alert",
		logger.String("id", a.ID),
		logger.Strings("indicators", a.AffectedIndicators),
		logger.String("message", a.Message))

	if err := r.store.SaveAlert(ctx, *a); err != nil {
		r.log.Error("alert persist failed", logger.String("id", a.ID), logger.Error(err))
		r.metrics.RecordError("store_alert")
	}
	if r.publisher != nil {
		if err := r.publisher.Publish(ctx, *a); err != nil {
			r.log.Error("alert publish failed", logger.String("id", a.ID), logger.Error(err))
			r.metrics.RecordError("publish_alert")
		}
	}
}
