// Package engine orchestrates normalization, evaluation, parlay combination
// and risk filtering behind the service boundary.
package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/evaluator"
	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/metrics"
	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/models"
	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/normalizer"
	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/parlay"
	"github.com/SytheosAI/ProbabilityAnalyzer-sub003/internal/risk"
)

// defaultMaxParlays caps how many parlays a response carries when the
// request does not say.
const defaultMaxParlays = 5

// defaultKellyMultiplier is the fractional Kelly applied to single-bet
// stake sizing when no policy override is configured.
const defaultKellyMultiplier = 0.25

// maxLegPool bounds the candidate pool fed into combination generation so a
// large slate cannot blow up the combinatorics.
const maxLegPool = 10

// ProbabilitySource supplies externally modeled true win probabilities. The
// engine never generates probabilities itself.
type ProbabilitySource interface {
	WinProbability(ctx context.Context, game models.Game, side models.Side) (probability float64, confidence *float64, err error)
}

// QuoteSource supplies additional provider quotes gathered out of band, for
// merging with the quotes carried on the request. May be nil.
type QuoteSource interface {
	QuotesFor(gameID string, market models.MarketType) []models.Quote
}

// Recorder persists computed outputs after the fact. May be nil.
type Recorder interface {
	SaveAssessments(ctx context.Context, assessments []models.ValueAssessment) error
	SaveParlays(ctx context.Context, parlays []models.Parlay) error
}

// Engine wires the core components together. All state is immutable after
// construction; methods are safe for concurrent use.
type Engine struct {
	normalizer *normalizer.Normalizer
	evaluator  *evaluator.Evaluator
	combiner   *parlay.Combiner
	filter     *risk.Filter
	probs      ProbabilitySource
	quotes     QuoteSource
	recorder   Recorder
	logger     *logrus.Logger
}

// Policy carries the configurable staking and correlation knobs. Zero values
// fall back to the defaults.
type Policy struct {
	// KellyMultiplier scales single-bet Kelly stakes.
	KellyMultiplier float64
	// CorrelationWindow is how close two start times must be for parlay legs
	// to be flagged time-clustered.
	CorrelationWindow time.Duration
}

// New creates an Engine with default policy. quotes and recorder may be nil.
func New(probs ProbabilitySource, quotes QuoteSource, recorder Recorder, logger *logrus.Logger) *Engine {
	return NewWithPolicy(probs, quotes, recorder, Policy{}, logger)
}

// NewWithPolicy creates an Engine with configured staking policy.
func NewWithPolicy(probs ProbabilitySource, quotes QuoteSource, recorder Recorder, policy Policy, logger *logrus.Logger) *Engine {
	kellyMultiplier := policy.KellyMultiplier
	if kellyMultiplier <= 0 || kellyMultiplier > 1 {
		kellyMultiplier = defaultKellyMultiplier
	}
	return &Engine{
		normalizer: normalizer.New(logger),
		evaluator:  evaluator.New(kellyMultiplier, logger),
		combiner:   parlay.NewCombinerWithWindow(policy.CorrelationWindow, logger),
		filter:     risk.NewFilter(logger),
		probs:      probs,
		quotes:     quotes,
		recorder:   recorder,
		logger:     logger,
	}
}

// EvaluateMoneylines scores both sides of every game on the slate and
// returns the sides whose edge clears the request threshold. Bad games are
// skipped and counted, never fatal to the batch.
func (e *Engine) EvaluateMoneylines(ctx context.Context, req MoneylineRequest) (MoneylineResponse, error) {
	resp := MoneylineResponse{Sport: req.Sport, Bets: []ValueBet{}}

	var assessments []models.ValueAssessment
	for _, game := range req.Games {
		sides, err := e.evaluateGame(ctx, game)
		if err != nil {
			resp.GamesSkipped++
			metrics.GamesSkippedTotal.Inc()
			e.logger.WithError(err).WithField("game_id", game.GameID).Warn("Skipping game")
			continue
		}
		resp.GamesEvaluated++

		for side, assessment := range sides {
			assessments = append(assessments, assessment)
			if !assessment.IsValueBet(req.MinEdge) {
				continue
			}
			metrics.ValueBetsFoundTotal.Inc()
			resp.Bets = append(resp.Bets, ValueBet{
				GameID:             game.GameID,
				Team:               game.TeamFor(side),
				AmericanOdds:       assessment.AmericanOdds,
				DecimalOdds:        assessment.DecimalOdds,
				ImpliedProbability: assessment.ImpliedProbability,
				TrueProbability:    assessment.TrueProbability,
				ExpectedValue:      assessment.ExpectedValue,
				Edge:               assessment.Edge,
				KellyCriterion:     assessment.KellyFraction,
				ConfidenceScore:    assessment.Confidence,
				ValueRating:        assessment.Rating,
			})
		}
	}

	sort.Slice(resp.Bets, func(i, j int) bool {
		return resp.Bets[i].ExpectedValue > resp.Bets[j].ExpectedValue
	})

	if e.recorder != nil && len(assessments) > 0 {
		if err := e.recorder.SaveAssessments(ctx, assessments); err != nil {
			e.logger.WithError(err).Error("Failed to record assessments")
		}
	}

	return resp, nil
}

// OptimizeParlays builds the best-ranked parlays for the requested tier.
func (e *Engine) OptimizeParlays(ctx context.Context, req ParlayRequest) (ParlayResponse, error) {
	start := time.Now()
	defer func() {
		metrics.ParlayOptimizationDuration.Observe(time.Since(start).Seconds())
	}()

	tier, err := risk.TierFor(models.RiskLevel(req.RiskLevel))
	if err != nil {
		return ParlayResponse{}, fmt.Errorf("%w: %q", models.ErrUnknownRiskTier, req.RiskLevel)
	}
	tier = tightenTier(tier, req)

	resp := ParlayResponse{RiskLevel: req.RiskLevel, Parlays: []ParlayCandidate{}}

	legs, skipped := e.buildLegPool(ctx, req, tier)
	resp.GamesSkipped = skipped
	if len(legs) < parlay.MinLegs {
		return resp, nil
	}

	var candidates []models.Parlay
	for size := parlay.MinLegs; size <= tier.MaxLegs && size <= len(legs); size++ {
		for _, combo := range combinations(len(legs), size) {
			picked := make([]models.Leg, 0, size)
			for _, idx := range combo {
				picked = append(picked, legs[idx])
			}
			p, err := e.combiner.Combine(picked, tier, nil)
			if err != nil {
				continue
			}
			if p.ExpectedValue < req.MinExpectedValue {
				continue
			}
			candidates = append(candidates, p)
		}
	}

	accepted := e.filter.Apply(candidates, tier)
	sort.Slice(accepted, func(i, j int) bool {
		return accepted[i].ExpectedValue > accepted[j].ExpectedValue
	})

	maxParlays := req.MaxParlays
	if maxParlays <= 0 {
		maxParlays = defaultMaxParlays
	}
	if len(accepted) > maxParlays {
		accepted = accepted[:maxParlays]
	}

	if e.recorder != nil && len(accepted) > 0 {
		if err := e.recorder.SaveParlays(ctx, accepted); err != nil {
			e.logger.WithError(err).Error("Failed to record parlays")
		}
	}

	for i := range accepted {
		resp.Parlays = append(resp.Parlays, toCandidate(&accepted[i]))
	}

	e.logger.WithFields(logrus.Fields{
		"tier":       req.RiskLevel,
		"legs":       len(legs),
		"candidates": len(candidates),
		"accepted":   len(resp.Parlays),
		"duration":   time.Since(start),
	}).Info("Parlay optimization complete")

	return resp, nil
}

// evaluateGame normalizes the game's quotes and scores every quoted side.
// Returns an error only when the whole game is unusable.
func (e *Engine) evaluateGame(ctx context.Context, game models.Game) (map[models.Side]models.ValueAssessment, error) {
	canonical, err := e.normalizer.Normalize(game.GameID, models.MarketTypeMoneyline, e.gatherQuotes(game))
	if err != nil {
		return nil, err
	}

	sides := make(map[models.Side]models.ValueAssessment)
	for side := range canonical.BestQuotePerSide {
		probability, confidence, err := e.probs.WinProbability(ctx, game, side)
		if err != nil {
			e.logger.WithError(err).WithFields(logrus.Fields{
				"game_id": game.GameID,
				"side":    side,
			}).Debug("No model probability for side")
			continue
		}
		assessment, err := e.evaluator.Evaluate(canonical, side, probability, confidence)
		if err != nil {
			continue
		}
		sides[side] = assessment
	}
	if len(sides) == 0 {
		return nil, fmt.Errorf("%w: game %s", models.ErrMissingProbability, game.GameID)
	}
	return sides, nil
}

// gatherQuotes merges the request-supplied moneylines with any out-of-band
// provider quotes for the game.
func (e *Engine) gatherQuotes(game models.Game) []models.Quote {
	now := time.Now().UTC()
	quotes := make([]models.Quote, 0, 8)
	if game.HomeMoneyline != 0 {
		quotes = append(quotes, models.Quote{ProviderID: "request", Side: models.SideHome, AmericanOdds: game.HomeMoneyline, CapturedAt: now})
	}
	if game.AwayMoneyline != 0 {
		quotes = append(quotes, models.Quote{ProviderID: "request", Side: models.SideAway, AmericanOdds: game.AwayMoneyline, CapturedAt: now})
	}
	if e.quotes != nil {
		quotes = append(quotes, e.quotes.QuotesFor(game.GameID, models.MarketTypeMoneyline)...)
	}
	return quotes
}

// buildLegPool evaluates every game on the slate and keeps the sides that
// clear the tier's confidence floor with a positive edge, best first.
func (e *Engine) buildLegPool(ctx context.Context, req ParlayRequest, tier models.RiskTier) ([]models.Leg, int) {
	wantSport := make(map[string]bool, len(req.Sports))
	for _, s := range req.Sports {
		wantSport[s] = true
	}

	var legs []models.Leg
	skipped := 0
	for _, game := range req.Games {
		if len(wantSport) > 0 && !wantSport[game.Sport] {
			continue
		}
		sides, err := e.evaluateGame(ctx, game)
		if err != nil {
			skipped++
			metrics.GamesSkippedTotal.Inc()
			continue
		}
		for side, assessment := range sides {
			if assessment.Edge <= 0 || assessment.Confidence < tier.MinConfidence {
				continue
			}
			legs = append(legs, models.Leg{
				Assessment: assessment,
				Sport:      game.Sport,
				HomeTeam:   game.HomeTeam,
				AwayTeam:   game.AwayTeam,
				Team:       game.TeamFor(side),
				BetType:    string(models.MarketTypeMoneyline),
				GameTime:   game.GameTime,
			})
		}
	}

	sort.Slice(legs, func(i, j int) bool {
		return legs[i].Assessment.ExpectedValue > legs[j].Assessment.ExpectedValue
	})
	if len(legs) > maxLegPool {
		legs = legs[:maxLegPool]
	}
	return legs, skipped
}

// tightenTier narrows tier thresholds with the stricter of the tier's and
// the request's limits. A request can only tighten policy, never loosen it.
func tightenTier(tier models.RiskTier, req ParlayRequest) models.RiskTier {
	if req.MinConfidence > tier.MinConfidence {
		tier.MinConfidence = req.MinConfidence
	}
	if req.MaxCorrelation > 0 && req.MaxCorrelation < tier.MaxCorrelation {
		tier.MaxCorrelation = req.MaxCorrelation
	}
	return tier
}

func toCandidate(p *models.Parlay) ParlayCandidate {
	legs := make([]ParlayLeg, 0, len(p.Legs))
	for _, leg := range p.Legs {
		legs = append(legs, ParlayLeg{
			Team:        leg.Team,
			BetType:     leg.BetType,
			Line:        leg.Line,
			Odds:        leg.Assessment.AmericanOdds,
			Probability: leg.Assessment.TrueProbability,
			Sport:       leg.Sport,
		})
	}
	return ParlayCandidate{
		ParlayID:         p.ID.String(),
		Legs:             legs,
		CombinedOdds:     p.CombinedDecimalOdds,
		TotalProbability: p.CombinedProbability,
		ExpectedValue:    p.ExpectedValue,
		RiskScore:        p.RiskScore,
		ConfidenceScore:  p.ConfidenceScore,
		CorrelationScore: p.CorrelationScore,
		KellyStake:       p.KellyStakeFraction,
		Warnings:         p.Warnings,
		SportsIncluded:   p.SportsIncluded(),
	}
}

// combinations returns all k-element index combinations of [0,n).
func combinations(n, k int) [][]int {
	if k > n || k <= 0 {
		return nil
	}
	var out [][]int
	combo := make([]int, k)
	var walk func(start, depth int)
	walk = func(start, depth int) {
		if depth == k {
			out = append(out, append([]int(nil), combo...))
			return
		}
		for i := start; i <= n-(k-depth); i++ {
			combo[depth] = i
			walk(i+1, depth+1)
		}
	}
	walk(0, 0)
	return out
}
