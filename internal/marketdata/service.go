package marketdata

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"stocklens/internal/config"
	apperrors "stocklens/internal/errors"
	"stocklens/internal/logging"
	"stocklens/internal/models"
	"stocklens/internal/store"
)

// Options controls one history fetch.
type Options struct {
	// Months is the lookback window; zero means the configured default.
	Months int
	// Exchange pins the fetch to one exchange and disables the fallback.
	// Empty means try the configured primary then the fallback.
	Exchange models.Exchange
	// NoCache bypasses the candle cache for this fetch.
	NoCache bool
}

// Service orchestrates lookback, exchange fallback, and the candle cache in
// front of a Provider.
type Service struct {
	provider Provider
	store    store.SeriesStore
	primary  models.Exchange
	fallback models.Exchange
	months   int
	cacheTTL time.Duration
	caching  bool
	logger   zerolog.Logger
	now      func() time.Time
}

// NewService creates a Service. The store may be nil, which disables caching.
func NewService(provider Provider, st store.SeriesStore, cfg *config.Config, logger zerolog.Logger) *Service {
	return &Service{
		provider: provider,
		store:    st,
		primary:  cfg.PrimaryExchange(),
		fallback: cfg.FallbackExchange(),
		months:   cfg.Market.LookbackMonths,
		cacheTTL: time.Duration(cfg.Cache.TTLHours) * time.Hour,
		caching:  cfg.Cache.Enabled && st != nil,
		logger:   logger.With().Str("component", "marketdata").Logger(),
		now:      time.Now,
	}
}

// History fetches the daily series for one symbol. Exchanges are tried in
// order; an exchange with no data triggers the fallback, and only when every
// exchange comes up empty does the whole fetch fail with ErrNoData. Any
// other fetch failure aborts immediately.
func (s *Service) History(ctx context.Context, symbol string, opts Options) (*Result, error) {
	symbol = models.NormalizeSymbol(symbol)
	if !models.ValidSymbol(symbol) {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidSymbol, "symbol %q", symbol)
	}

	months := opts.Months
	if months == 0 {
		months = s.months
	}
	if months < config.MinLookbackMonths || months > config.MaxLookbackMonths {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidMonths, "months %d", months)
	}

	to := s.now()
	from := to.Add(-time.Duration(months) * 30 * 24 * time.Hour)

	exchanges := []models.Exchange{s.primary, s.fallback}
	if opts.Exchange != "" {
		if !opts.Exchange.Valid() {
			return nil, apperrors.Wrapf(apperrors.ErrUnknownExchange, "exchange %q", opts.Exchange)
		}
		exchanges = []models.Exchange{opts.Exchange}
	}

	logger := logging.WithSymbol(s.logger, symbol)

	for i, exchange := range exchanges {
		if result := s.fromCache(ctx, symbol, exchange, from, to, opts.NoCache); result != nil {
			return result, nil
		}

		start := time.Now()
		candles, err := s.provider.History(ctx, HistoryRequest{
			Symbol:   symbol,
			Exchange: exchange,
			From:     from,
			To:       to,
		})
		if err != nil {
			if apperrors.Is(err, apperrors.ErrNoData) {
				if i < len(exchanges)-1 {
					exchangeLogger := logging.WithExchange(logger, string(exchange))
					exchangeLogger.Warn().
						Str("next", string(exchanges[i+1])).
						Msg("No data found, trying fallback exchange")
				}
				continue
			}
			return nil, err
		}

		logging.LogFetch(s.logger, symbol, string(exchange), SourceYahoo, len(candles), time.Since(start))
		s.save(ctx, symbol, exchange, from, candles)
		return &Result{Candles: candles, Exchange: exchange, Source: SourceYahoo}, nil
	}

	return nil, apperrors.NewFetchError(symbol, exchangeList(exchanges), "no data available", apperrors.ErrNoData)
}

// fromCache serves a series from the store when its last fetch is within the
// TTL and covered at least the requested range. A fetch that reached back
// less far than the request is a miss, otherwise a short lookback would pin
// wider requests to its narrow window for the whole TTL. Cache misses and
// store errors fall through to the network.
func (s *Service) fromCache(ctx context.Context, symbol string, exchange models.Exchange, from, to time.Time, noCache bool) *Result {
	if !s.caching || noCache {
		return nil
	}

	fetchedAt, cachedFrom, err := s.store.LastFetched(ctx, symbol, exchange)
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Cache lookup failed")
		return nil
	}
	if fetchedAt.IsZero() || s.now().Sub(fetchedAt) > s.cacheTTL {
		return nil
	}
	if from.Before(cachedFrom) {
		return nil
	}

	candles, err := s.store.GetCandles(ctx, symbol, exchange, from, to)
	if err != nil {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Cache read failed")
		return nil
	}
	if len(candles) == 0 {
		return nil
	}

	s.logger.Debug().
		Str("symbol", symbol).
		Str("exchange", string(exchange)).
		Int("bars", len(candles)).
		Msg("Serving candles from cache")
	return &Result{Candles: candles, Exchange: exchange, Source: SourceCache}
}

// save writes a fetched series to the cache. Failures are logged, not fatal:
// the fetched data is still good.
func (s *Service) save(ctx context.Context, symbol string, exchange models.Exchange, from time.Time, candles []models.Candle) {
	if !s.caching {
		return
	}
	if err := s.store.SaveCandles(ctx, symbol, exchange, from, candles); err != nil {
		s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Caching candles failed")
	}
}

func exchangeList(exchanges []models.Exchange) string {
	out := ""
	for i, e := range exchanges {
		if i > 0 {
			out += " or "
		}
		out += string(e)
	}
	return out
}
