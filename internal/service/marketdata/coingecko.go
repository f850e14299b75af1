package marketdata

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"TokenPulse/internal/domain/models"
	drepo "TokenPulse/internal/domain/repository"
	xhttp "TokenPulse/pkg/http"
)

const coinGeckoName = "coingecko"

// CoinGecko fetches daily price/volume history from the CoinGecko
// market_chart endpoint. The free tier is heavily rate limited, so every
// fetch waits on a shared limiter before touching the network.
type CoinGecko struct {
	baseURL string
	client  *xhttp.Client
	limiter *rate.Limiter
}

// NewCoinGecko creates a CoinGecko source adapter.
func NewCoinGecko(baseURL string, client *xhttp.Client, rps float64, burst int) drepo.SourceAdapter {
	if rps <= 0 {
		rps = 0.5
	}
	if burst <= 0 {
		burst = 1
	}
	return &CoinGecko{
		baseURL: baseURL,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Name implements SourceAdapter.
func (g *CoinGecko) Name() string { return coinGeckoName }

// market_chart returns parallel arrays of [ms_timestamp, value] pairs.
type marketChartResponse struct {
	Prices       [][2]float64 `json:"prices"`
	TotalVolumes [][2]float64 `json:"total_volumes"`
}

// FetchSeries implements SourceAdapter. The key is a CoinGecko coin slug
// such as "bitcoin".
func (g *CoinGecko) FetchSeries(ctx context.Context, key string, interval drepo.Interval, lookback int) (*models.PriceSeries, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, unavailable(coinGeckoName, key, err)
	}

	var resp marketChartResponse
	err := g.client.GetJSON(ctx, &xhttp.RequestOptions{
		URL: fmt.Sprintf("%s/coins/%s/market_chart", g.baseURL, key),
		QueryParams: map[string]string{
			"vs_currency": "usd",
			"days":        strconv.Itoa(lookback),
			"interval":    "daily",
		},
	}, &resp)
	if err != nil {
		return nil, unavailable(coinGeckoName, key, err)
	}
	if len(resp.Prices) == 0 {
		return nil, unavailable(coinGeckoName, key, fmt.Errorf("empty price series"))
	}

	series := &models.PriceSeries{
		Token:     key,
		Source:    coinGeckoName,
		Prices:    make([]models.PricePoint, 0, len(resp.Prices)),
		Volumes:   make([]models.VolumePoint, 0, len(resp.TotalVolumes)),
		FetchedAt: time.Now().UTC(),
	}
	for _, p := range resp.Prices {
		series.Prices = append(series.Prices, models.PricePoint{
			Timestamp: time.UnixMilli(int64(p[0])).UTC(),
			Price:     p[1],
		})
	}
	for _, v := range resp.TotalVolumes {
		series.Volumes = append(series.Volumes, models.VolumePoint{
			Timestamp: time.UnixMilli(int64(v[0])).UTC(),
			Volume:    v[1],
		})
	}
	return series, nil
}

func unavailable(source, key string, err error) error {
	return &models.DataUnavailableError{Source: source, Key: key, Err: err}
}
