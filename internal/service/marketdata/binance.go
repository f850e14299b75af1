package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"TokenPulse/internal/domain/models"
	drepo "TokenPulse/internal/domain/repository"
	xhttp "TokenPulse/pkg/http"
)

const binanceName = "binance"

// Binance fetches candle history from the public klines endpoint.
type Binance struct {
	baseURL string
	client  *xhttp.Client
	limiter *rate.Limiter
}

// NewBinance creates a Binance source adapter.
func NewBinance(baseURL string, client *xhttp.Client, rps float64, burst int) drepo.SourceAdapter {
	if rps <= 0 {
		rps = 5
	}
	if burst <= 0 {
		burst = 1
	}
	return &Binance{
		baseURL: baseURL,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Name implements SourceAdapter.
func (b *Binance) Name() string { return binanceName }

// FetchSeries implements SourceAdapter. The key is a Binance symbol such as
// "BTCUSDT". Each kline row is a mixed-type array; open time is index 0,
// close price index 4, volume index 5.
func (b *Binance) FetchSeries(ctx context.Context, key string, interval drepo.Interval, lookback int) (*models.PriceSeries, error) {
	if err := b.limiter.Wait(ctx); err != nil {
		return nil, unavailable(binanceName, key, err)
	}

	var rows [][]json.RawMessage
	err := b.client.GetJSON(ctx, &xhttp.RequestOptions{
		URL: b.baseURL + "/api/v3/klines",
		QueryParams: map[string]string{
			"symbol":   key,
			"interval": string(interval),
			"limit":    strconv.Itoa(lookback),
		},
	}, &rows)
	if err != nil {
		return nil, unavailable(binanceName, key, err)
	}
	if len(rows) == 0 {
		return nil, unavailable(binanceName, key, fmt.Errorf("empty kline response"))
	}

	series := &models.PriceSeries{
		Token:     key,
		Source:    binanceName,
		Prices:    make([]models.PricePoint, 0, len(rows)),
		Volumes:   make([]models.VolumePoint, 0, len(rows)),
		FetchedAt: time.Now().UTC(),
	}
	for i, row := range rows {
		if len(row) < 6 {
			return nil, unavailable(binanceName, key, fmt.Errorf("kline row %d has %d fields", i, len(row)))
		}
		var openMs int64
		if err := json.Unmarshal(row[0], &openMs); err != nil {
			return nil, unavailable(binanceName, key, fmt.Errorf("kline row %d open time: %w", i, err))
		}
		closePrice, err := klineFloat(row[4])
		if err != nil {
			return nil, unavailable(binanceName, key, fmt.Errorf("kline row %d close: %w", i, err))
		}
		volume, err := klineFloat(row[5])
		if err != nil {
			return nil, unavailable(binanceName, key, fmt.Errorf("kline row %d volume: %w", i, err))
		}

		ts := time.UnixMilli(openMs).UTC()
		series.Prices = append(series.Prices, models.PricePoint{Timestamp: ts, Price: closePrice})
		series.Volumes = append(series.Volumes, models.VolumePoint{Timestamp: ts, Volume: volume})
	}
	return series, nil
}

// klineFloat decodes Binance's quoted decimal strings.
func klineFloat(raw json.RawMessage) (float64, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, err
	}
	return strconv.ParseFloat(s, 64)
}
