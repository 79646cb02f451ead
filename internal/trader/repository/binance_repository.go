package repository

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang-crypto-trader/internal/entity"
	"golang-crypto-trader/internal/trader/config"
	"golang-crypto-trader/pkg/common"
	"golang-crypto-trader/pkg/logger"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// MarketDataRepository defines read access to exchange market data.
type MarketDataRepository interface {
	GetCandles(ctx context.Context, symbol, interval string, lookback int) ([]entity.Candle, error)
	GetPrice(ctx context.Context, symbol string) (float64, error)
	GetBalance(ctx context.Context, asset string) (float64, error)
}

// OrderRepository defines order placement on the exchange.
type OrderRepository interface {
	MarketBuy(ctx context.Context, symbol string, quantity float64) (entity.OrderFill, error)
	MarketSell(ctx context.Context, symbol string, quantity float64) (entity.OrderFill, error)
}

// BinanceRepository implements MarketDataRepository and OrderRepository
// against the Binance spot REST API.
type BinanceRepository struct {
	cfg        config.Binance
	httpClient *http.Client
	limiter    *rate.Limiter
	priceCache *cache.Cache
	logger     *logger.Logger
}

// NewBinanceRepository creates a new Binance REST repository.
func NewBinanceRepository(cfg config.Binance, log *logger.Logger) *BinanceRepository {
	maxPerMinute := cfg.MaxRequestPerMinute
	if maxPerMinute <= 0 {
		maxPerMinute = 1200
	}
	return &BinanceRepository{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		limiter:    rate.NewLimiter(rate.Limit(float64(maxPerMinute)/60.0), 10),
		priceCache: cache.New(common.PriceCacheTTLSeconds*time.Second, time.Minute),
		logger:     log,
	}
}

type binanceAPIError struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

// Binance error codes for balance rejections.
const (
	binanceCodeInsufficientBalance = -2010
	binanceCodeMarginInsufficient  = -2019
)

// GetCandles fetches the most recent lookback candles, oldest first.
func (r *BinanceRepository) GetCandles(ctx context.Context, symbol, interval string, lookback int) ([]entity.Candle, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("interval", interval)
	params.Set("limit", strconv.Itoa(lookback))

	body, err := r.doRequest(ctx, http.MethodGet, "/api/v3/klines", params, false)
	if err != nil {
		return nil, err
	}

	var raw [][]interface{}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &APIError{Op: "klines", Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	candles := make([]entity.Candle, 0, len(raw))
	for _, k := range raw {
		if len(k) < 7 {
			return nil, &APIError{Op: "klines", Err: fmt.Errorf("unexpected kline shape with %d fields", len(k))}
		}
		candle, err := parseKline(k)
		if err != nil {
			return nil, &APIError{Op: "klines", Err: err}
		}
		candles = append(candles, candle)
	}

	return candles, nil
}

// GetPrice fetches the latest trade price for the symbol. Prices are cached
// for a few seconds so risk checks and reports within one cycle do not burn
// request weight.
func (r *BinanceRepository) GetPrice(ctx context.Context, symbol string) (float64, error) {
	if cached, ok := r.priceCache.Get(symbol); ok {
		return cached.(float64), nil
	}

	params := url.Values{}
	params.Set("symbol", symbol)

	body, err := r.doRequest(ctx, http.MethodGet, "/api/v3/ticker/price", params, false)
	if err != nil {
		return 0, err
	}

	var ticker struct {
		Symbol string `json:"symbol"`
		Price  string `json:"price"`
	}
	if err := json.Unmarshal(body, &ticker); err != nil {
		return 0, &APIError{Op: "ticker/price", Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	price, err := strconv.ParseFloat(ticker.Price, 64)
	if err != nil {
		return 0, &APIError{Op: "ticker/price", Err: fmt.Errorf("invalid price %q: %w", ticker.Price, err)}
	}

	r.priceCache.Set(symbol, price, cache.DefaultExpiration)
	return price, nil
}

// GetBalance fetches the free balance of a single asset.
func (r *BinanceRepository) GetBalance(ctx context.Context, asset string) (float64, error) {
	body, err := r.doRequest(ctx, http.MethodGet, "/api/v3/account", url.Values{}, true)
	if err != nil {
		return 0, err
	}

	var account struct {
		Balances []struct {
			Asset string `json:"asset"`
			Free  string `json:"free"`
		} `json:"balances"`
	}
	if err := json.Unmarshal(body, &account); err != nil {
		return 0, &APIError{Op: "account", Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	for _, b := range account.Balances {
		if b.Asset == asset {
			free, err := strconv.ParseFloat(b.Free, 64)
			if err != nil {
				return 0, &APIError{Op: "account", Err: fmt.Errorf("invalid balance %q: %w", b.Free, err)}
			}
			return free, nil
		}
	}

	return 0, nil
}

// MarketBuy places a market buy order and returns the confirmed fill.
func (r *BinanceRepository) MarketBuy(ctx context.Context, symbol string, quantity float64) (entity.OrderFill, error) {
	return r.placeMarketOrder(ctx, symbol, entity.OrderSideBuy, quantity)
}

// MarketSell places a market sell order and returns the confirmed fill.
func (r *BinanceRepository) MarketSell(ctx context.Context, symbol string, quantity float64) (entity.OrderFill, error) {
	return r.placeMarketOrder(ctx, symbol, entity.OrderSideSell, quantity)
}

func (r *BinanceRepository) placeMarketOrder(ctx context.Context, symbol string, side entity.OrderSide, quantity float64) (entity.OrderFill, error) {
	params := url.Values{}
	params.Set("symbol", symbol)
	params.Set("side", string(side))
	params.Set("type", "MARKET")
	params.Set("quantity", strconv.FormatFloat(quantity, 'f', -1, 64))

	body, err := r.doRequest(ctx, http.MethodPost, "/api/v3/order", params, true)
	if err != nil {
		return entity.OrderFill{}, err
	}

	var resp struct {
		Symbol       string `json:"symbol"`
		ExecutedQty  string `json:"executedQty"`
		TransactTime int64  `json:"transactTime"`
		Fills        []struct {
			Price string `json:"price"`
			Qty   string `json:"qty"`
		} `json:"fills"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return entity.OrderFill{}, &APIError{Op: "order", Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	executedQty, err := strconv.ParseFloat(resp.ExecutedQty, 64)
	if err != nil {
		return entity.OrderFill{}, &APIError{Op: "order", Err: fmt.Errorf("invalid executedQty %q: %w", resp.ExecutedQty, err)}
	}

	// Weighted average price across partial fills.
	var totalQty, totalCost float64
	for _, f := range resp.Fills {
		price, errPrice := strconv.ParseFloat(f.Price, 64)
		qty, errQty := strconv.ParseFloat(f.Qty, 64)
		if errPrice != nil || errQty != nil {
			return entity.OrderFill{}, &APIError{Op: "order", Err: fmt.Errorf("invalid fill %+v", f)}
		}
		totalQty += qty
		totalCost += price * qty
	}

	avgPrice := 0.0
	if totalQty > 0 {
		avgPrice = totalCost / totalQty
	}

	fill := entity.OrderFill{
		Symbol:    resp.Symbol,
		Side:      side,
		Price:     avgPrice,
		Quantity:  executedQty,
		Timestamp: time.UnixMilli(resp.TransactTime),
	}

	r.logger.Info("Order executed",
		logger.StringField("symbol", symbol),
		logger.StringField("side", string(side)),
		logger.Float64Field("requested_qty", quantity),
		logger.Float64Field("executed_qty", executedQty),
		logger.Float64Field("avg_price", avgPrice),
	)

	return fill, nil
}

func (r *BinanceRepository) doRequest(ctx context.Context, method, path string, params url.Values, signed bool) ([]byte, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, &APIError{Op: path, Err: err}
	}

	if signed {
		params.Set("timestamp", strconv.FormatInt(time.Now().UnixMilli(), 10))
		params.Set("recvWindow", "5000")
		params.Set("signature", r.sign(params.Encode()))
	}

	reqURL := r.cfg.BaseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, nil)
	if err != nil {
		return nil, &APIError{Op: path, Err: err}
	}
	if r.cfg.APIKey != "" {
		req.Header.Set("X-MBX-APIKEY", r.cfg.APIKey)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Op: path, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Op: path, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr binanceAPIError
		if err := json.Unmarshal(body, &apiErr); err == nil {
			if apiErr.Code == binanceCodeInsufficientBalance || apiErr.Code == binanceCodeMarginInsufficient {
				return nil, fmt.Errorf("%s: %w", apiErr.Msg, ErrInsufficientFunds)
			}
		}
		return nil, &APIError{Op: path, Err: fmt.Errorf("status %d: %s", resp.StatusCode, string(body))}
	}

	return body, nil
}

func (r *BinanceRepository) sign(payload string) string {
	mac := hmac.New(sha256.New, []byte(r.cfg.SecretKey))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func parseKline(k []interface{}) (entity.Candle, error) {
	openTime, ok := k[0].(float64)
	if !ok {
		return entity.Candle{}, fmt.Errorf("invalid kline open time %v", k[0])
	}
	closeTime, ok := k[6].(float64)
	if !ok {
		return entity.Candle{}, fmt.Errorf("invalid kline close time %v", k[6])
	}

	values := make([]float64, 5)
	for i := 1; i <= 5; i++ {
		s, ok := k[i].(string)
		if !ok {
			return entity.Candle{}, fmt.Errorf("invalid kline field %v", k[i])
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return entity.Candle{}, fmt.Errorf("invalid kline value %q: %w", s, err)
		}
		values[i-1] = v
	}

	return entity.Candle{
		OpenTime:  time.UnixMilli(int64(openTime)),
		Open:      values[0],
		High:      values[1],
		Low:       values[2],
		Close:     values[3],
		Volume:    values[4],
		CloseTime: time.UnixMilli(int64(closeTime)),
	}, nil
}
