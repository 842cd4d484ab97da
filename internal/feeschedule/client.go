// Package feeschedule предоставляет клиент для внешнего каталога комиссий продуктов.
package feeschedule

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/dayofai/dayof-sub002/internal/model"
)

// Client инкапсулирует HTTP-взаимодействие с каталогом комиссий.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient создаёт HTTP-клиент каталога комиссий по указанному адресу.
func NewClient(baseURL string) *Client {
	base := strings.TrimRight(baseURL, "/")
	if base != "" && !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "http://" + base
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = 2
	rc.RetryWaitMin = 50 * time.Millisecond
	rc.RetryWaitMax = 500 * time.Millisecond
	rc.Logger = nil
	rc.CheckRetry = checkRetry
	rc.HTTPClient.Timeout = 5 * time.Second

	return &Client{
		baseURL:    base,
		httpClient: rc.StandardClient(),
	}
}

// checkRetry повторяет запрос при сетевых ошибках и ответах 5xx. Ответ 429
// возвращается вызывающему коду, который сам выдерживает паузу Retry-After.
func checkRetry(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if err == nil && resp != nil && resp.StatusCode == http.StatusTooManyRequests {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// GetProductFees запрашивает комиссии продукта.
//
// Возвращает nil без ошибки, если продукт неизвестен (204) или каталог
// ограничил частоту запросов (429); во втором случае также возвращается
// рекомендуемая пауза из Retry-After.
func (c *Client) GetProductFees(ctx context.Context, product string) (*model.ProductFees, int, time.Duration, error) {
	if c == nil || c.baseURL == "" {
		return nil, 0, 0, fmt.Errorf("fee schedule client not configured")
	}

	endpoint := fmt.Sprintf("%s/api/products/%s/fees", c.baseURL, url.PathEscape(product))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		return nil, resp.StatusCode, parseRetryAfter(resp.Header.Get("Retry-After")), nil
	case http.StatusNoContent, http.StatusNotFound:
		return nil, resp.StatusCode, 0, nil
	case http.StatusOK:
	default:
		return nil, resp.StatusCode, 0, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var fees model.ProductFees
	if err := json.NewDecoder(resp.Body).Decode(&fees); err != nil {
		return nil, resp.StatusCode, 0, fmt.Errorf("decode response: %w", err)
	}
	if fees.BookingFee < 0 || fees.PaymentPlanFee < 0 || fees.ProcessingPercent.IsNegative() {
		return nil, resp.StatusCode, 0, fmt.Errorf("negative fee for product %q", product)
	}
	if fees.Product == "" {
		fees.Product = product
	}

	return &fees, resp.StatusCode, 0, nil
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(v); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(v); err == nil {
		if d := time.Until(at); d > 0 {
			return d
		}
	}
	return 0
}
