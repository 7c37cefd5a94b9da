//go:build pact
// +build pact

package consumer_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	pacttest "github.com/Apurer/campus-canteen/test/pact"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	pactlog "github.com/pact-foundation/pact-go/v2/log"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"
)

type menuItemPayload struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	Category    string `json:"category"`
	IsAvailable bool   `json:"isAvailable"`
}

type orderPayload struct {
	ID          int64  `json:"id"`
	OrderNumber string `json:"orderNumber"`
	Status      string `json:"status"`
	TotalAmount string `json:"totalAmount"`
	QRCode      string `json:"qrCode"`
}

type problemDetail struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Title   string `json:"title"`
	Status  int    `json:"status"`
}

type apiError struct {
	status  int
	message string
}

func (e apiError) Error() string {
	msg := e.message
	if msg == "" {
		msg = "api error"
	}
	return fmt.Sprintf("%s (status %d)", msg, e.status)
}

func (e apiError) Status() int {
	return e.status
}

func TestCanteenWebContract(t *testing.T) {
	t.Helper()
	pactlog.SetLogLevel("INFO")

	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.ConsumerName,
		Provider: pacttest.ProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	jsonContentType := matchers.Regex("application/json; charset=utf-8", "application\\/json(?:;\\s?charset=utf-8)?")
	problemBody := func(status int) matchers.Map {
		return matchers.Map{
			"success": matchers.Like(false),
			"message": matchers.Like("Something went wrong"),
			"title":   matchers.Like("Problem"),
			"status":  matchers.Like(status),
		}
	}

	pact.AddInteraction().
		Given(pacttest.StateMenuItemExists).
		UponReceiving("a request to fetch a menu item").
		WithRequest("GET", fmt.Sprintf("/api/menu/%d", pacttest.ExistingMenuItemID)).
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"success": matchers.Like(true),
				"menuItem": matchers.Map{
					"id":          matchers.Like(pacttest.ExistingMenuItemID),
					"name":        matchers.Like(pacttest.ExampleDishName),
					"price":       matchers.Term(pacttest.ExampleDishPrice, `^\d+(\.\d{1,2})?$`),
					"category":    matchers.Term("Main Course", "Main Course|Short Eats|Beverages|Desserts"),
					"isAvailable": matchers.Like(true),
				},
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateMenuItemMissing).
		UponReceiving("a request for a missing menu item").
		WithRequest("GET", fmt.Sprintf("/api/menu/%d", pacttest.MissingMenuItemID)).
		WillRespondWith(http.StatusNotFound, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", matchers.S("application/problem+json"))
			b.JSONBody(matchers.Map{
				"success": matchers.Like(false),
				"message": matchers.S("Menu item not found"),
				"type":    matchers.S("/problems/not-found"),
				"status":  matchers.Like(http.StatusNotFound),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateCustomerSession).
		UponReceiving("a request to place an order").
		WithRequest("POST", "/api/orders", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.Header("Authorization", matchers.S("Bearer "+pacttest.CustomerToken))
			b.JSONBody(pacttest.ExampleOrderRequest())
		}).
		WillRespondWith(http.StatusCreated, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"success": matchers.Like(true),
				"order": matchers.Map{
					"id":          matchers.Like(1),
					"orderNumber": matchers.Term("ORD000001", `^ORD\d{6,}$`),
					"status":      matchers.S("pending"),
					"totalAmount": matchers.Term("900", `^\d+(\.\d{1,2})?$`),
					"qrCode":      matchers.Term("QRORD000001", `^QRORD\d{6,}$`),
				},
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateNoSession).
		UponReceiving("an anonymous request to place an order").
		WithRequest("POST", "/api/orders", func(b *pactconsumer.V2RequestBuilder) {
			b.Header("Content-Type", matchers.S("application/json"))
			b.JSONBody(pacttest.ExampleOrderRequest())
		}).
		WillRespondWith(http.StatusUnauthorized, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", matchers.S("application/problem+json"))
			b.JSONBody(problemBody(http.StatusUnauthorized))
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		client := newCanteenClient(config)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		item, err := client.GetMenuItem(ctx, pacttest.ExistingMenuItemID)
		if err != nil {
			return fmt.Errorf("get menu item: %w", err)
		}
		if item.ID != pacttest.ExistingMenuItemID || !item.IsAvailable {
			return fmt.Errorf("unexpected menu item %+v", item)
		}

		if _, err := client.GetMenuItem(ctx, pacttest.MissingMenuItemID); err == nil {
			return fmt.Errorf("expected 404 for menu item %d", pacttest.MissingMenuItemID)
		} else if apiErr, ok := err.(apiError); !ok || apiErr.Status() != http.StatusNotFound {
			return fmt.Errorf("expected 404, got %v", err)
		}

		order, err := client.PlaceOrder(ctx, pacttest.CustomerToken, pacttest.ExampleOrderRequest())
		if err != nil {
			return fmt.Errorf("place order: %w", err)
		}
		if order.OrderNumber == "" || order.Status != "pending" {
			return fmt.Errorf("unexpected order %+v", order)
		}

		if _, err := client.PlaceOrder(ctx, "", pacttest.ExampleOrderRequest()); err == nil {
			return fmt.Errorf("expected anonymous order to be rejected")
		} else if apiErr, ok := err.(apiError); !ok || apiErr.Status() != http.StatusUnauthorized {
			return fmt.Errorf("expected 401, got %v", err)
		}
		return nil
	})
	require.NoError(t, err)
}

type canteenClient struct {
	baseURL    string
	httpClient *http.Client
}

func newCanteenClient(config pactconsumer.MockServerConfig) *canteenClient {
	host := config.Host
	if host == "" {
		host = "localhost"
	}
	transport := &http.Transport{TLSClientConfig: config.TLSConfig}
	return &canteenClient{
		baseURL:    fmt.Sprintf("http://%s:%d", host, config.Port),
		httpClient: &http.Client{Transport: transport, Timeout: 10 * time.Second},
	}
}

func (c *canteenClient) GetMenuItem(ctx context.Context, id int64) (*menuItemPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/api/menu/%d", c.baseURL, id), nil)
	if err != nil {
		return nil, err
	}
	var envelope struct {
		MenuItem menuItemPayload `json:"menuItem"`
	}
	if err := c.do(req, &envelope); err != nil {
		return nil, err
	}
	return &envelope.MenuItem, nil
}

func (c *canteenClient) PlaceOrder(ctx context.Context, token string, body map[string]any) (*orderPayload, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/orders", bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	var envelope struct {
		Order orderPayload `json:"order"`
	}
	if err := c.do(req, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Order, nil
}

func (c *canteenClient) do(req *http.Request, out any) error {
	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(res)
	}
	return json.NewDecoder(res.Body).Decode(out)
}

func decodeAPIError(res *http.Response) error {
	var problem problemDetail
	_ = json.NewDecoder(res.Body).Decode(&problem)
	status := problem.Status
	if status == 0 {
		status = res.StatusCode
	}
	return apiError{status: status, message: problem.Message}
}
