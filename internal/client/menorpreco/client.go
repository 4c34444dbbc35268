package menorpreco

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

type Client struct {
	host       string
	httpClient *http.Client
}

func NewClient(httpClient *http.Client, host string) *Client {
	if host == "" {
		host = "https://menorpreco.notaparana.pr.gov.br/api/v1"
	}
	host = strings.TrimRight(host, "/")
	return &Client{
		host:       host,
		httpClient: httpClient,
	}
}

// Query is one category-scoped search against the price-transparency API.
// Term carries the product barcode; GTIN repeats it as the server-side
// exact filter.
type Query struct {
	Local    string
	Term     string
	GTIN     string
	Category int
	Offset   int
	Radius   int
	Period   int
	Order    string
}

// Search returns the offers visible for the query. A non-2xx status or an
// empty payload yields an empty slice and no error, so callers can walk a
// category list without special-casing upstream hiccups; transport errors
// (DNS, timeout, connection reset) propagate.
func (c *Client) Search(ctx context.Context, q Query) ([]Offer, error) {
	query := url.Values{}
	query.Set("local", q.Local)
	query.Set("termo", q.Term)
	query.Set("categoria", strconv.Itoa(q.Category))
	query.Set("offset", strconv.Itoa(q.Offset))
	query.Set("raio", strconv.Itoa(q.Radius))
	query.Set("data", strconv.Itoa(q.Period))
	query.Set("ordem", q.Order)
	if q.GTIN != "" {
		query.Set("gtin", q.GTIN)
	}

	body, status, err := c.doRequest(ctx, "/produtos", query)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, nil
	}

	var payload searchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return payload.Produtos, nil
}

func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, int, error) {
	fullURL := c.host + path
	if len(query) > 0 {
		fullURL = fullURL + "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response: %w", err)
	}
	return body, resp.StatusCode, nil
}
