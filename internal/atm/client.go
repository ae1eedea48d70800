package atm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pfrederiksen/atm-watch/internal/geo"
)

const (
	DefaultBaseURL = "https://api.tinkoff.ru"
	UserAgent      = "atm-watch/1.0 (github.com/pfrederiksen/atm-watch)"

	clustersPath = "/geo/withdraw/clusters"
	zoomLevel    = 12
)

// ErrUnexpectedStatus is returned when the clusters endpoint answers with a non-2xx status
var ErrUnexpectedStatus = errors.New("unexpected status code")

// Client queries the bank's ATM clusters endpoint
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the public endpoint. A zero timeout disables it.
func NewClient(timeout time.Duration) *Client {
	return NewClientWithBaseURL(DefaultBaseURL, &http.Client{Timeout: timeout})
}

// NewClientWithBaseURL creates a client against another host, e.g. a test server
func NewClientWithBaseURL(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}
}

type clustersRequest struct {
	Bounds  geo.Bounds `json:"bounds"`
	Filters filters    `json:"filters"`
	Zoom    int        `json:"zoom"`
}

type filters struct {
	ShowUnavailable bool     `json:"showUnavailable"`
	Currencies      []string `json:"currencies"`
}

type clustersResponse struct {
	Payload struct {
		Clusters []struct {
			Points []point `json:"points"`
		} `json:"clusters"`
	} `json:"payload"`
}

type point struct {
	ID       pointID   `json:"id"`
	Address  string    `json:"address"`
	Location geo.Point `json:"location"`
	ATMInfo  struct {
		Available bool `json:"available"`
	} `json:"atmInfo"`
	Limits []Limit `json:"limits"`
}

// pointID accepts both string and numeric ids
type pointID string

func (id *pointID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = pointID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("point id must be a string or number: %w", err)
	}
	*id = pointID(n.String())
	return nil
}

// FetchATMs returns every ATM inside bounds that dispenses one of the currencies.
// Each ATM only carries limits for the requested currencies; an ATM whose
// limits were all filtered out is still returned with an empty list.
func (c *Client) FetchATMs(ctx context.Context, currencies []string, bounds geo.Bounds) ([]*ATM, error) {
	body, err := json.Marshal(clustersRequest{
		Bounds: bounds,
		Filters: filters{
			ShowUnavailable: true,
			Currencies:      currencies,
		},
		Zoom: zoomLevel,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+clustersPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching clusters: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: %d: %s", ErrUnexpectedStatus, resp.StatusCode, string(snippet))
	}

	var result clustersResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("parsing response: %w", err)
	}

	return flatten(result, currencies), nil
}

// flatten turns the cluster tree into a flat ATM list, dropping limits for other currencies
func flatten(result clustersResponse, currencies []string) []*ATM {
	wanted := make(map[string]bool, len(currencies))
	for _, c := range currencies {
		wanted[c] = true
	}

	atms := make([]*ATM, 0)
	for _, cluster := range result.Payload.Clusters {
		for _, p := range cluster.Points {
			limits := make([]Limit, 0, len(p.Limits))
			for _, l := range p.Limits {
				if !wanted[l.Currency] {
					continue
				}
				limits = append(limits, l)
			}

			atms = append(atms, &ATM{
				ID:        string(p.ID),
				Address:   p.Address,
				Location:  p.Location,
				Available: p.ATMInfo.Available,
				Limits:    limits,
			})
		}
	}
	return atms
}
