// Package geocode resolves free-text addresses through a Kakao-style local
// search API into administrative regions and coordinates.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrNoResults means the upstream service found nothing for the address.
var ErrNoResults = errors.New("no results for that address")

type Result struct {
	Region1     string  `json:"region1"`
	Region2     string  `json:"region2"`
	Region3     string  `json:"region3"`
	PostalCode  string  `json:"postal_code"`
	RoadAddress string  `json:"road_address"`
	Longitude   float64 `json:"longitude"`
	Latitude    float64 `json:"latitude"`
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

type region struct {
	Region1 string `json:"region_1depth_name"`
	Region2 string `json:"region_2depth_name"`
	Region3 string `json:"region_3depth_name"`
}

type document struct {
	X       string  `json:"x"`
	Y       string  `json:"y"`
	Address *region `json:"address"`
	Road    *struct {
		region
		RoadName       string `json:"road_name"`
		MainBuildingNo string `json:"main_building_no"`
		SubBuildingNo  string `json:"sub_building_no"`
		ZoneNo         string `json:"zone_no"`
	} `json:"road_address"`
}

type searchResponse struct {
	Documents []document `json:"documents"`
}

// Lookup geocodes address using the first matching document.
func (c *Client) Lookup(ctx context.Context, address string) (*Result, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, ErrNoResults
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?query="+url.QueryEscape(address), nil)
	if err != nil {
		return nil, fmt.Errorf("building geocode request: %w", err)
	}
	req.Header.Set("Authorization", "KakaoAK "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocode service returned %d", resp.StatusCode)
	}

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding geocode response: %w", err)
	}
	if len(body.Documents) == 0 {
		return nil, ErrNoResults
	}
	return toResult(body.Documents[0])
}

func toResult(doc document) (*Result, error) {
	lon, errX := strconv.ParseFloat(doc.X, 64)
	lat, errY := strconv.ParseFloat(doc.Y, 64)
	if errX != nil || errY != nil {
		return nil, fmt.Errorf("geocode returned bad coordinates %q,%q", doc.X, doc.Y)
	}
	res := &Result{Longitude: lon, Latitude: lat}

	switch {
	case doc.Road != nil:
		res.Region1 = doc.Road.Region1
		res.Region2 = doc.Road.Region2
		res.Region3 = doc.Road.Region3
		res.PostalCode = doc.Road.ZoneNo
		res.RoadAddress = strings.TrimSpace(doc.Road.RoadName + " " + buildingNo(doc.Road.MainBuildingNo, doc.Road.SubBuildingNo))
	case doc.Address != nil:
		res.Region1 = doc.Address.Region1
		res.Region2 = doc.Address.Region2
		res.Region3 = doc.Address.Region3
	}
	return res, nil
}

func buildingNo(main, sub string) string {
	if sub == "" || sub == "0" {
		return main
	}
	return main + "-" + sub
}
