// Package rwgps reads public course data from Ride with GPS.
package rwgps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cascade-randonneurs/brevet-planner-api/internal/ports/out/routeplanner"
)

const defaultTimeout = 15 * time.Second

type Client struct {
	baseURL string
	http    *http.Client
}

var _ routeplanner.Client = (*Client)(nil)

// NewClient talks to the planner API at baseURL, e.g. "https://ridewithgps.com".
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL: trimTrailingSlash(baseURL),
		http:    httpClient,
	}
}

// routeDocument mirrors the subset of the planner's route JSON we consume.
type routeDocument struct {
	Route struct {
		CoursePoints []struct {
			Note     string  `json:"n"`
			Type     string  `json:"t"`
			Distance float64 `json:"d"`
		} `json:"course_points"`
	} `json:"route"`
}

func (c *Client) CoursePoints(ctx context.Context, routeRef string) ([]routeplanner.CoursePoint, error) {
	u := fmt.Sprintf("%s/routes/%s.json", c.baseURL, url.PathEscape(routeRef))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build planner request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch route %s: %w", routeRef, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("route %s: %w", routeRef, routeplanner.ErrRouteNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetch route %s: unexpected status %d", routeRef, resp.StatusCode)
	}

	var doc routeDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode route %s: %w", routeRef, err)
	}

	points := make([]routeplanner.CoursePoint, 0, len(doc.Route.CoursePoints))
	for _, p := range doc.Route.CoursePoints {
		points = append(points, routeplanner.CoursePoint{
			Name:           p.Note,
			Type:           p.Type,
			DistanceMeters: p.Distance,
		})
	}
	return points, nil
}

func trimTrailingSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
