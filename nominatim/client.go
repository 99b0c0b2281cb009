package nominatim

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/osm"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// Place is the first search result for a query.
type Place struct {
	DisplayName  string
	OSMFeatureID osm.FeatureID
	Class        string
	Type         string
	Lat          float64
	Lon          float64
	Geometry     orb.Geometry
}

// OSMRef returns e.g. "relation/382313", or "" if unknown.
func (place *Place) OSMRef() string {
	if place.OSMFeatureID == 0 {
		return ""
	}
	return place.OSMFeatureID.String()
}

type searchResult struct {
	PlaceId     int64             `json:"place_id"`
	OSMType     string            `json:"osm_type"`
	OSMId       int64             `json:"osm_id"`
	Lat         string            `json:"lat"`
	Lon         string            `json:"lon"`
	Class       string            `json:"class"`
	Type        string            `json:"type"`
	DisplayName string            `json:"display_name"`
	GeoJSON     *geojson.Geometry `json:"geojson"`
}

func featureID(osmType string, id int64) osm.FeatureID {
	switch osm.Type(osmType) {
	case osm.TypeNode:
		return osm.NodeID(id).FeatureID()
	case osm.TypeWay:
		return osm.WayID(id).FeatureID()
	case osm.TypeRelation:
		return osm.RelationID(id).FeatureID()
	}
	return 0
}

func (res *searchResult) toPlace() (*Place, error) {
	if res.GeoJSON == nil {
		return nil, ErrNotFound
	}

	geometry := res.GeoJSON.Geometry()
	if geometry == nil {
		return nil, ErrNotFound
	}
	if c, ok := geometry.(orb.Collection); ok && len(c) == 0 {
		return nil, ErrNotFound
	}

	// lat/lon come back as strings. they're informational only.
	lat, _ := strconv.ParseFloat(res.Lat, 64)
	lon, _ := strconv.ParseFloat(res.Lon, 64)

	return &Place{
		DisplayName:  res.DisplayName,
		OSMFeatureID: featureID(res.OSMType, res.OSMId),
		Class:        res.Class,
		Type:         res.Type,
		Lat:          lat,
		Lon:          lon,
		Geometry:     geometry,
	}, nil
}

type Client struct {
	logger         *logrus.Logger
	searchUrl      string
	userAgent      string
	acceptLanguage string
	httpClient     *http.Client
	limiter        *rate.Limiter
}

// Lookup asks nominatim for at most one result with polygon geometry.
// There are no retries.
func (cli *Client) Lookup(ctx context.Context, query string) (*Place, error) {
	if err := cli.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLookupFailed, err)
	}

	v := url.Values{
		"q":               {query},
		"format":          {"json"},
		"polygon_geojson": {"1"},
		"limit":           {"1"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cli.searchUrl+"?"+v.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: error forming http request: %w", ErrLookupFailed, err)
	}

	req_hdr := req.Header
	req_hdr.Set("User-Agent", cli.userAgent)
	req_hdr.Set("Accept", "application/json")
	if cli.acceptLanguage != "" {
		req_hdr.Set("Accept-Language", cli.acceptLanguage)
	}

	resp, err := cli.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: error doing http request: %w", ErrLookupFailed, err)
	}

	defer func() {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf(
			"%w: received status code %d from nominatim: %s",
			ErrLookupFailed,
			resp.StatusCode,
			strings.TrimSpace(string(body)),
		)
	}

	var results []searchResult

	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(&results); err != nil {
		return nil, fmt.Errorf("%w: bad json from nominatim: %w", ErrLookupFailed, err)
	}

	if len(results) == 0 {
		return nil, fmt.Errorf("'%s': %w", query, ErrNotFound)
	}

	place, err := results[0].toPlace()
	if err != nil {
		return nil, fmt.Errorf("'%s': first result has no geometry: %w", query, err)
	}

	cli.logger.Debugf("nominatim: '%s' -> %s (%s %s/%s)", query, place.DisplayName, place.OSMRef(), place.Class, place.Type)

	return place, nil
}

func NewClient(logger *logrus.Logger, config Config) (*Client, error) {
	if logger == nil {
		return nil, errors.New("No logger given")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	baseUrl := strings.TrimRight(config.Url, "/")

	limit := rate.Inf
	if interval := config.MinInterval(); interval > 0 {
		limit = rate.Every(interval)
	}

	return &Client{
		logger:         logger,
		searchUrl:      baseUrl + "/search",
		userAgent:      config.UserAgent,
		acceptLanguage: config.AcceptLanguage,
		httpClient: &http.Client{
			Timeout: config.Timeout(),
		},
		limiter: rate.NewLimiter(limit, 1),
	}, nil
}
