package arcgis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/survey-reachability/internal/config"
	"github.com/survey-reachability/internal/domain"
	"github.com/survey-reachability/internal/domain/repository"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	logger     *zap.Logger
}

// serviceError - тело ошибки ArcGIS REST, приходит с HTTP 200
type serviceError struct {
	Error *struct {
		Code    int      `json:"code"`
		Message string   `json:"message"`
		Details []string `json:"details"`
	} `json:"error"`
}

// NewClient создает клиент для ArcGIS feature services
func NewClient(cfg *config.ArcGISConfig, logger *zap.Logger) repository.AmenityRepository {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	burst := cfg.Burst
	if burst < 1 {
		burst = 1
	}

	return &client{
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		limiter:   rate.NewLimiter(limit, burst),
		userAgent: cfg.UserAgent,
		logger:    logger,
	}
}

// QueryFeatures запрашивает точки слоя внутри bbox
func (c *client) QueryFeatures(
	ctx context.Context,
	source domain.AmenitySource,
	bbox domain.BoundingBox,
	limit int,
) ([]domain.Amenity, error) {
	if !bbox.IsValid() {
		return nil, fmt.Errorf("invalid bounding box: %+v", bbox)
	}

	queryURL := BuildQueryURL(source, bbox, limit)

	c.logger.Debug("Querying ArcGIS feature service",
		zap.String("source", source.ID),
		zap.String("url", queryURL))

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, queryURL, nil)
	if err != nil {
		c.logger.Error("Failed to create request", zap.Error(err))
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to execute request",
			zap.String("source", source.ID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("ArcGIS returned error status",
			zap.String("source", source.ID),
			zap.Int("status_code", resp.StatusCode),
			zap.String("body", truncate(string(body), 512)))
		return nil, fmt.Errorf("arcgis error: status %d", resp.StatusCode)
	}

	var svcErr serviceError
	if err := json.Unmarshal(body, &svcErr); err == nil && svcErr.Error != nil {
		c.logger.Error("ArcGIS query failed",
			zap.String("source", source.ID),
			zap.Int("code", svcErr.Error.Code),
			zap.String("message", svcErr.Error.Message))
		return nil, fmt.Errorf("arcgis error %d: %s", svcErr.Error.Code, svcErr.Error.Message)
	}

	fc, err := geojson.UnmarshalFeatureCollection(body)
	if err != nil {
		c.logger.Error("Failed to decode response", zap.Error(err))
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	amenities := FeaturesToAmenities(source, fc)

	c.logger.Debug("ArcGIS query successful",
		zap.String("source", source.ID),
		zap.Int("features", len(fc.Features)),
		zap.Int("points", len(amenities)))

	return amenities, nil
}

// BuildQueryURL формирует запрос {url}/query: объекты, целиком лежащие в bbox
func BuildQueryURL(source domain.AmenitySource, bbox domain.BoundingBox, limit int) string {
	params := url.Values{}
	params.Set("where", source.WhereClause())
	params.Set("geometry", bbox.Envelope())
	params.Set("geometryType", "esriGeometryEnvelope")
	params.Set("inSR", "4326")
	params.Set("spatialRel", "esriSpatialRelContains")
	if fields := source.OutFields(); len(fields) > 0 {
		params.Set("outFields", strings.Join(fields, ","))
	} else {
		params.Set("outFields", "*")
	}
	params.Set("returnGeometry", "true")
	params.Set("outSR", "4326")
	if limit > 0 {
		params.Set("resultRecordCount", strconv.Itoa(limit))
	}
	params.Set("f", "geojson")

	return strings.TrimRight(source.URL, "/") + "/query?" + params.Encode()
}

// FeaturesToAmenities переводит GeoJSON в объекты.
// Не точечные геометрии отбрасываются, объект без геометрии остаётся без Location.
func FeaturesToAmenities(source domain.AmenitySource, fc *geojson.FeatureCollection) []domain.Amenity {
	amenities := make([]domain.Amenity, 0, len(fc.Features))
	for _, f := range fc.Features {
		a := domain.Amenity{
			SourceID:   source.ID,
			Attributes: map[string]interface{}(f.Properties),
		}

		switch g := f.Geometry.(type) {
		case nil:
		case orb.Point:
			a.Location = &domain.Point{Lat: g.Lat(), Lon: g.Lon()}
		default:
			continue
		}

		if source.IDField != "" {
			a.ID = a.AttributeString(source.IDField)
		}
		if a.ID == "" && f.ID != nil {
			a.ID = fmt.Sprint(f.ID)
		}

		amenities = append(amenities, a)
	}
	return amenities
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
