// internal/datasource/client.go
package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"property-report-bot/internal/common/config"
	"property-report-bot/internal/common/errors"
	commonhttp "property-report-bot/internal/common/http"
	"property-report-bot/internal/common/logger"
	"property-report-bot/internal/common/metrics"
	"property-report-bot/internal/models"
)

const userAgent = "property-report-bot/1.0"

// Client fetches property and complaint records from the remote JSON data
// source. Failures are returned as classified errors; the command layer
// decides how to log and degrade.
type Client struct {
	cfg        config.DataSourceConfig
	httpClient *commonhttp.Client
	logger     logger.Logger
}

func NewClient(cfg config.DataSourceConfig, log logger.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: commonhttp.NewClient(config.GetDuration(cfg.Timeout)),
		logger:     log.WithFields(map[string]interface{}{"component": "datasource"}),
	}
}

func (c *Client) buildHeaders() map[string]string {
	headers := map[string]string{
		"Accept":     "application/json",
		"User-Agent": userAgent,
	}
	if name, value := c.cfg.AuthHeader(); name != "" {
		headers[name] = value
	}
	return headers
}

// FetchAllProperties fetches every property record from the base URL.
func (c *Client) FetchAllProperties(ctx context.Context) ([]models.Record, error) {
	return c.fetchList(ctx, "properties", c.cfg.BaseURL)
}

// FetchPropertiesList fetches the listing endpoint, which may differ from the
// ratings endpoint.
func (c *Client) FetchPropertiesList(ctx context.Context) ([]models.Record, error) {
	return c.fetchList(ctx, "properties_list", c.cfg.EffectivePropertiesURL())
}

// FetchPropertyByID tries the sub-resource GET first; on any non-200 answer it
// falls back to scanning the full list with string-compared ids. A miss is a
// PROPERTY_NOT_FOUND error, not an empty success.
func (c *Client) FetchPropertyByID(ctx context.Context, propertyID string) (models.Record, error) {
	singleURL := strings.TrimRight(c.cfg.BaseURL, "/") + "/" + propertyID

	resp, err := c.httpClient.Get(ctx, singleURL, c.buildHeaders())
	if err == nil {
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusOK {
			var record models.Record
			if decErr := json.NewDecoder(resp.Body).Decode(&record); decErr == nil {
				metrics.FetchRequests.WithLabelValues("property_by_id", "success").Inc()
				return record, nil
			}
			// Decoding a single record failed; the list scan below still works.
			c.logger.Debug("single property decode failed, falling back to list scan", map[string]interface{}{
				"propertyId": propertyID,
			})
		}
	}

	all, err := c.FetchAllProperties(ctx)
	if err != nil {
		metrics.FetchRequests.WithLabelValues("property_by_id", "error").Inc()
		return nil, err
	}
	for _, p := range all {
		if p.StringField("", "id") == propertyID {
			metrics.FetchRequests.WithLabelValues("property_by_id", "success").Inc()
			return p, nil
		}
	}
	metrics.FetchRequests.WithLabelValues("property_by_id", "not_found").Inc()
	return nil, errors.NewPropertyNotFoundError(propertyID)
}

// FetchComplaints fetches complaint records filtered by property id.
func (c *Client) FetchComplaints(ctx context.Context, propertyID string) ([]models.Record, error) {
	if strings.TrimSpace(c.cfg.ComplaintsURL) == "" {
		return nil, errors.NewComplaintsNotConfiguredError()
	}
	u := fmt.Sprintf("%s?%s",
		strings.TrimRight(c.cfg.ComplaintsURL, "/"),
		url.Values{"property_id": {propertyID}}.Encode(),
	)
	return c.fetchList(ctx, "complaints", u)
}

// fetchList issues one GET and decodes either a bare list of records or an
// object wrapping the list under a "data" key.
func (c *Client) fetchList(ctx context.Context, endpoint, fetchURL string) ([]models.Record, error) {
	resp, err := c.httpClient.Get(ctx, fetchURL, c.buildHeaders())
	if err != nil {
		metrics.FetchRequests.WithLabelValues(endpoint, "transport_error").Inc()
		return nil, errors.NewFetchTransportFailedError(fetchURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.FetchRequests.WithLabelValues(endpoint, "bad_status").Inc()
		return nil, errors.NewFetchTransportFailedError(fetchURL, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	var payload interface{}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		metrics.FetchRequests.WithLabelValues(endpoint, "decode_error").Inc()
		return nil, errors.NewResponseDecodeFailedError(fetchURL, err)
	}

	records, ok := extractRecords(payload)
	if !ok {
		metrics.FetchRequests.WithLabelValues(endpoint, "bad_shape").Inc()
		return nil, errors.NewUnexpectedPayloadShapeError(fetchURL)
	}

	metrics.FetchRequests.WithLabelValues(endpoint, "success").Inc()
	return records, nil
}

// extractRecords accepts the two observed success shapes: a bare list, or an
// envelope {"data": [...]}. Non-object list elements are skipped.
func extractRecords(payload interface{}) ([]models.Record, bool) {
	var items []interface{}
	switch v := payload.(type) {
	case []interface{}:
		items = v
	case map[string]interface{}:
		inner, ok := v["data"].([]interface{})
		if !ok {
			return nil, false
		}
		items = inner
	default:
		return nil, false
	}

	records := make([]models.Record, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]interface{}); ok {
			records = append(records, models.Record(obj))
		}
	}
	return records, true
}
