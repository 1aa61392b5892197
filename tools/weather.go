package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/petal-labs/cursortools/registry"
	"github.com/petal-labs/cursortools/tool"
)

const (
	// WeatherToolName is the registry name of the weather tool.
	WeatherToolName = "weather"
	// DefaultWeatherBaseURL is the weatherapi.com v1 endpoint.
	DefaultWeatherBaseURL = "https://api.weatherapi.com/v1"
	// WeatherAPIKeyEnv names the environment variable holding the API key.
	WeatherAPIKeyEnv = "WEATHER_API_KEY"

	defaultWeatherTimeout = 10 * time.Second
	minWeatherAPIKeyLen   = 16
	usLocationSuffix      = ", United States of America"
	maxWeatherBodyBytes   = 1 << 20
)

func init() {
	registry.Provide(registry.DefaultSource, registry.Unit{
		Name:    "weather",
		Symbols: []registry.Symbol{registry.Declare(NewWeatherTool)},
	})
}

// Report is the current weather for one location.
type Report struct {
	Location  string  `json:"location"`
	Region    string  `json:"region"`
	TempF     float64 `json:"temp_f"`
	Condition string  `json:"condition"`
	Humidity  int     `json:"humidity"`
	WindMPH   float64 `json:"wind_mph"`
}

func (r *Report) String() string {
	return fmt.Sprintf(
		"Weather for %s, %s:\nTemperature: %g°F\nCondition: %s\nHumidity: %d%%\nWind: %g mph",
		r.Location, r.Region, r.TempF, r.Condition, r.Humidity, r.WindMPH,
	)
}

// WeatherTool fetches current conditions for a US city from weatherapi.com.
type WeatherTool struct {
	tool.Base

	apiKey     string
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

var (
	_ tool.Tool         = (*WeatherTool)(nil)
	_ tool.Configurable = (*WeatherTool)(nil)
)

// NewWeatherTool returns a weather tool reading its API key from
// WEATHER_API_KEY.
func NewWeatherTool() *WeatherTool {
	t := &WeatherTool{
		Base:    tool.NewBase(WeatherToolName, "Get current weather for a US city"),
		apiKey:  strings.TrimSpace(os.Getenv(WeatherAPIKeyEnv)),
		baseURL: DefaultWeatherBaseURL,
		timeout: defaultWeatherTimeout,
	}
	slog.Default().Debug("weather tool created", "api_key_found", t.apiKey != "")
	return t
}

// WithBaseURL overrides the API base URL.
func (t *WeatherTool) WithBaseURL(baseURL string) *WeatherTool {
	t.baseURL = strings.TrimRight(baseURL, "/")
	return t
}

// WithHTTPClient overrides the HTTP client. The client's own timeout applies.
func (t *WeatherTool) WithHTTPClient(client *http.Client) *WeatherTool {
	t.httpClient = client
	return t
}

// WithAPIKey overrides the API key.
func (t *WeatherTool) WithAPIKey(key string) *WeatherTool {
	t.apiKey = strings.TrimSpace(key)
	return t
}

// Configure applies api_key, base_url and timeout settings. The environment
// variable takes precedence over a configured api_key.
func (t *WeatherTool) Configure(settings map[string]string) error {
	if key := strings.TrimSpace(settings["api_key"]); key != "" && strings.TrimSpace(os.Getenv(WeatherAPIKeyEnv)) == "" {
		t.apiKey = key
	}
	if base := strings.TrimSpace(settings["base_url"]); base != "" {
		if _, err := url.ParseRequestURI(base); err != nil {
			return fmt.Errorf("weather: invalid base_url %q: %w", base, err)
		}
		t.WithBaseURL(base)
	}
	if raw := strings.TrimSpace(settings["timeout"]); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil || timeout <= 0 {
			return fmt.Errorf("weather: invalid timeout %q", raw)
		}
		t.timeout = timeout
	}
	return nil
}

// Parameters declares the required city input.
func (*WeatherTool) Parameters() map[string]tool.ParamSpec {
	return map[string]tool.ParamSpec{
		"city": {
			Type:        tool.TypeString,
			Description: "US city name (can include state e.g. 'Portland, OR')",
			Required:    true,
		},
	}
}

// Execute fetches the current weather for args["city"].
func (t *WeatherTool) Execute(ctx context.Context, args map[string]any) (any, error) {
	raw, ok := args["city"]
	if !ok {
		return nil, &tool.ValidationError{Missing: []string{"city"}}
	}
	city, ok := raw.(string)
	if !ok {
		city = fmt.Sprint(raw)
	}
	report, err := t.Current(ctx, city)
	if err != nil {
		return nil, err
	}
	return report, nil
}

// Current fetches the current weather for a US city.
func (t *WeatherTool) Current(ctx context.Context, city string) (*Report, error) {
	if err := t.validateAPIKey(); err != nil {
		return nil, err
	}

	query := city + usLocationSuffix
	endpoint := t.baseURL + "/current.json"
	params := url.Values{}
	params.Set("key", t.apiKey)
	params.Set("q", query)
	params.Set("aqi", "no")

	logger := slog.Default()
	logger.Debug("fetching weather", "location", query)
	logger.Debug("weather request", "url", endpoint, "params", tool.MaskSecret(params.Encode(), url.QueryEscape(t.apiKey)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, tool.NewError(tool.ErrorCodeInvocationFailed, fmt.Sprintf("Unexpected error: %v", err), err)
	}

	resp, err := t.client().Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close()

	logger.Debug("weather response",
		"status", resp.StatusCode,
		"url", tool.MaskSecret(resp.Request.URL.String(), url.QueryEscape(t.apiKey)),
	)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxWeatherBodyBytes))
	if err != nil {
		return nil, classifyTransportError(err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, tool.Errorf(tool.ErrorCodeUnauthorized, "Invalid API key")
	case resp.StatusCode == http.StatusBadRequest:
		return nil, tool.Errorf(tool.ErrorCodeUpstreamFailure, "API error: %s", apiErrorMessage(body)).
			WithDetails(map[string]any{"status": resp.StatusCode})
	case resp.StatusCode != http.StatusOK:
		return nil, tool.Errorf(tool.ErrorCodeUpstreamFailure, "API returned status code %d", resp.StatusCode).
			WithDetails(map[string]any{"status": resp.StatusCode})
	}

	report, err := decodeCurrent(body)
	if err != nil {
		return nil, err
	}
	logger.Debug("weather report", "location", report.Location, "region", report.Region)
	return report, nil
}

func (t *WeatherTool) validateAPIKey() error {
	if t.apiKey == "" {
		return tool.Errorf(tool.ErrorCodeUnauthorized,
			"%s not found in environment. Please set it or add api_key to the weather tool config.", WeatherAPIKeyEnv)
	}
	if len(t.apiKey) < minWeatherAPIKeyLen {
		return tool.Errorf(tool.ErrorCodeUnauthorized, "Invalid API key format")
	}
	return nil
}

func (t *WeatherTool) client() *http.Client {
	if t.httpClient != nil {
		return t.httpClient
	}
	return tool.HTTPClient(t.timeout)
}

func classifyTransportError(err error) *tool.Error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return tool.NewError(tool.ErrorCodeTimeout, "Request timed out", err)
	}
	return tool.NewError(tool.ErrorCodeTransportFailure, fmt.Sprintf("Failed to connect to API: %v", err), err)
}

func apiErrorMessage(body []byte) string {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || strings.TrimSpace(payload.Error.Message) == "" {
		return "Unknown error"
	}
	return payload.Error.Message
}

type currentResponse struct {
	Location *struct {
		Name   *string `json:"name"`
		Region *string `json:"region"`
	} `json:"location"`
	Current *struct {
		TempF     *float64 `json:"temp_f"`
		Humidity  *int     `json:"humidity"`
		WindMPH   *float64 `json:"wind_mph"`
		Condition *struct {
			Text *string `json:"text"`
		} `json:"condition"`
	} `json:"current"`
}

func decodeCurrent(body []byte) (*Report, error) {
	var payload currentResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, tool.NewError(tool.ErrorCodeDecodeFailure, fmt.Sprintf("Malformed API response: %v", err), err)
	}

	missing := func(field string) error {
		return tool.Errorf(tool.ErrorCodeDecodeFailure, "Missing data in API response: '%s'", field)
	}
	switch {
	case payload.Location == nil:
		return nil, missing("location")
	case payload.Location.Name == nil:
		return nil, missing("location.name")
	case payload.Location.Region == nil:
		return nil, missing("location.region")
	case payload.Current == nil:
		return nil, missing("current")
	case payload.Current.TempF == nil:
		return nil, missing("current.temp_f")
	case payload.Current.Condition == nil || payload.Current.Condition.Text == nil:
		return nil, missing("current.condition.text")
	case payload.Current.Humidity == nil:
		return nil, missing("current.humidity")
	case payload.Current.WindMPH == nil:
		return nil, missing("current.wind_mph")
	}

	return &Report{
		Location:  *payload.Location.Name,
		Region:    *payload.Location.Region,
		TempF:     *payload.Current.TempF,
		Condition: *payload.Current.Condition.Text,
		Humidity:  *payload.Current.Humidity,
		WindMPH:   *payload.Current.WindMPH,
	}, nil
}
