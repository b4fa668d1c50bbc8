package tool

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	contractx "github.com/samantha-labs/assistant/agent/contract"
)

const ToolWeather = "weather"

type WeatherConfig struct {
	APIKey  string        `envconfig:"API_KEY" split_words:"true"`
	BaseURL string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.weatherapi.com/v1"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

// WeatherTool fetches current conditions from weatherapi.com.
type WeatherTool struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewWeatherTool(cfg WeatherConfig) *WeatherTool {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WeatherTool{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (t *WeatherTool) Name() string { return ToolWeather }

func (t *WeatherTool) Description() string {
	return "Fetch real weather information from internet APIs"
}

func (t *WeatherTool) Schema() Schema {
	return Schema{
		"location": {
			Type:        "string",
			Description: "City or place to fetch the current weather for",
			Required:    true,
		},
	}
}

type weatherAPIResponse struct {
	Location struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"location"`
	Current struct {
		TempC     float64 `json:"temp_c"`
		Humidity  int     `json:"humidity"`
		WindKph   float64 `json:"wind_kph"`
		Condition struct {
			Text string `json:"text"`
		} `json:"condition"`
	} `json:"current"`
}

func (t *WeatherTool) Execute(ctx context.Context, params map[string]any) contractx.ToolResult {
	location := StringParam(params, "location")
	if location == "" {
		return contractx.ToolResult{Success: false, Error: "location is required"}
	}
	if t.apiKey == "" {
		return contractx.ToolResult{Success: false, Error: "weather api key is not configured"}
	}

	endpoint := fmt.Sprintf("%s/current.json?key=%s&q=%s&aqi=no",
		t.baseURL, url.QueryEscape(t.apiKey), url.QueryEscape(location))

	var data weatherAPIResponse
	if err := getJSON(ctx, t.httpClient, endpoint, nil, &data); err != nil {
		return contractx.ToolResult{Success: false, Error: fmt.Sprintf("weather lookup failed: %v", err)}
	}

	output := fmt.Sprintf("Clima em %s, %s: %s, %.1f°C, umidade %d%%, vento %.1f km/h",
		data.Location.Name, data.Location.Country,
		data.Current.Condition.Text, data.Current.TempC,
		data.Current.Humidity, data.Current.WindKph)

	return contractx.ToolResult{Success: true, Output: output}
}
