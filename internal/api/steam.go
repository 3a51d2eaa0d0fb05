package api

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"pat-tracker/internal/config"
	"pat-tracker/internal/metrics"

	"github.com/goccy/go-json"
	"github.com/valyala/fasthttp"
)

// MaxSteamIDs is the most ids the Steam user endpoints accept per call.
const MaxSteamIDs = 100

type SteamClient struct {
	apiKey  string
	baseURL string
	client  *fasthttp.Client
}

func NewSteamClient(cfg *config.Config) *SteamClient {
	return &SteamClient{
		apiKey:  cfg.Steam.APIKey,
		baseURL: strings.TrimRight(cfg.Steam.BaseURL, "/"),
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

func (c *SteamClient) Configured() bool {
	return c.apiKey != ""
}

func (c *SteamClient) GetPlayerSummaries(ctx context.Context, steamIDs []string) (*PlayerSummariesResponse, error) {
	return doRequest[PlayerSummariesResponse](ctx, c, "GetPlayerSummaries", c.userURL("GetPlayerSummaries/v2", steamIDs))
}

func (c *SteamClient) GetPlayerBans(ctx context.Context, steamIDs []string) (*PlayerBansResponse, error) {
	return doRequest[PlayerBansResponse](ctx, c, "GetPlayerBans", c.userURL("GetPlayerBans/v1", steamIDs))
}

func (c *SteamClient) userURL(method string, steamIDs []string) string {
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("steamids", strings.Join(steamIDs, ","))
	return fmt.Sprintf("%s/ISteamUser/%s/?%s", c.baseURL, method, q.Encode())
}

func doRequest[T any](ctx context.Context, client *SteamClient, endpoint, url string) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.client.DoDeadline(req, resp, deadline); err != nil {
			metrics.RecordSteamRequest(endpoint, 0)
			return nil, err
		}
	} else {
		if err := client.client.Do(req, resp); err != nil {
			metrics.RecordSteamRequest(endpoint, 0)
			return nil, err
		}
	}

	metrics.RecordSteamRequest(endpoint, resp.StatusCode())
	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("steam API error: %d", resp.StatusCode())
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return &result, nil
}

type PlayerSummariesResponse struct {
	Response struct {
		Players []SteamPlayer `json:"players"`
	} `json:"response"`
}

type SteamPlayer struct {
	SteamID        string `json:"steamid"`
	PersonaName    string `json:"personaname"`
	ProfileURL     string `json:"profileurl"`
	Avatar         string `json:"avatar"`
	AvatarMedium   string `json:"avatarmedium"`
	AvatarFull     string `json:"avatarfull"`
	LocCountryCode string `json:"loccountrycode"`
	TimeCreated    int64  `json:"timecreated"`
}

type PlayerBansResponse struct {
	Players []SteamBans `json:"players"`
}

type SteamBans struct {
	SteamID          string `json:"SteamId"`
	CommunityBanned  bool   `json:"CommunityBanned"`
	VACBanned        bool   `json:"VACBanned"`
	NumberOfVACBans  int    `json:"NumberOfVACBans"`
	DaysSinceLastBan int    `json:"DaysSinceLastBan"`
	NumberOfGameBans int    `json:"NumberOfGameBans"`
	EconomyBan       string `json:"EconomyBan"`
}
