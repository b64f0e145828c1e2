package ecojoko

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tempotrack/tempotrack/pkg/common"
	"github.com/tempotrack/tempotrack/pkg/log"
	"github.com/tempotrack/tempotrack/pkg/types"
)

const (
	loginPath    = "/login"
	gatewaysPath = "/gateways"
	gatewayPath  = "/gateway"

	deviceTypePowerMeter = "POWER_METER"
	deviceTypeTempHum    = "TEMP_HUM"
)

// Client talks to the Ecojoko service. It owns the cookie session and the
// discovered gateway identity; both are recreated transparently when the
// service invalidates them (401/403) or after a day rollover re-sync.
//
// The client assumes a single caller at a time, matching the one-cycle-at-a-
// time contract of the refresh loop.
type Client struct {
	client   *http.Client
	baseURL  string
	username string
	password string

	cookies  []*http.Cookie
	identity types.GatewayIdentity
}

// New returns a client for the given account. The timeout bounds every
// individual call.
func New(username, password, baseURL string, timeout time.Duration) *Client {
	return &Client{
		client:   common.HTTPClient(timeout),
		baseURL:  baseURL,
		username: username,
		password: password,
	}
}

// HasSession reports whether a login cookie is currently held.
func (c *Client) HasSession() bool {
	return len(c.cookies) > 0
}

// InvalidateSession drops the stored cookies so the next call logs in again.
func (c *Client) InvalidateSession() {
	c.cookies = nil
}

// Identity returns the last discovered gateway identity. The zero value
// means discovery has not happened yet.
func (c *Client) Identity() types.GatewayIdentity {
	return c.identity
}

// ResetIdentity forces a re-discovery on the next EnsureReady. Used at day
// rollover to defend against the device roster changing day to day.
func (c *Client) ResetIdentity() {
	c.identity = types.GatewayIdentity{}
}

// EnsureReady walks the dependency chain: no session -> login, no identity ->
// discover. A single cycle may therefore perform login + discovery + the
// requested fetch back-to-back, which makes the chain self-healing without a
// persistent retry loop.
func (c *Client) EnsureReady(ctx context.Context) error {
	if !c.HasSession() {
		if err := c.Login(ctx); err != nil {
			return err
		}
	}
	if !c.identity.Complete() {
		if _, err := c.DiscoverGateway(ctx); err != nil {
			return err
		}
	}
	return nil
}

type loginBody struct {
	L string `json:"l"`
	P string `json:"p"`
}

// Login posts the credentials and retains the session cookies from the
// response. On 401/403 the session stays absent and ErrAuthentication is
// returned.
func (c *Client) Login(ctx context.Context) error {
	body, err := json.Marshal(loginBody{L: c.username, P: c.password})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+loginPath, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return classifyTransportErr("login", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		c.cookies = nil
		return fmt.Errorf("%w: invalid credentials", ErrAuthentication)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("login: status %d", resp.StatusCode)
	}

	c.cookies = resp.Cookies()
	if len(c.cookies) == 0 {
		return errors.New("login: no session cookie in response")
	}
	log.Ctx(ctx).DebugContext(ctx, "ecojoko login success", slog.String("username", c.username))
	return nil
}

type gatewaysResult struct {
	Gateways []struct {
		GatewayID       int    `json:"gateway_id"`
		FirmwareVersion string `json:"gateway_firmware_version"`
		Devices         []struct {
			DeviceID   int    `json:"device_id"`
			DeviceType string `json:"device_type"`
		} `json:"devices"`
	} `json:"gateways"`
}

// DiscoverGateway fetches the gateway list, takes the first gateway, and
// scans its device roster for the first POWER_METER and TEMP_HUM devices.
func (c *Client) DiscoverGateway(ctx context.Context) (types.GatewayIdentity, error) {
	var res gatewaysResult
	ok, err := c.getJSON(ctx, gatewaysPath, &res)
	if err != nil {
		return types.GatewayIdentity{}, err
	}
	if !ok {
		return types.GatewayIdentity{}, errors.New("gateways: no data in response")
	}
	if len(res.Gateways) == 0 {
		return types.GatewayIdentity{}, errors.New("gateways: empty gateway list")
	}

	gw := res.Gateways[0]
	id := types.GatewayIdentity{
		GatewayID:       gw.GatewayID,
		FirmwareVersion: gw.FirmwareVersion,
	}
	for _, dev := range gw.Devices {
		switch dev.DeviceType {
		case deviceTypePowerMeter:
			if id.PowerMeterID == 0 {
				id.PowerMeterID = dev.DeviceID
			}
		case deviceTypeTempHum:
			if id.TempHumID == 0 {
				id.TempHumID = dev.DeviceID
			}
		}
	}
	if !id.Complete() {
		return types.GatewayIdentity{}, fmt.Errorf("gateways: no %s device on gateway %d", deviceTypePowerMeter, gw.GatewayID)
	}

	c.identity = id
	log.Ctx(ctx).InfoContext(ctx, "discovered ecojoko gateway",
		slog.Int("gatewayID", id.GatewayID),
		slog.String("firmware", id.FirmwareVersion),
		slog.Int("powerMeterID", id.PowerMeterID),
		slog.Int("tempHumID", id.TempHumID),
	)
	return id, nil
}

// getJSON performs an authenticated GET and decodes the JSON body into dest.
// The bool is false when the service answered 200 with a non-JSON content
// type, which means "no data this cycle" rather than an error. A 401/403
// invalidates the stored session before ErrAuthentication is returned.
func (c *Client) getJSON(ctx context.Context, path string, dest interface{}) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range c.cookies {
		req.AddCookie(cookie)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false, classifyTransportErr(path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		c.cookies = nil
		return false, fmt.Errorf("%w: %s returned %d", ErrAuthentication, path, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("%s: status %d", path, resp.StatusCode)
	}
	if !strings.Contains(resp.Header.Get("Content-Type"), "application/json") {
		log.Ctx(ctx).DebugContext(ctx, "ecojoko returned no data", slog.String("path", path))
		return false, nil
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return false, fmt.Errorf("%s: decode failed: %w", path, err)
	}
	return true, nil
}

// classifyTransportErr maps transport-level failures onto ErrCommunication.
func classifyTransportErr(what string, err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		if uerr.Timeout() {
			return fmt.Errorf("%w: %s timed out", ErrCommunication, what)
		}
		return fmt.Errorf("%w: %s: %v", ErrCommunication, what, uerr.Err)
	}
	return fmt.Errorf("%s: %w", what, err)
}

func (c *Client) devicePath(deviceID int) string {
	return fmt.Sprintf("%s/%d/device/%d", gatewayPath, c.identity.GatewayID, deviceID)
}
