package pushover

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/noahxzhu/timer-reminder/internal/model"
)

const DefaultAPIURL = "https://api.pushover.net/1/messages.json"

type Client struct {
	Token      string
	User       string
	APIURL     string
	HTTPClient *http.Client
}

func NewClient(token, user string) *Client {
	return &Client{
		Token:      token,
		User:       user,
		APIURL:     DefaultAPIURL,
		HTTPClient: http.DefaultClient,
	}
}

func (c *Client) Name() string { return "pushover" }

// Send pushes a delivered reminder with a supplementary link to its expanded
// view.
func (c *Client) Send(ctx context.Context, n model.DeliveredNotification, openURL string) error {
	params := url.Values{}
	params.Set("token", c.Token)
	params.Set("user", c.User)
	params.Set("title", n.Request.Content.Title)
	params.Set("message", n.Request.Content.Body)
	if openURL != "" {
		params.Set("url", openURL)
		params.Set("url_title", model.ConfirmTitle)
	}
	if n.Request.Content.Sound != "" && n.Request.Content.Sound != model.SoundDefault {
		params.Set("sound", n.Request.Content.Sound)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIURL, strings.NewReader(params.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("pushover api error: status %s, body %s", resp.Status, string(body))
	}

	return nil
}
