package notifycenter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	shoutrrr "github.com/nicholas-fedor/shoutrrr"
	router "github.com/nicholas-fedor/shoutrrr/pkg/router"
	stypes "github.com/nicholas-fedor/shoutrrr/pkg/types"

	"github.com/noahxzhu/timer-reminder/internal/model"
)

// ShoutrrrProvider fans a reminder out to any number of shoutrrr service URLs.
type ShoutrrrProvider struct {
	sender *router.ServiceRouter
}

// NewShoutrrrProvider builds the sender up front so bad URLs fail at startup.
func NewShoutrrrProvider(urls []string, timeout time.Duration) (*ShoutrrrProvider, error) {
	if len(urls) == 0 {
		return nil, errors.New("at least one URL is required")
	}
	sender, err := shoutrrr.CreateSender(urls...)
	if err != nil {
		return nil, fmt.Errorf("invalid shoutrrr url: %w", err)
	}
	if timeout > 0 {
		sender.Timeout = timeout
	}
	sender.SetLogger(log.New(io.Discard, "", 0))

	return &ShoutrrrProvider{sender: sender}, nil
}

func (s *ShoutrrrProvider) Name() string { return "shoutrrr" }

// Send honours ctx only up to the hand-off; the router applies its own
// timeout to the delivery itself.
func (s *ShoutrrrProvider) Send(ctx context.Context, n model.DeliveredNotification, openURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	body := n.Request.Content.Body
	if openURL != "" {
		body += "\n" + openURL
	}
	params := stypes.Params{}
	if n.Request.Content.Title != "" {
		params.SetTitle(n.Request.Content.Title)
	}

	for _, err := range s.sender.Send(body, &params) {
		if err != nil {
			return err
		}
	}
	return nil
}
