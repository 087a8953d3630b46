// Package notify formats fee reminders and dispatches them through the
// messaging provider, normalizing every provider outcome into a uniform
// result value.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

// TwilioClient sends WhatsApp messages through the Twilio Messages API.
type TwilioClient struct {
	accountSID string
	authToken  string
	from       string
	base       string
	rest       *resty.Client
}

// NewTwilio builds a REST client for the given account. base is the API
// root (overridable for tests), from the configured sender identity.
func NewTwilio(accountSID, authToken, from, base string, timeout time.Duration) *TwilioClient {
	r := resty.New()
	if timeout > 0 {
		r.SetTimeout(timeout)
	} else {
		r.SetTimeout(5 * time.Second) // default fallback
	}
	return &TwilioClient{
		accountSID: accountSID,
		authToken:  authToken,
		from:       from,
		base:       base,
		rest:       r,
	}
}

type messageResp struct {
	Sid    string `json:"sid"`
	Status string `json:"status"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

// Send submits one message and returns the provider-assigned SID.
func (c *TwilioClient) Send(ctx context.Context, to, body string) (string, error) {
	path := fmt.Sprintf("/2010-04-01/Accounts/%s/Messages.json", c.accountSID)

	msg := &messageResp{}
	apiErr := &apiError{}
	resp, err := c.rest.R().
		SetContext(ctx).
		SetBasicAuth(c.accountSID, c.authToken).
		SetFormData(map[string]string{
			"From": c.from,
			"To":   to,
			"Body": body,
		}).
		SetResult(msg).
		SetError(apiErr).
		Post(c.base + path)
	if err != nil {
		return "", fmt.Errorf("provider request failed: %w", err)
	}
	if resp.IsError() {
		if apiErr.Message != "" {
			return "", fmt.Errorf("provider rejected message: %d %s", apiErr.Code, apiErr.Message)
		}
		return "", fmt.Errorf("provider rejected message: status %d", resp.StatusCode())
	}
	if msg.Sid == "" {
		return "", fmt.Errorf("provider accepted message but returned no sid")
	}
	return msg.Sid, nil
}
