package acsvc

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/marketing"
)

type (
	contact struct {
		ID        string `json:"id,omitempty"`
		Email     string `json:"email"`
		FirstName string `json:"firstName,omitempty"`
		LastName  string `json:"lastName,omitempty"`
		Phone     string `json:"phone,omitempty"`
	}

	tag struct {
		ID          string `json:"id,omitempty"`
		Tag         string `json:"tag"`
		TagType     string `json:"tagType"`
		Description string `json:"description"`
	}

	apiErrors struct {
		Errors []struct {
			Title string `json:"title"`
		} `json:"errors"`
		Message string `json:"message"`
	}
)

// Client calls the v3 API of the academies ActiveCampaign accounts.
type Client struct {
	timeout time.Duration
	send    func(ctx context.Context, req rest.Request) (*rest.Response, error)
}

var _ marketing.ActiveCampaign = (*Client)(nil)

func NewClient(conf *core.Config) *Client {
	return &Client{timeout: conf.ActiveCampaign.Timeout, send: rest.SendWithContext}
}

func (c *Client) post(ctx context.Context, acc marketing.ACAccount, path string, payload, dst interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "encoding payload")
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req := rest.Request{
		Method:  rest.Post,
		BaseURL: strings.TrimRight(acc.URL, "/") + path,
		Headers: map[string]string{
			"Api-Token":    acc.Key,
			"Content-Type": "application/json",
			"Accept":       "application/json",
		},
		Body: body,
	}
	res, err := c.send(ctx, req)
	if err != nil {
		return errors.Wrapf(err, "POST %s", req.BaseURL)
	}
	if res.StatusCode >= http.StatusBadRequest {
		var apiErr apiErrors
		_ = json.Unmarshal([]byte(res.Body), &apiErr)
		msg := apiErr.Message
		if len(apiErr.Errors) > 0 {
			msg = apiErr.Errors[0].Title
		}
		return errors.Errorf("activecampaign %s: %d %s", path, res.StatusCode, msg)
	}
	return errors.Wrap(json.Unmarshal([]byte(res.Body), dst), "decoding activecampaign response")
}

// SyncContact creates the contact, or updates the one with the same email.
func (c *Client) SyncContact(ctx context.Context, acc marketing.ACAccount, ct marketing.ACContact) (marketing.ACContact, error) {
	var res struct {
		Contact contact `json:"contact"`
	}
	payload := map[string]contact{"contact": {
		Email:     ct.Email,
		FirstName: ct.FirstName,
		LastName:  ct.LastName,
		Phone:     ct.Phone,
	}}
	if err := c.post(ctx, acc, "/api/3/contact/sync", payload, &res); err != nil {
		return marketing.ACContact{}, err
	}
	return marketing.ACContact{
		ID:        res.Contact.ID,
		Email:     res.Contact.Email,
		FirstName: res.Contact.FirstName,
		LastName:  res.Contact.LastName,
		Phone:     res.Contact.Phone,
	}, nil
}

func (c *Client) CreateTag(ctx context.Context, acc marketing.ACAccount, t marketing.ACTag) (marketing.ACTag, error) {
	var res struct {
		Tag tag `json:"tag"`
	}
	payload := map[string]tag{"tag": {Tag: t.Tag, TagType: t.TagType, Description: t.Description}}
	if err := c.post(ctx, acc, "/api/3/tags", payload, &res); err != nil {
		return marketing.ACTag{}, err
	}
	if res.Tag.ID == "" {
		return marketing.ACTag{}, errors.Errorf("activecampaign returned no id for tag %s", t.Tag)
	}
	return marketing.ACTag{
		ID:          res.Tag.ID,
		Tag:         res.Tag.Tag,
		TagType:     res.Tag.TagType,
		Description: res.Tag.Description,
	}, nil
}
