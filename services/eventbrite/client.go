package eventbritesvc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/trezcool/academia/core"
	"github.com/trezcool/academia/core/events"
)

// APIError is an error answered by eventbrite.
type APIError struct {
	StatusCode  int    `json:"status_code"`
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (err APIError) Error() string {
	return fmt.Sprintf("eventbrite %d %s: %s", err.StatusCode, err.Code, err.Description)
}

type pagination struct {
	HasMoreItems bool   `json:"has_more_items"`
	Continuation string `json:"continuation"`
}

// Client calls the eventbrite v3 API.
type Client struct {
	baseURL string
	send    func(ctx context.Context, req rest.Request) (*rest.Response, error)
}

var _ events.Eventbrite = (*Client)(nil)

func NewClient(conf *core.Config) *Client {
	return &Client{baseURL: conf.Eventbrite.BaseURL, send: rest.SendWithContext}
}

func (c *Client) do(ctx context.Context, req rest.Request, token string, dst interface{}) error {
	if req.Headers == nil {
		req.Headers = make(map[string]string)
	}
	req.Headers["Authorization"] = "Bearer " + token
	req.Headers["Accept"] = "application/json"

	res, err := c.send(ctx, req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", req.Method, req.BaseURL)
	}
	if res.StatusCode >= http.StatusBadRequest {
		apiErr := APIError{StatusCode: res.StatusCode}
		_ = json.Unmarshal([]byte(res.Body), &apiErr)
		apiErr.StatusCode = res.StatusCode
		return apiErr
	}
	if dst == nil {
		return nil
	}
	return errors.Wrap(json.Unmarshal([]byte(res.Body), dst), "decoding eventbrite response")
}

func (c *Client) url(path string, args ...interface{}) string {
	return c.baseURL + fmt.Sprintf(path, args...)
}

// formBody encodes the flat "event.name.html" like keys eventbrite accepts as a form.
func formBody(payload map[string]interface{}) []byte {
	keys := make([]string, 0, len(payload))
	for k := range payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	form := url.Values{}
	for _, k := range keys {
		form.Set(k, fmt.Sprint(payload[k]))
	}
	return []byte(form.Encode())
}

func (c *Client) GetOrganizationVenues(ctx context.Context, token, orgID string) ([]events.EBVenue, error) {
	var venues []events.EBVenue
	continuation := ""
	for {
		var res struct {
			Pagination pagination       `json:"pagination"`
			Venues     []events.EBVenue `json:"venues"`
		}
		req := rest.Request{Method: rest.Get, BaseURL: c.url("/organizations/%s/venues/", orgID)}
		if continuation != "" {
			req.QueryParams = map[string]string{"continuation": continuation}
		}
		if err := c.do(ctx, req, token, &res); err != nil {
			return nil, err
		}
		venues = append(venues, res.Venues...)
		if !res.Pagination.HasMoreItems || res.Pagination.Continuation == "" {
			return venues, nil
		}
		continuation = res.Pagination.Continuation
	}
}

func (c *Client) GetOrganizationEvents(ctx context.Context, token, orgID string) ([]events.EBEvent, error) {
	var evts []events.EBEvent
	continuation := ""
	for {
		var res struct {
			Pagination pagination       `json:"pagination"`
			Events     []events.EBEvent `json:"events"`
		}
		req := rest.Request{
			Method:      rest.Get,
			BaseURL:     c.url("/organizations/%s/events/", orgID),
			QueryParams: map[string]string{"expand": "organizer,venue"},
		}
		if continuation != "" {
			req.QueryParams["continuation"] = continuation
		}
		if err := c.do(ctx, req, token, &res); err != nil {
			return nil, err
		}
		evts = append(evts, res.Events...)
		if !res.Pagination.HasMoreItems || res.Pagination.Continuation == "" {
			return evts, nil
		}
		continuation = res.Pagination.Continuation
	}
}

func (c *Client) GetEvent(ctx context.Context, token, apiURL string) (*events.EBEvent, error) {
	if !strings.HasPrefix(apiURL, c.baseURL+"/") {
		return nil, errors.Errorf("unexpected eventbrite api url: %s", apiURL)
	}
	var ev events.EBEvent
	req := rest.Request{
		Method:      rest.Get,
		BaseURL:     apiURL,
		QueryParams: map[string]string{"expand": "organizer,venue"},
	}
	if err := c.do(ctx, req, token, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

func (c *Client) CreateOrganizationEvent(ctx context.Context, token, orgID string, payload map[string]interface{}) (events.EBEvent, error) {
	var ev events.EBEvent
	req := rest.Request{
		Method:  rest.Post,
		BaseURL: c.url("/organizations/%s/events/", orgID),
		Headers: map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
		Body:    formBody(payload),
	}
	err := c.do(ctx, req, token, &ev)
	return ev, err
}

func (c *Client) UpdateOrganizationEvent(ctx context.Context, token, eventID string, payload map[string]interface{}) (events.EBEvent, error) {
	var ev events.EBEvent
	req := rest.Request{
		Method:  rest.Post,
		BaseURL: c.url("/events/%s/", eventID),
		Headers: map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
		Body:    formBody(payload),
	}
	err := c.do(ctx, req, token, &ev)
	return ev, err
}

func (c *Client) GetEventDescription(ctx context.Context, token, eventID string) (events.EBStructuredContent, error) {
	var content events.EBStructuredContent
	req := rest.Request{Method: rest.Get, BaseURL: c.url("/events/%s/structured_content/", eventID)}
	err := c.do(ctx, req, token, &content)
	return content, err
}

func (c *Client) CreateOrUpdateEventDescription(
	ctx context.Context,
	token, eventID, version string,
	payload map[string]interface{},
) (events.EBStructuredContent, error) {
	var content events.EBStructuredContent
	body, err := json.Marshal(payload)
	if err != nil {
		return content, errors.Wrap(err, "encoding description")
	}
	req := rest.Request{
		Method:  rest.Post,
		BaseURL: c.url("/events/%s/structured_content/%s/", eventID, version),
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    body,
	}
	err = c.do(ctx, req, token, &content)
	return content, err
}
