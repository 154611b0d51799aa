package eventbritesvc

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/academia/core"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	conf := &core.Config{}
	conf.Eventbrite.BaseURL = srv.URL
	return NewClient(conf)
}

func TestClient_GetOrganizationEvents(t *testing.T) {
	var continuations []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/organizations/123/events/", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "organizer,venue", r.URL.Query().Get("expand"))

		cont := r.URL.Query().Get("continuation")
		continuations = append(continuations, cont)
		if cont == "" {
			_, _ = io.WriteString(w, `{"pagination":{"has_more_items":true,"continuation":"abc"},"events":[{"id":"1","name":{"text":"Intro"}}]}`)
			return
		}
		_, _ = io.WriteString(w, `{"pagination":{"has_more_items":false},"events":[{"id":"2","status":"live","start":{"utc":"2021-08-20T12:00:00Z","timezone":"America/New_York"}}]}`)
	})

	evts, err := c.GetOrganizationEvents(context.Background(), "tok", "123")
	require.NoError(t, err)
	require.Len(t, evts, 2)
	assert.Equal(t, []string{"", "abc"}, continuations)
	assert.Equal(t, "Intro", evts[0].Name.Text)
	assert.Equal(t, "live", evts[1].Status)
	assert.Equal(t, 2021, evts[1].Start.UTC.Year())
	assert.Equal(t, "America/New_York", evts[1].Start.Timezone)
}

func TestClient_GetOrganizationVenues(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/organizations/123/venues/", r.URL.Path)
		_, _ = io.WriteString(w, `{"venues":[{"id":"9","name":"4Geeks","address":{"address_1":"66 W Flagler St","city":"Miami"}}]}`)
	})

	venues, err := c.GetOrganizationVenues(context.Background(), "tok", "123")
	require.NoError(t, err)
	require.Len(t, venues, 1)
	assert.Equal(t, "66 W Flagler St", venues[0].Address.Address1)
}

func TestClient_GetEvent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/events/77/", r.URL.Path)
		_, _ = io.WriteString(w, `{"id":"77","organizer":{"id":"5","name":"4Geeks"}}`)
	})

	ev, err := c.GetEvent(context.Background(), "tok", c.baseURL+"/events/77/")
	require.NoError(t, err)
	assert.Equal(t, "77", ev.ID)
	require.NotNil(t, ev.Organizer)
	assert.Equal(t, "4Geeks", ev.Organizer.Name)

	_, err = c.GetEvent(context.Background(), "tok", "https://evil.test/events/77/")
	assert.EqualError(t, err, "unexpected eventbrite api url: https://evil.test/events/77/")
}

func TestClient_CreateOrganizationEvent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/organizations/123/events/", r.URL.Path)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		form, err := url.ParseQuery(string(body))
		require.NoError(t, err)
		assert.Equal(t, "Intro to Python", form.Get("event.name.html"))
		assert.Equal(t, "30", form.Get("event.capacity"))
		_, _ = io.WriteString(w, `{"id":"88"}`)
	})

	ev, err := c.CreateOrganizationEvent(context.Background(), "tok", "123", map[string]interface{}{
		"event.name.html": "Intro to Python",
		"event.capacity":  30,
	})
	require.NoError(t, err)
	assert.Equal(t, "88", ev.ID)
}

func TestClient_EventDescription(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			assert.Equal(t, "/events/88/structured_content/", r.URL.Path)
			_, _ = io.WriteString(w, `{"page_version_number":"3","modules":[]}`)
		case http.MethodPost:
			assert.Equal(t, "/events/88/structured_content/4/", r.URL.Path)
			var payload map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.Equal(t, true, payload["publish"])
			_, _ = io.WriteString(w, `{"page_version_number":"4"}`)
		}
	})

	content, err := c.GetEventDescription(context.Background(), "tok", "88")
	require.NoError(t, err)
	assert.Equal(t, "3", content.PageVersionNumber)

	content, err = c.CreateOrUpdateEventDescription(context.Background(), "tok", "88", "4", map[string]interface{}{"publish": true})
	require.NoError(t, err)
	assert.Equal(t, "4", content.PageVersionNumber)
}

func TestClient_APIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"status_code":401,"error":"INVALID_AUTH","error_description":"The OAuth token you provided was invalid."}`)
	})

	_, err := c.GetOrganizationVenues(context.Background(), "bad", "123")
	require.Error(t, err)
	apiErr, ok := err.(APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "INVALID_AUTH", apiErr.Code)
}
