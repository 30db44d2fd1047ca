package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bluewave/kiosko/internal/schema"
)

func TestCampaignFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/campaign/demo", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"token": "demo",
			"campaign_id": 12,
			"name": "Clima laboral",
			"require_area": true,
			"require_shift": false,
			"shifts": ["matutino", "vespertino"],
			"snapshot": {"schema": {"questions": [
				{"id": "q1", "type": "likert", "required": true, "text": {"es": "¿Qué tal?"}}
			]}}
		}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	campaign, err := c.Campaign(context.Background(), "demo")
	require.NoError(t, err)

	assert.Equal(t, int64(12), campaign.CampaignID)
	assert.Equal(t, "Clima laboral", campaign.Name)
	assert.True(t, campaign.RequireArea)
	assert.Equal(t, []string{"matutino", "vespertino"}, campaign.Shifts)
	require.NotNil(t, campaign.Snapshot.Schema)
	require.Len(t, campaign.Snapshot.Schema.Questions, 1)
	assert.Equal(t, schema.QuestionLikert, campaign.Snapshot.Schema.Questions[0].Type)
}

func TestCampaignNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	_, err := c.Campaign(context.Background(), "gone")
	assert.ErrorIs(t, err, ErrCampaignNotFound)
}

func TestCampaignServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	_, err := c.Campaign(context.Background(), "demo")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCampaignNotFound)
}

func TestAreas(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/areas", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items": [{"id": 1, "name": "Cocina"}, {"id": 2, "name": "Piso"}]}`))
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	areas, err := c.Areas(context.Background())
	require.NoError(t, err)

	require.Len(t, areas, 2)
	assert.Equal(t, Area{ID: 1, Name: "Cocina"}, areas[0])
}

func TestSubmitPostsWirePayload(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/submit/demo", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	area := int64(3)
	payload := SubmitPayload{
		Lang:    "es",
		AreaID:  &area,
		Shift:   "matutino",
		Answers: schema.AnswerSet{"q1": schema.IntValue(4), "q2": schema.StringValue("si")},
		Source:  "kiosko",
	}

	c := New(Config{BaseURL: srv.URL})
	require.NoError(t, c.Submit(context.Background(), "demo", payload))

	assert.Equal(t, "es", got["lang"])
	assert.Equal(t, float64(3), got["area_id"])
	assert.Equal(t, "kiosko", got["source"])
	answers, ok := got["answers"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(4), answers["q1"])
	assert.Equal(t, "si", answers["q2"])
}

func TestSubmitNon2xxFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := New(Config{BaseURL: srv.URL})
	err := c.Submit(context.Background(), "demo", SubmitPayload{Lang: "es", Source: "kiosko"})
	assert.Error(t, err)
}

func TestSubmitTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // connection refused from here on

	c := New(Config{BaseURL: srv.URL})
	err := c.Submit(context.Background(), "demo", SubmitPayload{Lang: "es", Source: "kiosko"})
	assert.Error(t, err)
}
