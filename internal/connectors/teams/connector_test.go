package teams

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/membox-labs/membox-cli/internal/core/domain"
	"github.com/membox-labs/membox-cli/internal/core/ports/driven"
)

func TestSourceTag(t *testing.T) {
	c := New(Config{})
	assert.Equal(t, domain.SourceTeams, c.Source())
}

func TestAuthenticateWithoutCredentials(t *testing.T) {
	c := New(Config{TenantID: "t", ClientID: "c"}) // secret missing

	ok, err := c.Authenticate(context.Background())
	assert.False(t, ok)
	assert.NoError(t, err)
}

func TestFetchWithoutAuthenticate(t *testing.T) {
	c := New(Config{})

	_, err := c.Fetch(context.Background(), driven.FetchParams{})
	assert.ErrorIs(t, err, domain.ErrNotAuthenticated)
}

func TestFetchFollowsNextLink(t *testing.T) {
	var server *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/teams/team1/channels/chan1/messages", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			writeJSON(t, w, graphMessagePage{
				Value: []graphMessage{newGraphMessage("m2", "Robin", "<p>second</p>")},
			})
			return
		}
		writeJSON(t, w, graphMessagePage{
			Value:    []graphMessage{newGraphMessage("m1", "Robin", "<p>first</p>")},
			NextLink: server.URL + "/teams/team1/channels/chan1/messages?page=2",
		})
	})
	server = httptest.NewServer(mux)
	defer server.Close()

	c := New(Config{
		TeamID:     "team1",
		ChannelIDs: []string{"chan1"},
		BaseURL:    server.URL,
	})
	c.client = server.Client()

	records, err := c.Fetch(context.Background(), driven.FetchParams{MaxItems: 10})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "m1", records[0]["id"])
	assert.Equal(t, "first", records[0]["message"])
	assert.Equal(t, "m2", records[1]["id"])
}

func TestFetchHonoursMaxItems(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/teams/team1/channels/chan1/messages", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(t, w, graphMessagePage{
			Value: []graphMessage{
				newGraphMessage("m1", "A", "one"),
				newGraphMessage("m2", "B", "two"),
				newGraphMessage("m3", "C", "three"),
			},
		})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	c := New(Config{TeamID: "team1", ChannelIDs: []string{"chan1"}, BaseURL: server.URL})
	c.client = server.Client()

	records, err := c.Fetch(context.Background(), driven.FetchParams{MaxItems: 2})
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestNormalize(t *testing.T) {
	c := New(Config{})

	docs := c.Normalize([]driven.RawRecord{{
		"id":      "1618",
		"sender":  "Robin",
		"created": "2024-06-10T09:00:00Z",
		"message": "standup moved to 10am",
		"channel": "chan1",
	}})

	require.Len(t, docs, 1)
	doc := docs[0]
	assert.Equal(t, "teams_1618", doc.ID)
	assert.Equal(t, domain.SourceTeams, doc.Source)
	assert.Equal(t, "Robin", doc.Sender)
	assert.Equal(t, "standup moved to 10am", doc.Body)
	assert.Equal(t, "chan1", doc.Extra["channel"])
}

func TestFlattenHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"paragraphs", "<p>hello</p><p>world</p>", "hello\nworld"},
		{"line breaks", "one<br/>two", "one\ntwo"},
		{"entities", "<div>a &amp; b</div>", "a & b"},
		{"nested tags", `<div><span style="color:red">alert</span> raised</div>`, "alert raised"},
		{"plain text", "no markup here", "no markup here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, flattenHTML(tt.in))
		})
	}
}

func newGraphMessage(id, sender, content string) graphMessage {
	msg := graphMessage{
		ID:              id,
		CreatedDateTime: "2024-06-10T09:00:00Z",
	}
	msg.Body.ContentType = "html"
	msg.Body.Content = content
	msg.From = &struct {
		User *struct {
			DisplayName string `json:"displayName"`
		} `json:"user"`
	}{
		User: &struct {
			DisplayName string `json:"displayName"`
		}{DisplayName: sender},
	}
	return msg
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}
