package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/dod/internal/apitest"
	"github.com/Makepad-fr/dod/internal/model"
)

func newTestClient(t *testing.T, token *string, unauthorized *int) (*Client, *apitest.Server) {
	t.Helper()
	srv := apitest.NewServer(t)
	c := New(srv.URL(),
		WithTokenSource(func() string { return *token }),
		WithUnauthorizedHandler(func() { *unauthorized++ }),
	)
	return c, srv
}

func TestClient_AttachesTokenReadAtSendTime(t *testing.T) {
	token := ""
	calls := 0
	c, srv := newTestClient(t, &token, &calls)
	u := srv.AddUser("alice", "alice@example.com", "secret1")

	token = srv.IssueToken(u)
	_, err := c.Projects.List(context.Background())
	require.NoError(t, err)

	rec, ok := srv.LastRequest(http.MethodGet, "/projects/")
	require.True(t, ok)
	assert.Equal(t, "Bearer "+token, rec.Authorization)

	// token source re-read on the next call
	token = srv.IssueToken(u)
	_, err = c.Projects.List(context.Background())
	require.NoError(t, err)
	rec, _ = srv.LastRequest(http.MethodGet, "/projects/")
	assert.Equal(t, "Bearer "+token, rec.Authorization)
	assert.Equal(t, 0, calls)
}

func TestClient_NoTokenNoHeader(t *testing.T) {
	token := ""
	calls := 0
	c, srv := newTestClient(t, &token, &calls)

	_, err := c.Auth.Login(context.Background(), "nobody@example.com", "x")
	require.Error(t, err)

	rec, ok := srv.LastRequest(http.MethodPost, "/auth/login")
	require.True(t, ok)
	assert.Empty(t, rec.Authorization)
	assert.Empty(t, c.AuthorizationHeader())
}

func TestClient_UnauthorizedFiresHandlerOnAnyEndpoint(t *testing.T) {
	tests := []struct {
		name string
		call func(c *Client) error
	}{
		{"list projects", func(c *Client) error { _, err := c.Projects.List(context.Background()); return err }},
		{"create project", func(c *Client) error { _, err := c.Projects.Create(context.Background(), "Website", ""); return err }},
		{"list dods", func(c *Client) error { _, err := c.Projects.ListDoDs(context.Background(), 7); return err }},
		{"create dod", func(c *Client) error { _, err := c.DoDs.Create(context.Background(), "Release", "", 7); return err }},
		{"add item", func(c *Client) error { _, err := c.DoDs.AddItem(context.Background(), 3, NewItem{Title: "Tests"}); return err }},
		{"add participant", func(c *Client) error {
			_, err := c.Projects.AddParticipant(context.Background(), 7, "bob@example.com", model.RoleViewer)
			return err
		}},
		{"login", func(c *Client) error { _, err := c.Auth.Login(context.Background(), "a@b.com", "wrong"); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := "expired"
			calls := 0
			c, _ := newTestClient(t, &token, &calls)

			err := tt.call(c)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnauthorized))
			assert.Equal(t, 1, calls)
		})
	}
}

func TestClient_ErrorMessageNormalization(t *testing.T) {
	token := ""
	calls := 0
	c, srv := newTestClient(t, &token, &calls)
	u := srv.AddUser("alice", "alice@example.com", "secret1")
	token = srv.IssueToken(u)

	srv.Fail(http.MethodPost, "/projects/", http.StatusConflict, "Project already exists")
	_, err := c.Projects.Create(context.Background(), "Website", "")
	require.Error(t, err)
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "Project already exists", Message(err, "Failed to create project"))

	srv.Fail(http.MethodGet, "/projects/", http.StatusInternalServerError, "")
	_, err = c.Projects.List(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Failed to fetch projects", Message(err, "Failed to fetch projects"))
	assert.False(t, errors.Is(err, ErrUnauthorized))
	assert.Equal(t, 0, calls)
}

func TestClient_TransportErrorUsesFallback(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url)
	_, err := c.Projects.List(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Failed to fetch projects", Message(err, "Failed to fetch projects"))
}

func TestDoDs_AddItemDefaults(t *testing.T) {
	token := ""
	calls := 0
	c, srv := newTestClient(t, &token, &calls)
	u := srv.AddUser("alice", "alice@example.com", "secret1")
	token = srv.IssueToken(u)
	p := srv.AddProject(u, "Website Revamp", "")

	dod, err := c.DoDs.Create(context.Background(), "Release", "", p.ID)
	require.NoError(t, err)

	_, err = c.DoDs.AddItem(context.Background(), dod.ID, NewItem{Title: "Code reviewed"})
	require.NoError(t, err)

	rec, ok := srv.LastRequest(http.MethodPost, "/dods/"+uintString(dod.ID)+"/items")
	require.True(t, ok)
	var body map[string]any
	require.NoError(t, rec.Decode(&body))
	assert.Equal(t, true, body["is_required"])
	assert.Equal(t, float64(0), body["order"])

	optional, order := false, 4
	_, err = c.DoDs.AddItem(context.Background(), dod.ID, NewItem{Title: "Docs", IsRequired: &optional, Order: &order})
	require.NoError(t, err)
	rec, _ = srv.LastRequest(http.MethodPost, "/dods/"+uintString(dod.ID)+"/items")
	require.NoError(t, rec.Decode(&body))
	assert.Equal(t, false, body["is_required"])
	assert.Equal(t, float64(4), body["order"])
}

func TestProjects_CreateAndListRoundTrip(t *testing.T) {
	token := ""
	calls := 0
	c, srv := newTestClient(t, &token, &calls)
	u := srv.AddUser("alice", "alice@example.com", "secret1")
	token = srv.IssueToken(u)

	p, err := c.Projects.Create(context.Background(), "Website Revamp", "")
	require.NoError(t, err)
	assert.NotZero(t, p.ID)

	rec, ok := srv.LastRequest(http.MethodPost, "/projects/")
	require.True(t, ok)
	assert.JSONEq(t, `{"name":"Website Revamp","description":""}`, string(rec.Body))

	first, err := c.Projects.List(context.Background())
	require.NoError(t, err)
	second, err := c.Projects.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	require.Len(t, first, 1)
	assert.Equal(t, "Website Revamp", first[0].Name)
}

func TestProjects_AddParticipantAndListDoDs(t *testing.T) {
	token := ""
	calls := 0
	c, srv := newTestClient(t, &token, &calls)
	u := srv.AddUser("alice", "alice@example.com", "secret1")
	srv.AddUser("bob", "bob@example.com", "secret2")
	token = srv.IssueToken(u)
	p := srv.AddProject(u, "Website Revamp", "")

	pp, err := c.Projects.AddParticipant(context.Background(), p.ID, "bob@example.com", model.RoleEditor)
	require.NoError(t, err)
	assert.Equal(t, model.RoleEditor, pp.Role)

	_, err = c.Projects.AddParticipant(context.Background(), p.ID, "bob@example.com", model.RoleEditor)
	assert.Equal(t, "User already participant", Message(err, "Failed to add participant"))

	dods, err := c.Projects.ListDoDs(context.Background(), p.ID)
	require.NoError(t, err)
	assert.NotNil(t, dods)
	assert.Empty(t, dods)
}

func TestDoDs_SuccessWithoutPayloadIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	t.Cleanup(srv.Close)
	c := New(srv.URL)

	d, err := c.DoDs.Create(context.Background(), "Release", "", 1)
	assert.Nil(t, d)
	assert.EqualError(t, err, "create dod: response has no dod")

	it, err := c.DoDs.AddItem(context.Background(), 1, NewItem{Title: "Tests pass"})
	assert.Nil(t, it)
	assert.EqualError(t, err, "add item: response has no item")
}

func TestNew_TimeoutAndUserAgent(t *testing.T) {
	var ua string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		w.Write([]byte(`{"projects":[]}`))
	}))
	t.Cleanup(srv.Close)

	assert.Equal(t, defaultTimeout, New(srv.URL).http.Timeout)
	assert.Equal(t, defaultTimeout, New(srv.URL, WithTimeout(0)).http.Timeout)
	assert.Equal(t, 3*time.Second, New(srv.URL, WithTimeout(3*time.Second)).http.Timeout)

	c := New(srv.URL, WithUserAgent("dod/1.2.0"))
	_, err := c.Projects.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "dod/1.2.0", ua)

	_, err = New(srv.URL, WithUserAgent("")).Projects.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "dod-cli", ua)
}

func uintString(n uint) string {
	return model.FormatID(n)
}
