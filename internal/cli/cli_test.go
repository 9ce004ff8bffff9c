package cli

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/dod/internal/app"
	"github.com/Makepad-fr/dod/internal/apitest"
	"github.com/Makepad-fr/dod/internal/model"
	"github.com/Makepad-fr/dod/internal/store/credstore"
	"github.com/Makepad-fr/dod/internal/ui"
)

type harness struct {
	t     *testing.T
	srv   *apitest.Server
	store *credstore.MemoryStorage
	alice model.User
}

type result struct {
	code   int
	stdout string
	stderr string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv("DOD_THEME", "mono")
	t.Setenv("DOD_DEBUG", "false")
	t.Cleanup(func() { ui.SetTheme("classic") })
	srv := apitest.NewServer(t)
	return &harness{
		t:     t,
		srv:   srv,
		store: credstore.NewMemoryStorage(),
		alice: srv.AddUser("alice", "alice@example.com", "secret1"),
	}
}

func (h *harness) run(stdin string, args ...string) result {
	h.t.Helper()
	var out, errOut bytes.Buffer
	args = append([]string{"--api-url", h.srv.URL()}, args...)
	code := run(args, strings.NewReader(stdin), &out, &errOut,
		app.WithStorage(h.store),
		app.WithLogOutput(io.Discard),
	)
	return result{code: code, stdout: out.String(), stderr: errOut.String()}
}

func (h *harness) login() {
	h.t.Helper()
	r := h.run("", "login", "--email", "alice@example.com", "--password", "secret1")
	require.Equal(h.t, 0, r.code, r.stderr)
}

func TestLoginPersistsSession(t *testing.T) {
	h := newHarness(t)

	r := h.run("", "login", "-e", "alice@example.com", "-p", "secret1")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Equal(t, "ok logged in as alice <alice@example.com>\n", r.stdout)
	assert.Equal(t, 2, h.store.Len())

	r = h.run("", "whoami")
	assert.Equal(t, 0, r.code)
	assert.Equal(t, "alice <alice@example.com>\n", r.stdout)
}

func TestLoginReadsPasswordFromStdin(t *testing.T) {
	h := newHarness(t)
	r := h.run("secret1\n", "login", "--email", "alice@example.com")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stderr, "Password: ")
}

func TestLoginFailures(t *testing.T) {
	h := newHarness(t)

	r := h.run("", "login", "--email", "alice@example.com", "--password", "wrong")
	assert.Equal(t, 1, r.code)
	assert.Equal(t, "error: Invalid credentials\n", r.stderr)
	assert.Zero(t, h.store.Len())

	r = h.run("", "login", "--email", "nope", "--password", "x")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, "Invalid email address")
	assert.Equal(t, 1, h.srv.Count(http.MethodPost, "/auth/login"), "invalid input is not sent")
}

func TestRegister(t *testing.T) {
	h := newHarness(t)
	r := h.run("", "register", "-u", "bob", "-e", "bob@example.com", "-p", "secret1")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Equal(t, "ok account created, logged in as bob\n", r.stdout)

	r = h.run("", "register", "-u", "bo", "-e", "bo@example.com", "-p", "123")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, "Username must be at least 3 characters")
	assert.Contains(t, r.stderr, "Password must be at least 6 characters")
}

func TestLogoutClearsStorage(t *testing.T) {
	h := newHarness(t)
	h.login()

	r := h.run("", "logout")
	assert.Equal(t, 0, r.code)
	assert.Zero(t, h.store.Len())

	r = h.run("", "whoami")
	assert.Equal(t, 1, r.code)
	assert.Equal(t, "error: not logged in, run: dod login\n", r.stderr)
}

func TestStatusShowsExpiry(t *testing.T) {
	h := newHarness(t)
	h.login()

	r := h.run("", "status")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, "alice <alice@example.com>")
	assert.Contains(t, r.stdout, h.srv.URL())
	assert.Contains(t, r.stdout, "valid until")
}

func TestStatusOpaqueToken(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.store.SetMany(map[string]string{
		credstore.KeyToken: "opaque",
		credstore.KeyUser:  `{"id":1,"username":"alice","email":"alice@example.com"}`,
	}))
	r := h.run("", "status")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, "expiry unknown")
}

func TestStatusRequiresLogin(t *testing.T) {
	h := newHarness(t)
	r := h.run("", "status")
	assert.Equal(t, 1, r.code)
	assert.Equal(t, "error: not logged in, run: dod login\n", r.stderr)
}

func TestDoDCommandsRejectEmptySuccess(t *testing.T) {
	t.Setenv("DOD_THEME", "mono")
	t.Cleanup(func() { ui.SetTheme("classic") })
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	t.Cleanup(srv.Close)
	store := credstore.NewMemoryStorage()
	require.NoError(t, store.SetMany(map[string]string{
		credstore.KeyToken: "tok",
		credstore.KeyUser:  `{"id":1,"username":"alice","email":"alice@example.com"}`,
	}))

	for _, args := range [][]string{
		{"dod", "create", "1", "--title", "Release"},
		{"dod", "add-item", "1", "--title", "Tests pass"},
	} {
		var out, errOut bytes.Buffer
		code := run(append([]string{"--api-url", srv.URL}, args...), strings.NewReader(""), &out, &errOut,
			app.WithStorage(store),
			app.WithLogOutput(io.Discard),
		)
		assert.Equal(t, 1, code, args)
		assert.Contains(t, errOut.String(), "response has no", args)
		assert.Empty(t, out.String(), args)
	}
}

func TestProjectsCreateListShow(t *testing.T) {
	h := newHarness(t)
	h.login()

	r := h.run("", "projects", "create", "--name", "Website", "--description", "marketing site")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, "created project #")

	bob := h.srv.AddUser("bob", "bob@example.com", "secret1")
	h.srv.AddProject(bob, "Mobile app", "iOS and Android")

	r = h.run("", "projects", "ls")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, "Website")
	assert.NotContains(t, r.stdout, "Mobile app", "only owned or shared projects are listed")
	assert.Contains(t, r.stdout, "1 project(s) found")

	r = h.run("", "projects", "ls", "--search", "MARKETING")
	assert.Contains(t, r.stdout, "Website")
	r = h.run("", "projects", "ls", "--search", "billing")
	assert.Equal(t, "No projects found\n", r.stdout)
}

func TestProjectsCreateRejectsShortName(t *testing.T) {
	h := newHarness(t)
	h.login()

	r := h.run("", "projects", "create", "--name", "ab")
	assert.Equal(t, 1, r.code)
	assert.Equal(t, "error: Project name must be at least 3 characters\n", r.stderr)
	assert.Zero(t, h.srv.Count(http.MethodPost, "/projects/"))
}

func TestDoDWorkflow(t *testing.T) {
	h := newHarness(t)
	h.login()
	p := h.srv.AddProject(h.alice, "Website", "")
	pid := model.FormatID(p.ID)

	r := h.run("", "projects", "show", pid)
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, "No Definition of Done yet")

	r = h.run("", "dod", "create", pid, "--title", "Release")
	require.Equal(t, 0, r.code, r.stderr)
	dods := h.srv.DoDs(p.ID)
	require.Len(t, dods, 1)
	did := model.FormatID(dods[0].ID)

	r = h.run("", "dod", "add-item", did, "--title", "Changelog", "--optional", "--order", "10")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, "added optional item")
	r = h.run("", "dod", "add-item", did, "--title", "Tests pass")
	require.Equal(t, 0, r.code, r.stderr)

	rec, ok := h.srv.LastRequest(http.MethodPost, "/dods/"+did+"/items")
	require.True(t, ok)
	assert.JSONEq(t, `{"title":"Tests pass","description":"","is_required":true,"order":0}`, string(rec.Body))

	r = h.run("", "projects", "show", pid)
	require.Equal(t, 0, r.code, r.stderr)
	assert.Less(t, strings.Index(r.stdout, "* Tests pass"), strings.Index(r.stdout, "- Changelog"), "items sorted by order")
	assert.Contains(t, r.stdout, "1 of 2 required")
	assert.Contains(t, r.stdout, "Created by: alice")
}

func TestAddParticipant(t *testing.T) {
	h := newHarness(t)
	h.login()
	p := h.srv.AddProject(h.alice, "Website", "")
	h.srv.AddUser("bob", "bob@example.com", "secret1")

	r := h.run("", "projects", "add-participant", model.FormatID(p.ID), "--email", "bob@example.com", "--role", "Editor")
	require.Equal(t, 0, r.code, r.stderr)
	assert.Contains(t, r.stdout, "added bob <bob@example.com> to project")

	assert.Contains(t, r.stdout, "as editor")
	rec, ok := h.srv.LastRequest(http.MethodPost, "/projects/"+model.FormatID(p.ID)+"/participants")
	require.True(t, ok)
	assert.JSONEq(t, `{"email":"bob@example.com","role":"editor"}`, string(rec.Body))

	r = h.run("", "projects", "add-participant", model.FormatID(p.ID), "--email", "bob@example.com", "--role", "owner")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.stderr, "Role must be editor or viewer")
}

func TestExpiredSession(t *testing.T) {
	h := newHarness(t)
	h.login()
	h.srv.RevokeAll()

	r := h.run("", "projects", "ls")
	assert.Equal(t, 1, r.code)
	assert.Equal(t, "error: session expired, run: dod login\n", r.stderr)
	assert.Zero(t, h.store.Len(), "a 401 clears the stored session")
}

func TestUsageErrors(t *testing.T) {
	h := newHarness(t)

	tests := []struct {
		name string
		args []string
	}{
		{"no args", nil},
		{"unknown command", []string{"frobnicate"}},
		{"missing id", []string{"projects", "show"}},
		{"bad id", []string{"projects", "show", "abc"}},
		{"unknown flag", []string{"whoami", "--nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := h.run("", tt.args...)
			assert.Equal(t, 2, r.code, r.stderr)
		})
	}
}
