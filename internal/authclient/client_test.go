package authclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/Ayu-zh/placement-connector/internal/api/request"
	"github.com/Ayu-zh/placement-connector/internal/factory"
	"github.com/Ayu-zh/placement-connector/internal/model"
	"github.com/Ayu-zh/placement-connector/internal/seed"
	"github.com/Ayu-zh/placement-connector/internal/session"
)

type ClientSuite struct {
	suite.Suite
	app    *factory.TestApp
	server *httptest.Server
	ctx    context.Context
	// failLookups makes the role-store endpoint fail
	failLookups atomic.Bool
	managers    []*session.Manager
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) SetupTest() {
	s.app = factory.NewTestApp()
	s.ctx = context.Background()
	s.Require().NoError(s.app.SeedDemo(s.ctx))
	s.failLookups.Store(false)
	s.managers = nil

	router := s.app.Router(time.Second)
	s.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.failLookups.Load() && strings.HasPrefix(r.URL.Path, "/api/v1/identities/") {
			http.Error(w, "upstream down", http.StatusBadGateway)
			return
		}
		router.ServeHTTP(w, r)
	}))
}

// TearDownTest ends the event streams before the server waits on them
func (s *ClientSuite) TearDownTest() {
	for _, m := range s.managers {
		s.NoError(m.Close())
	}
	s.NoError(s.app.Close())
	s.server.Close()
}

// newManager builds a session manager that reaches the authority over HTTP
func (s *ClientSuite) newManager() (*session.Manager, *Client) {
	var m *session.Manager
	client := New(s.server.URL, func() string { return m.Token() })
	m, err := session.New(session.Config{
		Authority:     client,
		Roles:         client,
		RetryInterval: 10 * time.Millisecond,
	})
	s.Require().NoError(err)
	s.managers = append(s.managers, m)
	return m, client
}

func (s *ClientSuite) TestSignInErrorsMapToSentinels() {
	client := New(s.server.URL, nil)

	grant, err := client.SignIn(s.ctx, seed.AdminEmail, seed.AdminPassword)
	s.Require().NoError(err)
	s.NotEmpty(grant.Token)

	_, err = client.SignIn(s.ctx, seed.AdminEmail, "wrong")
	s.ErrorIs(err, model.ErrInvalidCredentials)

	var apiErr *Error
	s.Require().ErrorAs(err, &apiErr)
	s.Equal(http.StatusUnauthorized, apiErr.Status)
	s.Equal("INVALID_CREDENTIALS", apiErr.Code)
}

func (s *ClientSuite) TestEmptySecretIsACredentialFailure() {
	client := New(s.server.URL, nil)
	_, err := client.SignIn(s.ctx, seed.AdminEmail, "")
	s.ErrorIs(err, model.ErrInvalidCredentials)
	s.NotErrorIs(err, session.ErrAuthorityUnavailable)

	m, _ := s.newManager()
	err = m.Login(s.ctx, seed.AdminEmail, "")
	s.ErrorIs(err, session.ErrAuthentication)
	s.NotErrorIs(err, session.ErrAuthorityUnavailable)

	ok, err := m.AdminLogin(s.ctx, "", "x")
	s.False(ok)
	s.ErrorIs(err, session.ErrAuthentication)
	s.NotErrorIs(err, session.ErrAuthorityUnavailable)
	s.Nil(m.CurrentIdentity())
}

func (s *ClientSuite) TestRegisterThenLogin() {
	client := New(s.server.URL, nil)
	created, err := client.Register(s.ctx, request.RegisterRequest{
		Name: "Ananya Rao", Email: "ananya.r@college.edu", Password: "password123", Department: "Civil",
	})
	s.Require().NoError(err)
	s.Equal(model.RoleStudent, created.Role)

	_, err = client.Register(s.ctx, request.RegisterRequest{
		Name: "Ananya Rao", Email: "ananya.r@college.edu", Password: "password123", Department: "Civil",
	})
	s.ErrorIs(err, model.ErrEmailTaken)

	m, _ := s.newManager()
	s.Require().NoError(m.Login(s.ctx, "ananya.r@college.edu", "password123"))
	s.Equal(created.ID, m.CurrentIdentity().ID)
	s.False(m.IsAdmin())
}

func (s *ClientSuite) TestResumeAndSignOut() {
	client := New(s.server.URL, nil)
	grant, err := client.SignIn(s.ctx, "rahul.s@college.edu", seed.StudentPassword)
	s.Require().NoError(err)

	resumed, err := client.Resume(s.ctx, grant.Token)
	s.Require().NoError(err)
	s.Equal(grant.SessionID, resumed.SessionID)

	s.Require().NoError(client.SignOut(s.ctx, grant.Token))
	s.Require().NoError(client.SignOut(s.ctx, grant.Token))

	_, err = client.Resume(s.ctx, grant.Token)
	s.ErrorIs(err, model.ErrInvalidSession)
}

func (s *ClientSuite) TestAdminLoginOverHTTP() {
	m, client := s.newManager()

	ok, err := m.AdminLogin(s.ctx, seed.AdminEmail, seed.AdminPassword)
	s.Require().NoError(err)
	s.True(ok)
	s.True(m.IsAdmin())

	stats, err := client.Stats(s.ctx)
	s.Require().NoError(err)
	s.Equal(5, stats.TotalStudents)
}

func (s *ClientSuite) TestStudentAdminLoginIsRevoked() {
	m, client := s.newManager()

	ok, err := m.AdminLogin(s.ctx, "rahul.s@college.edu", seed.StudentPassword)
	s.ErrorIs(err, session.ErrAuthorizationDenied)
	s.False(ok)
	s.Equal(session.StateAnonymous, m.State())

	// No session of the student survives on the server
	sessions, err := s.app.Storage.ListAuthSessions(s.ctx)
	s.Require().NoError(err)
	for _, sess := range sessions {
		identity, err := s.app.Identity.LookupIdentity(s.ctx, sess.IdentityID)
		s.Require().NoError(err)
		s.NotEqual("rahul.s@college.edu", identity.Email)
	}

	_, err = client.ListJobs(s.ctx)
	s.ErrorIs(err, model.ErrInvalidSession)
}

func (s *ClientSuite) TestRoleLookupFailureDeniesAdmin() {
	m, _ := s.newManager()
	s.failLookups.Store(true)

	ok, err := m.AdminLogin(s.ctx, seed.AdminEmail, seed.AdminPassword)
	s.False(ok)
	s.ErrorIs(err, session.ErrAuthorizationDenied)
	s.ErrorIs(err, session.ErrAuthorityUnavailable)
	s.False(m.IsAdmin())
	s.Equal(session.StateAnonymous, m.State())
}

func (s *ClientSuite) TestServerDownIsUnavailable() {
	m, _ := s.newManager()
	s.server.Close()

	err := m.Login(s.ctx, seed.AdminEmail, seed.AdminPassword)
	s.ErrorIs(err, session.ErrAuthentication)
	s.ErrorIs(err, session.ErrAuthorityUnavailable)
	s.Equal(session.StateAnonymous, m.State())
}

func (s *ClientSuite) TestWatchFollowsServerSignOut() {
	admin, _ := s.newManager()
	_, err := admin.AdminLogin(s.ctx, seed.AdminEmail, seed.AdminPassword)
	s.Require().NoError(err)

	student, _ := s.newManager()
	s.Require().NoError(student.Login(s.ctx, "priya.p@college.edu", seed.StudentPassword))
	s.Require().NoError(student.Start(s.ctx))
	s.Eventually(func() bool { return s.app.Hub.SubscriberCount() > 0 }, 2*time.Second, 5*time.Millisecond)

	victim := student.CurrentIdentity()
	s.Require().NoError(s.app.Students.Delete(s.ctx, admin.CurrentIdentity(), victim.ID))

	s.Eventually(func() bool {
		return student.State() == session.StateAnonymous
	}, 2*time.Second, 5*time.Millisecond)
	s.Nil(student.CurrentIdentity())
	s.Empty(student.Token())
}

func (s *ClientSuite) TestWatchRejectsRevokedToken() {
	client := New(s.server.URL, nil)
	grant, err := client.SignIn(s.ctx, "rahul.s@college.edu", seed.StudentPassword)
	s.Require().NoError(err)
	s.Require().NoError(client.SignOut(s.ctx, grant.Token))

	_, err = client.Watch(s.ctx, grant.Token)
	s.ErrorIs(err, model.ErrInvalidSession)
}

func TestDecodeError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"forbidden", http.StatusForbidden, `{"error":{"code":"FORBIDDEN","message":"no"}}`, model.ErrForbidden},
		{"email taken", http.StatusConflict, `{"error":{"code":"EMAIL_TAKEN","message":"taken"}}`, model.ErrEmailTaken},
		{"validation", http.StatusBadRequest, `{"error":{"code":"INVALID_INPUT","message":"bad"}}`, model.ErrInvalidInput},
		{"malformed request", http.StatusBadRequest, `{"error":{"code":"INVALID_REQUEST","message":"bad body"}}`, model.ErrInvalidInput},
		{"plain 502", http.StatusBadGateway, "upstream down", session.ErrAuthorityUnavailable},
		{"internal", http.StatusInternalServerError, `{"error":{"code":"INTERNAL_ERROR","message":"x"}}`, session.ErrAuthorityUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := decodeError(tt.status, []byte(tt.body))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestReadEvents(t *testing.T) {
	stream := strings.Join([]string{
		"event: connected",
		`data: {"status":"connected"}`,
		"",
		": keepalive",
		"",
		"event: token_refreshed",
		`data: {"type":"token_refreshed","session_id":"s1","identity_id":"i1","token":"new"}`,
		"",
		"event: mystery",
		"data: {}",
		"",
		"event: signed_out",
		`data: {"type":"signed_out","session_id":"s1","identity_id":"i1","reason":"logout"}`,
		"",
	}, "\n") + "\n"

	out := make(chan model.SessionEvent, 8)
	readEvents(context.Background(), strings.NewReader(stream), out)
	close(out)

	var got []model.SessionEvent
	for ev := range out {
		got = append(got, ev)
	}
	require.Len(t, got, 2)
	assert.Equal(t, model.EventTokenRefreshed, got[0].Type)
	assert.Equal(t, "new", got[0].Token)
	assert.Equal(t, model.EventSignedOut, got[1].Type)
	assert.Equal(t, model.ReasonLogout, got[1].Reason)
}
