package handlers_test

import (
	"net/http"
	"testing"

	"github.com/aki/journal-api/internal/domain"
	"github.com/aki/journal-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminHandler_BootstrapAdmin(t *testing.T) {
	ts := testutil.NewTestServer(t)

	body := map[string]string{"email": "root@example.com", "name": "Root"}

	// Succeeds exactly once while no admin exists
	resp := testutil.DoJSON(t, http.MethodPost, ts.URL("/bootstrap-admin"), "", body)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		IsAdmin       bool `json:"isAdmin"`
		EmailVerified bool `json:"emailVerified"`
	}
	testutil.AssertJSONResponse(t, resp, &created)
	assert.True(t, created.IsAdmin)
	assert.True(t, created.EmailVerified)

	// Every subsequent call conflicts, even with a fresh valid body
	resp = testutil.DoJSON(t, http.MethodPost, ts.URL("/bootstrap-admin"), "", map[string]string{
		"email": "second@example.com",
		"name":  "Second",
	})
	testutil.AssertErrorResponse(t, resp, http.StatusConflict, "admin user already exists")
	resp.Body.Close()
}

func TestAdminHandler_TrustLevels(t *testing.T) {
	ts := testutil.NewTestServer(t)

	_, userToken := testutil.NewUserBuilder().BuildWithSession(t, ts.DB.DB)
	_, adminToken := testutil.NewUserBuilder().AsAdmin().BuildWithSession(t, ts.DB.DB)

	tests := []struct {
		name           string
		token          string
		expectedStatus int
	}{
		{"unauthenticated", "", http.StatusUnauthorized},
		{"authenticated non-admin", userToken, http.StatusForbidden},
		{"admin", adminToken, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := testutil.DoJSON(t, http.MethodGet, ts.URL("/admin/users"), tt.token, nil)
			defer resp.Body.Close()
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestAdminHandler_AdminFlagRecheckedFromStore(t *testing.T) {
	ts := testutil.NewTestServer(t)

	// The user is demoted after the session was issued; the gate must see
	// the fresh flag, not a stale one.
	admin, token := testutil.NewUserBuilder().AsAdmin().BuildWithSession(t, ts.DB.DB)
	require.NoError(t, ts.DB.DB.Model(&domain.User{}).Where("id = ?", admin.ID).Update("is_admin", false).Error)

	resp := testutil.DoJSON(t, http.MethodGet, ts.URL("/admin/users"), token, nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestAdminHandler_CookieLoginFlow(t *testing.T) {
	ts := testutil.NewTestServer(t)

	admin, password := testutil.NewUserBuilder().
		WithEmail("admin@example.com").
		AsAdmin().
		Build(t, ts.DB.DB)

	// Wrong password and non-admins get the same rejection
	resp := testutil.DoJSON(t, http.MethodPost, ts.URL("/admin/auth"), "", map[string]string{
		"email": admin.Email, "password": "wrong",
	})
	testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, "Invalid credentials or insufficient permissions")
	resp.Body.Close()

	nonAdmin, nonAdminPassword := testutil.NewUserBuilder().Build(t, ts.DB.DB)
	resp = testutil.DoJSON(t, http.MethodPost, ts.URL("/admin/auth"), "", map[string]string{
		"email": nonAdmin.Email, "password": nonAdminPassword,
	})
	testutil.AssertErrorResponse(t, resp, http.StatusUnauthorized, "Invalid credentials or insufficient permissions")
	resp.Body.Close()

	// Missing password is a validation error, not a credential failure
	resp = testutil.DoJSON(t, http.MethodPost, ts.URL("/admin/auth"), "", map[string]string{
		"email": admin.Email,
	})
	testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "Password is required")
	resp.Body.Close()

	// Successful login sets the admin_session cookie
	resp = testutil.DoJSON(t, http.MethodPost, ts.URL("/admin/auth"), "", map[string]string{
		"email": admin.Email, "password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var sessionCookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == "admin_session" {
			sessionCookie = c
		}
	}
	resp.Body.Close()
	require.NotNil(t, sessionCookie, "admin_session cookie expected")
	assert.True(t, sessionCookie.HttpOnly)

	// The unsigned cookie satisfies admin trust on the JSON endpoints
	req, err := http.NewRequest(http.MethodGet, ts.URL("/admin/users"), nil)
	require.NoError(t, err)
	req.AddCookie(sessionCookie)
	cookieResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer cookieResp.Body.Close()
	assert.Equal(t, http.StatusOK, cookieResp.StatusCode)

	// Dashboard renders with the cookie and redirects without it
	req, err = http.NewRequest(http.MethodGet, ts.URL("/admin"), nil)
	require.NoError(t, err)
	req.AddCookie(sessionCookie)
	dashResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer dashResp.Body.Close()
	assert.Equal(t, http.StatusOK, dashResp.StatusCode)
	assert.Contains(t, dashResp.Header.Get("Content-Type"), "text/html")

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	bareResp, err := client.Get(ts.URL("/admin"))
	require.NoError(t, err)
	defer bareResp.Body.Close()
	assert.Equal(t, http.StatusFound, bareResp.StatusCode)
	assert.Equal(t, "/admin/login", bareResp.Header.Get("Location"))
}

func TestAdminHandler_CreateUser(t *testing.T) {
	ts := testutil.NewTestServer(t)
	_, adminToken := testutil.NewUserBuilder().AsAdmin().BuildWithSession(t, ts.DB.DB)

	resp := testutil.DoJSON(t, http.MethodPost, ts.URL("/admin/users"), adminToken, map[string]interface{}{
		"email": "provisioned@example.com", "name": "Provisioned", "isAdmin": false,
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"emailVerified"`
	}
	testutil.AssertJSONResponse(t, resp, &created)
	assert.Equal(t, "provisioned@example.com", created.Email)
	assert.True(t, created.EmailVerified, "admin-created users are pre-verified")

	// Duplicate email
	resp = testutil.DoJSON(t, http.MethodPost, ts.URL("/admin/users"), adminToken, map[string]interface{}{
		"email": "provisioned@example.com", "name": "Again",
	})
	testutil.AssertErrorResponse(t, resp, http.StatusBadRequest, "already exists")
	resp.Body.Close()
}

func TestAdminHandler_DeleteUserCascades(t *testing.T) {
	ts := testutil.NewTestServer(t)
	_, adminToken := testutil.NewUserBuilder().AsAdmin().BuildWithSession(t, ts.DB.DB)

	victim, victimToken := testutil.NewUserBuilder().BuildWithSession(t, ts.DB.DB)
	entry := testutil.NewEntryBuilder().WithUser(victim).Build(t, ts.DB.DB)
	testutil.NewAttachment(t, ts.DB.DB, entry, "attachments/key-1")

	// Unrelated user's data must survive
	bystander, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)
	bystanderEntry := testutil.NewEntryBuilder().WithUser(bystander).Build(t, ts.DB.DB)

	resp := testutil.DoJSON(t, http.MethodDelete, ts.URL("/admin/users/"+victim.ID.String()), adminToken, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var count int64
	ts.DB.DB.Model(&domain.User{}).Where("id = ?", victim.ID).Count(&count)
	assert.EqualValues(t, 0, count, "user row should be gone")

	ts.DB.DB.Model(&domain.JournalEntry{}).Where("user_id = ?", victim.ID).Count(&count)
	assert.EqualValues(t, 0, count, "journal entries should be gone")

	ts.DB.DB.Model(&domain.Attachment{}).Where("journal_entry_id = ?", entry.ID).Count(&count)
	assert.EqualValues(t, 0, count, "attachment rows should be gone")

	ts.DB.DB.Model(&domain.Session{}).Where("user_id = ?", victim.ID).Count(&count)
	assert.EqualValues(t, 0, count, "sessions should be gone")

	// The victim's old token no longer resolves
	tokenResp := testutil.DoJSON(t, http.MethodGet, ts.URL("/journal"), victimToken, nil)
	defer tokenResp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, tokenResp.StatusCode)

	ts.DB.DB.Model(&domain.JournalEntry{}).Where("id = ?", bystanderEntry.ID).Count(&count)
	assert.EqualValues(t, 1, count, "bystander data must survive")

	// Deleting an unknown user is 404
	resp = testutil.DoJSON(t, http.MethodDelete, ts.URL("/admin/users/00000000-0000-0000-0000-000000000000"), adminToken, nil)
	testutil.AssertErrorResponse(t, resp, http.StatusNotFound, "User not found")
	resp.Body.Close()
}
