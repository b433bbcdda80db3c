package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"testing"
	"time"

	"github.com/aki/journal-api/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	email    string
	name     string
	password string
	isAdmin  bool
	verified bool
}

// NewUserBuilder creates a new UserBuilder with default values
func NewUserBuilder() *UserBuilder {
	suffix := uuid.New().String()[:8]
	return &UserBuilder{
		email:    fmt.Sprintf("testuser_%s@example.com", suffix),
		name:     fmt.Sprintf("testuser_%s", suffix),
		password: "testpassword123",
	}
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

func (b *UserBuilder) WithName(name string) *UserBuilder {
	b.name = name
	return b
}

func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// WithoutPassword builds a pre-provisioned user that has not signed up yet
func (b *UserBuilder) WithoutPassword() *UserBuilder {
	b.password = ""
	return b
}

func (b *UserBuilder) AsAdmin() *UserBuilder {
	b.isAdmin = true
	return b
}

func (b *UserBuilder) Verified() *UserBuilder {
	b.verified = true
	return b
}

// Build creates the user in the database and returns the user with the raw password
func (b *UserBuilder) Build(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	user := &domain.User{
		ID:            uuid.New(),
		Email:         b.email,
		Name:          b.name,
		IsAdmin:       b.isAdmin,
		EmailVerified: b.verified,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	if b.password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(b.password), bcrypt.DefaultCost)
		if err != nil {
			t.Fatalf("failed to hash password: %v", err)
		}
		user.PasswordHash = string(hashed)
	}

	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// BuildWithSession creates the user plus a valid session and returns the
// bearer token
func (b *UserBuilder) BuildWithSession(t *testing.T, db *gorm.DB) (*domain.User, string) {
	t.Helper()

	user, _ := b.Build(t, db)
	return user, NewSession(t, db, user)
}

// NewSession creates a session row for the user and returns its token
func NewSession(t *testing.T, db *gorm.DB, user *domain.User) string {
	t.Helper()

	token := uuid.New().String() + uuid.New().String()
	session := &domain.Session{
		ID:        uuid.New(),
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(time.Hour),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := db.Create(session).Error; err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	return token
}

// NewExpiredSession creates a session row whose expiry is already in the
// past and returns its token
func NewExpiredSession(t *testing.T, db *gorm.DB, user *domain.User) string {
	t.Helper()

	token := uuid.New().String() + uuid.New().String()
	session := &domain.Session{
		ID:        uuid.New(),
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(-time.Minute),
		CreatedAt: time.Now().Add(-time.Hour),
		UpdatedAt: time.Now().Add(-time.Hour),
	}
	if err := db.Create(session).Error; err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	return token
}

// EntryBuilder creates journal entries with a builder pattern
type EntryBuilder struct {
	user      *domain.User
	content   string
	createdAt time.Time
}

func NewEntryBuilder() *EntryBuilder {
	return &EntryBuilder{
		content:   "test entry content",
		createdAt: time.Now(),
	}
}

func (b *EntryBuilder) WithUser(user *domain.User) *EntryBuilder {
	b.user = user
	return b
}

func (b *EntryBuilder) WithContent(content string) *EntryBuilder {
	b.content = content
	return b
}

func (b *EntryBuilder) WithCreatedAt(at time.Time) *EntryBuilder {
	b.createdAt = at
	return b
}

func (b *EntryBuilder) Build(t *testing.T, db *gorm.DB) *domain.JournalEntry {
	t.Helper()

	if b.user == nil {
		user, _ := NewUserBuilder().Build(t, db)
		b.user = user
	}

	entry := &domain.JournalEntry{
		ID:        uuid.New(),
		UserID:    b.user.ID,
		Content:   b.content,
		CreatedAt: b.createdAt,
		UpdatedAt: b.createdAt,
	}
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("failed to create journal entry: %v", err)
	}
	return entry
}

// NewAttachment creates an attachment row for the entry
func NewAttachment(t *testing.T, db *gorm.DB, entry *domain.JournalEntry, key string) *domain.Attachment {
	t.Helper()

	attachment := &domain.Attachment{
		ID:               uuid.New(),
		JournalEntryID:   entry.ID,
		Filename:         "file.txt",
		OriginalFilename: "notes.txt",
		MimeType:         "text/plain",
		Size:             4,
		StorageKey:       key,
		CreatedAt:        time.Now(),
	}
	if err := db.Create(attachment).Error; err != nil {
		t.Fatalf("failed to create attachment: %v", err)
	}
	return attachment
}

// DoJSON performs a JSON request with an optional bearer token
func DoJSON(t *testing.T, method, url, token string, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

// DoMultipart uploads one file as the "file" field of a multipart request
func DoMultipart(t *testing.T, url, token, filename, mimeType string, content []byte) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", mimeType)
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("failed to create multipart part: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("failed to write multipart content: %v", err)
	}
	mw.Close()

	req, err := http.NewRequest(http.MethodPost, url, &buf)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}
