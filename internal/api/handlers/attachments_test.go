package handlers_test

import (
	"io"
	"net/http"
	"testing"

	"github.com/aki/journal-api/internal/domain"
	"github.com/aki/journal-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type attachmentResponse struct {
	ID               string `json:"id"`
	JournalEntryID   string `json:"journalEntryId"`
	OriginalFilename string `json:"originalFilename"`
	MimeType         string `json:"mimeType"`
	Size             int64  `json:"size"`
}

func TestAttachmentHandler_Upload(t *testing.T) {
	ts := testutil.NewTestServer(t)
	user, token := testutil.NewUserBuilder().BuildWithSession(t, ts.DB.DB)
	entry := testutil.NewEntryBuilder().WithUser(user).Build(t, ts.DB.DB)

	uploadURL := ts.URL("/journal/" + entry.ID.String() + "/attachments")

	t.Run("successful upload", func(t *testing.T) {
		resp := testutil.DoMultipart(t, uploadURL, token, "notes.txt", "text/plain", []byte("hello"))
		defer resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		var result attachmentResponse
		testutil.AssertJSONResponse(t, resp, &result)
		assert.Equal(t, entry.ID.String(), result.JournalEntryID)
		assert.Equal(t, "notes.txt", result.OriginalFilename)
		assert.EqualValues(t, 5, result.Size)
		assert.Equal(t, 1, ts.Blobs.Len())
	})

	t.Run("disallowed mime type never reaches the blob store", func(t *testing.T) {
		before := ts.Blobs.Len()

		resp := testutil.DoMultipart(t, uploadURL, token, "archive.zip", "application/zip", []byte("zipzip"))
		defer resp.Body.Close()

		var result struct {
			Error        string   `json:"error"`
			AllowedTypes []string `json:"allowedTypes"`
		}
		testutil.AssertJSONResponse(t, resp, &result)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "File type not allowed", result.Error)
		assert.NotEmpty(t, result.AllowedTypes)
		assert.Equal(t, before, ts.Blobs.Len())
	})

	t.Run("upload to another user's entry is not found", func(t *testing.T) {
		_, otherToken := testutil.NewUserBuilder().BuildWithSession(t, ts.DB.DB)

		resp := testutil.DoMultipart(t, uploadURL, otherToken, "notes.txt", "text/plain", []byte("hi"))
		testutil.AssertErrorResponse(t, resp, http.StatusNotFound, "Journal entry not found")
		resp.Body.Close()
	})
}

func TestAttachmentHandler_FetchAndDelete(t *testing.T) {
	ts := testutil.NewTestServer(t)
	user, token := testutil.NewUserBuilder().BuildWithSession(t, ts.DB.DB)
	entry := testutil.NewEntryBuilder().WithUser(user).Build(t, ts.DB.DB)

	resp := testutil.DoMultipart(t, ts.URL("/journal/"+entry.ID.String()+"/attachments"), token, "notes.md", "text/markdown", []byte("# notes"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var uploaded attachmentResponse
	testutil.AssertJSONResponse(t, resp, &uploaded)
	resp.Body.Close()

	t.Run("fetch streams bytes with metadata headers", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodGet, ts.URL("/attachments/"+uploaded.ID), token, nil)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		assert.Equal(t, "text/markdown", resp.Header.Get("Content-Type"))
		assert.Contains(t, resp.Header.Get("Content-Disposition"), `filename="notes.md"`)
		assert.Equal(t, "private, max-age=3600", resp.Header.Get("Cache-Control"))

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Equal(t, "# notes", string(body))
	})

	t.Run("other users cannot fetch or delete", func(t *testing.T) {
		_, otherToken := testutil.NewUserBuilder().BuildWithSession(t, ts.DB.DB)

		resp := testutil.DoJSON(t, http.MethodGet, ts.URL("/attachments/"+uploaded.ID), otherToken, nil)
		testutil.AssertErrorResponse(t, resp, http.StatusNotFound, "Attachment not found")
		resp.Body.Close()

		resp = testutil.DoJSON(t, http.MethodDelete, ts.URL("/attachments/"+uploaded.ID), otherToken, nil)
		testutil.AssertErrorResponse(t, resp, http.StatusNotFound, "Attachment not found")
		resp.Body.Close()
	})

	t.Run("delete removes blob and metadata", func(t *testing.T) {
		resp := testutil.DoJSON(t, http.MethodDelete, ts.URL("/attachments/"+uploaded.ID), token, nil)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		assert.Equal(t, 0, ts.Blobs.Len())

		var count int64
		ts.DB.DB.Model(&domain.Attachment{}).Count(&count)
		assert.EqualValues(t, 0, count)
	})
}

func TestAttachmentHandler_EntryDeleteRemovesAttachments(t *testing.T) {
	ts := testutil.NewTestServer(t)
	user, token := testutil.NewUserBuilder().BuildWithSession(t, ts.DB.DB)
	entry := testutil.NewEntryBuilder().WithUser(user).Build(t, ts.DB.DB)

	resp := testutil.DoMultipart(t, ts.URL("/journal/"+entry.ID.String()+"/attachments"), token, "pic.png", "image/png", []byte("pngbytes"))
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = testutil.DoJSON(t, http.MethodDelete, ts.URL("/journal/"+entry.ID.String()), token, nil)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var count int64
	ts.DB.DB.Model(&domain.Attachment{}).Where("journal_entry_id = ?", entry.ID).Count(&count)
	assert.EqualValues(t, 0, count)
	assert.Equal(t, 0, ts.Blobs.Len())
}
