package rest

import (
	"bytes"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/dfryer1193/imgstash/api"
	"github.com/dfryer1193/imgstash/images/application"
	"github.com/dfryer1193/imgstash/images/persistence"
	"github.com/dfryer1193/imgstash/internal/middleware"
	"github.com/dfryer1193/imgstash/shared/storage"
	"github.com/gin-gonic/gin"
	_ "modernc.org/sqlite"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE images (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			path TEXT NOT NULL,
			user_id TEXT NOT NULL,
			updated_at TIMESTAMP,
			created_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		t.Fatalf("Failed to create images table: %v", err)
	}

	svc := application.NewImageService(persistence.NewImageRepository(db), storage.NewMemStore())
	verifier := &middleware.StaticVerifier{Tokens: map[string]string{
		"alice-token": "alice",
		"bob-token":   "bob",
	}}

	router := gin.New()
	NewApi(router, svc, verifier)
	return router
}

func doRequest(t *testing.T, router *gin.Engine, method, path, token string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()

	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func multipartImage(t *testing.T, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename="%s"`, filename))
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("Failed to create multipart part: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("Failed to write multipart content: %v", err)
	}
	writer.Close()

	return body, writer.FormDataContentType()
}

func uploadImage(t *testing.T, router *gin.Engine, token, filename string) api.Image {
	t.Helper()

	body, contentType := multipartImage(t, filename, "image/png", bytes.Repeat([]byte{0x89}, 1024))
	rec := doRequest(t, router, http.MethodPost, "/api/images", token, body, contentType)
	if rec.Code != http.StatusCreated {
		t.Fatalf("Upload returned %d, want 201: %s", rec.Code, rec.Body.String())
	}

	var img api.Image
	if err := json.Unmarshal(rec.Body.Bytes(), &img); err != nil {
		t.Fatalf("Failed to decode upload response: %v", err)
	}
	return img
}

func TestApi_RequiresAuth(t *testing.T) {
	router := setupRouter(t)

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/images"},
		{http.MethodPost, "/api/images"},
		{http.MethodPut, "/api/images/1"},
		{http.MethodDelete, "/api/images/1"},
		{http.MethodGet, "/api/user"},
	} {
		rec := doRequest(t, router, tc.method, tc.path, "", nil, "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without token returned %d, want 401", tc.method, tc.path, rec.Code)
		}
	}
}

func TestApi_RejectsUnknownToken(t *testing.T) {
	router := setupRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/images", "bogus", nil, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("Unknown token returned %d, want 401", rec.Code)
	}
}

func TestGetUser_ReturnsAuthenticatedIdentity(t *testing.T) {
	router := setupRouter(t)

	rec := doRequest(t, router, http.MethodGet, "/api/user", "alice-token", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/user returned %d, want 200", rec.Code)
	}

	var user api.User
	if err := json.Unmarshal(rec.Body.Bytes(), &user); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if user.ID != "alice" {
		t.Errorf("User ID = %q, want %q", user.ID, "alice")
	}
}

func TestPostImage_CreatesRecord(t *testing.T) {
	router := setupRouter(t)

	img := uploadImage(t, router, "alice-token", "cat.png")
	if img.Name != "cat.png" {
		t.Errorf("Name = %q, want %q", img.Name, "cat.png")
	}
	if img.UserID != "alice" {
		t.Errorf("UserID = %q, want %q", img.UserID, "alice")
	}
	if !strings.HasPrefix(img.Path, "images/") {
		t.Errorf("Path = %q, want images/ prefix", img.Path)
	}
}

func TestPostImage_RejectsBadContentType(t *testing.T) {
	router := setupRouter(t)

	body, contentType := multipartImage(t, "doc.pdf", "application/pdf", []byte("pdf"))
	rec := doRequest(t, router, http.MethodPost, "/api/images", "alice-token", body, contentType)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("Upload returned %d, want 422", rec.Code)
	}

	var resp api.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if len(resp.Fields) == 0 || resp.Fields[0].Field != "image" {
		t.Errorf("Expected field-level message for image, got %+v", resp.Fields)
	}
}

func TestPostImage_RejectsMissingFile(t *testing.T) {
	router := setupRouter(t)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	writer.WriteField("unrelated", "value")
	writer.Close()

	rec := doRequest(t, router, http.MethodPost, "/api/images", "alice-token", body, writer.FormDataContentType())
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("Upload without file returned %d, want 422", rec.Code)
	}
}

func TestGetImages_ScopedToCaller(t *testing.T) {
	router := setupRouter(t)
	uploadImage(t, router, "alice-token", "a.png")
	uploadImage(t, router, "bob-token", "b.png")

	rec := doRequest(t, router, http.MethodGet, "/api/images", "alice-token", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("List returned %d, want 200", rec.Code)
	}

	var images []api.Image
	if err := json.Unmarshal(rec.Body.Bytes(), &images); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(images) != 1 || images[0].Name != "a.png" {
		t.Errorf("Expected only alice's image, got %+v", images)
	}
}

func TestPutImage_EditsRecord(t *testing.T) {
	router := setupRouter(t)
	img := uploadImage(t, router, "alice-token", "cat.png")

	payload := base64.StdEncoding.EncodeToString([]byte("edited bytes"))
	reqBody, _ := json.Marshal(api.EditImageRequest{EditedImage: "data:image/png;base64," + payload})

	rec := doRequest(t, router, http.MethodPut, fmt.Sprintf("/api/images/%d", img.ID), "alice-token",
		bytes.NewBuffer(reqBody), "application/json")
	if rec.Code != http.StatusOK {
		t.Fatalf("Edit returned %d, want 200: %s", rec.Code, rec.Body.String())
	}

	var updated api.Image
	if err := json.Unmarshal(rec.Body.Bytes(), &updated); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if updated.Path != "images/edited_cat.png" {
		t.Errorf("Path = %q, want %q", updated.Path, "images/edited_cat.png")
	}
}

func TestPutImage_RejectsMissingPayload(t *testing.T) {
	router := setupRouter(t)
	img := uploadImage(t, router, "alice-token", "cat.png")

	rec := doRequest(t, router, http.MethodPut, fmt.Sprintf("/api/images/%d", img.ID), "alice-token",
		bytes.NewBufferString(`{}`), "application/json")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("Edit without payload returned %d, want 422", rec.Code)
	}
}

func TestPutImage_UnknownIDReturns404(t *testing.T) {
	router := setupRouter(t)

	reqBody, _ := json.Marshal(api.EditImageRequest{EditedImage: "data:image/png;base64,aGk="})
	rec := doRequest(t, router, http.MethodPut, "/api/images/9999", "alice-token",
		bytes.NewBuffer(reqBody), "application/json")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Edit of unknown id returned %d, want 404", rec.Code)
	}
}

func TestDeleteImage_RemovesRecord(t *testing.T) {
	router := setupRouter(t)
	img := uploadImage(t, router, "alice-token", "cat.png")

	rec := doRequest(t, router, http.MethodDelete, fmt.Sprintf("/api/images/%d", img.ID), "alice-token", nil, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("Delete returned %d, want 204", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("Expected empty body on delete, got %q", rec.Body.String())
	}

	rec = doRequest(t, router, http.MethodGet, "/api/images", "alice-token", nil, "")
	var images []api.Image
	if err := json.Unmarshal(rec.Body.Bytes(), &images); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(images) != 0 {
		t.Errorf("Expected empty list after delete, got %+v", images)
	}
}

func TestDeleteImage_UnknownIDReturns404(t *testing.T) {
	router := setupRouter(t)

	rec := doRequest(t, router, http.MethodDelete, "/api/images/9999", "alice-token", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Delete of unknown id returned %d, want 404", rec.Code)
	}
}

func TestDeleteImage_OtherUsersImageReturns404(t *testing.T) {
	router := setupRouter(t)
	img := uploadImage(t, router, "alice-token", "cat.png")

	rec := doRequest(t, router, http.MethodDelete, fmt.Sprintf("/api/images/%d", img.ID), "bob-token", nil, "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("Cross-user delete returned %d, want 404", rec.Code)
	}
}
