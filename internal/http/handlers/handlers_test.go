package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"localserv/internal/domain"
	"localserv/internal/middleware"
	"localserv/internal/policy"
	"localserv/internal/providers/textenhance"
	"localserv/internal/storage"
)

// smallest valid PNG
var pngBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0a, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

var member = domain.ActorState{IdentityID: "user-1", Email: "ana@example.com", Role: domain.RoleRegular, Resolved: true}

func withActor(req *http.Request, actor domain.ActorState) *http.Request {
	return req.WithContext(middleware.ContextWithActor(req.Context(), actor))
}

func withParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body struct {
		Error errorBody `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	return body.Error
}

type failingEnhancer struct{}

func (failingEnhancer) Enhance(context.Context, textenhance.Request) (*textenhance.Result, error) {
	return nil, errors.New("boom")
}

func TestEnhanceTextKeepsDraftOnFailure(t *testing.T) {
	app := &App{Logger: zerolog.Nop(), Enhancer: failingEnhancer{}}
	body := `{"title":"Faxina","description":"limpeza completa"}`
	rr := httptest.NewRecorder()
	app.EnhanceText(rr, httptest.NewRequest(http.MethodPost, "/api/enhance", bytes.NewBufferString(body)))

	require.Equal(t, http.StatusOK, rr.Code)
	var res textenhance.Result
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
	assert.Equal(t, "limpeza completa", res.Text)
	assert.False(t, res.Enhanced)
}

func TestEnhanceTextRequiresInput(t *testing.T) {
	app := &App{Logger: zerolog.Nop(), Enhancer: textenhance.NewPassthroughEnhancer()}
	rr := httptest.NewRecorder()
	app.EnhanceText(rr, httptest.NewRequest(http.MethodPost, "/api/enhance", bytes.NewBufferString(`{}`)))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func newUploadApp(t *testing.T) *App {
	t.Helper()
	files, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	return &App{Logger: zerolog.Nop(), Uploads: storage.NewUploader(files, "http://cdn.test/static", 1024)}
}

func TestUploadMultipartAvatar(t *testing.T) {
	app := newUploadApp(t)
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", "me.png")
	require.NoError(t, err)
	_, _ = part.Write(pngBytes)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/uploads/avatars", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = withParam(withActor(req, member), "bucket", storage.BucketAvatars)
	rr := httptest.NewRecorder()
	app.Upload(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var obj storage.Object
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&obj))
	assert.Equal(t, "image/png", obj.ContentType)
	assert.Contains(t, obj.PublicURL, "http://cdn.test/static/avatars/user-1/")
}

func TestUploadRejections(t *testing.T) {
	tests := []struct {
		name   string
		bucket string
		data   []byte
		status int
		code   string
	}{
		{"unknown bucket", "secrets", pngBytes, http.StatusNotFound, "unknown_bucket"},
		{"not an image", storage.BucketServiceImages, []byte("hello, world"), http.StatusUnsupportedMediaType, "unsupported_type"},
		{"empty", storage.BucketServiceImages, nil, http.StatusBadRequest, "empty_file"},
		{"too large", storage.BucketServiceImages, append(append([]byte{}, pngBytes...), make([]byte, 2048)...), http.StatusRequestEntityTooLarge, "too_large"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newUploadApp(t)
			req := httptest.NewRequest(http.MethodPost, "/api/uploads/"+tt.bucket, bytes.NewReader(tt.data))
			req.Header.Set("Content-Type", "application/octet-stream")
			req = withParam(withActor(req, member), "bucket", tt.bucket)
			rr := httptest.NewRecorder()
			app.Upload(rr, req)
			assert.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.code, decodeError(t, rr).Code)
		})
	}
}

type stubQuota struct{ decision policy.QuotaDecision }

func (s stubQuota) CheckListingQuota(context.Context, domain.ActorState) policy.QuotaDecision {
	return s.decision
}

func TestCreateListingQuotaResponses(t *testing.T) {
	tests := []struct {
		name     string
		decision policy.QuotaDecision
		status   int
		code     string
	}{
		{"unavailable fails closed", policy.QuotaDecision{Reason: policy.ReasonUnavailable}, http.StatusServiceUnavailable, "quota_unavailable"},
		{"limit reached", policy.QuotaDecision{Reason: policy.ReasonLimitReached, Used: 3, Limit: 3, RedirectTo: policy.PlansPath}, http.StatusForbidden, "quota_exceeded"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := &App{Logger: zerolog.Nop(), Quota: stubQuota{decision: tt.decision}}
			body := `{"title":"Faxina","price":10,"city":"Recife"}`
			req := withActor(httptest.NewRequest(http.MethodPost, "/api/listings", bytes.NewBufferString(body)), member)
			rr := httptest.NewRecorder()
			app.CreateListing(rr, req)
			require.Equal(t, tt.status, rr.Code)
			assert.Equal(t, tt.code, decodeError(t, rr).Code)
		})
	}
}

func TestCreateListingValidatesBeforeQuota(t *testing.T) {
	app := &App{Logger: zerolog.Nop(), Quota: stubQuota{decision: policy.QuotaDecision{Allowed: true}}}
	req := withActor(httptest.NewRequest(http.MethodPost, "/api/listings", bytes.NewBufferString(`{"title":" ","city":"Recife"}`)), member)
	rr := httptest.NewRecorder()
	app.CreateListing(rr, req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "validation", decodeError(t, rr).Code)
}

func TestFailMapsDomainErrors(t *testing.T) {
	app := &App{Logger: zerolog.Nop()}
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: title is required", domain.ErrValidation), http.StatusBadRequest, "validation"},
		{domain.ErrInvalidCredentials, http.StatusUnauthorized, "invalid_credentials"},
		{domain.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{domain.ErrForbidden, http.StatusForbidden, "forbidden"},
		{fmt.Errorf("load: %w", domain.ErrNotFound), http.StatusNotFound, "not_found"},
		{domain.ErrEmailTaken, http.StatusConflict, "email_taken"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "internal"},
	}
	for _, tt := range tests {
		rr := httptest.NewRecorder()
		app.fail(rr, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)
		assert.Equal(t, tt.status, rr.Code, tt.err.Error())
		assert.Equal(t, tt.code, decodeError(t, rr).Code, tt.err.Error())
	}
}

func TestNotFoundRedirectsHome(t *testing.T) {
	app := &App{Logger: zerolog.Nop()}
	rr := httptest.NewRecorder()
	app.NotFound(rr, httptest.NewRequest(http.MethodGet, "/nowhere", nil))
	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, policy.HomePath, rr.Header().Get("Location"))
}

type downDB struct{}

func (downDB) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealthReportsDatabase(t *testing.T) {
	rr := httptest.NewRecorder()
	(&App{Logger: zerolog.Nop()}).Health(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	(&App{Logger: zerolog.Nop(), DB: downDB{}}).Health(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}
