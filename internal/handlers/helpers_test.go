package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/gravadigital/tallywatch-api/internal/auth"
	"github.com/gravadigital/tallywatch-api/internal/domain/candidate"
	"github.com/gravadigital/tallywatch-api/internal/domain/scope"
	"github.com/gravadigital/tallywatch-api/internal/domain/verification"
	"github.com/gravadigital/tallywatch-api/internal/services"
	"github.com/gravadigital/tallywatch-api/internal/storage/objectstore"
	"github.com/gravadigital/tallywatch-api/internal/storage/postgres"
	"github.com/gravadigital/tallywatch-api/internal/storage/testdb"
)

type testAPI struct {
	router   *gin.Engine
	verifier *auth.Verifier
	db       *gorm.DB
	photos   *objectstore.MemoryStore
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testdb.Open(t)
	testdb.SeedGeography(t, db)
	constituency := uint(10)
	testdb.SeedCandidate(t, db, candidate.Candidate{ID: 1, Name: "Amos Otieno", PartyName: "Lake Party",
		Position: candidate.PositionMP, ConstituencyID: &constituency})

	limits := services.UploadLimits{MaxPhotos: 3, MaxFileSize: 1 << 10}
	photos := objectstore.NewMemoryStore()
	svc := services.New(postgres.NewContainerWithDB(db), photos, verification.DefaultConfig(), limits, nil)

	verifier, err := auth.NewVerifier("handler-secret", "tallywatch")
	require.NoError(t, err)

	submissions := NewSubmissionHandler(svc.Submissions, svc.Reviews, limits)
	results := NewResultHandler(svc.Results)
	aggregates := NewAggregateHandler(svc.Aggregations)

	r := gin.New()
	r.Use(auth.Authenticate(verifier))
	r.POST("/api/submissions", submissions.CreateSubmission)
	r.PATCH("/api/submissions/:id/status", submissions.SetStatus)
	r.POST("/api/results", results.RecordResult)
	r.GET("/api/results/aggregate", aggregates.GetAggregate)
	r.GET("/api/candidates", aggregates.ListCandidates)

	return &testAPI{router: r, verifier: verifier, db: db, photos: photos}
}

func (a *testAPI) token(t *testing.T, caller scope.Caller) string {
	t.Helper()
	token, err := a.verifier.Issue(caller, time.Hour)
	require.NoError(t, err)
	return token
}

func (a *testAPI) do(req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testAPI) doJSON(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return a.do(req, token)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    int             `json:"code"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data any) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil && len(env.Data) > 0 {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

type testPhoto struct {
	photoType   string
	contentType string
	data        string
}

func multipartRequest(t *testing.T, fields map[string]string, photos ...testPhoto) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	for name, value := range fields {
		require.NoError(t, w.WriteField(name, value))
	}
	for i, p := range photos {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="photos"; filename="photo-%d"`, i))
		h.Set("Content-Type", p.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = io.WriteString(part, p.data)
		require.NoError(t, err)
		require.NoError(t, w.WriteField("photo_types", p.photoType))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/submissions", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func onSiteFields() map[string]string {
	return map[string]string{
		"polling_station_id": "1000",
		"candidate_id":       "1",
		"submission_type":    "primary",
		"submitted_lat":      "-1.2921",
		"submitted_lng":      "36.8219",
		"captured_at":        time.Now().UTC().Add(-30 * time.Minute).Format(time.RFC3339),
	}
}

func formPhotos() []testPhoto {
	return []testPhoto{
		{verification.PhotoFullForm, "image/jpeg", "full form"},
		{verification.PhotoSignature, "image/png", "signature"},
	}
}

func agentCaller() scope.Caller {
	return scope.Caller{UserID: uuid.New(), Role: scope.RoleAgent}
}

func adminCaller() scope.Caller {
	return scope.Caller{UserID: uuid.New(), Role: scope.RoleAdmin}
}

// submitted creates an on-site submission for caller and returns its id.
func (a *testAPI) submitted(t *testing.T, caller scope.Caller) uuid.UUID {
	t.Helper()
	w := a.do(multipartRequest(t, onSiteFields(), formPhotos()...), a.token(t, caller))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var out services.SubmitOutcome
	decode(t, w, &out)
	return out.SubmissionID
}
