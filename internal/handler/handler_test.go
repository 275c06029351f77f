package handler

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/quizbank-api/internal/domain/entity"
	"github.com/yourusername/quizbank-api/internal/middleware"
	"github.com/yourusername/quizbank-api/internal/repository/memory"
	"github.com/yourusername/quizbank-api/internal/service"
	"github.com/yourusername/quizbank-api/pkg/auth"
)

type testServer struct {
	router    *gin.Engine
	store     *memory.Store
	genres    *memory.GenreRepo
	questions *memory.QuestionRepo
	users     *memory.UserRepo
	jwt       *auth.JWTService
	token     string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s := memory.NewStore()
	ts := &testServer{
		store:     s,
		genres:    memory.NewGenreRepo(s),
		questions: memory.NewQuestionRepo(s),
		users:     memory.NewUserRepo(s),
	}
	jwtService, err := auth.NewJWTService("handler-test-secret", 1, "")
	require.NoError(t, err)
	ts.jwt = jwtService

	userService := service.NewUserService(ts.users, nil)
	progress := memory.NewProgressRepo(s)

	ts.router = gin.New()
	RegisterRoutes(ts.router, Router{
		Auth:            middleware.NewAuthMiddleware(jwtService, ts.users),
		RateLimiter:     middleware.NewRateLimiter(nil),
		AuthHandler:     NewAuthHandler(userService, jwtService),
		GenreHandler:    NewGenreHandler(service.NewGenreService(ts.genres, nil)),
		QuestionHandler: NewQuestionHandler(service.NewQuestionService(ts.questions, ts.genres, nil)),
		UserHandler:     NewUserHandler(userService),
		StatsHandler: NewStatsHandler(service.NewStatsService(
			ts.users, ts.questions, ts.genres, progress, nil, service.StatsOptions{},
		)),
		TransferHandler: NewTransferHandler(service.NewTransferService(ts.questions, ts.genres, nil, time.UTC)),
		MaxUploadMB:     1,
	})

	admin := ts.user(t, "admin", true)
	ts.token = ts.tokenFor(t, admin)
	return ts
}

func (ts *testServer) user(t *testing.T, username string, staff bool) *entity.User {
	t.Helper()
	u := &entity.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "password1",
		IsActive: true,
		IsStaff:  staff,
	}
	require.NoError(t, ts.users.Create(context.Background(), u))
	return u
}

func (ts *testServer) tokenFor(t *testing.T, u *entity.User) string {
	t.Helper()
	token, _, err := ts.jwt.GenerateToken(u)
	require.NoError(t, err)
	return token
}

func (ts *testServer) genre(t *testing.T, id, name string) {
	t.Helper()
	require.NoError(t, ts.genres.Create(context.Background(), &entity.Genre{ID: id, Name: name}))
}

func (ts *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if ts.token != "" {
		req.Header.Set("Authorization", "Bearer "+ts.token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) upload(t *testing.T, path, filename string, rows [][]string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		part, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		cw := csv.NewWriter(part)
		require.NoError(t, cw.WriteAll(rows))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+ts.token)
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dest interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dest), w.Body.String())
}

// exportRow builds a row in the full 23 column layout.
func exportRow(id, genre, difficulty, title string, choices ...string) []string {
	rec := make([]string, 23)
	rec[0], rec[1], rec[3], rec[5] = id, genre, difficulty, title
	for i := 0; i+1 < len(choices) && i/2 < 5; i += 2 {
		rec[8+i] = choices[i]
		rec[9+i] = choices[i+1]
	}
	rec[22] = "true"
	return rec
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	ts.token = ""

	w := ts.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminRoutes_Access(t *testing.T) {
	ts := newTestServer(t)
	member := ts.user(t, "member", false)

	tests := []struct {
		name     string
		token    string
		expected int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"garbage token", "not-a-jwt", http.StatusUnauthorized},
		{"non staff", ts.tokenFor(t, member), http.StatusForbidden},
		{"staff", ts.token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts.token = tt.token
			w := ts.do(t, http.MethodGet, "/api/admin/genres", nil)
			assert.Equal(t, tt.expected, w.Code)
		})
	}
}

func TestAuthToken(t *testing.T) {
	ts := newTestServer(t)
	ts.user(t, "member", false)
	ts.token = ""

	w := ts.do(t, http.MethodPost, "/api/auth/token", gin.H{"username": "admin", "password": "password1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		User        struct {
			Username string `json:"username"`
		} `json:"user"`
	}
	decode(t, w, &resp)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, "admin", resp.User.Username)

	ts.token = resp.AccessToken
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/admin/stats", nil).Code)
	ts.token = ""

	w = ts.do(t, http.MethodPost, "/api/auth/token", gin.H{"username": "admin", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(t, http.MethodPost, "/api/auth/token", gin.H{"username": "member", "password": "password1"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, http.MethodPost, "/api/auth/token", gin.H{"username": "admin"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenreCRUD(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/admin/genres", gin.H{"name": "History"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created map[string]interface{}
	decode(t, w, &created)
	assert.Equal(t, "g01", created["id"])

	w = ts.do(t, http.MethodPatch, "/api/admin/genres/g01", gin.H{"description": "World history"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated map[string]interface{}
	decode(t, w, &updated)
	assert.Equal(t, "History", updated["name"])
	assert.Equal(t, "World history", updated["description"])

	w = ts.do(t, http.MethodPut, "/api/admin/genres/g01", gin.H{"description": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodGet, "/api/admin/genres", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]interface{}
	decode(t, w, &list)
	require.Len(t, list, 1)
	assert.EqualValues(t, 0, list[0]["question_count"])

	assert.Equal(t, http.StatusNoContent, ts.do(t, http.MethodDelete, "/api/admin/genres/g01", nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/api/admin/genres/g01", nil).Code)
}

type questionBody struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Choices []struct {
		Content   string `json:"content"`
		IsCorrect bool   `json:"is_correct"`
	} `json:"choices"`
	ReviewedAt *time.Time `json:"reviewed_at"`
}

func TestQuestion_CreateAndPatch(t *testing.T) {
	ts := newTestServer(t)
	ts.genre(t, "g01", "Science")

	w := ts.do(t, http.MethodPost, "/api/admin/questions", gin.H{
		"genre":      "g01",
		"difficulty": 2,
		"title":      "Boiling point of water",
		"choices": []gin.H{
			{"content": "100C", "is_correct": true, "order_index": 0},
			{"content": "90C", "order_index": 1},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var q questionBody
	decode(t, w, &q)
	assert.Equal(t, "QFB00001", q.ID)
	require.Len(t, q.Choices, 2)
	assert.True(t, q.Choices[0].IsCorrect)

	// no choices key leaves the choices alone
	w = ts.do(t, http.MethodPatch, "/api/admin/questions/QFB00001", gin.H{"title": "Water boils at"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &q)
	assert.Equal(t, "Water boils at", q.Title)
	assert.Len(t, q.Choices, 2)

	w = ts.do(t, http.MethodPatch, "/api/admin/questions/QFB00001", gin.H{"reviewed_at": "2024-05-01T10:00:00Z"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &q)
	require.NotNil(t, q.ReviewedAt)

	w = ts.do(t, http.MethodPatch, "/api/admin/questions/QFB00001", gin.H{"choices": []gin.H{}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &q)
	assert.Empty(t, q.Choices)
	assert.NotNil(t, q.ReviewedAt)

	w = ts.do(t, http.MethodPut, "/api/admin/questions/QFB00001", gin.H{"title": "only a title"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, http.StatusNoContent, ts.do(t, http.MethodDelete, "/api/admin/questions/QFB00001", nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/api/admin/questions/QFB00001", nil).Code)
}

func TestQuestion_CreateValidation(t *testing.T) {
	ts := newTestServer(t)
	ts.genre(t, "g01", "Science")

	tests := []struct {
		name string
		body gin.H
	}{
		{"difficulty out of range", gin.H{"genre": "g01", "difficulty": 4, "title": "t"}},
		{"unknown genre", gin.H{"genre": "g99", "difficulty": 1, "title": "t"}},
		{"missing title", gin.H{"genre": "g01", "difficulty": 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, "/api/admin/questions", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
}

func TestQuestion_ListFilters(t *testing.T) {
	ts := newTestServer(t)
	ts.genre(t, "g01", "Science")
	for _, title := range []string{"Gravity", "Photosynthesis"} {
		w := ts.do(t, http.MethodPost, "/api/admin/questions", gin.H{"genre": "g01", "difficulty": 1, "title": title})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := ts.do(t, http.MethodGet, "/api/admin/questions?search=grav", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []questionBody
	decode(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, "Gravity", list[0].Title)

	w = ts.do(t, http.MethodGet, "/api/admin/questions?difficulty=easy", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestQuestion_Bulk(t *testing.T) {
	ts := newTestServer(t)
	ts.genre(t, "g01", "Science")
	w := ts.do(t, http.MethodPost, "/api/admin/questions", gin.H{"genre": "g01", "difficulty": 1, "title": "Gravity"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	for _, difficulty := range []string{`"hard"`, `"2"`, `2.5`, `4`} {
		t.Run("invalid difficulty "+difficulty+" writes nothing", func(t *testing.T) {
			w := ts.do(t, http.MethodPost, "/api/admin/questions/bulk-update",
				`{"question_ids":["QFB00001"],"updates":{"difficulty":`+difficulty+`}}`)
			assert.Equal(t, http.StatusBadRequest, w.Code)

			q, err := ts.questions.GetByID(context.Background(), "QFB00001")
			require.NoError(t, err)
			assert.Equal(t, 1, q.Difficulty)
		})
	}

	t.Run("empty updates", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/api/admin/questions/bulk-update",
			`{"question_ids":["QFB00001"],"updates":{}}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("difficulty and review", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/api/admin/questions/bulk-update",
			`{"question_ids":["QFB00001","missing"],"updates":{"difficulty":3,"reviewed_at":"2024-05-01T00:00:00Z"}}`)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var resp map[string]string
		decode(t, w, &resp)
		assert.Contains(t, resp["message"], "1 questions updated")

		q, err := ts.questions.GetByID(context.Background(), "QFB00001")
		require.NoError(t, err)
		assert.Equal(t, 3, q.Difficulty)
		assert.NotNil(t, q.ReviewedAt)
	})

	t.Run("deactivate", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/api/admin/questions/bulk-action",
			gin.H{"action": "deactivate", "question_ids": []string{"QFB00001"}})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		q, err := ts.questions.GetByID(context.Background(), "QFB00001")
		require.NoError(t, err)
		assert.False(t, q.IsActive)
	})

	t.Run("unknown action", func(t *testing.T) {
		w := ts.do(t, http.MethodPost, "/api/admin/questions/bulk-action",
			gin.H{"action": "archive", "question_ids": []string{"QFB00001"}})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCSVExport(t *testing.T) {
	ts := newTestServer(t)
	ts.genre(t, "g01", "Science")
	w := ts.do(t, http.MethodPost, "/api/admin/questions", gin.H{"genre": "g01", "difficulty": 1, "title": "Gravity"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = ts.do(t, http.MethodGet, "/api/admin/csv/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="questions_export.csv"`, w.Header().Get("Content-Disposition"))

	body := w.Body.Bytes()
	require.True(t, bytes.HasPrefix(body, []byte{0xEF, 0xBB, 0xBF}))
	records, err := csv.NewReader(bytes.NewReader(body[3:])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Question ID", records[0][0])
	assert.Len(t, records[0], 23)
	assert.Equal(t, "QFB00001", records[1][0])

	w = ts.do(t, http.MethodGet, "/api/admin/csv/export?format=xlsx", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxMIME, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "questions_export.xlsx")
}

func TestCSVImport(t *testing.T) {
	ts := newTestServer(t)
	ts.genre(t, "g01", "Science")

	rows := [][]string{
		{"Question ID", "Genre ID"},
		exportRow("", "g01", "2", "Speed of light", "300000 km/s", "true", "1000 km/s", "false"),
		{"too", "short"},
	}
	w := ts.upload(t, "/api/admin/csv/import", "questions.csv", rows)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Message string                `json:"message"`
		Summary service.ImportSummary `json:"summary"`
	}
	decode(t, w, &resp)
	assert.Equal(t, "CSV import completed", resp.Message)
	assert.Equal(t, 2, resp.Summary.TotalRows)
	assert.Equal(t, 1, resp.Summary.SuccessCount)
	assert.Equal(t, 1, resp.Summary.ErrorCount)
	require.Len(t, resp.Summary.Errors, 1)
	assert.Contains(t, resp.Summary.Errors[0], "insufficient columns")

	q, err := ts.questions.GetByID(context.Background(), "QFB00001")
	require.NoError(t, err)
	assert.Len(t, q.Choices, 2)
}

func TestCSVUploadRejected(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name     string
		path     string
		filename string
		rows     [][]string
		wantBody string
	}{
		{name: "no file", path: "/api/admin/csv/import", wantBody: "no CSV file was uploaded"},
		{name: "wrong extension", path: "/api/admin/csv/import", filename: "questions.txt", rows: [][]string{{"a"}}, wantBody: "please select a CSV file"},
		{name: "upper-case extension", path: "/api/admin/csv/import", filename: "questions.CSV", rows: [][]string{{"Question ID"}}, wantBody: "please select a CSV file"},
		{name: "empty file", path: "/api/admin/csv/delete", filename: "empty.csv", wantBody: "CSV processing failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.upload(t, tt.path, tt.filename, tt.rows)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.True(t, strings.Contains(w.Body.String(), tt.wantBody), w.Body.String())
		})
	}
}

func TestCSVDelete(t *testing.T) {
	ts := newTestServer(t)
	ts.genre(t, "g01", "Science")
	w := ts.do(t, http.MethodPost, "/api/admin/questions", gin.H{"genre": "g01", "difficulty": 1, "title": "Gravity"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = ts.upload(t, "/api/admin/csv/delete", "delete.csv", [][]string{
		{"Question ID"},
		{"QFB00001"},
		{"QFB09999"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Message string                `json:"message"`
		Summary service.DeleteSummary `json:"summary"`
	}
	decode(t, w, &resp)
	assert.Equal(t, "CSV delete completed", resp.Message)
	assert.Equal(t, 2, resp.Summary.TotalRows)
	assert.Equal(t, 1, resp.Summary.SuccessCount)
	assert.Equal(t, 1, resp.Summary.NotFoundCount)
	require.Len(t, resp.Summary.Errors, 1)
	assert.Contains(t, resp.Summary.Errors[0], "QFB09999")
}

func TestUsersAndStats(t *testing.T) {
	ts := newTestServer(t)
	member := ts.user(t, "member", false)

	w := ts.do(t, http.MethodGet, "/api/admin/users?is_staff=false", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var users []map[string]interface{}
	decode(t, w, &users)
	require.Len(t, users, 1)
	assert.Equal(t, "member", users[0]["username"])

	w = ts.do(t, http.MethodPatch, "/api/admin/users/2", gin.H{"first_name": "Mem"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got, err := ts.users.GetByID(context.Background(), member.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mem", got.FirstName)

	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodGet, "/api/admin/users/abc", nil).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(t, http.MethodGet, "/api/admin/users/99", nil).Code)

	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/admin/users/progress", nil).Code)
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/admin/users/2/progress", nil).Code)

	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/api/admin/stats/users", nil).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodGet, "/api/admin/stats/users?days=abc", nil).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(t, http.MethodGet, "/api/admin/stats/users?days=0", nil).Code)
}
