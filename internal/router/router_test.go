package router_test

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/recipehub/backend/internal/blob"
	"github.com/pageza/recipehub/backend/internal/logging"
	"github.com/pageza/recipehub/backend/internal/models"
	"github.com/pageza/recipehub/backend/internal/router"
	"github.com/pageza/recipehub/backend/internal/service"
	"github.com/pageza/recipehub/backend/internal/testhelpers"
)

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Details json.RawMessage `json:"details"`
}

type testApp struct {
	t      *testing.T
	db     *gorm.DB
	router *gin.Engine
}

func setupApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testhelpers.SetupSQLite(t)
	log := logging.Nop()
	blobs := blob.NewGormStore(db)

	authSvc := service.NewAuthService(db, service.NewGormRevocationStore(db), service.AuthConfig{
		JWTSecret:             "router-test-secret",
		Issuer:                "recipehub",
		TokenTTL:              time.Hour,
		DefaultProfilePicture: "default-profile-picture",
	}, log)
	recipes := service.NewRecipeService(db, blobs, service.RecipeConfig{MaxUploadBytes: 2 << 20}, log)

	r := router.SetupRouter(router.Deps{
		DB:          db,
		Log:         log,
		CORSOrigins: []string{"http://localhost:3000"},
		Blobs:       blobs,
		Auth:        authSvc,
		Users: service.NewUserService(db, recipes, blobs, service.UserConfig{
			DefaultProfilePicture: "default-profile-picture",
			MaxUploadBytes:        2 << 20,
		}, log),
		Recipes:       recipes,
		Comments:      service.NewCommentService(db, log),
		Notifications: service.NewNotificationService(db),
	})
	return &testApp{t: t, db: db, router: r}
}

func (a *testApp) do(method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	return a.send(req, token)
}

func (a *testApp) send(req *http.Request, token string) (*httptest.ResponseRecorder, envelope) {
	a.t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var env envelope
	if json.Valid(w.Body.Bytes()) {
		require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

// signUpAndIn registers username and returns a fresh token for it.
func (a *testApp) signUpAndIn(username string) string {
	a.t.Helper()
	w, _ := a.do(http.MethodPost, "/signup", "", map[string]string{
		"email": username + "@example.com", "username": username, "password": "password123",
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())

	w, env := a.do(http.MethodPost, "/signin", "", map[string]string{
		"email": username + "@example.com", "password": "password123",
	})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())

	var session struct {
		Token string `json:"token"`
	}
	require.NoError(a.t, json.Unmarshal(env.Data, &session))
	return session.Token
}

func (a *testApp) createRecipe(token, name string) string {
	a.t.Helper()
	w, env := a.do(http.MethodPost, "/recipes", token, map[string]any{
		"name": name, "title": name, "prep_time": 5, "cook_time": 10, "servings": 2,
		"ingredients": []string{"bread"}, "directions": []string{"toast"},
		"tags": []string{"quick"}, "category": []string{"breakfast"},
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var view struct {
		ID string `json:"id"`
	}
	require.NoError(a.t, json.Unmarshal(env.Data, &view))
	return view.ID
}

func TestHealth(t *testing.T) {
	app := setupApp(t)
	w, _ := app.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","database":"ok"}`, w.Body.String())
}

func TestSignUpRejectsDuplicateEmail(t *testing.T) {
	app := setupApp(t)
	app.signUpAndIn("cook")

	w, env := app.do(http.MethodPost, "/signup", "", map[string]string{
		"email": "cook@example.com", "username": "other", "password": "pw",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, env.Error, "Email")
}

func TestSignInWrongPasswordIsGeneric(t *testing.T) {
	app := setupApp(t)
	app.signUpAndIn("cook")

	w, env := app.do(http.MethodPost, "/signin", "", map[string]string{"email": "cook@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid email or password", env.Error)
}

func TestSignOutRevokesToken(t *testing.T) {
	app := setupApp(t)
	token := app.signUpAndIn("cook")

	w, _ := app.do(http.MethodGet, "/users/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, env := app.do(http.MethodPost, "/signout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Signed out successfully", env.Message)

	w, env = app.do(http.MethodGet, "/users/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "token has been revoked", env.Error)
}

func TestUnauthenticatedCreateFails(t *testing.T) {
	app := setupApp(t)
	for _, path := range []string{"/recipes", "/comments"} {
		w, _ := app.do(http.MethodPost, path, "", map[string]any{"name": "x", "body": "x"})
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	token := app.signUpAndIn("cook")
	w, _ := app.do(http.MethodPost, "/notifications", token, map[string]any{"message": "x"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecipeOwnershipOverHTTP(t *testing.T) {
	app := setupApp(t)
	owner := app.signUpAndIn("owner")
	other := app.signUpAndIn("other")
	id := app.createRecipe(owner, "Toast")

	w, env := app.do(http.MethodGet, "/recipes/"+id, owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Recipe retrieved", env.Message)
	assert.Contains(t, string(env.Data), `"is_owner":true`)

	w, env = app.do(http.MethodPatch, "/recipes/"+id, other, map[string]any{"name": "Mine now"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "You do not have permission to update this Recipe", env.Error)

	w, env = app.do(http.MethodPatch, "/recipes/"+id, owner, map[string]any{"user": "someone"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Cannot change document ownership", env.Error)

	w, _ = app.do(http.MethodDelete, "/recipes/"+id, other, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, env = app.do(http.MethodDelete, "/recipes/"+id, owner, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Recipe 'Toast' deleted successfully", env.Message)
}

func TestLikeToggleAndNotificationRead(t *testing.T) {
	app := setupApp(t)
	owner := app.signUpAndIn("owner")
	fan := app.signUpAndIn("fan")
	id := app.createRecipe(owner, "Toast")

	w, env := app.do(http.MethodPost, "/recipes/"+id+"/like", fan, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Recipe liked", env.Message)

	w, env = app.do(http.MethodGet, "/my-notifications", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var notes []struct {
		ID      string `json:"id"`
		Message string `json:"message"`
		Read    bool   `json:"read"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &notes))
	require.Len(t, notes, 1)
	assert.Equal(t, "fan liked your recipe 'Toast'", notes[0].Message)

	w, _ = app.do(http.MethodPatch, "/my-notifications/"+notes[0].ID, owner, map[string]any{"read": false})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = app.do(http.MethodPatch, "/my-notifications/"+notes[0].ID, fan, map[string]any{"read": true})
	assert.Equal(t, http.StatusForbidden, w.Code)

	for _, want := range []string{"Notification marked as read", "Notification already read"} {
		w, env = app.do(http.MethodPatch, "/my-notifications/"+notes[0].ID, owner, map[string]any{"read": true})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, want, env.Message)
		assert.Contains(t, string(env.Data), `"read":true`)
	}

	w, env = app.do(http.MethodPost, "/users/favorites/"+id, fan, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Recipe removed from favorites", env.Message)

	var count int64
	require.NoError(t, app.db.Model(&models.Notification{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCommentMissingFields(t *testing.T) {
	app := setupApp(t)
	token := app.signUpAndIn("cook")

	w, env := app.do(http.MethodPost, "/comments", token, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing required fields for comments", env.Error)
	assert.JSONEq(t, `{"missing_fields":["body","recipe"]}`, string(env.Details))
}

func TestPopularRouteIsNotAnID(t *testing.T) {
	app := setupApp(t)
	token := app.signUpAndIn("cook")
	app.createRecipe(token, "Toast")

	w, env := app.do(http.MethodGet, "/recipes/popular", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Found 1 popular recipes", env.Message)
}

func TestRecipeImageUploadAndServe(t *testing.T) {
	app := setupApp(t)
	token := app.signUpAndIn("cook")
	id := app.createRecipe(token, "Toast")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "toast.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, "/recipes/"+id+"/image", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w, env := app.send(req, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var view struct {
		Image string `json:"image"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &view))
	require.NotEmpty(t, view.Image)

	img := httptest.NewRecorder()
	app.router.ServeHTTP(img, httptest.NewRequest(http.MethodGet, "/api/images/"+view.Image, nil))
	assert.Equal(t, http.StatusOK, img.Code)
	assert.Equal(t, "png-bytes", img.Body.String())
}

func TestMissingImage(t *testing.T) {
	app := setupApp(t)

	w, env := app.do(http.MethodGet, "/api/images/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Image not found", env.Error)
	assert.NotEmpty(t, env.Details)
}
