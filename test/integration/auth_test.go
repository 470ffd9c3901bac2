package integration_test

import (
	"net/http"
	"testing"

	"skillbridge_backend/internal/models"
	"skillbridge_backend/test/helpers"

	"github.com/stretchr/testify/assert"
)

// TestAuthFlow - регистрация и логин "золотого пути"
func TestAuthFlow(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	registerBody := map[string]interface{}{
		"full_name": "Абебе Бикила",
		"email":     "learner@test.com",
		"password":  "super_password123",
		"role":      "learner",
	}

	regRes, regBodyStr := ts.SendRequest(t, "POST", "/api/v1/auth/register", "", registerBody)

	assert.Equal(t, http.StatusCreated, regRes.StatusCode)
	assert.Contains(t, regBodyStr, "access_token")
	t.Logf("РЕГИСТРАЦИЯ: Успешно. Ответ: %s", regBodyStr)

	loginBody := map[string]interface{}{
		"email":    "learner@test.com",
		"password": "super_password123",
	}
	logRes, logBodyStr := ts.SendRequest(t, "POST", "/api/v1/auth/login", "", loginBody)

	assert.Equal(t, http.StatusOK, logRes.StatusCode)
	assert.Contains(t, logBodyStr, "access_token")
	t.Logf("ЛОГИН: Успешно. Ответ: %s", logBodyStr)
}

// TestRegister_DuplicateEmail - защита от дубликатов email
func TestRegister_DuplicateEmail(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	err := helpers.CreateUser(t, tx, &models.User{
		FullName:     "User One",
		Email:        "duplicate@test.com",
		PasswordHash: "pass123",
		Role:         models.UserRoleLearner,
	})
	assert.NoError(t, err)

	duplicateBody := map[string]interface{}{
		"full_name": "User Two",
		"email":     "duplicate@test.com",
		"password":  "password_is_long_enough_123",
		"role":      "instructor",
	}
	regRes, regBodyStr := ts.SendRequest(t, "POST", "/api/v1/auth/register", "", duplicateBody)

	assert.Equal(t, http.StatusConflict, regRes.StatusCode)
	assert.Contains(t, regBodyStr, "Email already in use")
	t.Logf("ДУБЛИКАТ EMAIL: Успешно. Ответ: %s", regBodyStr)
}

// TestRegister_AdminRoleRejected - роль admin через регистрацию не выдается
func TestRegister_AdminRoleRejected(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	adminBody := map[string]interface{}{
		"full_name": "Wannabe Admin",
		"email":     "wannabe@test.com",
		"password":  "password123",
		"role":      "admin",
	}
	regRes, regBodyStr := ts.SendRequest(t, "POST", "/api/v1/auth/register", "", adminBody)

	assert.Equal(t, http.StatusBadRequest, regRes.StatusCode)
	t.Logf("РЕГИСТРАЦИЯ ADMIN: Успешно отклонена. Ответ: %s", regBodyStr)
}

// TestLogin_BadPassword - неверный пароль
func TestLogin_BadPassword(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	err := helpers.CreateUser(t, tx, &models.User{
		FullName:     "Test User",
		Email:        "user@test.com",
		PasswordHash: "correct-password",
		Role:         models.UserRoleLearner,
	})
	assert.NoError(t, err)

	loginBody := map[string]interface{}{
		"email":    "user@test.com",
		"password": "WRONG-password",
	}
	logRes, logBodyStr := ts.SendRequest(t, "POST", "/api/v1/auth/login", "", loginBody)

	assert.Equal(t, http.StatusUnauthorized, logRes.StatusCode)
	assert.Contains(t, logBodyStr, "Invalid email or password")
	t.Logf("НЕВЕРНЫЙ ПАРОЛЬ: Успешно. Ответ: %s", logBodyStr)
}

// TestLogin_SuspendedUser - заблокированный пользователь не проходит логин
func TestLogin_SuspendedUser(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	err := helpers.CreateUser(t, tx, &models.User{
		FullName:     "Suspended User",
		Email:        "suspended@test.com",
		PasswordHash: "password123",
		Role:         models.UserRoleLearner,
		Status:       models.UserStatusSuspended,
	})
	assert.NoError(t, err)

	loginBody := map[string]interface{}{
		"email":    "suspended@test.com",
		"password": "password123",
	}
	logRes, logBodyStr := ts.SendRequest(t, "POST", "/api/v1/auth/login", "", loginBody)

	assert.Equal(t, http.StatusForbidden, logRes.StatusCode)
	assert.Contains(t, logBodyStr, "suspended")
	t.Logf("ЛОГИН ЗАБЛОКИРОВАННОГО: Успешно провалился (403). Ответ: %s", logBodyStr)
}

// TestRefreshToken - обмен refresh-токена на новую пару.
// Токен одноразовый, повторный обмен отклоняется.
func TestRefreshToken(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	regRes, regBodyStr := ts.SendRequest(t, "POST", "/api/v1/auth/register", "", map[string]interface{}{
		"full_name": "Refresh Tester",
		"email":     "refresh@test.com",
		"password":  "super_password123",
		"role":      "learner",
	})
	assert.Equal(t, http.StatusCreated, regRes.StatusCode)

	var regResp struct {
		RefreshToken string `json:"refresh_token"`
	}
	assert.NoError(t, jsonDecode(regBodyStr, &regResp))
	assert.NotEmpty(t, regResp.RefreshToken)

	refRes, refBodyStr := ts.SendRequest(t, "POST", "/api/v1/auth/refresh", "",
		map[string]interface{}{"refresh_token": regResp.RefreshToken})

	assert.Equal(t, http.StatusOK, refRes.StatusCode)
	assert.Contains(t, refBodyStr, "access_token")
	t.Logf("REFRESH: Успешно. Ответ: %s", refBodyStr)

	// Старый токен отозван ротацией
	againRes, againBody := ts.SendRequest(t, "POST", "/api/v1/auth/refresh", "",
		map[string]interface{}{"refresh_token": regResp.RefreshToken})

	assert.Equal(t, http.StatusUnauthorized, againRes.StatusCode)
	t.Logf("ПОВТОРНЫЙ REFRESH: Успешно отклонен (401). Ответ: %s", againBody)
}

// TestLogout - после logout refresh-токен не работает
func TestLogout(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	regRes, regBodyStr := ts.SendRequest(t, "POST", "/api/v1/auth/register", "", map[string]interface{}{
		"full_name": "Logout Tester",
		"email":     "logout@test.com",
		"password":  "super_password123",
		"role":      "learner",
	})
	assert.Equal(t, http.StatusCreated, regRes.StatusCode)

	var regResp struct {
		RefreshToken string `json:"refresh_token"`
	}
	assert.NoError(t, jsonDecode(regBodyStr, &regResp))

	outRes, outBody := ts.SendRequest(t, "POST", "/api/v1/auth/logout", "",
		map[string]interface{}{"refresh_token": regResp.RefreshToken})
	assert.Equal(t, http.StatusOK, outRes.StatusCode)
	t.Logf("LOGOUT: Успешно. Ответ: %s", outBody)

	refRes, _ := ts.SendRequest(t, "POST", "/api/v1/auth/refresh", "",
		map[string]interface{}{"refresh_token": regResp.RefreshToken})
	assert.Equal(t, http.StatusUnauthorized, refRes.StatusCode)
}

// TestGetMe - текущий пользователь по токену
func TestGetMe(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	token, user := helpers.CreateAndLoginLearner(t, ts, tx)

	meRes, meBodyStr := ts.SendRequest(t, "GET", "/api/v1/auth/me", token, nil)

	assert.Equal(t, http.StatusOK, meRes.StatusCode)
	assert.Contains(t, meBodyStr, user.Email)
	t.Logf("ME: Успешно. Ответ: %s", meBodyStr)
}
