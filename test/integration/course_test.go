package integration_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"skillbridge_backend/internal/models"
	"skillbridge_backend/test/helpers"

	"github.com/stretchr/testify/assert"
)

// TestCreateCourse_InstructorOnly - курс может создать только преподаватель
func TestCreateCourse_InstructorOnly(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	learnerToken, _ := helpers.CreateAndLoginLearner(t, ts, tx)

	courseBody := map[string]interface{}{
		"title": "Недоступный курс",
		"price": 1000,
	}
	res, bodyStr := ts.SendRequest(t, "POST", "/api/v1/courses", learnerToken, courseBody)

	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	t.Logf("КУРС ОТ СТУДЕНТА: Успешно отклонен (403). Ответ: %s", bodyStr)
}

// TestCourseLifecycle - создание черновика, публикация, появление в каталоге
func TestCourseLifecycle(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	instructorToken, _ := helpers.CreateAndLoginInstructor(t, ts, tx)

	courseBody := map[string]interface{}{
		"title":          "Основы Go",
		"description":    "Курс по языку Go",
		"category":       "programming",
		"level":          "beginner",
		"price":          2500,
		"duration_weeks": 8,
	}
	createRes, createBodyStr := ts.SendRequest(t, "POST", "/api/v1/courses", instructorToken, courseBody)

	assert.Equal(t, http.StatusCreated, createRes.StatusCode)
	assert.Contains(t, createBodyStr, `"status":"draft"`, "Новый курс создается черновиком")
	t.Logf("СОЗДАНИЕ КУРСА: Успешно. Ответ: %s", createBodyStr)

	var created struct {
		ID string `json:"id"`
	}
	assert.NoError(t, json.Unmarshal([]byte(createBodyStr), &created))

	// Черновик не виден в публичном каталоге
	listRes, listBodyStr := ts.SendRequest(t, "GET", "/api/v1/courses", "", nil)
	assert.Equal(t, http.StatusOK, listRes.StatusCode)
	assert.NotContains(t, listBodyStr, created.ID)

	// Публикация
	statusRes, _ := ts.SendRequest(t, "PUT", "/api/v1/courses/"+created.ID+"/status",
		instructorToken, map[string]interface{}{"status": "active"})
	assert.Equal(t, http.StatusOK, statusRes.StatusCode)

	listRes, listBodyStr = ts.SendRequest(t, "GET", "/api/v1/courses", "", nil)
	assert.Equal(t, http.StatusOK, listRes.StatusCode)
	assert.Contains(t, listBodyStr, created.ID)
	t.Logf("ПУБЛИКАЦИЯ: Успешно, курс в каталоге. Ответ: %s", listBodyStr)
}

// TestDraftCourse_HiddenFromOthers - черновик видит только автор
func TestDraftCourse_HiddenFromOthers(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	instructorToken, instructor := helpers.CreateAndLoginInstructor(t, ts, tx)
	course := helpers.CreateTestCourse(t, tx, instructor.ID, "Черновик", 1000)
	tx.Model(&models.Course{}).Where("id = ?", course.ID).Update("status", models.CourseStatusDraft)

	learnerToken, _ := helpers.CreateAndLoginLearner(t, ts, tx)

	authorRes, _ := ts.SendRequest(t, "GET", "/api/v1/courses/"+course.ID, instructorToken, nil)
	assert.Equal(t, http.StatusOK, authorRes.StatusCode)

	strangerRes, strangerBody := ts.SendRequest(t, "GET", "/api/v1/courses/"+course.ID, learnerToken, nil)
	assert.Equal(t, http.StatusNotFound, strangerRes.StatusCode)
	t.Logf("ЧЕРНОВИК ДЛЯ ПОСТОРОННЕГО: Успешно скрыт (404). Ответ: %s", strangerBody)
}

// TestCourseAccess_DerivedFromLedger - has_access не хранится, а вычисляется
// из реестра покупок при каждом чтении
func TestCourseAccess_DerivedFromLedger(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	_, instructor := helpers.CreateAndLoginInstructor(t, ts, tx)
	course := helpers.CreateTestCourse(t, tx, instructor.ID, "Курс", 1000)
	learnerToken, learner := helpers.CreateAndLoginLearner(t, ts, tx)

	// Аноним и пользователь без покупки доступа не имеют
	anonRes, anonBody := ts.SendRequest(t, "GET", "/api/v1/courses/"+course.ID, "", nil)
	assert.Equal(t, http.StatusOK, anonRes.StatusCode)
	assert.Contains(t, anonBody, `"has_access":false`)

	res, bodyStr := ts.SendRequest(t, "GET", "/api/v1/courses/"+course.ID, learnerToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, bodyStr, `"has_access":false`)

	// Submitted покупка доступа не дает
	purchase := helpers.CreateTestPurchase(t, tx, learner.ID, course.ID, 1000, models.PurchaseStatusSubmitted)
	res, bodyStr = ts.SendRequest(t, "GET", "/api/v1/courses/"+course.ID, learnerToken, nil)
	assert.Contains(t, bodyStr, `"has_access":false`)

	// Approved - дает, без какого-либо отдельного поля в БД
	tx.Model(&models.Purchase{}).Where("id = ?", purchase.ID).Update("status", models.PurchaseStatusApproved)
	res, bodyStr = ts.SendRequest(t, "GET", "/api/v1/courses/"+course.ID, learnerToken, nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, bodyStr, `"has_access":true`)
	t.Logf("ДОСТУП ИЗ РЕЕСТРА: Успешно. Ответ: %s", bodyStr)
}

// TestCourseMaterial_RequiresApprovedPurchase - материалы закрыты без
// подтвержденной покупки
func TestCourseMaterial_RequiresApprovedPurchase(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	_, instructor := helpers.CreateAndLoginInstructor(t, ts, tx)
	course := helpers.CreateTestCourse(t, tx, instructor.ID, "Курс", 1000)
	learnerToken, _ := helpers.CreateAndLoginLearner(t, ts, tx)

	res, bodyStr := ts.SendRequest(t, "GET", "/api/v1/courses/"+course.ID+"/material", learnerToken, nil)

	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	assert.Contains(t, bodyStr, "approved")
	t.Logf("МАТЕРИАЛЫ БЕЗ ПОКУПКИ: Успешно закрыты (403). Ответ: %s", bodyStr)
}

// TestUpdateCourse_OwnershipEnforced - чужой курс редактировать нельзя
func TestUpdateCourse_OwnershipEnforced(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	_, owner := helpers.CreateAndLoginInstructor(t, ts, tx)
	course := helpers.CreateTestCourse(t, tx, owner.ID, "Чужой курс", 1000)

	otherToken, _ := helpers.CreateAndLoginInstructor(t, ts, tx)

	res, bodyStr := ts.SendRequest(t, "PUT", "/api/v1/courses/"+course.ID, otherToken,
		map[string]interface{}{"title": "Перехваченный курс"})

	assert.Equal(t, http.StatusForbidden, res.StatusCode)
	t.Logf("ЧУЖОЙ КУРС: Успешно защищен (403). Ответ: %s", bodyStr)
}
