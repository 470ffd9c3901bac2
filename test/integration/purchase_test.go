package integration_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"skillbridge_backend/internal/models"
	"skillbridge_backend/test/helpers"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// receiptPNG - минимальное содержимое "квитанции" для multipart-запросов
var receiptPNG = []byte("\x89PNG\r\n\x1a\nfake-receipt-bytes")

// submitPurchase отправляет заявку на покупку с квитанцией
func submitPurchase(t *testing.T, ts *helpers.TestServer, token, courseID string) (*http.Response, string) {
	return ts.SendMultipartRequest(t, "POST", "/api/v1/purchases", token,
		map[string]string{"course_id": courseID},
		"receipt", "receipt.png", "image/png", receiptPNG)
}

// TestPaymentInstructions - реквизиты для банковского перевода
func TestPaymentInstructions(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	_, instructor := helpers.CreateAndLoginInstructor(t, ts, tx)
	course := helpers.CreateTestCourse(t, tx, instructor.ID, "Go для начинающих", 2500)
	learnerToken, _ := helpers.CreateAndLoginLearner(t, ts, tx)

	res, bodyStr := ts.SendRequest(t, "GET", "/api/v1/purchases/instructions/"+course.ID, learnerToken, nil)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, bodyStr, "bank_name")
	assert.Contains(t, bodyStr, "2500")
	assert.Contains(t, bodyStr, "SB-")
	t.Logf("РЕКВИЗИТЫ: Успешно. Ответ: %s", bodyStr)
}

// TestSubmitPurchase_Success - покупка с квитанцией создается в статусе submitted,
// сумма берется из цены курса
func TestSubmitPurchase_Success(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	_, instructor := helpers.CreateAndLoginInstructor(t, ts, tx)
	course := helpers.CreateTestCourse(t, tx, instructor.ID, "Алгоритмы", 1800)
	learnerToken, _ := helpers.CreateAndLoginLearner(t, ts, tx)

	res, bodyStr := submitPurchase(t, ts, learnerToken, course.ID)

	assert.Equal(t, http.StatusCreated, res.StatusCode)

	var purchase struct {
		ID     string  `json:"id"`
		Status string  `json:"status"`
		Amount float64 `json:"amount"`
	}
	err := json.Unmarshal([]byte(bodyStr), &purchase)
	assert.NoError(t, err)
	assert.Equal(t, "submitted", purchase.Status)
	assert.Equal(t, 1800.0, purchase.Amount, "Сумма всегда из цены курса")
	t.Logf("ПОКУПКА: Успешно создана. Ответ: %s", bodyStr)
}

// TestSubmitPurchase_RequiresReceipt - без файла квитанции заявка не принимается
func TestSubmitPurchase_RequiresReceipt(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	_, instructor := helpers.CreateAndLoginInstructor(t, ts, tx)
	course := helpers.CreateTestCourse(t, tx, instructor.ID, "Курс без квитанции", 1000)
	learnerToken, _ := helpers.CreateAndLoginLearner(t, ts, tx)

	// Multipart без файла
	res, bodyStr := ts.SendMultipartRequest(t, "POST", "/api/v1/purchases", learnerToken,
		map[string]string{"course_id": course.ID},
		"", "", "", nil)

	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Contains(t, bodyStr, "receipt")
	t.Logf("БЕЗ КВИТАНЦИИ: Успешно отклонено. Ответ: %s", bodyStr)
}

// TestSubmitPurchase_InvalidReceiptType - недопустимый MIME-тип квитанции
func TestSubmitPurchase_InvalidReceiptType(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	_, instructor := helpers.CreateAndLoginInstructor(t, ts, tx)
	course := helpers.CreateTestCourse(t, tx, instructor.ID, "Курс", 1000)
	learnerToken, _ := helpers.CreateAndLoginLearner(t, ts, tx)

	res, bodyStr := ts.SendMultipartRequest(t, "POST", "/api/v1/purchases", learnerToken,
		map[string]string{"course_id": course.ID},
		"receipt", "receipt.exe", "application/x-msdownload", []byte("MZ..."))

	assert.Equal(t, http.StatusUnsupportedMediaType, res.StatusCode)
	t.Logf("НЕВЕРНЫЙ ТИП ФАЙЛА: Успешно отклонено. Ответ: %s", bodyStr)
}

// TestSubmitPurchase_Duplicate - вторая заявка на тот же курс отклоняется,
// пока первая submitted или approved
func TestSubmitPurchase_Duplicate(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	_, instructor := helpers.CreateAndLoginInstructor(t, ts, tx)
	course := helpers.CreateTestCourse(t, tx, instructor.ID, "Курс", 1000)
	learnerToken, learner := helpers.CreateAndLoginLearner(t, ts, tx)

	helpers.CreateTestPurchase(t, tx, learner.ID, course.ID, 1000, models.PurchaseStatusSubmitted)

	res, bodyStr := submitPurchase(t, ts, learnerToken, course.ID)

	assert.Equal(t, http.StatusConflict, res.StatusCode)
	assert.Contains(t, bodyStr, "active purchase")
	t.Logf("ДУБЛИКАТ ПОКУПКИ: Успешно отклонено. Ответ: %s", bodyStr)
}

// TestSubmitPurchase_DuplicateBlockedByIndex - уникальность активной
// покупки держит сама БД: при гонке двух подач проверка в сервисе
// пропускает обе, вторую вставку отклоняет частичный индекс
func TestSubmitPurchase_DuplicateBlockedByIndex(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	_, instructor := helpers.CreateAndLoginInstructor(t, ts, tx)
	course := helpers.CreateTestCourse(t, tx, instructor.ID, "Курс", 1000)
	_, learner := helpers.CreateAndLoginLearner(t, ts, tx)

	helpers.CreateTestPurchase(t, tx, learner.ID, course.ID, 1000, models.PurchaseStatusSubmitted)

	dup := models.Purchase{
		UserID:      learner.ID,
		CourseID:    course.ID,
		Amount:      1000,
		Currency:    "ETB",
		ReceiptPath: fmt.Sprintf("receipt/%s/second-receipt.pdf", learner.ID),
		Status:      models.PurchaseStatusSubmitted,
	}
	tx.SavePoint("dup")
	err := tx.Create(&dup).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	tx.RollbackTo("dup")
	t.Log("ВСТАВКА ДУБЛИКАТА: Успешно отклонена индексом")

	// Rejected индекс не учитывает: строка с отказом для той же
	// пары вставляется свободно
	rejected := helpers.CreateTestPurchase(t, tx, learner.ID, course.ID, 1000, models.PurchaseStatusRejected)
	assert.NotEmpty(t, rejected.ID)
}

// TestSubmitPurchase_RejectedAllowsResubmit - после reject можно подать заново
func TestSubmitPurchase_RejectedAllowsResubmit(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	_, instructor := helpers.CreateAndLoginInstructor(t, ts, tx)
	course := helpers.CreateTestCourse(t, tx, instructor.ID, "Курс", 1000)
	learnerToken, learner := helpers.CreateAndLoginLearner(t, ts, tx)

	helpers.CreateTestPurchase(t, tx, learner.ID, course.ID, 1000, models.PurchaseStatusRejected)

	res, bodyStr := submitPurchase(t, ts, learnerToken, course.ID)

	assert.Equal(t, http.StatusCreated, res.StatusCode)
	assert.Contains(t, bodyStr, "submitted")
	t.Logf("ПОВТОРНАЯ ПОДАЧА: Успешно. Ответ: %s", bodyStr)
}

// TestSubmitPurchase_DraftCourse - купить неопубликованный курс нельзя
func TestSubmitPurchase_DraftCourse(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	_, instructor := helpers.CreateAndLoginInstructor(t, ts, tx)
	course := helpers.CreateTestCourse(t, tx, instructor.ID, "Черновик", 1000)
	tx.Model(&models.Course{}).Where("id = ?", course.ID).Update("status", models.CourseStatusDraft)

	learnerToken, _ := helpers.CreateAndLoginLearner(t, ts, tx)

	res, bodyStr := submitPurchase(t, ts, learnerToken, course.ID)

	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Contains(t, bodyStr, "not active")
	t.Logf("ЧЕРНОВИК КУРСА: Успешно отклонено. Ответ: %s", bodyStr)
}

// TestGetPurchase_VisibleToOwnerAndAdmin - покупку видят владелец и админ,
// посторонний получает 403
func TestGetPurchase_VisibleToOwnerAndAdmin(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	_, instructor := helpers.CreateAndLoginInstructor(t, ts, tx)
	course := helpers.CreateTestCourse(t, tx, instructor.ID, "Курс", 1000)

	ownerToken, owner := helpers.CreateAndLoginLearner(t, ts, tx)
	strangerToken, _ := helpers.CreateAndLoginLearner(t, ts, tx)
	adminToken, _ := helpers.CreateAndLoginAdmin(t, ts, tx)

	purchase := helpers.CreateTestPurchase(t, tx, owner.ID, course.ID, 1000, models.PurchaseStatusSubmitted)
	path := fmt.Sprintf("/api/v1/purchases/%s", purchase.ID)

	ownerRes, _ := ts.SendRequest(t, "GET", path, ownerToken, nil)
	assert.Equal(t, http.StatusOK, ownerRes.StatusCode)

	adminRes, _ := ts.SendRequest(t, "GET", path, adminToken, nil)
	assert.Equal(t, http.StatusOK, adminRes.StatusCode)

	strangerRes, strangerBody := ts.SendRequest(t, "GET", path, strangerToken, nil)
	assert.Equal(t, http.StatusForbidden, strangerRes.StatusCode)
	t.Logf("ЧУЖАЯ ПОКУПКА: Успешно скрыта (403). Ответ: %s", strangerBody)
}

// TestGetMyPurchases - список своих покупок
func TestGetMyPurchases(t *testing.T) {
	t.Parallel()

	ts := GetTestServer(t)
	tx := ts.BeginTransaction(t)
	defer ts.RollbackTransaction(t, tx)

	_, instructor := helpers.CreateAndLoginInstructor(t, ts, tx)
	courseA := helpers.CreateTestCourse(t, tx, instructor.ID, "Курс A", 1000)
	courseB := helpers.CreateTestCourse(t, tx, instructor.ID, "Курс B", 2000)

	learnerToken, learner := helpers.CreateAndLoginLearner(t, ts, tx)
	helpers.CreateTestPurchase(t, tx, learner.ID, courseA.ID, 1000, models.PurchaseStatusApproved)
	helpers.CreateTestPurchase(t, tx, learner.ID, courseB.ID, 2000, models.PurchaseStatusSubmitted)

	res, bodyStr := ts.SendRequest(t, "GET", "/api/v1/purchases/my", learnerToken, nil)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Contains(t, bodyStr, `"total":2`)
	assert.Contains(t, bodyStr, "approved")
	assert.Contains(t, bodyStr, "submitted")
	t.Logf("МОИ ПОКУПКИ: Успешно. Ответ: %s", bodyStr)
}
