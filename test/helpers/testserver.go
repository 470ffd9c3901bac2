package helpers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"sync"
	"testing"

	"skillbridge_backend/database"
	"skillbridge_backend/internal/app"
	"skillbridge_backend/internal/auth"
	"skillbridge_backend/internal/config"
	"skillbridge_backend/internal/logger"
	"skillbridge_backend/pkg/contextkeys"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// TestTxHeader - заголовок, через который тест привязывает запрос
// к своей транзакции.
const TestTxHeader = "X-Test-Tx"

// TestServer - общий httptest-сервер для интеграционных тестов.
// Каждый тест работает в своей транзакции: BeginTransaction регистрирует
// её под именем теста, SendRequest передает имя в заголовке, и обертка
// над роутером кладет транзакцию в контекст запроса до DBMiddleware.
// Rollback в конце теста убирает все данные, поэтому тесты можно
// запускать параллельно на одной БД.
type TestServer struct {
	Server *httptest.Server
	DB     *gorm.DB

	uploadsDir string

	mu  sync.Mutex
	txs map[string]*gorm.DB
}

// NewTestServer создает и настраивает тестовый сервер и БД
func NewTestServer(t *testing.T) *TestServer {
	// Конфиг берет DATABASE_URL и JWT_SECRET из os.Getenv()
	config.LoadConfig()
	cfg := config.GetConfig()

	logger.Init(cfg.Server.Env)
	auth.InitJWT(cfg.JWT.Secret, cfg.JWT.TTL)

	// Файлы тестов не должны оставаться на диске. t.TempDir() не подходит:
	// сервер общий, а каталог первого теста удаляется по его завершении.
	uploadsDir, err := os.MkdirTemp("", "skillbridge-test-uploads")
	if err != nil {
		t.Fatalf("Не удалось создать временный каталог для файлов: %v", err)
	}
	cfg.Storage.BasePath = uploadsDir

	db, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("Не удалось подключиться к тестовой БД (%s): %v", cfg.Database.DSN, err)
	}

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Не удалось выполнить AutoMigrate для тестовой БД: %v", err)
	}

	router := app.SetupRouter(cfg, db)

	ts := &TestServer{
		DB:         db,
		uploadsDir: uploadsDir,
		txs:        make(map[string]*gorm.DB),
	}

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if txID := r.Header.Get(TestTxHeader); txID != "" {
			if tx := ts.transaction(txID); tx != nil {
				ctx := context.WithValue(r.Context(), contextkeys.DBContextKey, tx)
				r = r.WithContext(ctx)
			}
		}
		router.ServeHTTP(w, r)
	})

	ts.Server = httptest.NewServer(handler)

	log.Printf("✅ Тестовый сервер запущен, тестовая БД настроена.")
	return ts
}

func (ts *TestServer) Close() {
	ts.Server.Close()
	sqlDB, _ := ts.DB.DB()
	sqlDB.Close()
	os.RemoveAll(ts.uploadsDir)
}

// BeginTransaction открывает транзакцию и привязывает её к тесту
func (ts *TestServer) BeginTransaction(t *testing.T) *gorm.DB {
	tx := ts.DB.Begin()
	if tx.Error != nil {
		t.Fatalf("Не удалось открыть транзакцию: %v", tx.Error)
	}

	ts.mu.Lock()
	ts.txs[t.Name()] = tx
	ts.mu.Unlock()

	return tx
}

// RollbackTransaction откатывает транзакцию теста
func (ts *TestServer) RollbackTransaction(t *testing.T, tx *gorm.DB) {
	ts.mu.Lock()
	delete(ts.txs, t.Name())
	ts.mu.Unlock()

	tx.Rollback()
}

func (ts *TestServer) transaction(txID string) *gorm.DB {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.txs[txID]
}

// SendRequest отправляет JSON-запрос в рамках транзакции теста
func (ts *TestServer) SendRequest(t *testing.T, method, path, token string, body interface{}) (*http.Response, string) {
	url := ts.Server.URL + path

	var reqBody io.Reader = nil
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Ошибка кодирования JSON для запроса: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		t.Fatalf("Ошибка создания HTTP-запроса: %v", err)
	}

	req.Header.Set(TestTxHeader, t.Name())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return ts.do(t, req)
}

// SendMultipartRequest отправляет multipart/form-data запрос с файлом.
// Content-Type части выставляется явно - сервер валидирует MIME-тип
// по заголовку части. fileField == "" означает запрос без файла
// (для негативных тестов).
func (ts *TestServer) SendMultipartRequest(t *testing.T, method, path, token string, fields map[string]string, fileField, fileName, fileContentType string, fileContent []byte) (*http.Response, string) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("Ошибка записи form-поля %s: %v", key, err)
		}
	}

	if fileField != "" {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, fileField, fileName))
		header.Set("Content-Type", fileContentType)

		part, err := writer.CreatePart(header)
		if err != nil {
			t.Fatalf("Ошибка создания form-файла: %v", err)
		}
		if _, err := part.Write(fileContent); err != nil {
			t.Fatalf("Ошибка записи содержимого файла: %v", err)
		}
	}

	if err := writer.Close(); err != nil {
		t.Fatalf("Ошибка закрытия multipart writer: %v", err)
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, &buf)
	if err != nil {
		t.Fatalf("Ошибка создания HTTP-запроса: %v", err)
	}

	req.Header.Set(TestTxHeader, t.Name())
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return ts.do(t, req)
}

func (ts *TestServer) do(t *testing.T, req *http.Request) (*http.Response, string) {
	res, err := ts.Server.Client().Do(req)
	if err != nil {
		t.Fatalf("Ошибка отправки HTTP-запроса: %v", err)
	}

	resBodyBytes, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("Ошибка чтения тела ответа: %v", err)
	}
	defer res.Body.Close()

	return res, string(resBodyBytes)
}
