// Package tests 集成测试
//
// 运行集成测试：
//
//	MONGO_URI=mongodb://localhost:27017 go test ./tests -v
//
// 说明：
//   - MONGO_URI: MongoDB 连接地址（默认: mongodb://localhost:27017）
//   - KEEP_TEST_DATA: 设置为 "true" 时，测试完成后保留数据库数据和存储文件（默认: false，会自动清理）
//   - 测试不依赖远程AI模型，聊天助手走规则回退路径
//   - 测试使用本地文件系统存储（临时目录）
package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"kindbite/internal/config"
	"kindbite/internal/server"
)

const testDatabase = "kindbite_test"

// 包级别的测试环境变量（在 TestMain 中初始化）
var (
	testCtx         context.Context
	testEngine      *gin.Engine
	testMongoClient *mongo.Client
	testStorageDir  string
)

// TestMain 测试主函数，在所有测试运行前初始化和运行后清理
func TestMain(m *testing.M) {
	testCtx = context.Background()

	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}

	// 单独的客户端，用于测试结束时清理数据库
	var err error
	testMongoClient, err = mongo.Connect(testCtx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to MongoDB: %v", err))
	}

	testStorageDir, err = os.MkdirTemp("", "kindbite_test_storage")
	if err != nil {
		panic(fmt.Sprintf("Failed to create storage dir: %v", err))
	}

	cfg := &config.Config{
		Server: config.ServerConfig{
			Mode:         "test",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Mongo: config.MongoConfig{
			URI:      mongoURI,
			Database: testDatabase,
		},
		Auth: config.AuthConfig{
			JWTSecret:          "integration-test-secret",
			AccessTokenExpiry:  time.Hour,
			RefreshTokenExpiry: 24 * time.Hour,
		},
		Storage: config.StorageConfig{
			Type: "local",
			Local: &config.LocalConfig{
				BasePath:      testStorageDir,
				BaseURL:       "http://localhost:7080/storage",
				PresignExpiry: 3600,
			},
		},
		Rewards: config.RewardsConfig{
			BaseCoinsPerItem: 10,
			CoinsPerKgCO2:    5,
		},
	}

	srv, err := server.New(cfg)
	if err != nil {
		panic(fmt.Sprintf("Failed to create server: %v", err))
	}
	testEngine = srv.Engine()

	code := m.Run()

	if os.Getenv("KEEP_TEST_DATA") == "true" {
		fmt.Fprintf(os.Stderr, "保留测试数据：数据库=%s, 存储目录=%s\n", testDatabase, testStorageDir)
	} else {
		_ = testMongoClient.Database(testDatabase).Drop(testCtx)
		_ = os.RemoveAll(testStorageDir)
	}
	_ = testMongoClient.Disconnect(testCtx)

	os.Exit(code)
}

// apiResponse 统一响应信封
type apiResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Detail  string          `json:"detail,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// doRequest 向测试服务器发起一次JSON请求
func doRequest(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			panic(fmt.Sprintf("Failed to marshal request body: %v", err))
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	testEngine.ServeHTTP(w, req)
	return w
}

// parseResponse 解析响应信封
func parseResponse(t *testing.T, w *httptest.ResponseRecorder) *apiResponse {
	t.Helper()

	var resp apiResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response %q: %v", w.Body.String(), err)
	}
	return &resp
}

// decodeData 将响应data字段解码到目标结构
func decodeData(t *testing.T, resp *apiResponse, out interface{}) {
	t.Helper()

	if err := json.Unmarshal(resp.Data, out); err != nil {
		t.Fatalf("Failed to decode data %q: %v", string(resp.Data), err)
	}
}

// registerAndLogin 注册并登录一个测试用户，返回访问令牌和用户ID
// 用户已存在时直接登录
func registerAndLogin(t *testing.T, email, role string) (token, userID string) {
	t.Helper()

	w := doRequest(http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"email":      email,
		"password":   "password123",
		"first_name": "Test",
		"last_name":  "User",
		"role":       role,
	})
	if w.Code != http.StatusOK && w.Code != http.StatusConflict {
		t.Fatalf("Failed to register %s: status=%d body=%s", email, w.Code, w.Body.String())
	}

	w = doRequest(http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"email":    email,
		"password": "password123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("Failed to login %s: status=%d body=%s", email, w.Code, w.Body.String())
	}

	var data struct {
		AccessToken string `json:"access_token"`
		User        struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	decodeData(t, parseResponse(t, w), &data)
	return data.AccessToken, data.User.ID
}
