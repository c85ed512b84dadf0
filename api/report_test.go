package api

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportHandler_BudgetProgress_Overall(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 总预算只匹配 category_id IS NULL
	mock.ExpectQuery("SELECT .* FROM `budgets`").
		WithArgs(uint(1), "2025-09").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "month", "category_id", "limit_amount", "created_at", "updated_at"}).
			AddRow(1, 1, "2025-09", nil, 500.00, time.Now(), time.Now()))

	// 当月支出合计
	mock.ExpectQuery("SELECT COALESCE").
		WithArgs(uint(1), "expense", "2025-09").
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(150.00))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/budgets/progress", NewReportHandler().BudgetProgress)

	req := httptest.NewRequest("GET", "/budgets/progress?month=2025-09", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "2025-09", data["month"])
	assert.Equal(t, "overall", data["scope"])
	assert.Nil(t, data["category_id"])
	assert.Equal(t, float64(500), data["limit"])
	assert.Equal(t, float64(150), data["spent"])
	assert.Equal(t, float64(350), data["remaining"])
	assert.Equal(t, float64(30), data["used_percent"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportHandler_BudgetProgress_Category(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `budgets`").
		WithArgs(uint(1), "2025-09", uint(3)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "month", "category_id", "limit_amount", "created_at", "updated_at"}).
			AddRow(2, 1, "2025-09", 3, 300.00, time.Now(), time.Now()))

	mock.ExpectQuery("SELECT COALESCE").
		WithArgs(uint(1), "expense", "2025-09", uint(3)).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(100.00))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/budgets/progress", NewReportHandler().BudgetProgress)

	req := httptest.NewRequest("GET", "/budgets/progress?month=2025-09&category_id=3", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "category", data["scope"])
	assert.Equal(t, float64(3), data["category_id"])
	// 100/300 保留两位小数
	assert.Equal(t, 33.33, data["used_percent"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportHandler_BudgetProgress_NoBudget(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	mock.ExpectQuery("SELECT .* FROM `budgets`").
		WithArgs(uint(1), "2025-09").
		WillReturnRows(sqlmock.NewRows([]string{}))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/budgets/progress", NewReportHandler().BudgetProgress)

	req := httptest.NewRequest("GET", "/budgets/progress?month=2025-09", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 404, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "该范围未设置预算", resp["message"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportHandler_BudgetProgress_InvalidMonth(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/budgets/progress", NewReportHandler().BudgetProgress)

	req := httptest.NewRequest("GET", "/budgets/progress?month=202509", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
}

func TestReportHandler_Summary(t *testing.T) {
	mock, cleanup := setupMockDB(t)
	defer cleanup()

	// 收入、支出、按类别合计，三次聚合查询
	mock.ExpectQuery("SELECT COALESCE").
		WithArgs(uint(1), "income").
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(2000.00))

	mock.ExpectQuery("SELECT COALESCE").
		WithArgs(uint(1), "expense").
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow(1200.50))

	mock.ExpectQuery("SELECT categories.id AS category_id").
		WithArgs(uint(1)).
		WillReturnRows(sqlmock.NewRows([]string{"category_id", "name", "type", "total"}).
			AddRow(4, "工资", "income", 2000.00).
			AddRow(1, "餐饮", "expense", 1200.50))

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/reports/summary", NewReportHandler().Summary)

	req := httptest.NewRequest("GET", "/reports/summary", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 200, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(2000), data["income"])
	assert.Equal(t, 1200.50, data["expense"])
	assert.Equal(t, 799.50, data["net"])
	assert.Nil(t, data["start_date"])
	assert.Nil(t, data["end_date"])
	byCategory := data["by_category"].([]interface{})
	require.Len(t, byCategory, 2)
	first := byCategory[0].(map[string]interface{})
	assert.Equal(t, "工资", first["name"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportHandler_Summary_InvalidRange(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/reports/summary", NewReportHandler().Summary)

	req := httptest.NewRequest("GET", "/reports/summary?start_date=2025-02-01&end_date=2025-01-01", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "开始日期不能晚于结束日期", resp["message"])
}

func TestReportHandler_Summary_BadDate(t *testing.T) {
	_, cleanup := setupMockDB(t)
	defer cleanup()

	router := gin.New()
	router.Use(setUserIDMiddleware(1))
	router.GET("/reports/summary", NewReportHandler().Summary)

	req := httptest.NewRequest("GET", "/reports/summary?start_date=01-01-2025", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, 400, w.Code)
}
