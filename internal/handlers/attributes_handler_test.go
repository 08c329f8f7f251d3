package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
	"variants-service/internal/config"
	"variants-service/internal/models"
)

func TestListAttributes_Success(t *testing.T) {
	router := setupTestRouter()
	mockRepo := new(MockVariantsRepository)
	handler := NewAttributesHandler(mockRepo, testConfig())

	attributes := []models.Attribute{
		{ID: uuid.New(), TenantID: "tenant-123", Name: "Color", SortOrder: 1},
		{ID: uuid.New(), TenantID: "tenant-123", Name: "Size", SortOrder: 2},
	}
	mockRepo.On("ListAttributes", "tenant-123").Return(attributes, nil)

	router.GET("/attributes", handler.ListAttributes)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/attributes", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response models.AttributeListResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.True(t, response.Success)
	assert.Len(t, response.Data, 2)
	mockRepo.AssertExpectations(t)
}

func TestGetAttribute_NotFound(t *testing.T) {
	router := setupTestRouter()
	mockRepo := new(MockVariantsRepository)
	handler := NewAttributesHandler(mockRepo, testConfig())

	attributeID := uuid.New()
	mockRepo.On("GetAttributeByID", "tenant-123", attributeID).Return(nil, gorm.ErrRecordNotFound)

	router.GET("/attributes/:id", handler.GetAttribute)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/attributes/"+attributeID.String(), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var response models.ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "ATTRIBUTE_NOT_FOUND", response.Error.Code)
}

func TestGetAttribute_InvalidID(t *testing.T) {
	router := setupTestRouter()
	mockRepo := new(MockVariantsRepository)
	handler := NewAttributesHandler(mockRepo, testConfig())

	router.GET("/attributes/:id", handler.GetAttribute)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/attributes/not-a-uuid", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateAttribute_Success(t *testing.T) {
	router := setupTestRouter()
	mockRepo := new(MockVariantsRepository)
	handler := NewAttributesHandler(mockRepo, testConfig())

	mockRepo.On("ListAttributes", "tenant-123").Return([]models.Attribute{}, nil)
	mockRepo.On("CreateAttribute", "tenant-123", mock.AnythingOfType("*models.Attribute")).Return(nil)

	router.POST("/attributes", handler.CreateAttribute)

	body, _ := json.Marshal(map[string]interface{}{
		"name":      "Color",
		"sortOrder": 1,
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/attributes", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response models.AttributeResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.True(t, response.Success)
	assert.Equal(t, "Color", response.Data.Name)
	assert.Equal(t, 1, response.Data.SortOrder)
	mockRepo.AssertExpectations(t)
}

func TestCreateAttribute_MissingName(t *testing.T) {
	router := setupTestRouter()
	mockRepo := new(MockVariantsRepository)
	handler := NewAttributesHandler(mockRepo, testConfig())

	router.POST("/attributes", handler.CreateAttribute)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/attributes", bytes.NewBuffer([]byte("{}")))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockRepo.AssertNotCalled(t, "CreateAttribute")
}

func TestCreateAttribute_LimitExceeded(t *testing.T) {
	router := setupTestRouter()
	mockRepo := new(MockVariantsRepository)
	handler := NewAttributesHandler(mockRepo, &config.Config{MaxAttributesPerTenant: 1})

	mockRepo.On("ListAttributes", "tenant-123").Return([]models.Attribute{
		{ID: uuid.New(), TenantID: "tenant-123", Name: "Color"},
	}, nil)

	router.POST("/attributes", handler.CreateAttribute)

	body, _ := json.Marshal(map[string]interface{}{"name": "Size"})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/attributes", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response models.ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "ATTRIBUTE_LIMIT_EXCEEDED", response.Error.Code)
	mockRepo.AssertNotCalled(t, "CreateAttribute")
}

func TestUpdateAttribute_SortOrderResetToZero(t *testing.T) {
	router := setupTestRouter()
	mockRepo := new(MockVariantsRepository)
	handler := NewAttributesHandler(mockRepo, testConfig())

	attributeID := uuid.New()
	attribute := &models.Attribute{ID: attributeID, TenantID: "tenant-123", Name: "Color", SortOrder: 0}

	// sort_order=0 must survive into the column map; a struct update would
	// drop the zero value and the reset would silently not happen.
	mockRepo.On("UpdateAttribute", "tenant-123", attributeID, mock.MatchedBy(func(updates map[string]interface{}) bool {
		v, ok := updates["sort_order"]
		return ok && v == 0
	})).Return(nil)
	mockRepo.On("GetAttributeByID", "tenant-123", attributeID).Return(attribute, nil)

	router.PUT("/attributes/:id", handler.UpdateAttribute)

	body, _ := json.Marshal(map[string]interface{}{"sortOrder": 0})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/attributes/"+attributeID.String(), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockRepo.AssertExpectations(t)
}

func TestCreateAttributeValue_Success(t *testing.T) {
	router := setupTestRouter()
	mockRepo := new(MockVariantsRepository)
	handler := NewAttributesHandler(mockRepo, testConfig())

	attributeID := uuid.New()
	attribute := &models.Attribute{ID: attributeID, TenantID: "tenant-123", Name: "Color"}
	mockRepo.On("GetAttributeByID", "tenant-123", attributeID).Return(attribute, nil)
	mockRepo.On("CreateAttributeValue", "tenant-123", mock.AnythingOfType("*models.AttributeValue")).Return(nil)

	router.POST("/attributes/:id/values", handler.CreateAttributeValue)

	body, _ := json.Marshal(map[string]interface{}{"label": "Red"})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/attributes/"+attributeID.String()+"/values", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	mockRepo.AssertExpectations(t)
}

func TestCreateAttributeValue_AttributeNotFound(t *testing.T) {
	router := setupTestRouter()
	mockRepo := new(MockVariantsRepository)
	handler := NewAttributesHandler(mockRepo, testConfig())

	attributeID := uuid.New()
	mockRepo.On("GetAttributeByID", "tenant-123", attributeID).Return(nil, gorm.ErrRecordNotFound)

	router.POST("/attributes/:id/values", handler.CreateAttributeValue)

	body, _ := json.Marshal(map[string]interface{}{"label": "Red"})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/attributes/"+attributeID.String()+"/values", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockRepo.AssertNotCalled(t, "CreateAttributeValue")
}

func TestCreateAttributeValue_LimitExceeded(t *testing.T) {
	router := setupTestRouter()
	mockRepo := new(MockVariantsRepository)
	handler := NewAttributesHandler(mockRepo, &config.Config{MaxValuesPerAttribute: 1})

	attributeID := uuid.New()
	attribute := &models.Attribute{
		ID: attributeID, TenantID: "tenant-123", Name: "Color",
		Values: []*models.AttributeValue{
			{ID: uuid.New(), AttributeID: attributeID, Label: "Red"},
		},
	}
	mockRepo.On("GetAttributeByID", "tenant-123", attributeID).Return(attribute, nil)

	router.POST("/attributes/:id/values", handler.CreateAttributeValue)

	body, _ := json.Marshal(map[string]interface{}{"label": "Blue"})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/attributes/"+attributeID.String()+"/values", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response models.ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "VALUE_LIMIT_EXCEEDED", response.Error.Code)
	mockRepo.AssertNotCalled(t, "CreateAttributeValue")
}

func TestUpdateAttributeValue_InvalidID(t *testing.T) {
	router := setupTestRouter()
	mockRepo := new(MockVariantsRepository)
	handler := NewAttributesHandler(mockRepo, testConfig())

	router.PUT("/attributes/:id/values/:valueId", handler.UpdateAttributeValue)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("PUT", "/attributes/"+uuid.New().String()+"/values/not-a-uuid", bytes.NewBuffer([]byte("{}")))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestDeleteAttribute_Success(t *testing.T) {
	router := setupTestRouter()
	mockRepo := new(MockVariantsRepository)
	handler := NewAttributesHandler(mockRepo, testConfig())

	attributeID := uuid.New()
	mockRepo.On("DeleteAttribute", "tenant-123", attributeID).Return(nil)

	router.DELETE("/attributes/:id", handler.DeleteAttribute)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/attributes/"+attributeID.String(), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockRepo.AssertExpectations(t)
}

func TestDeleteAttributeValue_NotFound(t *testing.T) {
	router := setupTestRouter()
	mockRepo := new(MockVariantsRepository)
	handler := NewAttributesHandler(mockRepo, testConfig())

	valueID := uuid.New()
	mockRepo.On("DeleteAttributeValue", "tenant-123", valueID).Return(gorm.ErrRecordNotFound)

	router.DELETE("/attributes/:id/values/:valueId", handler.DeleteAttributeValue)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/attributes/"+uuid.New().String()+"/values/"+valueID.String(), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var response models.ErrorResponse
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.Equal(t, "VALUE_NOT_FOUND", response.Error.Code)
}

func TestDeleteAttributeValue_Success(t *testing.T) {
	router := setupTestRouter()
	mockRepo := new(MockVariantsRepository)
	handler := NewAttributesHandler(mockRepo, testConfig())

	valueID := uuid.New()
	mockRepo.On("DeleteAttributeValue", "tenant-123", valueID).Return(nil)

	router.DELETE("/attributes/:id/values/:valueId", handler.DeleteAttributeValue)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("DELETE", "/attributes/"+uuid.New().String()+"/values/"+valueID.String(), nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	mockRepo.AssertExpectations(t)
}
