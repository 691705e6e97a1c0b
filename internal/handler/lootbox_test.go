package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/quartzlab/tradepost/internal/domain"
)

type MockLootboxService struct {
	mock.Mock
}

func (m *MockLootboxService) OpenCase(ctx context.Context, userID string, caseInstanceID uuid.UUID) (*domain.RollResult, error) {
	args := m.Called(ctx, userID, caseInstanceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RollResult), args.Error(1)
}

func instanceRequest(method, path, instanceID, body string) *http.Request {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("instanceID", instanceID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func sampleRoll() *domain.RollResult {
	return &domain.RollResult{
		CaseItemID: 10,
		CaseName:   "Starter Case",
		WonItem:    domain.CatalogItem{ID: 3, Name: "Oak Rod"},
		RollValue:  42.5,
		RolledAt:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestHandleOpenCase_StripsRollValue(t *testing.T) {
	svc := new(MockLootboxService)
	caseInstanceID := uuid.New()
	svc.On("OpenCase", mock.Anything, "user1", caseInstanceID).Return(sampleRoll(), nil)

	req := instanceRequest(http.MethodPost, "/api/v1/inventory/"+caseInstanceID.String()+"/open",
		caseInstanceID.String(), `{"user_id":"user1"}`)
	rec := httptest.NewRecorder()
	HandleOpenCase(svc)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "roll_value")

	var view domain.PublicRollResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Equal(t, 10, view.CaseItemID)
	assert.Equal(t, "Oak Rod", view.WonItem.Name)
	svc.AssertExpectations(t)
}

func TestHandleAuditOpenCase_ExposesRollValue(t *testing.T) {
	svc := new(MockLootboxService)
	caseInstanceID := uuid.New()
	svc.On("OpenCase", mock.Anything, "user1", caseInstanceID).Return(sampleRoll(), nil)

	req := instanceRequest(http.MethodPost, "/api/v1/admin/instances/"+caseInstanceID.String()+"/open",
		caseInstanceID.String(), `{"user_id":"user1"}`)
	rec := httptest.NewRecorder()
	HandleAuditOpenCase(svc)(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var result domain.RollResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 42.5, result.RollValue)
	assert.Equal(t, "Starter Case", result.CaseName)
}

func TestHandleOpenCase_CaseNotOwned(t *testing.T) {
	svc := new(MockLootboxService)
	caseInstanceID := uuid.New()
	svc.On("OpenCase", mock.Anything, "user1", caseInstanceID).Return(nil, domain.ErrCaseNotOwned)

	req := instanceRequest(http.MethodPost, "/api/v1/inventory/"+caseInstanceID.String()+"/open",
		caseInstanceID.String(), `{"user_id":"user1"}`)
	rec := httptest.NewRecorder()
	HandleOpenCase(svc)(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHandleAuditOpenCase_BadInstanceID(t *testing.T) {
	svc := new(MockLootboxService)

	req := instanceRequest(http.MethodPost, "/api/v1/admin/instances/nope/open",
		"nope", `{"user_id":"user1"}`)
	rec := httptest.NewRecorder()
	HandleAuditOpenCase(svc)(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertNotCalled(t, "OpenCase", mock.Anything, mock.Anything, mock.Anything)
}
