package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erp/settlement/internal/infrastructure/logger"
	"github.com/erp/settlement/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTenantMiddleware(t *testing.T) {
	tenantID := uuid.New()

	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
		wantCode   string
		wantTenant string
	}{
		{name: "valid tenant", path: "/invoices", header: tenantID.String(), wantStatus: http.StatusOK, wantTenant: tenantID.String()},
		{name: "missing tenant", path: "/invoices", wantStatus: http.StatusBadRequest, wantCode: dto.ErrCodeMissingTenant},
		{name: "malformed tenant", path: "/invoices", header: "acme", wantStatus: http.StatusBadRequest, wantCode: dto.ErrCodeInvalidTenant},
		{name: "nil uuid", path: "/invoices", header: uuid.Nil.String(), wantStatus: http.StatusBadRequest, wantCode: dto.ErrCodeInvalidTenant},
		{name: "health skips tenant", path: "/health", wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotTenant, ctxTenant string
			router := gin.New()
			router.Use(RequestID(), TenantMiddleware())
			handler := func(c *gin.Context) {
				gotTenant = GetTenantID(c)
				ctxTenant = logger.GetTenantID(c.Request.Context())
				c.Status(http.StatusOK)
			}
			router.GET("/invoices", handler)
			router.GET("/health", handler)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(TenantHeaderKey, tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode != "" {
				resp := decodeResponse(t, w)
				assert.Equal(t, tt.wantCode, resp.Error.Code)
				assert.NotEmpty(t, resp.Error.RequestID)
				return
			}
			assert.Equal(t, tt.wantTenant, gotTenant)
			assert.Equal(t, tt.wantTenant, ctxTenant)
		})
	}
}

func TestGetTenantUUID_Unset(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	id, ok := GetTenantUUID(c)
	assert.False(t, ok)
	assert.Equal(t, uuid.Nil, id)
	assert.Empty(t, GetTenantID(c))
}
