package httputil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query      string
		wantOffset int
		wantLimit  int
		wantErr    error
	}{
		{query: "", wantOffset: 0, wantLimit: DefaultLimit},
		{query: "offset=20&limit=10", wantOffset: 20, wantLimit: 10},
		{query: "limit=100", wantLimit: MaxLimit},
		{query: "offset=-5", wantErr: errInvalidOffset},
		{query: "offset=first", wantErr: errInvalidOffset},
		{query: "offset=", wantErr: errInvalidOffset},
		{query: "limit=0", wantErr: errInvalidLimit},
		{query: "limit=101", wantErr: errInvalidLimit},
		{query: "limit=all", wantErr: errInvalidLimit},
	}

	for _, tt := range tests {
		t.Run("?"+tt.query, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/v1/sagas?"+tt.query, nil)

			offset, limit, err := ParsePagination(c)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantOffset, offset)
			assert.Equal(t, tt.wantLimit, limit)
		})
	}
}
