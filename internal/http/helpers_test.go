package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/mrlokans/holonet/internal/entities"
	"github.com/mrlokans/holonet/internal/mediator"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestParseLabelParam_Valid(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "label", Value: "starships"}}

	label, ok := parseLabelParam(c, "label")

	assert.True(t, ok)
	assert.Equal(t, entities.LabelStarships, label)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestParseLabelParam_Unknown(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Params = gin.Params{{Key: "label", Value: "droids"}}

	label, ok := parseLabelParam(c, "label")

	assert.False(t, ok)
	assert.Empty(t, label)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `droids`)
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantOK     bool
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "", true, defaultPageLimit, 0},
		{"explicit", "?limit=5&offset=10", true, 5, 10},
		{"clamped", "?limit=1000", true, maxPageLimit, 0},
		{"zero limit", "?limit=0", false, 0, 0},
		{"bad limit", "?limit=abc", false, 0, 0},
		{"negative offset", "?offset=-1", false, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("GET", "/"+tt.query, nil)

			limit, offset, ok := parsePagination(c)

			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantLimit, limit)
				assert.Equal(t, tt.wantOffset, offset)
			} else {
				assert.Equal(t, http.StatusBadRequest, w.Code)
			}
		})
	}
}

func TestParseOptionalLabelQuery(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)

	label, ok := parseOptionalLabelQuery(c, "label")
	assert.True(t, ok)
	assert.Empty(t, label)

	w = httptest.NewRecorder()
	c, _ = gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/?label=bogus", nil)

	_, ok = parseOptionalLabelQuery(c, "label")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRespondLoadFailure(t *testing.T) {
	tests := []struct {
		kind mediator.ErrorKind
		want int
	}{
		{mediator.KindNetwork, http.StatusServiceUnavailable},
		{mediator.KindProtocol, http.StatusBadGateway},
		{mediator.KindStorage, http.StatusInternalServerError},
		{mediator.KindCancelled, http.StatusRequestTimeout},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("POST", "/", nil)

			respondLoadFailure(c, mediator.Result{Signal: mediator.Append, Kind: tt.kind, Err: errors.New("boom")})

			assert.Equal(t, tt.want, w.Code)
			assert.Contains(t, w.Body.String(), fmt.Sprintf(`"code":"%s"`, tt.kind))
			assert.Contains(t, w.Body.String(), "append failed: boom")
		})
	}
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(entities.ErrItemNotFound))
	assert.True(t, isNotFound(fmt.Errorf("wrapped: %w", entities.ErrItemNotFound)))
	assert.False(t, isNotFound(errors.New("other")))
}
