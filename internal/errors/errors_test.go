package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"frogwalk/domain/core"
)

func TestWrap_DerivesCodeFromDomainError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"configuration", fmt.Errorf("loading: %w", core.ErrInvalidRunCount), CodeConfigInvalid},
		{"target step", core.NewTargetStepError(5, 3), CodeAggregation},
		{"empty batch", core.ErrEmptyBatch, CodeAggregation},
		{"other", stderrors.New("disk on fire"), CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := Wrap(tt.err, "context")
			assert.Equal(t, tt.code, GetCode(wrapped))
			assert.ErrorIs(t, wrapped, tt.err)
		})
	}
}

func TestWrap_KeepsAppErrorCode(t *testing.T) {
	inner := InvalidInput("seed must be numeric")
	outer := Wrapf(inner, "parsing request %d", 7)

	assert.Equal(t, CodeInvalidInput, GetCode(outer))
	assert.Equal(t, "parsing request 7: seed must be numeric", outer.Error())
	assert.True(t, IsAppError(outer))
}

func TestWrap_Nil(t *testing.T) {
	assert.Nil(t, Wrap(nil, "x"))
	assert.Nil(t, Wrapf(nil, "x %d", 1))
	assert.Nil(t, WithCode(CodeInternalError, nil))
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeExportFailed, stderrors.New("permission denied"))
	assert.Equal(t, CodeExportFailed, GetCode(err))
	assert.Equal(t, "UNKNOWN", GetCode(stderrors.New("plain")))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(ConfigInvalid("bad")))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(InvalidInput("bad")))
	assert.Equal(t, http.StatusUnprocessableEntity, HTTPStatus(Wrap(core.ErrEmptyBatch, "agg")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(SimulationFailed(stderrors.New("oom"))))
}
