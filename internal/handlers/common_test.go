package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"soulsync-backend/internal/repository"
	"soulsync-backend/internal/services"

	"github.com/stretchr/testify/assert"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{services.ErrInvalidInput, http.StatusBadRequest},
		{fmt.Errorf("unknown date type %q: %w", "skydiving", services.ErrInvalidInput), http.StatusBadRequest},
		{fmt.Errorf("unknown mood %q: %w", "hangry", services.ErrInvalidInput), http.StatusBadRequest},
		{repository.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("date d-1: %w", repository.ErrNotFound), http.StatusNotFound},
		{services.ErrNotCoupleMember, http.StatusForbidden},
		{services.ErrInvalidTransition, http.StatusConflict},
		{services.ErrOwnRequest, http.StatusConflict},
		{services.ErrCoupleFull, http.StatusConflict},
		{services.ErrMoodAlreadyLogged, http.StatusConflict},
		{fmt.Errorf("connection refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusForError(tt.err), tt.err.Error())
	}
}
