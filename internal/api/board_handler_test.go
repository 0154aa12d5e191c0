package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/dmo-api/internal/domain"
	"github.com/phrazzld/dmo-api/internal/domain/board"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBoards struct {
	date  domain.Date
	tagID *uuid.UUID
	err   error
}

func (f *fakeBoards) GetBoard(_ context.Context, _ uuid.UUID, date domain.Date, tagID *uuid.UUID) (*board.Board, error) {
	f.date, f.tagID = date, tagID
	if f.err != nil {
		return nil, f.err
	}
	b := board.Arrange(nil, date, board.Options{})
	return &b, nil
}

func TestBoardHandlerGetBoard(t *testing.T) {
	userID := uuid.New()
	tagID := uuid.New()

	t.Run("date and tag filter", func(t *testing.T) {
		boards := &fakeBoards{}
		rr := httptest.NewRecorder()

		NewBoardHandler(boards, nil).GetBoard(rr, newRequest(t, http.MethodGet,
			"/api/board?date=2026-10-18&tag_id="+tagID.String(), nil, userID, nil))

		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		assert.Equal(t, domain.NewDate(2026, 10, 18), boards.date)
		require.NotNil(t, boards.tagID)
		assert.Equal(t, tagID, *boards.tagID)

		var got board.Board
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
		assert.Len(t, got.Columns, 4)
	})

	t.Run("missing date is passed as zero", func(t *testing.T) {
		boards := &fakeBoards{}
		rr := httptest.NewRecorder()

		NewBoardHandler(boards, nil).GetBoard(rr, newRequest(t, http.MethodGet, "/api/board", nil, userID, nil))

		require.Equal(t, http.StatusOK, rr.Code)
		assert.True(t, boards.date.IsZero())
		assert.Nil(t, boards.tagID)
	})

	t.Run("malformed date", func(t *testing.T) {
		rr := httptest.NewRecorder()

		NewBoardHandler(&fakeBoards{}, nil).GetBoard(rr, newRequest(t, http.MethodGet, "/api/board?date=18-10-2026", nil, userID, nil))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Date must be YYYY-MM-DD", decodeError(t, rr).Error)
	})

	t.Run("malformed tag", func(t *testing.T) {
		rr := httptest.NewRecorder()

		NewBoardHandler(&fakeBoards{}, nil).GetBoard(rr, newRequest(t, http.MethodGet, "/api/board?tag_id=x", nil, userID, nil))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("materialization failure", func(t *testing.T) {
		rr := httptest.NewRecorder()

		NewBoardHandler(&fakeBoards{err: errors.New("insert task: deadlock detected")}, nil).GetBoard(rr,
			newRequest(t, http.MethodGet, "/api/board", nil, userID, nil))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		resp := decodeError(t, rr)
		assert.Equal(t, "Failed to load board", resp.Error)
		assert.NotContains(t, rr.Body.String(), "deadlock")
	})
}
