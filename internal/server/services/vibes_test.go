package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibecast/vibecast/internal/common"
	"github.com/vibecast/vibecast/internal/server/models"
)

func TestVibeGet(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := newFakeRepoManager()
	rm.v.byID["v1"] = &models.Vibe{ID: "v1", ReceiverID: "r1", AudioURL: "https://media.test/a.m4a"}
	s := NewVibeService(db, rm, testLogger())

	v, err := s.Get(context.Background(), "v1")
	require.NoError(t, err)
	assert.Equal(t, "r1", v.ReceiverID)

	_, err = s.Get(context.Background(), "ghost")
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestVibeListByReceiver_DefaultsLimit(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := newFakeRepoManager()
	rm.v.listOut = []*models.Vibe{
		{ID: "v2", ReceiverID: "r1"},
		{ID: "v1", ReceiverID: "r1"},
	}
	s := NewVibeService(db, rm, testLogger())

	list, err := s.ListByReceiver(context.Background(), "r1", 0)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "v2", list[0].ID)
}

func TestVibeListByReceiver_RequiresReceiver(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	s := NewVibeService(db, newFakeRepoManager(), testLogger())
	_, err := s.ListByReceiver(context.Background(), "", 10)
	require.Error(t, err)
}

func TestVibeMarkPlayed(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	rm := newFakeRepoManager()
	rm.v.byID["v1"] = &models.Vibe{ID: "v1"}
	s := NewVibeService(db, rm, testLogger())

	require.NoError(t, s.MarkPlayed(context.Background(), "v1"))
	assert.Equal(t, []string{"v1"}, rm.v.played)

	err := s.MarkPlayed(context.Background(), "ghost")
	assert.True(t, errors.Is(err, common.ErrNotFound))
}
