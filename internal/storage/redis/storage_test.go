package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/projectr/roomserver/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.RoomTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) TestSaveAndGetRoom() {
	state := model.NewRoomState("ABC12", 1000)
	state.Players = append(state.Players, model.PlayerRecord{
		Side:              model.SideP1,
		Token:             "tok-1",
		Nickname:          "Alice",
		IsHost:            true,
		IsConnected:       true,
		LastSeenMs:        1000,
		ChatWindowStartMs: 500,
		ChatCountInWindow: 2,
	})

	err := s.storage.SaveRoom(s.ctx, state)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetRoom(s.ctx, "ABC12")
	s.Require().NoError(err)
	s.Equal(model.RoomCode("ABC12"), retrieved.RoomCode)
	s.Require().Len(retrieved.Players, 1)
	s.Equal("tok-1", retrieved.Players[0].Token)
	s.Equal(2, retrieved.Players[0].ChatCountInWindow)
}

func (s *StorageSuite) TestGetRoomNotFound() {
	_, err := s.storage.GetRoom(s.ctx, "NOONE")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestRoomExpiresAfterTTL() {
	state := model.NewRoomState("ABC12", 1000)
	s.Require().NoError(s.storage.SaveRoom(s.ctx, state))

	s.mini.FastForward(2 * time.Hour)

	_, err := s.storage.GetRoom(s.ctx, "ABC12")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestDeleteRoom() {
	state := model.NewRoomState("ABC12", 1000)
	s.Require().NoError(s.storage.SaveRoom(s.ctx, state))

	s.Require().NoError(s.storage.DeleteRoom(s.ctx, "ABC12"))

	exists, err := s.storage.RoomExists(s.ctx, "ABC12")
	s.Require().NoError(err)
	s.False(exists)
}

func (s *StorageSuite) TestRoomExists() {
	exists, err := s.storage.RoomExists(s.ctx, "ABC12")
	s.Require().NoError(err)
	s.False(exists)

	s.Require().NoError(s.storage.SaveRoom(s.ctx, model.NewRoomState("ABC12", 1000)))

	exists, err = s.storage.RoomExists(s.ctx, "ABC12")
	s.Require().NoError(err)
	s.True(exists)
}

func (s *StorageSuite) TestGetRoomCorruptData() {
	s.Require().NoError(s.mini.Set(roomKey("ABC12"), "{not valid json"))

	_, err := s.storage.GetRoom(s.ctx, "ABC12")
	s.Error(err)
	s.NotErrorIs(err, model.ErrRoomNotFound)
}
