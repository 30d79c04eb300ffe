package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/projectr/roomserver/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

func (s *StorageSuite) TestSaveAndGetRoom() {
	state := model.NewRoomState("ABC12", 1000)
	state.Players = append(state.Players, model.PlayerRecord{
		Side:     model.SideP1,
		Token:    "tok-1",
		Nickname: "Alice",
		IsHost:   true,
	})

	err := s.storage.SaveRoom(s.ctx, state)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetRoom(s.ctx, "ABC12")
	s.Require().NoError(err)
	s.Equal(state.RoomCode, retrieved.RoomCode)
	s.Equal(model.PhaseWaiting, retrieved.Phase)
	s.Equal(int64(1000), retrieved.CreatedAtMs)
	s.Require().Len(retrieved.Players, 1)
	s.Equal("tok-1", retrieved.Players[0].Token)
}

func (s *StorageSuite) TestGetRoomNotFound() {
	_, err := s.storage.GetRoom(s.ctx, "NOONE")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestGetRoomReturnsIndependentCopy() {
	state := model.NewRoomState("ABC12", 1000)
	s.Require().NoError(s.storage.SaveRoom(s.ctx, state))

	first, err := s.storage.GetRoom(s.ctx, "ABC12")
	s.Require().NoError(err)
	first.Phase = model.PhasePlaying
	first.Players = append(first.Players, model.PlayerRecord{Token: "tok-x"})

	second, err := s.storage.GetRoom(s.ctx, "ABC12")
	s.Require().NoError(err)
	s.Equal(model.PhaseWaiting, second.Phase)
	s.Empty(second.Players)
}

func (s *StorageSuite) TestSaveRoomOverwrites() {
	state := model.NewRoomState("ABC12", 1000)
	s.Require().NoError(s.storage.SaveRoom(s.ctx, state))

	state.Phase = model.PhaseResult
	winner := model.SideP2
	state.Result = &model.RoomResult{WinnerSide: &winner, Reason: model.EndReasonForfeit}
	s.Require().NoError(s.storage.SaveRoom(s.ctx, state))

	retrieved, err := s.storage.GetRoom(s.ctx, "ABC12")
	s.Require().NoError(err)
	s.Equal(model.PhaseResult, retrieved.Phase)
	s.Require().NotNil(retrieved.Result)
	s.Equal(model.EndReasonForfeit, retrieved.Result.Reason)
	s.Require().NotNil(retrieved.Result.WinnerSide)
	s.Equal(model.SideP2, *retrieved.Result.WinnerSide)
}

func (s *StorageSuite) TestDeleteRoom() {
	state := model.NewRoomState("ABC12", 1000)
	s.Require().NoError(s.storage.SaveRoom(s.ctx, state))

	s.Require().NoError(s.storage.DeleteRoom(s.ctx, "ABC12"))

	_, err := s.storage.GetRoom(s.ctx, "ABC12")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestDeleteRoomIsIdempotent() {
	s.NoError(s.storage.DeleteRoom(s.ctx, "NOONE"))
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
