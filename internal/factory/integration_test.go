package factory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/projectr/roomserver/internal/model"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

func (s *IntegrationSuite) TearDownTest() {
	s.app.Close()
}

func (s *IntegrationSuite) TestRoomLifecycleAcrossComponents() {
	code := model.RoomCode("ABC12")

	actor := s.app.Registry.GetOrCreate(code)
	s.Require().NoError(actor.Init(s.ctx))

	side, err := actor.Join(s.ctx, "tok-host", "Alice")
	s.Require().NoError(err)
	s.Equal(model.SideP1, side)

	side, err = actor.Join(s.ctx, "tok-guest", "Bob")
	s.Require().NoError(err)
	s.Equal(model.SideP2, side)

	// The registry routes the same code back to the same actor
	s.Same(actor, s.app.Registry.GetOrCreate(code))

	// State is written through to storage as operations land
	state, err := s.app.Storage.GetRoom(s.ctx, code)
	s.Require().NoError(err)
	s.Equal(model.PhaseWaiting, state.Phase)
	s.Len(state.Players, 2)
}

func (s *IntegrationSuite) TestStateSurvivesActorRestart() {
	code := model.RoomCode("XYZ99")

	actor := s.app.Registry.GetOrCreate(code)
	_, err := actor.Join(s.ctx, "tok-1", "Alice")
	s.Require().NoError(err)

	s.app.Registry.Remove(code)

	revived := s.app.Registry.GetOrCreate(code)
	s.NotSame(actor, revived)

	side, err := revived.Join(s.ctx, "tok-1", "")
	s.Require().NoError(err)
	s.Equal(model.SideP1, side)
}

func (s *IntegrationSuite) TestDefaultFactoryWiresMemoryStorage() {
	app, err := New(Config{})
	s.Require().NoError(err)
	defer app.Close()

	actor := app.Registry.GetOrCreate("QWE45")
	s.Require().NoError(actor.Init(s.ctx))

	exists, err := app.Storage.RoomExists(s.ctx, "QWE45")
	s.Require().NoError(err)
	s.True(exists)
}

func (s *IntegrationSuite) TestFactoryRejectsUnknownStorageType() {
	_, err := New(Config{StorageType: "carrier-pigeon"})
	s.Error(err)
}
