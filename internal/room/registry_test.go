package room

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/projectr/roomserver/internal/dependencies/mocks"
	"github.com/projectr/roomserver/internal/model"
	"github.com/projectr/roomserver/internal/storage/memory"
	"github.com/projectr/roomserver/internal/testutil"
)

type RegistrySuite struct {
	suite.Suite
	registry *Registry
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	clk := mocks.NewMockClock(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	s.registry = NewRegistry(memory.New(), clk, DefaultConfig(), testutil.NopLogger())
}

func (s *RegistrySuite) TearDownTest() {
	s.registry.CloseAll()
}

func (s *RegistrySuite) TestSameCodeResolvesToSameActor() {
	first := s.registry.GetOrCreate("ABC12")
	second := s.registry.GetOrCreate("ABC12")
	s.Same(first, second)
	s.Equal(1, s.registry.Len())
}

func (s *RegistrySuite) TestDistinctCodesGetDistinctActors() {
	a := s.registry.GetOrCreate("ABC12")
	b := s.registry.GetOrCreate("XYZ99")
	s.NotSame(a, b)
	s.Equal(2, s.registry.Len())
}

func (s *RegistrySuite) TestGetWithoutCreate() {
	s.Nil(s.registry.Get("ABC12"))

	created := s.registry.GetOrCreate("ABC12")
	s.Same(created, s.registry.Get("ABC12"))
}

func (s *RegistrySuite) TestRemoveShutsDownActor() {
	actor := s.registry.GetOrCreate("ABC12")
	s.registry.Remove("ABC12")

	s.Nil(s.registry.Get("ABC12"))
	s.ErrorIs(actor.Init(context.Background()), model.ErrActorClosed)

	// A later GetOrCreate makes a fresh actor for the same code
	s.NotSame(actor, s.registry.GetOrCreate("ABC12"))
}

func (s *RegistrySuite) TestCloseAll() {
	s.registry.GetOrCreate("ABC12")
	s.registry.GetOrCreate("XYZ99")

	s.registry.CloseAll()
	s.Equal(0, s.registry.Len())
}
