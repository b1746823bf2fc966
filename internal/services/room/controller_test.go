package room

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/dkaymak/roomchat/internal/dependencies/mocks"
	"github.com/dkaymak/roomchat/internal/model"
	"github.com/dkaymak/roomchat/internal/services/color"
	"github.com/dkaymak/roomchat/internal/services/message"
	"github.com/dkaymak/roomchat/internal/storage"
	"github.com/dkaymak/roomchat/internal/storage/memory"
	"github.com/dkaymak/roomchat/internal/testutil"
)

const testRoomCode = model.RoomCode("ABCDEF123456")

type ControllerSuite struct {
	suite.Suite
	storage    *memory.Storage
	clock      *mocks.MockClock
	random     *mocks.MockRandom
	messages   *message.Service
	controller *Controller
	ctx        context.Context
}

func TestControllerSuite(t *testing.T) {
	suite.Run(t, new(ControllerSuite))
}

func (s *ControllerSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()
	logger := testutil.NopLogger()
	s.messages = message.NewService(s.storage, s.clock, logger)
	s.controller = NewController(s.storage, color.New(s.random), s.messages, s.clock, s.random, logger)
	s.ctx = context.Background()
}

func (s *ControllerSuite) createUser(id, name string) *model.User {
	user := &model.User{
		ID:        model.UserID(id),
		Username:  name,
		CreatedAt: s.clock.Now(),
	}
	s.Require().NoError(s.storage.SaveUser(s.ctx, user))
	return user
}

func (s *ControllerSuite) TestCreateRoom() {
	user := s.createUser("u1", "alice")

	created, err := s.controller.CreateRoom(s.ctx, testRoomCode, "secret", user.ID)
	s.Require().NoError(err)
	s.Equal(testRoomCode, created.Code)
	s.Require().Len(created.Members, 1)
	s.Equal(user.ID, created.Members[0].UserID)
	s.Equal(color.Palette[0], created.Members[0].Color)

	// Creator is a member with the room as their current room
	stored, err := s.storage.GetUser(s.ctx, user.ID)
	s.Require().NoError(err)
	s.True(stored.InRoom(testRoomCode))
	s.Require().NotNil(stored.CurrentRoom)
	s.Equal(testRoomCode, *stored.CurrentRoom)
}

func (s *ControllerSuite) TestCreateRoomDuplicateCode() {
	user := s.createUser("u1", "alice")

	_, err := s.controller.CreateRoom(s.ctx, testRoomCode, "", user.ID)
	s.Require().NoError(err)

	other := s.createUser("u2", "bob")
	_, err = s.controller.CreateRoom(s.ctx, testRoomCode, "", other.ID)
	s.ErrorIs(err, model.ErrRoomExists)
}

func (s *ControllerSuite) TestCreateRoomInvalidCode() {
	user := s.createUser("u1", "alice")

	for _, code := range []model.RoomCode{"", "SHORT", "WAYTOOLONGROOMCODE", "ABCDEF12345!"} {
		_, err := s.controller.CreateRoom(s.ctx, code, "", user.ID)
		s.ErrorIs(err, model.ErrInvalidRoomCode, "code %q", code)
	}
}

func (s *ControllerSuite) TestJoinRoomAssignsNextColor() {
	alice := s.createUser("u1", "alice")
	bob := s.createUser("u2", "bob")

	_, err := s.controller.CreateRoom(s.ctx, testRoomCode, "", alice.ID)
	s.Require().NoError(err)

	joined, err := s.controller.JoinRoom(s.ctx, testRoomCode, "", bob.ID)
	s.Require().NoError(err)
	s.Require().Len(joined.Members, 2)
	s.Equal(color.Palette[1], joined.GetMember(bob.ID).Color)
}

func (s *ControllerSuite) TestJoinRoomWrongPassword() {
	alice := s.createUser("u1", "alice")
	bob := s.createUser("u2", "bob")

	_, err := s.controller.CreateRoom(s.ctx, testRoomCode, "secret", alice.ID)
	s.Require().NoError(err)

	_, err = s.controller.JoinRoom(s.ctx, testRoomCode, "wrong", bob.ID)
	s.ErrorIs(err, model.ErrWrongPassword)

	_, err = s.controller.JoinRoom(s.ctx, testRoomCode, "", bob.ID)
	s.ErrorIs(err, model.ErrWrongPassword)
}

func (s *ControllerSuite) TestJoinRoomNotFound() {
	bob := s.createUser("u2", "bob")

	_, err := s.controller.JoinRoom(s.ctx, testRoomCode, "", bob.ID)
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *ControllerSuite) TestRejoinKeepsColor() {
	alice := s.createUser("u1", "alice")
	bob := s.createUser("u2", "bob")

	_, err := s.controller.CreateRoom(s.ctx, testRoomCode, "", alice.ID)
	s.Require().NoError(err)
	_, err = s.controller.JoinRoom(s.ctx, testRoomCode, "", bob.ID)
	s.Require().NoError(err)

	// Rejoin is idempotent for membership and color
	again, err := s.controller.JoinRoom(s.ctx, testRoomCode, "", bob.ID)
	s.Require().NoError(err)
	s.Len(again.Members, 2)
	s.Equal(color.Palette[1], again.GetMember(bob.ID).Color)
}

func (s *ControllerSuite) TestRejoinUpdatesCurrentRoom() {
	alice := s.createUser("u1", "alice")
	otherCode := model.RoomCode("XYZXYZ999999")

	_, err := s.controller.CreateRoom(s.ctx, testRoomCode, "", alice.ID)
	s.Require().NoError(err)
	_, err = s.controller.CreateRoom(s.ctx, otherCode, "", alice.ID)
	s.Require().NoError(err)

	stored, err := s.storage.GetUser(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Equal(otherCode, *stored.CurrentRoom)

	// Rejoining the first room moves the current-room pointer back
	_, err = s.controller.JoinRoom(s.ctx, testRoomCode, "", alice.ID)
	s.Require().NoError(err)

	stored, err = s.storage.GetUser(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Equal(testRoomCode, *stored.CurrentRoom)
}

func (s *ControllerSuite) TestLeaveRoomKeepsNonEmptyRoom() {
	alice := s.createUser("u1", "alice")
	bob := s.createUser("u2", "bob")

	_, err := s.controller.CreateRoom(s.ctx, testRoomCode, "", alice.ID)
	s.Require().NoError(err)
	_, err = s.controller.JoinRoom(s.ctx, testRoomCode, "", bob.ID)
	s.Require().NoError(err)

	s.Require().NoError(s.controller.LeaveRoom(s.ctx, testRoomCode, alice.ID))

	remaining, err := s.controller.GetRoom(s.ctx, testRoomCode)
	s.Require().NoError(err)
	s.Require().Len(remaining.Members, 1)
	s.Equal(bob.ID, remaining.Members[0].UserID)

	stored, err := s.storage.GetUser(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.False(stored.InRoom(testRoomCode))
	s.Nil(stored.CurrentRoom)
}

func (s *ControllerSuite) TestLastLeaverDeletesRoomAndMessages() {
	alice := s.createUser("u1", "alice")

	_, err := s.controller.CreateRoom(s.ctx, testRoomCode, "", alice.ID)
	s.Require().NoError(err)
	_, err = s.messages.Append(s.ctx, testRoomCode, alice.ID, "hello")
	s.Require().NoError(err)

	s.Require().NoError(s.controller.LeaveRoom(s.ctx, testRoomCode, alice.ID))

	_, err = s.controller.GetRoom(s.ctx, testRoomCode)
	s.ErrorIs(err, model.ErrRoomNotFound)

	count, err := s.storage.CountMessages(s.ctx, testRoomCode)
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *ControllerSuite) TestLeaveRoomNonMemberIsNoop() {
	alice := s.createUser("u1", "alice")
	bob := s.createUser("u2", "bob")

	_, err := s.controller.CreateRoom(s.ctx, testRoomCode, "", alice.ID)
	s.Require().NoError(err)

	// Leaving a room you never joined succeeds without changing it
	s.Require().NoError(s.controller.LeaveRoom(s.ctx, testRoomCode, bob.ID))

	room, err := s.controller.GetRoom(s.ctx, testRoomCode)
	s.Require().NoError(err)
	s.Len(room.Members, 1)
}

// failingUserStorage fails every user load with a fixed error
type failingUserStorage struct {
	storage.Storage
	err error
}

func (f *failingUserStorage) GetUser(ctx context.Context, id model.UserID) (*model.User, error) {
	return nil, f.err
}

func (s *ControllerSuite) TestLeaveRoomSurfacesUserLoadFailure() {
	alice := s.createUser("u1", "alice")
	_, err := s.controller.CreateRoom(s.ctx, testRoomCode, "", alice.ID)
	s.Require().NoError(err)

	errDown := errors.New("storage down")
	broken := NewController(
		&failingUserStorage{Storage: s.storage, err: errDown},
		color.New(s.random), s.messages, s.clock, s.random, testutil.NopLogger(),
	)

	// A transient user-load failure aborts the leave before any room-side
	// mutation lands
	s.ErrorIs(broken.LeaveRoom(s.ctx, testRoomCode, alice.ID), errDown)

	room, err := s.controller.GetRoom(s.ctx, testRoomCode)
	s.Require().NoError(err)
	s.NotNil(room.GetMember(alice.ID))
}

// Membership writes hold the per-room lock but history reads do not, so the
// store must hand each of them an isolated room value. Run with -race.
func (s *ControllerSuite) TestConcurrentJoinLeaveAndHistoryRead() {
	alice := s.createUser("u1", "alice")
	bob := s.createUser("u2", "bob")

	_, err := s.controller.CreateRoom(s.ctx, testRoomCode, "", alice.ID)
	s.Require().NoError(err)
	_, err = s.messages.Append(s.ctx, testRoomCode, alice.ID, "hello")
	s.Require().NoError(err)

	const iterations = 200
	errCh := make(chan error, 2)
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			if _, err := s.controller.JoinRoom(s.ctx, testRoomCode, "", bob.ID); err != nil {
				errCh <- err
				return
			}
			if err := s.controller.LeaveRoom(s.ctx, testRoomCode, bob.ID); err != nil {
				errCh <- err
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < iterations; i++ {
			if _, err := s.messages.Page(s.ctx, testRoomCode, 1, 10); err != nil {
				errCh <- err
				return
			}
		}
	}()

	wg.Wait()
	close(errCh)
	for err := range errCh {
		s.Require().NoError(err)
	}

	room, err := s.controller.GetRoom(s.ctx, testRoomCode)
	s.Require().NoError(err)
	s.NotNil(room.GetMember(alice.ID))
}

func (s *ControllerSuite) TestGenerateUniqueCode() {
	s.random.QueueString("AAAABBBBCCCC")

	code, err := s.controller.GenerateUniqueCode(s.ctx)
	s.Require().NoError(err)
	s.Equal(model.RoomCode("AAAABBBBCCCC"), code)
}

func (s *ControllerSuite) TestGenerateUniqueCodeSkipsTaken() {
	alice := s.createUser("u1", "alice")
	_, err := s.controller.CreateRoom(s.ctx, testRoomCode, "", alice.ID)
	s.Require().NoError(err)

	s.random.QueueString(string(testRoomCode), "AAAABBBBCCCC")

	code, err := s.controller.GenerateUniqueCode(s.ctx)
	s.Require().NoError(err)
	s.Equal(model.RoomCode("AAAABBBBCCCC"), code)
}
