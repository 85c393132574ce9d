package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/Vasu1712/socialsync-backend/internal/errors"
	"github.com/Vasu1712/socialsync-backend/internal/mocks"
	"github.com/Vasu1712/socialsync-backend/internal/ws"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func send(t *testing.T, svc *Service, from, to, text string) {
	t.Helper()
	_, err := svc.Send(context.Background(), SendRequest{SenderID: from, RecipientID: to, Text: text})
	require.NoError(t, err)
}

func TestListConversations_Most_Recent_First(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t)

	// Given two conversations, the one with carol being older
	send(t, f.svc, "u1", "u3", "hey carol")
	send(t, f.svc, "u1", "u2", "first")
	send(t, f.svc, "u2", "u1", "second")

	// When alice lists her inbox
	list, err := f.svc.ListConversations(ctx, "u1")
	req.NoError(err)

	// Then bob's conversation leads with the latest text
	req.Len(list, 2)
	req.Equal("dm:u1:u2", list[0].ConversationKey)
	req.Equal("bob", list[0].With.Username)
	req.Equal("second", list[0].LastMessage.Text)
	req.Equal("u2", list[0].LastMessage.SenderID)
	req.Equal(1, list[0].UnreadCount)

	req.Equal("dm:u1:u3", list[1].ConversationKey)
	req.Equal("carol", list[1].With.Username)
	req.Zero(list[1].UnreadCount)
}

func TestListConversations_Same_Timestamp_Uses_Insertion_Order(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := f.service(f.messages, f.notifications)
	svc.now = func() time.Time { return fixed }

	send(t, svc, "u1", "u2", "a")
	send(t, svc, "u1", "u2", "b")

	list, err := svc.ListConversations(ctx, "u2")
	req.NoError(err)
	req.Len(list, 1)
	req.Equal("b", list[0].LastMessage.Text)
	req.Equal(2, list[0].UnreadCount)
}

func TestListConversations_Skips_Unknown_Participant(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t)

	send(t, f.svc, "u1", "u2", "hello bob")
	send(t, f.svc, "u1", "ghost", "hello?")

	list, err := f.svc.ListConversations(ctx, "u1")
	req.NoError(err)
	req.Len(list, 1)
	req.Equal("u2", list[0].With.ID)
}

func TestListConversations_Store_Failure(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newFixture(t)

	messages := mocks.NewMockMessageStore(ctrl)
	messages.EXPECT().ListForUser(gomock.Any(), "u1").Return(nil, errors.New("no reachable servers"))
	svc := f.service(messages, f.notifications)

	_, err := svc.ListConversations(context.Background(), "u1")
	req.ErrorIs(err, apperrors.ErrPersistenceFailure)
}

func TestMessages_Only_For_Participants(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	send(t, f.svc, "u1", "u2", "private")

	_, err := f.svc.Messages(ctx, "u3", "dm:u1:u2")
	req.ErrorIs(err, apperrors.ErrNotFound)

	_, err = f.svc.Messages(ctx, "u1", "not-a-key")
	req.ErrorIs(err, apperrors.ErrNotFound)

	msgs, err := f.svc.Messages(ctx, "u1", "dm:u1:u3")
	req.NoError(err)
	req.NotNil(msgs)
	req.Empty(msgs)
}

func TestMessagesWith(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	send(t, f.svc, "u2", "u1", "yo")

	history, err := f.svc.MessagesWith(ctx, "u1", "bob")
	req.NoError(err)
	req.Equal("u2", history.With.ID)
	req.Equal("dm:u1:u2", history.ConversationKey)
	req.Len(history.Messages, 1)

	_, err = f.svc.MessagesWith(ctx, "u1", "alice")
	req.ErrorIs(err, apperrors.ErrInvalidParticipant)
}

func TestSearchUsers(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t)

	users, err := f.svc.SearchUsers(ctx, "AL")
	req.NoError(err)
	req.Len(users, 1)
	req.Equal("alice", users[0].Username)

	users, err = f.svc.SearchUsers(ctx, "  ")
	req.NoError(err)
	req.Empty(users)
}

func TestTyping_Relayed_To_Peer(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	bobConn := f.connect(bob)

	req.NoError(f.svc.Typing("u1", "u2", true))
	// An offline peer is not an error
	req.NoError(f.svc.Typing("u1", "u3", true))
	req.ErrorIs(f.svc.Typing("u1", "u1", true), apperrors.ErrInvalidParticipant)

	events := bobConn.OfType(ws.EventUserTyping)
	req.Len(events, 1)
	req.Equal(ws.UserTyping{UserID: "u1", IsTyping: true}, events[0].Data)
}

func TestConnect_Sends_Online_List(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.connect(alice)
	f.connect(carol)

	bobConn := f.connect(bob)

	lists := bobConn.OfType(ws.EventOnlineUsers)
	req.Len(lists, 1)
	req.Equal(ws.OnlineUsers{Users: []string{"u1", "u3"}}, lists[0].Data)
	req.Equal([]string{"u1", "u3"}, f.svc.OnlineUsers("u2"))
}

func TestDisconnect_Records_Last_Seen(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	stale := f.connect(bob)
	current := f.connect(bob)

	// A replaced connection going away changes nothing
	f.svc.Disconnect(ctx, "u2", stale)
	p, err := f.svc.Presence(ctx, "u2")
	req.NoError(err)
	req.True(p.Online)
	req.Nil(p.LastSeen)

	f.svc.Disconnect(ctx, "u2", current)
	p, err = f.svc.Presence(ctx, "u2")
	req.NoError(err)
	req.False(p.Online)
	req.NotNil(p.LastSeen)
}
