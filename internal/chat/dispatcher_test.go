package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	apperrors "github.com/Vasu1712/socialsync-backend/internal/errors"
	"github.com/Vasu1712/socialsync-backend/internal/mocks"
	"github.com/Vasu1712/socialsync-backend/internal/models"
	"github.com/Vasu1712/socialsync-backend/internal/ws"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestSend_Recipient_Online(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t)

	// Given both users connected
	aliceConn := f.connect(alice)
	bobConn := f.connect(bob)

	// When alice sends hello to bob
	outcome, err := f.svc.Send(ctx, SendRequest{SenderID: "u1", RecipientID: "u2", Text: "hello"})
	req.NoError(err)

	// Then bob got the message live
	pushed := bobConn.OfType(ws.EventNewMessage)
	req.Len(pushed, 1)
	payload := pushed[0].Data.(ws.MessagePayload)
	req.Equal("hello", payload.Message.Text)
	req.Equal("u1", payload.Message.SenderID)
	req.Equal("dm:u1:u2", payload.Message.ConversationKey)

	// And the stored message records the delivery
	stored, err := f.messages.ListByConversation(ctx, "dm:u1:u2")
	req.NoError(err)
	req.Len(stored, 1)
	req.Equal([]string{"u2"}, stored[0].DeliveredTo)
	req.Equal([]string{"u2"}, outcome.Delivered)
	req.Empty(outcome.Pending)
	req.Equal([]string{"u2"}, outcome.Message.DeliveredTo)

	// And alice never receives her own message, only a delivery receipt
	req.Empty(aliceConn.OfType(ws.EventNewMessage))
	receipts := aliceConn.OfType(ws.EventMessageDelivered)
	req.Len(receipts, 1)
	req.Equal(ws.MessageDelivered{MessageID: outcome.Message.ID, ConversationKey: "dm:u1:u2", UserID: "u2"}, receipts[0].Data)

	// And bob was notified about the message
	req.Len(outcome.Notifications, 1)
	req.True(outcome.Notifications[0].Stored())
	req.True(outcome.Notifications[0].Pushed)
	notes := bobConn.OfType(ws.EventNewNotification)
	req.Len(notes, 1)
	note := notes[0].Data.(ws.NewNotification)
	req.Equal(models.VerbSystem, note.Verb)
	req.Equal("hello", note.Preview)
	req.Equal(&ws.Actor{UserID: "u1", Username: "alice"}, note.Actor)
}

func TestSend_Recipient_Offline(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t)

	outcome, err := f.svc.Send(ctx, SendRequest{SenderID: "u1", RecipientID: "u2", Text: "hi"})
	req.NoError(err)
	req.Empty(outcome.Delivered)
	req.Equal([]string{"u2"}, outcome.Pending)

	stored, err := f.messages.ListByConversation(ctx, "dm:u1:u2")
	req.NoError(err)
	req.Empty(stored[0].DeliveredTo)

	// Bob connecting later gets no retroactive push but can pull the message
	bobConn := f.connect(bob)
	req.Empty(bobConn.OfType(ws.EventNewMessage))

	msgs, err := f.svc.Messages(ctx, "u2", "dm:u1:u2")
	req.NoError(err)
	req.Len(msgs, 1)
	req.Equal("hi", msgs[0].Text)
	req.Empty(msgs[0].DeliveredTo)

	// The notification is stored for later
	count, err := f.notifications.CountUnread(ctx, "u2")
	req.NoError(err)
	req.EqualValues(1, count)
}

func TestSend_Push_Failure_Falls_Back_To_Pull(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	bobConn := f.connect(bob)
	bobConn.fail = true

	outcome, err := f.svc.Send(ctx, SendRequest{SenderID: "u1", RecipientID: "u2", Text: "hello"})

	req.NoError(err)
	req.Equal([]string{"u2"}, outcome.Pending)
	stored, err := f.messages.ListByConversation(ctx, "dm:u1:u2")
	req.NoError(err)
	req.Empty(stored[0].DeliveredTo)
}

func TestSend_Rejects_Bad_Input(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	tests := []struct {
		name    string
		request SendRequest
		want    error
	}{
		{"self conversation", SendRequest{SenderID: "u1", RecipientID: "u1", Text: "me"}, apperrors.ErrInvalidParticipant},
		{"missing recipient", SendRequest{SenderID: "u1", Text: "hello"}, apperrors.ErrInvalidParticipant},
		{"blank text", SendRequest{SenderID: "u1", RecipientID: "u2", Text: "   "}, apperrors.ErrEmptyMessage},
		{"too long", SendRequest{SenderID: "u1", RecipientID: "u2", Text: strings.Repeat("x", DefaultMaxTextLength+1)}, apperrors.ErrMessageTooLong},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := require.New(t)
			_, err := f.svc.Send(ctx, tt.request)
			req.ErrorIs(err, tt.want)
		})
	}

	msgs, err := f.messages.ListForUser(ctx, "u1")
	require.NoError(t, err)
	require.Empty(t, msgs)
}

func TestSend_Attachment_Only(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	outcome, err := f.svc.Send(context.Background(), SendRequest{
		SenderID:    "u1",
		RecipientID: "u2",
		Attachments: []models.Attachment{{URL: "https://cdn.example.com/a.png", Type: "image"}},
	})

	req.NoError(err)
	req.Len(outcome.Message.Attachments, 1)
}

func TestSend_Persistence_Failure_Aborts(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newFixture(t)
	bobConn := f.connect(bob)

	messages := mocks.NewMockMessageStore(ctrl)
	notifications := mocks.NewMockNotificationStore(ctrl)
	svc := f.service(messages, notifications)

	messages.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		Return(false, errors.New("connection refused")).
		Times(1)
	// Nothing else may happen after a failed write
	messages.EXPECT().MarkDelivered(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
	notifications.EXPECT().Insert(gomock.Any(), gomock.Any()).Times(0)

	outcome, err := svc.Send(context.Background(), SendRequest{SenderID: "u1", RecipientID: "u2", Text: "hello"})

	req.Nil(outcome)
	req.ErrorIs(err, apperrors.ErrPersistenceFailure)
	req.Empty(bobConn.OfType(ws.EventNewMessage))
}

func TestSend_Notification_Failure_Is_Not_Fatal(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newFixture(t)
	bobConn := f.connect(bob)

	notifications := mocks.NewMockNotificationStore(ctrl)
	svc := f.service(f.messages, notifications)

	notifications.EXPECT().
		Insert(gomock.Any(), gomock.Any()).
		Return(errors.New("disk full")).
		Times(1)

	outcome, err := svc.Send(context.Background(), SendRequest{SenderID: "u1", RecipientID: "u2", Text: "hello"})

	// The send itself succeeded
	req.NoError(err)
	req.Equal([]string{"u2"}, outcome.Delivered)
	req.Len(bobConn.OfType(ws.EventNewMessage), 1)

	// The secondary step reports its own failure
	req.Len(outcome.Notifications, 1)
	req.False(outcome.Notifications[0].Stored())
	req.ErrorIs(outcome.Notifications[0].Err, apperrors.ErrPersistenceFailure)
	req.Empty(bobConn.OfType(ws.EventNewNotification))
}

func TestSend_MarkDelivered_Failure_Leaves_Message_Pending(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newFixture(t)
	f.connect(bob)

	messages := mocks.NewMockMessageStore(ctrl)
	svc := f.service(messages, f.notifications)

	messages.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(true, nil)
	messages.EXPECT().
		MarkDelivered(gomock.Any(), gomock.Any(), "u2").
		Return(apperrors.Persistence("mark delivered", errors.New("timeout")))

	outcome, err := svc.Send(context.Background(), SendRequest{SenderID: "u1", RecipientID: "u2", Text: "hello"})

	req.NoError(err)
	req.Equal([]string{"u2"}, outcome.Pending)
	req.Empty(outcome.Message.DeliveredTo)
}

func TestDispatch_Same_Message_Twice_Is_Delivered_Once(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t)
	bobConn := f.connect(bob)
	msg := &models.Message{
		ID:              "m1",
		ConversationKey: "dm:u1:u2",
		SenderID:        "u1",
		Recipients:      []string{"u2"},
		Text:            "hello",
		DeliveredTo:     []string{},
		ReadBy:          []string{},
	}

	// Given the message was dispatched once
	first, err := f.svc.Dispatch(ctx, msg)
	req.NoError(err)
	req.Equal([]string{"u2"}, first.Delivered)

	// When the same message is dispatched again
	second, err := f.svc.Dispatch(ctx, msg)

	// Then nothing is pushed, stored or notified a second time
	req.NoError(err)
	req.Empty(second.Delivered)
	req.Empty(second.Notifications)
	req.Equal([]string{"u2"}, second.Message.DeliveredTo)
	req.Len(bobConn.OfType(ws.EventNewMessage), 1)
	req.Len(bobConn.OfType(ws.EventNewNotification), 1)

	stored, err := f.messages.ListByConversation(ctx, "dm:u1:u2")
	req.NoError(err)
	req.Len(stored, 1)
	req.Equal([]string{"u2"}, stored[0].DeliveredTo)

	count, err := f.notifications.CountUnread(ctx, "u2")
	req.NoError(err)
	req.EqualValues(1, count)
}

func TestDispatch_Rejects_Message_Without_Recipients(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	_, err := f.svc.Dispatch(context.Background(), &models.Message{ID: "m1", ConversationKey: "dm:u1:u2", SenderID: "u1"})

	req.ErrorIs(err, apperrors.ErrInvalidParticipant)
	stored, err := f.messages.ListForUser(context.Background(), "u1")
	req.NoError(err)
	req.Empty(stored)
}

func TestSendToUsername(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t)

	outcome, err := f.svc.SendToUsername(ctx, "u1", "bob", "hey bob", nil)
	req.NoError(err)
	req.Equal([]string{"u2"}, outcome.Message.Recipients)

	_, err = f.svc.SendToUsername(ctx, "u1", "nobody", "hello?", nil)
	req.ErrorIs(err, apperrors.ErrNotFound)
}

func TestSend_Preserves_Sender_Order(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	f := newFixture(t)

	for _, text := range []string{"one", "two", "three"} {
		_, err := f.svc.Send(ctx, SendRequest{SenderID: "u1", RecipientID: "u2", Text: text})
		req.NoError(err)
	}

	msgs, err := f.svc.Messages(ctx, "u2", "dm:u1:u2")
	req.NoError(err)
	req.Equal([]string{"one", "two", "three"}, []string{msgs[0].Text, msgs[1].Text, msgs[2].Text})
}

func TestPreview(t *testing.T) {
	req := require.New(t)

	req.Equal("short", Preview("short"))
	long := strings.Repeat("é", 100)
	req.Equal(strings.Repeat("é", 80), Preview(long))
}
