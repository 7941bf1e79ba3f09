package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"utility-hub-server/internal/models"
)

func TestSendMessageEndToEnd(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	createUser(t, db, "u1")
	createUser(t, db, "u2")

	svc := NewService(db)

	sent, err := svc.SendMessage(ctx, "u1", "User u1", "u2", "hello")
	require.NoError(t, err)
	assert.Equal(t, "conv_u1_u2", sent.Message.ConversationID)
	assert.Equal(t, "User u2", sent.RecipientName)
	assert.False(t, sent.Message.Read)

	var participants int64
	require.NoError(t, db.Model(&models.ConversationParticipant{}).
		Where("conversation_id = ?", "conv_u1_u2").
		Count(&participants).Error)
	assert.EqualValues(t, 2, participants)

	// u2 sees one unread conversation
	summaries, err := svc.ListConversationsFor(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "conv_u1_u2", summaries[0].ConversationID)
	assert.EqualValues(t, 1, summaries[0].UnreadCount)
	require.NotNil(t, summaries[0].LastMessage)
	assert.Equal(t, "hello", summaries[0].LastMessage.Content)
	require.NotNil(t, summaries[0].Partner)
	assert.Equal(t, "u1", summaries[0].Partner.ID)

	// Marking the conversation read clears the counter and leaves a receipt
	require.NoError(t, svc.MarkConversationRead(ctx, "conv_u1_u2", "u2"))

	unread, err := svc.Messages.CountUnread(ctx, "conv_u1_u2", "u2")
	require.NoError(t, err)
	assert.Zero(t, unread)

	var receipts int64
	require.NoError(t, db.Model(&models.ReadReceipt{}).
		Where("message_id = ? AND user_id = ?", sent.Message.ID, "u2").
		Count(&receipts).Error)
	assert.EqualValues(t, 1, receipts)
}

func TestSendMessageRejectedWhenRecipientBlockedSender(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	createUser(t, db, "u1")
	createUser(t, db, "u2")

	svc := NewService(db)
	require.NoError(t, svc.Blocks.Block(ctx, "u2", "u1"))

	_, err := svc.SendMessage(ctx, "u1", "User u1", "u2", "hello")
	assert.ErrorIs(t, err, ErrBlocked)

	var messages int64
	require.NoError(t, db.Model(&models.Message{}).Count(&messages).Error)
	assert.Zero(t, messages)
}

func TestSendMessageRejectedWhenSenderBlockedRecipient(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	createUser(t, db, "u1")
	createUser(t, db, "u2")

	svc := NewService(db)
	require.NoError(t, svc.Blocks.Block(ctx, "u1", "u2"))

	// Blocks suppress sends in both directions
	_, err := svc.SendMessage(ctx, "u1", "User u1", "u2", "hello")
	assert.ErrorIs(t, err, ErrBlocked)
}

func TestSendMessageRejectsSelfSend(t *testing.T) {
	db := newTestDB(t)
	createUser(t, db, "u1")

	svc := NewService(db)
	_, err := svc.SendMessage(context.Background(), "u1", "User u1", "u1", "hello")
	assert.ErrorIs(t, err, ErrSelfSend)

	var messages int64
	require.NoError(t, db.Model(&models.Message{}).Count(&messages).Error)
	assert.Zero(t, messages)
}

func TestSendMessageRejectsEmptyContent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	createUser(t, db, "u1")
	createUser(t, db, "u2")

	svc := NewService(db)
	_, err := svc.SendMessage(ctx, "u1", "User u1", "u2", "   ")
	assert.ErrorIs(t, err, ErrEmptyContent)

	var messages int64
	require.NoError(t, db.Model(&models.Message{}).Count(&messages).Error)
	assert.Zero(t, messages)

	// The rejected send must not have created the conversation either
	var conversations int64
	require.NoError(t, db.Model(&models.Conversation{}).Count(&conversations).Error)
	assert.Zero(t, conversations)

	var participants int64
	require.NoError(t, db.Model(&models.ConversationParticipant{}).Count(&participants).Error)
	assert.Zero(t, participants)
}

func TestSendMessageUnknownRecipient(t *testing.T) {
	db := newTestDB(t)
	createUser(t, db, "u1")

	svc := NewService(db)
	_, err := svc.SendMessage(context.Background(), "u1", "User u1", "ghost", "hello")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestMarkConversationReadRequiresParticipation(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	createUser(t, db, "u1")
	createUser(t, db, "u2")
	createUser(t, db, "u3")

	svc := NewService(db)
	_, err := svc.SendMessage(ctx, "u1", "User u1", "u2", "hello")
	require.NoError(t, err)

	err = svc.MarkConversationRead(ctx, "conv_u1_u2", "u3")
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestListConversationsOrderedByActivity(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	createUser(t, db, "u1")
	createUser(t, db, "u2")
	createUser(t, db, "u3")

	svc := NewService(db)

	_, err := svc.SendMessage(ctx, "u2", "User u2", "u1", "older thread")
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)
	_, err = svc.SendMessage(ctx, "u3", "User u3", "u1", "newer thread")
	require.NoError(t, err)

	summaries, err := svc.ListConversationsFor(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "conv_u1_u3", summaries[0].ConversationID)
	assert.Equal(t, "conv_u1_u2", summaries[1].ConversationID)
}

func TestPurgeUserData(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	createUser(t, db, "u1")
	createUser(t, db, "u2")
	createUser(t, db, "u3")

	svc := NewService(db)

	sent, err := svc.SendMessage(ctx, "u1", "User u1", "u2", "hello")
	require.NoError(t, err)
	_, err = svc.SendMessage(ctx, "u2", "User u2", "u1", "hi back")
	require.NoError(t, err)
	require.NoError(t, svc.MarkConversationRead(ctx, sent.Message.ConversationID, "u2"))
	require.NoError(t, svc.Blocks.Block(ctx, "u1", "u3"))

	require.NoError(t, svc.PurgeUserData(ctx, "u1"))

	var authored int64
	require.NoError(t, db.Model(&models.Message{}).Where("sender_id = ?", "u1").Count(&authored).Error)
	assert.Zero(t, authored)

	var participantRows int64
	require.NoError(t, db.Model(&models.ConversationParticipant{}).Where("user_id = ?", "u1").Count(&participantRows).Error)
	assert.Zero(t, participantRows)

	var blockRows int64
	require.NoError(t, db.Model(&models.BlockRelation{}).
		Where("blocker_id = ? OR blocked_id = ?", "u1", "u1").
		Count(&blockRows).Error)
	assert.Zero(t, blockRows)

	// u2's side of history survives
	var remaining int64
	require.NoError(t, db.Model(&models.Message{}).Where("sender_id = ?", "u2").Count(&remaining).Error)
	assert.EqualValues(t, 1, remaining)
}
