package chat

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"utility-hub-server/internal/models"
)

func setupConversation(t *testing.T) (*MessageStore, string, context.Context) {
	t.Helper()
	db := newTestDB(t)
	ctx := context.Background()
	createUser(t, db, "u1")
	createUser(t, db, "u2")

	conv, err := NewConversationService(db).GetOrCreateDirect(ctx, "u1", "u2")
	require.NoError(t, err)
	return NewMessageStore(db), conv.ID, ctx
}

func TestAppendRejectsEmptyContent(t *testing.T) {
	store, convID, ctx := setupConversation(t)

	for _, content := range []string{"", "   ", "\n\t "} {
		_, err := store.Append(ctx, convID, "u1", "User u1", content)
		assert.ErrorIs(t, err, ErrEmptyContent)
	}

	count, err := store.CountUnread(ctx, convID, "u2")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestAppendUnknownConversation(t *testing.T) {
	store, _, ctx := setupConversation(t)

	_, err := store.Append(ctx, "conv_missing", "u1", "User u1", "hello")
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestAppendRequiresParticipation(t *testing.T) {
	store, convID, ctx := setupConversation(t)

	_, err := store.Append(ctx, convID, "intruder", "Intruder", "hello")
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestAppendStoresUnreadMessage(t *testing.T) {
	store, convID, ctx := setupConversation(t)

	msg, err := store.Append(ctx, convID, "u1", "User u1", "hello")
	require.NoError(t, err)

	assert.NotEmpty(t, msg.ID)
	assert.False(t, msg.Read)
	assert.Equal(t, "User u1", msg.SenderName)
	assert.Equal(t, convID, msg.ConversationID)
}

func TestListByConversationOrderingAndPagination(t *testing.T) {
	store, convID, ctx := setupConversation(t)

	for i := 0; i < 5; i++ {
		_, err := store.Append(ctx, convID, "u1", "User u1", fmt.Sprintf("message %d", i))
		require.NoError(t, err)
	}

	all, err := store.ListByConversation(ctx, convID, 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	for i, msg := range all {
		assert.Equal(t, fmt.Sprintf("message %d", i), msg.Content)
	}

	page, err := store.ListByConversation(ctx, convID, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "message 2", page[0].Content)
	assert.Equal(t, "message 3", page[1].Content)
}

func TestMarkReadIsIdempotent(t *testing.T) {
	store, convID, ctx := setupConversation(t)
	db := store.db

	msg, err := store.Append(ctx, convID, "u1", "User u1", "hello")
	require.NoError(t, err)

	require.NoError(t, store.MarkRead(ctx, []string{msg.ID}, "u2"))
	require.NoError(t, store.MarkRead(ctx, []string{msg.ID}, "u2"))

	var stored models.Message
	require.NoError(t, db.First(&stored, "id = ?", msg.ID).Error)
	assert.True(t, stored.Read)

	var receipts int64
	require.NoError(t, db.Model(&models.ReadReceipt{}).
		Where("message_id = ? AND user_id = ?", msg.ID, "u2").
		Count(&receipts).Error)
	assert.EqualValues(t, 1, receipts)
}

func TestMarkReadSkipsOwnMessages(t *testing.T) {
	store, convID, ctx := setupConversation(t)
	db := store.db

	msg, err := store.Append(ctx, convID, "u1", "User u1", "hello")
	require.NoError(t, err)

	// The sender marking their own message read is a no-op
	require.NoError(t, store.MarkRead(ctx, []string{msg.ID}, "u1"))

	var stored models.Message
	require.NoError(t, db.First(&stored, "id = ?", msg.ID).Error)
	assert.False(t, stored.Read)

	var receipts int64
	require.NoError(t, db.Model(&models.ReadReceipt{}).Count(&receipts).Error)
	assert.Zero(t, receipts)
}

func TestMarkReadRequiresParticipation(t *testing.T) {
	store, convID, ctx := setupConversation(t)
	db := store.db

	msg, err := store.Append(ctx, convID, "u1", "User u1", "hello")
	require.NoError(t, err)

	// An outsider marking the message read must not change anything
	require.NoError(t, store.MarkRead(ctx, []string{msg.ID}, "u3"))

	var stored models.Message
	require.NoError(t, db.First(&stored, "id = ?", msg.ID).Error)
	assert.False(t, stored.Read)

	var receipts int64
	require.NoError(t, db.Model(&models.ReadReceipt{}).Count(&receipts).Error)
	assert.Zero(t, receipts)

	// u2's unread count is untouched
	unread, err := store.CountUnread(ctx, convID, "u2")
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)

	// The actual recipient can still mark it read
	require.NoError(t, store.MarkRead(ctx, []string{msg.ID}, "u2"))
	require.NoError(t, db.First(&stored, "id = ?", msg.ID).Error)
	assert.True(t, stored.Read)
}

func TestMarkReadEmptyBatch(t *testing.T) {
	store, _, ctx := setupConversation(t)
	assert.NoError(t, store.MarkRead(ctx, nil, "u2"))
}

func TestCountUnreadExcludesSender(t *testing.T) {
	store, convID, ctx := setupConversation(t)

	_, err := store.Append(ctx, convID, "u1", "User u1", "one")
	require.NoError(t, err)
	_, err = store.Append(ctx, convID, "u1", "User u1", "two")
	require.NoError(t, err)
	reply, err := store.Append(ctx, convID, "u2", "User u2", "reply")
	require.NoError(t, err)

	// u2 has two unread from u1; their own reply is not counted
	unread, err := store.CountUnread(ctx, convID, "u2")
	require.NoError(t, err)
	assert.EqualValues(t, 2, unread)

	// u1 sees only u2's reply
	unread, err = store.CountUnread(ctx, convID, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread)

	require.NoError(t, store.MarkRead(ctx, []string{reply.ID}, "u1"))
	unread, err = store.CountUnread(ctx, convID, "u1")
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestUnreadIDs(t *testing.T) {
	store, convID, ctx := setupConversation(t)

	first, err := store.Append(ctx, convID, "u1", "User u1", "one")
	require.NoError(t, err)
	second, err := store.Append(ctx, convID, "u1", "User u1", "two")
	require.NoError(t, err)
	_, err = store.Append(ctx, convID, "u2", "User u2", "reply")
	require.NoError(t, err)

	ids, err := store.UnreadIDs(ctx, convID, "u2")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{first.ID, second.ID}, ids)
}
