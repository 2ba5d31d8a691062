package chat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freebie/internal/chatsync"
	domainchat "freebie/internal/domain/chat"
	busmemory "freebie/internal/infra/bus/memory"
	"freebie/internal/infra/storage/memory"
)

func newTestService() (*Service, *busmemory.Bus) {
	bus := busmemory.NewBus()
	service := &Service{
		Rooms:    memory.NewRoomRepository(),
		Messages: memory.NewMessageLog(),
		Notifier: bus,
	}
	return service, bus
}

func TestGetOrCreateRoomIsIdempotent(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	first, err := service.GetOrCreateRoom(ctx, "item-1", "seller-1", "buyer-1")
	require.NoError(t, err)
	second, err := service.GetOrCreateRoom(ctx, "item-1", "seller-1", "buyer-1")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	rooms, err := service.RoomsForUser(ctx, "buyer-1")
	require.NoError(t, err)
	assert.Len(t, rooms, 1)
}

func TestGetOrCreateRoomDistinctTriples(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	a, err := service.GetOrCreateRoom(ctx, "item-1", "seller-1", "buyer-1")
	require.NoError(t, err)
	b, err := service.GetOrCreateRoom(ctx, "item-2", "seller-1", "buyer-1")
	require.NoError(t, err)
	c, err := service.GetOrCreateRoom(ctx, "item-1", "seller-1", "buyer-2")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, a.ID, c.ID)
}

func TestGetOrCreateRoomRejectsSelfChat(t *testing.T) {
	service, _ := newTestService()
	_, err := service.GetOrCreateRoom(context.Background(), "item-1", "user-1", "user-1")
	assert.ErrorIs(t, err, domainchat.ErrSelfConversation)
}

func TestSendMessageBumpsRoomAndRingsChannel(t *testing.T) {
	service, bus := newTestService()
	ctx := context.Background()
	room, err := service.GetOrCreateRoom(ctx, "item-1", "seller-1", "buyer-1")
	require.NoError(t, err)

	rang := 0
	sub, err := bus.Subscribe(room.Channel(), func() { rang++ })
	require.NoError(t, err)
	defer sub.Close()

	before := room.UpdatedAt
	time.Sleep(5 * time.Millisecond)
	message, err := service.SendMessage(ctx, room.ID, "buyer-1", "is this still available?")
	require.NoError(t, err)
	assert.Equal(t, 1, rang)
	assert.Equal(t, domainchat.MessageConfirmed, message.State)

	bumped, err := service.RoomByID(ctx, room.ID)
	require.NoError(t, err)
	assert.True(t, bumped.UpdatedAt.After(before))
}

func TestSendMessageRejectsOutsiders(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()
	room, err := service.GetOrCreateRoom(ctx, "item-1", "seller-1", "buyer-1")
	require.NoError(t, err)

	_, err = service.SendMessage(ctx, room.ID, "stranger", "hello")
	assert.ErrorIs(t, err, ErrNotParticipant)
}

func TestSendMessageValidatesContent(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()
	room, err := service.GetOrCreateRoom(ctx, "item-1", "seller-1", "buyer-1")
	require.NoError(t, err)

	_, err = service.SendMessage(ctx, room.ID, "buyer-1", "   ")
	assert.ErrorIs(t, err, domainchat.ErrEmptyContent)
}

func TestMessagePageNewestFirstWithClamp(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()
	room, err := service.GetOrCreateRoom(ctx, "item-1", "seller-1", "buyer-1")
	require.NoError(t, err)

	for _, text := range []string{"one", "two", "three"} {
		_, err := service.SendMessage(ctx, room.ID, "buyer-1", text)
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	page, err := service.MessagePage(ctx, room.ID, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "three", page[0].Content)
	assert.Equal(t, "two", page[1].Content)

	// zero limit clamps to the maximum page size
	all, err := service.MessagePage(ctx, room.ID, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestDeleteRoomCascadesToMessages(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()
	room, err := service.GetOrCreateRoom(ctx, "item-1", "seller-1", "buyer-1")
	require.NoError(t, err)
	_, err = service.SendMessage(ctx, room.ID, "buyer-1", "hello")
	require.NoError(t, err)

	require.NoError(t, service.DeleteRoom(ctx, room.ID, "seller-1"))

	_, err = service.RoomByID(ctx, room.ID)
	assert.ErrorIs(t, err, domainchat.ErrConversationNotFound)
	leftovers, err := service.Messages.List(ctx, room.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestDeleteRoomRequiresParticipant(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()
	room, err := service.GetOrCreateRoom(ctx, "item-1", "seller-1", "buyer-1")
	require.NoError(t, err)

	assert.ErrorIs(t, service.DeleteRoom(ctx, room.ID, "stranger"), ErrNotParticipant)
}

func TestDeleteForUserRemovesEveryThread(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()
	one, err := service.GetOrCreateRoom(ctx, "item-1", "seller-1", "buyer-1")
	require.NoError(t, err)
	two, err := service.GetOrCreateRoom(ctx, "item-2", "seller-2", "buyer-1")
	require.NoError(t, err)
	_, err = service.SendMessage(ctx, one.ID, "buyer-1", "hello")
	require.NoError(t, err)

	require.NoError(t, service.DeleteForUser(ctx, "buyer-1"))

	rooms, err := service.RoomsForUser(ctx, "buyer-1")
	require.NoError(t, err)
	assert.Empty(t, rooms)
	_, err = service.RoomByID(ctx, two.ID)
	assert.ErrorIs(t, err, domainchat.ErrConversationNotFound)
}

func TestTouchRoomRingsWithoutWriting(t *testing.T) {
	service, bus := newTestService()
	ctx := context.Background()
	room, err := service.GetOrCreateRoom(ctx, "item-1", "seller-1", "buyer-1")
	require.NoError(t, err)

	rang := 0
	sub, err := bus.Subscribe(room.Channel(), func() { rang++ })
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, service.TouchRoom(ctx, room.ID))
	assert.Equal(t, 1, rang)

	page, err := service.MessagePage(ctx, room.ID, 0)
	require.NoError(t, err)
	assert.Empty(t, page)
}

// Two embedded clients share the pipeline: a send on one side shows up on
// the other via the bell channel.
func TestTwoClientsConvergeThroughSyncBackend(t *testing.T) {
	service, bus := newTestService()
	ctx := context.Background()
	room, err := service.GetOrCreateRoom(ctx, "item-1", "seller-1", "buyer-1")
	require.NoError(t, err)

	backend := SyncBackend{Service: service, Bus: bus}

	sellerStore := chatsync.NewStore("")
	sellerListener := chatsync.NewListener(sellerStore, backend, backend, nil)
	require.NoError(t, sellerListener.Attach(ctx, room.ID))
	defer sellerListener.Detach()

	buyerStore := chatsync.NewStore("")
	buyerListener := chatsync.NewListener(buyerStore, backend, backend, nil)
	require.NoError(t, buyerListener.Attach(ctx, room.ID))
	defer buyerListener.Detach()

	buyerSession := chatsync.NewSession(buyerStore, backend, backend, "buyer-1", nil)
	buyerSession.SetDraft("is this still available?")
	require.NoError(t, buyerSession.Send(ctx))

	require.Equal(t, 1, sellerStore.Len())
	assert.Equal(t, "is this still available?", sellerStore.Snapshot()[0].Content)
	require.Equal(t, 1, buyerStore.Len())
	assert.False(t, buyerStore.Snapshot()[0].Pending())
}
