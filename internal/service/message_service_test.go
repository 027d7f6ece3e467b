package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workshop/internal/auth"
	apperrors "workshop/internal/errors"
	"workshop/internal/model"
)

func TestMessageService_ThreadOrdering(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	reg := e.register(t, "Jan", "jan@x.pl", "secret123")
	caller := auth.Identity{UserID: reg.User.ID, Role: model.RoleUser}

	svc := NewMessageService(e.store)
	base := time.Now().UTC()

	first, err := svc.CreateThread(ctx, caller, ThreadInput{Title: "Brakes"})
	require.NoError(t, err)
	second, err := svc.CreateThread(ctx, caller, ThreadInput{Title: "Tyres"})
	require.NoError(t, err)
	quiet, err := svc.CreateThread(ctx, caller, ThreadInput{Title: "Quiet"})
	require.NoError(t, err)

	svc.(*messageService).now = func() time.Time { return base.Add(time.Hour) }
	_, err = svc.SendMessage(ctx, caller, second.ID, "Tyres are in")
	require.NoError(t, err)

	svc.(*messageService).now = func() time.Time { return base.Add(2 * time.Hour) }
	_, err = svc.SendMessage(ctx, caller, first.ID, "Pads ordered")
	require.NoError(t, err)
	sent, err := svc.SendMessage(ctx, caller, first.ID, "Pads fitted")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, *sent.SenderUserID)

	threads, err := svc.ListThreads(ctx, "")
	require.NoError(t, err)
	require.Len(t, threads, 3)
	assert.Equal(t, []uint{first.ID, second.ID, quiet.ID}, []uint{threads[0].ID, threads[1].ID, threads[2].ID})

	require.NotNil(t, threads[0].LastMessage)
	assert.Equal(t, "Pads fitted", *threads[0].LastMessage)
	assert.Equal(t, int64(2), threads[0].MessageCount)
	assert.Nil(t, threads[2].LastMessage)
	assert.Zero(t, threads[2].MessageCount)

	bumped, err := svc.GetThread(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, bumped.UpdatedAt.After(first.UpdatedAt), "sending bumps updated_at")

	messages, err := svc.ListMessages(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "Pads ordered", messages[0].Text)
	assert.Equal(t, "Pads fitted", messages[1].Text)

	found, err := svc.ListThreads(ctx, "tyre")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, second.ID, found[0].ID)
}

func TestMessageService_Errors(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	reg := e.register(t, "Jan", "jan@x.pl", "secret123")
	caller := auth.Identity{UserID: reg.User.ID}
	svc := NewMessageService(e.store)

	_, err := svc.SendMessage(ctx, caller, 999, "hello")
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	_, err = svc.ListMessages(ctx, 999)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	_, err = svc.CreateThread(ctx, caller, ThreadInput{Title: "  "})
	assert.Equal(t, apperrors.KindBadRequest, apperrors.KindOf(err))

	missing := uint(42)
	_, err = svc.CreateThread(ctx, caller, ThreadInput{Title: "X", CustomerID: &missing})
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	thread, err := svc.CreateThread(ctx, caller, ThreadInput{Title: "X"})
	require.NoError(t, err)
	_, err = svc.SendMessage(ctx, caller, thread.ID, "   ")
	assert.Equal(t, apperrors.KindBadRequest, apperrors.KindOf(err))

	renamed, err := svc.RenameThread(ctx, thread.ID, "Renamed")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", renamed.Title)

	_, err = svc.SendMessage(ctx, caller, thread.ID, "hi")
	require.NoError(t, err)
	require.NoError(t, svc.DeleteThread(ctx, thread.ID))
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(svc.DeleteThread(ctx, thread.ID)))
	_, err = svc.ListMessages(ctx, thread.ID)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
}

func TestNotificationService(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	owner := e.register(t, "Jan", "jan@x.pl", "secret123").User
	stranger := e.register(t, "Ewa", "ewa@x.pl", "secret123").User
	admin := auth.Identity{UserID: 999, Role: model.RoleAdmin}
	me := auth.Identity{UserID: owner.ID, Role: model.RoleUser}
	them := auth.Identity{UserID: stranger.ID, Role: model.RoleUser}

	svc := NewNotificationService(e.store.Notifications(), e.store.Users())

	_, err := svc.Create(ctx, me, NotificationInput{UserID: owner.ID, Title: "hi"})
	assert.Equal(t, apperrors.KindForbidden, apperrors.KindOf(err))
	_, err = svc.Create(ctx, admin, NotificationInput{UserID: 12345, Title: "hi"})
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))

	n1, err := svc.Create(ctx, admin, NotificationInput{UserID: owner.ID, Title: "Car ready"})
	require.NoError(t, err)
	n2, err := svc.Create(ctx, admin, NotificationInput{UserID: owner.ID, Title: "Invoice issued"})
	require.NoError(t, err)

	list, err := svc.List(ctx, me, false)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, n2.ID, list[0].ID, "newest first")

	_, err = svc.Get(ctx, them, n1.ID)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	_, err = svc.MarkRead(ctx, them, n1.ID)
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(svc.Delete(ctx, them, n1.ID)))

	read, err := svc.MarkRead(ctx, me, n1.ID)
	require.NoError(t, err)
	assert.NotNil(t, read.ReadAt)
	again, err := svc.MarkRead(ctx, me, n1.ID)
	require.NoError(t, err)
	assert.Equal(t, read.ReadAt.Unix(), again.ReadAt.Unix())

	unread, err := svc.List(ctx, me, true)
	require.NoError(t, err)
	require.Len(t, unread, 1)
	assert.Equal(t, n2.ID, unread[0].ID)

	n, err := svc.MarkAllRead(ctx, me)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, svc.Delete(ctx, me, n1.ID))
	list, err = svc.List(ctx, me, false)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
