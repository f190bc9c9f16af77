package handler

import (
	"context"

	"github.com/taskee-dev/taskee/backend/internal/domain"
)

type ContextKey string

var (
	RequestIDCtx ContextKey = "requestID"
	ActorCtx     ContextKey = "actor"
	MyInfoCtx    ContextKey = "myInfo"
	UserInfoCtx  ContextKey = "userInfo"
	EntryKindCtx ContextKey = "entryKind"
	TaskCtx      ContextKey = "task"
)

func actorFromContext(ctx context.Context) (*domain.Actor, bool) {
	actor, ok := ctx.Value(ActorCtx).(*domain.Actor)
	return actor, ok
}

func requestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDCtx).(string)
	return id
}
