package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// HeaderUserID carries the user id resolved by the hosted auth layer in
// front of this service.
const HeaderUserID = "X-User-ID"

const userIDKey ctxKey = "user_id"

// UserIDMiddleware resolves the caller's user id and stores it in Locals
// and in the user context. WebSocket upgrades may pass it as ?uid= since
// browsers cannot set headers on them. Anonymous requests pass through;
// the services reject them where a user is required.
func UserIDMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid := strings.TrimSpace(c.Get(HeaderUserID))
		if uid == "" && websocket.IsWebSocketUpgrade(c) {
			uid = strings.TrimSpace(c.Query("uid"))
		}
		if uid == "" {
			return c.Next()
		}

		c.Locals(string(userIDKey), uid)
		ctx := context.WithValue(c.UserContext(), userIDKey, uid)
		ctx = context.WithValue(ctx, ctxKey("logger"), LoggerFromCtx(ctx).With("user_id", uid))
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// UserIDFromCtx returns the user id stored by UserIDMiddleware, or "".
func UserIDFromCtx(ctx context.Context) string {
	uid, _ := ctx.Value(userIDKey).(string)
	return uid
}
