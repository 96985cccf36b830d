package middleware

import "context"

// actorIDKey is the key used to store the authenticated actor's ID in the
// request context. Using a custom type prevents collisions.
const actorIDKey = contextKey("actorID")

// GetActorIDFromContext retrieves the authenticated actor ID from the
// context. It returns the actor ID and a boolean indicating if it was found.
func GetActorIDFromContext(ctx context.Context) (string, bool) {
	actorID, ok := ctx.Value(actorIDKey).(string)
	if !ok || actorID == "" {
		return "", false
	}
	return actorID, true
}
