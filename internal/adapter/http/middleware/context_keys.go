package middleware

// ContextKey is the key type for values the middleware stores on a request context.
type ContextKey string

const (
	ActorIDCtxKey   = ContextKey("actor_id")
	ActorRoleCtxKey = ContextKey("actor_role")
)
