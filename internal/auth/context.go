package auth

import "context"

type (
	employeeIDKey struct{}
	roleTierKey   struct{}
)

func ContextWithEmployeeID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, employeeIDKey{}, id)
}

func EmployeeIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(employeeIDKey{}).(int64)
	return id, ok
}

func ContextWithRoleTier(ctx context.Context, tier int) context.Context {
	return context.WithValue(ctx, roleTierKey{}, tier)
}

func RoleTierFromContext(ctx context.Context) (int, bool) {
	tier, ok := ctx.Value(roleTierKey{}).(int)
	return tier, ok
}
