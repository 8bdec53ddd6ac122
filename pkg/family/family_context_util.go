package family

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
)

type contextKey string

const FamilyKey contextKey = "family"

var ErrNoFamily = errors.New("family not found in context")

// CurrentId retrieves the current family's ID from the context. Returns ErrNoFamily if not present.
func CurrentId(ctx context.Context) (int, error) {
	f, ok := ctx.Value(FamilyKey).(Family)
	if !ok {
		log.Trace("family not found in context")
		return 0, ErrNoFamily
	}
	return f.Id, nil
}

func CurrentFamily(ctx context.Context) (Family, error) {
	f, ok := ctx.Value(FamilyKey).(Family)
	if !ok {
		log.Trace("family not found in context")
		return Family{}, ErrNoFamily
	}
	return f, nil
}

func WithFamily(ctx context.Context, f Family) context.Context {
	return context.WithValue(ctx, FamilyKey, f)
}
