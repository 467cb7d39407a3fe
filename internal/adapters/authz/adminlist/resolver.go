package adminlist

import (
	"context"
	"strings"
)

// Resolver resuelve el rol de admin contra una allowlist de user IDs
// cargada de configuración (ADMIN_USER_IDS, separados por coma).
type Resolver struct {
	allowed  map[string]struct{}
	allowAll bool
}

// New crea un resolver desde la lista cruda de IDs.
// Si allowAll está activo, todo usuario es admin (modo dev / fallback).
func New(rawIDs string, allowAll bool) *Resolver {
	allowed := make(map[string]struct{})
	for _, id := range strings.Split(rawIDs, ",") {
		id = strings.TrimSpace(id)
		if id != "" {
			allowed[id] = struct{}{}
		}
	}
	return &Resolver{
		allowed:  allowed,
		allowAll: allowAll,
	}
}

func (r *Resolver) IsAdmin(_ context.Context, userID string) (bool, error) {
	if r.allowAll {
		return true, nil
	}
	_, ok := r.allowed[strings.TrimSpace(userID)]
	return ok, nil
}
