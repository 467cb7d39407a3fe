package authz

import "context"

// AdminResolver decide si un usuario autenticado tiene rol de administrador
// (moderación de feedback). El store de registros no sabe de privilegios;
// la decisión vive en la capa que llama.
type AdminResolver interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}
