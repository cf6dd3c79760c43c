package auth

import "context"

// AuthVerifier verifica un token de sesión y devuelve claims o error.
// Sin claims no hay principal, y sin principal el core rechaza toda
// operación remota antes de emitirla.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
