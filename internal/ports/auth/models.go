package auth

// Claims representa el principal autenticado extraído del token.
// UserID es la única llave de autorización de la galería: todo lo que un
// usuario ve o muta queda filtrado por ella.
type Claims struct {
	UserID string
	Email  string
}
