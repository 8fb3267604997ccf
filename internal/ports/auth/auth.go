package auth

import "context"

// Claims identifica al usuario autenticado. Solo UserID es obligatorio;
// las mascotas se filtran por él.
type Claims struct {
	UserID string
	Email  string
	Role   string // "authenticated" en Supabase; vacío en modo dev
}

// AuthVerifier valida un access token contra el proveedor de identidad.
type AuthVerifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}
