package client

import (
	"path/filepath"
	"testing"
	"time"
)

func abrirStore(t *testing.T) *SessionStore {
	t.Helper()

	store, err := NewSessionStore(filepath.Join(t.TempDir(), "sesiones.json"))
	if err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	return store
}

func sesionDe(rol Rol, token string) Sesion {
	return Sesion{
		Token:     token,
		CIP:       "12345678",
		Rol:       rol,
		ExpiresAt: time.Now().Add(time.Hour),
	}
}

func TestSetDesplazaOtrasSesiones(t *testing.T) {
	store := abrirStore(t)

	if err := store.Set(sesionDe(RolPerito, "tok-perito")); err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	if err := store.Set(sesionDe(RolAdmin, "tok-admin")); err != nil {
		t.Fatalf("error inesperado: %v", err)
	}

	if _, ok := store.Get(RolPerito); ok {
		t.Error("la sesión de perito debió eliminarse al guardar la de admin")
	}
	ses, ok := store.Get(RolAdmin)
	if !ok || ses.Token != "tok-admin" {
		t.Errorf("sesión de admin = %+v, ok=%v", ses, ok)
	}
}

func TestTokenPrioridad(t *testing.T) {
	store := abrirStore(t)

	// Poblado directo para simular un archivo heredado con varias
	// sesiones a la vez.
	store.sesiones[RolPerito] = sesionDe(RolPerito, "tok-perito")
	store.sesiones[RolAdmin] = sesionDe(RolAdmin, "tok-admin")
	store.sesiones[RolMesaDePartes] = sesionDe(RolMesaDePartes, "tok-mesa")

	token, rol, ok := store.Token()
	if !ok {
		t.Fatal("se esperaba un token activo")
	}
	if rol != RolMesaDePartes || token != "tok-mesa" {
		t.Errorf("token = %q rol = %q, se esperaba mesa de partes", token, rol)
	}

	delete(store.sesiones, RolMesaDePartes)
	token, rol, _ = store.Token()
	if rol != RolAdmin || token != "tok-admin" {
		t.Errorf("token = %q rol = %q, se esperaba admin", token, rol)
	}
}

func TestTokenIgnoraSesionExpirada(t *testing.T) {
	store := abrirStore(t)

	expirada := sesionDe(RolMesaDePartes, "tok-mesa")
	expirada.ExpiresAt = time.Now().Add(-time.Minute)
	store.sesiones[RolMesaDePartes] = expirada
	store.sesiones[RolPerito] = sesionDe(RolPerito, "tok-perito")

	token, rol, ok := store.Token()
	if !ok {
		t.Fatal("se esperaba un token activo")
	}
	if rol != RolPerito || token != "tok-perito" {
		t.Errorf("token = %q rol = %q, se esperaba perito", token, rol)
	}
}

func TestStorePersisteEntreInstancias(t *testing.T) {
	ruta := filepath.Join(t.TempDir(), "sesiones.json")

	primero, err := NewSessionStore(ruta)
	if err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	if err := primero.Set(sesionDe(RolAdmin, "tok-admin")); err != nil {
		t.Fatalf("error inesperado: %v", err)
	}

	segundo, err := NewSessionStore(ruta)
	if err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	ses, ok := segundo.Get(RolAdmin)
	if !ok || ses.Token != "tok-admin" {
		t.Errorf("sesión recargada = %+v, ok=%v", ses, ok)
	}
}

func TestClearAll(t *testing.T) {
	store := abrirStore(t)

	if err := store.Set(sesionDe(RolMesaDePartes, "tok-mesa")); err != nil {
		t.Fatalf("error inesperado: %v", err)
	}
	if err := store.ClearAll(); err != nil {
		t.Fatalf("error inesperado: %v", err)
	}

	if _, _, ok := store.Token(); ok {
		t.Error("no debió quedar ningún token tras ClearAll")
	}
}
