package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Rol names the dashboard a stored session belongs to.
type Rol string

const (
	RolAdmin        Rol = "admin"
	RolPerito       Rol = "perito"
	RolMesaDePartes Rol = "mesadepartes"
)

// tokenPrioridad is the lookup order when several sessions could serve a
// request. Mesa de partes wins over admin, admin over perito.
var tokenPrioridad = []Rol{RolMesaDePartes, RolAdmin, RolPerito}

// Sesion is one stored login: the token plus the profile fields the
// dashboards key on.
type Sesion struct {
	Token          string    `json:"token"`
	CIP            string    `json:"cip"`
	NombreCompleto string    `json:"nombre_completo"`
	Rol            Rol       `json:"rol"`
	SeccionNombre  string    `json:"seccion_nombre,omitempty"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// Expirada reports whether the session's token has expired.
func (s Sesion) Expirada() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// SessionStore persists at most one session per rol in a JSON file, with
// the invariant that only one rol's session is live at a time: storing a
// session wipes the other roles' entries. All methods are safe for
// concurrent use within a process.
type SessionStore struct {
	mu       sync.RWMutex
	path     string
	sesiones map[Rol]Sesion
}

// NewSessionStore opens (or creates) the session file at path.
func NewSessionStore(path string) (*SessionStore, error) {
	s := &SessionStore{
		path:     path,
		sesiones: make(map[Rol]Sesion),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("read session file: %w", err)
	}

	if len(data) > 0 {
		if err := json.Unmarshal(data, &s.sesiones); err != nil {
			// A corrupt session file is equivalent to being logged out.
			s.sesiones = make(map[Rol]Sesion)
		}
	}

	return s, nil
}

// Set stores the session for its rol and clears every other rol's
// session. The single-session rule keeps one identity active at a time.
func (s *SessionStore) Set(ses Sesion) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sesiones = map[Rol]Sesion{ses.Rol: ses}
	return s.persist()
}

// Get returns the stored session for a rol.
func (s *SessionStore) Get(rol Rol) (Sesion, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ses, ok := s.sesiones[rol]
	return ses, ok
}

// Token returns the highest-priority non-expired token, if any.
func (s *SessionStore) Token() (string, Rol, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rol := range tokenPrioridad {
		if ses, ok := s.sesiones[rol]; ok && ses.Token != "" && !ses.Expirada() {
			return ses.Token, rol, true
		}
	}
	return "", "", false
}

// Clear removes one rol's session.
func (s *SessionStore) Clear(rol Rol) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sesiones, rol)
	return s.persist()
}

// ClearAll wipes every session. Called on 401/403 responses so a rejected
// token never gets retried.
func (s *SessionStore) ClearAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sesiones = make(map[Rol]Sesion)
	return s.persist()
}

func (s *SessionStore) persist() error {
	data, err := json.MarshalIndent(s.sesiones, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sessions: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create session dir: %w", err)
		}
	}

	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}
