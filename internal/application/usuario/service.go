package usuario

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"oficri/mesapartes/internal/core/usuario"
	"oficri/mesapartes/internal/infrastructure/config"
)

// Service orchestrates usuario use cases: authentication, registration and
// account management. Tokens are HS256-signed with the configured secret and
// carry the claims the dashboards key on (cip, rol, seccion, nombre).
type Service struct {
	repo usuario.Repository
	auth config.AuthSettings
	log  *slog.Logger
}

// NewService creates a new usuario service.
func NewService(repo usuario.Repository, auth config.AuthSettings, log *slog.Logger) *Service {
	return &Service{repo: repo, auth: auth, log: log}
}

// LoginRequest carries the credentials for one rol's login endpoint.
type LoginRequest struct {
	CIP      string `json:"cip"`
	Password string `json:"password"`
}

// LoginResponse carries the signed token plus the profile fields the
// dashboards persist alongside it.
type LoginResponse struct {
	Token          string  `json:"token"`
	CIP            string  `json:"cip"`
	NombreCompleto string  `json:"nombre_completo"`
	Rol            string  `json:"rol"`
	SeccionNombre  *string `json:"seccion_nombre,omitempty"`
	ExpiresAt      int64   `json:"expires_at"`
}

// RegisterRequest carries the fields to create a usuario.
type RegisterRequest struct {
	CIP            string  `json:"cip"`
	NombreCompleto string  `json:"nombre_completo"`
	Password       string  `json:"password"`
	SeccionNombre  *string `json:"seccion_nombre"`
	GradoNombre    *string `json:"grado_nombre"`
	TurnoNombre    *string `json:"turno_nombre"`
	Correo         *string `json:"correo"`
}

// UpdateRequest carries the mutable fields of a usuario. Password is
// optional; when empty the stored hash is kept.
type UpdateRequest struct {
	NombreCompleto string  `json:"nombre_completo"`
	Password       string  `json:"password"`
	SeccionNombre  *string `json:"seccion_nombre"`
	GradoNombre    *string `json:"grado_nombre"`
	TurnoNombre    *string `json:"turno_nombre"`
	Correo         *string `json:"correo"`
	Activo         bool    `json:"activo"`
}

// Login verifies credentials for the given rol and issues a token.
// Unknown CIP and wrong password both map to ErrCredencialesInvalidas.
func (s *Service) Login(ctx context.Context, rol usuario.Rol, req LoginRequest) (*LoginResponse, error) {
	if strings.TrimSpace(req.CIP) == "" || req.Password == "" {
		return nil, usuario.ErrCredencialesInvalidas
	}

	u, err := s.repo.FindByCIP(ctx, req.CIP, rol)
	if err != nil {
		return nil, fmt.Errorf("find usuario: %w", err)
	}
	if u == nil || !u.Activo {
		return nil, usuario.ErrCredencialesInvalidas
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, usuario.ErrCredencialesInvalidas
	}

	expiresAt := time.Now().Add(s.auth.TokenTTL)
	token, err := s.issueToken(u, expiresAt)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	s.log.InfoContext(ctx, "login", slog.String("cip", u.CIP), slog.String("rol", string(u.Rol)))

	return &LoginResponse{
		Token:          token,
		CIP:            u.CIP,
		NombreCompleto: u.NombreCompleto,
		Rol:            string(u.Rol),
		SeccionNombre:  u.SeccionNombre,
		ExpiresAt:      expiresAt.Unix(),
	}, nil
}

// BootstrapAdmin seeds the initial admin account from the configured
// credentials. A fresh database has no usable login, so main calls this
// on startup; it no-ops when unconfigured or when the CIP already exists.
func (s *Service) BootstrapAdmin(ctx context.Context, cfg config.BootstrapSettings) error {
	if cfg.AdminCIP == "" || cfg.AdminPassword == "" {
		return nil
	}

	existing, err := s.repo.FindByCIP(ctx, cfg.AdminCIP, usuario.RolAdmin)
	if err != nil {
		return fmt.Errorf("find admin: %w", err)
	}
	if existing != nil {
		return nil
	}

	_, err = s.Register(ctx, usuario.RolAdmin, RegisterRequest{
		CIP:            cfg.AdminCIP,
		NombreCompleto: cfg.AdminNombre,
		Password:       cfg.AdminPassword,
	})
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}

	s.log.InfoContext(ctx, "admin inicial creado", slog.String("cip", cfg.AdminCIP))
	return nil
}

// Register creates a usuario with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, rol usuario.Rol, req RegisterRequest) (*usuario.Usuario, error) {
	if err := validateRegister(req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := usuario.Usuario{
		CIP:            strings.TrimSpace(req.CIP),
		NombreCompleto: strings.TrimSpace(req.NombreCompleto),
		Rol:            rol,
		SeccionNombre:  req.SeccionNombre,
		GradoNombre:    req.GradoNombre,
		TurnoNombre:    req.TurnoNombre,
		Correo:         req.Correo,
		PasswordHash:   string(hash),
		Activo:         true,
	}

	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	u.PasswordHash = ""
	return &u, nil
}

// Update modifies a usuario. An empty password keeps the current hash.
func (s *Service) Update(ctx context.Context, cip string, rol usuario.Rol, req UpdateRequest) error {
	if strings.TrimSpace(req.NombreCompleto) == "" {
		return fmt.Errorf("%w: nombre_completo es requerido", usuario.ErrValidacion)
	}

	var hash string
	if req.Password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		hash = string(h)
	}

	u := usuario.Usuario{
		CIP:            cip,
		NombreCompleto: strings.TrimSpace(req.NombreCompleto),
		Rol:            rol,
		SeccionNombre:  req.SeccionNombre,
		GradoNombre:    req.GradoNombre,
		TurnoNombre:    req.TurnoNombre,
		Correo:         req.Correo,
		PasswordHash:   hash,
		Activo:         req.Activo,
	}

	return s.repo.Update(ctx, u)
}

// Info returns the profile of a usuario without the password hash.
func (s *Service) Info(ctx context.Context, cip string, rol usuario.Rol) (*usuario.Usuario, error) {
	u, err := s.repo.FindByCIP(ctx, cip, rol)
	if err != nil {
		return nil, fmt.Errorf("find usuario: %w", err)
	}
	if u == nil {
		return nil, usuario.ErrNoEncontrado
	}

	u.PasswordHash = ""
	return u, nil
}

// List returns a page of usuarios of a rol, optionally filtered by a
// search term over CIP and name.
func (s *Service) List(ctx context.Context, rol usuario.Rol, page, size int, busqueda string) ([]usuario.Usuario, int, error) {
	usuarios, total, err := s.repo.List(ctx, rol, page, size, busqueda)
	if err != nil {
		return nil, 0, fmt.Errorf("list usuarios: %w", err)
	}

	for i := range usuarios {
		usuarios[i].PasswordHash = ""
	}

	return usuarios, total, nil
}

// Deactivate soft-deletes a usuario, ending its ability to log in.
func (s *Service) Deactivate(ctx context.Context, cip string, rol usuario.Rol) error {
	return s.repo.Deactivate(ctx, cip, rol)
}

func (s *Service) issueToken(u *usuario.Usuario, expiresAt time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":    u.CIP,
		"cip":    u.CIP,
		"rol":    string(u.Rol),
		"nombre": u.NombreCompleto,
		"iat":    time.Now().Unix(),
		"exp":    expiresAt.Unix(),
	}
	if u.SeccionNombre != nil {
		claims["seccion"] = *u.SeccionNombre
	}
	if s.auth.IssuerURI != "" {
		claims["iss"] = s.auth.IssuerURI
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.auth.Secret))
}

func validateRegister(req RegisterRequest) error {
	if strings.TrimSpace(req.CIP) == "" {
		return fmt.Errorf("%w: cip es requerido", usuario.ErrValidacion)
	}
	if strings.TrimSpace(req.NombreCompleto) == "" {
		return fmt.Errorf("%w: nombre_completo es requerido", usuario.ErrValidacion)
	}
	if len(req.Password) < 8 {
		return fmt.Errorf("%w: password debe tener al menos 8 caracteres", usuario.ErrValidacion)
	}
	return nil
}
