// Package auth registra usuarios y emite tokens de acceso.
package auth

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tu-usuario/tribunsys/internal/application/dto"
	"github.com/tu-usuario/tribunsys/internal/domain"
	"github.com/tu-usuario/tribunsys/internal/domain/entity"
	"github.com/tu-usuario/tribunsys/internal/domain/repository"
	"github.com/tu-usuario/tribunsys/pkg/config"
	"github.com/tu-usuario/tribunsys/pkg/jwt"
	"github.com/tu-usuario/tribunsys/pkg/logger"
)

const minPasswordLen = 8

// UseCase casos de uso de autenticación.
type UseCase struct {
	users    repository.UserRepository
	jwtCfg   config.JWTConfig
	brokerID string
	log      *logger.Logger
}

// NewUseCase construye el caso de uso.
func NewUseCase(users repository.UserRepository, jwtCfg config.JWTConfig, brokerID string, log *logger.Logger) *UseCase {
	return &UseCase{users: users, jwtCfg: jwtCfg, brokerID: brokerID, log: log.Component("auth")}
}

// Register crea un usuario y devuelve su token inicial.
func (u *UseCase) Register(ctx context.Context, req dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, &domain.ValidationError{Field: "email", Reason: "formato de email inválido"}
	}
	if len(req.Password) < minPasswordLen {
		return nil, &domain.ValidationError{Field: "password", Reason: "mínimo 8 caracteres"}
	}
	if req.Name == "" {
		return nil, &domain.ValidationError{Field: "nombre"}
	}
	role := req.Role
	if role == "" {
		role = entity.RoleCliente
	}
	if !entity.IsValidRole(role) {
		return nil, &domain.ValidationError{Field: "rol", Reason: "rol desconocido"}
	}

	existing, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "buscar usuario", Err: err}
	}
	if existing != nil {
		return nil, domain.ErrEmailAlreadyExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &entity.User{
		ID:           uuid.NewString(),
		BrokerID:     u.brokerID,
		Email:        email,
		PasswordHash: string(hash),
		Name:         req.Name,
		Role:         role,
		Status:       "active",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := u.users.Create(ctx, user); err != nil {
		return nil, err
	}

	u.log.Info().Str("user_id", user.ID).Str("rol", user.Role).Msg("usuario registrado")
	return u.issueToken(user)
}

// Login valida credenciales y emite un token.
// Email desconocido y contraseña incorrecta responden igual: no se filtra
// cuál de los dos falló.
func (u *UseCase) Login(ctx context.Context, req dto.LoginRequest) (*dto.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "buscar usuario", Err: err}
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if user.Status != "active" {
		return nil, domain.ErrForbidden
	}
	return u.issueToken(user)
}

func (u *UseCase) issueToken(user *entity.User) (*dto.AuthResponse, error) {
	token, err := jwt.Generate(u.jwtCfg.Secret, user.ID, user.BrokerID, user.Role, u.jwtCfg.Issuer, u.jwtCfg.Expiration)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{
		Token: token,
		User: dto.UserResponse{
			ID:       user.ID,
			Email:    user.Email,
			Name:     user.Name,
			Role:     user.Role,
			BrokerID: user.BrokerID,
		},
	}, nil
}
