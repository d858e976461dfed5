package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/tribunsys/internal/application/dto"
	"github.com/tu-usuario/tribunsys/internal/domain"
	"github.com/tu-usuario/tribunsys/internal/domain/entity"
	"github.com/tu-usuario/tribunsys/pkg/config"
	"github.com/tu-usuario/tribunsys/pkg/jwt"
	"github.com/tu-usuario/tribunsys/pkg/logger"
)

type userRepoFake struct {
	byEmail map[string]*entity.User
}

func (r *userRepoFake) Create(_ context.Context, u *entity.User) error {
	if _, ok := r.byEmail[u.Email]; ok {
		return domain.ErrEmailAlreadyExists
	}
	cp := *u
	r.byEmail[u.Email] = &cp
	return nil
}

func (r *userRepoFake) GetByID(_ context.Context, id string) (*entity.User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *userRepoFake) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func newTestUseCase() (*UseCase, *userRepoFake) {
	repo := &userRepoFake{byEmail: map[string]*entity.User{}}
	cfg := config.JWTConfig{Secret: "secreto-de-prueba", Expiration: 60, Issuer: "tribunsys"}
	return NewUseCase(repo, cfg, "corredor-1", logger.Nop()), repo
}

func validRegister() dto.RegisterRequest {
	return dto.RegisterRequest{
		Email:    "Ana@Ejemplo.cl",
		Password: "contraseña-larga",
		Name:     "Ana Rojas",
		Role:     entity.RoleAnalistaMercado,
	}
}

func TestRegisterYLogin(t *testing.T) {
	uc, repo := newTestUseCase()
	ctx := context.Background()

	resp, err := uc.Register(ctx, validRegister())
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "ana@ejemplo.cl", resp.User.Email, "El email se normaliza a minúsculas")
	assert.Equal(t, "corredor-1", resp.User.BrokerID)

	stored := repo.byEmail["ana@ejemplo.cl"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "contraseña-larga", stored.PasswordHash, "Nunca se guarda la contraseña en claro")

	// el token lleva los claims de la aplicación
	userID, brokerID, role, err := jwt.Parse("secreto-de-prueba", resp.Token)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, userID)
	assert.Equal(t, "corredor-1", brokerID)
	assert.Equal(t, entity.RoleAnalistaMercado, role)

	login, err := uc.Login(ctx, dto.LoginRequest{Email: "ana@ejemplo.cl", Password: "contraseña-larga"})
	require.NoError(t, err)
	assert.NotEmpty(t, login.Token)
}

func TestRegisterValidaciones(t *testing.T) {
	uc, _ := newTestUseCase()
	ctx := context.Background()
	var ve *domain.ValidationError

	req := validRegister()
	req.Email = "sin-arroba"
	_, err := uc.Register(ctx, req)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "email", ve.Field)

	req = validRegister()
	req.Password = "corta"
	_, err = uc.Register(ctx, req)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "password", ve.Field)

	req = validRegister()
	req.Role = "super_usuario"
	_, err = uc.Register(ctx, req)
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "rol", ve.Field)
}

func TestRegisterRolPorDefecto(t *testing.T) {
	uc, _ := newTestUseCase()
	req := validRegister()
	req.Role = ""

	resp, err := uc.Register(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleCliente, resp.User.Role)
}

func TestRegisterEmailDuplicado(t *testing.T) {
	uc, _ := newTestUseCase()
	ctx := context.Background()

	_, err := uc.Register(ctx, validRegister())
	require.NoError(t, err)

	_, err = uc.Register(ctx, validRegister())
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestLoginRechazos(t *testing.T) {
	uc, repo := newTestUseCase()
	ctx := context.Background()

	_, err := uc.Register(ctx, validRegister())
	require.NoError(t, err)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "nadie@ejemplo.cl", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized, "Email desconocido no se distingue de contraseña mala")

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "ana@ejemplo.cl", Password: "incorrecta"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	repo.byEmail["ana@ejemplo.cl"].Status = "suspended"
	_, err = uc.Login(ctx, dto.LoginRequest{Email: "ana@ejemplo.cl", Password: "contraseña-larga"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
