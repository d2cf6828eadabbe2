// Command seeduser creates the first administrador, or resets its password.
// Usage: SEED_USERNAME=admin SEED_PASSWORD=... go run ./cmd/seeduser
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"orcamentos/internal/config"
	"orcamentos/internal/dto"
	"orcamentos/internal/infra"
	"orcamentos/internal/model"
	"orcamentos/internal/repository"
	"orcamentos/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	username := envOr("SEED_USERNAME", "admin")
	password := envOr("SEED_PASSWORD", "trocar-esta-senha")

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	ctx := context.Background()
	repo := repository.NewUsuarioRepository(db)
	auth := service.NewAuthService(repo, cfg)

	_, err = auth.CriarUsuario(ctx, dto.CriarUsuarioRequest{
		Username: username,
		Nome:     "Administrador",
		Password: password,
		Rol:      model.RolAdministrador,
	})
	switch {
	case err == nil:
		log.Info().Str("username", username).Msg("usuário criado")
	case errors.Is(err, service.ErrDuplicado):
		if err := redefinir(ctx, repo, username, password); err != nil {
			log.Fatal().Err(err).Msg("failed to reset password")
		}
		log.Info().Str("username", username).Msg("senha redefinida")
	default:
		log.Fatal().Err(err).Msg("failed to create user")
	}
}

// redefinir resets the password of an existing user and reactivates it as
// administrador.
func redefinir(ctx context.Context, repo repository.UsuarioRepository, username, password string) error {
	u, err := repo.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), 12)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	u.Rol = model.RolAdministrador
	u.Ativo = true
	return repo.Update(ctx, u)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
