package services

import (
	"io"
	"log/slog"

	"github.com/escola-viva/secretaria-service/internal/authz"
	"github.com/escola-viva/secretaria-service/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newCaller(accountID uint, roles ...models.RoleName) *authz.Caller {
	return &authz.Caller{
		AccountID: accountID,
		Username:  "11122233344",
		Roles:     roles,
	}
}
