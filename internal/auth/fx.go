package auth

import (
	"github.com/voltmesh/gridadmin/internal/config"
	"go.uber.org/fx"
)

// Module wires the JWT verifier from the configured shared secret.
var Module = fx.Module("auth",
	fx.Provide(func(cfg config.Config) *Verifier {
		return NewVerifier(cfg.AuthJWTSecret)
	}),
)
