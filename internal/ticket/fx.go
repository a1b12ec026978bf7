package ticket

import (
	"github.com/voltmesh/gridadmin/internal/ticket/repository"
	"github.com/voltmesh/gridadmin/internal/ticket/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ticket.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
