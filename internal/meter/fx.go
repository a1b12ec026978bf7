package meter

import (
	"github.com/voltmesh/gridadmin/internal/meter/repository"
	"github.com/voltmesh/gridadmin/internal/meter/service"
	"go.uber.org/fx"
)

var Module = fx.Module("meter.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
