package consumer

import (
	"github.com/voltmesh/gridadmin/internal/consumer/repository"
	"github.com/voltmesh/gridadmin/internal/consumer/service"
	"go.uber.org/fx"
)

var Module = fx.Module("consumer.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
