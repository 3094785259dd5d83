package ioc

import "github.com/google/wire"

// CollectorSet provides everything needed to poll devices
var CollectorSet = wire.NewSet(
	InitConfig,
	InitLogger,
	InitPrometheusRegistry,
	InitMetrics,
	InitUsername,
	InitSecrets,
	InitProfiles,
	InitRegistry,
	InitPreflight,
	InitCollector,
	InitRepository,
	InitGraphWriter,
)

// ServeSet adds the long-lived serve mode components
var ServeSet = wire.NewSet(
	CollectorSet,
	InitHub,
	InitSnapshotService,
	InitScheduler,
	InitWatcher,
	InitSnapshotHandler,
	InitGinEngine,
)
