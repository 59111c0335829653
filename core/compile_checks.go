package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ Registry         = (*ProviderRegistry)(nil)
	_ BrokerStateStore = (*MemoryBrokerStateStore)(nil)
	_ MetricsRecorder  = NopMetricsRecorder{}
	_ CredentialCodec  = JSONCredentialCodec{}
	_ RequestInjector  = BearerTokenInjector{}
	_ RotationLocker   = (*MemoryRotationLocker)(nil)
	_ BackoffScheduler = (*ExponentialBackoffScheduler)(nil)

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
