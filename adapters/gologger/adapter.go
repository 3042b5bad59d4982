package gologger

import (
	job "github.com/goliatone/go-job"
	glog "github.com/goliatone/go-logger/glog"
)

// Logger names handed to the provider.
const (
	ServiceLoggerName = "neo"
	InboundLoggerName = "neo.inbound"
	JobsLoggerName    = "neo.jobs"
)

// ServiceLoggers are the named loggers used by the NEO service, including
// the go-job bridge for queued trigger commands.
type ServiceLoggers struct {
	Provider    glog.LoggerProvider
	Service     glog.Logger
	Inbound     glog.Logger
	JobProvider job.LoggerProvider
	Jobs        job.Logger
}

// Resolve picks the provider logger first, then the direct logger, then a
// nop logger. The name is the logger name handed to the provider.
func Resolve(name string, provider glog.LoggerProvider, logger glog.Logger) (glog.LoggerProvider, glog.Logger) {
	return glog.Resolve(name, provider, logger)
}

// ResolveServiceLoggers resolves every logger the service needs. The result
// is never nil for any member.
func ResolveServiceLoggers(provider glog.LoggerProvider, logger glog.Logger) ServiceLoggers {
	resolvedProvider, service := Resolve(ServiceLoggerName, provider, logger)
	out := ServiceLoggers{
		Provider: resolvedProvider,
		Service:  glog.Ensure(service),
		Inbound:  glog.Ensure(service),
	}
	if resolvedProvider != nil {
		out.Inbound = glog.Ensure(resolvedProvider.GetLogger(InboundLoggerName))
		out.JobProvider = ToJobProvider(resolvedProvider)
		out.Jobs = ToJobLogger(glog.Ensure(resolvedProvider.GetLogger(JobsLoggerName)))
	} else {
		out.Jobs = ToJobLogger(out.Service)
	}
	return out
}

// ToJobProvider exposes the trigger logger to go-job workers that run
// queued activate/deactivate commands.
func ToJobProvider(provider glog.LoggerProvider) job.LoggerProvider {
	if provider == nil {
		return nil
	}
	return job.GoLoggerProvider(provider)
}

func ToJobLogger(logger glog.Logger) job.Logger {
	if logger == nil {
		return nil
	}
	return job.GoLogger(logger)
}

// ResolveForJob resolves the glog pair and returns the go-job bridges
// alongside it.
func ResolveForJob(
	name string,
	provider glog.LoggerProvider,
	logger glog.Logger,
) (glog.LoggerProvider, glog.Logger, job.LoggerProvider, job.Logger) {
	resolvedProvider, resolvedLogger := Resolve(name, provider, logger)
	return resolvedProvider, resolvedLogger, ToJobProvider(resolvedProvider), ToJobLogger(resolvedLogger)
}
