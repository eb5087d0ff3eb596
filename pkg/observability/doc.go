/*
Package observability turns engine lifecycle hooks into logs and metrics.

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)
	hooks := metrics.Hooks().Merge(observability.LogHooks(logger))
	eng, _ := chatflow.New(dir, chatflow.WithLifecycleHooks(hooks))
*/
package observability
