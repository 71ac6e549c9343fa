// Package metric provides Prometheus-based metrics collection for
// transitsim observability.
//
// The package offers a registry managing the core simulation metrics
// (broker queue depth and delivery counters, agent cycles and errors,
// passenger movements) plus an HTTP server exposing them in Prometheus
// format.
//
// # Basic usage
//
//	registry := metric.NewRegistry()
//	server := metric.NewServer(":9090", "/metrics", registry)
//	go func() {
//	    if err := server.Start(); err != nil && err != http.ErrServerClosed {
//	        slog.Error("metrics server error", "error", err)
//	    }
//	}()
//
//	sim := registry.Sim()
//	sim.RecordAgentCycle("bus")
//	sim.RecordPublished("bus_arrival")
//
// All SimMetrics record methods are nil-receiver safe so components can
// run without metrics wired (the registry is optional everywhere).
package metric
