/*
Package observability exports flow resolutions as Prometheus metrics.

Metrics.Hooks returns lifecycle hooks to pass to machi.WithLifecycleHooks;
callers that see resolution errors report them with ObserveError.
*/
package observability
