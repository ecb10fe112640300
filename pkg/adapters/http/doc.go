/*
Package http exposes machi sessions over HTTP.

	POST   /sessions/{id}         start a session, body {"context": {...}}
	GET    /sessions/{id}         current state
	PATCH  /sessions/{id}         merge context and resolve, body {"context": {...}, "current": "..."}
	POST   /sessions/{id}/rewind  body {"entry": "..."}
	DELETE /sessions/{id}
	GET    /sessions/{id}/events  server-sent state diffs
	GET    /sessions              session ids
	GET    /graph                 Mermaid chart (?theme=dark|light&direction=vertical|horizontal)
	GET    /pathways/{name}       Mermaid chart of the routes to name
	GET    /metrics               Prometheus metrics, when a gatherer is configured
*/
package http
