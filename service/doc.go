// Package service exposes the compiler over HTTP.
//
// Endpoints:
//
//	POST /compile  source text in, WAT text out; diagnostics return 422
//	POST /run      JSON {"source": ..., "stdin": ...} in,
//	               JSON {"wat": ..., "output": ...} out
//	GET  /healthz  liveness probe
package service
