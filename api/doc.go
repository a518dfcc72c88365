// Package api defines the wire types of the FrameLens HTTP API.
//
// # API Overview
//
// FrameLens exposes three analysis endpoints under /api/gemini:
//   - POST /api/gemini/batch-images  one frame, many agents, per-agent outcomes
//   - POST /api/gemini/images        one frame, one prompt
//   - POST /api/gemini/text          flat prompt or structured conversation
//
// plus /health, /healthz, /ready and /version. Prometheus metrics are served
// on a separate port at /metrics.
//
// # Envelope
//
// Every response uses the same envelope:
//
//	{"success": true,  "data": ...}
//	{"success": false, "error": "message", "code": "VALIDATION_ERROR"}
//
// # Base URL
//
// The default base URL for the API is:
//
//	http://localhost:8080
package api
