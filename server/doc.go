// Package server provides the HTTP server: a Gin engine served over h2c
// with the fault-handling pipeline already installed.
//
// Handlers report failure by returning an error (Wrap) or by calling
// RespondWithError; the error dispatcher in server/middleware picks the
// status and body. Requests that match no route receive the not-found
// body.
//
//	srv := server.New(cfg, log, server.WithRunner(sup.Go))
//	srv.RegisterDefaultEndpoints("api", sup)
//	srv.GinEngine().POST("/users", server.Wrap(createUser))
//
// # Middleware
//
// Wrapping the whole handler (server/middleware):
//
//   - CORS: origin allow-list with optional credentials
//   - BodySizeLimit: request body cap, answered with 413
//   - RequestLogger: one line per request, level by status
//
// Inside Gin:
//
//   - RequestID: UUID request IDs
//   - ErrorDispatcher: classify, log and answer surfaced errors
//   - Recovery: panics become errors for the dispatcher
//   - NotFound: the unmatched-route body
//
// # Endpoints
//
//   - /: welcome message
//   - /health: 200 while every health checker is up, 503 otherwise
package server
