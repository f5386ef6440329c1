/*
Package httpserver runs the signup API over HTTP.

The server mounts every RouteRegistrar it is given (normally a
signuphandler.Handler and a transactionhandler.Handler sharing one
auth.TokenIssuer) next to the operational endpoints:

  - GET /livez - always 200 while the process serves requests
  - GET /readyz - 200 when ready, 503 while draining
  - GET /drain - mark the server not ready
  - GET /undrain - mark the server ready again
  - /debug/pprof - when EnablePprof is set

All API and health requests are logged through httplogger.LoggingMiddlewareSlog.

# Lifecycle

	tokens := auth.NewTokenIssuer(secret, auth.DefaultTokenTTL)
	srv, err := httpserver.New(cfg,
		signuphandler.NewHandler(store, nil, tokens, log),
		transactionhandler.NewHandler(store, tokens, log),
	)
	if err != nil {
		return err
	}
	srv.RunInBackground()
	<-exit
	srv.Shutdown()

Shutdown drains for DrainDuration before closing listeners, so a load
balancer polling /readyz stops sending traffic first.
*/
package httpserver
