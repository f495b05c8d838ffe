package middleware

import "github.com/aretw0/tablesession/pkg/ports"

// Middleware allows wrapping a DataClient to add behavior.
type Middleware func(ports.DataClient) ports.DataClient

// Chain applies middlewares so that the first one is the outermost.
func Chain(client ports.DataClient, mws ...Middleware) ports.DataClient {
	for i := len(mws) - 1; i >= 0; i-- {
		client = mws[i](client)
	}
	return client
}
