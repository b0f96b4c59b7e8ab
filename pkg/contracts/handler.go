package contracts

import "github.com/julienschmidt/httprouter"

// Handler mounts a group of routes. The application gives each group its own
// router and middleware chain.
type Handler interface {
	RegisterRoutes(*httprouter.Router)
}

// RoutesFunc adapts a plain function to Handler.
type RoutesFunc func(router *httprouter.Router)

func (f RoutesFunc) RegisterRoutes(router *httprouter.Router) {
	f(router)
}
