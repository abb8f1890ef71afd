package contracts

import "github.com/julienschmidt/httprouter"

type Handler interface {
	RegisterRoutes(*httprouter.Router)
}

// Worker is a background job owned by a service process. Stop must block
// until any in-flight run has finished.
type Worker interface {
	Start()
	Stop()
}
