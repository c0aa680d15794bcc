// Package routerhelper adds a thin "mounted prefix" convenience over
// julienschmidt/httprouter, the way the teacher's controllers register
// routes through a RouteGroup instead of the raw router.
package routerhelper

import "github.com/julienschmidt/httprouter"

// RouteGroup registers routes under router with every path prefixed by
// prefix (e.g. "/api"), so controllers can write route paths relative
// to their mount point.
type RouteGroup struct {
	router *httprouter.Router
	prefix string
}

func NewRouteGroup(router *httprouter.Router, prefix string) *RouteGroup {
	return &RouteGroup{router: router, prefix: prefix}
}

func (g *RouteGroup) GET(path string, handle httprouter.Handle) {
	g.router.GET(g.prefix+path, handle)
}

func (g *RouteGroup) POST(path string, handle httprouter.Handle) {
	g.router.POST(g.prefix+path, handle)
}

func (g *RouteGroup) DELETE(path string, handle httprouter.Handle) {
	g.router.DELETE(g.prefix+path, handle)
}
