package strut

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouteTable_AddAndAll(t *testing.T) {
	table := NewRouteTable()
	table.Add(RouteInfo{Method: "GET", Path: "/users", Controller: "UserController", Handler: "List"})
	table.Add(RouteInfo{Method: "POST", Path: "/users", Controller: "UserController", Handler: "Create"})

	all := table.All()
	assert.Len(t, all, 2)

	// All returns a copy, not the live slice
	all[0].Method = "MUTATED"
	assert.Equal(t, "GET", table.All()[0].Method)
}

func TestRouteTable_ByController(t *testing.T) {
	table := NewRouteTable()
	table.Add(RouteInfo{Method: "GET", Path: "/users", Controller: "UserController"})
	table.Add(RouteInfo{Method: "GET", Path: "/posts", Controller: "PostController"})

	assert.Len(t, table.ByController("UserController"), 1)
	assert.Empty(t, table.ByController("Missing"))
}

func TestRouteTable_ByMethod(t *testing.T) {
	table := NewRouteTable()
	table.Add(RouteInfo{Method: "GET", Path: "/users"})
	table.Add(RouteInfo{Method: "GET", Path: "/posts"})
	table.Add(RouteInfo{Method: "POST", Path: "/users"})

	assert.Len(t, table.ByMethod("GET"), 2)
	assert.Len(t, table.ByMethod("POST"), 1)
}
