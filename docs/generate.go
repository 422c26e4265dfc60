// Package docs holds the Swagger document generated from the handler
// annotations. Run `go generate ./docs` to produce docs.go.
package docs

//go:generate go run github.com/swaggo/swag/cmd/swag@v1.16.6 init -g cmd/server/main.go -d .. -o . --outputTypes go
