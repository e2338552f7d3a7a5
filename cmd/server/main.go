// Command server runs the user store HTTP and GraphQL API
package main

import (
	"go.uber.org/fx"

	"github.com/jrjohn/outreach-api/internal/di"
)

func main() {
	fx.New(di.Server).Run()
}
