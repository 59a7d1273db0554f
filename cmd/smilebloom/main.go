package main

import (
	"context"

	"github.com/dalemusser/waffle/app"

	"github.com/dalemusser/smilebloom/internal/app/bootstrap"
)

func main() {
	app.Run(context.Background(), bootstrap.Hooks)
}
