package main

import (
	"context"

	"github.com/Ayu-zh/placement-connector/internal/cli"
)

func main() {
	cli.Execute(context.Background())
}
