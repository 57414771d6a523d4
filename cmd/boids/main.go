package main

import "github.com/lao-tseu-is-alive/go-boids-flock/internal/cli"

func main() {
	cli.Execute()
}
