package main

import (
	"github.com/pescuma/thanks/lib/server"
)

type ServeCmd struct {
	Port uint `default:"2427" env:"PORT" help:"Port to listen to."`
}

func (c *ServeCmd) Run(ctx *context) error {
	return ctx.ws.Serve(&server.Options{
		Port: c.Port,
	})
}
