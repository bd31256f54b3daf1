package server

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/pescuma/thanks/lib/consoles"
	"github.com/pescuma/thanks/lib/reports"
	"github.com/pescuma/thanks/lib/storages"
)

type Options struct {
	Port uint
}

func Run(console consoles.Console, storage storages.Storage, opts *Options) error {
	s := newServer(console, storage, opts)

	console.Printf("Starting server on port %v...\n", s.opts.Port)

	return s.router().Run(fmt.Sprintf(":%v", s.opts.Port))
}

type server struct {
	opts    *Options
	console consoles.Console
	storage storages.Storage
	reports *reports.Reporter
}

func newServer(console consoles.Console, storage storages.Storage, opts *Options) *server {
	if opts == nil {
		opts = &Options{}
	}
	if opts.Port == 0 {
		opts.Port = 2427
	}

	return &server{
		opts:    opts,
		console: console,
		storage: storage,
		reports: reports.NewReporter(storage),
	}
}

func init() {
	gin.SetMode(gin.ReleaseMode)
}

func (s *server) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.LoggerWithWriter(consoles.Logger(s.console).Writer()), gin.Recovery())

	api := r.Group("/api", s.maintenance)

	s.initProjects(api)

	return r
}
