// Command demo runs a small items API showing typed binding, defaults,
// and the generated documentation endpoints.
//
// Run:
//
//	go run ./cmd/demo
//
// Then explore:
//
//	GET  http://localhost:8080/openapi.json
//	GET  http://localhost:8080/docs
//	GET  http://localhost:8080/items/
//	POST http://localhost:8080/items/
//
// Pass -spec to print the OpenAPI document to stdout and exit.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"

	"github.com/nhumrich/typeroute"
)

// Item is the demo resource. Description and Tax carry defaults, so only
// Name and Price are required.
type Item struct {
	Name        string  `json:"name"`
	Description string  `json:"description" default:""`
	Price       float64 `json:"price"`
	Tax         float64 `json:"tax" default:"0.0"`
}

type createItemReq struct {
	Body typeroute.Body[Item]
}

type listItemsReq struct {
	Limit int `default:"10"`
}

type getItemReq struct {
	Name string // matches {name} in the pattern
}

type store struct {
	mu    sync.Mutex
	items []Item
}

func (s *store) create(_ context.Context, req *createItemReq) (*Item, error) {
	item := req.Body.Value
	s.mu.Lock()
	s.items = append(s.items, item)
	s.mu.Unlock()
	return &item, nil
}

func (s *store) list(_ context.Context, req *listItemsReq) (*[]Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := min(req.Limit, len(s.items))
	out := append([]Item(nil), s.items[:n]...)
	return &out, nil
}

func (s *store) get(_ context.Context, req *getItemReq) (*Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, item := range s.items {
		if item.Name == req.Name {
			return &item, nil
		}
	}
	return nil, typeroute.Error(http.StatusNotFound, "item not found")
}

func main() {
	specOnly := flag.Bool("spec", false, "print the OpenAPI document and exit")
	addr := flag.String("addr", ":8080", "listen address")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	r := typeroute.New(
		typeroute.WithTitle("Items API"),
		typeroute.WithVersion("1.0.0"),
		typeroute.WithLogger(logger),
	)

	s := &store{}
	typeroute.Post(r, "/items/", s.create, typeroute.WithTags("items"), typeroute.WithSummary("Create an item"))
	typeroute.Get(r, "/items/", s.list, typeroute.WithTags("items"), typeroute.WithSummary("List items"))
	typeroute.Get(r, "/items/{name}", s.get, typeroute.WithTags("items"), typeroute.WithSummary("Get an item by name"))

	r.Seal()

	if *specOnly {
		if err := r.WriteSpec(os.Stdout); err != nil {
			logger.Error("write spec", "error", err)
			os.Exit(1)
		}
		return
	}

	r.Use(typeroute.Recovery(), typeroute.RequestID(), typeroute.Logger(logger), r.Docs())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("listening", "addr", *addr)
	if err := r.ListenAndServe(ctx, *addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server", "error", err)
		os.Exit(1)
	}
}
