package main

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/formguard/pkg/dom"
	"github.com/dmitrymomot/formguard/pkg/formhttp"
	"github.com/dmitrymomot/formguard/pkg/formspec"
	"github.com/dmitrymomot/formguard/pkg/logger"
	"github.com/dmitrymomot/formguard/pkg/lookup"
	"github.com/dmitrymomot/formguard/pkg/validator"
)

//go:embed assets
var assets embed.FS

// Demo lookup sets and their initial members.
var seeds = map[string][]string{
	"usernames": {"admin", "root", "support", "bob"},
	"countries": {"us", "ca", "gb", "de", "fr", "ua", "jp"},
}

type app struct {
	page    []byte
	def     *formspec.Definition
	lookups *lookup.Registry
	cfg     appConfig
	log     *slog.Logger
	// ctx outlives requests; form lookups are bound to it.
	ctx context.Context
}

func newApp(ctx context.Context, cfg appConfig, log *slog.Logger, sets lookup.Membership) (*app, error) {
	page, err := readAsset(cfg.PagePath, "assets/form.html")
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}
	def, err := loadDefinition(cfg.DefinitionPath)
	if err != nil {
		return nil, err
	}

	reg := lookup.NewRegistry()
	if err := errors.Join(
		reg.RegisterSet("usernames", lookup.KindUnique, sets, "usernames"),
		reg.RegisterSet("countries", lookup.KindKnown, sets, "countries"),
	); err != nil {
		return nil, err
	}

	a := &app{page: page, def: def, lookups: reg, cfg: cfg, log: log, ctx: ctx}

	// Fail at startup rather than on the first visitor.
	_, form, err := a.newForm(ctx)
	if err != nil {
		return nil, err
	}
	form.Close()
	log.Info("form definition loaded",
		slog.Int("fields", len(def.Fields)),
		logger.Fields(fieldKeys(form)...),
	)
	return a, nil
}

// newForm is the session factory: a fresh document and its form.
func (a *app) newForm(context.Context) (*dom.Document, *validator.Form, error) {
	doc, err := dom.Parse(bytes.NewReader(a.page))
	if err != nil {
		return nil, nil, err
	}
	opts := append(a.cfg.Defaults.Options(), a.def.Options()...)
	opts = append(opts,
		validator.WithLogger(a.log),
		validator.WithContext(a.ctx),
	)
	form := validator.New(doc, opts...)
	if err := formspec.Apply(form, a.def, a.lookups); err != nil {
		form.Close()
		return nil, nil, err
	}
	return doc, form, nil
}

func (a *app) routes(svc *formhttp.Service, health func(context.Context) error) http.Handler {
	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/form/", http.StatusFound)
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if health != nil {
			if err := health(r.Context()); err != nil {
				a.log.WarnContext(r.Context(), "health check failed", logger.Error(err))
				http.Error(w, "unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusNoContent)
	})
	r.Mount("/form", svc.Handle())
	return r
}

func loadDefinition(path string) (*formspec.Definition, error) {
	if path == "" {
		return formspec.ParseFS(assets, "assets/form.yaml")
	}
	return formspec.ParseFS(os.DirFS("."), strings.TrimPrefix(path, "./"))
}

func readAsset(path, embedded string) ([]byte, error) {
	if path == "" {
		return fs.ReadFile(assets, embedded)
	}
	return os.ReadFile(path)
}

func fieldKeys(form *validator.Form) []string {
	keys := make([]string, 0, len(form.Fields()))
	for _, f := range form.Fields() {
		keys = append(keys, f.Key())
	}
	return keys
}

// memorySets answers lookups when redis is disabled.
type memorySets struct {
	sets map[string]map[string]struct{}
}

func newMemorySets(seed map[string][]string) *memorySets {
	m := &memorySets{sets: make(map[string]map[string]struct{})}
	for set, members := range seed {
		m.sets[set] = make(map[string]struct{}, len(members))
		for _, v := range members {
			m.sets[set][v] = struct{}{}
		}
	}
	return m
}

func (m *memorySets) Contains(_ context.Context, set, value string) (bool, error) {
	_, ok := m.sets[set][value]
	return ok, nil
}
