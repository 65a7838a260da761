package main

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"flux/internal/parser"
	"flux/internal/store"
	"flux/internal/stream"
	"flux/internal/transform"
	"flux/internal/util"
)

type server struct {
	store  *store.Store
	logger *slog.Logger
}

func serve(config util.Configuration) error {
	st, err := openStore(config)
	if err != nil {
		return err
	}
	defer st.Close()

	s := &server{store: st, logger: slog.Default()}

	mux := http.NewServeMux()
	mux.Handle("/ws", stream.NewHandler(s.logger, config.Cps))
	mux.HandleFunc("POST /realize", s.handleRealize)
	mux.HandleFunc("GET /presets", s.handleListPresets)
	mux.HandleFunc("POST /presets", s.handleSavePreset)
	mux.HandleFunc("GET /presets/{name}", s.handleGetPreset)
	mux.HandleFunc("DELETE /presets/{name}", s.handleDeletePreset)

	s.logger.Info("listening", "addr", config.ListenAddr)
	return http.ListenAndServe(config.ListenAddr, mux)
}

type realizeRequest struct {
	Program string            `json:"program"`
	Preset  string            `json:"preset,omitempty"`
	NCycles float64           `json:"n_cycles"`
	Env     map[string]string `json:"env,omitempty"`
}

func (s *server) handleRealize(w http.ResponseWriter, r *http.Request) {
	var req realizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	program := req.Program
	if req.Preset != "" {
		p, err := s.store.Get(req.Preset)
		if err != nil {
			httpError(w, http.StatusNotFound, err.Error())
			return
		}
		program = p.Source
	}

	tf, errs := parser.Parse(program)
	if len(errs) != 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{"errors": errs})
		return
	}

	env := transform.Environment{}
	for name, src := range req.Env {
		expr, errs := parser.ParseExpression(src)
		if len(errs) != 0 {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{"errors": errs})
			return
		}
		env[name] = expr
	}

	m := transform.Realize(req.NCycles, env, tf)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"n_cycles": req.NCycles,
		"values":   stream.ResultJSON(m),
	})
}

type presetRequest struct {
	Name   string `json:"name"`
	Source string `json:"source"`
}

func (s *server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	presets, err := s.store.List()
	if err != nil {
		httpError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, presets)
}

func (s *server) handleSavePreset(w http.ResponseWriter, r *http.Request) {
	var req presetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		httpError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := s.store.Save(req.Name, req.Source)
	if err != nil {
		httpError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *server) handleGetPreset(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.Get(r.PathValue("name"))
	if err != nil {
		httpError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *server) handleDeletePreset(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.PathValue("name")); err != nil {
		httpError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func httpError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
