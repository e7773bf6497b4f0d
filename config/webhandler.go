package config

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"

	"gopkg.in/yaml.v3"
)

// StripSummary describes a strip section as the control loop will see it.
type StripSummary struct {
	Leds      int  `json:"leds"`
	Width     int  `json:"width"`
	Height    int  `json:"height"`
	Colors    int  `json:"colors"`
	Defaults  bool `json:"defaults"`
	Animation bool `json:"animation"`
}

// Summarize decodes the descriptors. It fails like Validate does on a
// broken strip section.
func (c StripConfig) Summarize() (StripSummary, error) {
	if errs := c.validate(); len(errs) > 0 {
		return StripSummary{}, errors.Join(errs...)
	}
	state, err := c.Layout()
	if err != nil {
		return StripSummary{}, err
	}
	geo := state.Geometry()
	return StripSummary{
		Leds:      state.Count(),
		Width:     geo.Width,
		Height:    geo.Height,
		Colors:    len(c.Colors),
		Defaults:  len(c.Leds) == 0,
		Animation: c.Animation,
	}, nil
}

// UpdateResult answers a POST. Errors lists every problem found, one
// entry per descriptor or setting.
type UpdateResult struct {
	Strip  *StripSummary `json:"strip,omitempty"`
	Errors []string      `json:"errors,omitempty"`
}

// ConfigHandler serves GET and POST for /api/config. A successful POST
// rewrites cfile, which the file watcher turns into a reload.
func ConfigHandler(cfile string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			getRuntimeConfig(w, cfile)
		case http.MethodPost:
			postRuntimeConfig(w, r, cfile)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

func getRuntimeConfig(w http.ResponseWriter, cfile string) {
	// read on every request so edits made on disk are visible
	conf, err := ReadConfig(cfile)
	if err != nil {
		slog.Error("Failed to read config file for API", "file", cfile, "error", err)
		http.Error(w, "Failed to read configuration", http.StatusInternalServerError)
		return
	}
	respond(w, http.StatusOK, conf.Runtime())
}

func postRuntimeConfig(w http.ResponseWriter, r *http.Request, cfile string) {
	defer r.Body.Close()

	var update RuntimeConfig
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		slog.Warn("Rejected config update", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	// the strip section is checked on its own first, so the answer names
	// the broken descriptors rather than the whole file
	if errs := update.Strip.validate(); len(errs) > 0 {
		slog.Warn("Rejected strip descriptors", "problems", len(errs), "error", errors.Join(errs...))
		respond(w, http.StatusBadRequest, UpdateResult{Errors: errorTexts(errs)})
		return
	}
	summary, err := update.Strip.Summarize()
	if err != nil {
		respond(w, http.StatusBadRequest, UpdateResult{Errors: []string{err.Error()}})
		return
	}

	conf, err := ReadConfig(cfile)
	if err != nil {
		slog.Error("Failed to read existing config for update", "file", cfile, "error", err)
		http.Error(w, "Failed to read configuration", http.StatusInternalServerError)
		return
	}
	conf.Merge(update)
	if err := conf.Validate(); err != nil {
		slog.Error("Merged config does not validate", "error", err)
		respond(w, http.StatusBadRequest, UpdateResult{Errors: []string{err.Error()}})
		return
	}

	data, err := yaml.Marshal(conf)
	if err != nil {
		slog.Error("Failed to marshal merged config", "error", err)
		http.Error(w, "Failed to prepare configuration for saving", http.StatusInternalServerError)
		return
	}
	if err := os.WriteFile(cfile, data, 0o644); err != nil {
		slog.Error("Failed to write config file", "file", cfile, "error", err)
		http.Error(w, "Failed to save configuration", http.StatusInternalServerError)
		return
	}

	slog.Info("Strip configuration saved", "leds", summary.Leds, "width", summary.Width, "height", summary.Height, "colors", summary.Colors)
	respond(w, http.StatusOK, UpdateResult{Strip: &summary})
}

func errorTexts(errs []error) []string {
	texts := make([]string, 0, len(errs))
	for _, err := range errs {
		texts = append(texts, err.Error())
	}
	return texts
}

func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode config response", "error", err)
	}
}
