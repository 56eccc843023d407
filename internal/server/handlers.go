package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/raaihank/spell-sentinel/internal/change"
	"github.com/raaihank/spell-sentinel/internal/diff"
	"github.com/raaihank/spell-sentinel/internal/websocket"
	"go.uber.org/zap"
)

const (
	errRateLimited      = "Rate limit exceeded. Please try again later."
	errInvalidJSON      = "Invalid JSON data"
	errMissingText      = "Missing 'text' field in request"
	errTextNotString    = "Text must be a string"
	errMissingDiffInput = "Missing 'original' or 'corrected' field in request"
	errDiffNotString    = "Original and corrected must be strings"
	errNotFound         = "Endpoint not found"
	errMethodNotAllowed = "Method not allowed"
	errInternal         = "An error occurred while processing your request. Please try again."
)

// correctResponse is the body of a successful /api/correct call
type correctResponse struct {
	Original     string          `json:"original"`
	SpellVersion string          `json:"spell_version"`
	Corrected    string          `json:"corrected"`
	Changes      []change.Change `json:"changes"`
	Diff         diff.Result     `json:"diff"`
	DiffHTML     string          `json:"diff_html"`
	Cached       bool            `json:"cached"`
}

// diffResponse is the body of a successful /api/diff call
type diffResponse struct {
	Mode     diff.Mode   `json:"mode"`
	Diff     diff.Result `json:"diff"`
	DiffHTML string      `json:"diff_html"`
}

// handleCorrect corrects the submitted text
func (s *Server) handleCorrect(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	st := s.settings.Load()
	requestID := getRequestID(r.Context())
	log := s.logger.WithRequestID(requestID)

	payload, status, msg := decodeObject(w, r, st.maxTextLength)
	if status != 0 {
		writeError(w, status, msg)
		return
	}

	raw, ok := payload["text"]
	if !ok {
		writeError(w, http.StatusBadRequest, errMissingText)
		return
	}
	text, ok := raw.(string)
	if !ok {
		writeError(w, http.StatusBadRequest, errTextNotString)
		return
	}

	opts := st.defaults
	for _, f := range []struct {
		name   string
		target *bool
	}{
		{"spell_check", &opts.SpellCheck},
		{"grammar_check", &opts.GrammarCheck},
	} {
		field, target := f.name, f.target
		v, present := payload[field]
		if !present {
			continue
		}
		b, ok := v.(bool)
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Field '%s' must be a boolean", field))
			return
		}
		*target = b
	}

	if utf8.RuneCountInString(text) > st.maxTextLength {
		writeError(w, http.StatusRequestEntityTooLarge, textTooLong(st.maxTextLength))
		return
	}

	if strings.TrimSpace(text) == "" {
		identical := diff.Result{Identical: true}
		writeJSON(w, http.StatusOK, correctResponse{
			Original:     text,
			SpellVersion: text,
			Corrected:    text,
			Changes:      []change.Change{},
			Diff:         identical,
			DiffHTML:     diff.Render(identical),
		})
		return
	}

	result, hit := s.cache.Get(r.Context(), text, opts)
	if !hit {
		result = s.engine.Correct(text, opts)
		s.cache.Store(r.Context(), text, opts, result)
	}

	d := s.engine.Diff(result.Original, result.Corrected)

	writeJSON(w, http.StatusOK, correctResponse{
		Original:     result.Original,
		SpellVersion: result.SpellCorrected,
		Corrected:    result.Corrected,
		Changes:      result.Changes,
		Diff:         d,
		DiffHTML:     diff.Render(d),
		Cached:       hit,
	})

	spelling, grammar := change.Count(result.Changes)
	duration := time.Since(start)
	log.Info("Text corrected",
		zap.Int("input_length", utf8.RuneCountInString(text)),
		zap.Bool("spell_check", opts.SpellCheck),
		zap.Bool("grammar_check", opts.GrammarCheck),
		zap.Int("spelling_changes", spelling),
		zap.Int("grammar_changes", grammar),
		zap.Bool("cache_hit", hit),
		zap.Duration("duration", duration),
	)

	s.wsHub.BroadcastCorrection(websocket.CorrectionEvent{
		RequestID:       requestID,
		ClientIP:        getClientIP(r),
		SpellCheck:      opts.SpellCheck,
		GrammarCheck:    opts.GrammarCheck,
		InputLength:     utf8.RuneCountInString(text),
		SpellingChanges: spelling,
		GrammarChanges:  grammar,
		CacheHit:        hit,
		ProcessingMS:    float64(duration.Microseconds()) / 1000,
	})
}

// handleDiff diffs two caller-supplied texts
func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	st := s.settings.Load()

	payload, status, msg := decodeObject(w, r, 2*st.maxTextLength)
	if status != 0 {
		writeError(w, status, msg)
		return
	}

	rawOriginal, okOriginal := payload["original"]
	rawCorrected, okCorrected := payload["corrected"]
	if !okOriginal || !okCorrected {
		writeError(w, http.StatusBadRequest, errMissingDiffInput)
		return
	}
	original, okOriginal := rawOriginal.(string)
	corrected, okCorrected := rawCorrected.(string)
	if !okOriginal || !okCorrected {
		writeError(w, http.StatusBadRequest, errDiffNotString)
		return
	}

	if utf8.RuneCountInString(original) > st.maxTextLength || utf8.RuneCountInString(corrected) > st.maxTextLength {
		writeError(w, http.StatusRequestEntityTooLarge, textTooLong(st.maxTextLength))
		return
	}

	mode := s.engine.DiffMode()
	if rawMode, present := payload["mode"]; present {
		name, ok := rawMode.(string)
		if !ok {
			writeError(w, http.StatusBadRequest, "Field 'mode' must be a string")
			return
		}
		parsed, err := diff.ParseMode(name)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		mode = parsed
	}

	d := diff.Compute(original, corrected, mode)
	writeJSON(w, http.StatusOK, diffResponse{
		Mode:     mode,
		Diff:     d,
		DiffHTML: diff.Render(d),
	})
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.startedAt).Round(time.Second).String(),
	})
}

// handleInfo reports the engine tables, limits and runtime counters
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	st := s.settings.Load()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"name":            "spell-sentinel",
		"version":         Version,
		"spell_check":     st.defaults.SpellCheck,
		"grammar_check":   st.defaults.GrammarCheck,
		"diff_mode":       s.engine.DiffMode(),
		"max_text_length": st.maxTextLength,
		"dictionary_size": s.engine.DictionarySize(),
		"grammar_rules":   s.engine.RuleNames(),
		"rate_limit": map[string]interface{}{
			"enabled":        s.config.Limits.RateLimit.Enabled,
			"requests":       s.config.Limits.RateLimit.Requests,
			"window_seconds": s.config.Limits.RateLimit.Window.Seconds(),
			"clients":        s.limiter.Clients(),
		},
		"cache": map[string]interface{}{
			"enabled": s.cache != nil,
			"stats":   s.cache.Counters(),
		},
		"websocket": s.wsHub.GetStats(),
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, errNotFound)
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, errMethodNotAllowed)
}

// decodeObject reads a JSON request body. A non-zero status means the body
// was rejected with the accompanying message. Non-object bodies decode to
// an empty map so field checks report them.
func decodeObject(w http.ResponseWriter, r *http.Request, maxChars int) (map[string]interface{}, int, string) {
	// Worst case every character is escaped as \uXXXX
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxChars)*12+4096)

	var body interface{}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, http.StatusRequestEntityTooLarge, textTooLong(maxChars)
		}
		return nil, http.StatusBadRequest, errInvalidJSON
	}

	obj, ok := body.(map[string]interface{})
	if !ok {
		return map[string]interface{}{}, 0, ""
	}
	return obj, 0, ""
}

func textTooLong(max int) string {
	return fmt.Sprintf("Text too long. Maximum %d characters allowed.", max)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
