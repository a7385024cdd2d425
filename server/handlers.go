package server

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/darianmavgo/tabconv/converters"
	"github.com/darianmavgo/tabconv/converters/common"
	"github.com/darianmavgo/tabconv/converters/csv"
	"github.com/darianmavgo/tabconv/logging"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, apiResponse{Success: true})
}

func (s *Server) handleListRoutes(w http.ResponseWriter, r *http.Request) {
	var names []string
	for _, route := range converters.Routes() {
		names = append(names, route.Name())
	}
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Routes: names})
}

// handleConvert accepts one multipart file in the "file" field and streams
// back the converted artifact as an attachment.
//
// Optional query parameters: csv_mode (naive|strict), delimiter (one
// character) and detect_delimiter (bool).
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	source, target, ok := strings.Cut(chi.URLParam(r, "conversion"), "-to-")
	if !ok {
		handleNotFound(w, r)
		return
	}
	route, err := converters.LookupRoute(source, target)
	if err != nil {
		handleNotFound(w, r)
		return
	}

	opts, err := parseOptions(r)
	if err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		respondError(w, r, common.Missing("file too large or invalid form"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, common.Missing("no file provided"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, r, fmt.Errorf("failed to read upload: %w", err))
		return
	}

	res, err := s.pipeline.Convert(r.Context(), route, header.Filename, data, opts)
	if err != nil {
		respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Debug("converted",
		"route", route.Name(), "path", res.Path, "bytes", res.Size)
	s.sendFile(w, r, res)
}

func parseOptions(r *http.Request) (*converters.Options, error) {
	q := r.URL.Query()
	opts := &converters.Options{}

	switch mode := q.Get("csv_mode"); mode {
	case "":
	case "naive":
		m := common.CSVNaive
		opts.CSVMode = &m
	case "strict":
		m := common.CSVStrict
		opts.CSVMode = &m
	default:
		return nil, fmt.Errorf("csv_mode must be naive or strict, got %q", mode)
	}

	if d := q.Get("delimiter"); d != "" {
		if d == `\t` {
			d = "\t"
		}
		if utf8.RuneCountInString(d) != 1 {
			return nil, fmt.Errorf("delimiter must be a single character, got %q", d)
		}
		delim, _ := utf8.DecodeRuneInString(d)
		if !csv.ValidDelimiter(delim) {
			return nil, fmt.Errorf("delimiter %q cannot separate CSV fields", d)
		}
		opts.Delimiter = delim
	}

	if v := q.Get("detect_delimiter"); v != "" {
		detect, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("detect_delimiter: %w", err)
		}
		opts.DetectDelim = detect
	}
	return opts, nil
}

func (s *Server) sendFile(w http.ResponseWriter, r *http.Request, res *converters.Result) {
	f, err := os.Open(res.Path)
	if err != nil {
		respondError(w, r, fmt.Errorf("failed to open result: %w", err))
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(res.Size))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, f); err != nil {
		logging.FromContext(r.Context()).Warn("failed to stream result", "path", res.Path, "error", err)
	}
}
