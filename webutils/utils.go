package webutils

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
)

func WriteFileHeaders(w http.ResponseWriter, name string) {
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", "attachment; filename=\""+name+"\"")
}

func WriteFile(w http.ResponseWriter, in io.Reader, name string) {
	WriteFileHeaders(w, name)
	if _, err := io.Copy(w, in); err != nil {
		log.Warn("Error when writing file", "name", name, "err", err)
	}
}

func WriteJson(w http.ResponseWriter, data interface{}) {
	res, err := json.Marshal(data)
	if err != nil {
		WriteError(w, errors.Wrapf(err, "Failed to marshal"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	WriteResult(w, res)
}

func WriteText(w http.ResponseWriter, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	WriteResult(w, []byte(text))
}

func WriteResult(w http.ResponseWriter, data []byte) {
	if _, err := w.Write(data); err != nil {
		log.Warn("Error when writing response", "err", err)
	}
}

// WriteError answers with a {"error": ...} body and the given status.
func WriteError(w http.ResponseWriter, err error, status ...int) {
	type jError struct {
		Error string `json:"error"`
	}
	code := http.StatusInternalServerError
	if len(status) != 0 {
		code = status[0]
	}
	data, merr := json.Marshal(&jError{Error: err.Error()})
	if merr != nil {
		log.Error("Error marshaling error", "err", err, "marshal", merr)
		return
	}
	log.Debug("HERR", "status", code, "err", err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	WriteResult(w, data)
}
