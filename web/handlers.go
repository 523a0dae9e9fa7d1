package web

import (
	"bytes"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/mogaika/skelanim/anm"
	"github.com/mogaika/skelanim/anm/export"
	"github.com/mogaika/skelanim/morph"
	"github.com/mogaika/skelanim/sink"
	"github.com/mogaika/skelanim/utils"
	"github.com/mogaika/skelanim/webutils"
)

type jSequenceInfo struct {
	Name   string  `json:"name"`
	Codec  string  `json:"codec"`
	Frames int     `json:"frames"`
	Rate   float32 `json:"rate"`
	Length float32 `json:"length"`
}

func (s *State) HandlerJsonSequences(w http.ResponseWriter, r *http.Request) {
	fix, _ := s.current()
	list := make([]jSequenceInfo, len(fix.Sequences))
	for i, seq := range fix.Sequences {
		list[i] = jSequenceInfo{Name: seq.Name, Codec: seq.Codec, Frames: seq.Frames, Rate: seq.Rate, Length: seq.Length}
	}
	webutils.WriteJson(w, list)
}

func (s *State) exportSequence(name string) (*anm.SequenceResult, int, error) {
	fix, skel := s.current()
	fs := fix.FindSequence(name)
	if fs == nil {
		return nil, http.StatusNotFound, errors.Errorf("Sequence %q not found", name)
	}
	seq, err := fs.Sequence()
	if err != nil {
		return nil, http.StatusBadRequest, err
	}
	opts := s.opts
	res, err := export.ExportSequence(seq, skel, &opts)
	if err != nil {
		return nil, http.StatusUnprocessableEntity, err
	}
	return res, http.StatusOK, nil
}

func (s *State) HandlerJsonSequence(w http.ResponseWriter, r *http.Request) {
	res, status, err := s.exportSequence(mux.Vars(r)["name"])
	if err != nil {
		webutils.WriteError(w, err, status)
		return
	}
	webutils.WriteJson(w, sink.SequenceDocument(res))
}

func (s *State) HandlerDumpSequence(w http.ResponseWriter, r *http.Request) {
	res, status, err := s.exportSequence(mux.Vars(r)["name"])
	if err != nil {
		webutils.WriteError(w, err, status)
		return
	}
	webutils.WriteText(w, utils.SDump(res))
}

func (s *State) HandlerJsonMorph(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	fix, _ := s.current()
	buf, _ := fix.MorphBuffers()
	target := fix.FindMorphTarget(name)
	if buf == nil || target == nil {
		webutils.WriteError(w, errors.Errorf("Morph target %q not found", name), http.StatusNotFound)
		return
	}
	var conv morph.Converter
	if s.opts.Converter != nil {
		conv = s.opts.Converter
	}
	res, err := morph.Dequantize(buf, target, conv)
	if err != nil {
		webutils.WriteError(w, err, http.StatusUnprocessableEntity)
		return
	}
	webutils.WriteJson(w, sink.MorphTargetDocument(res))
}

// HandlerExportGltf exports every sequence and morph target into one
// document. ?format=gltf answers with embedded buffers instead of .glb.
func (s *State) HandlerExportGltf(w http.ResponseWriter, r *http.Request) {
	fix, skel := s.current()
	seqs, err := fix.ExportSequences()
	if err != nil {
		webutils.WriteError(w, err, http.StatusBadRequest)
		return
	}

	e := &export.Exporter{Skeleton: skel, Options: s.opts, Workers: s.cfg.Workers}
	g := sink.NewGLTF(skel, s.opts.Converter, s.opts.ASCIINames)
	if _, err := e.ExportSequences(r.Context(), seqs, g); err != nil {
		webutils.WriteError(w, err)
		return
	}
	if buf, targets := fix.MorphBuffers(); buf != nil {
		if _, err := e.ExportMorphTargets(r.Context(), buf, targets, g); err != nil {
			webutils.WriteError(w, err)
			return
		}
	}
	binary := r.URL.Query().Get("format") != "gltf"
	var out bytes.Buffer
	if err := g.Encode(&out, binary); err != nil {
		webutils.WriteError(w, err)
		return
	}
	name := "animations.glb"
	if !binary {
		name = "animations.gltf"
	}
	webutils.WriteFile(w, &out, name)
}
