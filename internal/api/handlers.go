package api

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/odatascope/odatascope/internal/metadata"
	"github.com/odatascope/odatascope/internal/search"
)

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, s.store.Snapshot())
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	ct := r.Header.Get("Content-Type")

	var xmlText string
	if strings.HasPrefix(ct, "application/json") {
		var req LoadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			s.errorResponse(w, http.StatusBadRequest, "invalid request body")
			return
		}
		source := req.URL
		if source == "" {
			source = req.Path
		}
		if source == "" {
			s.errorResponse(w, http.StatusBadRequest, "url or path required")
			return
		}
		text, err := s.fetcher.Acquire(r.Context(), source)
		if err != nil {
			s.store.PublishError(err.Error())
			s.errorResponse(w, http.StatusBadGateway, err.Error())
			return
		}
		xmlText = text
	} else {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, "reading request body")
			return
		}
		xmlText = string(data)
	}

	if err := s.store.Load(xmlText); err != nil {
		s.errorResponse(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	md := s.store.Metadata()
	s.jsonResponse(w, http.StatusOK, LoadResponse{
		Version:          md.Version,
		EntityCount:      len(md.AllEntities),
		ComplexTypeCount: len(md.AllComplexTypes),
		EnumTypeCount:    len(md.AllEnumTypes),
	})
}

func (s *Server) handleListEntities(w http.ResponseWriter, r *http.Request) {
	md := s.store.Metadata()
	if md == nil {
		s.errorResponse(w, http.StatusNotFound, "no metadata loaded")
		return
	}

	query := r.URL.Query().Get("q")
	filtered := search.Filter(md, query)
	groups := search.GroupByNamespace(filtered)

	resp := EntityListResponse{
		Query:      query,
		Total:      len(filtered),
		Namespaces: search.SortedNamespaces(groups),
		Groups:     make(map[string][]EntitySummary, len(groups)),
	}
	for ns, entities := range groups {
		rows := make([]EntitySummary, 0, len(entities))
		for _, e := range entities {
			rows = append(rows, EntitySummary{
				Name:            e.Name,
				Namespace:       e.Namespace,
				FullName:        e.FullName,
				PropertyCount:   len(e.Properties),
				NavigationCount: len(e.NavigationProperties),
				MatchHint:       search.MatchHint(e, query),
			})
		}
		resp.Groups[ns] = rows
	}

	s.jsonResponse(w, http.StatusOK, resp)
}

func (s *Server) handleGetEntity(w http.ResponseWriter, r *http.Request) {
	md := s.store.Metadata()
	if md == nil {
		s.errorResponse(w, http.StatusNotFound, "no metadata loaded")
		return
	}

	name := r.PathValue("name")
	e := md.EntityByName(name)
	if e == nil {
		s.errorResponse(w, http.StatusNotFound, "entity not found: "+name)
		return
	}
	s.jsonResponse(w, http.StatusOK, e)
}

func (s *Server) handleRelationships(w http.ResponseWriter, r *http.Request) {
	if s.store.Metadata() == nil {
		s.errorResponse(w, http.StatusNotFound, "no metadata loaded")
		return
	}
	rels := s.store.Relationships()
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"count":         len(rels),
		"relationships": rels,
	})
}

func (s *Server) handleDiagram(w http.ResponseWriter, r *http.Request) {
	if s.store.Metadata() == nil {
		s.errorResponse(w, http.StatusNotFound, "no metadata loaded")
		return
	}
	s.jsonResponse(w, http.StatusOK, s.store.DiagramGraph())
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	e, ok := s.decodeEntityRef(w, r)
	if !ok {
		return
	}
	s.store.SelectEntity(e)
	s.jsonResponse(w, http.StatusOK, s.store.Snapshot())
}

func (s *Server) handleDiagramRoot(w http.ResponseWriter, r *http.Request) {
	e, ok := s.decodeEntityRef(w, r)
	if !ok {
		return
	}
	s.store.StartDiagramFrom(e)
	s.jsonResponse(w, http.StatusOK, s.store.Snapshot())
}

func (s *Server) handleDiagramToggle(w http.ResponseWriter, r *http.Request) {
	var req ToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Node == "" {
		s.errorResponse(w, http.StatusBadRequest, "node required")
		return
	}
	s.store.ToggleDiagramNode(req.Node)
	s.jsonResponse(w, http.StatusOK, s.store.Snapshot())
}

func (s *Server) handleDiagramReset(w http.ResponseWriter, r *http.Request) {
	s.store.ResetDiagram()
	s.jsonResponse(w, http.StatusOK, s.store.Snapshot())
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req NavigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch req.Action {
	case "into":
		if req.Property == "" || req.Type == "" {
			s.errorResponse(w, http.StatusBadRequest, "property and type required")
			return
		}
		s.store.NavigateInto(req.Property, req.Type)
	case "back":
		s.store.NavigateBack()
	case "index":
		s.store.NavigateToIndex(req.Index)
	default:
		s.errorResponse(w, http.StatusBadRequest, "unknown action: "+req.Action)
		return
	}

	s.jsonResponse(w, http.StatusOK, s.store.Snapshot())
}

// decodeEntityRef reads a SelectRequest and resolves the named entity.
// It writes the error response itself when resolution fails.
func (s *Server) decodeEntityRef(w http.ResponseWriter, r *http.Request) (*metadata.Entity, bool) {
	var req SelectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}

	md := s.store.Metadata()
	if md == nil {
		s.errorResponse(w, http.StatusNotFound, "no metadata loaded")
		return nil, false
	}

	e := md.EntityByName(req.Entity)
	if e == nil {
		s.errorResponse(w, http.StatusNotFound, "entity not found: "+req.Entity)
		return nil, false
	}
	return e, true
}
