package web

import (
	"errors"
	"html/template"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/net/html"

	"github.com/oakwood-commons/unpack/internal/dom"
	"github.com/oakwood-commons/unpack/internal/jsonvalue"
	"github.com/oakwood-commons/unpack/pkg/core"
	"github.com/oakwood-commons/unpack/pkg/settings"
)

// Container ids of the two views.
const (
	PrettyContainerID = "unpack-parsed-input"
	SchemaContainerID = "unpack-rough-schema"
)

// RenderResponse is the body of a successful render.
type RenderResponse struct {
	OK      bool     `json:"ok"`
	Pretty  string   `json:"pretty"`
	Schema  string   `json:"schema"`
	Renames []string `json:"renames"`
}

// ErrorBody locates a parse failure in the posted text.
type ErrorBody struct {
	Message string `json:"message"`
	Offset  int64  `json:"offset"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
}

// ErrorResponse is the body of a failed render. Repaired holds a repaired
// version of the input when one could be produced; it is never rendered.
type ErrorResponse struct {
	OK       bool      `json:"ok"`
	Error    ErrorBody `json:"error"`
	Repaired string    `json:"repaired,omitempty"`
}

type pageData struct {
	Title          string
	Input          string
	Pretty         template.HTML
	Schema         template.HTML
	About          template.HTML
	HighlightClass string
	Version        string
}

// views holds both rendered trees with their cross-highlighter.
type views struct {
	pretty, schema *html.Node
	highlighter    *dom.Highlighter
}

func (s *Server) buildViews(res *core.Result, highlight string) views {
	v := views{
		pretty: dom.Build(res.Pretty, PrettyContainerID),
		schema: dom.Build(res.Schema, SchemaContainerID),
	}
	v.highlighter = dom.NewHighlighter(res.Registry, v.pretty, v.schema, s.cfg.Render.HighlightClass)
	if highlight != "" {
		if id, ok := v.highlighter.Lookup(highlight); ok {
			v.highlighter.Enter(dom.Pretty, id)
		}
	}
	return v
}

// Index serves the page with the demo payload rendered. ?highlight=<class>
// pre-highlights one path in both views.
func (s *Server) Index(c *gin.Context) {
	res, err := s.engine.Unpack(s.demo)
	if err != nil {
		_ = c.Error(err)
		c.String(http.StatusInternalServerError, "demo payload: %v", err)
		return
	}
	v := s.buildViews(res, c.Query("highlight"))
	prettyHTML, err := dom.Render(v.pretty)
	if err != nil {
		_ = c.Error(err)
		c.Status(http.StatusInternalServerError)
		return
	}
	schemaHTML, err := dom.Render(v.schema)
	if err != nil {
		_ = c.Error(err)
		c.Status(http.StatusInternalServerError)
		return
	}

	data := pageData{
		Title:          settings.CliBinaryName,
		Input:          s.demo,
		About:          s.about,
		Pretty:         template.HTML(prettyHTML), //nolint:gosec // built from escaped html.Node trees
		Schema:         template.HTML(schemaHTML), //nolint:gosec // built from escaped html.Node trees
		HighlightClass: s.cfg.Render.HighlightClass,
		Version:        settings.CliBinaryName + " " + settings.VersionInformation.BuildVersion,
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := s.page.Execute(c.Writer, data); err != nil {
		_ = c.Error(err)
	}
}

// Render parses the raw request body as JSON and returns both views as
// HTML fragments for the page containers. Optional query parameters:
// expr focuses the document with a CEL expression, highlight pre-highlights
// a path class.
func (s *Server) Render(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"ok": false, "error": gin.H{"message": err.Error()}})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": gin.H{"message": err.Error()}})
		return
	}

	doc, err := s.engine.Parse(string(body))
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, s.parseFailure(c, string(body), err))
		return
	}
	if expr := c.Query("expr"); expr != "" {
		doc, err = s.engine.Focus(expr, doc)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": gin.H{"message": err.Error()}})
			return
		}
	}

	res := s.engine.Build(doc)
	v := s.buildViews(res, c.Query("highlight"))
	prettyHTML, err := dom.RenderChildren(v.pretty)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": gin.H{"message": "render failed"}})
		return
	}
	schemaHTML, err := dom.RenderChildren(v.schema)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": gin.H{"message": "render failed"}})
		return
	}
	c.JSON(http.StatusOK, RenderResponse{
		OK:      true,
		Pretty:  prettyHTML,
		Schema:  schemaHTML,
		Renames: res.Renames.Keys(),
	})
}

func (s *Server) parseFailure(c *gin.Context, text string, err error) ErrorResponse {
	resp := ErrorResponse{Error: ErrorBody{Message: err.Error()}}
	var perr *jsonvalue.ParseError
	if errors.As(err, &perr) {
		resp.Error.Offset = perr.Offset
		resp.Error.Line = perr.Line
		resp.Error.Column = perr.Column
	}
	if !errors.Is(err, jsonvalue.ErrEmptyInput) {
		if fixed, rerr := jsonvalue.Repair(text); rerr == nil {
			resp.Repaired = fixed
		} else {
			requestLog(c).V(1).Info("repair failed", "error", rerr.Error())
		}
	}
	return resp
}

// Health reports liveness.
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": settings.VersionInformation.BuildVersion})
}
