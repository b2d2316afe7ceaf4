// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes basetag rendering and tag tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/basetag/internal/apperr"
	"github.com/starford/basetag/internal/noteservice"
	"github.com/starford/basetag/internal/settings"
	"github.com/starford/basetag/internal/tagname"
)

const rulesURI = "basetag://tag-display-rules"

// Server wraps the MCP server with basetag tools.
type Server struct {
	mcp      *server.MCPServer
	svc      *noteservice.Service
	settings *settings.Store
}

// New creates a new MCP server with all basetag tools registered.
func New(svc *noteservice.Service, store *settings.Store) *Server {
	s := &Server{svc: svc, settings: store}

	s.mcp = server.NewMCPServer(
		"basetag",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("render_note",
		mcp.WithDescription("Render a note's reading view as HTML with tag pills showing basenames."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the note (e.g. folder/note.md)")),
	), s.renderNote)

	s.mcp.AddTool(mcp.NewTool("note_tags",
		mcp.WithDescription("List the tags of a note with the label each pill shows."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the note")),
	), s.noteTags)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List every note with its tags and pill labels."),
		mcp.WithString("tag", mcp.Description("Optional tag or label to filter by")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("tag_label",
		mcp.WithDescription("Return the pill label for a tag (its last path segment)."),
		mcp.WithString("tag", mcp.Required(), mcp.Description("Tag text, with or without leading #")),
	), s.tagLabel)

	s.mcp.AddTool(mcp.NewTool("get_settings",
		mcp.WithDescription("Read the custom tag and container selector lists."),
	), s.getSettings)

	s.mcp.AddTool(mcp.NewTool("update_settings",
		mcp.WithDescription("Replace selector lists. Each value is a comma-separated CSS selector list; omitted lists are kept."),
		mcp.WithString("tag_selectors", mcp.Description("Custom tag selectors")),
		mcp.WithString("container_selectors", mcp.Description("Custom tag container selectors")),
	), s.updateSettings)

	s.mcp.AddResource(
		mcp.NewResource(rulesURI, "Tag Display Rules",
			mcp.WithResourceDescription("How tags are shortened to pills and where pills appear."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readRulesResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func noteError(path string, err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path))
	case errors.Is(err, apperr.ErrNotMarkdown):
		return mcp.NewToolResultError(fmt.Sprintf("not a markdown note: %s", path))
	}
	return mcp.NewToolResultError(err.Error())
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) renderNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	page, err := s.svc.RenderNote(ctx, path)
	if err != nil {
		return noteError(path, err), nil
	}
	return mcp.NewToolResultText(page.HTML), nil
}

func (s *Server) noteTags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tags, err := s.svc.NoteTags(ctx, path)
	if err != nil {
		return noteError(path, err), nil
	}
	return jsonResult(tags), nil
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.svc.ListNotes(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tag := strings.TrimPrefix(req.GetString("tag", ""), "#")
	if tag == "" {
		return jsonResult(items), nil
	}
	var paths []string
	for _, it := range items {
		for _, t := range it.Tags {
			if t.Tag == tag || t.Label == tag {
				paths = append(paths, it.Path)
				break
			}
		}
	}
	if len(paths) == 0 {
		return mcp.NewToolResultText("no notes found"), nil
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) tagLabel(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tag, err := req.RequireString("tag")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(tagname.Label(strings.TrimPrefix(tag, "#"))), nil
}

func (s *Server) getSettings(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.settings.Get()), nil
}

func (s *Server) updateSettings(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	next, err := s.settings.Update(func(cur *settings.Settings) {
		if v, ok := args["tag_selectors"].(string); ok {
			cur.CustomTagSelectors = settings.ParseList(v)
		}
		if v, ok := args["container_selectors"].(string); ok {
			cur.CustomTagContainerSelectors = settings.ParseList(v)
		}
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(next), nil
}

func (s *Server) readRulesResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      rulesURI,
			MIMEType: "text/markdown",
			Text:     TagDisplayRules,
		},
	}, nil
}
