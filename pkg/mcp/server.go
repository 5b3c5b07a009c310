// Package mcp adapts the easel daemon to the Model Context Protocol so
// agents can inspect and drive the canvas.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/easel-ai/easel/pkg/client"
)

// Server adapts easel-d to the Model Context Protocol.
type Server struct {
	mcpServer *server.MCPServer
	apiClient *client.Client
}

// NewServer creates a new MCP server instance.
func NewServer(apiURL string) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"easel",
			"1.0.0",
		),
		apiClient: client.NewClient(apiURL),
	}
	s.registerResources()
	s.registerTools()
	return s
}

// Serve starts the MCP server on stdio.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcpServer)
}

// --- Resources ---

func (s *Server) registerResources() {
	// easel://canvas
	s.mcpServer.AddResource(mcp.NewResource(
		"easel://canvas",
		"Canvas Graph",
		mcp.WithResourceDescription("The current node/edge graph of the canvas"),
		mcp.WithMIMEType("application/json"),
	), s.handleReadCanvas)

	// easel://models
	s.mcpServer.AddResource(mcp.NewResource(
		"easel://models",
		"Model Catalog",
		mcp.WithResourceDescription("Available image generation models and their capabilities"),
		mcp.WithMIMEType("application/json"),
	), s.handleReadModels)
}

// --- Tools ---

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool(
		"generate_image",
		mcp.WithDescription("Generate images from a prompt and place them on the canvas. Returns the node IDs."),
		mcp.WithString("prompt", mcp.Required(), mcp.Description("The text prompt")),
		mcp.WithString("model", mcp.Required(), mcp.Description("Model ID (see easel://models)")),
		mcp.WithNumber("n", mcp.Description("Number of images (default 1)")),
		mcp.WithString("size", mcp.Description("Image size, e.g. '1024x1024'")),
	), s.handleGenerateImage)

	s.mcpServer.AddTool(mcp.NewTool(
		"list_nodes",
		mcp.WithDescription("List all nodes currently on the canvas."),
	), s.handleListNodes)

	s.mcpServer.AddTool(mcp.NewTool(
		"clear_canvas",
		mcp.WithDescription("Remove every node, edge, and stored image. Provider API keys are kept."),
	), s.handleClearCanvas)
}

// --- Handlers ---

func (s *Server) handleReadCanvas(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	graph, err := s.apiClient.GetGraph(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch canvas: %w", err)
	}

	data, err := json.MarshalIndent(graph, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal canvas: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleReadModels(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	models, err := s.apiClient.GetModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch models: %w", err)
	}

	data, err := json.MarshalIndent(models, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal models: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleGenerateImage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	prompt := mcp.ParseString(request, "prompt", "")
	model := mcp.ParseString(request, "model", "")
	n := int(mcp.ParseFloat64(request, "n", 1))
	size := mcp.ParseString(request, "size", "")

	result, err := s.apiClient.Generate(ctx, client.GenerateOptions{
		Prompt: prompt,
		Model:  model,
		N:      n,
		Size:   size,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("API error: %v", err)), nil
	}

	if !result.Success {
		return mcp.NewToolResultError(fmt.Sprintf("Generation failed: %s", result.Error)), nil
	}
	msg := fmt.Sprintf("Generated %d image(s).\nNode IDs: %v\nImage IDs: %v", len(result.ImageIDs), result.PlaceholderIDs, result.ImageIDs)
	if result.RevisedPrompt != "" {
		msg += fmt.Sprintf("\nRevised prompt: %s", result.RevisedPrompt)
	}
	return mcp.NewToolResultText(msg), nil
}

func (s *Server) handleListNodes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	graph, err := s.apiClient.GetGraph(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("API error: %v", err)), nil
	}

	data, err := json.MarshalIndent(graph.Nodes, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func (s *Server) handleClearCanvas(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.apiClient.ClearCanvas(ctx); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("API error: %v", err)), nil
	}
	return mcp.NewToolResultText("Canvas cleared. Credentials preserved."), nil
}
