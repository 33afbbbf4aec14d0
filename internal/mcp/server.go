package mcp

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/Matamaru/caesar-ocr/internal/analyze"
	"github.com/Matamaru/caesar-ocr/internal/config"
	"github.com/Matamaru/caesar-ocr/internal/descriptions"
	"github.com/Matamaru/caesar-ocr/internal/document"
	"github.com/Matamaru/caesar-ocr/internal/mrz"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server represents the MCP server instance
type Server struct {
	config    *config.Config
	analyzer  *analyze.Service
	loader    *document.Loader
	validator *document.Validator
	search    *document.Search
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, analyzer *analyze.Service) (*Server, error) {
	if analyzer == nil {
		return nil, fmt.Errorf("analyzer cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
	)

	s := &Server{
		config:    cfg,
		analyzer:  analyzer,
		loader:    document.NewLoader(cfg.MaxFileSize),
		validator: document.NewValidator(cfg.MaxFileSize),
		search:    document.NewSearch(cfg.MaxFileSize),
		mcpServer: mcpServer,
	}

	s.registerTools()
	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	analyzeFileTool := mcp.NewTool(
		"ocr_analyze_file",
		mcp.WithDescription(descriptions.GetToolDescription("ocr_analyze_file")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the document file"),
		),
		mcp.WithBoolean("debug",
			mcp.Description("Include the rule evaluation trace in the response"),
		),
	)
	s.mcpServer.AddTool(analyzeFileTool, s.handleAnalyzeFile)

	analyzeTextTool := mcp.NewTool(
		"ocr_analyze_text",
		mcp.WithDescription(descriptions.GetToolDescription("ocr_analyze_text")),
		mcp.WithString("text",
			mcp.Required(),
			mcp.Description("Recognized text to analyze, line breaks preserved"),
		),
		mcp.WithBoolean("debug",
			mcp.Description("Include the rule evaluation trace in the response"),
		),
	)
	s.mcpServer.AddTool(analyzeTextTool, s.handleAnalyzeText)

	decodeMRZTool := mcp.NewTool(
		"ocr_decode_mrz",
		mcp.WithDescription(descriptions.GetToolDescription("ocr_decode_mrz")),
		mcp.WithString("lines",
			mcp.Required(),
			mcp.Description("MRZ lines separated by newlines (2 or 3 lines)"),
		),
	)
	s.mcpServer.AddTool(decodeMRZTool, s.handleDecodeMRZ)

	validateFileTool := mcp.NewTool(
		"ocr_validate_file",
		mcp.WithDescription(descriptions.GetToolDescription("ocr_validate_file")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the document file"),
		),
	)
	s.mcpServer.AddTool(validateFileTool, s.handleValidateFile)

	searchDirectoryTool := mcp.NewTool(
		"ocr_search_directory",
		mcp.WithDescription(descriptions.GetToolDescription("ocr_search_directory")),
		mcp.WithString("directory",
			mcp.Description("Directory path to search (uses default if empty)"),
		),
		mcp.WithString("query",
			mcp.Description("Optional search query for fuzzy matching"),
		),
	)
	s.mcpServer.AddTool(searchDirectoryTool, s.handleSearchDirectory)

	serverInfoTool := mcp.NewTool(
		"ocr_server_info",
		mcp.WithDescription(descriptions.GetToolDescription("ocr_server_info")),
	)
	s.mcpServer.AddTool(serverInfoTool, s.handleServerInfo)
}

// Handler functions
func (s *Server) handleAnalyzeFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	debug := false
	if d, ok := request.GetArguments()["debug"].(bool); ok {
		debug = d
	}

	doc, err := s.loader.LoadPDF(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := s.analyzer.AnalyzeDocument(analyze.DocumentRequest{
		Tokens: doc.AllTokens(),
		Text:   doc.Text(),
		Debug:  debug,
	})

	responseText := fmt.Sprintf("Analyzed document: %s\n", path)
	responseText += fmt.Sprintf("Pages: %d\n", len(doc.Pages))
	responseText += s.formatAnalysisResult(result)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleAnalyzeText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	debug := false
	if d, ok := request.GetArguments()["debug"].(bool); ok {
		debug = d
	}

	result := s.analyzer.AnalyzeText(text, debug)
	return mcp.NewToolResultText(s.formatAnalysisResult(result)), nil
}

func (s *Server) handleDecodeMRZ(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := request.RequireString("lines")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return mcp.NewToolResultError("no MRZ lines provided"), nil
	}

	rec := mrz.Decode(lines)
	if rec.Variant == mrz.Unknown {
		return mcp.NewToolResultError(
			fmt.Sprintf("input does not match any MRZ layout (%d lines of lengths %v)", len(lines), lineLengths(lines))), nil
	}

	responseText := fmt.Sprintf("MRZ layout: %s\n", rec.Variant)
	responseText += formatFields(rec.Fields())
	responseText += "\nCheck digits:\n"
	for _, field := range sortedKeys(rec.Valid) {
		responseText += fmt.Sprintf("  %s: %t\n", field, rec.Valid[field])
	}
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleValidateFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.validator.ValidateFile(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.Valid {
		responseText = fmt.Sprintf("Document file %s is valid and readable", result.Path)
	} else {
		responseText = fmt.Sprintf("Validation failed for %s: %s", result.Path, result.Message)
	}
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleSearchDirectory(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	args := request.GetArguments()

	directory := s.config.DocumentDirectory // default
	if dir, ok := args["directory"].(string); ok && dir != "" {
		directory = dir
	}
	query := ""
	if q, ok := args["query"].(string); ok {
		query = q
	}

	result, err := s.search.SearchDirectory(directory, query)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.TotalCount == 0 {
		responseText = fmt.Sprintf("No document files found in directory: %s", result.Directory)
		if result.SearchQuery != "" {
			responseText += fmt.Sprintf(" (searched for: %s)", result.SearchQuery)
		}
	} else {
		responseText = s.formatSearchResult(result)
	}
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := fmt.Sprintf("%s v%s - Server Information\n", s.config.ServerName, s.config.Version)
	text += fmt.Sprintf("Default Directory: %s\n", s.config.DocumentDirectory)
	if s.config.RulesPath != "" {
		text += fmt.Sprintf("Rule Document: %s\n", s.config.RulesPath)
	}
	text += fmt.Sprintf("Max File Size: %d MB\n\n", s.config.MaxFileSize/(1024*1024))

	files, err := s.search.FindDocuments(s.config.DocumentDirectory)
	if err == nil && len(files) > 0 {
		text += fmt.Sprintf("Directory Contents (%d document files found):\n", len(files))
		for i, file := range files {
			if i >= 10 { // Limit to first 10 files for readability
				text += fmt.Sprintf("   ... and %d more files\n", len(files)-10)
				break
			}
			text += fmt.Sprintf("   %d. %s (%d bytes)\n", i+1, file.Name, file.Size)
		}
		text += "\n"
	} else {
		text += "Directory Contents: No document files found in default directory\n\n"
	}

	text += "Available Tools:\n"
	names := descriptions.GetAllToolNames()
	sort.Strings(names)
	for _, name := range names {
		desc := descriptions.GetToolDescription(name)
		// First line of the description is the summary.
		if idx := strings.IndexByte(desc, '\n'); idx > 0 {
			desc = desc[:idx]
		}
		text += fmt.Sprintf("\n• %s\n  %s\n", name, desc)
	}
	return mcp.NewToolResultText(text), nil
}

// Formatting methods
func (s *Server) formatAnalysisResult(result analyze.DocumentResult) string {
	text := fmt.Sprintf("Document Type: %s\n", result.DocType)

	if len(result.Fields) > 0 {
		text += "\nExtracted Fields:\n"
		text += formatFields(result.Fields)
	} else {
		text += "\nNo fields extracted.\n"
	}

	if result.MRZ != nil {
		text += fmt.Sprintf("\nMRZ: %s layout, all check digits valid: %t\n",
			result.MRZ.Variant, result.MRZ.AllValid())
	}

	if len(result.Trace) > 0 {
		text += "\nRule Trace:\n"
		for _, entry := range result.Trace {
			status := "rejected"
			if entry.Accepted {
				status = "accepted"
			}
			text += fmt.Sprintf("  %s -> %s", entry.Rule, status)
			if entry.Field != "" {
				text += fmt.Sprintf(" (%s=%q)", entry.Field, entry.Value)
			}
			if entry.Reason != "" {
				text += fmt.Sprintf(" [%s]", entry.Reason)
			}
			text += "\n"
		}
	}
	return text
}

func (s *Server) formatSearchResult(result *document.SearchResult) string {
	text := fmt.Sprintf("Found %d document file(s) in directory: %s\n", result.TotalCount, result.Directory)
	if result.SearchQuery != "" {
		text += fmt.Sprintf("Search query: %s\n", result.SearchQuery)
	}
	text += "\nFiles:\n"

	for i, file := range result.Files {
		text += fmt.Sprintf("%d. %s\n", i+1, file.Name)
		text += fmt.Sprintf("   Path: %s\n", file.Path)
		text += fmt.Sprintf("   Size: %d bytes\n", file.Size)
		text += fmt.Sprintf("   Modified: %s\n", file.ModifiedTime)
		if i < len(result.Files)-1 {
			text += "\n"
		}
	}
	return text
}

func formatFields(fields map[string]string) string {
	var text string
	for _, k := range sortedKeysStr(fields) {
		text += fmt.Sprintf("  %s: %s\n", k, fields[k])
	}
	return text
}

func sortedKeysStr(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func lineLengths(lines []string) []int {
	out := make([]int, len(lines))
	for i, l := range lines {
		out[i] = len(l)
	}
	return out
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode runs the server in stdio mode
func (s *Server) runStdioMode(_ context.Context) error {
	if s.config.IsDebug() {
		log.Printf("Starting caesar-ocr server in stdio mode")
		log.Printf("Document directory: %s", s.config.DocumentDirectory)
	}

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode runs the server in HTTP server mode
func (s *Server) runServerMode(ctx context.Context) error {
	log.Printf("Starting caesar-ocr server in HTTP mode on %s", s.config.Address())

	httpServer := server.NewStreamableHTTPServer(s.mcpServer)
	if err := httpServer.Start(s.config.Address()); err != nil {
		return fmt.Errorf("failed to serve http: %w", err)
	}
	return nil
}
