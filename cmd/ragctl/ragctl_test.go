package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"docintel-be/internal/config"
	"docintel-be/internal/dto"
	"docintel-be/pkg/rag"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRetriever struct {
	fragments []rag.Fragment
	err       error

	userId     uuid.UUID
	question   string
	k          int
	documentId *uuid.UUID
}

func (s *stubRetriever) Query(_ context.Context, userId uuid.UUID, question string, k int, documentId *uuid.UUID) ([]rag.Fragment, error) {
	s.userId, s.question, s.k, s.documentId = userId, question, k, documentId
	return s.fragments, s.err
}

func runCLI(t *testing.T, r *stubRetriever, args ...string) (string, error) {
	t.Helper()
	retriever = r
	queryK, queryDocument, queryJSON, userFlag = 0, "", false, ""
	t.Cleanup(func() { retriever = nil })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestQueryCommand_JSON(t *testing.T) {
	userId, docId := uuid.New(), uuid.New()
	r := &stubRetriever{fragments: []rag.Fragment{{Text: "Alice is an engineer", DocumentId: docId, DocumentName: "cv.pdf", SourceNumber: 1, Score: 0.9}}}

	out, err := runCLI(t, r, "query", "--user", userId.String(), "-k", "3", "--document", docId.String(), "--json", "who", "is", "Alice?")

	require.NoError(t, err)
	assert.Equal(t, userId, r.userId)
	assert.Equal(t, "who is Alice?", r.question)
	assert.Equal(t, 3, r.k)
	require.NotNil(t, r.documentId)
	assert.Equal(t, docId, *r.documentId)

	var res dto.QueryResponse
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Len(t, res.Sources, 1)
	assert.Equal(t, "cv.pdf", res.Sources[0].DocumentName)
}

func TestQueryCommand_Text(t *testing.T) {
	r := &stubRetriever{fragments: []rag.Fragment{{Text: "Venus is a planet", DocumentName: "space.txt", SourceNumber: 1, Score: 0.5}}}

	out, err := runCLI(t, r, "query", "-u", uuid.NewString(), "what is venus")

	require.NoError(t, err)
	assert.Contains(t, out, "[1] space.txt (0.500)")
	assert.Contains(t, out, "Venus is a planet")
}

func TestQueryCommand_Errors(t *testing.T) {
	_, err := runCLI(t, &stubRetriever{}, "query", "--user", "nope", "q")
	assert.ErrorContains(t, err, "invalid --user")

	_, err = runCLI(t, &stubRetriever{}, "query", "--user", uuid.NewString(), "--document", "bad", "q")
	assert.ErrorContains(t, err, "invalid --document")

	_, err = runCLI(t, &stubRetriever{err: rag.ErrNoReadyDocuments}, "query", "--user", uuid.NewString(), "q")
	assert.ErrorIs(t, err, rag.ErrNoReadyDocuments)
}

func callTool(t *testing.T, r *stubRetriever, userId uuid.UUID, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Name = mcpToolName
	req.Params.Arguments = args

	res, err := searchHandler(r, userId)(context.Background(), req)
	require.NoError(t, err)
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestSearchTool(t *testing.T) {
	userId, docId := uuid.New(), uuid.New()
	r := &stubRetriever{fragments: []rag.Fragment{
		{Text: "one", DocumentId: docId, SourceNumber: 1},
		{Text: "two", DocumentId: docId, SourceNumber: 2},
	}}

	res := callTool(t, r, userId, map[string]any{"question": "q", "k": float64(2), "document_id": docId.String()})

	assert.False(t, res.IsError)
	lines := strings.Split(strings.TrimSpace(resultText(t, res)), "\n")
	require.Len(t, lines, 2)
	var first rag.Fragment
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	assert.Equal(t, "one", first.Text)
	assert.Equal(t, userId, r.userId)
	assert.Equal(t, 2, r.k)
}

func TestSearchTool_Errors(t *testing.T) {
	userId := uuid.New()

	assert.True(t, callTool(t, &stubRetriever{}, userId, map[string]any{}).IsError)
	assert.True(t, callTool(t, &stubRetriever{}, userId, map[string]any{"question": "q", "document_id": "bad"}).IsError)
	assert.True(t, callTool(t, &stubRetriever{err: rag.ErrNoReadyDocuments}, userId, map[string]any{"question": "q"}).IsError)
}

func TestNewRagServer(t *testing.T) {
	assert.NotNil(t, newRagServer(&stubRetriever{}, uuid.New()))
}

func TestCLIContainer_KeepsStdoutClean(t *testing.T) {
	cfg := &config.Config{
		App: config.AppConfig{LogLevel: "debug", LogFilePath: filepath.Join(t.TempDir(), "app.log")},
		Ai:  config.AIConfig{EmbeddingProvider: "ollama", OllamaBaseURL: "http://127.0.0.1:1", OllamaModel: "nomic-embed-text"},
		Rag: config.RagConfig{ChunkSize: 500, ChunkOverlap: 100, DefaultTopK: 5, MaxTopK: 20, HistoryTopic: "QUERY_ANSWERED"},
	}

	stdout := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w
	t.Cleanup(func() { os.Stdout = stdout })

	c, err := newCLIContainer(nil, cfg)
	require.NoError(t, err)
	_, queryErr := c.Retriever.Query(context.Background(), uuid.New(), "   ", 0, nil)
	c.Close()

	require.NoError(t, w.Close())
	os.Stdout = stdout
	written, err := io.ReadAll(r)
	require.NoError(t, err)

	assert.ErrorIs(t, queryErr, rag.ErrInvalidArgument)
	assert.Empty(t, string(written), "logs on stdout would corrupt --json output and the MCP stream")
}
