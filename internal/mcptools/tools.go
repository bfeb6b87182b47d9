// Package mcptools exposes the job queries as Model Context Protocol tools,
// so an assistant can browse and prune the aggregated postings.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"jobmate/aggregator-service/internal/jobs"
)

// Tools holds the handlers backing each tool.
type Tools struct {
	svc *jobs.Service
}

// Register adds list_jobs, job_stats and delete_job to s.
func Register(s *server.MCPServer, svc *jobs.Service) {
	t := &Tools{svc: svc}

	listTool := mcp.NewTool("list_jobs",
		mcp.WithDescription("List active AI job postings in Denmark, best relevance first"),
	)
	listTool.InputSchema = mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"limit":    map[string]interface{}{"type": "integer", "description": "Max postings (default 50, max 200)"},
			"offset":   map[string]interface{}{"type": "integer", "description": "Postings to skip"},
			"location": map[string]interface{}{"type": "string", "description": "Case-insensitive location substring"},
			"job_type": map[string]interface{}{"type": "string", "description": "Case-insensitive job type substring, e.g. full-time"},
			"days_ago": map[string]interface{}{"type": "integer", "description": "Only postings scraped in the last N days (default 30, -1 for all)"},
		},
	}
	s.AddTool(listTool, t.ListJobs)

	s.AddTool(mcp.NewTool("job_stats",
		mcp.WithDescription("Aggregate statistics over stored postings: totals, today, this week, top companies and locations"),
	), t.JobStats)

	deleteTool := mcp.NewTool("delete_job",
		mcp.WithDescription("Permanently delete a stored posting by id"),
	)
	deleteTool.InputSchema = mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"id": map[string]interface{}{"type": "integer", "description": "Posting id"},
		},
		Required: []string{"id"},
	}
	s.AddTool(deleteTool, t.DeleteJob)
}

// ListJobs handles list_jobs.
func (t *Tools) ListJobs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := arguments(request)
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}

	p := jobs.ListParams{
		Limit:   jobs.DefaultLimit,
		DaysAgo: jobs.DaysAgo(jobs.DefaultDaysAgo),
	}
	if v, ok := args["limit"].(float64); ok {
		p.Limit = int(v)
	}
	if v, ok := args["offset"].(float64); ok {
		p.Offset = int(v)
	}
	if v, ok := args["location"].(string); ok {
		p.Location = strings.TrimSpace(v)
	}
	if v, ok := args["job_type"].(string); ok {
		p.JobType = strings.TrimSpace(v)
	}
	if v, ok := args["days_ago"].(float64); ok {
		if v < 0 {
			p.DaysAgo = nil
		} else {
			p.DaysAgo = jobs.DaysAgo(int(v))
		}
	}

	postings, err := t.svc.List(ctx, p)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list jobs: %v", err)), nil
	}
	return jsonResult(postings)
}

// JobStats handles job_stats.
func (t *Tools) JobStats(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := t.svc.Stats(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to compute stats: %v", err)), nil
	}
	return jsonResult(stats)
}

// DeleteJob handles delete_job.
func (t *Tools) DeleteJob(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := arguments(request)
	if !ok {
		return mcp.NewToolResultError("invalid arguments format"), nil
	}
	v, ok := args["id"].(float64)
	if !ok || v != float64(int64(v)) {
		return mcp.NewToolResultError("id must be an integer"), nil
	}
	id := int64(v)

	removed, err := t.svc.Delete(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to delete job %d: %v", id, err)), nil
	}
	if !removed {
		return mcp.NewToolResultError(fmt.Sprintf("Job %d not found", id)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Job %d deleted.", id)), nil
}

func arguments(request mcp.CallToolRequest) (map[string]interface{}, bool) {
	if request.Params.Arguments == nil {
		return map[string]interface{}{}, true
	}
	args, ok := request.Params.Arguments.(map[string]interface{})
	return args, ok
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
