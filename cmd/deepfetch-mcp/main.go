// deepfetch-mcp is a stdio MCP server that proxies tool calls to a
// running deepfetch API instance.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// fetchResponse mirrors the deepfetch fetch API response model.
type fetchResponse struct {
	Success  bool   `json:"success"`
	Content  string `json:"content"`
	Metadata *struct {
		Title     string `json:"title"`
		SourceURL string `json:"source_url"`
	} `json:"metadata"`
	Characters *struct {
		Original int `json:"original"`
		Cleaned  int `json:"cleaned"`
	} `json:"characters"`
	Error *errorDetail `json:"error"`
}

// dynamicResponse mirrors the deepfetch dynamic API response model.
type dynamicResponse struct {
	Success         bool         `json:"success"`
	FinalURL        string       `json:"final_url"`
	Content         string       `json:"content"`
	Strategy        string       `json:"strategy"`
	Fragments       int          `json:"fragments"`
	TotalCharacters int          `json:"total_characters"`
	AttemptsUsed    int          `json:"attempts_used"`
	Converged       bool         `json:"converged"`
	TimedOut        bool         `json:"timed_out"`
	Error           *errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func main() {
	apiURL := os.Getenv("DEEPFETCH_API_URL")
	if apiURL == "" {
		apiURL = "http://127.0.0.1:8080"
	}
	apiKey := os.Getenv("DEEPFETCH_API_KEY")
	if apiKey == "" {
		fmt.Fprintln(os.Stderr, "DEEPFETCH_API_KEY is required")
		os.Exit(1)
	}

	s := server.NewMCPServer(
		"deepfetch",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s.AddTool(mcp.NewTool("extract_url_content",
		mcp.WithDescription("Extract the full text content of a web page. Renders JavaScript-heavy pages in a headless browser when plain HTTP is not enough."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the web page to extract"),
		),
	), handleFetch(apiURL, apiKey, func(target string, _ mcp.CallToolRequest) map[string]any {
		return map[string]any{"url": target, "extract_mode": "raw", "output_format": "text"}
	}))

	s.AddTool(mcp.NewTool("extract_url_content_clean",
		mcp.WithDescription("Extract the main article of a web page as markdown, with navigation, ads and boilerplate removed."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the web page to extract"),
		),
		mcp.WithString("output_format",
			mcp.Description("Output format: 'markdown' (default), 'text', or 'html'"),
			mcp.Enum("markdown", "text", "html"),
		),
	), handleFetch(apiURL, apiKey, func(target string, req mcp.CallToolRequest) map[string]any {
		format := req.GetString("output_format", "markdown")
		return map[string]any{"url": target, "extract_mode": "readability", "output_format": format}
	}))

	s.AddTool(mcp.NewTool("extract_url_content_authenticated",
		mcp.WithDescription("Extract a web page that requires authentication. Supply cookies (devtools export format), headers, or a bearer token."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the web page to extract"),
		),
		mcp.WithString("cookies",
			mcp.Description("Browser-style cookie string: 'name1=value1; name2=value2'"),
		),
		mcp.WithString("headers",
			mcp.Description("Extra request headers as a JSON object or 'Key: value' lines"),
		),
		mcp.WithString("auth_token",
			mcp.Description("Bearer token sent as the Authorization header"),
		),
	), handleFetch(apiURL, apiKey, func(target string, req mcp.CallToolRequest) map[string]any {
		payload := map[string]any{"url": target, "extract_mode": "raw", "output_format": "text"}
		if cookies := req.GetString("cookies", ""); cookies != "" {
			payload["cookies"] = cookies
		}
		if headers := req.GetString("headers", ""); headers != "" {
			payload["headers"] = parseHeaderArg(headers)
		}
		if token := req.GetString("auth_token", ""); token != "" {
			payload["auth_token"] = token
		}
		return payload
	}))

	s.AddTool(mcp.NewTool("extract_url_content_structured",
		mcp.WithDescription("Extract a web page as structured data: metadata, heading-bounded sections, paragraphs, links and images."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the web page to extract"),
		),
	), handleStructured(apiURL, apiKey))

	s.AddTool(mcp.NewTool("extract_dynamic_content",
		mcp.WithDescription("Extract content from a dynamic page (infinite scroll, lazy loading, chat UIs). Scrolls and nudges the page until its content stops growing, then extracts with multiple strategies."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the web page to extract"),
		),
		mcp.WithNumber("wait_time_ms",
			mcp.Description("Settle wait after navigation before the first scroll (default: 5000)"),
		),
		mcp.WithNumber("max_scroll_attempts",
			mcp.Description("Maximum scroll/interaction attempts (default: 50)"),
		),
		mcp.WithNumber("timeout_ms",
			mcp.Description("Overall deadline in milliseconds (default: 90000). On expiry a partial result is returned."),
		),
		mcp.WithNumber("manual_wait_ms",
			mcp.Description("Hold the page open this long before extraction so a human can interact with the live browser (default: 0)"),
		),
		mcp.WithString("cookies",
			mcp.Description("Browser-style cookie string for authenticated pages"),
		),
	), handleDynamic(apiURL, apiKey, ""))

	s.AddTool(mcp.NewTool("extract_from_open_browser",
		mcp.WithDescription("Extract dynamic content through an already-running browser over the DevTools protocol, reusing an open tab when one shows the target URL. Start Chrome with --remote-debugging-port=9222 first."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL of the web page to extract"),
		),
		mcp.WithString("cdp_url",
			mcp.Description("DevTools endpoint (default: http://127.0.0.1:9222)"),
		),
		mcp.WithNumber("timeout_ms",
			mcp.Description("Overall deadline in milliseconds (default: 90000)"),
		),
	), handleDynamic(apiURL, apiKey, "http://127.0.0.1:9222"))

	s.AddTool(mcp.NewTool("get_url_info",
		mcp.WithDescription("Check a URL without fetching its content: HTTP status, final URL after redirects, content type and response headers."),
		mcp.WithString("url",
			mcp.Required(),
			mcp.Description("The URL to check"),
		),
	), handleInfo(apiURL, apiKey))

	if err := server.ServeStdio(s); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}
}

// apiPost sends a POST to the deepfetch API and returns the body.
func apiPost(ctx context.Context, client *http.Client, apiURL, apiKey, path string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", apiKey)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// handleFetch proxies a tool call to POST /api/v1/fetch. buildPayload
// shapes the request per tool.
func handleFetch(apiURL, apiKey string, buildPayload func(string, mcp.CallToolRequest) map[string]any) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 150 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		target, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/fetch", buildPayload(target, request))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("fetch request failed: %v", err)), nil
		}

		var fetchResp fetchResponse
		if err := json.Unmarshal(respBody, &fetchResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		if !fetchResp.Success {
			errMsg := "fetch failed"
			if fetchResp.Error != nil {
				errMsg = fmt.Sprintf("[%s] %s", fetchResp.Error.Code, fetchResp.Error.Message)
			}
			return mcp.NewToolResultError(errMsg), nil
		}

		var result string
		if fetchResp.Metadata != nil {
			result = fmt.Sprintf("Title: %s\nSource: %s\n\n", fetchResp.Metadata.Title, fetchResp.Metadata.SourceURL)
		}
		result += fetchResp.Content

		return mcp.NewToolResultText(result), nil
	}
}

func handleStructured(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 150 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		target, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/structured", map[string]string{"url": target})
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("structured request failed: %v", err)), nil
		}

		// The document is returned as pretty JSON so the caller can
		// navigate sections/links/images directly.
		var parsed struct {
			Success  bool            `json:"success"`
			Document json.RawMessage `json:"document"`
			Error    *errorDetail    `json:"error"`
		}
		if err := json.Unmarshal(respBody, &parsed); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}
		if !parsed.Success {
			errMsg := "structured extraction failed"
			if parsed.Error != nil {
				errMsg = fmt.Sprintf("[%s] %s", parsed.Error.Code, parsed.Error.Message)
			}
			return mcp.NewToolResultError(errMsg), nil
		}

		var pretty bytes.Buffer
		if err := json.Indent(&pretty, parsed.Document, "", "  "); err != nil {
			pretty.Write(parsed.Document)
		}
		return mcp.NewToolResultText(pretty.String()), nil
	}
}

// handleDynamic proxies to POST /api/v1/dynamic. A non-empty defaultCDP
// makes the tool attach to an external browser.
func handleDynamic(apiURL, apiKey, defaultCDP string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 600 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		target, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		payload := map[string]any{"url": target}
		args := request.GetArguments()
		for _, key := range []string{"wait_time_ms", "max_scroll_attempts", "timeout_ms", "manual_wait_ms"} {
			if v, ok := args[key]; ok {
				payload[key] = v
			}
		}
		if cookies := request.GetString("cookies", ""); cookies != "" {
			payload["cookies"] = cookies
		}
		if defaultCDP != "" {
			payload["cdp_url"] = request.GetString("cdp_url", defaultCDP)
		}

		respBody, err := apiPost(ctx, client, apiURL, apiKey, "/api/v1/dynamic", payload)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("dynamic request failed: %v", err)), nil
		}

		var dynResp dynamicResponse
		if err := json.Unmarshal(respBody, &dynResp); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to parse response: %v", err)), nil
		}

		if !dynResp.Success {
			errMsg := "dynamic extraction failed"
			if dynResp.Error != nil {
				errMsg = fmt.Sprintf("[%s] %s", dynResp.Error.Code, dynResp.Error.Message)
			}
			return mcp.NewToolResultError(errMsg), nil
		}

		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("Source: %s\nStrategy: %s (%d fragments, %d characters, %d attempts)\n",
			dynResp.FinalURL, dynResp.Strategy, dynResp.Fragments, dynResp.TotalCharacters, dynResp.AttemptsUsed))
		if dynResp.TimedOut {
			sb.WriteString("Note: the deadline expired; this is a partial result.\n")
		}
		sb.WriteString("\n")
		sb.WriteString(dynResp.Content)

		return mcp.NewToolResultText(sb.String()), nil
	}
}

func handleInfo(apiURL, apiKey string) server.ToolHandlerFunc {
	client := &http.Client{Timeout: 30 * time.Second}

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		target, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError("url is required"), nil
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet,
			apiURL+"/api/v1/info?url="+url.QueryEscape(target), nil)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("create request: %v", err)), nil
		}
		req.Header.Set("X-API-Key", apiKey)

		resp, err := client.Do(req)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("info request failed: %v", err)), nil
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("read response: %v", err)), nil
		}

		var pretty bytes.Buffer
		if err := json.Indent(&pretty, body, "", "  "); err != nil {
			pretty.Write(body)
		}
		return mcp.NewToolResultText(pretty.String()), nil
	}
}

// parseHeaderArg accepts either a JSON object or "Key: value" lines.
func parseHeaderArg(raw string) map[string]string {
	headers := make(map[string]string)
	if err := json.Unmarshal([]byte(raw), &headers); err == nil {
		return headers
	}
	for _, line := range strings.Split(raw, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok || strings.TrimSpace(key) == "" {
			continue
		}
		headers[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return headers
}
