package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/leonardcser/kvcache/internal/cache"
)

type handler = func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

// Register adds the key-value tools to s, all backed by kv.
func Register(s *server.MCPServer, kv cache.KV) {
	keyArg := mcp.WithString("key", mcp.Required(), mcp.Description("The cache key"))
	valueArg := mcp.WithString("value", mcp.Required(), mcp.Description("The value to store"))

	s.AddTool(mcp.NewTool("kv-get",
		mcp.WithDescription("Returns the value stored under a key. Reading does not refresh the key's recency."),
		keyArg,
	), GetHandler(kv))
	s.AddTool(mcp.NewTool("kv-put",
		mcp.WithDescription("Stores a value, replacing any existing one. Least recently written keys are evicted when the cache is full."),
		keyArg, valueArg,
	), PutHandler(kv))
	s.AddTool(mcp.NewTool("kv-put-if-absent",
		mcp.WithDescription("Stores a value only if the key does not exist yet."),
		keyArg, valueArg,
	), PutIfAbsentHandler(kv))
	s.AddTool(mcp.NewTool("kv-set",
		mcp.WithDescription("Replaces the value of an existing key. Fails if the key does not exist."),
		keyArg, valueArg,
	), SetHandler(kv))
	s.AddTool(mcp.NewTool("kv-delete",
		mcp.WithDescription("Removes a key."),
		keyArg,
	), DeleteHandler(kv))
}

// GetHandler returns the MCP tool handler for the "kv-get" tool.
func GetHandler(kv cache.KV) handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if ctx.Err() != nil {
			return mcp.NewToolResultError(ctx.Err().Error()), nil
		}
		key, err := req.RequireString("key")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		v, err := kv.Get(key)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(string(v)), nil
	}
}

func PutHandler(kv cache.KV) handler {
	return writeHandler("stored", kv.Put)
}

func PutIfAbsentHandler(kv cache.KV) handler {
	return writeHandler("stored", kv.PutIfAbsent)
}

func SetHandler(kv cache.KV) handler {
	return writeHandler("updated", kv.Set)
}

// DeleteHandler returns the MCP tool handler for the "kv-delete" tool.
func DeleteHandler(kv cache.KV) handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if ctx.Err() != nil {
			return mcp.NewToolResultError(ctx.Err().Error()), nil
		}
		key, err := req.RequireString("key")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := kv.Delete(key); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("deleted %q", key)), nil
	}
}

func writeHandler(verb string, write func(key string, value []byte) error) handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if ctx.Err() != nil {
			return mcp.NewToolResultError(ctx.Err().Error()), nil
		}
		key, err := req.RequireString("key")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		value, err := req.RequireString("value")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if err := write(key, []byte(value)); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("%s %q (%d bytes)", verb, key, len(key)+len(value))), nil
	}
}
