package codec

import (
	"context"
	"fmt"

	"github.com/danielpatrickdp/chain-of-draft/internal/llm"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
)

// #region constants
// ChatMethod is the full gRPC method name served by the inference sidecar.
// Requests and responses are google.protobuf.Struct messages.
const ChatMethod = "/cod.v1.CompletionService/Chat"

// #endregion constants

// #region client-struct
// CodecClient wraps the gRPC connection to the inference sidecar.
type CodecClient struct {
	conn  *grpc.ClientConn
	cc    grpc.ClientConnInterface
	model string
}

var _ llm.Client = (*CodecClient)(nil)

// #endregion client-struct

// #region constructor
// NewCodecClient connects to the inference sidecar. model is used when a
// request does not name one.
func NewCodecClient(addr, model string) (*CodecClient, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpc dial %s: %w", addr, err)
	}
	return &CodecClient{
		conn:  conn,
		cc:    conn,
		model: model,
	}, nil
}

// NewCodecClientWithConn creates a CodecClient over an injected connection.
// Used for testing without a real gRPC server.
func NewCodecClientWithConn(cc grpc.ClientConnInterface, model string) *CodecClient {
	return &CodecClient{cc: cc, model: model}
}

// #endregion constructor

// #region close
// Close shuts down the gRPC connection.
func (c *CodecClient) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// #endregion close

// #region chat
// Chat sends the turns to the sidecar and returns its text and usage.
func (c *CodecClient) Chat(ctx context.Context, req llm.ChatRequest) (llm.ChatResponse, error) {
	in, err := encodeRequest(req, c.model)
	if err != nil {
		return llm.ChatResponse{}, fmt.Errorf("encode chat request: %w", err)
	}

	out := &structpb.Struct{}
	if err := c.cc.Invoke(ctx, ChatMethod, in, out); err != nil {
		return llm.ChatResponse{}, fmt.Errorf("chat rpc: %w", err)
	}
	return decodeResponse(out), nil
}

// #endregion chat

// #region wire
func encodeRequest(req llm.ChatRequest, fallbackModel string) (*structpb.Struct, error) {
	model := req.Model
	if model == "" {
		model = fallbackModel
	}
	turns := make([]any, len(req.Turns))
	for i, t := range req.Turns {
		turns[i] = map[string]any{
			"role":    t.Role,
			"content": t.Content,
		}
	}
	return structpb.NewStruct(map[string]any{
		"model":       model,
		"messages":    turns,
		"max_tokens":  req.MaxTokens,
		"temperature": req.Temperature,
	})
}

func decodeResponse(out *structpb.Struct) llm.ChatResponse {
	fields := out.GetFields()
	resp := llm.ChatResponse{
		Content: fields["content"].GetStringValue(),
	}
	if usage := fields["usage"].GetStructValue(); usage != nil {
		uf := usage.GetFields()
		resp.Usage = llm.Usage{
			InputTokens:  int(uf["input_tokens"].GetNumberValue()),
			OutputTokens: int(uf["output_tokens"].GetNumberValue()),
		}
	}
	return resp
}

// #endregion wire
