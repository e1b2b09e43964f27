package triton

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const serviceName = "inference.GRPCInferenceService"

// Client is a typed wrapper over the remote tensor-serving inference
// protocol, grounded in the Rust original's TritonInferenceClient
// (pipeline/triton_client/client.rs) and in MrCodeEU-LinuxHello's
// grpc.NewClient + insecure.NewCredentials() dial pattern.
type Client struct {
	conn *grpc.ClientConn
}

// Dial connects to a KServe/Triton-compatible inference server at address
// ("host:port"). The connection multiplexes concurrent calls safely, so a
// single Client is shared across all in-flight requests (§5).
func Dial(address string) (*Client, error) {
	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial triton at %s: %w", address, err)
	}
	return &Client{conn: conn}, nil
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func invoke[Req any, Resp any](ctx context.Context, c *Client, method string, req *Req, resp *Resp) error {
	fullMethod := fmt.Sprintf("/%s/%s", serviceName, method)
	if err := c.conn.Invoke(ctx, fullMethod, req, resp); err != nil {
		return err
	}
	return nil
}

func (c *Client) ServerLive(ctx context.Context) (*ServerLiveResponse, error) {
	resp := &ServerLiveResponse{}
	if err := invoke(ctx, c, "ServerLive", &ServerLiveRequest{}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) ServerReady(ctx context.Context) (*ServerReadyResponse, error) {
	resp := &ServerReadyResponse{}
	if err := invoke(ctx, c, "ServerReady", &ServerReadyRequest{}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) ModelReady(ctx context.Context, req ModelReadyRequest) (*ModelReadyResponse, error) {
	resp := &ModelReadyResponse{}
	if err := invoke(ctx, c, "ModelReady", &req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) ServerMetadata(ctx context.Context) (*ServerMetadataResponse, error) {
	resp := &ServerMetadataResponse{}
	if err := invoke(ctx, c, "ServerMetadata", &ServerMetadataRequest{}, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) ModelMetadata(ctx context.Context, req ModelMetadataRequest) (*ModelMetadataResponse, error) {
	resp := &ModelMetadataResponse{}
	if err := invoke(ctx, c, "ModelMetadata", &req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) ModelConfig(ctx context.Context, req ModelConfigRequest) (*ModelConfigResponse, error) {
	resp := &ModelConfigResponse{}
	if err := invoke(ctx, c, "ModelConfig", &req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) ModelInfer(ctx context.Context, req ModelInferRequest) (*ModelInferResponse, error) {
	resp := &ModelInferResponse{}
	if err := invoke(ctx, c, "ModelInfer", &req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) ModelStatistics(ctx context.Context, req ModelStatisticsRequest) (*ModelStatisticsResponse, error) {
	resp := &ModelStatisticsResponse{}
	if err := invoke(ctx, c, "ModelStatistics", &req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func (c *Client) RepositoryIndex(ctx context.Context, req RepositoryIndexRequest) (*RepositoryIndexResponse, error) {
	resp := &RepositoryIndexResponse{}
	if err := invoke(ctx, c, "RepositoryIndex", &req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}
