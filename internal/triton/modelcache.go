package triton

import (
	"context"
	"fmt"

	"github.com/okieraised/faceid-gateway/internal/apierr"
)

// ModelHandle caches a model's configuration (I/O names, element types,
// dims), fetched once at startup. LoadModel does not compare these against
// the shapes and element types the pipeline stages build; request-time code
// uses only the input and output names from it.
type ModelHandle struct {
	Name   string
	Config ModelConfig
}

// Input returns the i'th configured input descriptor, failing with
// ModelOutputInvalid if the model has fewer inputs than expected — this
// never happens against a correctly configured server, but a stale or
// mismatched model repository must not panic the gateway.
func (h *ModelHandle) Input(i int) (ModelIO, error) {
	if i >= len(h.Config.Input) {
		return ModelIO{}, apierr.New(apierr.ModelOutputInvalid, fmt.Sprintf("model %s: missing input %d", h.Name, i))
	}
	return h.Config.Input[i], nil
}

// LoadModel fetches and caches a model's configuration, failing the whole
// startup sequence (by design — a missing model should never be discovered
// lazily mid-request) if the server can't describe it.
func LoadModel(ctx context.Context, c *Client, name string) (*ModelHandle, error) {
	resp, err := c.ModelConfig(ctx, ModelConfigRequest{Name: name})
	if err != nil {
		return nil, apierr.Wrap(apierr.RemoteUnavailable, fmt.Sprintf("fetch model config for %s", name), err)
	}
	if resp.Config == nil {
		return nil, apierr.New(apierr.RemoteModelError, fmt.Sprintf("model %s: empty config", name))
	}
	return &ModelHandle{Name: name, Config: *resp.Config}, nil
}
