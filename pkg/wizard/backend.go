package wizard

import (
	"context"
	"fmt"

	"beam/pkg/beamclient"
)

// BeamBackend adapts the typed API client to the Backend interface, mapping
// each step name to its endpoint.
type BeamBackend struct {
	client *beamclient.Client
}

func NewBeamBackend(client *beamclient.Client) *BeamBackend {
	return &BeamBackend{client: client}
}

func (b *BeamBackend) Init(ctx context.Context) (string, error) {
	resp, err := b.client.Init(ctx)
	if err != nil {
		return "", err
	}
	return resp.CompanyID, nil
}

func (b *BeamBackend) SubmitStep(ctx context.Context, sessionID string, step StepDefinition, values map[string]string) error {
	switch step.Name {
	case "company_info":
		_, err := b.client.SubmitStep1(ctx, sessionID, toPayload(values))
		return err
	case "business_details":
		_, err := b.client.SubmitStep2(ctx, sessionID, toPayload(values))
		return err
	case "documents":
		_, err := b.client.CompleteDocuments(ctx, sessionID)
		return err
	case "plan":
		_, err := b.client.SelectPlan(ctx, sessionID, values["plan_id"], values["billing_cycle"])
		return err
	default:
		return fmt.Errorf("wizard: no endpoint for step %q", step.Name)
	}
}

func (b *BeamBackend) UploadDocument(ctx context.Context, sessionID, docType, fileName string, content []byte) (string, error) {
	doc, err := b.client.UploadDocument(ctx, sessionID, docType, fileName, content)
	if err != nil {
		return "", err
	}
	return doc.ID, nil
}

func (b *BeamBackend) Finalize(ctx context.Context, sessionID string) error {
	return b.client.Finalize(ctx, sessionID)
}

// toPayload drops empty optional values so the server sees them as absent
// rather than as empty strings.
func toPayload(values map[string]string) map[string]any {
	payload := make(map[string]any, len(values))
	for k, v := range values {
		if v != "" {
			payload[k] = v
		}
	}
	return payload
}
