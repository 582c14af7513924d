package payments

import (
	"context"
	"fmt"

	"github.com/oduntan/giftregistry-backend/pkg/paystack"
)

// PaystackVerifier adapts the Paystack client to the reconciler's view of a
// gateway.
type PaystackVerifier struct {
	client *paystack.Client
}

// NewPaystackVerifier wraps the provided Paystack client.
func NewPaystackVerifier(client *paystack.Client) (*PaystackVerifier, error) {
	if client == nil {
		return nil, fmt.Errorf("paystack client required")
	}
	return &PaystackVerifier{client: client}, nil
}

func (v *PaystackVerifier) Verify(ctx context.Context, reference string) (*Verification, error) {
	result, err := v.client.Verify(ctx, reference)
	if err != nil {
		return nil, err
	}
	return &Verification{
		Reference:  result.Reference,
		Succeeded:  result.Succeeded(),
		AmountKobo: result.AmountKobo,
	}, nil
}
