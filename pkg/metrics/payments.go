package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PaymentMetrics records gateway and reconciliation activity.
type PaymentMetrics struct {
	gatewayRequests   *prometheus.CounterVec
	gatewayFailures   *prometheus.CounterVec
	webhookEvents     *prometheus.CounterVec
	alreadyReconciled prometheus.Counter
}

// NewPaymentMetrics registers the payment metrics on the provided registerer.
func NewPaymentMetrics(reg prometheus.Registerer) *PaymentMetrics {
	if reg == nil {
		return &PaymentMetrics{}
	}
	gatewayRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_gateway_requests",
		Help: "Paystack API calls by operation.",
	}, []string{"operation"})
	gatewayFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_gateway_failures",
		Help: "Failed Paystack API calls by operation.",
	}, []string{"operation"})
	webhookEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_webhook_events",
		Help: "Webhook deliveries by outcome.",
	}, []string{"outcome"})
	alreadyReconciled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "payment_already_reconciled",
		Help: "Reconciliation attempts short-circuited because the transaction was already paid.",
	})
	reg.MustRegister(gatewayRequests, gatewayFailures, webhookEvents, alreadyReconciled)
	return &PaymentMetrics{
		gatewayRequests:   gatewayRequests,
		gatewayFailures:   gatewayFailures,
		webhookEvents:     webhookEvents,
		alreadyReconciled: alreadyReconciled,
	}
}

// IncGatewayRequest counts one gateway call for the named operation.
func (p *PaymentMetrics) IncGatewayRequest(operation string) {
	if p == nil || p.gatewayRequests == nil {
		return
	}
	p.gatewayRequests.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncGatewayFailure counts one failed gateway call for the named operation.
func (p *PaymentMetrics) IncGatewayFailure(operation string) {
	if p == nil || p.gatewayFailures == nil {
		return
	}
	p.gatewayFailures.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncWebhookEvent counts one webhook delivery with its outcome.
func (p *PaymentMetrics) IncWebhookEvent(outcome string) {
	if p == nil || p.webhookEvents == nil {
		return
	}
	p.webhookEvents.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncAlreadyReconciled counts a duplicate delivery that found the transaction paid.
func (p *PaymentMetrics) IncAlreadyReconciled() {
	if p == nil || p.alreadyReconciled == nil {
		return
	}
	p.alreadyReconciled.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
