// Copyright (C) 2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package relayer

import (
	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	successfulTransferCount *prometheus.CounterVec
	failedTransferCount     *prometheus.CounterVec
	rateLimitedRequestCount prometheus.Counter
	rejectedRequestCount    prometheus.Counter
	submissionAttemptCount  prometheus.Counter
}

func NewMetrics(registerer prometheus.Registerer) *Metrics {
	m := Metrics{
		successfulTransferCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "successful_transfer_count",
				Help: "Number of transfer requests confirmed on the destination chain",
			},
			[]string{"destination_chain"},
		),
		failedTransferCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "failed_transfer_count",
				Help: "Number of transfer requests that reached the failed state",
			},
			[]string{"destination_chain", "failure_reason"},
		),
		rateLimitedRequestCount: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "rate_limited_request_count",
				Help: "Number of submissions rejected by the per-identity rate limiter",
			},
		),
		rejectedRequestCount: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "rejected_request_count",
				Help: "Number of submissions rejected by validation",
			},
		),
		submissionAttemptCount: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "submission_attempt_count",
				Help: "Number of chain submission attempts, including retries",
			},
		),
	}

	registerer.MustRegister(m.successfulTransferCount)
	registerer.MustRegister(m.failedTransferCount)
	registerer.MustRegister(m.rateLimitedRequestCount)
	registerer.MustRegister(m.rejectedRequestCount)
	registerer.MustRegister(m.submissionAttemptCount)

	return &m
}
