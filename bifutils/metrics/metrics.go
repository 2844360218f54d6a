// SPDX-FileCopyrightText: 2025 SAP SE or an SAP affiliate company and IronCore contributors
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"sigs.k8s.io/controller-runtime/pkg/metrics"
)

const (
	GrantResultNoAgent        = "no_agent"
	GrantResultAlreadyGranted = "already_granted"
	GrantResultGranted        = "granted"
	GrantResultTimeout        = "timeout"
	GrantResultCanceled       = "canceled"
)

var (
	GrantRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bif",
			Subsystem: "erot",
			Name:      "grant_requests_total",
			Help:      "Number of EEPROM grant requests by outcome.",
		},
		[]string{"result"},
	)

	RegisterMapInits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bif",
			Subsystem: "xve",
			Name:      "register_map_inits_total",
			Help:      "Number of register map initializations by function role and outcome.",
		},
		[]string{"role", "result"},
	)

	VectorTableAllocations = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "bif",
			Subsystem: "xve",
			Name:      "vector_table_allocations_total",
			Help:      "Number of MSI-X vector control shadow tables allocated.",
		},
	)
)

func init() {
	metrics.Registry.MustRegister(GrantRequests, RegisterMapInits, VectorTableAllocations)
}
