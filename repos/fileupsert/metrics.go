/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package fileupsert

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeSuccess      = "success"
	outcomeFileNotFound = "file_not_found"
	outcomeNoToken      = "no_token"
	outcomeError        = "error"
)

var mUpserts = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ghagent_file_upserts_total",
		Help: "The number of file upserts, by the action taken and the outcome.",
	},
	[]string{"action", "outcome"},
)

func record(res Result, outcome string) Result {
	action := string(res.Action)
	if action == "" {
		action = "none"
	}
	mUpserts.With(prometheus.Labels{"action": action, "outcome": outcome}).Inc()
	return res
}
