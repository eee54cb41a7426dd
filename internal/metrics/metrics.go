// Package metrics defines and registers all custom Prometheus metrics for
// the lobby service. It is the single source of truth for metric names,
// labels, and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "lobby"

// LobbiesCreatedTotal counts successfully created lobbies.
var LobbiesCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lobbies_created_total",
		Help:      "Total number of lobbies created.",
	},
)

// PlayersJoinedTotal counts join operations that succeeded.
var PlayersJoinedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "players_joined_total",
		Help:      "Total number of players joining a lobby.",
	},
)

// VotesCastTotal counts accepted votes.
var VotesCastTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "votes_cast_total",
		Help:      "Total number of votes accepted.",
	},
)

// GamesConcludedTotal counts game conclusions by winning side.
// Label:
//   - winner: "citizens" or "impostors"
var GamesConcludedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "games_concluded_total",
		Help:      "Total number of games that reached a winner, by side.",
	},
	[]string{"winner"},
)

// StreamClients tracks currently open projection streams.
var StreamClients = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "stream_clients",
		Help:      "Number of currently connected projection stream clients.",
	},
)

// StoreCASRetriesTotal counts optimistic-concurrency retries in the lobby
// store. A rising rate means heavy write contention on single lobbies.
var StoreCASRetriesTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "store_cas_retries_total",
		Help:      "Total number of compare-and-set retries against the shared store.",
	},
)
