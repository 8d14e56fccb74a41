package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// VaultsCreated counts vault registrations by network
	VaultsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_vaults_created_total",
			Help: "Total number of vaults registered",
		},
		[]string{"network"},
	)

	// VotesRecorded counts mirrored votes by vote type
	VotesRecorded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_votes_recorded_total",
			Help: "Total number of loan votes recorded",
		},
		[]string{"vote_type"},
	)

	// RepaymentsRecorded counts mirrored repayments
	RepaymentsRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_repayments_recorded_total",
			Help: "Total number of loan repayments recorded",
		},
	)

	// ProposalsRegistered counts loan proposal registrations
	ProposalsRegistered = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_proposals_registered_total",
			Help: "Total number of loan proposals registered",
		},
	)

	// MirrorConflicts counts rejected duplicate mirror writes by resource
	MirrorConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_mirror_conflicts_total",
			Help: "Total number of duplicate mirror writes rejected",
		},
		[]string{"resource"},
	)

	// ChainReadErrors counts failed read-only contract calls
	ChainReadErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_chain_read_errors_total",
			Help: "Total number of failed on-chain read calls",
		},
		[]string{"call"},
	)
)
