package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to TicketStatus
		want     bool
	}{
		{TicketStatusOpen, TicketStatusInProgress, true},
		{TicketStatusOpen, TicketStatusClosed, true},
		{TicketStatusOpen, TicketStatusResolved, false},
		{TicketStatusInProgress, TicketStatusInProgress, true},
		{TicketStatusInProgress, TicketStatusEscalated, true},
		{TicketStatusInProgress, TicketStatusResolved, true},
		{TicketStatusInProgress, TicketStatusClosed, true},
		{TicketStatusInProgress, TicketStatusOpen, false},
		{TicketStatusEscalated, TicketStatusInProgress, true},
		{TicketStatusEscalated, TicketStatusEscalated, true},
		{TicketStatusEscalated, TicketStatusResolved, true},
		{TicketStatusEscalated, TicketStatusClosed, true},
		{TicketStatusResolved, TicketStatusClosed, false},
		{TicketStatusResolved, TicketStatusInProgress, false},
		{TicketStatusClosed, TicketStatusInProgress, false},
		{TicketStatusClosed, TicketStatusResolved, false},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTerminalStatuses(t *testing.T) {
	require.True(t, TicketStatusResolved.Terminal())
	require.True(t, TicketStatusClosed.Terminal())
	require.False(t, TicketStatusOpen.Terminal())
	require.False(t, TicketStatusInProgress.Terminal())
	require.False(t, TicketStatusEscalated.Terminal())
}

func TestUrgencyForTier(t *testing.T) {
	require.Equal(t, UrgencyNormal, UrgencyForTier(TierStandard))
	require.Equal(t, UrgencyHigh, UrgencyForTier(TierPremium))
	require.Equal(t, UrgencyCritical, UrgencyForTier(TierVIP))
	require.Equal(t, UrgencyNormal, UrgencyForTier(CustomerTier("unknown")))
}

func TestCategoryForProduct(t *testing.T) {
	for name, want := range map[string]Category{
		"Model S":    CategoryModelS,
		"Model 3":    CategoryModel3,
		"Model X":    CategoryModelX,
		"Model Y":    CategoryModelY,
		"Cybertruck": CategoryCybertruck,
	} {
		got, ok := CategoryForProduct(name)
		require.True(t, ok, name)
		require.Equal(t, want, got)
	}

	_, ok := CategoryForProduct("Roadster")
	require.False(t, ok)
}

func TestEngineerAvailable(t *testing.T) {
	e := Engineer{CurrentTickets: 2, MaxTickets: 3}
	require.True(t, e.Available())

	e.CurrentTickets = 3
	require.False(t, e.Available())
}
