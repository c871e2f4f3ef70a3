package main

import (
	"bytes"
	"testing"

	"github.com/Pol1234589A/proyecto-rentia-sub003/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Flags(t *testing.T) {
	cmd := newRootCommand()

	require.NoError(t, cmd.ParseFlags([]string{"--fail-fast", "--dry-run", "--report", "out.xlsx", "--env", "x.env"}))

	failFast, err := cmd.Flags().GetBool("fail-fast")
	require.NoError(t, err)
	assert.True(t, failFast)

	report, err := cmd.Flags().GetString("report")
	require.NoError(t, err)
	assert.Equal(t, "out.xlsx", report)
}

func TestRootCommand_RejectsArgs(t *testing.T) {
	cmd := newRootCommand()
	cmd.SetArgs([]string{"unexpected"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	assert.Error(t, cmd.Execute())
}

func TestPrintSummary_ListsFailures(t *testing.T) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)

	report := &domain.ReconcileReport{
		Options: domain.ReconcileOptions{DryRun: true},
		Results: []domain.RecordResult{
			{RemoteID: "r-1", TenantName: "Ana", Outcome: domain.OutcomeCreated},
			{RemoteID: "r-2", TenantName: "Luis", Outcome: domain.OutcomeFailed, Reason: "db down"},
		},
	}
	report.Tally()

	printSummary(cmd, report)

	assert.Contains(t, out.String(), "dry-run")
	assert.Contains(t, out.String(), "created: 1")
	assert.Contains(t, out.String(), "! r-2 (Luis): db down")
	assert.NotContains(t, out.String(), "r-1 (Ana)")
}
