package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/climate-risk-etl/internal/domain"
)

const sitesJSON = `[
	{"site_id": "plant-7", "hazards": {"river_flood": {"hazard": 1, "exposure": 1, "vulnerability": 0.5, "base_aal": 0.1}}},
	{"site_id": "depot-2", "hazards": {"urban_flood": {"intensity_series": [0, 0, 0.5, 2.0]}}}
]`

func testAssessor() *domain.Assessor {
	reg := domain.DefaultRegistry()
	return domain.NewAssessor(reg, domain.NewIntegrator(reg), 0, slog.New(slog.DiscardHandler))
}

func TestAssessAll(t *testing.T) {
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	t.Cleanup(func() { domain.SetClock(nil) })

	var out bytes.Buffer
	n, err := assessAll(context.Background(), strings.NewReader(sitesJSON), &out, testAssessor(), true)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var got []domain.SiteAssessment
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "plant-7", got[0].SiteID)
	assert.Equal(t, "depot-2", got[1].SiteID)
	assert.InDelta(t, 0.1875, got[1].Hazards[0].AAL.BaseAAL, 1e-9)
	assert.True(t, got[0].AssessedAt.Equal(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	assert.Contains(t, out.String(), "\n  {", "pretty output is indented")
}

func TestAssessAll_Reproducible(t *testing.T) {
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)))
	t.Cleanup(func() { domain.SetClock(nil) })

	var first, second bytes.Buffer
	_, err := assessAll(context.Background(), strings.NewReader(sitesJSON), &first, testAssessor(), false)
	require.NoError(t, err)
	_, err = assessAll(context.Background(), strings.NewReader(sitesJSON), &second, testAssessor(), false)
	require.NoError(t, err)
	assert.Equal(t, first.String(), second.String())
}

func TestAssessAll_Errors(t *testing.T) {
	_, err := assessAll(context.Background(), strings.NewReader(`{"site_id": "x"}`), &bytes.Buffer{}, testAssessor(), false)
	assert.ErrorContains(t, err, "decode site requests")

	_, err = assessAll(context.Background(), strings.NewReader(`[{"site_id": "a"}, {"name": "no id"}]`), &bytes.Buffer{}, testAssessor(), false)
	assert.ErrorContains(t, err, "site request 1")
}

func TestRootCommand_Files(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "sites.json")
	out := filepath.Join(dir, "assessments.json")
	require.NoError(t, os.WriteFile(in, []byte(sitesJSON), 0o600))

	var stderr bytes.Buffer
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs([]string{"--in", in, "--out", out, "--assessed-at", "2026-02-01T08:00:00Z"})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })

	require.NoError(t, rootCmd.Execute())

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var got []domain.SiteAssessment
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 2)
	assert.True(t, got[0].AssessedAt.Equal(time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)))
	assert.Contains(t, stderr.String(), "assessment complete")
}
