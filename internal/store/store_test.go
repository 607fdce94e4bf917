package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tradepulse/internal/errors"
	"tradepulse/pkg/contracts/domain"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRunLifecycle(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	run := &domain.ProcessingRun{
		Job:        domain.JobIndicator,
		Status:     domain.RunPending,
		SourceFile: "indicators.xlsx",
		StoredFile: "uploads/abc.xlsx",
		CreatedBy:  "tester",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	seq, err := s.CreateRun(ctx, run)
	require.NoError(t, err)
	require.Positive(t, seq)

	got, err := s.GetRun(ctx, seq)
	require.NoError(t, err)
	assert.Equal(t, domain.JobIndicator, got.Job)
	assert.Equal(t, domain.RunPending, got.Status)
	assert.Equal(t, "indicators.xlsx", got.SourceFile)
	assert.True(t, got.StartedAt.IsZero())
	assert.Nil(t, got.FinishedAt)

	got.Status = domain.RunSucceeded
	got.ResultTable = TableIndicator
	got.RowCount = 42
	got.StartedAt = now
	finished := now.Add(time.Second)
	got.FinishedAt = &finished
	got.UpdatedAt = finished
	require.NoError(t, s.UpdateRun(ctx, got))

	got, err = s.GetRun(ctx, seq)
	require.NoError(t, err)
	assert.Equal(t, domain.RunSucceeded, got.Status)
	assert.Equal(t, int64(42), got.RowCount)
	require.NotNil(t, got.FinishedAt)
	assert.Equal(t, finished, got.FinishedAt.UTC())
}

func TestGetRun_NotFound(t *testing.T) {
	s := testStore(t)

	_, err := s.GetRun(context.Background(), 99)
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeDataNotFound, apperrors.CodeOf(err))

	err = s.UpdateRun(context.Background(), &domain.ProcessingRun{Seq: 99})
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeDataNotFound, apperrors.CodeOf(err))
}

func TestDeleteRun(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	seq, err := s.CreateRun(ctx, &domain.ProcessingRun{
		Job:    domain.JobIndicator,
		Status: domain.RunPending,
	})
	require.NoError(t, err)

	require.NoError(t, s.DeleteRun(ctx, seq))
	_, err = s.GetRun(ctx, seq)
	assert.Equal(t, apperrors.CodeDataNotFound, apperrors.CodeOf(err))

	err = s.DeleteRun(ctx, seq)
	assert.Equal(t, apperrors.CodeDataNotFound, apperrors.CodeOf(err))
}

func TestClaimRun(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	seq, err := s.CreateRun(ctx, &domain.ProcessingRun{
		Job:    domain.JobIndicator,
		Status: domain.RunPending,
	})
	require.NoError(t, err)

	claimed, err := s.ClaimRun(ctx, seq)
	require.NoError(t, err)
	assert.True(t, claimed)

	run, err := s.GetRun(ctx, seq)
	require.NoError(t, err)
	assert.Equal(t, domain.RunRunning, run.Status)

	claimed, err = s.ClaimRun(ctx, seq)
	require.NoError(t, err)
	assert.False(t, claimed, "a running run cannot be claimed again")

	claimed, err = s.ClaimRun(ctx, 999)
	require.NoError(t, err)
	assert.False(t, claimed, "absent runs cannot be claimed")
}

func TestReleaseRun(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	seq, err := s.CreateRun(ctx, &domain.ProcessingRun{
		Job:    domain.JobIndicator,
		Status: domain.RunPending,
	})
	require.NoError(t, err)

	claimed, err := s.ClaimRun(ctx, seq)
	require.NoError(t, err)
	require.True(t, claimed)

	require.NoError(t, s.ReleaseRun(ctx, seq))
	run, err := s.GetRun(ctx, seq)
	require.NoError(t, err)
	assert.Equal(t, domain.RunPending, run.Status)

	claimed, err = s.ClaimRun(ctx, seq)
	require.NoError(t, err)
	assert.True(t, claimed, "a released run can be claimed again")
}

func TestListRuns(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	for _, job := range []domain.Job{domain.JobIndicator, domain.JobTradePartner, domain.JobIndicator} {
		_, err := s.CreateRun(ctx, &domain.ProcessingRun{
			Job: job, Status: domain.RunPending, CreatedAt: now, UpdatedAt: now,
		})
		require.NoError(t, err)
	}

	runs, err := s.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	require.Len(t, runs, 3)
	// Newest first.
	assert.Greater(t, runs[0].Seq, runs[1].Seq)

	runs, err = s.ListRuns(ctx, RunFilter{Job: domain.JobIndicator})
	require.NoError(t, err)
	assert.Len(t, runs, 2)

	runs, err = s.ListRuns(ctx, RunFilter{Limit: 1})
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestReplaceIndicators(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	records := []domain.IndicatorRecord{
		{
			CountryCode: "DE",
			CountryName: "Germany",
			SeriesCode:  "DGDP",
			Values: map[string]domain.ClassifiedValue{
				"2023": domain.Actual(1.86),
				"2024": domain.Estimate(2.34),
				"2025": domain.Forecast(),
			},
		},
		{CountryCode: "DE", SeriesCode: "DCPI", Synthesized: true,
			Values: map[string]domain.ClassifiedValue{"2023": domain.Missing()}},
	}

	n, err := s.ReplaceIndicators(ctx, records, true)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := s.IndicatorSeries(ctx, "DE")
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Ordered by series code.
	assert.Equal(t, "DCPI", got[0].SeriesCode)
	assert.True(t, got[0].Synthesized)
	assert.Equal(t, domain.Actual(1.86), got[1].Values["2023"])
	assert.Equal(t, domain.Forecast(), got[1].Values["2025"])

	// An upsert without replaceAll keeps the other series.
	_, err = s.ReplaceIndicators(ctx, []domain.IndicatorRecord{
		{CountryCode: "DE", SeriesCode: "DGDP",
			Values: map[string]domain.ClassifiedValue{"2023": domain.Actual(2.0)}},
	}, false)
	require.NoError(t, err)

	got, err = s.IndicatorSeries(ctx, "DE")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, domain.Actual(2.0), got[1].Values["2023"])

	// replaceAll drops everything first.
	_, err = s.ReplaceIndicators(ctx, records[:1], true)
	require.NoError(t, err)
	got, err = s.IndicatorSeries(ctx, "DE")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestReplaceTradeProfiles(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	profiles := []domain.CountryTradeProfile{
		{
			CountryCode: "FR", CountryName: "France", Year: "2023",
			Rows: []domain.TradePairRow{
				{ExportPartner: "Germany", ExportRate: "40.000%", ImportPartner: "Spain", ImportRate: "60.000%"},
				{ExportPartner: "Italy", ExportRate: "35.000%", ImportRate: "0%"},
				{ExportPartner: "other", ExportRate: "25.000%", ImportPartner: "other", ImportRate: "40.000%"},
			},
		},
	}

	n, err := s.ReplaceTradeProfiles(ctx, profiles, true)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	got, err := s.TradeProfile(ctx, "FR")
	require.NoError(t, err)
	assert.Equal(t, "France", got.CountryName)
	assert.Equal(t, "2023", got.Year)
	require.Len(t, got.Rows, 3)
	assert.Equal(t, "Germany", got.Rows[0].ExportPartner)
	assert.Equal(t, "other", got.Rows[2].ImportPartner)

	// A shorter reload without replaceAll clears only that country.
	profiles[0].Rows = profiles[0].Rows[:1]
	_, err = s.ReplaceTradeProfiles(ctx, profiles, false)
	require.NoError(t, err)
	got, err = s.TradeProfile(ctx, "FR")
	require.NoError(t, err)
	assert.Len(t, got.Rows, 1)

	_, err = s.TradeProfile(ctx, "XX")
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeDataNotFound, apperrors.CodeOf(err))
}

func TestReplaceCustomsItems_DirectionScoped(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	exports := []domain.CustomsItemRow{
		{Year: "2023", Direction: domain.DirectionExport, NationCode: "US",
			NationName: "United States", Category: "반도체", Amount: 500},
	}
	imports := []domain.CustomsItemRow{
		{Year: "2023", Direction: domain.DirectionImport, NationCode: "US",
			NationName: "United States", Category: "원유", Amount: 900},
	}

	_, err := s.ReplaceCustomsItems(ctx, domain.DirectionExport, exports, true)
	require.NoError(t, err)
	_, err = s.ReplaceCustomsItems(ctx, domain.DirectionImport, imports, true)
	require.NoError(t, err)

	// Reloading exports with replaceAll must not touch import rows.
	_, err = s.ReplaceCustomsItems(ctx, domain.DirectionExport, exports, true)
	require.NoError(t, err)

	got, err := s.CustomsItemRows(ctx, "2023", domain.DirectionImport)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "원유", got[0].Category)
}

func TestReplaceCustomsCountry(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	rows := []domain.CustomsCountryRow{
		{Year: "2023", NationCode: "CN", NationName: "China", ExportAmt: 1244.5, ImportAmt: 1427.5, TradeAmt: -183},
		{Year: "2023", NationCode: "US", NationName: "United States", ExportAmt: 1157.1, ImportAmt: 712.3, TradeAmt: 444.8},
	}
	n, err := s.ReplaceCustomsCountry(ctx, rows, true)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := s.CustomsCountryRows(ctx, "2023")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "China", got[0].NationName)
	assert.Equal(t, 1244.5, got[0].ExportAmt)
}

func TestReplaceIndexScores_KindScoped(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	hdi := []domain.IndexScore{
		{Index: domain.IndexHumanDevelopment, CountryCode: "DE", CountryName: "Germany", Rank: 7},
	}
	cpi := []domain.IndexScore{
		{Index: domain.IndexCorruptionPerception, CountryCode: "DE", CountryName: "Germany", Rank: 9},
		{Index: domain.IndexCorruptionPerception, CountryCode: "KR", CountryName: "Korea", Rank: 32},
	}

	_, err := s.ReplaceIndexScores(ctx, domain.IndexHumanDevelopment, hdi, true)
	require.NoError(t, err)
	_, err = s.ReplaceIndexScores(ctx, domain.IndexCorruptionPerception, cpi, true)
	require.NoError(t, err)

	// Reloading one index leaves the other alone.
	_, err = s.ReplaceIndexScores(ctx, domain.IndexHumanDevelopment, hdi, true)
	require.NoError(t, err)

	got, err := s.IndexScores(ctx, domain.IndexCorruptionPerception)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 9, got[0].Rank)
	assert.Equal(t, "KR", got[1].CountryCode)
}
