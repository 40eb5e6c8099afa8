package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/articflow/agentlink/internal/config"
	"github.com/articflow/agentlink/internal/model"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	c := &config.Config{}
	c.Domain.APIKey = "key"
	c.Domain.BaseURL = "http://127.0.0.1:0"
	c.Domain.RequestsPerSecond = 5
	c.Webhooks.TimeoutSecs = 1
	c.Webhooks.FailureThreshold = 3
	c.Webhooks.ResetTimeoutSecs = 10
	c.Report.TopN = 5
	c.Store.Driver = "sqlite"
	c.Store.SQLitePath = filepath.Join(t.TempDir(), "agentlink.db")
	return c
}

func TestInitStore_SQLite(t *testing.T) {
	ctx := context.Background()
	st, err := initStore(ctx, testConfig(t))
	require.NoError(t, err)
	defer st.Close() //nolint:errcheck

	job, err := st.CreateJob(ctx, model.JobKindAgents, "Manly", nil)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatusProcessing, job.Status)
}

func TestInitStore_UnknownDriver(t *testing.T) {
	c := testConfig(t)
	c.Store.Driver = "mysql"

	_, err := initStore(context.Background(), c)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store driver")
}

func TestInitPipeline_Defaults(t *testing.T) {
	p, breakers, err := initPipeline(testConfig(t))
	require.NoError(t, err)
	assert.NotNil(t, p)
	assert.NotNil(t, breakers)
}

func TestInitPipeline_BadRatesFile(t *testing.T) {
	c := testConfig(t)
	c.Commission.RatesFile = filepath.Join(t.TempDir(), "missing.xlsx")

	_, _, err := initPipeline(c)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "load commission rates")
}

func TestInitPipeline_FranchiseFile(t *testing.T) {
	c := testConfig(t)
	c.Franchise.File = filepath.Join(t.TempDir(), "franchises.yaml")
	require.NoError(t, os.WriteFile(c.Franchise.File, []byte("franchises:\n  - ray white\n  - belle property\n"), 0644))

	p, _, err := initPipeline(c)
	require.NoError(t, err)
	assert.NotNil(t, p)

	require.NoError(t, os.WriteFile(c.Franchise.File, []byte("franchises: []\n"), 0644))
	_, _, err = initPipeline(c)
	assert.Error(t, err)
}
