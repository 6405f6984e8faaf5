/*
scenarios_test.go - Tests for demo scenarios

PURPOSE:
	Checks that each scenario leaves the store in the state its description
	promises, and that the scenario endpoints behave.
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/price-engine/pricing"
)

func TestScenario_AllLoadWithoutError(t *testing.T) {
	for _, sc := range scenarios {
		t.Run(sc.ID, func(t *testing.T) {
			s := setupTestServer(t)

			rec := s.do(t, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: sc.ID})

			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			resp := decodeBody[LoadScenarioResponse](t, rec)
			assert.Equal(t, "loaded", resp.Status)
			assert.NotEmpty(t, resp.RuleIDs)

			current := decodeBody[map[string]ScenarioDTO](t, s.do(t, http.MethodGet, "/api/scenarios/current", nil))
			assert.Equal(t, sc.ID, current["scenario"].ID)
		})
	}
}

func TestScenario_Seasonal(t *testing.T) {
	// GIVEN/WHEN: The seasonal calendar is loaded
	s := setupTestServer(t)
	ids := s.load(t, "seasonal")
	ctx := context.Background()

	// THEN: The load-time status check placed every rule
	want := []pricing.Status{pricing.StatusScheduled, pricing.StatusActive, pricing.StatusExpired}
	for i, id := range ids {
		rule, err := s.handler.Store.GetRule(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want[i], rule.Status, rule.Name)
	}
}

func TestScenario_OrphansSkipStatusCheck(t *testing.T) {
	s := setupTestServer(t)
	ids := s.load(t, "orphans")
	ctx := context.Background()

	// Only the coffee rule survives
	require.Len(t, ids, 1)
	rules, err := s.handler.Store.ListRules(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "Coffee bulk", rules[0].Name)

	counts, err := s.handler.Store.CountChildren(ctx)
	require.NoError(t, err)
	assert.Equal(t, pricing.ChildCounts{QuantityRanges: 6, RuleItems: 2, Exclusions: 1, GiftProducts: 1}, counts)
}

func TestScenario_LoadReplacesPrevious(t *testing.T) {
	s := setupTestServer(t)
	s.load(t, "seasonal")
	s.load(t, "member-pricing")

	rules, err := s.handler.Store.ListRules(context.Background())
	require.NoError(t, err)
	assert.Len(t, rules, 2)
}

func TestScenario_ConcurrentLoadsStayConsistent(t *testing.T) {
	// GIVEN: Two scenarios with different rule counts
	s := setupTestServer(t)
	want := map[string]int{
		"seasonal":   len(seasonalRules(testNow)),
		"bulk-tiers": len(bulkTierRules(testNow)),
	}

	// WHEN: Loading both and reading the current scenario from many goroutines
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		id := "seasonal"
		if i%2 == 1 {
			id = "bulk-tiers"
		}
		wg.Add(2)
		go func() {
			defer wg.Done()
			body, _ := json.Marshal(LoadScenarioRequest{ScenarioID: id})
			rec := httptest.NewRecorder()
			s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/scenarios/load", bytes.NewReader(body)))
			assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		}()
		go func() {
			defer wg.Done()
			rec := httptest.NewRecorder()
			s.router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/scenarios/current", nil))
			assert.Equal(t, http.StatusOK, rec.Code)
		}()
	}
	wg.Wait()

	// THEN: The store holds exactly the rules of the reported scenario
	current := decodeBody[map[string]ScenarioDTO](t, s.do(t, http.MethodGet, "/api/scenarios/current", nil))
	id := current["scenario"].ID
	require.Contains(t, want, id)

	rules, err := s.handler.Store.ListRules(context.Background())
	require.NoError(t, err)
	assert.Len(t, rules, want[id])
}

func TestScenario_UnknownAndBadBody(t *testing.T) {
	s := setupTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/scenarios/load", LoadScenarioRequest{ScenarioID: "black-friday"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/scenarios/load", "not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScenario_ListAndReset(t *testing.T) {
	s := setupTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/scenarios", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]ScenarioDTO](t, rec), len(scenarios))

	s.load(t, "bulk-tiers")
	rec = s.do(t, http.MethodPost, "/api/scenarios/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rules, err := s.handler.Store.ListRules(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rules)

	rec = s.do(t, http.MethodGet, "/api/scenarios/current", nil)
	assert.JSONEq(t, `{"scenario":null}`, rec.Body.String())
}

func TestSeedRules(t *testing.T) {
	s := setupTestServer(t)

	ids, err := s.handler.SeedRules(context.Background(), []byte(`[
		{"name": "Seeded", "discount_type": "percentage", "discount_value": "10", "product_ids": [101]},
		{"name": "Later", "discount_type": "fixed", "discount_value": 2, "schedule_from": "2027-01-01T00:00:00Z"}
	]`))
	require.NoError(t, err)
	require.Len(t, ids, 2)

	later, err := s.handler.Store.GetRule(context.Background(), ids[1])
	require.NoError(t, err)
	assert.Equal(t, pricing.StatusScheduled, later.Status)

	_, err = s.handler.SeedRules(context.Background(), []byte(`[{"name":"bad","discount_type":"fixed","discount_value":1,"condition":"nope +"}]`))
	assert.True(t, pricing.IsClientError(err))
}
