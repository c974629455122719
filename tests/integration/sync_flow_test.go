package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	appintegration "github.com/commercesync/backend/internal/application/integration"
	"github.com/commercesync/backend/internal/domain/integration"
	"github.com/commercesync/backend/internal/infrastructure/ecommerce"
	"github.com/commercesync/backend/internal/infrastructure/persistence"
	"github.com/commercesync/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// ---------------------------------------------------------------------------
// Fake platforms
// ---------------------------------------------------------------------------

// fakeGenuka serves one page per module and stores write-backs
type fakeGenuka struct {
	mu   sync.Mutex
	docs map[string][]testutil.Document
}

func newFakeGenuka(t *testing.T, docs map[string][]testutil.Document) (*fakeGenuka, *httptest.Server) {
	g := &fakeGenuka{docs: docs}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /2023-11/admin/{module}", func(w http.ResponseWriter, r *http.Request) {
		g.mu.Lock()
		defer g.mu.Unlock()
		writeJSON(t, w, http.StatusOK, testutil.Page(g.docs[r.PathValue("module")], 1, 1))
	})
	mux.HandleFunc("PUT /2023-11/admin/{module}/{id}", func(w http.ResponseWriter, r *http.Request) {
		var doc testutil.Document
		if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		g.mu.Lock()
		defer g.mu.Unlock()
		list := g.docs[r.PathValue("module")]
		for i := range list {
			if list[i].ID() == r.PathValue("id") {
				list[i] = doc
				writeJSON(t, w, http.StatusOK, doc)
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return g, server
}

func (g *fakeGenuka) metadata(module, id string) map[string]any {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, d := range g.docs[module] {
		if d.ID() == id {
			md, _ := d["metadata"].(map[string]any)
			return md
		}
	}
	return nil
}

// fakeWooCommerce keeps created entities in memory and counts writes
type fakeWooCommerce struct {
	mu        sync.Mutex
	nextID    int64
	products  map[int64]map[string]any
	customers map[int64]map[string]any
	creates   int
	updates   int
}

func newFakeWooCommerce(t *testing.T) (*fakeWooCommerce, *httptest.Server) {
	s := &fakeWooCommerce{
		nextID:    100,
		products:  map[int64]map[string]any{},
		customers: map[int64]map[string]any{},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /wp-json/wc/v3/{collection}", func(w http.ResponseWriter, r *http.Request) {
		s.save(t, w, r, 0)
	})
	mux.HandleFunc("PUT /wp-json/wc/v3/{collection}/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		s.save(t, w, r, id)
	})
	mux.HandleFunc("GET /wp-json/wc/v3/customers", func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		defer s.mu.Unlock()
		found := []map[string]any{}
		for _, c := range s.customers {
			if c["email"] == r.URL.Query().Get("email") {
				found = append(found, c)
			}
		}
		writeJSON(t, w, http.StatusOK, found)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return s, server
}

func (s *fakeWooCommerce) save(t *testing.T, w http.ResponseWriter, r *http.Request, id int64) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	store := s.products
	if r.PathValue("collection") == "customers" {
		store = s.customers
	}
	if id == 0 {
		s.nextID++
		id = s.nextID
		s.creates++
	} else {
		if _, ok := store[id]; !ok {
			writeJSON(t, w, http.StatusNotFound, map[string]any{"code": "not_found", "message": "Invalid ID."})
			return
		}
		s.updates++
	}
	body["id"] = id
	store[id] = body
	writeJSON(t, w, http.StatusCreated, body)
}

func (s *fakeWooCommerce) counts() (creates, updates int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creates, s.updates
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

// ---------------------------------------------------------------------------
// Flow
// ---------------------------------------------------------------------------

type syncFlow struct {
	service *appintegration.SyncService
	logs    *persistence.GormSyncLogRepository
	tenants *persistence.GormTenantRepository
	genuka  *fakeGenuka
	woo     *fakeWooCommerce
}

func newSyncFlow(t *testing.T, testDB *TestDB, tenantID string, docs map[string][]testutil.Document) *syncFlow {
	t.Helper()
	genuka, genukaServer := newFakeGenuka(t, docs)
	woo, wooServer := newFakeWooCommerce(t)

	tenants := persistence.NewGormTenantRepository(testDB.DB, newCipher(t))
	logs := persistence.NewGormSyncLogRepository(testDB.DB)
	now := time.Now().UTC()
	require.NoError(t, tenants.Upsert(context.Background(), &integration.Tenant{
		ID:          tenantID,
		Name:        "Flow Shop",
		AccessToken: "source-token",
		Target: &integration.TargetCredentials{
			BaseURL:        wooServer.URL,
			ConsumerKey:    "ck_flow",
			ConsumerSecret: "cs_flow",
		},
		CreatedAt: now,
		UpdatedAt: now,
	}))

	httpCfg := ecommerce.HTTPConfig{Timeout: 5 * time.Second, RetryBackoff: time.Millisecond}
	genukaCfg := ecommerce.NewGenukaConfig("client-id", "client-secret", "")
	genukaCfg.APIBaseURL = genukaServer.URL
	genukaCfg.HTTP = httpCfg
	log := zaptest.NewLogger(t)
	connector, err := ecommerce.NewConnector(genukaCfg, httpCfg, log)
	require.NoError(t, err)

	return &syncFlow{
		service: appintegration.NewSyncService(appintegration.SyncServiceConfig{
			Tenants:         tenants,
			Logs:            logs,
			SourceConnector: connector,
			TargetConnector: connector,
			Logger:          log,
		}),
		logs:    logs,
		tenants: tenants,
		genuka:  genuka,
		woo:     woo,
	}
}

// TestSyncFlow_Integration runs batch syncs through the real platform
// clients, against fake SOURCE and TARGET servers, persisting to PostgreSQL.
func TestSyncFlow_Integration(t *testing.T) {
	testDB := NewSharedTestDB(t)
	ctx := context.Background()
	tenantID := "tenant-flow-" + testutil.NewFixtures("", 31).Faker().LetterN(6)
	fx := testutil.NewFixtures(tenantID, 32)

	products := []testutil.Document{fx.Product(), fx.Product()}
	customers := []testutil.Document{fx.Customer(), fx.Customer(), fx.Customer()}
	flow := newSyncFlow(t, testDB, tenantID, map[string][]testutil.Document{
		"products":  products,
		"customers": customers,
	})

	t.Run("first run creates and links every entity", func(t *testing.T) {
		report, err := flow.service.SyncTenant(ctx, tenantID, integration.SyncModuleProducts, integration.SyncModuleCustomers)
		require.NoError(t, err)
		require.Len(t, report.Results, 2)
		for _, r := range report.Results {
			assert.Equal(t, integration.SyncStatusSuccess, r.Status, "module %s", r.Module)
			assert.Zero(t, r.FailedCount)
		}
		assert.Equal(t, 2, report.Results[0].SuccessCount)
		assert.Equal(t, 3, report.Results[1].SuccessCount)
		creates, _ := flow.woo.counts()
		assert.Equal(t, 5, creates)

		for _, c := range customers {
			md := flow.genuka.metadata("customers", c.ID())
			require.NotNil(t, md)
			assert.NotZero(t, md[integration.MetadataKeyTargetID], "customer %s not linked", c.ID())
			assert.NotZero(t, md[integration.MetadataKeyDateLastSync])
		}
	})

	t.Run("second run updates the linked entities", func(t *testing.T) {
		report, err := flow.service.SyncTenant(ctx, tenantID, integration.SyncModuleProducts, integration.SyncModuleCustomers)
		require.NoError(t, err)
		for _, r := range report.Results {
			assert.Equal(t, integration.SyncStatusSuccess, r.Status)
		}
		creates, updates := flow.woo.counts()
		assert.Equal(t, 5, creates)
		assert.Equal(t, 5, updates)
	})

	t.Run("sync log holds one entry per attempt", func(t *testing.T) {
		entries, total, err := flow.logs.ListForTenant(ctx, tenantID, integration.SyncLogFilter{Limit: 100})
		require.NoError(t, err)
		assert.Equal(t, int64(10), total)

		counts := map[integration.SyncAction]int{}
		for _, e := range entries {
			assert.Equal(t, integration.SyncOutcomeSuccess, e.Outcome)
			counts[e.Action]++
		}
		assert.Equal(t, 5, counts[integration.SyncActionCreate])
		assert.Equal(t, 5, counts[integration.SyncActionUpdate])
	})
}

// TestSyncFlow_ExistingCustomerAdopted checks that a TARGET customer with
// the same email is updated rather than duplicated.
func TestSyncFlow_ExistingCustomerAdopted(t *testing.T) {
	testDB := NewSharedTestDB(t)
	ctx := context.Background()
	tenantID := "tenant-adopt-" + testutil.NewFixtures("", 41).Faker().LetterN(6)
	customer := testutil.NewFixtures(tenantID, 42).Customer()

	flow := newSyncFlow(t, testDB, tenantID, map[string][]testutil.Document{
		"customers": {customer},
	})
	flow.woo.customers[77] = map[string]any{"id": 77, "email": customer["email"]}

	report, err := flow.service.SyncTenant(ctx, tenantID, integration.SyncModuleCustomers)
	require.NoError(t, err)
	require.Len(t, report.Results, 1)
	assert.Equal(t, integration.SyncStatusSuccess, report.Results[0].Status)
	creates, updates := flow.woo.counts()
	assert.Zero(t, creates)
	assert.Equal(t, 1, updates)
	assert.EqualValues(t, 77, flow.genuka.metadata("customers", customer.ID())[integration.MetadataKeyTargetID])
}

// TestSyncFlow_SweepSkipsUnconfiguredTenants checks SyncAll over a mix of
// configured and unconfigured tenants.
func TestSyncFlow_SweepSkipsUnconfiguredTenants(t *testing.T) {
	testDB := NewTestDB(t)
	ctx := context.Background()
	fx := testutil.NewFixtures("tenant-sweep", 51)

	flow := newSyncFlow(t, testDB, "tenant-sweep", map[string][]testutil.Document{
		"products": {fx.Product()},
	})
	require.NoError(t, flow.tenants.Upsert(ctx, &integration.Tenant{
		ID: "tenant-pending", AccessToken: "token", CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}))

	sweep, err := flow.service.SyncAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, sweep.Tenants)
	assert.Equal(t, 1, sweep.Succeeded)
	assert.Equal(t, 1, sweep.Skipped)
	assert.Zero(t, sweep.Failed)
	creates, _ := flow.woo.counts()
	assert.Equal(t, 1, creates)
}
