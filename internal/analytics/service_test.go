package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngocvh/backend-cho/internal/store"
)

type fakeQuerier struct {
	salesCalls int
	topCalls   int
	sales      []store.DailySalesRow
	statuses   map[string]int64
	top        []store.TopItemRow
}

func (f *fakeQuerier) GetDailySales(context.Context, time.Time, time.Time) ([]store.DailySalesRow, error) {
	f.salesCalls++
	return f.sales, nil
}

func (f *fakeQuerier) CountOrdersByStatus(context.Context) (map[string]int64, error) {
	return f.statuses, nil
}

func (f *fakeQuerier) GetTopItems(context.Context, int32, int32) ([]store.TopItemRow, error) {
	f.topCalls++
	return f.top, nil
}

func newService(t *testing.T, q Querier) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return &Service{Q: q, R: client, TTL: time.Minute}
}

func TestSalesRangeCachesSecondRead(t *testing.T) {
	q := &fakeQuerier{sales: []store.DailySalesRow{{Orders: 3, Gross: 180000}}}
	svc := newService(t, q)

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 7)

	first, err := svc.SalesRange(context.Background(), from, to)
	require.NoError(t, err)
	second, err := svc.SalesRange(context.Background(), from, to)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, q.salesCalls)
}

func TestGetOverviewCombinesStatusesAndSeries(t *testing.T) {
	q := &fakeQuerier{
		statuses: map[string]int64{"pending": 2, "completed": 5},
		sales:    []store.DailySalesRow{{Orders: 5, Gross: 450000, Discount: 20000}},
	}
	svc := newService(t, q)

	overview, err := svc.GetOverview(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), overview.Statuses["completed"])
	require.Len(t, overview.Last7, 1)
	assert.Equal(t, int64(450000), overview.Last7[0].Gross)
}

func TestTopItemsDefaultsLimit(t *testing.T) {
	q := &fakeQuerier{top: []store.TopItemRow{{ItemID: "i1", Name: "pho bo", QtySold: 12}}}
	svc := newService(t, q)

	rows, err := svc.TopItems(context.Background(), 0, -3)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "pho bo", rows[0].Name)
	assert.Equal(t, 1, q.topCalls)
}
