package sheetsync

import (
	"errors"
	"sync"
	"time"

	"orderhub/feed"
	"orderhub/persistence"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
)

var (
	lock    sync.Mutex
	running bool

	ErrSyncRunning = errors.New("a sheet sync is already running")

	FetchFeedFunc = FetchFeed
	SyncRunFunc   = SyncRun

	lastRunLock sync.Mutex
	lastRun     *RunRecord
)

type SyncRequest struct {
	Purge    bool   `json:"purge"`
	SheetURL string `json:"sheetUrl"`
}

type RunRecord struct {
	Time   types.Timestamp `json:"time"`
	Report *Report         `json:"report"`
	Error  string          `json:"error,omitempty"`
}

// SyncRun executes one synchronization pass: fetch, decode, normalize,
// reconcile. Runs within this process are mutually excluded; a partial failure
// aborts the remainder without rolling back applied rows, and the next run
// re-converges since every row is keyed by its resolved identity.
func SyncRun(req SyncRequest) (*Report, error) {
	lock.Lock()
	if running {
		lock.Unlock()
		return nil, ErrSyncRunning
	}
	running = true
	lock.Unlock()
	defer func() {
		lock.Lock()
		running = false
		lock.Unlock()
	}()

	report, err := syncOnce(req)
	recordRun(report, err)
	return report, err
}

func syncOnce(req SyncRequest) (*Report, error) {
	url := req.SheetURL
	if url == "" && ActiveFeedConfig != nil {
		url = ActiveFeedConfig.DefaultSheetURL
	}
	if url == "" {
		return nil, errors.New("no sheet feed url configured")
	}

	data, variant, err := FetchFeedFunc(url)
	if err != nil {
		return nil, err
	}
	rows, totalRows, err := feed.Decode(data, variant)
	if err != nil {
		return nil, err
	}

	parsed := BuildParsedOrders(rows, time.Now())
	db := persistence.ActiveDataSourceManager.GormDB()
	report, err := ReconcileFunc(db, parsed, totalRows, req.Purge)
	if err != nil {
		return nil, err
	}

	logrus.Infof("sheet sync finished: %d rows, %d inserted, %d updated, %d purged",
		report.TotalRows, report.Inserted, report.Updated, report.Purged)
	return report, nil
}

func recordRun(report *Report, err error) {
	record := RunRecord{Time: types.CurrentTimestamp(), Report: report}
	if err != nil {
		record.Error = err.Error()
	}
	lastRunLock.Lock()
	lastRun = &record
	lastRunLock.Unlock()
}

func LastRun() *RunRecord {
	lastRunLock.Lock()
	defer lastRunLock.Unlock()
	return lastRun
}
