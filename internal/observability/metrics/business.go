package metrics

import "time"

// RecordRefresh records the outcome of one refresh cycle for a collection.
func RecordRefresh(collection string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	RefreshTotal.WithLabelValues(collection, status).Inc()
	RefreshDuration.WithLabelValues(collection).Observe(duration.Seconds())
}

// RecordRecordsFetched records the number of records fetched from the portal
// for a collection.
func RecordRecordsFetched(collection string, count int) {
	RecordsFetchedTotal.WithLabelValues(collection).Add(float64(count))
}

// RecordRefreshTrigger records what started a refresh: "empty_cache" when a
// read found no local data, "scheduled" for the background worker, "manual"
// for an operator request.
func RecordRefreshTrigger(collection, trigger string) {
	RefreshTriggersTotal.WithLabelValues(collection, trigger).Inc()
}

// UpdateCachedRecords updates the cached row count gauge for a collection.
func UpdateCachedRecords(collection string, count int) {
	CachedRecordsTotal.WithLabelValues(collection).Set(float64(count))
}

// RecordContentFetchSuccess records a successful article page fetch.
func RecordContentFetchSuccess(duration time.Duration) {
	ContentFetchAttemptsTotal.WithLabelValues("success").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
}

// RecordContentFetchFailed records a failed article page fetch.
func RecordContentFetchFailed(duration time.Duration) {
	ContentFetchAttemptsTotal.WithLabelValues("failure").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
}

// RecordContentFetchSkipped records a skipped article page fetch. Fetching
// is skipped when the portal record already carried enough body text.
func RecordContentFetchSkipped() {
	ContentFetchAttemptsTotal.WithLabelValues("skipped").Inc()
}

// RecordDBQuery records the duration of a database query operation.
// Operation should describe the query type (e.g., "select_articles").
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}
