package activitywatch

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/0xEljh/timesync/internal/model"
	"github.com/0xEljh/timesync/internal/timecalc"
)

// watcherPrefixes identify the bucket kinds the sync consumes.
var watcherPrefixes = []string{"aw-watcher-window", "aw-watcher-web", "aw-watcher-afk"}

// Adapter turns ActivityWatch buckets into normalized activity records.
type Adapter struct {
	Client *Client
	// Hostname pins which machine's buckets are read. Empty auto-detects:
	// first a substring match on the local hostname, then the most common
	// hostname among watcher buckets.
	Hostname string

	localHostname string
}

// NewAdapter creates an adapter over the given client. hostname may be empty
// to auto-detect.
func NewAdapter(client *Client, hostname string) *Adapter {
	local, _ := os.Hostname()
	return &Adapter{Client: client, Hostname: hostname, localHostname: local}
}

// Name identifies this source in run reports.
func (a *Adapter) Name() string { return "activitywatch" }

// Fetch pulls window, web and AFK events for the window, deduplicates them,
// clips window/web activity to non-AFK periods and classifies each remaining
// portion into a category record.
func (a *Adapter) Fetch(ctx context.Context, window timecalc.Window) ([]model.ActivityRecord, error) {
	buckets, err := a.Client.Buckets(ctx)
	if err != nil {
		return nil, err
	}

	selected := a.selectBuckets(buckets)
	if len(selected) == 0 {
		return nil, nil
	}

	type taggedEvent struct {
		bucket string
		event  Event
	}
	var windowEvents, webEvents []taggedEvent
	var afkEvents []Event

	// Dedup across buckets and page overlaps: the same event can appear
	// twice at a paging boundary.
	type eventKey struct {
		bucket    string
		timestamp string
		app       string
		title     string
		url       string
	}
	seen := map[eventKey]bool{}

	for _, bucketID := range selected {
		events, err := a.Client.Events(ctx, bucketID, window)
		if err != nil {
			return nil, err
		}
		for _, ev := range events {
			if ev.Timestamp.IsZero() {
				fmt.Fprintf(os.Stderr, "  ! Skipping event without timestamp in %s\n", bucketID)
				continue
			}
			key := eventKey{
				bucket:    bucketID,
				timestamp: ev.Timestamp.UTC().Format("2006-01-02T15:04:05.999999999"),
				app:       ev.Data.App,
				title:     ev.Data.Title,
				url:       ev.Data.URL,
			}
			if seen[key] {
				continue
			}
			seen[key] = true

			switch {
			case strings.Contains(bucketID, "aw-watcher-window"):
				windowEvents = append(windowEvents, taggedEvent{bucket: bucketID, event: ev})
			case strings.Contains(bucketID, "aw-watcher-web"):
				webEvents = append(webEvents, taggedEvent{bucket: bucketID, event: ev})
			case strings.Contains(bucketID, "aw-watcher-afk"):
				afkEvents = append(afkEvents, ev)
			}
		}
	}

	periods := notAFKPeriods(afkEvents)
	hasAFKData := len(afkEvents) > 0

	var records []model.ActivityRecord
	emit := func(bucket string, ev Event, cat model.Category, label string) {
		portions := clipToPeriods(ev, periods, hasAFKData)
		for i, portion := range portions {
			if portion.Duration <= 0 {
				continue
			}
			externalID := fmt.Sprintf("%s/%d", bucket, ev.ID)
			if len(portions) > 1 {
				externalID = fmt.Sprintf("%s.%d", externalID, i)
			}
			records = append(records, model.ActivityRecord{
				Source:     model.SourceScreen,
				ExternalID: externalID,
				Category:   cat,
				Label:      label,
				Start:      portion.Timestamp,
				End:        portion.End(),
				Duration:   portion.Duration,
			})
		}
	}

	for _, te := range windowEvents {
		if te.event.Duration <= 0 {
			continue
		}
		cat, label, ok := ClassifyWindow(te.event.Data.App, te.event.Data.Title)
		if !ok {
			continue
		}
		emit(te.bucket, te.event, cat, label)
	}
	for _, te := range webEvents {
		if te.event.Duration <= 0 {
			continue
		}
		cat, label, ok := ClassifyWeb(te.event.Data.URL)
		if !ok {
			continue
		}
		emit(te.bucket, te.event, cat, label)
	}

	return records, nil
}

// selectBuckets returns the watcher bucket IDs belonging to the target host,
// sorted for deterministic fetch order.
func (a *Adapter) selectBuckets(buckets map[string]Bucket) []string {
	host := a.Hostname
	if host == "" {
		host = detectHostname(buckets, a.localHostname)
	}
	if host == "" {
		return nil
	}

	var selected []string
	for id, b := range buckets {
		if !isWatcherBucket(id) {
			continue
		}
		if b.Hostname == host || strings.Contains(strings.ToLower(id), strings.ToLower(host)) {
			selected = append(selected, id)
		}
	}
	sort.Strings(selected)
	return selected
}

func isWatcherBucket(id string) bool {
	for _, prefix := range watcherPrefixes {
		if strings.Contains(id, prefix) {
			return true
		}
	}
	return false
}

// detectHostname picks the bucket hostname for this machine: a bucket
// hostname containing the short local hostname wins; otherwise the most
// common hostname among watcher buckets. Bucket naming does not always match
// what os.Hostname reports (e.g. ".local" vs tailnet FQDNs), hence the
// substring match on the base name.
func detectHostname(buckets map[string]Bucket, localHostname string) string {
	short := strings.ToLower(strings.Split(localHostname, ".")[0])
	base := strings.TrimRight(short, "0123456789-")

	counts := map[string]int{}
	for id, b := range buckets {
		if !isWatcherBucket(id) || b.Hostname == "" {
			continue
		}
		counts[b.Hostname]++
	}
	if len(counts) == 0 {
		return ""
	}

	if base != "" {
		for hostname := range counts {
			if strings.Contains(strings.ToLower(hostname), base) {
				return hostname
			}
		}
	}

	// Fall back to the dominant hostname, ties broken lexicographically.
	var best string
	bestCount := -1
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if counts[name] > bestCount {
			best, bestCount = name, counts[name]
		}
	}
	return best
}
